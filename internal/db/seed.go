package db

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// categoryNames is the fixed category enumeration. Seeded once,
// immutable afterwards.
var categoryNames = []string{
	"design", "development", "marketing", "copywriting", "translation",
	"photography", "video_editing", "consulting", "animation",
	"modeling_3d", "web_development", "qa_testing", "customer_support",
	"seo", "smm", "targeted_ads", "contextual_ads", "legal_help",
	"accounting", "tutoring", "mentoring", "cargo_transport",
	"device_repair", "furniture_assembly", "cleaning", "construction",
	"plumbing", "electrician", "courier", "tech_support", "devops",
	"data_science", "machine_learning", "interior_design", "hr", "pr",
	"voice_over", "sound_design", "catering", "event_services", "decor",
	"beauty_massage", "hair_services", "landscape_design", "security",
	"logistics", "rental", "other",
}

// SeedCategories upserts the fixed category list. Idempotent.
func SeedCategories(db *gorm.DB) error {
	for _, name := range categoryNames {
		cat := Category{Name: name}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "name"}},
			DoNothing: true,
		}).Create(&cat).Error; err != nil {
			return fmt.Errorf("failed to seed category %q: %w", name, err)
		}
	}
	return nil
}

// SeedTestData resets the database and populates it with demo users,
// profiles, tasks and swipe edges for local development.
//
// Behavior:
//  1. Clears all mutable tables, re-seeds categories.
//  2. Creates 20 users with profiles (10 male, 10 female) spread over a
//     few cities with real coordinates.
//  3. Publishes ~30 tasks across random categories.
//  4. Generates like/pass edges so the discover feed has exclusions to
//     chew on.
func SeedTestData(db *gorm.DB) error {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	tables := []string{"messages", "conversations", "responses", "tasks",
		"likes", "blocks", "user_filters", "photos", "profiles", "users"}
	for _, table := range tables {
		if err := db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	if err := SeedCategories(db); err != nil {
		return err
	}

	var categories []Category
	if err := db.Find(&categories).Error; err != nil {
		return fmt.Errorf("failed to load categories: %w", err)
	}

	log.Println("Cleared existing data")

	type seedCity struct {
		name    string
		country string
		lat     float64
		lng     float64
	}
	cities := []seedCity{
		{"Moscow", "RU", 55.7558, 37.6173},
		{"Saint Petersburg", "RU", 59.9343, 30.3351},
		{"Kazan", "RU", 55.8304, 49.0661},
		{"Minsk", "BY", 53.9045, 27.5615},
		{"Almaty", "KZ", 43.2220, 76.8512},
	}

	// --- Users + Profiles ---
	users := make([]User, 0, 20)
	for i := 1; i <= 20; i++ {
		first := fmt.Sprintf("Demo%d", i)
		username := fmt.Sprintf("demo_user_%d", i)
		lang := "ru"

		gender := "male"
		if i > 10 {
			gender = "female"
		}
		city := cities[r.Intn(len(cities))]
		birthdate := time.Date(1980+r.Intn(25), time.Month(1+r.Intn(12)), 1+r.Intn(28), 0, 0, 0, 0, time.UTC)

		wants := "female"
		if gender == "female" {
			wants = "male"
		}

		user := User{
			TgID:      int64(100000 + i),
			FirstName: &first,
			Username:  &username,
			Language:  &lang,
			Profile: &Profile{
				DisplayName:       &first,
				Birthdate:         &birthdate,
				Gender:            &gender,
				GenderPreferences: []string{wants},
				Country:           &city.country,
				City:              &city.name,
				Lat:               &city.lat,
				Lng:               &city.lng,
			},
		}
		if err := db.Create(&user).Error; err != nil {
			return fmt.Errorf("failed to seed user: %w", err)
		}
		users = append(users, user)
	}
	log.Println("Seeded 20 users with profiles.")

	// --- Tasks ---
	for i := 0; i < 30; i++ {
		author := users[r.Intn(len(users))]
		city := cities[r.Intn(len(cities))]
		budget := float64(500 + r.Intn(20)*250)

		task := Task{
			AuthorID:    author.ID,
			CategoryID:  categories[r.Intn(len(categories))].ID,
			Title:       fmt.Sprintf("Demo task #%d", i+1),
			Description: "Seeded task for local development.",
			Budget:      &budget,
			Country:     &city.country,
			City:        &city.name,
			Latitude:    &city.lat,
			Longitude:   &city.lng,
			Status:      TaskPublished,
		}
		if err := db.Create(&task).Error; err != nil {
			return fmt.Errorf("failed to seed task: %w", err)
		}
	}
	log.Println("Seeded 30 tasks.")

	// --- Swipe edges (~70% likes) ---
	for i := 0; i < 60; i++ {
		from := users[r.Intn(len(users))]
		to := users[r.Intn(len(users))]
		if from.ID == to.ID {
			continue
		}

		kind := DecisionLike
		if r.Intn(100) >= 70 {
			kind = DecisionPass
		}

		edge := Like{FromUserID: from.ID, ToUserID: to.ID, Type: kind}
		if err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "from_user_id"}, {Name: "to_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"type", "updated_at"}),
		}).Create(&edge).Error; err != nil {
			return fmt.Errorf("failed to seed like edge: %w", err)
		}
	}

	return nil
}
