package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/belovebe/taskmatch/internal/db"
)

// TelegramIdentity carries the display fields arriving with a login.
// Nil pointers mean "field absent" and leave the stored value alone.
type TelegramIdentity struct {
	TgID      int64
	FirstName *string
	LastName  *string
	Username  *string
	IsBot     bool
	Language  *string
}

// UserRepository provides data access for users and their profiles.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(database *gorm.DB) *UserRepository {
	return &UserRepository{db: database}
}

// UpsertTelegramUser resolves a Telegram identity to a local user,
// creating the user together with an empty profile on first login and
// refreshing display fields on later ones.
//
// The create path goes through an ON CONFLICT DO NOTHING on tg_id, so
// two concurrent first logins for the same Telegram id collapse onto
// one row instead of racing a read-then-write.
func (r *UserRepository) UpsertTelegramUser(ctx context.Context, id TelegramIdentity) (*db.User, error) {
	var user db.User

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fresh := db.User{
			TgID:      id.TgID,
			FirstName: id.FirstName,
			LastName:  id.LastName,
			Username:  id.Username,
			IsBot:     id.IsBot,
			Language:  id.Language,
			Profile:   &db.Profile{},
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "tg_id"}},
			DoNothing: true,
		}).Create(&fresh).Error; err != nil {
			return err
		}

		if err := tx.Preload("Profile").Where("tg_id = ?", id.TgID).First(&user).Error; err != nil {
			return err
		}

		// Refresh only the display fields the login actually carried.
		updates := map[string]any{"is_bot": id.IsBot}
		if id.FirstName != nil {
			updates["first_name"] = *id.FirstName
		}
		if id.LastName != nil {
			updates["last_name"] = *id.LastName
		}
		if id.Username != nil {
			updates["username"] = *id.Username
		}
		if err := tx.Model(&user).Updates(updates).Error; err != nil {
			return err
		}

		// A legacy row may predate the owned-profile invariant.
		if user.Profile == nil {
			profile := db.Profile{UserID: user.ID}
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&profile).Error; err != nil {
				return err
			}
			user.Profile = &profile
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// GetByID loads a user with their profile and approved photos.
func (r *UserRepository) GetByID(ctx context.Context, userID uint64) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).
		Preload("Profile").
		Preload("Profile.Photos", "moderated_status = ?", db.PhotoApproved).
		First(&user, userID).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByIDs loads a batch of users without associations.
func (r *UserRepository) GetByIDs(ctx context.Context, userIDs []uint64) ([]db.User, error) {
	var users []db.User
	if len(userIDs) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", userIDs).Find(&users).Error
	return users, err
}
