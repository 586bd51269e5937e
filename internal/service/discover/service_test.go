package discover_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/belovebe/taskmatch/internal/app"
	"github.com/belovebe/taskmatch/internal/cache"
	"github.com/belovebe/taskmatch/internal/config"
	"github.com/belovebe/taskmatch/internal/db"
	"github.com/belovebe/taskmatch/internal/domain"
	"github.com/belovebe/taskmatch/internal/geo"
	"github.com/belovebe/taskmatch/internal/notify"
	"github.com/belovebe/taskmatch/internal/service/discover"
)

type stubGeocoder struct{}

func (stubGeocoder) Forward(context.Context, geo.Address) (*geo.Point, error) { return nil, nil }

func strp(s string) *string     { return &s }
func f64p(f float64) *float64   { return &f }
func intp(n int) *int           { return &n }
func datep(t time.Time) *time.Time { return &t }

// seedDiscover wipes the DB and inserts a deterministic swipe graph.
//
// Requester is user1 (female-seeking, in Moscow). Candidates:
//
//   - user2: female, Moscow, age ~30         -> eligible
//   - user3: female, Moscow, already passed  -> excluded (own swipe)
//   - user4: female, Moscow, liked user1     -> excluded (incoming like)
//   - user5: female, Moscow, blocked user1   -> excluded (block)
//   - user6: male, Moscow                    -> excluded (gender)
//   - user7: female, Berlin (DE)             -> excluded (country)
//   - user8: female, St Petersburg, no birthdate
func seedDiscover(t *testing.T, gdb *gorm.DB, now time.Time) {
	t.Helper()

	require.NoError(t, gdb.Exec("DELETE FROM likes").Error)
	require.NoError(t, gdb.Exec("DELETE FROM blocks").Error)
	require.NoError(t, gdb.Exec("DELETE FROM profiles").Error)
	require.NoError(t, gdb.Exec("DELETE FROM users").Error)

	moscow := [2]float64{55.7558, 37.6173}
	spb := [2]float64{59.9311, 30.3609}

	users := make([]db.User, 8)
	for i := range users {
		name := fmt.Sprintf("user%d", i+1)
		users[i] = db.User{ID: uint64(i + 1), TgID: int64(3000 + i), Username: &name}
	}
	require.NoError(t, gdb.Create(&users).Error)

	profiles := []db.Profile{
		{UserID: 1, Gender: strp("male"), GenderPreferences: datatypes.NewJSONSlice([]string{"female"}),
			Country: strp("RU"), Lat: f64p(moscow[0]), Lng: f64p(moscow[1]),
			Birthdate: datep(now.AddDate(-35, 0, 0))},
		{UserID: 2, Gender: strp("female"), Country: strp("RU"), Lat: f64p(moscow[0]), Lng: f64p(moscow[1]),
			Birthdate: datep(now.AddDate(-30, 0, 0))},
		{UserID: 3, Gender: strp("female"), Country: strp("RU"), Lat: f64p(moscow[0]), Lng: f64p(moscow[1]),
			Birthdate: datep(now.AddDate(-28, 0, 0))},
		{UserID: 4, Gender: strp("female"), Country: strp("RU"), Lat: f64p(moscow[0]), Lng: f64p(moscow[1]),
			Birthdate: datep(now.AddDate(-26, 0, 0))},
		{UserID: 5, Gender: strp("female"), Country: strp("RU"), Lat: f64p(moscow[0]), Lng: f64p(moscow[1]),
			Birthdate: datep(now.AddDate(-24, 0, 0))},
		{UserID: 6, Gender: strp("male"), Country: strp("RU"), Lat: f64p(moscow[0]), Lng: f64p(moscow[1]),
			Birthdate: datep(now.AddDate(-33, 0, 0))},
		{UserID: 7, Gender: strp("female"), Country: strp("DE"),
			Birthdate: datep(now.AddDate(-29, 0, 0))},
		{UserID: 8, Gender: strp("female"), Country: strp("RU"), Lat: f64p(spb[0]), Lng: f64p(spb[1])},
	}
	require.NoError(t, gdb.Create(&profiles).Error)

	likes := []db.Like{
		{FromUserID: 1, ToUserID: 3, Type: db.DecisionPass},
		{FromUserID: 4, ToUserID: 1, Type: db.DecisionLike},
	}
	require.NoError(t, gdb.Create(&likes).Error)

	block := db.Block{BlockerID: 5, BlockedID: 1}
	require.NoError(t, gdb.Create(&block).Error)
}

func setupService(t *testing.T) (*discover.Service, *gorm.DB) {
	t.Helper()

	dbName := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dbName), &gorm.Config{
		NowFunc:                func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb))
	seedDiscover(t, gdb, time.Now())

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()

	appCtx := app.New(cfg, gdb, cache.NewRedisCache(cfg),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		notify.NopNotifier{}, stubGeocoder{})
	return discover.NewService(appCtx), gdb
}

func candidateIDs(page *discover.Page) []uint64 {
	ids := make([]uint64, 0, len(page.Users))
	for _, u := range page.Users {
		ids = append(ids, u.UserID)
	}
	return ids
}

// TestCandidates_Exclusions checks every exclusion reason at once:
// self, own swipes, incoming likes, blocks, gender mismatch and
// country mismatch all disappear from the feed.
func TestCandidates_Exclusions(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	page, err := svc.Candidates(ctx, 1, discover.Query{Limit: 10})
	require.NoError(t, err)

	assert.ElementsMatch(t, []uint64{2, 8}, candidateIDs(page))
	assert.Equal(t, len(page.Users), page.Count)

	for _, u := range page.Users {
		require.NotNil(t, u.Username)
		assert.Equal(t, fmt.Sprintf("user%d", u.UserID), *u.Username)
	}
}

func TestCandidates_NoProfile(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	require.NoError(t, gdb.Exec("DELETE FROM profiles WHERE user_id = 1").Error)

	_, err := svc.Candidates(ctx, 1, discover.Query{Limit: 10})
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestCandidates_AgeFilter(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	// user2 is ~30 and passes the bounds; user8 has no birthdate, and
	// missing data never excludes a candidate.
	page, err := svc.Candidates(ctx, 1, discover.Query{Limit: 10, AgeMin: intp(29), AgeMax: intp(31)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{2, 8}, candidateIDs(page))

	// Tighter bounds drop user2 but still keep the birthdate-less user8.
	page, err = svc.Candidates(ctx, 1, discover.Query{Limit: 10, AgeMin: intp(31)})
	require.NoError(t, err)
	assert.Equal(t, []uint64{8}, candidateIDs(page))
}

// TestCandidates_AgeBeforeBirthday pins the calendar-age correction:
// someone born 30 years ago tomorrow is still 29.
func TestCandidates_AgeBeforeBirthday(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	almostThirty := time.Now().AddDate(-30, 0, 1)
	require.NoError(t, gdb.Model(&db.Profile{}).
		Where("user_id = ?", 2).
		Update("birthdate", almostThirty).Error)

	page, err := svc.Candidates(ctx, 1, discover.Query{Limit: 10})
	require.NoError(t, err)

	for _, u := range page.Users {
		if u.UserID == 2 {
			require.NotNil(t, u.Age)
			assert.Equal(t, 29, *u.Age)
			return
		}
	}
	t.Fatal("user2 missing from feed")
}

func TestCandidates_DistanceFilter(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	// Moscow to St Petersburg is ~634 km; a 100 km radius keeps only
	// the Moscow candidate.
	page, err := svc.Candidates(ctx, 1, discover.Query{Limit: 10, MaxDistanceKm: f64p(100)})
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, candidateIDs(page))
}

func TestCandidates_MissingCoordsSkipDistance(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	// Without coordinates on user8 the distance filter cannot apply and
	// the profile stays in the feed.
	require.NoError(t, gdb.Model(&db.Profile{}).
		Where("user_id = ?", 8).
		Updates(map[string]any{"lat": nil, "lng": nil}).Error)

	page, err := svc.Candidates(ctx, 1, discover.Query{Limit: 10, MaxDistanceKm: f64p(100)})
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint64{2, 8}, candidateIDs(page))
}

// TestCandidates_LimitTruncatesUsersOnly pins the pagination contract:
// the limit truncates the returned cards, while Count reports the full
// post-filter size of the overfetched window.
func TestCandidates_LimitTruncatesUsersOnly(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	// Five more eligible Moscow candidates on top of the seeded two.
	for i := 20; i < 25; i++ {
		name := fmt.Sprintf("user%d", i)
		require.NoError(t, gdb.Create(&db.User{ID: uint64(i), TgID: int64(3000 + i), Username: &name}).Error)
		require.NoError(t, gdb.Create(&db.Profile{
			UserID: uint64(i), Gender: strp("female"), Country: strp("RU"),
			Lat: f64p(55.7558), Lng: f64p(37.6173),
		}).Error)
	}

	page, err := svc.Candidates(ctx, 1, discover.Query{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Users, 2)
	assert.Equal(t, 7, page.Count)
}

func TestDecide_Mutual(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	// user4 already likes user1, so liking back completes the match.
	result, err := svc.Decide(ctx, 1, 4, db.DecisionLike)
	require.NoError(t, err)
	assert.True(t, result.Mutual)

	result, err = svc.Decide(ctx, 1, 2, db.DecisionLike)
	require.NoError(t, err)
	assert.False(t, result.Mutual)
}

func TestDecide_OverwritesPriorSwipe(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	_, err := svc.Decide(ctx, 1, 2, db.DecisionPass)
	require.NoError(t, err)
	_, err = svc.Decide(ctx, 1, 2, db.DecisionLike)
	require.NoError(t, err)

	var edges []db.Like
	require.NoError(t, gdb.Where("from_user_id = ? AND to_user_id = ?", 1, 2).Find(&edges).Error)
	require.Len(t, edges, 1)
	assert.Equal(t, db.DecisionLike, edges[0].Type)
}

func TestDecide_SelfSwipe(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, err := svc.Decide(ctx, 1, 1, db.DecisionLike)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestBlockHidesUser(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	require.NoError(t, svc.Block(ctx, 1, 2))
	// Re-blocking is a no-op.
	require.NoError(t, svc.Block(ctx, 1, 2))

	page, err := svc.Candidates(ctx, 1, discover.Query{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []uint64{8}, candidateIDs(page))
}
