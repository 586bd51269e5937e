package session_test

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/belovebe/taskmatch/internal/app"
	"github.com/belovebe/taskmatch/internal/cache"
	"github.com/belovebe/taskmatch/internal/config"
	"github.com/belovebe/taskmatch/internal/db"
	"github.com/belovebe/taskmatch/internal/domain"
	"github.com/belovebe/taskmatch/internal/geo"
	"github.com/belovebe/taskmatch/internal/notify"
	"github.com/belovebe/taskmatch/internal/service/session"
)

const testBotToken = "123456:TEST-TOKEN"

type stubGeocoder struct{}

func (stubGeocoder) Forward(context.Context, geo.Address) (*geo.Point, error) { return nil, nil }

// signInitData builds a correctly signed initData query string the way
// the Telegram client would.
func signInitData(t *testing.T, fields map[string]string) string {
	t.Helper()

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+fields[k])
	}

	keyMAC := hmac.New(sha256.New, []byte("WebAppData"))
	keyMAC.Write([]byte(testBotToken))
	secretKey := keyMAC.Sum(nil)

	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(strings.Join(lines, "\n")))
	hash := hex.EncodeToString(mac.Sum(nil))

	values := url.Values{}
	for k, v := range fields {
		values.Set(k, v)
	}
	values.Set("hash", hash)
	return values.Encode()
}

func setupService(t *testing.T) (*session.Service, *gorm.DB) {
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

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	cfg := config.New()
	cfg.Redis.Addr = mr.Addr()
	cfg.Auth.BotToken = testBotToken
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.TokenTTL = time.Hour

	appCtx := app.New(cfg, gdb, cache.NewRedisCache(cfg),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		notify.NopNotifier{}, stubGeocoder{})
	return session.NewService(appCtx), gdb
}

func TestLogin_FirstContactCreatesUserAndProfile(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	initData := signInitData(t, map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":42,"first_name":"Ann","username":"ann","language_code":"ru-RU"}`,
	})

	user, token, err := svc.Login(ctx, initData)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, int64(42), user.TgID)
	require.NotNil(t, user.FirstName)
	assert.Equal(t, "Ann", *user.FirstName)
	require.NotNil(t, user.Language)
	assert.Equal(t, "ru", *user.Language)

	// The empty profile rides along with the user.
	var profile db.Profile
	require.NoError(t, gdb.First(&profile, "user_id = ?", user.ID).Error)

	identity := svc.Tokens().Verify(token)
	require.NotNil(t, identity)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, int64(42), identity.TgID)
}

func TestLogin_SecondContactRefreshesDisplayFields(t *testing.T) {
	ctx := context.Background()
	svc, gdb := setupService(t)

	first := signInitData(t, map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":42,"first_name":"Ann","username":"ann"}`,
	})
	userA, _, err := svc.Login(ctx, first)
	require.NoError(t, err)

	second := signInitData(t, map[string]string{
		"auth_date": "1700000100",
		"user":      `{"id":42,"first_name":"Annie","username":"annie"}`,
	})
	userB, _, err := svc.Login(ctx, second)
	require.NoError(t, err)

	assert.Equal(t, userA.ID, userB.ID)
	assert.Equal(t, "Annie", *userB.FirstName)
	assert.Equal(t, "annie", *userB.Username)

	var count int64
	require.NoError(t, gdb.Model(&db.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLogin_InvalidSignature(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	initData := signInitData(t, map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":42,"first_name":"Ann"}`,
	})
	values, err := url.ParseQuery(initData)
	require.NoError(t, err)
	values.Set("auth_date", "1700000001")

	_, _, err = svc.Login(ctx, values.Encode())
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestLogin_EmptyPayload(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	_, _, err := svc.Login(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
