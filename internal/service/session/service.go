// Package session implements the identity layer: it validates Telegram
// Mini App login payloads, maps them to local users, and issues bearer
// credentials.
package session

import (
	"context"
	"fmt"

	"github.com/belovebe/taskmatch/internal/app"
	"github.com/belovebe/taskmatch/internal/auth"
	"github.com/belovebe/taskmatch/internal/db"
	"github.com/belovebe/taskmatch/internal/domain"
	"github.com/belovebe/taskmatch/internal/repository"
)

type Service struct {
	appCtx *app.AppContext
	users  *repository.UserRepository
	tokens *auth.TokenManager
}

func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx: appCtx,
		users:  repository.NewUserRepository(appCtx.DB),
		tokens: auth.NewTokenManager(appCtx.Config.Auth.JWTSecret, appCtx.Config.Auth.TokenTTL),
	}
}

// Tokens exposes the credential manager for the HTTP middleware.
func (s *Service) Tokens() *auth.TokenManager { return s.tokens }

// Login validates a raw initData payload and resolves it to a local
// user, creating user+profile on first login (atomically, upsert on the
// Telegram id) and refreshing display fields on later ones. Returns the
// user and a fresh 30-day bearer token.
func (s *Service) Login(ctx context.Context, initData string) (*db.User, string, error) {
	if initData == "" {
		return nil, "", fmt.Errorf("%w: initData is required", domain.ErrInvalidInput)
	}

	if !auth.ValidateInitData(initData, s.appCtx.Config.Auth.BotToken) {
		return nil, "", domain.ErrInvalidSignature
	}

	parsed, err := auth.ParseInitData(initData)
	if err != nil {
		return nil, "", err
	}

	tg := parsed.User
	identity := repository.TelegramIdentity{
		TgID:  tg.ID,
		IsBot: tg.IsBot,
	}
	if tg.FirstName != "" {
		identity.FirstName = &tg.FirstName
	}
	if tg.LastName != "" {
		identity.LastName = &tg.LastName
	}
	if tg.Username != "" {
		identity.Username = &tg.Username
	}
	if tg.LanguageCode != "" {
		lang := auth.NormalizeLanguage(tg.LanguageCode)
		identity.Language = &lang
	}

	user, err := s.users.UpsertTelegramUser(ctx, identity)
	if err != nil {
		return nil, "", fmt.Errorf("upsert telegram user: %w", err)
	}

	username := ""
	if user.Username != nil {
		username = *user.Username
	}
	token, err := s.tokens.Issue(auth.Identity{
		UserID:   user.ID,
		TgID:     user.TgID,
		Username: username,
	})
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	s.appCtx.Logger.Info("user authenticated", "user_id", user.ID, "tg_id", user.TgID)
	return user, token, nil
}
