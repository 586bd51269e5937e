package auth

import (
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the authenticated principal carried by a bearer token.
type Identity struct {
	UserID   uint64
	TgID     int64
	Username string
}

// TokenManager issues and verifies self-contained bearer credentials.
// The secret and lifetime come from config; nothing here reads global
// state, so multiple managers can coexist (tests, key rotation).
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl}
}

// Issue signs a time-bound HS256 token for the identity.
func (m *TokenManager) Issue(id Identity) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id":  id.UserID,
		"tg_id":    strconv.FormatInt(id.TgID, 10),
		"username": id.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(m.ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses and checks a token. Returns nil on any structural or
// signature failure or on expiry. An invalid credential is just
// unauthenticated, so there is no error return.
func (m *TokenManager) Verify(tokenString string) *Identity {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil
	}

	userIDFloat, ok := claims["user_id"].(float64)
	if !ok || userIDFloat <= 0 {
		return nil
	}

	id := &Identity{UserID: uint64(userIDFloat)}

	if tgStr, ok := claims["tg_id"].(string); ok {
		if tgID, err := strconv.ParseInt(tgStr, 10, 64); err == nil {
			id.TgID = tgID
		}
	}
	if username, ok := claims["username"].(string); ok {
		id.Username = username
	}

	return id
}
