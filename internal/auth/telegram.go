package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/belovebe/taskmatch/internal/domain"
)

// webAppDataLabel is the domain-separation key Telegram prescribes for
// deriving the Web App secret key from the bot token.
const webAppDataLabel = "WebAppData"

// TelegramUser is the user object embedded in initData.
type TelegramUser struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	IsBot        bool   `json:"is_bot"`
	LanguageCode string `json:"language_code"`
}

// InitData is the parsed, signature-checked Mini App login payload.
type InitData struct {
	User     TelegramUser
	AuthDate int64
}

// ValidateInitData checks the initData signature against the bot token.
//
// Scheme: every field except `hash`, sorted by key and joined as
// "key=value" lines, is HMAC-SHA256'd with a secret key that is itself
// HMAC-SHA256(botToken) keyed by the "WebAppData" label. The hex digest
// must equal the `hash` field.
func ValidateInitData(initData, botToken string) bool {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return false
	}

	hash := values.Get("hash")
	if hash == "" {
		return false
	}
	values.Del("hash")

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}
	dataCheckString := strings.Join(lines, "\n")

	keyMAC := hmac.New(sha256.New, []byte(webAppDataLabel))
	keyMAC.Write([]byte(botToken))
	secretKey := keyMAC.Sum(nil)

	mac := hmac.New(sha256.New, secretKey)
	mac.Write([]byte(dataCheckString))
	computed := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(computed), []byte(hash))
}

// ParseInitData extracts the user object and auth date. Fails with
// ErrMalformedPayload when the user field is absent or not valid JSON,
// or when the user id is missing.
func ParseInitData(initData string) (*InitData, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, domain.ErrMalformedPayload
	}

	userParam := values.Get("user")
	if userParam == "" {
		return nil, domain.ErrMalformedPayload
	}

	var user TelegramUser
	if err := json.Unmarshal([]byte(userParam), &user); err != nil {
		return nil, domain.ErrMalformedPayload
	}
	if user.ID == 0 {
		return nil, domain.ErrMalformedPayload
	}

	parsed := &InitData{User: user}
	if authDate := values.Get("auth_date"); authDate != "" {
		if ts, err := strconv.ParseInt(authDate, 10, 64); err == nil {
			parsed.AuthDate = ts
		}
	}

	return parsed, nil
}

// NormalizeLanguage reduces a locale tag to its bare language code
// ("ru-RU" -> "ru"). Empty input stays empty.
func NormalizeLanguage(code string) string {
	if i := strings.IndexByte(code, '-'); i > 0 {
		return code[:i]
	}
	return code
}
