package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/belovebe/taskmatch/internal/domain"
)

const testBotToken = "123456:TEST-TOKEN"

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

func validFields() map[string]string {
	return map[string]string{
		"query_id":  "AAE1",
		"user":      `{"id":42,"first_name":"Ann","last_name":"Lee","username":"ann","language_code":"ru-RU"}`,
		"auth_date": "1700000000",
	}
}

func TestValidateInitData_Valid(t *testing.T) {
	initData := signInitData(t, validFields())
	assert.True(t, ValidateInitData(initData, testBotToken))
}

func TestValidateInitData_TamperingAnyFieldInvalidates(t *testing.T) {
	for field := range validFields() {
		t.Run(field, func(t *testing.T) {
			fields := validFields()
			initData := signInitData(t, fields)

			values, err := url.ParseQuery(initData)
			require.NoError(t, err)
			values.Set(field, values.Get(field)+"x")

			assert.False(t, ValidateInitData(values.Encode(), testBotToken))
		})
	}
}

func TestValidateInitData_MissingHash(t *testing.T) {
	assert.False(t, ValidateInitData("user=%7B%22id%22%3A42%7D&auth_date=1", testBotToken))
}

func TestValidateInitData_WrongBotToken(t *testing.T) {
	initData := signInitData(t, validFields())
	assert.False(t, ValidateInitData(initData, "999:OTHER-TOKEN"))
}

func TestParseInitData_User(t *testing.T) {
	initData := signInitData(t, validFields())

	parsed, err := ParseInitData(initData)
	require.NoError(t, err)

	assert.Equal(t, int64(42), parsed.User.ID)
	assert.Equal(t, "Ann", parsed.User.FirstName)
	assert.Equal(t, "ann", parsed.User.Username)
	assert.Equal(t, int64(1700000000), parsed.AuthDate)
}

func TestParseInitData_MissingUser(t *testing.T) {
	_, err := ParseInitData("auth_date=1&hash=abc")
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestParseInitData_BadUserJSON(t *testing.T) {
	values := url.Values{}
	values.Set("user", "{not json")
	_, err := ParseInitData(values.Encode())
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestParseInitData_MissingUserID(t *testing.T) {
	values := url.Values{}
	values.Set("user", `{"first_name":"NoID"}`)
	_, err := ParseInitData(values.Encode())
	assert.ErrorIs(t, err, domain.ErrMalformedPayload)
}

func TestNormalizeLanguage(t *testing.T) {
	assert.Equal(t, "ru", NormalizeLanguage("ru-RU"))
	assert.Equal(t, "en", NormalizeLanguage("en"))
	assert.Equal(t, "", NormalizeLanguage(""))
}
