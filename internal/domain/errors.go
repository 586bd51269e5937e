package domain

import "errors"

// Sentinel errors for the marketplace core. Services return these (or
// wrap them); the HTTP layer maps them to status codes in one place.
var (
	ErrInvalidSignature  = errors.New("invalid init data signature")
	ErrMalformedPayload  = errors.New("malformed init data payload")
	ErrUnauthenticated   = errors.New("unauthenticated")
	ErrAccessDenied      = errors.New("access denied")
	ErrUserNotFound      = errors.New("user not found")
	ErrProfileNotFound   = errors.New("profile not found")
	ErrTaskNotFound      = errors.New("task not found")
	ErrCategoryNotFound  = errors.New("category not found")
	ErrResponseNotFound  = errors.New("response not found")
	ErrConversationNotFound = errors.New("conversation not found")
	ErrDuplicateResponse = errors.New("response already exists for this task")
	ErrSelfResponse      = errors.New("cannot respond to your own task")
	ErrInvalidInput      = errors.New("invalid input")
	ErrConflict          = errors.New("conflicting state change")
)
