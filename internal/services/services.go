package services

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrAccessDenied       = errors.New("access denied")
)

// EmailClient delivers outbound mail. Failures are logged, never surfaced to
// the client.
type EmailClient interface {
	SendPasswordReset(to, resetURL, token string) error
}
