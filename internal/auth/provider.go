package auth

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrProviderUnavailable = errors.New("identity provider unavailable")
	ErrUnsupported         = errors.New("operation not supported by identity provider")
)

// Reasons reported by CreateUser, as exposed in the create_user response.
const (
	ReasonUIDExists    = "UidAlreadyExists"
	ReasonEmailExists  = "EmailAlreadyExists"
	ReasonInvalidEmail = "InvalidEmail"
	ReasonWeakPassword = "WeakPassword"
)

// Provider verifies credentials and manages accounts at the identity provider.
type Provider interface {
	// VerifyCredential returns the subject id the token was issued for.
	VerifyCredential(ctx context.Context, token string) (string, error)
	UserExists(ctx context.Context, uid string) (bool, error)
	CreateUser(ctx context.Context, uid, email, password string) error
}

// CreateUserError is a classified account creation failure.
type CreateUserError struct {
	Reason string
	Err    error
}

func (e *CreateUserError) Error() string {
	return fmt.Sprintf("create user: %s: %v", e.Reason, e.Err)
}

func (e *CreateUserError) Unwrap() error {
	return e.Err
}

// CreateUserReason maps a CreateUser result to the reason string clients see:
// empty on success, a Reason constant when classified, the message otherwise.
func CreateUserReason(err error) string {
	if err == nil {
		return ""
	}
	var cerr *CreateUserError
	if errors.As(err, &cerr) {
		return cerr.Reason
	}
	return err.Error()
}
