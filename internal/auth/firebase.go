package auth

import (
	"context"
	"fmt"
	"strings"

	"tablestore/pkg/logger"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// firebaseClient is the subset of *fbauth.Client the provider calls.
type firebaseClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
	GetUser(ctx context.Context, uid string) (*fbauth.UserRecord, error)
	CreateUser(ctx context.Context, user *fbauth.UserToCreate) (*fbauth.UserRecord, error)
}

type FirebaseProvider struct {
	client firebaseClient
}

// NewFirebaseProvider initializes the Firebase Admin SDK from a service
// account JSON document.
func NewFirebaseProvider(ctx context.Context, credentialsJSON string) (*FirebaseProvider, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsJSON([]byte(credentialsJSON)))
	if err != nil {
		return nil, fmt.Errorf("initialize firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialize firebase auth client: %w", err)
	}
	return &FirebaseProvider{client: client}, nil
}

func (p *FirebaseProvider) VerifyCredential(ctx context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", fmt.Errorf("%w: empty token", ErrInvalidCredential)
	}
	token, err := p.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		if fbauth.IsCertificateFetchFailed(err) {
			return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	return token.UID, nil
}

func (p *FirebaseProvider) UserExists(ctx context.Context, uid string) (bool, error) {
	if uid == "" {
		return false, nil
	}
	_, err := p.client.GetUser(ctx, uid)
	if err == nil {
		return true, nil
	}
	if fbauth.IsUserNotFound(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
}

func (p *FirebaseProvider) CreateUser(ctx context.Context, uid, email, password string) error {
	params := (&fbauth.UserToCreate{}).
		UID(uid).
		Email(email).
		Password(password)

	_, err := p.client.CreateUser(ctx, params)
	if err == nil {
		logger.Sugar.Infof("Created user %s", uid)
		return nil
	}
	if reason := classifyCreateUserError(err); reason != "" {
		return &CreateUserError{Reason: reason, Err: err}
	}
	return err
}

// classifyCreateUserError prefers the SDK's error codes. The SDK validates
// some arguments locally and returns plain errors for those, so their
// messages are matched as a fallback. Unclassified errors yield "".
func classifyCreateUserError(err error) string {
	switch {
	case fbauth.IsUIDAlreadyExists(err):
		return ReasonUIDExists
	case fbauth.IsEmailAlreadyExists(err):
		return ReasonEmailExists
	case fbauth.IsInvalidEmail(err):
		return ReasonInvalidEmail
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "UID_EXISTS"):
		return ReasonUIDExists
	case strings.Contains(msg, "EMAIL_EXISTS"):
		return ReasonEmailExists
	case strings.Contains(msg, "INVALID_EMAIL"), strings.Contains(msg, "malformed email"):
		return ReasonInvalidEmail
	case strings.Contains(msg, "WEAK_PASSWORD"), strings.Contains(msg, "password must be"):
		return ReasonWeakPassword
	}
	return ""
}
