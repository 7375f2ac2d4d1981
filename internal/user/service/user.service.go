package service

import (
	"context"
	"fmt"

	"tablestore/internal/auth"
	"tablestore/internal/table/model"
	tableservice "tablestore/internal/table/service"
	"tablestore/pkg/logger"

	"go.uber.org/zap"
)

type Authenticator interface {
	Authenticate(ctx context.Context, credential string) (string, error)
}

type CreateUserRequest struct {
	UID      string `json:"uid"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateUserResponse struct {
	Result string `json:"res"`
}

type UserService struct {
	Repo  tableservice.TableStore
	Auth  auth.Provider
	Authn Authenticator
}

func NewUserService(repo tableservice.TableStore, provider auth.Provider, authn Authenticator) *UserService {
	return &UserService{Repo: repo, Auth: provider, Authn: authn}
}

// ListTables returns the tables owned by userID. When the provider no longer
// knows the user, the leftover tables are purged and ErrNotFound is returned.
func (s *UserService) ListTables(ctx context.Context, userID string) ([]model.TableSummary, error) {
	exists, err := s.Auth.UserExists(ctx, userID)
	if err != nil {
		// Never purge on a provider fault.
		logger.Log.Warn("Could not look up user", logger.UserID(userID), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", tableservice.ErrNotFound, err)
	}
	if !exists {
		n, err := s.Repo.DeleteByOwner(ctx, userID)
		if err != nil {
			return nil, err
		}
		logger.Log.Info("Purged tables of deleted user", logger.UserID(userID), zap.Int64("deleted", n))
		return nil, fmt.Errorf("%w: user %s", tableservice.ErrNotFound, userID)
	}
	return s.Repo.ListByOwner(ctx, userID)
}

// DeleteUser removes every table owned by the credential holder.
func (s *UserService) DeleteUser(ctx context.Context, credential string) (int64, error) {
	owner, err := s.Authn.Authenticate(ctx, credential)
	if err != nil {
		return 0, err
	}
	n, err := s.Repo.DeleteByOwner(ctx, owner)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, fmt.Errorf("%w: user %s owns no tables", tableservice.ErrForbidden, owner)
	}
	logger.Log.Info("Deleted user tables", logger.UserID(owner), zap.Int64("deleted", n))
	return n, nil
}

// CreateUser proxies account creation to the provider. The outcome is always
// a reason string; an empty one means success.
func (s *UserService) CreateUser(ctx context.Context, req CreateUserRequest) CreateUserResponse {
	reason := auth.CreateUserReason(s.Auth.CreateUser(ctx, req.UID, req.Email, req.Password))
	if reason != "" {
		logger.Log.Info("User creation rejected", logger.UserID(req.UID), zap.String("reason", reason))
	}
	return CreateUserResponse{Result: reason}
}
