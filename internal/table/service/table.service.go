package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"tablestore/internal/auth"
	"tablestore/internal/table/model"
	"tablestore/internal/table/repository"
	"tablestore/pkg/logger"
	"tablestore/pkg/metrics"
	"tablestore/socket"

	"go.uber.org/zap"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
)

type TableStore interface {
	ListByOwner(ctx context.Context, ownerID string) ([]model.TableSummary, error)
	Get(ctx context.Context, id string) (*model.Table, error)
	Upsert(ctx context.Context, id, ownerID string, patch model.TablePatch) (*model.Table, error)
	Delete(ctx context.Context, id, ownerID string) (*model.Table, error)
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
}

type Publisher interface {
	Publish(ev socket.Event)
}

type TableService struct {
	Repo    TableStore
	Auth    auth.Provider
	Events  Publisher
	Metrics *metrics.Metrics
}

func NewTableService(repo TableStore, provider auth.Provider, events Publisher, m *metrics.Metrics) *TableService {
	return &TableService{Repo: repo, Auth: provider, Events: events, Metrics: m}
}

func (s *TableService) GetTable(ctx context.Context, id string) (*model.Table, error) {
	t, err := s.Repo.Get(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	return t, err
}

// UpdateTable applies patch on behalf of the credential holder, creating the
// table when the id is unseen.
func (s *TableService) UpdateTable(ctx context.Context, id, credential string, patch model.TablePatch) (*model.Table, error) {
	owner, err := s.Authenticate(ctx, credential)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrForbidden)
	}

	t, err := s.Repo.Upsert(ctx, id, owner, patch)
	if errors.Is(err, repository.ErrForbidden) {
		logger.Log.Info("Rejected update by non-owner", logger.TableID(id), logger.UserID(owner))
		return nil, fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	if err != nil {
		return nil, err
	}
	s.publish(socket.UpdateType, t)
	return t, nil
}

func (s *TableService) DeleteTable(ctx context.Context, id, credential string) (*model.Table, error) {
	owner, err := s.Authenticate(ctx, credential)
	if err != nil {
		return nil, err
	}

	t, err := s.Repo.Delete(ctx, id, owner)
	if errors.Is(err, repository.ErrForbidden) || errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %w", ErrForbidden, err)
	}
	if err != nil {
		return nil, err
	}
	s.publish(socket.DeleteType, t)
	return t, nil
}

// Authenticate verifies the credential and returns its subject. Every
// provider failure is reported as ErrForbidden, still wrapping the cause.
func (s *TableService) Authenticate(ctx context.Context, credential string) (string, error) {
	subject, err := s.Auth.VerifyCredential(ctx, credential)
	switch {
	case err == nil:
		s.recordVerification("valid")
		return subject, nil
	case errors.Is(err, auth.ErrProviderUnavailable):
		s.recordVerification("unavailable")
		logger.Log.Warn("Identity provider unavailable", zap.Error(err))
	default:
		s.recordVerification("invalid")
		logger.Log.Debug("Credential rejected", zap.Error(err))
	}
	return "", fmt.Errorf("%w: %w", ErrForbidden, err)
}

func (s *TableService) recordVerification(result string) {
	if s.Metrics != nil {
		s.Metrics.RecordVerification(result)
	}
}

func (s *TableService) publish(eventType string, t *model.Table) {
	if s.Events == nil {
		return
	}
	payload, err := json.Marshal(t)
	if err != nil {
		logger.Sugar.Errorf("Error marshalling %s event for table %s: %v", eventType, t.ID, err)
		return
	}
	s.Events.Publish(socket.Event{Type: eventType, TableID: t.ID, Payload: payload})
}
