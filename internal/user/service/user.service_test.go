package service

import (
	"context"
	"errors"
	"testing"

	"tablestore/internal/auth"
	"tablestore/internal/table/model"
	tableservice "tablestore/internal/table/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	tableservice.TableStore
	owned     map[string][]model.TableSummary
	purged    []string
	deleteErr error
}

func (s *stubStore) ListByOwner(_ context.Context, ownerID string) ([]model.TableSummary, error) {
	if tables, ok := s.owned[ownerID]; ok {
		return tables, nil
	}
	return []model.TableSummary{}, nil
}

func (s *stubStore) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}
	s.purged = append(s.purged, ownerID)
	n := int64(len(s.owned[ownerID]))
	delete(s.owned, ownerID)
	return n, nil
}

type stubProvider struct {
	users     map[string]bool
	lookupErr error
	createErr error
}

func (p *stubProvider) VerifyCredential(context.Context, string) (string, error) {
	return "", auth.ErrInvalidCredential
}

func (p *stubProvider) UserExists(_ context.Context, uid string) (bool, error) {
	return p.users[uid], p.lookupErr
}

func (p *stubProvider) CreateUser(context.Context, string, string, string) error {
	return p.createErr
}

// stubAuthn treats the credential as the subject; "bad" is rejected.
type stubAuthn struct{}

func (stubAuthn) Authenticate(_ context.Context, credential string) (string, error) {
	if credential == "bad" {
		return "", tableservice.ErrForbidden
	}
	return credential, nil
}

func newUserService() (*UserService, *stubStore, *stubProvider) {
	store := &stubStore{owned: map[string][]model.TableSummary{
		"alice": {{ID: "t1", Title: "Hi"}, {ID: "t2"}},
	}}
	provider := &stubProvider{users: map[string]bool{"alice": true, "bob": true}}
	return NewUserService(store, provider, stubAuthn{}), store, provider
}

func TestListTables(t *testing.T) {
	svc, store, _ := newUserService()

	tables, err := svc.ListTables(context.Background(), "alice")
	require.NoError(t, err)
	assert.Len(t, tables, 2)

	tables, err = svc.ListTables(context.Background(), "bob")
	require.NoError(t, err)
	assert.NotNil(t, tables)
	assert.Empty(t, tables)
	assert.Empty(t, store.purged)
}

func TestListTablesOfVanishedUserPurges(t *testing.T) {
	svc, store, provider := newUserService()
	provider.users["alice"] = false

	_, err := svc.ListTables(context.Background(), "alice")
	assert.ErrorIs(t, err, tableservice.ErrNotFound)
	assert.Equal(t, []string{"alice"}, store.purged)
	assert.NotContains(t, store.owned, "alice")
}

func TestListTablesProviderFaultKeepsData(t *testing.T) {
	svc, store, provider := newUserService()
	provider.lookupErr = auth.ErrProviderUnavailable

	_, err := svc.ListTables(context.Background(), "alice")
	assert.ErrorIs(t, err, tableservice.ErrNotFound)
	assert.ErrorIs(t, err, auth.ErrProviderUnavailable)
	assert.Empty(t, store.purged)
}

func TestDeleteUser(t *testing.T) {
	svc, _, _ := newUserService()
	ctx := context.Background()

	n, err := svc.DeleteUser(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = svc.DeleteUser(ctx, "alice")
	assert.ErrorIs(t, err, tableservice.ErrForbidden)

	_, err = svc.DeleteUser(ctx, "bad")
	assert.ErrorIs(t, err, tableservice.ErrForbidden)
}

func TestDeleteUserStoreFault(t *testing.T) {
	svc, store, _ := newUserService()
	store.deleteErr = errors.New("connection reset")

	_, err := svc.DeleteUser(context.Background(), "alice")
	assert.EqualError(t, err, "connection reset")
}

func TestCreateUserReasons(t *testing.T) {
	svc, _, provider := newUserService()
	req := CreateUserRequest{UID: "carol", Email: "c@example.com", Password: "secret123"}

	assert.Equal(t, CreateUserResponse{Result: ""}, svc.CreateUser(context.Background(), req))

	provider.createErr = &auth.CreateUserError{Reason: auth.ReasonEmailExists, Err: errors.New("EMAIL_EXISTS")}
	assert.Equal(t, auth.ReasonEmailExists, svc.CreateUser(context.Background(), req).Result)

	provider.createErr = errors.New("project quota exceeded")
	assert.Equal(t, "project quota exceeded", svc.CreateUser(context.Background(), req).Result)
}
