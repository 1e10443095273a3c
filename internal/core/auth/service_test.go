package auth

import (
	"context"
	"testing"
	"time"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/storage/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	users  map[string]*postgres.User
	nextID int
}

func newMemStore() *memStore {
	return &memStore{users: map[string]*postgres.User{}, nextID: 1}
}

func (m *memStore) CreateUser(_ context.Context, email, hashedPassword, fullName string) (*postgres.User, error) {
	if _, ok := m.users[email]; ok {
		return nil, common.ErrUserExists
	}
	u := &postgres.User{ID: m.nextID, Email: email, HashedPassword: hashedPassword, FullName: fullName, CreatedAt: time.Now()}
	m.nextID++
	m.users[email] = u
	return u, nil
}

func (m *memStore) UserByEmail(_ context.Context, email string) (*postgres.User, error) {
	if u, ok := m.users[email]; ok {
		return u, nil
	}
	return nil, common.ErrUserNotFound
}

func (m *memStore) UserByID(_ context.Context, id int) (*postgres.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, common.ErrUserNotFound
}

func (m *memStore) DeleteUser(_ context.Context, id int) error {
	for email, u := range m.users {
		if u.ID == id {
			delete(m.users, email)
			return nil
		}
	}
	return common.ErrUserNotFound
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	cfg := &config.AuthConfig{SecretKey: "test-secret", TokenExpiry: time.Hour}
	return NewService(store, cfg), store
}

func TestRegisterAndLogin(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	reg, err := s.Register(ctx, "Alice@Example.com", "hunter22", "Alice")
	require.NoError(t, err)
	assert.NotEmpty(t, reg.AccessToken)
	assert.Equal(t, "bearer", reg.TokenType)
	assert.Equal(t, "alice@example.com", reg.User.Email)

	login, err := s.Login(ctx, "alice@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, login.AccessToken)
	assert.Equal(t, reg.User.ID, login.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	_, err := s.Register(ctx, "not-an-email", "hunter22", "")
	assert.Error(t, err)

	_, err = s.Register(ctx, "a@b.com", "short", "")
	assert.Error(t, err)

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'x'
	}
	_, err = s.Register(ctx, "a@b.com", string(long), "")
	assert.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	_, err := s.Register(ctx, "a@b.com", "hunter22", "")
	require.NoError(t, err)

	_, err = s.Register(ctx, "a@b.com", "hunter22", "")
	assert.ErrorIs(t, err, common.ErrUserExists)
}

func TestLoginWrongPassword(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	_, err := s.Register(ctx, "a@b.com", "hunter22", "")
	require.NoError(t, err)

	_, err = s.Login(ctx, "a@b.com", "wrong-password")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	// unknown email yields the same error as a wrong password
	_, err = s.Login(ctx, "nobody@b.com", "hunter22")
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestVerifyToken(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	reg, err := s.Register(ctx, "a@b.com", "hunter22", "A B")
	require.NoError(t, err)

	user, err := s.VerifyToken(ctx, reg.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", user.Email)

	_, err = s.VerifyToken(ctx, "not.a.token")
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestVerifyTokenWrongKey(t *testing.T) {
	s, store := newTestService()
	ctx := context.Background()

	reg, err := s.Register(ctx, "a@b.com", "hunter22", "")
	require.NoError(t, err)

	other := NewService(store, &config.AuthConfig{SecretKey: "different", TokenExpiry: time.Hour})
	_, err = other.VerifyToken(ctx, reg.AccessToken)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestVerifyExpiredToken(t *testing.T) {
	store := newMemStore()
	s := NewService(store, &config.AuthConfig{SecretKey: "test-secret", TokenExpiry: -time.Minute})
	ctx := context.Background()

	reg, err := s.Register(ctx, "a@b.com", "hunter22", "")
	require.NoError(t, err)

	_, err = s.VerifyToken(ctx, reg.AccessToken)
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestDeleteAccount(t *testing.T) {
	s, store := newTestService()
	ctx := context.Background()

	reg, err := s.Register(ctx, "a@b.com", "hunter22", "")
	require.NoError(t, err)

	require.NoError(t, s.DeleteAccount(ctx, reg.User.ID))
	assert.Empty(t, store.users)

	assert.ErrorIs(t, s.DeleteAccount(ctx, reg.User.ID), common.ErrUserNotFound)
}
