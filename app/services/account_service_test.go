package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpbyrne/ostaa/pkg/auth"
	"github.com/cpbyrne/ostaa/pkg/database"
)

func TestRegisterStartsEmpty(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAccountServiceWith(users)

	u, err := svc.Register(context.Background(), "chris", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, "chris", u.Username)
	assert.NotNil(t, u.Listings)
	assert.NotNil(t, u.Purchases)
	assert.Empty(t, u.Listings)
	assert.Empty(t, u.Purchases)
	assert.False(t, u.ID.IsZero())
}

func TestRegisterHashesPassword(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAccountServiceWith(users)

	_, err := svc.Register(context.Background(), "chris", "hunter2")
	require.NoError(t, err)

	stored, err := users.FindByUsername(context.Background(), "chris")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter2", stored.PasswordHash)
	assert.True(t, auth.CheckPassword(stored.PasswordHash, "hunter2"))
}

func TestRegisterDuplicateLeavesStoreUnchanged(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAccountServiceWith(users)

	_, err := svc.Register(context.Background(), "chris", "hunter2")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "chris", "other")
	require.Error(t, err)
	assert.True(t, database.IsDuplicateKey(err))
	assert.Equal(t, 1, users.count())

	// The original credential still works.
	ok, err := svc.Login(context.Background(), "chris", "hunter2")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLogin(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAccountServiceWith(users)

	_, err := svc.Register(context.Background(), "chris", "hunter2")
	require.NoError(t, err)

	tests := []struct {
		name     string
		username string
		password string
		want     bool
	}{
		{"correct credentials", "chris", "hunter2", true},
		{"wrong password", "chris", "nope", false},
		{"unknown user", "ghost", "hunter2", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := svc.Login(context.Background(), tt.username, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestChangePassword(t *testing.T) {
	users := newFakeUserStore()
	svc := NewAccountServiceWith(users)

	_, err := svc.Register(context.Background(), "chris", "hunter2")
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), "chris", "wrong", "newpass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), "chris", "hunter2", "newpass")
	require.NoError(t, err)

	ok, err := svc.Login(context.Background(), "chris", "newpass")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Login(context.Background(), "chris", "hunter2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestChangePasswordUnknownUser(t *testing.T) {
	svc := NewAccountServiceWith(newFakeUserStore())

	err := svc.ChangePassword(context.Background(), "ghost", "a", "b")
	assert.True(t, database.IsNotFound(err))
}
