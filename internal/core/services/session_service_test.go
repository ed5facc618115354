package services

import (
	"context"
	"encoding/json"
	"testing"

	"fluvid/internal/core/domain"
	"fluvid/internal/fixtures"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionService_LoginKnownPair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, seed := range fixtures.Users() {
		t.Run(seed.User.Email, func(t *testing.T) {
			session, err := env.session.Login(ctx, seed.User.Email, seed.Password)
			require.NoError(t, err)
			assert.Equal(t, seed.User.ID, session.User.ID)
			assert.Equal(t, seed.User.Role, session.User.Role)

			current, err := env.session.Current(ctx, session.ID)
			require.NoError(t, err)
			assert.Equal(t, session.User, *current)
		})
	}
}

func TestSessionService_LoginNormalizesEmail(t *testing.T) {
	env := newTestEnv(t)

	session, err := env.session.Login(context.Background(), "  CREATOR@fluvid.com ", "creator123")
	require.NoError(t, err)
	assert.Equal(t, fixtures.CreatorID, session.User.ID)
}

func TestSessionService_LoginUnknownPairChangesNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []struct{ email, password string }{
		{"creator@fluvid.com", "wrong-password"},
		{"nobody@fluvid.com", "creator123"},
		{"", ""},
		{"admin@fluvid.com", "creator123"},
	}
	for _, tc := range cases {
		_, err := env.session.Login(ctx, tc.email, tc.password)
		assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}
	assert.Equal(t, 0, env.sessions.Len())
}

func TestSessionService_StoredRecordIsUserWithoutPassword(t *testing.T) {
	env := newTestEnv(t)

	session, err := env.session.Login(context.Background(), "viewer@fluvid.com", "viewer123")
	require.NoError(t, err)

	raw, ok := env.sessions.Raw(session.ID)
	require.True(t, ok)
	assert.NotContains(t, string(raw), "viewer123")
	assert.NotContains(t, string(raw), "password")

	var stored domain.Session
	require.NoError(t, json.Unmarshal(raw, &stored))
	assert.Equal(t, session.User, stored.User)
}

func TestSessionService_RegisterDuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.session.Register(context.Background(), "Someone", "Creator@Fluvid.com", "secret123")
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	assert.Equal(t, 0, env.sessions.Len())
}

func TestSessionService_RegisterNewUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.session.Register(ctx, "New Person", "new@fluvid.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, 1, env.sessions.Len())

	user := session.User
	_, parseErr := uuid.Parse(string(user.ID))
	assert.NoError(t, parseErr)
	assert.Equal(t, domain.RoleCreator, user.Role)
	assert.Equal(t, "new@fluvid.com", user.Email)
	assert.Contains(t, user.Avatar, "New+Person")
	assert.False(t, user.Premium)

	again, err := env.session.Login(ctx, "new@fluvid.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.User.ID)

	other, err := env.session.Register(ctx, "Other Person", "other@fluvid.com", "secret123")
	require.NoError(t, err)
	assert.NotEqual(t, user.ID, other.User.ID)
}

func TestSessionService_RegisterValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name, userName, email, password, field string
	}{
		{"empty name", "", "a@b.io", "secret123", "name"},
		{"bad email", "A", "not-an-email", "secret123", "email"},
		{"short password", "A", "a@b.io", "123", "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.session.Register(ctx, tt.userName, tt.email, tt.password)
			var vErr *domain.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
	assert.Equal(t, 0, env.sessions.Len())
}

func TestSessionService_Logout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.session.Login(ctx, "admin@fluvid.com", "admin123")
	require.NoError(t, err)

	require.NoError(t, env.session.Logout(ctx, session.ID))
	_, err = env.session.Current(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.NoError(t, env.session.Logout(ctx, session.ID))
	assert.NoError(t, env.session.Logout(ctx, "never-existed"))
}

func TestSessionService_Rewrite(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	session, err := env.session.Login(ctx, "creator@fluvid.com", "creator123")
	require.NoError(t, err)

	updated := session.User
	updated.Name = "Renamed Creator"
	require.NoError(t, env.session.Rewrite(ctx, session.ID, &updated))

	current, err := env.session.Current(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Creator", current.Name)

	assert.ErrorIs(t, env.session.Rewrite(ctx, "never-existed", &updated), domain.ErrSessionNotFound)
}
