package redis

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"fluvid/internal/core/domain"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryCmdable answers the string commands the session repository issues.
type memoryCmdable struct {
	redis.Cmdable
	values map[string]string
	ttls   map[string]time.Duration
	err    error
}

func newMemoryCmdable() *memoryCmdable {
	return &memoryCmdable{values: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (m *memoryCmdable) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if m.err != nil {
		return redis.NewStatusResult("", m.err)
	}
	switch v := value.(type) {
	case []byte:
		m.values[key] = string(v)
	case string:
		m.values[key] = v
	default:
		return redis.NewStatusResult("", errors.New("unsupported value type"))
	}
	m.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (m *memoryCmdable) Get(ctx context.Context, key string) *redis.StringCmd {
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	v, ok := m.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memoryCmdable) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	if m.err != nil {
		return redis.NewIntResult(0, m.err)
	}
	var n int64
	for _, k := range keys {
		if _, ok := m.values[k]; ok {
			delete(m.values, k)
			delete(m.ttls, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func testSession() *domain.Session {
	created := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	return &domain.Session{
		ID: "sess-42",
		User: domain.User{
			ID:        "usr_creator",
			Name:      "Casey Creator",
			Email:     "creator@fluvid.com",
			Avatar:    "https://i.pravatar.cc/150?u=creator",
			Role:      domain.RoleCreator,
			CreatedAt: created,
		},
		CreatedAt: created,
		ExpiresAt: created.Add(time.Hour),
	}
}

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "fluvid:session:abc-123", SessionKey("abc-123"))
}

func TestRedisSessionRepository_RoundTrip(t *testing.T) {
	store := newMemoryCmdable()
	repo := NewRedisSessionRepository(store)
	ctx := context.Background()
	session := testSession()

	require.NoError(t, repo.Save(ctx, session, time.Hour))

	raw, ok := store.values["fluvid:session:sess-42"]
	require.True(t, ok)
	assert.Equal(t, time.Hour, store.ttls["fluvid:session:sess-42"])
	assert.NotContains(t, raw, "password")

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "creator@fluvid.com", decoded["user"].(map[string]interface{})["email"])

	got, err := repo.Get(ctx, "sess-42")
	require.NoError(t, err)
	assert.Equal(t, session, got)
}

func TestRedisSessionRepository_NegativeTTLKeepsRecord(t *testing.T) {
	store := newMemoryCmdable()
	repo := NewRedisSessionRepository(store)

	require.NoError(t, repo.Save(context.Background(), testSession(), -time.Second))
	assert.Equal(t, time.Duration(0), store.ttls["fluvid:session:sess-42"])
}

func TestRedisSessionRepository_MissingAndDeleted(t *testing.T) {
	store := newMemoryCmdable()
	repo := NewRedisSessionRepository(store)
	ctx := context.Background()

	_, err := repo.Get(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, repo.Save(ctx, testSession(), time.Hour))
	require.NoError(t, repo.Delete(ctx, "sess-42"))
	_, err = repo.Get(ctx, "sess-42")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	assert.NoError(t, repo.Delete(ctx, "sess-42"))
}

func TestRedisSessionRepository_StoreErrors(t *testing.T) {
	store := newMemoryCmdable()
	store.err = errors.New("dial tcp: connection refused")
	repo := NewRedisSessionRepository(store)
	ctx := context.Background()

	assert.ErrorContains(t, repo.Save(ctx, testSession(), time.Hour), "connection refused")

	_, err := repo.Get(ctx, "sess-42")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)

	assert.Error(t, repo.Delete(ctx, "sess-42"))
}

func TestRedisSessionRepository_CorruptRecord(t *testing.T) {
	store := newMemoryCmdable()
	store.values["fluvid:session:sess-42"] = "{not json"
	repo := NewRedisSessionRepository(store)

	_, err := repo.Get(context.Background(), "sess-42")
	assert.ErrorContains(t, err, "unmarshal")
}

// Runs against a real server when FLUVID_TEST_REDIS_ADDRESS is set.
func TestRedisSessionRepository_Server(t *testing.T) {
	addr := os.Getenv("FLUVID_TEST_REDIS_ADDRESS")
	if addr == "" {
		t.Skip("FLUVID_TEST_REDIS_ADDRESS not set")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	ctx := context.Background()
	require.NoError(t, client.Ping(ctx).Err())

	repo := NewRedisSessionRepository(client)
	session := testSession()
	session.ID = domain.SessionID("test-" + time.Now().Format("150405.000000000"))
	t.Cleanup(func() { _ = repo.Delete(ctx, session.ID) })

	require.NoError(t, repo.Save(ctx, session, time.Minute))

	ttl, err := client.TTL(ctx, SessionKey(session.ID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
	assert.LessOrEqual(t, ttl, time.Minute)

	got, err := repo.Get(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, session, got)

	require.NoError(t, repo.Delete(ctx, session.ID))
	_, err = repo.Get(ctx, session.ID)
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestMigrations_Ordered(t *testing.T) {
	migrations := getMigrations()
	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version)
	}
	assert.Equal(t, currentSchemaVersion, migrations[len(migrations)-1].Version)
}
