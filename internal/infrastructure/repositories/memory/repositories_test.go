package memory

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/internal/fixtures"
	"fluvid/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSessionRepository_StoresUserWithoutPassword(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	session := &domain.Session{
		ID:        "sess-1",
		User:      fixtures.Users()[1].User,
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Save(ctx, session, 0))

	raw, ok := repo.Raw("sess-1")
	require.True(t, ok)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), fixtures.Users()[1].Password)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	user := decoded["user"].(map[string]interface{})
	assert.Equal(t, "creator@fluvid.com", user["email"])

	got, err := repo.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Equal(t, session.User, got.User)
}

func TestSessionRepository_Expiry(t *testing.T) {
	orig := utils.Now
	defer func() { utils.Now = orig }()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	utils.Now = func() time.Time { return now }

	repo := NewMemorySessionRepository()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "s"}, time.Minute))

	_, err := repo.Get(ctx, "s")
	require.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = repo.Get(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Equal(t, 0, repo.Len())
}

func TestSessionRepository_DeleteUnknownIsNoop(t *testing.T) {
	repo := NewMemorySessionRepository()
	assert.NoError(t, repo.Delete(context.Background(), "missing"))
}

func TestUserRepository_Seeded(t *testing.T) {
	repo, err := NewSeededUserRepository(bcrypt.MinCost)
	require.NoError(t, err)
	ctx := context.Background()

	account, err := repo.GetByEmail(ctx, "  Admin@Fluvid.com ")
	require.NoError(t, err)
	assert.Equal(t, fixtures.AdminID, account.User.ID)
	assert.NoError(t, bcrypt.CompareHashAndPassword(account.PasswordHash, []byte("admin123")))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, len(fixtures.Users()))
}

func TestUserRepository_EmailUniqueness(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &domain.Account{User: domain.User{ID: "u1", Email: "a@x.io"}}))
	require.NoError(t, repo.Create(ctx, &domain.Account{User: domain.User{ID: "u2", Email: "b@x.io"}}))

	err := repo.Create(ctx, &domain.Account{User: domain.User{ID: "u3", Email: "A@X.io"}})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	err = repo.Update(ctx, &domain.User{ID: "u2", Email: "a@x.io"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)

	require.NoError(t, repo.Update(ctx, &domain.User{ID: "u2", Email: "c@x.io", Name: "C"}))
	_, err = repo.GetByEmail(ctx, "b@x.io")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	account, err := repo.GetByEmail(ctx, "c@x.io")
	require.NoError(t, err)
	assert.Equal(t, "C", account.User.Name)
}

func TestVideoRepository_ReturnsCopies(t *testing.T) {
	repo := NewSeededVideoRepository()
	ctx := context.Background()

	v, err := repo.GetByID(ctx, "vid_001")
	require.NoError(t, err)
	v.Chapters[0].Title = "mutated"
	v.Tags[0] = "mutated"

	again, err := repo.GetByID(ctx, "vid_001")
	require.NoError(t, err)
	assert.Equal(t, "Intro", again.Chapters[0].Title)
	assert.Equal(t, "tutorial", again.Tags[0])

	assert.ErrorIs(t, repo.Delete(ctx, "nope"), domain.ErrVideoNotFound)
}

func TestVideoRepository_MutateSerializesWriters(t *testing.T) {
	repo := NewSeededVideoRepository()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Mutate(ctx, "vid_001", func(v *domain.Video) error {
				v.Views++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	v, err := repo.GetByID(ctx, "vid_001")
	require.NoError(t, err)
	seed, _ := NewSeededVideoRepository().GetByID(ctx, "vid_001")
	assert.Equal(t, seed.Views+20, v.Views)
}

func TestSeriesRepository_CRUD(t *testing.T) {
	repo := NewSeededSeriesRepository()
	ctx := context.Background()

	s, err := repo.Mutate(ctx, "ser_001", func(s *domain.Series) error {
		s.Title = "Renamed"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", s.Title)

	_, err = repo.Mutate(ctx, "ser_001", func(s *domain.Series) error {
		s.Title = "Discarded"
		return domain.ErrInvalidPrice
	})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)

	got, err := repo.GetByID(ctx, "ser_001")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)

	_, err = repo.Mutate(ctx, "nope", func(*domain.Series) error { return nil })
	assert.ErrorIs(t, err, domain.ErrSeriesNotFound)

	require.NoError(t, repo.Delete(ctx, "ser_001"))
	_, err = repo.GetByID(ctx, "ser_001")
	assert.ErrorIs(t, err, domain.ErrSeriesNotFound)
}

func TestAnalyticsRepository_DailyStats(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	repo := NewFixtureAnalyticsRepository(func() time.Time { return now })
	ctx := context.Background()

	week, err := repo.DailyStats(ctx, fixtures.CreatorID, 7)
	require.NoError(t, err)
	assert.Len(t, week, 7)

	all, err := repo.DailyStats(ctx, "", 7)
	require.NoError(t, err)
	assert.Greater(t, all[0].Views, week[0].Views)

	avg, pct, err := repo.Retention(ctx, "vid_001")
	require.NoError(t, err)
	assert.Equal(t, 412, avg)
	assert.InDelta(t, 54.6, pct, 0.001)
}

func TestMonetizationRepository_DefaultsToZero(t *testing.T) {
	repo := NewMemoryMonetizationRepository()
	ctx := context.Background()

	s, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, s.Enabled)

	require.NoError(t, repo.Save(ctx, "u1", &domain.MonetizationSettings{Enabled: true, PayoutEmail: "p@x.io"}))
	s, err = repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, s.Enabled)
}
