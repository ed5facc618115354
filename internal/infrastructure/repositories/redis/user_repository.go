package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"fluvid/internal/core/domain"
	"fluvid/internal/fixtures"
	"fluvid/pkg/utils"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	userKeyPrefix  = KeyPrefix + "user:"
	userIndexKey   = KeyPrefix + "users"
	emailKeyPrefix = KeyPrefix + "user-email:"
)

type storedAccount struct {
	User         domain.User `json:"user"`
	PasswordHash []byte      `json:"passwordHash"`
}

// RedisUserRepository stores accounts as JSON plus an email -> id key that enforces unique emails.
type RedisUserRepository struct {
	client   *redis.Client
	accounts documentStore[storedAccount]
}

func NewRedisUserRepository(client *redis.Client) *RedisUserRepository {
	return &RedisUserRepository{
		client:   client,
		accounts: documentStore[storedAccount]{client: client, prefix: userKeyPrefix, index: userIndexKey, notFound: domain.ErrUserNotFound},
	}
}

// NewSeededRedisUserRepository adds the fixture accounts missing from Redis, hashing only those at cost.
func NewSeededRedisUserRepository(ctx context.Context, client *redis.Client, cost int) (*RedisUserRepository, error) {
	repo := NewRedisUserRepository(client)
	for _, seed := range fixtures.Users() {
		_, err := repo.GetByEmail(ctx, seed.User.Email)
		if err == nil {
			continue
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", seed.User.ID, err)
		}
		// another instance seeding at the same time wins the email
		err = repo.Create(ctx, &domain.Account{User: seed.User, PasswordHash: hash})
		if err != nil && !errors.Is(err, domain.ErrEmailTaken) {
			return nil, err
		}
	}
	return repo, nil
}

func emailKey(email string) string {
	return emailKeyPrefix + email
}

func (r *RedisUserRepository) Create(ctx context.Context, account *domain.Account) error {
	email := utils.NormalizeEmail(account.User.Email)
	claimed, err := r.client.SetNX(ctx, emailKey(email), string(account.User.ID), 0).Result()
	if err != nil {
		return fmt.Errorf("failed to reserve email in Redis: %w", err)
	}
	if !claimed {
		return domain.ErrEmailTaken
	}

	stored := storedAccount{User: account.User, PasswordHash: account.PasswordHash}
	stored.User.Email = email
	if err := r.accounts.create(ctx, string(stored.User.ID), &stored); err != nil {
		_ = r.client.Del(ctx, emailKey(email)).Err()
		return err
	}
	return nil
}

func (r *RedisUserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	account, err := r.accounts.get(ctx, string(id))
	if err != nil {
		return nil, err
	}
	return &account.User, nil
}

func (r *RedisUserRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	id, err := r.client.Get(ctx, emailKey(utils.NormalizeEmail(email))).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up email in Redis: %w", err)
	}
	stored, err := r.accounts.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &domain.Account{User: stored.User, PasswordHash: stored.PasswordHash}, nil
}

// Update replaces the public fields of a user and moves the email reservation in the same transaction.
func (r *RedisUserRepository) Update(ctx context.Context, user *domain.User) error {
	email := utils.NormalizeEmail(user.Email)
	return watchRetry(ctx, r.client, func(tx *redis.Tx) error {
		stored, err := r.accounts.read(ctx, tx, string(user.ID))
		if err != nil {
			return err
		}
		owner, err := tx.Get(ctx, emailKey(email)).Result()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return fmt.Errorf("failed to look up email in Redis: %w", err)
		case owner != string(user.ID):
			return domain.ErrEmailTaken
		}

		previous := stored.User.Email
		stored.User = *user
		stored.User.Email = email
		data, err := json.Marshal(stored)
		if err != nil {
			return fmt.Errorf("failed to marshal user: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.accounts.key(string(user.ID)), data, 0)
			if previous != email {
				pipe.Del(ctx, emailKey(previous))
			}
			pipe.Set(ctx, emailKey(email), string(user.ID), 0)
			return nil
		})
		return err
	}, r.accounts.key(string(user.ID)), emailKey(email))
}

func (r *RedisUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	accounts, err := r.accounts.list(ctx)
	if err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(accounts))
	for _, a := range accounts {
		user := a.User
		users = append(users, &user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}
