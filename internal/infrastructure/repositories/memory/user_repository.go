package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/internal/fixtures"
	"fluvid/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

type MemoryUserRepository struct {
	users   map[domain.UserID]*domain.Account
	byEmail map[string]domain.UserID
	mu      sync.RWMutex
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		users:   make(map[domain.UserID]*domain.Account),
		byEmail: make(map[string]domain.UserID),
	}
}

// NewSeededUserRepository returns a repository holding the fixture accounts,
// with their demo passwords hashed at the given bcrypt cost.
func NewSeededUserRepository(cost int) (ports.UserRepository, error) {
	repo := NewMemoryUserRepository()
	for _, seed := range fixtures.Users() {
		hash, err := bcrypt.GenerateFromPassword([]byte(seed.Password), cost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password for %s: %w", seed.User.ID, err)
		}
		if err := repo.Create(context.Background(), &domain.Account{User: seed.User, PasswordHash: hash}); err != nil {
			return nil, err
		}
	}
	return repo, nil
}

func (r *MemoryUserRepository) Create(ctx context.Context, account *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	email := utils.NormalizeEmail(account.User.Email)
	if _, exists := r.byEmail[email]; exists {
		return domain.ErrEmailTaken
	}
	if _, exists := r.users[account.User.ID]; exists {
		return fmt.Errorf("user already exists: %s", account.User.ID)
	}

	stored := *account
	stored.User.Email = email
	stored.PasswordHash = append([]byte(nil), account.PasswordHash...)
	r.users[stored.User.ID] = &stored
	r.byEmail[email] = stored.User.ID
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id domain.UserID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, exists := r.users[id]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	user := account.User
	return &user, nil
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.byEmail[utils.NormalizeEmail(email)]
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	account := *r.users[id]
	return &account, nil
}

// Update replaces the public fields of a user; the password hash is kept.
func (r *MemoryUserRepository) Update(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	account, exists := r.users[user.ID]
	if !exists {
		return domain.ErrUserNotFound
	}

	email := utils.NormalizeEmail(user.Email)
	if owner, taken := r.byEmail[email]; taken && owner != user.ID {
		return domain.ErrEmailTaken
	}

	delete(r.byEmail, account.User.Email)
	account.User = *user
	account.User.Email = email
	r.byEmail[email] = user.ID
	return nil
}

func (r *MemoryUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.users))
	for _, account := range r.users {
		user := account.User
		users = append(users, &user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}
