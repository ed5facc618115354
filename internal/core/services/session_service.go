package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fluvid/internal/core/domain"
	"fluvid/internal/core/ports"
	"fluvid/internal/fixtures"
	"fluvid/pkg/utils"
	"fluvid/pkg/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type sessionService struct {
	users      ports.UserRepository
	sessions   ports.SessionRepository
	sessionTTL time.Duration
	bcryptCost int
	metrics    ports.MetricsRecorder
	logger     *zap.SugaredLogger
}

type SessionServiceOption func(*sessionService)

// WithBcryptCost sets the cost used when hashing passwords of new accounts.
func WithBcryptCost(cost int) SessionServiceOption {
	return func(s *sessionService) { s.bcryptCost = cost }
}

func WithSessionMetrics(m ports.MetricsRecorder) SessionServiceOption {
	return func(s *sessionService) { s.metrics = m }
}

func NewSessionService(
	users ports.UserRepository,
	sessions ports.SessionRepository,
	sessionTTL time.Duration,
	logger *zap.SugaredLogger,
	opts ...SessionServiceOption,
) ports.SessionService {
	s := &sessionService{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		bcryptCost: bcrypt.DefaultCost,
		metrics:    NopMetrics{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login succeeds only for a known email whose password matches. A failed attempt writes nothing.
func (s *sessionService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	account, err := s.users.GetByEmail(ctx, utils.NormalizeEmail(email))
	if errors.Is(err, domain.ErrUserNotFound) {
		s.metrics.RecordLogin(false)
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		s.metrics.RecordLogin(false)
		s.logger.Infow("login rejected", "email", utils.MaskEmail(account.User.Email))
		return nil, domain.ErrInvalidCredentials
	}

	session, err := s.open(ctx, account.User)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordLogin(true)
	s.logger.Infow("user logged in", "user_id", account.User.ID, "session_id", session.ID)
	return session, nil
}

func (s *sessionService) Register(ctx context.Context, name, email, password string) (*domain.Session, error) {
	name = utils.SanitizeString(name)
	email = utils.NormalizeEmail(email)

	if err := validation.ValidateName(name); err != nil {
		return nil, domain.NewValidationError("name", err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, domain.NewValidationError("email", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, domain.NewValidationError("password", err)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up account: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		ID:        domain.UserID(uuid.NewString()),
		Name:      name,
		Email:     email,
		Avatar:    fixtures.AvatarURL(name),
		Role:      domain.RoleCreator,
		CreatedAt: utils.Now().UTC(),
	}
	if err := s.users.Create(ctx, &domain.Account{User: user, PasswordHash: hash}); err != nil {
		return nil, err
	}

	session, err := s.open(ctx, user)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordRegistration()
	s.logger.Infow("user registered", "user_id", user.ID, "email", utils.MaskEmail(email))
	return session, nil
}

func (s *sessionService) Logout(ctx context.Context, id domain.SessionID) error {
	if id == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.logger.Debugw("session closed", "session_id", id)
	return nil
}

func (s *sessionService) Current(ctx context.Context, id domain.SessionID) (*domain.User, error) {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Expired(utils.Now()) {
		_ = s.sessions.Delete(ctx, id)
		return nil, domain.ErrSessionNotFound
	}
	return &session.User, nil
}

func (s *sessionService) Rewrite(ctx context.Context, id domain.SessionID, user *domain.User) error {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}

	var ttl time.Duration
	if !session.ExpiresAt.IsZero() {
		ttl = session.ExpiresAt.Sub(utils.Now())
		if ttl <= 0 {
			_ = s.sessions.Delete(ctx, id)
			return domain.ErrSessionNotFound
		}
	}

	session.User = *user
	if err := s.sessions.Save(ctx, session, ttl); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *sessionService) open(ctx context.Context, user domain.User) (*domain.Session, error) {
	now := utils.Now().UTC()
	session := &domain.Session{
		ID:        domain.SessionID(utils.NewSessionID()),
		User:      user,
		CreatedAt: now,
	}
	if s.sessionTTL > 0 {
		session.ExpiresAt = now.Add(s.sessionTTL)
	}
	if err := s.sessions.Save(ctx, session, s.sessionTTL); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return session, nil
}
