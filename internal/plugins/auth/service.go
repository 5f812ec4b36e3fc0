package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/inlineeditor/internal/apperror"
)

// AuthService defines the business logic contract for authentication.
// Handlers call these methods -- they never touch the repository directly.
type AuthService interface {
	Register(ctx context.Context, input RegisterInput) (*User, error)
	Login(ctx context.Context, input LoginInput) (token string, user *User, err error)

	// ValidateSession returns the session for token and extends its
	// lifetime.
	ValidateSession(ctx context.Context, token string) (*Session, error)
	DestroySession(ctx context.Context, token string) error
}

// authService implements AuthService with argon2id hashing and Redis sessions.
type authService struct {
	repo     UserRepository
	sessions *sessionStore
	params   passwordParams
	now      func() time.Time
}

// NewAuthService creates a new auth service. Sessions expire after
// sessionTTL without activity.
func NewAuthService(repo UserRepository, rdb *redis.Client, sessionTTL time.Duration) AuthService {
	return &authService{
		repo:     repo,
		sessions: newSessionStore(rdb, sessionTTL),
		params:   defaultPasswordParams,
		now:      time.Now,
	}
}

// Register creates a new user account. The first user on a fresh install
// becomes site admin.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	// Checked before the expensive hashing.
	exists, err := s.repo.EmailExists(ctx, email)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("checking email: %w", err))
	}
	if exists {
		return nil, apperror.NewConflict("an account with this email already exists")
	}

	count, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("counting users: %w", err))
	}

	hash, err := s.params.hash(input.Password)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hashing password: %w", err))
	}

	user := &User{
		ID:           uuid.NewString(),
		Email:        email,
		DisplayName:  strings.TrimSpace(input.DisplayName),
		PasswordHash: hash,
		IsAdmin:      count == 0,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("creating user: %w", err))
	}

	slog.Info("user registered",
		slog.String("user_id", user.ID),
		slog.Bool("is_admin", user.IsAdmin),
	)
	return user, nil
}

// Login authenticates by email and password and opens a session. Hashes
// made with outdated cost settings are replaced on the way.
func (s *authService) Login(ctx context.Context, input LoginInput) (string, *User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		// Unknown emails look like wrong passwords.
		if apperror.IsNotFound(err) {
			return "", nil, apperror.NewUnauthorized("invalid email or password")
		}
		return "", nil, apperror.NewInternal(fmt.Errorf("finding user: %w", err))
	}

	ok, stale := s.params.verify(input.Password, user.PasswordHash)
	if !ok {
		return "", nil, apperror.NewUnauthorized("invalid email or password")
	}
	if stale {
		s.rehash(ctx, user, input.Password)
	}

	token, err := s.sessions.create(ctx, &Session{
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.DisplayName,
		IsAdmin:   user.IsAdmin,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return "", nil, apperror.NewInternal(fmt.Errorf("creating session: %w", err))
	}

	if err := s.repo.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("failed to update last login",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))
	return token, user, nil
}

// rehash stores a hash made with the current settings. Failures keep the
// old hash, which still verifies.
func (s *authService) rehash(ctx context.Context, user *User, password string) {
	hash, err := s.params.hash(password)
	if err == nil {
		err = s.repo.UpdatePasswordHash(ctx, user.ID, hash)
	}
	if err != nil {
		slog.Warn("failed to upgrade password hash",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return
	}
	user.PasswordHash = hash
}

// ValidateSession looks up a session token.
func (s *authService) ValidateSession(ctx context.Context, token string) (*Session, error) {
	session, err := s.sessions.get(ctx, token)
	if errors.Is(err, errNoSession) {
		return nil, apperror.NewUnauthorized("session expired or invalid")
	}
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	return session, nil
}

// DestroySession removes a session, logging the user out.
func (s *authService) DestroySession(ctx context.Context, token string) error {
	if err := s.sessions.destroy(ctx, token); err != nil {
		return apperror.NewInternal(err)
	}
	return nil
}
