package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/mail"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/multihub/multihub-api/internal/core/domain"
	"github.com/multihub/multihub-api/internal/core/ports"
)

const (
	minPasswordLen = 6
	minNameLen     = 2

	// Temp password lengths mirror the seeded data conventions:
	// 10 characters at registration, 8 on an admin-triggered reset.
	registerTempPasswordLen = 10
	resetTempPasswordLen    = 8
)

// AuthService orchestrates login, registration, password management and
// token refresh against the user repository and token codec.
type AuthService struct {
	repo    ports.UserRepository
	tokens  ports.TokenCodec
	limiter ports.LoginLimiter
	logger  zerolog.Logger
}

// NewAuthService wires the service. limiter may be nil, in which case login
// throttling is disabled.
func NewAuthService(repo ports.UserRepository, tokens ports.TokenCodec, limiter ports.LoginLimiter, logger zerolog.Logger) *AuthService {
	return &AuthService{repo: repo, tokens: tokens, limiter: limiter, logger: logger}
}

// Login validates credentials and issues a token pair. A missing user and a
// wrong password return the same ErrInvalidCredentials so callers cannot
// enumerate accounts.
func (s *AuthService) Login(ctx context.Context, email, password string) (*ports.LoginResult, error) {
	if email == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	if throttled := s.checkThrottle(ctx, email); throttled {
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if err == domain.ErrUserNotFound {
			s.recordFailure(ctx, email)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.recordFailure(ctx, email)
		return nil, domain.ErrInvalidCredentials
	}

	pair, err := s.tokens.Issue(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	s.resetThrottle(ctx, email)
	s.logger.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")

	return &ports.LoginResult{User: user.View(), Tokens: pair}, nil
}

// Register creates a new account. Only an ADMIN may register users. When no
// password is supplied, a temporary password is generated server-side and
// returned in plaintext exactly once.
func (s *AuthService) Register(ctx context.Context, input ports.RegisterInput, actingUserID string) (*ports.RegisterResult, error) {
	if err := s.requireAdmin(ctx, actingUserID); err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleEmployee
	}
	if err := validateRegisterInput(input, role); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, domain.ErrEmailTaken
	} else if err != domain.ErrUserNotFound {
		return nil, err
	}

	password := input.Password
	tempPassword := ""
	if password == "" {
		generated, err := randomPassword(registerTempPasswordLen)
		if err != nil {
			return nil, err
		}
		password = generated
		tempPassword = generated
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	created, err := s.repo.Create(ctx, &domain.User{
		Email:        input.Email,
		Name:         input.Name,
		PasswordHash: string(hash),
		Role:         role,
		SedeID:       input.SedeID,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", created.ID).Str("role", string(role)).Str("created_by", actingUserID).Msg("user registered")

	return &ports.RegisterResult{User: created.View(), TempPassword: tempPassword}, nil
}

// RefreshTokens mints a fresh token pair from a valid refresh token. The old
// refresh token is not invalidated server-side: tokens are stateless.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return domain.TokenPair{}, domain.ErrTokenInvalid
	}

	// A deleted user must not be able to mint new tokens.
	user, err := s.repo.FindByID(ctx, claims.UserID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return domain.TokenPair{}, domain.ErrTokenInvalid
		}
		return domain.TokenPair{}, err
	}

	return s.tokens.Issue(user.ID, user.Email, user.Role)
}

// ChangePassword replaces a user's password after verifying the old one.
func (s *AuthService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return domain.ErrInvalidCredentials
	}
	if newPassword == oldPassword {
		return domain.ErrPasswordUnchanged
	}
	if len(newPassword) < minPasswordLen {
		return domain.ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("password changed")
	return nil
}

// ResetPassword sets a random temporary password on the target account and
// returns it in plaintext. Admin only; the plaintext is never stored.
func (s *AuthService) ResetPassword(ctx context.Context, targetUserID, actingUserID string) (string, error) {
	if err := s.requireAdmin(ctx, actingUserID); err != nil {
		return "", err
	}

	user, err := s.repo.FindByID(ctx, targetUserID)
	if err != nil {
		return "", err
	}

	tempPassword, err := randomPassword(resetTempPasswordLen)
	if err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	if err := s.repo.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return "", err
	}

	s.logger.Info().Str("user_id", user.ID).Str("reset_by", actingUserID).Msg("password reset")
	return tempPassword, nil
}

// GetUserByID returns the credential-free view of a user.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.UserView, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	view := user.View()
	return &view, nil
}

// ListUsers pages through all users, newest first. Admin only.
func (s *AuthService) ListUsers(ctx context.Context, actingUserID string, page, limit int) (*ports.UserPage, error) {
	if err := s.requireAdmin(ctx, actingUserID); err != nil {
		return nil, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	total, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	users, err := s.repo.List(ctx, int64(page-1)*int64(limit), int64(limit))
	if err != nil {
		return nil, err
	}

	views := make([]domain.UserView, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}

	return &ports.UserPage{Users: views, Total: total, Page: page, Limit: limit}, nil
}

func (s *AuthService) requireAdmin(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.ErrForbidden
	}
	acting, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if err == domain.ErrUserNotFound {
			return domain.ErrForbidden
		}
		return err
	}
	if acting.Role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

// checkThrottle reports whether this email is currently locked out.
// Limiter failures fail open.
func (s *AuthService) checkThrottle(ctx context.Context, email string) bool {
	if s.limiter == nil {
		return false
	}
	throttled, err := s.limiter.TooManyFailures(ctx, email)
	if err != nil {
		s.logger.Warn().Err(err).Msg("login limiter unavailable")
		return false
	}
	return throttled
}

func (s *AuthService) recordFailure(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.RecordFailure(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record login failure")
	}
}

func (s *AuthService) resetThrottle(ctx context.Context, email string) {
	if s.limiter == nil {
		return
	}
	if err := s.limiter.Reset(ctx, email); err != nil {
		s.logger.Warn().Err(err).Msg("failed to reset login failures")
	}
}

func validateRegisterInput(input ports.RegisterInput, role domain.Role) error {
	if _, err := mail.ParseAddress(input.Email); err != nil {
		return fmt.Errorf("%w: invalid email", domain.ErrInvalidInput)
	}
	if len(input.Name) < minNameLen {
		return fmt.Errorf("%w: name must be at least %d characters", domain.ErrInvalidInput, minNameLen)
	}
	if input.Password != "" && len(input.Password) < minPasswordLen {
		return domain.ErrPasswordTooShort
	}
	if !role.Valid() {
		return fmt.Errorf("%w: unknown role %q", domain.ErrInvalidInput, role)
	}
	return nil
}

const passwordAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// randomPassword draws n characters from a base-36 alphabet using crypto/rand.
func randomPassword(n int) (string, error) {
	out := make([]byte, n)
	max := big.NewInt(int64(len(passwordAlphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate password: %w", err)
		}
		out[i] = passwordAlphabet[idx.Int64()]
	}
	return string(out), nil
}
