package ports

import (
	"context"

	"github.com/multihub/multihub-api/internal/core/domain"
)

// RegisterInput is the data an admin supplies when creating an account.
// Password is optional: when empty a temporary password is generated.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
	Role     domain.Role
	SedeID   string
}

// LoginResult couples the authenticated user view with its token pair.
type LoginResult struct {
	User   domain.UserView  `json:"user"`
	Tokens domain.TokenPair `json:"tokens"`
}

// RegisterResult returns the created user. TempPassword is set only when
// the service generated one; it is disclosed exactly once and never stored
// in plaintext.
type RegisterResult struct {
	User         domain.UserView `json:"user"`
	TempPassword string          `json:"tempPassword,omitempty"`
}

// UserPage is one page of the admin user listing, newest first.
type UserPage struct {
	Users []domain.UserView `json:"users"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type AuthService interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, input RegisterInput, actingUserID string) (*RegisterResult, error)
	RefreshTokens(ctx context.Context, refreshToken string) (domain.TokenPair, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	ResetPassword(ctx context.Context, targetUserID, actingUserID string) (string, error)
	GetUserByID(ctx context.Context, id string) (*domain.UserView, error)
	ListUsers(ctx context.Context, actingUserID string, page, limit int) (*UserPage, error)
}
