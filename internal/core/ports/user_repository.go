package ports

import (
	"context"

	"github.com/multihub/multihub-api/internal/core/domain"
)

// UserRepository defines the interface for user persistence. Email uniqueness
// is enforced by the storage layer (unique index); Create surfaces a violation
// as domain.ErrEmailTaken.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	List(ctx context.Context, skip, limit int64) ([]domain.User, error)
	Count(ctx context.Context) (int64, error)
}
