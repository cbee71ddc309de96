package ports

import "github.com/multihub/multihub-api/internal/core/domain"

// TokenCodec creates and verifies the signed access/refresh token pair.
// Verification is stateless: validity is purely a function of signature
// and expiry. Both Verify methods return domain.ErrTokenInvalid for any
// malformed, tampered or expired token.
type TokenCodec interface {
	Issue(userID, email string, role domain.Role) (domain.TokenPair, error)
	VerifyAccess(token string) (*domain.Claims, error)
	VerifyRefresh(token string) (*domain.Claims, error)
}
