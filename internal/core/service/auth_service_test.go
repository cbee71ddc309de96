package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/multihub/multihub-api/internal/core/domain"
	"github.com/multihub/multihub-api/internal/core/ports"
)

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, domain.ErrEmailTaken
		}
	}
	copy := cloneUser(user)
	r.nextID++
	copy.ID = fmt.Sprintf("user_%d", r.nextID)
	r.users[copy.ID] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *stubUserRepo) List(_ context.Context, skip, limit int64) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	if skip >= int64(len(out)) {
		return nil, nil
	}
	out = out[skip:]
	if int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *stubUserRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.users)), nil
}

// seedUser inserts a user directly, bypassing the admin-only Register path.
func (r *stubUserRepo) seedUser(t *testing.T, email, password string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u, err := r.Create(context.Background(), &domain.User{
		Email:        email,
		Name:         strings.Split(email, "@")[0],
		PasswordHash: string(hash),
		Role:         role,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func newTestAuthService(repo ports.UserRepository, limiter ports.LoginLimiter) *AuthService {
	codec := NewTokenService("access-secret", "refresh-secret", 0, 0)
	return NewAuthService(repo, codec, limiter, zerolog.Nop())
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	admin := repo.seedUser(t, "admin@multihub.local", "admin123", domain.RoleAdmin)
	svc := newTestAuthService(repo, nil)

	result, err := svc.Login(context.Background(), "admin@multihub.local", "admin123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.User.ID != admin.ID || result.User.Role != domain.RoleAdmin {
		t.Fatalf("unexpected user: %+v", result.User)
	}
	if result.Tokens.AccessToken == "" || result.Tokens.RefreshToken == "" {
		t.Fatalf("expected token pair, got %+v", result.Tokens)
	}
}

func TestAuthService_Login_WrongPasswordAndUnknownUserCollapse(t *testing.T) {
	repo := newStubUserRepo()
	repo.seedUser(t, "admin@multihub.local", "admin123", domain.RoleAdmin)
	svc := newTestAuthService(repo, nil)

	_, errWrongPassword := svc.Login(context.Background(), "admin@multihub.local", "nope")
	_, errUnknownUser := svc.Login(context.Background(), "ghost@multihub.local", "nope")

	if errWrongPassword != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", errWrongPassword)
	}
	// Both failure modes must be indistinguishable.
	if errUnknownUser != errWrongPassword {
		t.Fatalf("errors differ: %v vs %v", errUnknownUser, errWrongPassword)
	}
}

type stubLimiter struct {
	failures  map[string]int
	threshold int
}

func (l *stubLimiter) TooManyFailures(_ context.Context, email string) (bool, error) {
	return l.failures[email] >= l.threshold, nil
}

func (l *stubLimiter) RecordFailure(_ context.Context, email string) error {
	l.failures[email]++
	return nil
}

func (l *stubLimiter) Reset(_ context.Context, email string) error {
	delete(l.failures, email)
	return nil
}

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	repo.seedUser(t, "bob@multihub.local", "goodpass", domain.RoleEmployee)
	limiter := &stubLimiter{failures: make(map[string]int), threshold: 3}
	svc := newTestAuthService(repo, limiter)

	for i := 0; i < 3; i++ {
		if _, err := svc.Login(context.Background(), "bob@multihub.local", "badpass"); err != domain.ErrInvalidCredentials {
			t.Fatalf("attempt %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}

	// Even the correct password is rejected while the lockout holds.
	if _, err := svc.Login(context.Background(), "bob@multihub.local", "goodpass"); err != domain.ErrTooManyAttempts {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}

	limiter.Reset(context.Background(), "bob@multihub.local")
	if _, err := svc.Login(context.Background(), "bob@multihub.local", "goodpass"); err != nil {
		t.Fatalf("login after reset failed: %v", err)
	}
	if limiter.failures["bob@multihub.local"] != 0 {
		t.Fatalf("successful login should clear the failure count")
	}
}

func TestAuthService_Register_AdminOnly(t *testing.T) {
	repo := newStubUserRepo()
	employee := repo.seedUser(t, "emp@multihub.local", "pass123", domain.RoleEmployee)
	svc := newTestAuthService(repo, nil)

	input := ports.RegisterInput{Email: "new@multihub.local", Name: "New User"}

	if _, err := svc.Register(context.Background(), input, employee.ID); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
	if _, err := svc.Register(context.Background(), input, "missing-id"); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for unknown acting user, got %v", err)
	}
	if _, err := svc.Register(context.Background(), input, ""); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for empty acting user, got %v", err)
	}
}

func TestAuthService_Register_GeneratesTempPassword(t *testing.T) {
	repo := newStubUserRepo()
	admin := repo.seedUser(t, "admin@multihub.local", "admin123", domain.RoleAdmin)
	svc := newTestAuthService(repo, nil)

	result, err := svc.Register(context.Background(), ports.RegisterInput{
		Email: "eve@multihub.local",
		Name:  "Eve",
	}, admin.ID)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if result.User.Role != domain.RoleEmployee {
		t.Fatalf("expected default EMPLOYEE role, got %s", result.User.Role)
	}
	if len(result.TempPassword) != registerTempPasswordLen {
		t.Fatalf("expected %d-char temp password, got %q", registerTempPasswordLen, result.TempPassword)
	}
	for _, r := range result.TempPassword {
		if !strings.ContainsRune(passwordAlphabet, r) {
			t.Fatalf("temp password contains %q outside the base-36 alphabet", r)
		}
	}

	// The generated temp password must actually log the new user in.
	if _, err := svc.Login(context.Background(), "eve@multihub.local", result.TempPassword); err != nil {
		t.Fatalf("login with temp password failed: %v", err)
	}
}

func TestAuthService_Register_SuppliedPassword(t *testing.T) {
	repo := newStubUserRepo()
	admin := repo.seedUser(t, "admin@multihub.local", "admin123", domain.RoleAdmin)
	svc := newTestAuthService(repo, nil)

	result, err := svc.Register(context.Background(), ports.RegisterInput{
		Email:    "frank@multihub.local",
		Name:     "Frank",
		Password: "chosen-pass",
		Role:     domain.RoleManager,
	}, admin.ID)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if result.TempPassword != "" {
		t.Fatalf("no temp password expected when one was supplied, got %q", result.TempPassword)
	}
	if _, err := svc.Login(context.Background(), "frank@multihub.local", "chosen-pass"); err != nil {
		t.Fatalf("login with supplied password failed: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	repo := newStubUserRepo()
	admin := repo.seedUser(t, "admin@multihub.local", "admin123", domain.RoleAdmin)
	svc := newTestAuthService(repo, nil)
	ctx := context.Background()

	cases := []struct {
		name  string
		input ports.RegisterInput
	}{
		{"bad email", ports.RegisterInput{Email: "not-an-email", Name: "Valid Name"}},
		{"short name", ports.RegisterInput{Email: "x@multihub.local", Name: "x"}},
		{"bad role", ports.RegisterInput{Email: "x@multihub.local", Name: "Valid", Role: "SUPERUSER"}},
	}
	for _, tc := range cases {
		if _, err := svc.Register(ctx, tc.input, admin.ID); err == nil {
			t.Fatalf("%s: expected validation error", tc.name)
		}
	}

	if _, err := svc.Register(ctx, ports.RegisterInput{
		Email: "x@multihub.local", Name: "Valid", Password: "short",
	}, admin.ID); err != domain.ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := newStubUserRepo()
	admin := repo.seedUser(t, "admin@multihub.local", "admin123", domain.RoleAdmin)
	svc := newTestAuthService(repo, nil)
	ctx := context.Background()

	if _, err := svc.Register(ctx, ports.RegisterInput{Email: "dup@multihub.local", Name: "First"}, admin.ID); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(ctx, ports.RegisterInput{Email: "dup@multihub.local", Name: "Second", Role: domain.RoleManager}, admin.ID); err != domain.ErrEmailTaken {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestAuthService_RefreshTokens(t *testing.T) {
	repo := newStubUserRepo()
	user := repo.seedUser(t, "carol@multihub.local", "s3cret", domain.RoleManager)
	svc := newTestAuthService(repo, nil)
	ctx := context.Background()

	result, err := svc.Login(ctx, "carol@multihub.local", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	pair, err := svc.RefreshTokens(ctx, result.Tokens.RefreshToken)
	if err != nil {
		t.Fatalf("refresh failed: %v", err)
	}
	claims, err := svc.tokens.VerifyAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("new access token invalid: %v", err)
	}
	if claims.UserID != user.ID || claims.Role != domain.RoleManager {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestAuthService_RefreshTokens_Invalid(t *testing.T) {
	repo := newStubUserRepo()
	repo.seedUser(t, "carol@multihub.local", "s3cret", domain.RoleManager)
	svc := newTestAuthService(repo, nil)
	ctx := context.Background()

	if _, err := svc.RefreshTokens(ctx, "garbage"); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}

	// An access token must not be accepted as a refresh token.
	result, _ := svc.Login(ctx, "carol@multihub.local", "s3cret")
	if _, err := svc.RefreshTokens(ctx, result.Tokens.AccessToken); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for access token, got %v", err)
	}
}

func TestAuthService_RefreshTokens_DeletedUser(t *testing.T) {
	repo := newStubUserRepo()
	user := repo.seedUser(t, "gone@multihub.local", "s3cret", domain.RoleEmployee)
	svc := newTestAuthService(repo, nil)
	ctx := context.Background()

	result, err := svc.Login(ctx, "gone@multihub.local", "s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	delete(repo.users, user.ID)

	if _, err := svc.RefreshTokens(ctx, result.Tokens.RefreshToken); err != domain.ErrTokenInvalid {
		t.Fatalf("expected ErrTokenInvalid for deleted user, got %v", err)
	}
}

func TestAuthService_ChangePassword(t *testing.T) {
	repo := newStubUserRepo()
	user := repo.seedUser(t, "dave@multihub.local", "oldpass", domain.RoleEmployee)
	svc := newTestAuthService(repo, nil)
	ctx := context.Background()

	if err := svc.ChangePassword(ctx, "missing", "oldpass", "newpass1"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "wrong", "newpass1"); err != domain.ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "oldpass", "oldpass"); err != domain.ErrPasswordUnchanged {
		t.Fatalf("expected ErrPasswordUnchanged, got %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "oldpass", "tiny"); err != domain.ErrPasswordTooShort {
		t.Fatalf("expected ErrPasswordTooShort, got %v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "oldpass", "newpass1"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, err := svc.Login(ctx, "dave@multihub.local", "oldpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("old password should no longer work, got %v", err)
	}
	if _, err := svc.Login(ctx, "dave@multihub.local", "newpass1"); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestAuthService_ResetPassword(t *testing.T) {
	repo := newStubUserRepo()
	admin := repo.seedUser(t, "admin@multihub.local", "admin123", domain.RoleAdmin)
	target := repo.seedUser(t, "emp@multihub.local", "oldpass", domain.RoleEmployee)
	svc := newTestAuthService(repo, nil)
	ctx := context.Background()

	if _, err := svc.ResetPassword(ctx, target.ID, target.ID); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}
	if _, err := svc.ResetPassword(ctx, "missing", admin.ID); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}

	tempPassword, err := svc.ResetPassword(ctx, target.ID, admin.ID)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if len(tempPassword) != resetTempPasswordLen {
		t.Fatalf("expected %d-char temp password, got %q", resetTempPasswordLen, tempPassword)
	}

	if _, err := svc.Login(ctx, "emp@multihub.local", "oldpass"); err != domain.ErrInvalidCredentials {
		t.Fatalf("old password should be invalid after reset, got %v", err)
	}
	if _, err := svc.Login(ctx, "emp@multihub.local", tempPassword); err != nil {
		t.Fatalf("login with temp password failed: %v", err)
	}
}

func TestAuthService_GetUserByID(t *testing.T) {
	repo := newStubUserRepo()
	user := repo.seedUser(t, "gina@multihub.local", "pass123", domain.RoleManager)
	svc := newTestAuthService(repo, nil)

	view, err := svc.GetUserByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("get user failed: %v", err)
	}
	if view.Email != "gina@multihub.local" || view.Role != domain.RoleManager {
		t.Fatalf("unexpected view: %+v", view)
	}

	if _, err := svc.GetUserByID(context.Background(), "missing"); err != domain.ErrUserNotFound {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestAuthService_ListUsers(t *testing.T) {
	repo := newStubUserRepo()
	admin := repo.seedUser(t, "admin@multihub.local", "admin123", domain.RoleAdmin)
	for i := 0; i < 12; i++ {
		repo.seedUser(t, fmt.Sprintf("user%d@multihub.local", i), "pass123", domain.RoleEmployee)
	}
	svc := newTestAuthService(repo, nil)
	ctx := context.Background()

	if _, err := svc.ListUsers(ctx, "missing", 1, 10); err != domain.ErrForbidden {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	page, err := svc.ListUsers(ctx, admin.ID, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.Total != 13 || len(page.Users) != 10 || page.Page != 1 || page.Limit != 10 {
		t.Fatalf("unexpected page: total=%d len=%d page=%d limit=%d", page.Total, len(page.Users), page.Page, page.Limit)
	}

	second, err := svc.ListUsers(ctx, admin.ID, 2, 10)
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if len(second.Users) != 3 {
		t.Fatalf("expected 3 users on second page, got %d", len(second.Users))
	}

	// Out-of-range inputs are normalised, not rejected.
	clamped, err := svc.ListUsers(ctx, admin.ID, 0, 1000)
	if err != nil {
		t.Fatalf("clamped list failed: %v", err)
	}
	if clamped.Page != 1 || clamped.Limit != 100 {
		t.Fatalf("expected page=1 limit=100, got page=%d limit=%d", clamped.Page, clamped.Limit)
	}
}
