package service

import (
	"context"
	"testing"
	"time"

	"github.com/cuphut/Parking-App/internal/domain"
	"github.com/cuphut/Parking-App/internal/repository"
	"github.com/cuphut/Parking-App/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthFixture() (*AuthService, *fakeUserRepo) {
	userRepo := newFakeUserRepo()
	svc := NewAuthService(userRepo, security.NewBcryptHasher(), "test-secret", time.Hour)
	return svc, userRepo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	user, err := svc.Register(ctx, domain.RegisterUserDTO{
		Username: "guard_01",
		Password: "s3cret-pass",
		Role:     false,
	})
	require.NoError(t, err)
	assert.Equal(t, "guard_01", user.Username)
	assert.Empty(t, user.Password)

	resp, err := svc.Login(ctx, domain.LoginUserDTO{Username: "guard_01", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, resp.UserID)
	assert.False(t, resp.Role)
	assert.NotEmpty(t, resp.Token)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "guard_01", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, domain.LoginUserDTO{Username: "guard_01", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginUnknownUsername(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.Login(context.Background(), domain.LoginUserDTO{Username: "ghost", Password: "whatever"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "guard_01", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, domain.RegisterUserDTO{Username: "guard_01", Password: "other-pass"})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestRegisterRejectsBadUsername(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	for _, username := range []string{"ab", "has space", "bad!chars", ""} {
		_, err := svc.Register(ctx, domain.RegisterUserDTO{Username: username, Password: "s3cret-pass"})
		assert.ErrorIs(t, err, ErrInvalidUsername, "username %q", username)
	}
}

func TestValidateTokenClaims(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "admin_01", Password: "s3cret-pass", Role: true})
	require.NoError(t, err)

	resp, err := svc.Login(ctx, domain.LoginUserDTO{Username: "admin_01", Password: "s3cret-pass"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin_01", claims["username"])
	assert.Equal(t, true, claims["role"])

	_, err = svc.ValidateToken(resp.Token + "tampered")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	userRepo := newFakeUserRepo()
	hasher := security.NewBcryptHasher()
	issuer := NewAuthService(userRepo, hasher, "secret-a", time.Hour)
	verifier := NewAuthService(userRepo, hasher, "secret-b", time.Hour)
	ctx := context.Background()

	_, err := issuer.Register(ctx, domain.RegisterUserDTO{Username: "guard_01", Password: "s3cret-pass"})
	require.NoError(t, err)
	resp, err := issuer.Login(ctx, domain.LoginUserDTO{Username: "guard_01", Password: "s3cret-pass"})
	require.NoError(t, err)

	_, err = verifier.ValidateToken(resp.Token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "guard_01", Password: "old-pass-123"})
	require.NoError(t, err)

	user, err := svc.ChangePassword(ctx, "guard_01", "new-pass-456")
	require.NoError(t, err)
	assert.Empty(t, user.Password)

	_, err = svc.Login(ctx, domain.LoginUserDTO{Username: "guard_01", Password: "old-pass-123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(ctx, domain.LoginUserDTO{Username: "guard_01", Password: "new-pass-456"})
	assert.NoError(t, err)
}

func TestChangePasswordUnknownUser(t *testing.T) {
	svc, _ := newAuthFixture()

	_, err := svc.ChangePassword(context.Background(), "ghost", "new-pass-456")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestListUsersClearsHashes(t *testing.T) {
	svc, _ := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Register(ctx, domain.RegisterUserDTO{Username: "guard_01", Password: "s3cret-pass"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, domain.RegisterUserDTO{Username: "admin_01", Password: "s3cret-pass", Role: true})
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, user := range users {
		assert.Empty(t, user.Password)
	}
}
