package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/dom/blog-website/internal/domain"
	"github.com/dom/blog-website/internal/repository/postgres"
	"github.com/dom/blog-website/internal/service"
	"github.com/dom/blog-website/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(t *testing.T, testDB *testutil.TestDB) *service.AuthService {
	t.Helper()

	cfg := testutil.TestConfig()
	hasher := testutil.TestHasher(cfg)
	signer := testutil.TestSigner(cfg)
	repos := postgres.NewRepositories(testDB.DB, hasher, zap.NewNop())
	return service.NewServices(repos, hasher, signer, zap.NewNop()).Auth
}

func sessionCount(t *testing.T, testDB *testutil.TestDB, userID uuid.UUID) int64 {
	t.Helper()

	var n int64
	err := testDB.DB.Model(&domain.Session{}).Where("user_id = ?", userID).Count(&n).Error
	require.NoError(t, err)
	return n
}

func TestAuthService_Register(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	authService := newAuthService(t, testDB)
	ctx := context.Background()

	result, err := authService.Register(ctx, service.RegisterInput{
		Username: "newuser",
		Email:    "newuser@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, "newuser", result.User.Username)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	// A raw password must never reach storage.
	var stored domain.User
	require.NoError(t, testDB.DB.First(&stored, "username = ?", "newuser").Error)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))
	assert.NotContains(t, stored.PasswordHash, "password123")
	assert.NotNil(t, stored.LastLogin)

	// Duplicate username
	_, err = authService.Register(ctx, service.RegisterInput{
		Username: "newuser",
		Email:    "other@example.com",
		Password: "password123",
	})
	assert.ErrorIs(t, err, domain.ErrUserAlreadyExists)

	// Missing fields
	_, err = authService.Register(ctx, service.RegisterInput{Username: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAuthService_Login(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	authService := newAuthService(t, testDB)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("loginuser").
		WithEmail("loginuser@example.com").
		WithPassword("correctpassword").
		Build(t, testDB.DB)

	t.Run("login by username", func(t *testing.T) {
		result, err := authService.Login(ctx, "loginuser", rawPassword)
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)
		assert.NotEmpty(t, result.AccessToken)
		assert.NotEmpty(t, result.RefreshToken)
		assert.NotNil(t, result.User.LastLogin)
		assert.EqualValues(t, 1, sessionCount(t, testDB, user.ID))
	})

	t.Run("login by email", func(t *testing.T) {
		result, err := authService.Login(ctx, "loginuser@example.com", rawPassword)
		require.NoError(t, err)
		assert.Equal(t, user.ID, result.User.ID)
	})

	t.Run("failure modes are indistinguishable", func(t *testing.T) {
		_, wrongPasswordErr := authService.Login(ctx, "loginuser", "wrongpassword")
		_, unknownUserErr := authService.Login(ctx, "nosuchuser", "anypassword")

		assert.ErrorIs(t, wrongPasswordErr, domain.ErrInvalidCredentials)
		assert.ErrorIs(t, unknownUserErr, domain.ErrInvalidCredentials)
		assert.Equal(t, wrongPasswordErr.Error(), unknownUserErr.Error())
	})

	t.Run("empty identifier is invalid input", func(t *testing.T) {
		_, err := authService.Login(ctx, "", "anypassword")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestAuthService_Logout(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	authService := newAuthService(t, testDB)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("logoutuser").
		Build(t, testDB.DB)

	// Nothing to revoke yet: a status report, not an error.
	result, err := authService.Logout(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)

	_, err = authService.Login(ctx, "logoutuser", rawPassword)
	require.NoError(t, err)

	result, err = authService.Logout(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)

	// Everything already revoked.
	result, err = authService.Logout(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestAuthService_Refresh(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	authService := newAuthService(t, testDB)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("refreshuser").
		Build(t, testDB.DB)

	login, err := authService.Login(ctx, "refreshuser", rawPassword)
	require.NoError(t, err)

	t.Run("valid refresh rotates the session", func(t *testing.T) {
		rotated, err := authService.Refresh(ctx, login.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, login.AccessToken, rotated.AccessToken)
		assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)
		assert.Equal(t, user.ID, rotated.User.ID)

		// Rotation appends; the prior session is revoked, not edited.
		assert.EqualValues(t, 2, sessionCount(t, testDB, user.ID))

		var revoked int64
		err = testDB.DB.Model(&domain.Session{}).
			Where("user_id = ? AND revoked = ?", user.ID, true).
			Count(&revoked).Error
		require.NoError(t, err)
		assert.EqualValues(t, 1, revoked)
	})

	t.Run("rotated token cannot be replayed", func(t *testing.T) {
		_, err := authService.Refresh(ctx, login.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("tampered token", func(t *testing.T) {
		_, err := authService.Refresh(ctx, login.RefreshToken+"x")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("access token is not a refresh token", func(t *testing.T) {
		_, err := authService.Refresh(ctx, login.AccessToken)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("refresh after logout", func(t *testing.T) {
		fresh, err := authService.Login(ctx, "refreshuser", rawPassword)
		require.NoError(t, err)

		_, err = authService.Logout(ctx, user.ID)
		require.NoError(t, err)

		_, err = authService.Refresh(ctx, fresh.RefreshToken)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestAuthService_Authenticate(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	authService := newAuthService(t, testDB)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("guarduser").
		Build(t, testDB.DB)

	login, err := authService.Login(ctx, "guarduser", rawPassword)
	require.NoError(t, err)

	t.Run("fresh token resolves the user", func(t *testing.T) {
		principal, err := authService.Authenticate(ctx, login.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, principal.ID)
	})

	t.Run("expired session rejects a well-signed token", func(t *testing.T) {
		testutil.ExpireSession(t, testDB.DB, user.ID)

		_, err := authService.Authenticate(ctx, login.AccessToken)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("logout invalidates the session before JWT expiry", func(t *testing.T) {
		fresh, err := authService.Login(ctx, "guarduser", rawPassword)
		require.NoError(t, err)

		_, err = authService.Authenticate(ctx, fresh.AccessToken)
		require.NoError(t, err)

		_, err = authService.Logout(ctx, user.ID)
		require.NoError(t, err)

		// Signature is still valid; session liveness is what fails.
		_, err = authService.Authenticate(ctx, fresh.AccessToken)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := authService.Authenticate(ctx, "notavalidjwt")
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	testDB := testutil.NewTestDB(t)
	authService := newAuthService(t, testDB)
	ctx := context.Background()

	user, rawPassword := testutil.NewUserBuilder().
		WithUsername("pwuser").
		WithPassword("oldpassword1").
		Build(t, testDB.DB)

	err := authService.ChangePassword(ctx, user.ID, "wrongcurrent", "newpassword1")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	err = authService.ChangePassword(ctx, user.ID, rawPassword, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = authService.ChangePassword(ctx, user.ID, rawPassword, "newpassword1")
	require.NoError(t, err)

	_, err = authService.Login(ctx, "pwuser", rawPassword)
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = authService.Login(ctx, "pwuser", "newpassword1")
	require.NoError(t, err)
}
