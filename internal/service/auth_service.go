package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/blog-website/internal/domain"
	"github.com/dom/blog-website/internal/repository"
	"github.com/dom/blog-website/internal/security"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AuthService orchestrates login, logout, refresh rotation, and session
// validation. All collaborators are constructor-injected; there is no global
// registry.
type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	hasher      *security.Hasher
	signer      *security.TokenSigner
	log         *zap.Logger
}

func NewAuthService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	hasher *security.Hasher,
	signer *security.TokenSigner,
	log *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		signer:      signer,
		log:         log,
	}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
}

type LoginResult struct {
	User         domain.PublicUser
	AccessToken  string
	RefreshToken string
}

type LogoutResult struct {
	Success bool
}

// Register creates a user and logs them in. Hashing happens here, at the
// explicit user-creation boundary; a raw password never reaches the store.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*LoginResult, error) {
	user, err := s.CreateUser(ctx, input)
	if err != nil {
		return nil, err
	}

	result, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.touchLastLogin(ctx, user.ID, result)
}

// CreateUser hashes the password and persists a new user. This is the only
// write path that sets a password hash besides ChangePassword; nothing
// hashes implicitly on save.
func (s *AuthService) CreateUser(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", domain.ErrInvalidInput)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword verifies the current password, then hashes and stores the
// new one.
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	if next == "" {
		return fmt.Errorf("%w: new password is required", domain.ErrInvalidInput)
	}

	ok, err := s.userRepo.VerifyPassword(ctx, userID, current)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return err
	}
	return s.userRepo.UpdatePasswordHash(ctx, userID, hash)
}

// Login authenticates identifier (username or email) plus password. Unknown
// user and wrong password collapse to the same error value so the caller
// cannot tell which one failed.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*LoginResult, error) {
	user, err := s.userRepo.FindByIdentifier(ctx, identifier)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}

	ok, err := s.userRepo.VerifyPassword(ctx, user.ID, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	result, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, err
	}
	return s.touchLastLogin(ctx, user.ID, result)
}

// touchLastLogin is a best-effort secondary write: a failure surfaces as
// ErrLastLoginUpdate but the already-issued tokens stay valid.
func (s *AuthService) touchLastLogin(ctx context.Context, userID uuid.UUID, result *LoginResult) (*LoginResult, error) {
	updated, err := s.userRepo.SetLastLogin(ctx, userID)
	if err != nil || updated == nil {
		s.log.Error("last login update failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, domain.ErrLastLoginUpdate
	}
	result.User = updated.Public()
	return result, nil
}

// issueTokenPair signs an access/refresh pair bound to a fresh correlation
// id, fingerprints both signed strings, and appends one session.
func (s *AuthService) issueTokenPair(ctx context.Context, user *domain.User) (*LoginResult, error) {
	tokenID := uuid.New()
	now := time.Now().UTC()

	var (
		accessToken, refreshToken   string
		accessExpiry, refreshExpiry time.Time
	)

	// The two signatures are independent.
	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		accessToken, accessExpiry, err = s.signer.SignAccess(user.ID.String(), user.Username, tokenID.String())
		return err
	})
	g.Go(func() error {
		var err error
		refreshToken, refreshExpiry, err = s.signer.SignRefresh(user.ID.String(), user.Username, tokenID.String())
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("token signing failed", zap.Error(err))
		return nil, fmt.Errorf("%w: token signing", domain.ErrSessionCreation)
	}

	persisted, err := s.sessionRepo.Create(ctx, user.ID, repository.NewSession{
		TokenID:           tokenID,
		AccessValidSince:  now,
		AccessValidUntil:  accessExpiry,
		AccessTokenHash:   security.TokenFingerprint(accessToken),
		RefreshValidSince: now,
		RefreshValidUntil: refreshExpiry,
		RefreshTokenHash:  security.TokenFingerprint(refreshToken),
	})
	if err != nil {
		s.log.Error("session creation failed", zap.String("user_id", user.ID.String()), zap.Error(err))
		return nil, domain.ErrSessionCreation
	}
	if persisted == nil {
		return nil, domain.ErrSessionCreation
	}

	return &LoginResult{
		User:         persisted.Public(),
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Logout revokes every live session of the user. Success reports whether
// anything was live to revoke; "nothing to revoke" is a status, not an
// error.
func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) (LogoutResult, error) {
	revoked, err := s.sessionRepo.RevokeAll(ctx, userID)
	if err != nil {
		return LogoutResult{Success: false}, err
	}
	return LogoutResult{Success: revoked}, nil
}

// Refresh rotates a refresh token: verify, match against the stored session
// fingerprint, issue a new pair, revoke the matched session. Every failure
// collapses to ErrUnauthorized.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResult, error) {
	claims, err := s.signer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	tokenID, err := uuid.Parse(claims.TokenID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.log.Warn("refresh for unknown user", zap.String("user_id", claims.Subject))
		return nil, domain.ErrUnauthorized
	}

	session, err := s.sessionRepo.GetByTokenID(ctx, userID, tokenID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	if session == nil || session.Revoked || session.RefreshTokenHash == "" {
		return nil, domain.ErrUnauthorized
	}
	if !security.TokenFingerprintEqual(refreshToken, session.RefreshTokenHash) {
		return nil, domain.ErrUnauthorized
	}

	result, err := s.issueTokenPair(ctx, user)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	// Rotation: the presented token's session must not stay redeemable.
	if err := s.sessionRepo.Revoke(ctx, session.ID); err != nil {
		s.log.Error("failed to revoke rotated session", zap.String("session_id", session.ID.String()), zap.Error(err))
	}

	return result, nil
}

// Authenticate resolves a bearer token to a user: signature and expiry via
// the signer, then session liveness via the store. A well-signed token whose
// session has been revoked or has expired is rejected.
func (s *AuthService) Authenticate(ctx context.Context, bearerToken string) (*domain.User, error) {
	claims, err := s.signer.VerifyAccess(bearerToken)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}
	tokenID, err := uuid.Parse(claims.TokenID)
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.sessionRepo.IsLoggedIn(ctx, userID, tokenID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}

// GetUserByID is used by handlers that already hold an authenticated id.
func (s *AuthService) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}
