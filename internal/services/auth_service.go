package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/hindusthan/agriserve/internal/auth"
	"github.com/hindusthan/agriserve/internal/auth/google"
	"github.com/hindusthan/agriserve/internal/models"
	"github.com/hindusthan/agriserve/pkg/crypto"
	apperrors "github.com/hindusthan/agriserve/pkg/errors"
	"github.com/hindusthan/agriserve/pkg/logger"
)

// GoogleVerifier validates a Google ID token and extracts the federated
// identity. Satisfied by *google.Verifier.
type GoogleVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*google.Identity, error)
}

// AuthOption customises the AuthService.
type AuthOption func(*AuthService)

// WithAuthClock injects a custom time source.
func WithAuthClock(clock func() time.Time) AuthOption {
	return func(s *AuthService) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithExposeOTP controls whether plaintext codes are echoed in responses.
// This is a development convenience; production deployments deliver codes
// over email only.
func WithExposeOTP(expose bool) AuthOption {
	return func(s *AuthService) {
		s.exposeOTP = expose
	}
}

// AuthService drives the signup, verification and login workflows. Per
// email an account moves Unregistered -> PendingVerification -> Verified,
// and the verified transition happens exactly once.
type AuthService struct {
	users    *UserService
	otps     *OTPService
	jwt      *auth.JWTService
	verifier GoogleVerifier

	exposeOTP bool
	now       func() time.Time
	log       *zap.Logger
}

// NewAuthService wires the orchestrator with its collaborators. The Google
// verifier may be nil when federated login is not configured; the flow then
// reports authentication failure.
func NewAuthService(users *UserService, otps *OTPService, jwt *auth.JWTService, verifier GoogleVerifier, opts ...AuthOption) (*AuthService, error) {
	if users == nil {
		return nil, errors.New("auth service: user service is required")
	}
	if otps == nil {
		return nil, errors.New("auth service: otp service is required")
	}
	if jwt == nil {
		return nil, errors.New("auth service: jwt service is required")
	}

	service := &AuthService{
		users:    users,
		otps:     otps,
		jwt:      jwt,
		verifier: verifier,
		now:      time.Now,
		log:      logger.WithModule("auth"),
	}

	for _, opt := range opts {
		opt(service)
	}

	return service, nil
}

// SignupInput captures the fields accepted at registration.
type SignupInput struct {
	Email       string
	Password    string
	Role        models.Role
	PhoneNumber string
}

// SignupResult is returned after a successful registration.
type SignupResult struct {
	Message    string `json:"message"`
	UserID     string `json:"user_id"`
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
	OTP        string `json:"otp,omitempty"`
}

// Signup registers a new account and issues its verification code.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*SignupResult, error) {
	role := input.Role
	if role == "" {
		role = models.RoleCustomer
	}
	if !role.Valid() {
		return nil, apperrors.NewBadRequest(fmt.Sprintf("unknown role %q", role))
	}

	_, err := s.users.FindByEmail(ctx, input.Email)
	if err == nil {
		return nil, apperrors.ErrEmailTaken
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, err
	}

	hashed, err := crypto.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth service: hash password: %w", err)
	}

	user := &models.User{
		Email:         input.Email,
		Password:      hashed,
		PhoneNumber:   input.PhoneNumber,
		Role:          role,
		AccountStatus: models.StatusActive,
		IsVerified:    false,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	code, err := s.otps.Replace(ctx, user.Email)
	if err != nil {
		return nil, err
	}

	result := &SignupResult{
		Message:    "User created successfully. Please verify your email with OTP.",
		UserID:     user.ID,
		Email:      user.Email,
		IsVerified: user.IsVerified,
	}
	if s.exposeOTP {
		result.OTP = code
	}
	return result, nil
}

// VerifyOTPResult is returned after a successful verification.
type VerifyOTPResult struct {
	Message    string    `json:"message"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	VerifiedAt time.Time `json:"verified_at"`
}

// VerifyOTP consumes a verification code and marks the account verified.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*VerifyOTPResult, error) {
	if email == "" || code == "" {
		return nil, apperrors.ErrMissingFields
	}

	if err := s.otps.Consume(ctx, email, code); err != nil {
		return nil, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if user.IsVerified {
		// The code matched but there is nothing to do. Remove it so it
		// cannot be replayed.
		if err := s.otps.Delete(ctx, email); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrAlreadyVerified
	}

	flipped, err := s.users.MarkVerified(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !flipped {
		// A concurrent request won the conditional update.
		if err := s.otps.Delete(ctx, email); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrAlreadyVerified
	}

	if err := s.otps.Delete(ctx, email); err != nil {
		return nil, err
	}

	return &VerifyOTPResult{
		Message:    "OTP verified successfully",
		UserID:     user.ID,
		Email:      user.Email,
		IsVerified: true,
		VerifiedAt: s.now().UTC(),
	}, nil
}

// ResendOTPResult is returned after a replacement code has been issued.
type ResendOTPResult struct {
	Message string `json:"message"`
	OTP     string `json:"otp,omitempty"`
}

// ResendOTP replaces the pending code for an unverified account.
func (s *AuthService) ResendOTP(ctx context.Context, email string) (*ResendOTPResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user.IsVerified {
		return nil, apperrors.ErrAlreadyVerified
	}

	code, err := s.otps.Replace(ctx, email)
	if err != nil {
		return nil, err
	}

	result := &ResendOTPResult{Message: "OTP sent successfully"}
	if s.exposeOTP {
		result.OTP = code
	}
	return result, nil
}

// TokenResult carries an issued bearer token.
type TokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

// PasswordLogin authenticates with email and password. Unknown accounts and
// wrong passwords produce the identical failure.
func (s *AuthService) PasswordLogin(ctx context.Context, email, password string) (*TokenResult, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if !crypto.VerifyPassword(user.Password, password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{
		Email:  user.Email,
		UserID: user.ID,
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: issue token: %w", err)
	}

	return &TokenResult{AccessToken: token, TokenType: "bearer"}, nil
}

// FederatedLogin authenticates with a Google ID token, reconciling the
// federated identity with the local account by email.
func (s *AuthService) FederatedLogin(ctx context.Context, rawIDToken string) (*TokenResult, error) {
	if rawIDToken == "" {
		return nil, apperrors.ErrMissingToken
	}
	if s.verifier == nil {
		return nil, apperrors.ErrUnauthorized
	}

	identity, err := s.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		// The caller only learns that authentication failed; the cause
		// stays in the logs.
		s.log.Warn("google id token rejected", zap.Error(err))
		return nil, apperrors.ErrUnauthorized.WithInternal(err)
	}

	user, err := s.users.FindByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		fields := map[string]any{}
		if !user.IsVerified {
			fields["is_verified"] = true
		}
		if user.GoogleID == "" {
			fields["google_id"] = identity.Subject
		}
		if identity.Picture != "" && user.AvatarURL != identity.Picture {
			fields["avatar_url"] = identity.Picture
		}
		if len(fields) > 0 {
			if user, err = s.users.UpdateFields(ctx, user.ID, fields); err != nil {
				return nil, err
			}
		}
	case errors.Is(err, apperrors.ErrUserNotFound):
		user = &models.User{
			Email:         identity.Email,
			GoogleID:      identity.Subject,
			AvatarURL:     identity.Picture,
			IsVerified:    true,
			Role:          models.RoleCustomer,
			AccountStatus: models.StatusActive,
		}
		if err := s.users.Create(ctx, user); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	token, err := s.jwt.GenerateAccessToken(auth.AccessTokenInput{
		Email:  user.Email,
		UserID: user.ID,
		Role:   string(user.Role),
	})
	if err != nil {
		return nil, fmt.Errorf("auth service: issue token: %w", err)
	}

	return &TokenResult{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.jwt.TTL().Seconds()),
	}, nil
}
