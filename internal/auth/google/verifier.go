package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
)

// DefaultIssuer is the Google OpenID Connect issuer.
const DefaultIssuer = "https://accounts.google.com"

var (
	// ErrInvalidToken covers structural, signature, issuer and audience failures.
	ErrInvalidToken = errors.New("google: invalid id token")
	// ErrEmailNotVerified signals a valid token whose email Google has not verified.
	ErrEmailNotVerified = errors.New("google: email not verified")
)

// Identity is the subset of Google ID-token claims the application consumes.
type Identity struct {
	Email   string
	Subject string
	Name    string
	Picture string
}

// TokenVerifier validates a raw ID token. It matches *oidc.IDTokenVerifier
// and can be replaced in tests.
type TokenVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*oidc.IDToken, error)
}

// Config carries the settings required to build a Verifier. ClientID is the
// OAuth client identifier the mobile apps authenticate with and must come
// from configuration.
type Config struct {
	ClientID string
	Issuer   string
}

// Option customises the Verifier.
type Option func(*Verifier)

// WithHTTPClient overrides the HTTP client used for issuer discovery and
// JWKS fetches.
func WithHTTPClient(client *http.Client) Option {
	return func(v *Verifier) {
		if client != nil {
			v.httpClient = client
		}
	}
}

// WithTimeout bounds issuer discovery and key fetches.
func WithTimeout(d time.Duration) Option {
	return func(v *Verifier) {
		if d > 0 {
			v.timeout = d
		}
	}
}

// WithTokenVerifier injects a pre-built token verifier, bypassing issuer
// discovery. Intended for tests.
func WithTokenVerifier(tv TokenVerifier) Option {
	return func(v *Verifier) {
		v.verifier = tv
	}
}

// Verifier validates Google ID tokens against the issuer's published keys
// and the configured client ID.
type Verifier struct {
	clientID   string
	issuer     string
	httpClient *http.Client
	timeout    time.Duration

	mu       sync.Mutex
	verifier TokenVerifier
}

// NewVerifier builds a Verifier. Issuer discovery is deferred until the
// first verification so construction never performs network I/O.
func NewVerifier(cfg Config, opts ...Option) (*Verifier, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, errors.New("google: client id is required")
	}

	issuer := strings.TrimSpace(cfg.Issuer)
	if issuer == "" {
		issuer = DefaultIssuer
	}

	v := &Verifier{
		clientID: cfg.ClientID,
		issuer:   issuer,
		timeout:  10 * time.Second,
	}

	for _, opt := range opts {
		opt(v)
	}

	return v, nil
}

// Verify validates the raw ID token and extracts the federated identity.
func (v *Verifier) Verify(ctx context.Context, rawIDToken string) (*Identity, error) {
	if strings.TrimSpace(rawIDToken) == "" {
		return nil, ErrInvalidToken
	}

	tv, err := v.tokenVerifier(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	verifyCtx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	idToken, err := tv.Verify(verifyCtx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
		Name          string `json:"name"`
		Picture       string `json:"picture"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("%w: decode claims: %v", ErrInvalidToken, err)
	}

	if claims.Email == "" || !claims.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return &Identity{
		Email:   claims.Email,
		Subject: idToken.Subject,
		Name:    claims.Name,
		Picture: claims.Picture,
	}, nil
}

func (v *Verifier) tokenVerifier(ctx context.Context) (TokenVerifier, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.verifier != nil {
		return v.verifier, nil
	}

	discoveryCtx := ctx
	if v.httpClient != nil {
		discoveryCtx = oidc.ClientContext(discoveryCtx, v.httpClient)
	}
	discoveryCtx, cancel := context.WithTimeout(discoveryCtx, v.timeout)
	defer cancel()

	provider, err := oidc.NewProvider(discoveryCtx, v.issuer)
	if err != nil {
		return nil, fmt.Errorf("discovery failed: %w", err)
	}

	v.verifier = provider.Verifier(&oidc.Config{ClientID: v.clientID})
	return v.verifier, nil
}
