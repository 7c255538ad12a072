package service

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yndnr/playgate/internal/core/domain"
)

// DefaultCookieName is the cookie consulted when no Authorization header is
// present.
const DefaultCookieName = "jwt"

// CapabilityCheck decides whether a request carries a valid credential.
// Implementations return the verified claims or an error whose status is 401.
type CapabilityCheck func(r *http.Request) (*domain.Claims, error)

// AuthConfig holds configuration for AuthService.
type AuthConfig struct {
	// Secret is the shared HMAC key the issuer signs with.
	Secret []byte

	// CookieName is the fallback token cookie (default: "jwt").
	CookieName string

	// Leeway tolerates clock skew on exp/nbf/iat (default: 0).
	Leeway time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// AuthService verifies HS-signed JWT bearer credentials.
type AuthService struct {
	secret     []byte
	cookieName string
	parser     *jwt.Parser
}

var hmacMethods = []string{
	jwt.SigningMethodHS256.Alg(),
	jwt.SigningMethodHS384.Alg(),
	jwt.SigningMethodHS512.Alg(),
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg AuthConfig) (*AuthService, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("auth: secret is required")
	}
	if cfg.CookieName == "" {
		cfg.CookieName = DefaultCookieName
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(hmacMethods),
		jwt.WithLeeway(cfg.Leeway),
	}
	if cfg.Now != nil {
		opts = append(opts, jwt.WithTimeFunc(cfg.Now))
	}

	return &AuthService{
		secret:     cfg.Secret,
		cookieName: cfg.CookieName,
		parser:     jwt.NewParser(opts...),
	}, nil
}

// Check returns the service as a CapabilityCheck.
func (s *AuthService) Check() CapabilityCheck {
	return s.Authenticate
}

// Authenticate extracts the credential from r and verifies it.
func (s *AuthService) Authenticate(r *http.Request) (*domain.Claims, error) {
	raw := ExtractToken(r, s.cookieName)
	if raw == "" {
		return nil, domain.ErrUnauthorized.WithCause(errors.New("no credential"))
	}
	return s.Verify(raw)
}

// Verify parses and validates a compact JWT.
func (s *AuthService) Verify(raw string) (*domain.Claims, error) {
	claims := &domain.Claims{}
	_, err := s.parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, domain.ErrUnauthorized.WithCause(mapJWTError(err))
	}
	if !claims.HasUser() {
		return nil, domain.ErrUnauthorized.WithCause(errors.New("credential has no user claim"))
	}
	return claims, nil
}

// ExtractToken returns the bearer token from the Authorization header, or
// from the named cookie when the header is absent.
func ExtractToken(r *http.Request, cookieName string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookieName == "" {
		return ""
	}
	c, err := r.Cookie(cookieName)
	if err != nil {
		return ""
	}
	return c.Value
}

// mapJWTError narrows jwt library errors to a short reason for logs.
func mapJWTError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return errors.New("credential expired")
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return errors.New("credential not active yet")
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return errors.New("credential signature is invalid")
	case errors.Is(err, jwt.ErrTokenUnverifiable):
		return errors.New("credential alg is invalid")
	case errors.Is(err, jwt.ErrTokenMalformed):
		return errors.New("credential is malformed")
	default:
		return err
	}
}
