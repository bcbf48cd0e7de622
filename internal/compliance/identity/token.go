// Package identity resolves who is asking from the opaque identity token the
// UI forwards, and derives coarse client metadata for audit entries.
package identity

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"miniminds/internal/compliance/models"
	dErrors "miniminds/pkg/domain-errors"
)

// Claims carried by identity tokens. user_id wins over sub when both are set.
type Claims struct {
	UserID string `json:"user_id,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// Service parses and issues HS256 identity tokens.
type Service struct {
	signingKey []byte
	issuer     string
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithIssuer requires tokens to carry iss and stamps it on issued tokens.
func WithIssuer(issuer string) Option {
	return func(s *Service) {
		s.issuer = issuer
	}
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(signingKey string, opts ...Option) *Service {
	s := &Service{
		signingKey: []byte(signingKey),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Parse validates token and returns the principal it names. Unknown roles map
// to parent.
func (s *Service) Parse(token string) (models.Principal, error) {
	if token == "" {
		return models.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "empty token")
	}
	if len(s.signingKey) == 0 {
		return models.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "identity verification not configured")
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	}
	if s.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(s.issuer))
	}

	claims := new(Claims)
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.signingKey, nil
	}, parserOpts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return models.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "token expired")
		}
		return models.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}
	if !parsed.Valid {
		return models.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "invalid token")
	}

	userID := claims.UserID
	if userID == "" {
		userID = claims.Subject
	}
	if userID == "" {
		return models.Principal{}, dErrors.New(dErrors.CodeUnauthorized, "token names no user")
	}
	return models.Principal{UserID: userID, Role: models.ParseRole(claims.Role)}, nil
}

// Resolve is Parse that fails closed: any problem yields the anonymous parent.
func (s *Service) Resolve(token string) models.Principal {
	p, err := s.Parse(token)
	if err != nil {
		return models.AnonymousPrincipal()
	}
	return p
}

// Issue signs a token for p, valid for ttl. Used by the dev token generator
// and tests.
func (s *Service) Issue(p models.Principal, ttl time.Duration) (string, error) {
	if len(s.signingKey) == 0 {
		return "", dErrors.New(dErrors.CodeInternal, "signing key not configured")
	}
	now := s.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID: p.UserID,
		Role:   string(p.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
	})
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "sign identity token")
	}
	return signed, nil
}
