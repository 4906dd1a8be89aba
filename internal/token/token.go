package token

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"shopkeep/internal/identity"
	dErrors "shopkeep/pkg/domain-errors"
)

// Claims are the JWT claims carried by shopkeep access tokens. The role claim
// is what every authorization gate downstream trusts.
type Claims struct {
	Role  string `json:"role"`
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Service issues and verifies signed access tokens.
type Service struct {
	signingKey []byte
	tokenTTL   time.Duration
}

// NewService creates a token service with the given HMAC signing key.
func NewService(signingKey string, tokenTTL time.Duration) *Service {
	return &Service{
		signingKey: []byte(signingKey),
		tokenTTL:   tokenTTL,
	}
}

// Issue signs an access token for the given principal.
func (s *Service) Issue(p *identity.Principal) (string, error) {
	if p == nil {
		return "", dErrors.New(dErrors.CodeInvalidInput, "principal is required")
	}
	now := time.Now()
	claims := Claims{
		Role:  string(p.Role),
		Name:  p.Name,
		Email: p.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.ID.String(),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.signingKey)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "could not sign token")
	}
	return signed, nil
}

// Verify parses and validates a token string, returning the principal it
// encodes.
func (s *Service) Verify(tokenString string) (*identity.Principal, error) {
	parsed, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, dErrors.New(dErrors.CodeUnauthorized, "unexpected signing method")
		}
		return s.signingKey, nil
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "invalid or expired token")
	}

	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid token claims")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid subject claim")
	}

	role := identity.Role(claims.Role)
	if !role.Valid() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid role claim")
	}

	return &identity.Principal{
		ID:    userID,
		Role:  role,
		Name:  claims.Name,
		Email: claims.Email,
	}, nil
}
