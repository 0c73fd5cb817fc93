package impl

import (
	"context"
	"errors"
	"fmt"
	"time"

	"accounts/internal/domain"
	"accounts/internal/observability/metrics"
	"accounts/internal/observability/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenConfig struct {
	Issuer     string        // e.g. "accounts"
	Audience   string        // e.g. "accounts-clients"
	AccessTTL  time.Duration // e.g. 15 * time.Minute
	SigningKey []byte        // HS256 secret
}

// accessScope marks tokens minted by Sign; anything else is refused.
const accessScope = "user"

type AccessClaims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

type TokenServiceImpl struct {
	cfg TokenConfig
	now func() time.Time
}

func NewTokenServiceHS256(cfg TokenConfig) (*TokenServiceImpl, error) {
	if len(cfg.SigningKey) < 32 {
		return nil, errors.New("hs256 signing key must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	return &TokenServiceImpl{cfg: cfg, now: time.Now}, nil
}

// Sign returns an access token whose subject is the user id.
func (t *TokenServiceImpl) Sign(ctx context.Context, userID domain.UserID) (string, error) {
	now := t.now().UTC()
	claims := AccessClaims{
		Scope: accessScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   userID.String(),
			Audience:  jwt.ClaimStrings{t.cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.SigningKey)
	metrics.TokensIssuedTotal.WithLabelValues(jwt.SigningMethodHS256.Alg(), metrics.Result(err)).Inc()
	if err != nil {
		return "", err
	}

	middleware.Logger(ctx).Info("issued access token", "user_id", userID, "jti", claims.ID)
	return signed, nil
}

func (t *TokenServiceImpl) Verify(ctx context.Context, token string) (domain.UserID, error) {
	claims := &AccessClaims{}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.cfg.Issuer),
		jwt.WithAudience(t.cfg.Audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if _, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return t.cfg.SigningKey, nil
	}); err != nil {
		return uuid.Nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Scope != accessScope {
		return uuid.Nil, fmt.Errorf("%w: scope %q", ErrInvalidToken, claims.Scope)
	}
	return subjectID(claims.Subject)
}

func subjectID(sub string) (domain.UserID, error) {
	id, err := uuid.Parse(sub)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return id, nil
}
