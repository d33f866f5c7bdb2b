package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/usv-fiesc/exam-scheduler/internal/models"
)

// Verification errors, ordered by how the fallback chain reports them.
var (
	ErrMissingToken          = errors.New("authorization token missing")
	ErrInvalidToken          = errors.New("invalid token")
	ErrExpiredToken          = errors.New("token expired")
	ErrVerifierNotConfigured = errors.New("external token secret not configured")
)

// Config carries both signing secrets. Secrets are injected explicitly at
// construction; the verifier never reads the environment itself.
type Config struct {
	// PrimarySecret signs service-issued tokens (admin login).
	PrimarySecret string
	// ExternalSecret is the identity provider's shared HMAC secret.
	ExternalSecret string
	// ExternalAudience is the audience claim required on external tokens.
	ExternalAudience string
	// TokenTTL bounds tokens issued by IssuePrimaryToken.
	TokenTTL time.Duration
}

// Claims is the normalized identity extracted from either token scheme.
type Claims struct {
	SubjectID string
	Email     string
	FullName  string
	RoleHint  string
	ExpiresAt time.Time
}

// primaryClaims is the shape of service-issued tokens.
type primaryClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// externalClaims is the identity provider's shape: subject in the registered
// "sub" claim, profile data nested under user_metadata.
type externalClaims struct {
	Email        string `json:"email"`
	UserMetadata struct {
		FullName string `json:"full_name"`
		Name     string `json:"name"`
		Role     string `json:"role"`
	} `json:"user_metadata"`
	jwt.RegisteredClaims
}

// TokenVerifier validates bearer tokens minted by either of two issuers.
//
// The two schemes share no reliable discriminator field, so verification is
// an ordered fallback chain rather than a dispatch on the token header: the
// primary secret is tried first and the external secret only when the token
// cannot be a primary one.
type TokenVerifier struct {
	config Config
}

func NewTokenVerifier(config Config) *TokenVerifier {
	if config.ExternalAudience == "" {
		config.ExternalAudience = "authenticated"
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = 24 * time.Hour
	}
	return &TokenVerifier{config: config}
}

// Verify decodes token under the primary secret, falling back to the external
// secret. A token that carries a valid primary signature but is expired is
// reported as expired immediately: it cannot also be an external token.
func (v *TokenVerifier) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	claims, err := v.verifyPrimary(token)
	if err == nil {
		return claims, nil
	}
	if errors.Is(err, ErrExpiredToken) {
		return nil, ErrExpiredToken
	}

	return v.verifyExternal(token)
}

func (v *TokenVerifier) verifyPrimary(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &primaryClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.config.PrimarySecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	pc, ok := parsed.Claims.(*primaryClaims)
	if !ok || !parsed.Valid || pc.UserID == "" {
		return nil, ErrInvalidToken
	}

	claims := &Claims{
		SubjectID: pc.UserID,
		Email:     pc.Email,
		RoleHint:  pc.Role,
	}
	if pc.ExpiresAt != nil {
		claims.ExpiresAt = pc.ExpiresAt.Time
	}
	return claims, nil
}

func (v *TokenVerifier) verifyExternal(token string) (*Claims, error) {
	if v.config.ExternalSecret == "" {
		return nil, ErrVerifierNotConfigured
	}

	parsed, err := jwt.ParseWithClaims(token, &externalClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(v.config.ExternalSecret), nil
	}, jwt.WithAudience(v.config.ExternalAudience))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	ec, ok := parsed.Claims.(*externalClaims)
	if !ok || !parsed.Valid || ec.Subject == "" {
		return nil, ErrInvalidToken
	}

	fullName := ec.UserMetadata.FullName
	if fullName == "" {
		fullName = ec.UserMetadata.Name
	}

	claims := &Claims{
		SubjectID: ec.Subject,
		Email:     ec.Email,
		FullName:  fullName,
		RoleHint:  ec.UserMetadata.Role,
	}
	if ec.ExpiresAt != nil {
		claims.ExpiresAt = ec.ExpiresAt.Time
	}
	return claims, nil
}

// IssuePrimaryToken mints a primary-scheme token for a locally authenticated
// user. Only the admin login path issues tokens.
func (v *TokenVerifier) IssuePrimaryToken(user *models.User) (string, error) {
	now := time.Now()
	claims := &primaryClaims{
		UserID: user.ID,
		Role:   string(user.Role),
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(v.config.TokenTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(v.config.PrimarySecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ExtractBearerToken pulls the token out of an Authorization header value.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMissingToken
	}
	return strings.TrimSpace(parts[1]), nil
}
