package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/usv-fiesc/exam-scheduler/internal/models"
)

func testAdminUser() *models.User {
	return &models.User{
		ID:       "admin-1",
		FullName: "Admin User",
		Email:    "admin@local.com",
		Role:     models.RoleAdmin,
	}
}

const (
	testPrimarySecret  = "primary-secret"
	testExternalSecret = "external-secret"
)

func newTestVerifier() *TokenVerifier {
	return NewTokenVerifier(Config{
		PrimarySecret:    testPrimarySecret,
		ExternalSecret:   testExternalSecret,
		ExternalAudience: "authenticated",
	})
}

func signPrimary(t *testing.T, secret string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": "admin-1",
		"role":    "ADMIN",
		"email":   "admin@local.com",
		"exp":     exp.Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func signExternal(t *testing.T, secret, audience string, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "ext-42",
		"email": "ana.pop@student.usv.ro",
		"aud":   audience,
		"exp":   exp.Unix(),
		"user_metadata": map[string]interface{}{
			"full_name": "Ana Pop",
			"role":      "STUDENT",
		},
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestTokenVerifier_Verify_Primary(t *testing.T) {
	v := newTestVerifier()

	claims, err := v.Verify(signPrimary(t, testPrimarySecret, time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.SubjectID != "admin-1" {
		t.Errorf("SubjectID = %q, want %q", claims.SubjectID, "admin-1")
	}
	if claims.RoleHint != "ADMIN" {
		t.Errorf("RoleHint = %q, want %q", claims.RoleHint, "ADMIN")
	}
	if claims.Email != "admin@local.com" {
		t.Errorf("Email = %q, want %q", claims.Email, "admin@local.com")
	}
}

func TestTokenVerifier_Verify_External(t *testing.T) {
	v := newTestVerifier()

	claims, err := v.Verify(signExternal(t, testExternalSecret, "authenticated", time.Now().Add(time.Hour)))
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.SubjectID != "ext-42" {
		t.Errorf("SubjectID = %q, want %q", claims.SubjectID, "ext-42")
	}
	if claims.FullName != "Ana Pop" {
		t.Errorf("FullName = %q, want %q", claims.FullName, "Ana Pop")
	}
	if claims.RoleHint != "STUDENT" {
		t.Errorf("RoleHint = %q, want %q", claims.RoleHint, "STUDENT")
	}
}

func TestTokenVerifier_Verify_Failures(t *testing.T) {
	v := newTestVerifier()

	tests := []struct {
		name    string
		token   string
		wantErr error
	}{
		{
			name:    "empty token",
			token:   "",
			wantErr: ErrMissingToken,
		},
		{
			name:    "garbage token",
			token:   "not-a-jwt",
			wantErr: ErrInvalidToken,
		},
		{
			name:    "valid under neither secret",
			token:   signPrimary(t, "some-other-secret", time.Now().Add(time.Hour)),
			wantErr: ErrInvalidToken,
		},
		{
			name:    "expired primary token",
			token:   signPrimary(t, testPrimarySecret, time.Now().Add(-time.Hour)),
			wantErr: ErrExpiredToken,
		},
		{
			name:    "expired external token",
			token:   signExternal(t, testExternalSecret, "authenticated", time.Now().Add(-time.Hour)),
			wantErr: ErrExpiredToken,
		},
		{
			name:    "external token with wrong audience",
			token:   signExternal(t, testExternalSecret, "somebody-else", time.Now().Add(time.Hour)),
			wantErr: ErrInvalidToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.Verify(tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestTokenVerifier_Verify_ExternalSecretMissing(t *testing.T) {
	v := NewTokenVerifier(Config{PrimarySecret: testPrimarySecret})

	// A token the primary secret cannot decode needs the external secret.
	_, err := v.Verify(signExternal(t, testExternalSecret, "authenticated", time.Now().Add(time.Hour)))
	if !errors.Is(err, ErrVerifierNotConfigured) {
		t.Errorf("Verify() error = %v, want %v", err, ErrVerifierNotConfigured)
	}
}

func TestTokenVerifier_IssuePrimaryToken_RoundTrip(t *testing.T) {
	v := newTestVerifier()

	token, err := v.IssuePrimaryToken(testAdminUser())
	if err != nil {
		t.Fatalf("IssuePrimaryToken() error = %v", err)
	}

	claims, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.SubjectID != "admin-1" {
		t.Errorf("SubjectID = %q, want %q", claims.SubjectID, "admin-1")
	}
	if claims.RoleHint != "ADMIN" {
		t.Errorf("RoleHint = %q, want %q", claims.RoleHint, "ADMIN")
	}
	if claims.ExpiresAt.IsZero() {
		t.Error("ExpiresAt should be set on issued tokens")
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "bearer token", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "empty header", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "no token", header: "Bearer", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractBearerToken() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}
