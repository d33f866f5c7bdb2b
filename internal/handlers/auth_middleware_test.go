package handlers

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/usv-fiesc/exam-scheduler/internal/auth"
	"github.com/usv-fiesc/exam-scheduler/internal/models"
	"github.com/usv-fiesc/exam-scheduler/internal/services"
	"github.com/usv-fiesc/exam-scheduler/internal/utils"
)

type stubIdentityService struct {
	user       *models.User
	resolveErr error
}

func (s *stubIdentityService) ResolveOrCreate(ctx context.Context, claims *auth.Claims) (*models.User, error) {
	if s.resolveErr != nil {
		return nil, s.resolveErr
	}
	return s.user, nil
}

func (s *stubIdentityService) Login(ctx context.Context, req *services.LoginRequest) (*services.LoginResponse, error) {
	return nil, services.ErrInvalidCredentials
}

func testMiddlewareLogger() utils.Logger {
	return utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newAuthFixture(t *testing.T, user *models.User) (*AuthMiddleware, *auth.TokenVerifier) {
	t.Helper()
	verifier := auth.NewTokenVerifier(auth.Config{PrimarySecret: "test-secret"})
	identity := &stubIdentityService{user: user}
	return NewAuthMiddleware(verifier, identity, testMiddlewareLogger()), verifier
}

func performRequest(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware_Authenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)

	user := &models.User{
		ID:    "teacher-1",
		Email: "ana.pop@usv.ro",
		Role:  models.RoleTeacher,
	}
	am, verifier := newAuthFixture(t, user)

	router := gin.New()
	router.GET("/protected", am.Authenticate(), func(c *gin.Context) {
		id, _ := GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id})
	})

	t.Run("missing header", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/protected", "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		w := performRequest(router, http.MethodGet, "/protected", "not-a-jwt")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", w.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := verifier.IssuePrimaryToken(user)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		w := performRequest(router, http.MethodGet, "/protected", token)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("unknown email domain", func(t *testing.T) {
		verifier2 := auth.NewTokenVerifier(auth.Config{PrimarySecret: "test-secret"})
		identity := &stubIdentityService{resolveErr: services.ErrEmailDomainUnknown}
		am2 := NewAuthMiddleware(verifier2, identity, testMiddlewareLogger())

		router2 := gin.New()
		router2.GET("/protected", am2.Authenticate(), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})

		token, err := verifier2.IssuePrimaryToken(user)
		if err != nil {
			t.Fatalf("issue token: %v", err)
		}
		w := performRequest(router2, http.MethodGet, "/protected", token)
		if w.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", w.Code)
		}
	})
}

func TestAuthMiddleware_RequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name       string
		role       models.UserRole
		middleware func(*AuthMiddleware) gin.HandlerFunc
		wantStatus int
	}{
		{
			name:       "teacher passes teacher gate",
			role:       models.RoleTeacher,
			middleware: func(am *AuthMiddleware) gin.HandlerFunc { return am.RequireRole(models.RoleTeacher) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "student refused teacher gate",
			role:       models.RoleStudent,
			middleware: func(am *AuthMiddleware) gin.HandlerFunc { return am.RequireRole(models.RoleTeacher) },
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "admin passes teacher gate",
			role:       models.RoleAdmin,
			middleware: func(am *AuthMiddleware) gin.HandlerFunc { return am.RequireRole(models.RoleTeacher) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "admin refused student-only gate",
			role:       models.RoleAdmin,
			middleware: func(am *AuthMiddleware) gin.HandlerFunc { return am.RequireExactRole(models.RoleStudent, models.RoleGroupRep) },
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "group rep passes student-only gate",
			role:       models.RoleGroupRep,
			middleware: func(am *AuthMiddleware) gin.HandlerFunc { return am.RequireExactRole(models.RoleStudent, models.RoleGroupRep) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "admin passes exact admin gate",
			role:       models.RoleAdmin,
			middleware: func(am *AuthMiddleware) gin.HandlerFunc { return am.RequireExactRole(models.RoleAdmin) },
			wantStatus: http.StatusOK,
		},
		{
			name:       "teacher refused exact admin gate",
			role:       models.RoleTeacher,
			middleware: func(am *AuthMiddleware) gin.HandlerFunc { return am.RequireExactRole(models.RoleAdmin) },
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			am, _ := newAuthFixture(t, nil)

			router := gin.New()
			router.GET("/gated",
				func(c *gin.Context) { c.Set("user_role", tc.role) },
				tc.middleware(am),
				func(c *gin.Context) { c.Status(http.StatusOK) },
			)

			w := performRequest(router, http.MethodGet, "/gated", "")
			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d", tc.wantStatus, w.Code)
			}
		})
	}
}
