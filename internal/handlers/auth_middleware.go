package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/usv-fiesc/exam-scheduler/internal/auth"
	"github.com/usv-fiesc/exam-scheduler/internal/models"
	"github.com/usv-fiesc/exam-scheduler/internal/services"
	"github.com/usv-fiesc/exam-scheduler/internal/utils"
)

// AuthMiddleware verifies bearer tokens and resolves them to local accounts.
type AuthMiddleware struct {
	verifier *auth.TokenVerifier
	identity services.IdentityService
	logger   utils.Logger
}

func NewAuthMiddleware(verifier *auth.TokenVerifier, identity services.IdentityService, logger utils.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		identity: identity,
		logger:   logger,
	}
}

// Authenticate returns the gin middleware applied to every API route. It
// verifies the token, resolves (or lazily creates) the account, and stores
// the user in the request context.
func (am *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Authorization header missing or malformed",
			})
			c.Abort()
			return
		}

		claims, err := am.verifier.Verify(token)
		if err != nil {
			am.abortVerifyError(c, err)
			return
		}

		user, err := am.identity.ResolveOrCreate(c.Request.Context(), claims)
		if err != nil {
			if errors.Is(err, services.ErrEmailDomainUnknown) {
				c.JSON(http.StatusForbidden, ErrorResponse{
					Message: "Email domain is not recognized by this university",
				})
			} else {
				am.logger.Error("identity resolution failed", "error", err)
				c.JSON(http.StatusInternalServerError, ErrorResponse{
					Message: "Internal server error",
				})
			}
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Set("user_role", user.Role)
		c.Set("user_email", user.Email)

		c.Next()
	}
}

func (am *AuthMiddleware) abortVerifyError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Token expired",
		})
	case errors.Is(err, auth.ErrVerifierNotConfigured):
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Authentication backend not configured",
		})
	default:
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid token",
		})
	}
	c.Abort()
}

// RequireRole gates a route to the given roles. Administrators pass every
// RequireRole check.
func (am *AuthMiddleware) RequireRole(roles ...models.UserRole) gin.HandlerFunc {
	return am.requireRole(true, roles)
}

// RequireExactRole gates a route to exactly the given roles with no
// administrator pass-through. Admin-only route groups and the student
// profile routes use this form.
func (am *AuthMiddleware) RequireExactRole(roles ...models.UserRole) gin.HandlerFunc {
	return am.requireRole(false, roles)
}

func (am *AuthMiddleware) requireRole(adminBypass bool, roles []models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, ok := GetUserRoleFromContext(c)
		if !ok {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "User role not found in context",
			})
			c.Abort()
			return
		}

		for _, required := range roles {
			if role == required || (adminBypass && role == models.RoleAdmin) {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Insufficient permissions",
		})
		c.Abort()
	}
}

// GetUserFromContext returns the authenticated user set by Authenticate.
func GetUserFromContext(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get("user")
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func GetUserIDFromContext(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

func GetUserRoleFromContext(c *gin.Context) (models.UserRole, bool) {
	v, exists := c.Get("user_role")
	if !exists {
		return "", false
	}
	role, ok := v.(models.UserRole)
	return role, ok
}

// mustUser writes the 401 itself when the context carries no user.
func mustUser(c *gin.Context) (*models.User, bool) {
	user, ok := GetUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
	}
	return user, ok
}
