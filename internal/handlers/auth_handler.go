package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/usv-fiesc/exam-scheduler/internal/services"
	"github.com/usv-fiesc/exam-scheduler/internal/utils"
)

type AuthHandler struct {
	BaseHandler
	identityService services.IdentityService
}

func NewAuthHandler(identityService services.IdentityService, logger utils.Logger) *AuthHandler {
	return &AuthHandler{
		BaseHandler:     NewBaseHandler(logger),
		identityService: identityService,
	}
}

// Login authenticates a locally provisioned account and returns a token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req services.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.identityService.Login(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Sync returns the account the presented token resolved to. Because the auth
// middleware creates accounts lazily, the first call doubles as sign-up.
func (h *AuthHandler) Sync(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, user)
}
