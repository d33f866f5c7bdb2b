package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/usv-fiesc/exam-scheduler/internal/services"
	"github.com/usv-fiesc/exam-scheduler/internal/utils"
	"github.com/usv-fiesc/exam-scheduler/internal/validator"
)

// ErrorResponse is the uniform error body returned by all handlers.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	utils.LoggerFromContext(c, h.logger).Info(msg, args...)
}

// parseIDParam reads a positive numeric path parameter; on failure it writes
// the 400 response itself and returns 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
			Details: raw,
		})
		return 0
	}
	return uint(id)
}

func parseUintQuery(raw string) (uint, error) {
	v, err := strconv.ParseUint(raw, 10, 32)
	return uint(v), err
}

func parseIntQuery(raw string) (int, error) {
	return strconv.Atoi(raw)
}

// handleServiceError maps service-layer errors onto HTTP responses.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrs,
		})
		return
	}

	var permErr *services.PermissionError
	if errors.As(err, &permErr) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: permErr.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "User not found",
		})
	case errors.Is(err, services.ErrDisciplineNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Discipline not found",
		})
	case errors.Is(err, services.ErrExamNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Exam not found",
		})
	case errors.Is(err, services.ErrPeriodNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Examination period not found",
		})
	case errors.Is(err, services.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Room not found",
		})
	case errors.Is(err, services.ErrDuplicateProposal):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Discipline already has a pending or approved exam",
		})
	case errors.Is(err, services.ErrAlreadyDecided):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Exam proposal has already been decided",
		})
	case errors.Is(err, services.ErrDateOutsidePeriod):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Exam date falls outside every active examination period",
		})
	case errors.Is(err, services.ErrExamNotApproved):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Exam is not approved",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid email or password",
		})
	case errors.Is(err, services.ErrEmailDomainUnknown):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Email domain is not recognized by this university",
		})
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Email is already registered",
		})
	case errors.Is(err, services.ErrRoomHasExams):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Room is referenced by scheduled exams",
		})
	case errors.Is(err, services.ErrDisciplineHasExams):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Discipline has a pending or approved exam",
		})
	case errors.Is(err, services.ErrProfileIncomplete):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Profile is incomplete - set your student group first",
		})
	case errors.Is(err, services.ErrImportFileMalformed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Uploaded file is not a readable spreadsheet",
		})
	default:
		h.logger.Error("unhandled service error", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
