package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/usv-fiesc/exam-scheduler/internal/services"
	"github.com/usv-fiesc/exam-scheduler/internal/utils"
)

type PeriodHandler struct {
	BaseHandler
	periodService services.PeriodService
}

func NewPeriodHandler(periodService services.PeriodService, logger utils.Logger) *PeriodHandler {
	return &PeriodHandler{
		BaseHandler:   NewBaseHandler(logger),
		periodService: periodService,
	}
}

func (h *PeriodHandler) CreatePeriod(c *gin.Context) {
	var req services.PeriodCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	period, err := h.periodService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, period)
}

func (h *PeriodHandler) ListPeriods(c *gin.Context) {
	periods, err := h.periodService.List(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"periods": periods,
		"total":   len(periods),
	})
}

// SetPeriodActive toggles whether a period accepts proposals.
func (h *PeriodHandler) SetPeriodActive(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	period, err := h.periodService.SetActive(c.Request.Context(), id, *req.IsActive)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, period)
}

func (h *PeriodHandler) DeletePeriod(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.periodService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Examination period deleted",
	})
}
