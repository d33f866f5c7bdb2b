package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/usv-fiesc/exam-scheduler/internal/repositories"
	"github.com/usv-fiesc/exam-scheduler/internal/services"
	"github.com/usv-fiesc/exam-scheduler/internal/utils"
	"github.com/usv-fiesc/exam-scheduler/internal/validator"
)

type ExamHandler struct {
	BaseHandler
	examService services.ExamService
}

func NewExamHandler(examService services.ExamService, logger utils.Logger) *ExamHandler {
	return &ExamHandler{
		BaseHandler: NewBaseHandler(logger),
		examService: examService,
	}
}

// ProposeExam registers an exam date proposal for a discipline.
func (h *ExamHandler) ProposeExam(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req services.ExamProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Proposing exam", "discipline_id", req.DisciplineID, "exam_date", req.ExamDate)

	exam, err := h.examService.Propose(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, exam)
}

// DecideExam approves or rejects a pending proposal.
func (h *ExamHandler) DecideExam(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req services.ExamDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Deciding exam proposal", "exam_id", examID, "status", req.Status)

	exam, err := h.examService.Decide(c.Request.Context(), examID, &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

func (h *ExamHandler) GetExam(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// AssignRoom places an approved exam into a room.
func (h *ExamHandler) AssignRoom(c *gin.Context) {
	examID := h.parseIDParam(c, "id")
	if examID == 0 {
		return
	}

	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req services.RoomAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	exam, err := h.examService.AssignRoom(c.Request.Context(), examID, &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, exam)
}

// ListProposals returns pending proposals for review.
func (h *ExamHandler) ListProposals(c *gin.Context) {
	proposals, err := h.examService.ListProposals(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, proposals)
}

// ListSchedule returns the approved schedule, optionally filtered by query
// parameters.
func (h *ExamHandler) ListSchedule(c *gin.Context) {
	filter, ok := h.scheduleFilterFromQuery(c)
	if !ok {
		return
	}

	schedule, err := h.examService.ListSchedule(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// MySchedule returns the approved exams relevant to the calling student.
func (h *ExamHandler) MySchedule(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	schedule, err := h.examService.StudentSchedule(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, schedule)
}

// FinalizeSchedule closes an examination period and announces the schedule.
func (h *ExamHandler) FinalizeSchedule(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	var req services.FinalizeScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Finalizing schedule", "period_id", req.PeriodID)

	report, err := h.examService.Finalize(c.Request.Context(), &req, user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}

func (h *ExamHandler) scheduleFilterFromQuery(c *gin.Context) (repositories.ExamFilter, bool) {
	var filter repositories.ExamFilter

	if raw := c.Query("discipline_id"); raw != "" {
		id, err := parseUintQuery(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid discipline_id parameter",
				Details: raw,
			})
			return filter, false
		}
		filter.DisciplineID = &id
	}

	if raw := c.Query("year_of_study"); raw != "" {
		year, err := parseIntQuery(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid year_of_study parameter",
				Details: raw,
			})
			return filter, false
		}
		filter.YearOfStudy = &year
	}

	from, ok := h.parseDateQuery(c, "from")
	if !ok {
		return filter, false
	}
	filter.From = from

	to, ok := h.parseDateQuery(c, "to")
	if !ok {
		return filter, false
	}
	filter.To = to

	return filter, true
}

func (h *ExamHandler) parseDateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse(validator.DateLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter, expected YYYY-MM-DD",
			Details: raw,
		})
		return nil, false
	}
	return &t, true
}
