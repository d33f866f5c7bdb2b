package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/usv-fiesc/exam-scheduler/internal/repositories"
	"github.com/usv-fiesc/exam-scheduler/internal/services"
	"github.com/usv-fiesc/exam-scheduler/internal/utils"
)

// maxImportSize bounds discipline spreadsheet uploads.
const maxImportSize = 10 << 20

type DisciplineHandler struct {
	BaseHandler
	disciplineService services.DisciplineService
}

func NewDisciplineHandler(disciplineService services.DisciplineService, logger utils.Logger) *DisciplineHandler {
	return &DisciplineHandler{
		BaseHandler:       NewBaseHandler(logger),
		disciplineService: disciplineService,
	}
}

func (h *DisciplineHandler) CreateDiscipline(c *gin.Context) {
	var req services.DisciplineCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	discipline, err := h.disciplineService.Create(c.Request.Context(), &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, discipline)
}

func (h *DisciplineHandler) GetDiscipline(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	discipline, err := h.disciplineService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, discipline)
}

func (h *DisciplineHandler) ListDisciplines(c *gin.Context) {
	var filter repositories.DisciplineFilter

	if raw := c.Query("year_of_study"); raw != "" {
		year, err := parseIntQuery(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid year_of_study parameter",
				Details: raw,
			})
			return
		}
		filter.YearOfStudy = &year
	}
	if raw := c.Query("specialization"); raw != "" {
		filter.Specialization = raw
	}

	disciplines, err := h.disciplineService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"disciplines": disciplines,
		"total":       len(disciplines),
	})
}

func (h *DisciplineHandler) UpdateDiscipline(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.DisciplineUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	discipline, err := h.disciplineService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, discipline)
}

func (h *DisciplineHandler) DeleteDiscipline(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.disciplineService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Discipline deleted",
	})
}

// MyDisciplines lists the disciplines assigned to the calling teacher along
// with the proposal state of each.
func (h *DisciplineHandler) MyDisciplines(c *gin.Context) {
	user, ok := mustUser(c)
	if !ok {
		return
	}

	disciplines, err := h.disciplineService.ListForTeacher(c.Request.Context(), user)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"disciplines": disciplines,
		"total":       len(disciplines),
	})
}

// ImportDisciplines ingests an uploaded spreadsheet, one discipline per row.
func (h *DisciplineHandler) ImportDisciplines(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Multipart field 'file' is required",
			Details: err.Error(),
		})
		return
	}
	defer file.Close()

	if header.Size > maxImportSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Message: "Uploaded file exceeds the size limit",
		})
		return
	}

	h.LogRequest(c, "Importing disciplines", "filename", header.Filename, "size", header.Size)

	report, err := h.disciplineService.ImportXLSX(c.Request.Context(), file)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
