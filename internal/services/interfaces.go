package services

import (
	"context"
	"io"
	"time"

	"github.com/usv-fiesc/exam-scheduler/internal/auth"
	"github.com/usv-fiesc/exam-scheduler/internal/models"
	"github.com/usv-fiesc/exam-scheduler/internal/repositories"
	"github.com/usv-fiesc/exam-scheduler/internal/validator"
)

// ===== REQUEST/RESPONSE DTOs =====

// Request shapes come from the validator package so tags live next to the
// rules that check them.
type LoginRequest = validator.LoginRequest
type ExamProposalRequest = validator.ExamProposalRequest
type ExamDecisionRequest = validator.ExamDecisionRequest
type RoomAssignRequest = validator.RoomAssignRequest
type DisciplineCreateRequest = validator.DisciplineCreateRequest
type DisciplineUpdateRequest = validator.DisciplineUpdateRequest
type PeriodCreateRequest = validator.PeriodCreateRequest
type RoomCreateRequest = validator.RoomCreateRequest
type RoomUpdateRequest = validator.RoomUpdateRequest
type UserCreateRequest = validator.UserCreateRequest
type ProfileUpdateRequest = validator.ProfileUpdateRequest
type AdminUserUpdateRequest = validator.AdminUserUpdateRequest
type FinalizeScheduleRequest = validator.FinalizeScheduleRequest

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

type ExamResponse struct {
	*models.Exam
	CanDecide bool `json:"can_decide"`
}

type ProposalListResponse struct {
	Proposals []repositories.ProposalRow `json:"proposals"`
	Total     int                        `json:"total"`
}

type ScheduleResponse struct {
	Exams []repositories.ScheduleRow `json:"exams"`
	Total int                        `json:"total"`
}

type TeacherDisciplineResponse struct {
	Discipline *models.Discipline `json:"discipline"`
	ExamID     *uint              `json:"exam_id,omitempty"`
	ExamStatus *models.ExamStatus `json:"exam_status,omitempty"`
	ExamDate   *time.Time         `json:"exam_date,omitempty"`
	CanPropose bool               `json:"can_propose"`
}

// ImportReport summarizes a bulk discipline upload.
type ImportReport struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors,omitempty"`
}

type FinalizeReport struct {
	PeriodID      uint `json:"period_id"`
	ApprovedExams int  `json:"approved_exams"`
}

// ===== SERVICE INTERFACES =====

// IdentityService resolves verified token claims to local accounts and
// handles local credential login.
type IdentityService interface {
	// ResolveOrCreate finds the account for verified claims, creating it
	// lazily from the email domain on first sight.
	ResolveOrCreate(ctx context.Context, claims *auth.Claims) (*models.User, error)

	// Login authenticates a locally provisioned account and issues a token.
	Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error)
}

type ExamService interface {
	Propose(ctx context.Context, req *ExamProposalRequest, actor *models.User) (*ExamResponse, error)
	Decide(ctx context.Context, examID uint, req *ExamDecisionRequest, actor *models.User) (*ExamResponse, error)
	GetByID(ctx context.Context, examID uint) (*ExamResponse, error)
	AssignRoom(ctx context.Context, examID uint, req *RoomAssignRequest, actor *models.User) (*ExamResponse, error)
	ListProposals(ctx context.Context) (*ProposalListResponse, error)
	ListSchedule(ctx context.Context, filter repositories.ExamFilter) (*ScheduleResponse, error)

	// StudentSchedule returns the approved exams relevant to one student.
	StudentSchedule(ctx context.Context, student *models.User) (*ScheduleResponse, error)

	// Finalize closes an examination period and announces the schedule.
	Finalize(ctx context.Context, req *FinalizeScheduleRequest, actor *models.User) (*FinalizeReport, error)
}

type DisciplineService interface {
	Create(ctx context.Context, req *DisciplineCreateRequest) (*models.Discipline, error)
	GetByID(ctx context.Context, id uint) (*models.Discipline, error)
	List(ctx context.Context, filter repositories.DisciplineFilter) ([]models.Discipline, error)
	Update(ctx context.Context, id uint, req *DisciplineUpdateRequest) (*models.Discipline, error)
	Delete(ctx context.Context, id uint) error
	ListForTeacher(ctx context.Context, teacher *models.User) ([]TeacherDisciplineResponse, error)

	// ImportXLSX ingests a spreadsheet of disciplines, one row per course.
	ImportXLSX(ctx context.Context, r io.Reader) (*ImportReport, error)
}

type PeriodService interface {
	Create(ctx context.Context, req *PeriodCreateRequest) (*models.ExamPeriod, error)
	List(ctx context.Context) ([]models.ExamPeriod, error)
	SetActive(ctx context.Context, id uint, active bool) (*models.ExamPeriod, error)
	Delete(ctx context.Context, id uint) error
}

type RoomService interface {
	Create(ctx context.Context, req *RoomCreateRequest) (*models.Room, error)
	GetByID(ctx context.Context, id uint) (*models.Room, error)
	List(ctx context.Context) ([]models.Room, error)
	Update(ctx context.Context, id uint, req *RoomUpdateRequest) (*models.Room, error)
	Delete(ctx context.Context, id uint) error
}

type UserService interface {
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req *ProfileUpdateRequest) (*models.User, error)
	List(ctx context.Context, filter repositories.UserFilter) ([]models.User, error)
	Create(ctx context.Context, req *UserCreateRequest) (*models.User, error)
	AdminUpdate(ctx context.Context, userID string, req *AdminUserUpdateRequest) (*models.User, error)
	Delete(ctx context.Context, userID string) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	Identity() IdentityService
	Exam() ExamService
	Discipline() DisciplineService
	Period() PeriodService
	Room() RoomService
	User() UserService

	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
