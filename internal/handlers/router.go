package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/usv-fiesc/exam-scheduler/internal/auth"
	"github.com/usv-fiesc/exam-scheduler/internal/models"
	"github.com/usv-fiesc/exam-scheduler/internal/services"
	"github.com/usv-fiesc/exam-scheduler/internal/utils"
)

type HandlerManager struct {
	authHandler       *AuthHandler
	examHandler       *ExamHandler
	disciplineHandler *DisciplineHandler
	periodHandler     *PeriodHandler
	roomHandler       *RoomHandler
	userHandler       *UserHandler
	authMiddleware    *AuthMiddleware
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	verifier *auth.TokenVerifier,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		authHandler:       NewAuthHandler(serviceManager.Identity(), logger),
		examHandler:       NewExamHandler(serviceManager.Exam(), logger),
		disciplineHandler: NewDisciplineHandler(serviceManager.Discipline(), logger),
		periodHandler:     NewPeriodHandler(serviceManager.Period(), logger),
		roomHandler:       NewRoomHandler(serviceManager.Room(), logger),
		userHandler:       NewUserHandler(serviceManager.User(), logger),
		authMiddleware:    NewAuthMiddleware(verifier, serviceManager.Identity(), logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "exam-scheduler",
		})
	})

	// Login is the only route reachable without a token.
	router.POST("/api/v1/auth/login", hm.authHandler.Login)

	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.Authenticate())
	{
		v1.POST("/auth/sync", hm.authHandler.Sync)

		// Exam workflow routes
		exams := v1.Group("/exams")
		{
			// Proposals come from the assigned teacher; assignment is
			// checked against the discipline inside the service.
			exams.POST("", hm.authMiddleware.RequireRole(models.RoleTeacher), hm.examHandler.ProposeExam)

			// Decisions, room assignment and finalization are coordinator
			// actions reserved for administrators with no pass-through.
			exams.GET("/proposals", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.examHandler.ListProposals)
			exams.PUT("/:id/decision", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.examHandler.DecideExam)
			exams.PUT("/:id/room", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.examHandler.AssignRoom)
			exams.POST("/finalize", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.examHandler.FinalizeSchedule)

			// Schedule views - all authenticated users
			exams.GET("/schedule", hm.examHandler.ListSchedule)
			exams.GET("/:id", hm.examHandler.GetExam)
		}

		// Discipline catalog routes
		disciplines := v1.Group("/disciplines")
		{
			disciplines.GET("", hm.disciplineHandler.ListDisciplines)
			disciplines.GET("/mine", hm.authMiddleware.RequireRole(models.RoleTeacher), hm.disciplineHandler.MyDisciplines)
			disciplines.GET("/:id", hm.disciplineHandler.GetDiscipline)

			disciplines.POST("", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.disciplineHandler.CreateDiscipline)
			disciplines.POST("/import", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.disciplineHandler.ImportDisciplines)
			disciplines.PUT("/:id", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.disciplineHandler.UpdateDiscipline)
			disciplines.DELETE("/:id", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.disciplineHandler.DeleteDiscipline)
		}

		// Group representative view of the catalog
		sg := v1.Group("/sg")
		sg.Use(hm.authMiddleware.RequireRole(models.RoleGroupRep))
		{
			sg.GET("/disciplines", hm.disciplineHandler.ListDisciplines)
		}

		// Student routes - administrators do not pass these checks
		students := v1.Group("/students")
		students.Use(hm.authMiddleware.RequireExactRole(models.RoleStudent, models.RoleGroupRep))
		{
			students.GET("/me/exams", hm.examHandler.MySchedule)
		}

		// Examination period routes
		periods := v1.Group("/periods")
		{
			periods.GET("", hm.periodHandler.ListPeriods)
			periods.POST("", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.periodHandler.CreatePeriod)
			periods.PUT("/:id/active", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.periodHandler.SetPeriodActive)
			periods.DELETE("/:id", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.periodHandler.DeletePeriod)
		}

		// Room routes
		rooms := v1.Group("/rooms")
		{
			rooms.GET("", hm.roomHandler.ListRooms)
			rooms.GET("/:id", hm.roomHandler.GetRoom)
			rooms.POST("", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.roomHandler.CreateRoom)
			rooms.PUT("/:id", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.roomHandler.UpdateRoom)
			rooms.DELETE("/:id", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.roomHandler.DeleteRoom)
		}

		// User routes
		users := v1.Group("/users")
		{
			users.GET("/me", hm.userHandler.GetProfile)
			users.PUT("/me/details", hm.userHandler.UpdateProfile)

			users.GET("", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.userHandler.ListUsers)
			users.GET("/teachers", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.userHandler.ListTeachers)
			users.GET("/roles", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.userHandler.ListRoles)
			users.POST("", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.userHandler.CreateUser)
			users.PUT("/:id", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.userHandler.UpdateUser)
			users.DELETE("/:id", hm.authMiddleware.RequireExactRole(models.RoleAdmin), hm.userHandler.DeleteUser)
		}
	}
}
