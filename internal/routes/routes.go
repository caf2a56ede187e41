package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/carelink/clinic-scheduler/internal/audit"
	"github.com/carelink/clinic-scheduler/internal/cache"
	"github.com/carelink/clinic-scheduler/internal/config"
	"github.com/carelink/clinic-scheduler/internal/events"
	"github.com/carelink/clinic-scheduler/internal/handlers"
	infraRepo "github.com/carelink/clinic-scheduler/internal/infra/repository"
	"github.com/carelink/clinic-scheduler/internal/middleware"
	"github.com/carelink/clinic-scheduler/internal/models"
	ucAppointment "github.com/carelink/clinic-scheduler/internal/usecase/appointment"
)

func RegisterRoutes(
	r *gin.Engine,
	db *gorm.DB,
	rdb *redis.Client,
	cfg *config.Config,
	log zerolog.Logger,
) {

	// ======================================================
	// INFRA (SINGLETONS)
	// ======================================================
	appointmentRepo := infraRepo.NewAppointmentGormRepository(db)

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, log)

	bus := events.NewBus(log)
	searchCache := cache.NewPatientSearch(rdb)

	// ======================================================
	// USE CASES — APPOINTMENTS
	// ======================================================
	scheduleUC := ucAppointment.NewScheduleAppointment(
		appointmentRepo,
		auditDispatcher,
		bus,
	)

	transitionUC := ucAppointment.NewTransitionAppointment(
		appointmentRepo,
		auditDispatcher,
		bus,
	)

	rescheduleUC := ucAppointment.NewRescheduleAppointment(
		appointmentRepo,
		auditDispatcher,
		bus,
	)

	directoryUC := ucAppointment.NewQueryDirectory(appointmentRepo)
	monthGridUC := ucAppointment.NewMonthGrid(appointmentRepo)
	daySlotsUC := ucAppointment.NewGetDaySlots(appointmentRepo)
	childrenUC := ucAppointment.NewListChildren(appointmentRepo)
	searchPatientsUC := ucAppointment.NewSearchPatients(appointmentRepo, searchCache)

	// ======================================================
	// HANDLERS
	// ======================================================
	authHandler := handlers.NewAuthHandler(db, cfg)
	meHandler := handlers.NewMeHandler(db)

	appointmentHandler := handlers.NewAppointmentHandler(
		scheduleUC,
		transitionUC,
		rescheduleUC,
		directoryUC,
		monthGridUC,
		daySlotsUC,
	)

	patientHandler := handlers.NewPatientHandler(searchPatientsUC)
	childrenHandler := handlers.NewChildrenHandler(childrenUC, directoryUC)
	auditLogsHandler := handlers.NewAuditLogsHandler(db)

	// ======================================================
	// API (JSON)
	// ======================================================
	api := r.Group("/api")
	{
		// ------------------------------
		// AUTH
		// ------------------------------
		api.POST("/auth/register", authHandler.Register)
		api.POST("/auth/login", authHandler.Login)

		// ------------------------------
		// AUTHENTICATED
		// ------------------------------
		secured := api.Group("/")
		secured.Use(middleware.AuthMiddleware(cfg))
		{
			secured.GET("/me", meHandler.GetMe)

			// ------------------------------
			// STAFF (doctor / nurse / facility_admin)
			// ------------------------------
			staff := secured.Group("/")
			staff.Use(middleware.RequireStaff())
			{
				staff.GET("/patients/search", patientHandler.Search)

				staff.POST("/appointments", appointmentHandler.Create)
				staff.GET("/appointments", appointmentHandler.List)
				staff.GET("/appointments/calendar", appointmentHandler.MonthGrid)
				staff.GET("/appointments/slots", appointmentHandler.DaySlots)

				staff.PATCH("/appointments/:id/confirm", appointmentHandler.Confirm)
				staff.PATCH("/appointments/:id/check-in", appointmentHandler.CheckIn)
				staff.PATCH("/appointments/:id/complete", appointmentHandler.Complete)
				staff.PATCH("/appointments/:id/cancel", appointmentHandler.Cancel)
				staff.PATCH("/appointments/:id/reschedule", appointmentHandler.Reschedule)

				staff.GET("/audit-logs", auditLogsHandler.List)
			}

			// ------------------------------
			// PARENT / GUARDIAN
			// ------------------------------
			parent := secured.Group("/")
			parent.Use(middleware.RequireRoles(models.RoleParent))
			{
				parent.GET("/children", childrenHandler.List)
				parent.GET("/children/appointments", childrenHandler.Appointments)
			}
		}
	}
}
