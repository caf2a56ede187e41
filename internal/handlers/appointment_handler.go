package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	domain "github.com/carelink/clinic-scheduler/internal/domain/appointment"
	"github.com/carelink/clinic-scheduler/internal/httperr"
	"github.com/carelink/clinic-scheduler/internal/httpresp"
	"github.com/carelink/clinic-scheduler/internal/middleware"
	ucAppointment "github.com/carelink/clinic-scheduler/internal/usecase/appointment"
)

// ======================================================
// HANDLER
// ======================================================

type AppointmentHandler struct {
	schedule   *ucAppointment.ScheduleAppointment
	transition *ucAppointment.TransitionAppointment
	reschedule *ucAppointment.RescheduleAppointment
	directory  *ucAppointment.QueryDirectory
	monthGrid  *ucAppointment.MonthGrid
	daySlots   *ucAppointment.GetDaySlots
}

func NewAppointmentHandler(
	schedule *ucAppointment.ScheduleAppointment,
	transition *ucAppointment.TransitionAppointment,
	reschedule *ucAppointment.RescheduleAppointment,
	directory *ucAppointment.QueryDirectory,
	monthGrid *ucAppointment.MonthGrid,
	daySlots *ucAppointment.GetDaySlots,
) *AppointmentHandler {
	return &AppointmentHandler{
		schedule:   schedule,
		transition: transition,
		reschedule: reschedule,
		directory:  directory,
		monthGrid:  monthGrid,
		daySlots:   daySlots,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type ScheduleAppointmentRequest struct {
	DoctorID    uint   `json:"doctor_id" binding:"required"`
	PatientID   uint   `json:"patient_id"`
	PatientName string `json:"patient_name"`
	Date        string `json:"date" binding:"required"`
	Time        string `json:"time" binding:"required"`
	Reason      string `json:"reason" binding:"required"`
	Kind        string `json:"kind"`
	Notes       string `json:"notes"`
}

type TransitionNoteRequest struct {
	Note string `json:"note"`
}

type RescheduleRequest struct {
	Date   string `json:"date" binding:"required"`
	Time   string `json:"time" binding:"required"`
	Reason string `json:"reason"`
}

// ======================================================
// CREATE
// ======================================================

func (h *AppointmentHandler) Create(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	facilityID := c.MustGet(middleware.ContextFacilityID).(uint)

	var req ScheduleAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed request body.")
		return
	}

	ap, fields, err := h.schedule.Execute(c.Request.Context(), ucAppointment.ScheduleAppointmentInput{
		FacilityID:  facilityID,
		RequestedBy: userID,
		DoctorID:    req.DoctorID,
		PatientID:   req.PatientID,
		PatientName: req.PatientName,
		Date:        req.Date,
		Time:        req.Time,
		Reason:      req.Reason,
		Kind:        req.Kind,
		Notes:       req.Notes,
	})
	if fields != nil {
		httperr.Validation(c, fields)
		return
	}
	if err != nil {
		writeAppointmentError(c, err)
		return
	}

	httpresp.Created(c, ap)
}

// ======================================================
// TRANSITIONS
// ======================================================

func (h *AppointmentHandler) Confirm(c *gin.Context) { h.applyTransition(c, "confirm") }

func (h *AppointmentHandler) CheckIn(c *gin.Context) { h.applyTransition(c, "check_in") }

func (h *AppointmentHandler) Complete(c *gin.Context) { h.applyTransition(c, "complete") }

func (h *AppointmentHandler) Cancel(c *gin.Context) { h.applyTransition(c, "cancel") }

func (h *AppointmentHandler) applyTransition(c *gin.Context, actionName string) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	facilityID := c.MustGet(middleware.ContextFacilityID).(uint)

	id, ok := paramID(c)
	if !ok {
		return
	}

	action, ok := domain.ParseAction(actionName)
	if !ok {
		httperr.BadRequest(c, "unknown_action", "Unknown appointment action.")
		return
	}

	var req TransitionNoteRequest
	_ = c.ShouldBindJSON(&req) // note is optional; an empty body is fine

	ap, err := h.transition.Execute(c.Request.Context(), facilityID, userID, id, action, req.Note)
	if err != nil {
		writeAppointmentError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// RESCHEDULE
// ======================================================

func (h *AppointmentHandler) Reschedule(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uint)
	facilityID := c.MustGet(middleware.ContextFacilityID).(uint)

	id, ok := paramID(c)
	if !ok {
		return
	}

	var req RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.BadRequest(c, "invalid_request", "Malformed request body.")
		return
	}

	ap, fields, err := h.reschedule.Execute(c.Request.Context(), ucAppointment.RescheduleAppointmentInput{
		FacilityID:    facilityID,
		ActorID:       userID,
		AppointmentID: id,
		Date:          req.Date,
		Time:          req.Time,
		Reason:        req.Reason,
	})
	if fields != nil {
		httperr.Validation(c, fields)
		return
	}
	if err != nil {
		writeAppointmentError(c, err)
		return
	}

	httpresp.OK(c, ap)
}

// ======================================================
// DIRECTORY (staff feeds)
// ======================================================

func (h *AppointmentHandler) List(c *gin.Context) {
	facilityID := c.MustGet(middleware.ContextFacilityID).(uint)

	var doctorID uint
	if raw := c.Query("doctor_id"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httperr.BadRequest(c, "invalid_doctor_id", "Invalid doctor id.")
			return
		}
		doctorID = uint(n)
	}

	out, err := h.directory.Execute(c.Request.Context(), ucAppointment.DirectoryQuery{
		FacilityID:   facilityID,
		DoctorID:     doctorID,
		Status:       c.Query("status"),
		Search:       c.Query("q"),
		TodayOnly:    c.Query("view") == "today",
		UpcomingOnly: c.Query("view") == "upcoming",
	})
	if err != nil {
		httperr.Internal(c, "failed_to_list_appointments", "Could not load appointments.")
		return
	}

	httpresp.List(c, out)
}

// ======================================================
// MONTH GRID
// ======================================================

func (h *AppointmentHandler) MonthGrid(c *gin.Context) {
	facilityID := c.MustGet(middleware.ContextFacilityID).(uint)

	year, err := strconv.Atoi(c.Query("year"))
	if err != nil || year < 2000 || year > 2100 {
		httperr.BadRequest(c, "invalid_year", "Invalid year.")
		return
	}

	month, err := strconv.Atoi(c.Query("month"))
	if err != nil || month < 1 || month > 12 {
		httperr.BadRequest(c, "invalid_month", "Invalid month.")
		return
	}

	var doctorID uint
	if raw := c.Query("doctor_id"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			doctorID = uint(n)
		}
	}

	grid, err := h.monthGrid.Execute(
		c.Request.Context(),
		facilityID,
		doctorID,
		year,
		time.Month(month),
	)
	if err != nil {
		httperr.Internal(c, "failed_to_build_calendar", "Could not build calendar.")
		return
	}

	c.JSON(200, gin.H{
		"year":  year,
		"month": month,
		"days":  grid,
	})
}

// ======================================================
// DAY SLOTS
// ======================================================

func (h *AppointmentHandler) DaySlots(c *gin.Context) {
	doctorIDRaw, err := strconv.Atoi(c.Query("doctor_id"))
	if err != nil || doctorIDRaw <= 0 {
		httperr.BadRequest(c, "invalid_doctor_id", "Doctor id is required.")
		return
	}

	date, err := time.Parse("2006-01-02", c.Query("date"))
	if err != nil {
		httperr.BadRequest(c, "invalid_date", "Date must be YYYY-MM-DD.")
		return
	}

	slots, err := h.daySlots.Execute(c.Request.Context(), uint(doctorIDRaw), date)
	if err != nil {
		httperr.Internal(c, "failed_to_load_slots", "Could not load slots.")
		return
	}

	httpresp.List(c, slots)
}

// ======================================================
// ERROR MAPPING
// ======================================================

func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		httperr.BadRequest(c, "invalid_id", "Invalid appointment id.")
		return 0, false
	}
	return uint(id), true
}

func writeAppointmentError(c *gin.Context, err error) {
	var invalid domain.InvalidTransitionError
	if errors.As(err, &invalid) {
		httperr.Conflict(c, "invalid_transition", invalid.Error())
		return
	}

	switch {
	case httperr.IsBusiness(err, "appointment_not_found"):
		httperr.NotFound(c, "appointment_not_found", "Appointment not found.")
	case httperr.IsBusiness(err, "doctor_not_found"):
		httperr.BadRequest(c, "doctor_not_found", "Doctor not found.")
	case httperr.IsBusiness(err, "patient_not_found"):
		httperr.BadRequest(c, "patient_not_found", "Patient not found.")
	case httperr.IsBusiness(err, "time_conflict"):
		httperr.Conflict(c, "time_conflict", "The doctor already has an appointment at that time.")
	default:
		httperr.Internal(c, "internal_error", "Something went wrong handling the appointment.")
	}
}
