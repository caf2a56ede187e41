package appointment

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/carelink/clinic-scheduler/internal/audit"
	"github.com/carelink/clinic-scheduler/internal/cache"
	domain "github.com/carelink/clinic-scheduler/internal/domain/appointment"
	"github.com/carelink/clinic-scheduler/internal/events"
	"github.com/carelink/clinic-scheduler/internal/httperr"
	"github.com/carelink/clinic-scheduler/internal/models"
)

// A far-future weekday so the "not in the past" rule never trips.
const testDate = "2030-03-18"

// noAudit stays nil on purpose: Dispatch on a nil dispatcher is a no-op,
// which keeps these tests free of a database-backed audit sink.
var noAudit *audit.Dispatcher

func testBus() *events.Bus {
	return events.NewBus(zerolog.Nop())
}

func TestScheduleAppointmentPersistsAndPublishes(t *testing.T) {
	repo := newFakeRepo()
	bus := testBus()
	sub := bus.Subscribe(events.TopicAppointmentCreated)
	defer sub.Unsubscribe()

	uc := NewScheduleAppointment(repo, noAudit, bus)

	ap, fields, err := uc.Execute(context.Background(), ScheduleAppointmentInput{
		FacilityID:  1,
		RequestedBy: 10,
		DoctorID:    10,
		PatientID:   100,
		Date:        testDate,
		Time:        "09:30",
		Reason:      "Annual checkup",
		Kind:        "",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if fields != nil {
		t.Fatalf("unexpected field errors: %v", fields)
	}

	if ap.ID == 0 {
		t.Fatal("expected an assigned appointment id")
	}
	if ap.Status != string(domain.StatusScheduled) {
		t.Fatalf("status = %q, want %q", ap.Status, domain.StatusScheduled)
	}
	if ap.Kind != "routine" {
		t.Fatalf("kind = %q, want routine default", ap.Kind)
	}

	stored, ok := repo.appointments[ap.ID]
	if !ok {
		t.Fatal("appointment was not persisted")
	}
	if stored.Time != "09:30" || stored.PatientID != 100 {
		t.Fatalf("persisted appointment mismatch: %+v", stored)
	}

	select {
	case ev := <-sub.C:
		if ev.Appointment.ID != ap.ID {
			t.Fatalf("event appointment id = %d, want %d", ev.Appointment.ID, ap.ID)
		}
	default:
		t.Fatal("expected an appointment-created event")
	}
}

func TestScheduleAppointmentFieldErrors(t *testing.T) {
	repo := newFakeRepo()
	uc := NewScheduleAppointment(repo, noAudit, testBus())

	ap, fields, err := uc.Execute(context.Background(), ScheduleAppointmentInput{
		FacilityID: 1,
		DoctorID:   10,
		PatientID:  100,
		Date:       testDate,
		Time:       "07:00",
		Reason:     "Annual checkup",
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if ap != nil {
		t.Fatal("expected no appointment on validation failure")
	}
	if _, ok := fields["appointment_time"]; !ok {
		t.Fatalf("fields = %v, want appointment_time entry", fields)
	}
	if len(repo.appointments) != 0 {
		t.Fatal("nothing should be persisted on validation failure")
	}
}

func TestScheduleAppointmentCreatesDeferredPatient(t *testing.T) {
	repo := newFakeRepo()
	uc := NewScheduleAppointment(repo, noAudit, testBus())

	ap, fields, err := uc.Execute(context.Background(), ScheduleAppointmentInput{
		FacilityID:  1,
		DoctorID:    10,
		PatientName: "Noah Reyes",
		Date:        testDate,
		Time:        "10:00",
		Reason:      "New patient intake",
	})
	if err != nil || fields != nil {
		t.Fatalf("Execute: err=%v fields=%v", err, fields)
	}

	p, ok := repo.patients[ap.PatientID]
	if !ok {
		t.Fatal("deferred patient was not created")
	}
	if p.FullName != "Noah Reyes" {
		t.Fatalf("patient name = %q", p.FullName)
	}
	if p.MRN == "" {
		t.Fatal("expected an MRN on the new patient")
	}
}

func TestScheduleAppointmentSlotConflict(t *testing.T) {
	repo := newFakeRepo()
	uc := NewScheduleAppointment(repo, noAudit, testBus())

	in := ScheduleAppointmentInput{
		FacilityID: 1,
		DoctorID:   10,
		PatientID:  100,
		Date:       testDate,
		Time:       "11:00",
		Reason:     "Follow-up visit",
	}
	if _, _, err := uc.Execute(context.Background(), in); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	_, fields, err := uc.Execute(context.Background(), in)
	if fields != nil {
		t.Fatalf("conflict must not surface as field errors: %v", fields)
	}
	if !httperr.IsBusiness(err, "time_conflict") {
		t.Fatalf("err = %v, want time_conflict", err)
	}
	if len(repo.appointments) != 1 {
		t.Fatalf("have %d appointments, want 1", len(repo.appointments))
	}
}

func TestScheduleAppointmentUnknownDoctor(t *testing.T) {
	repo := newFakeRepo()
	uc := NewScheduleAppointment(repo, noAudit, testBus())

	_, _, err := uc.Execute(context.Background(), ScheduleAppointmentInput{
		FacilityID: 1,
		DoctorID:   99,
		PatientID:  100,
		Date:       testDate,
		Time:       "09:00",
		Reason:     "Annual checkup",
	})
	if !httperr.IsBusiness(err, "doctor_not_found") {
		t.Fatalf("err = %v, want doctor_not_found", err)
	}
}

func TestAppointmentLifecycleThroughUseCases(t *testing.T) {
	repo := newFakeRepo()
	bus := testBus()
	sub := bus.Subscribe(events.TopicAppointmentUpdated)
	defer sub.Unsubscribe()

	schedule := NewScheduleAppointment(repo, noAudit, bus)
	transition := NewTransitionAppointment(repo, noAudit, bus)

	ctx := context.Background()
	ap, _, err := schedule.Execute(ctx, ScheduleAppointmentInput{
		FacilityID: 1,
		DoctorID:   10,
		PatientID:  100,
		Date:       testDate,
		Time:       "14:00",
		Reason:     "Vaccination",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if _, err := transition.Execute(ctx, 1, 10, ap.ID, domain.ActionConfirm, ""); err != nil {
		t.Fatalf("confirm: %v", err)
	}
	if _, err := transition.Execute(ctx, 1, 10, ap.ID, domain.ActionCheckIn, "arrived at front desk"); err != nil {
		t.Fatalf("check in: %v", err)
	}
	done, err := transition.Execute(ctx, 1, 10, ap.ID, domain.ActionComplete, "seen by doctor")
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if done.Status != string(domain.StatusCompleted) {
		t.Fatalf("status = %q, want completed", done.Status)
	}
	if done.ConfirmedAt == nil || done.CheckedInAt == nil || done.CompletedAt == nil {
		t.Fatal("expected all lifecycle timestamps to be stamped")
	}
	if done.Notes != "arrived at front desk\nseen by doctor" {
		t.Fatalf("notes = %q", done.Notes)
	}

	stored := repo.appointments[ap.ID]
	if stored.Status != string(domain.StatusCompleted) {
		t.Fatalf("persisted status = %q, want completed", stored.Status)
	}

	// Confirm, check-in and complete each publish one update.
	for i := 0; i < 3; i++ {
		select {
		case <-sub.C:
		default:
			t.Fatalf("missing update event %d", i+1)
		}
	}
}

func TestCheckInBeforeConfirmIsRejected(t *testing.T) {
	repo := newFakeRepo()
	bus := testBus()
	schedule := NewScheduleAppointment(repo, noAudit, bus)
	transition := NewTransitionAppointment(repo, noAudit, bus)

	ctx := context.Background()
	ap, _, err := schedule.Execute(ctx, ScheduleAppointmentInput{
		FacilityID: 1,
		DoctorID:   10,
		PatientID:  100,
		Date:       testDate,
		Time:       "15:00",
		Reason:     "Vaccination",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	_, err = transition.Execute(ctx, 1, 10, ap.ID, domain.ActionCheckIn, "")
	var ite domain.InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}

	if repo.appointments[ap.ID].Status != string(domain.StatusScheduled) {
		t.Fatal("failed transition must not change the persisted status")
	}
}

func TestCancelCompletedIsRejected(t *testing.T) {
	repo := newFakeRepo()
	bus := testBus()
	schedule := NewScheduleAppointment(repo, noAudit, bus)
	transition := NewTransitionAppointment(repo, noAudit, bus)

	ctx := context.Background()
	ap, _, err := schedule.Execute(ctx, ScheduleAppointmentInput{
		FacilityID: 1,
		DoctorID:   10,
		PatientID:  100,
		Date:       testDate,
		Time:       "16:00",
		Reason:     "Lab results review",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}
	for _, action := range []domain.Action{domain.ActionConfirm, domain.ActionCheckIn, domain.ActionComplete} {
		if _, err := transition.Execute(ctx, 1, 10, ap.ID, action, ""); err != nil {
			t.Fatalf("%s: %v", action, err)
		}
	}

	_, err = transition.Execute(ctx, 1, 10, ap.ID, domain.ActionCancel, "")
	var ite domain.InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}
	if repo.appointments[ap.ID].Status != string(domain.StatusCompleted) {
		t.Fatal("completed appointment must stay completed")
	}
}

func TestRescheduleMovesSlotAndKeepsPatient(t *testing.T) {
	repo := newFakeRepo()
	bus := testBus()
	schedule := NewScheduleAppointment(repo, noAudit, bus)
	reschedule := NewRescheduleAppointment(repo, noAudit, bus)

	ctx := context.Background()
	ap, _, err := schedule.Execute(ctx, ScheduleAppointmentInput{
		FacilityID: 1,
		DoctorID:   10,
		PatientID:  100,
		Date:       testDate,
		Time:       "09:00",
		Reason:     "Vaccination",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	moved, fields, err := reschedule.Execute(ctx, RescheduleAppointmentInput{
		FacilityID:    1,
		ActorID:       10,
		AppointmentID: ap.ID,
		Date:          "2030-03-19",
		Time:          "10:30",
	})
	if err != nil || fields != nil {
		t.Fatalf("reschedule: err=%v fields=%v", err, fields)
	}
	if moved.Time != "10:30" {
		t.Fatalf("time = %q, want 10:30", moved.Time)
	}
	if moved.PatientID != 100 {
		t.Fatal("reschedule must never change the patient")
	}
	if moved.Reason != "Vaccination" {
		t.Fatalf("empty reason must keep the original, got %q", moved.Reason)
	}
}

func TestRescheduleOntoTakenSlotIsAConflict(t *testing.T) {
	repo := newFakeRepo()
	bus := testBus()
	schedule := NewScheduleAppointment(repo, noAudit, bus)
	reschedule := NewRescheduleAppointment(repo, noAudit, bus)

	ctx := context.Background()
	first, _, err := schedule.Execute(ctx, ScheduleAppointmentInput{
		FacilityID: 1,
		DoctorID:   10,
		PatientID:  100,
		Date:       testDate,
		Time:       "09:00",
		Reason:     "Annual checkup",
	})
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	second, _, err := schedule.Execute(ctx, ScheduleAppointmentInput{
		FacilityID: 1,
		DoctorID:   10,
		PatientID:  100,
		Date:       testDate,
		Time:       "10:00",
		Reason:     "Follow-up visit",
	})
	if err != nil {
		t.Fatalf("second booking: %v", err)
	}

	_, fields, err := reschedule.Execute(ctx, RescheduleAppointmentInput{
		FacilityID:    1,
		ActorID:       10,
		AppointmentID: second.ID,
		Date:          testDate,
		Time:          "09:00",
	})
	if fields != nil {
		t.Fatalf("conflict must not surface as field errors: %v", fields)
	}
	if !httperr.IsBusiness(err, "time_conflict") {
		t.Fatalf("err = %v, want time_conflict", err)
	}
	if repo.appointments[second.ID].Time != "10:00" {
		t.Fatal("failed move must leave the stored slot untouched")
	}
	if repo.appointments[first.ID].Time != "09:00" {
		t.Fatal("failed move must leave the occupying appointment untouched")
	}
}

func TestScheduleNormalizesSingleDigitHour(t *testing.T) {
	repo := newFakeRepo()
	bus := testBus()
	schedule := NewScheduleAppointment(repo, noAudit, bus)
	reschedule := NewRescheduleAppointment(repo, noAudit, bus)

	ctx := context.Background()
	ap, fields, err := schedule.Execute(ctx, ScheduleAppointmentInput{
		FacilityID: 1,
		DoctorID:   10,
		PatientID:  100,
		Date:       testDate,
		Time:       "9:15",
		Reason:     "Annual checkup",
	})
	if err != nil || fields != nil {
		t.Fatalf("schedule: err=%v fields=%v", err, fields)
	}
	if ap.Time != "09:15" {
		t.Fatalf("stored time = %q, want zero-padded 09:15", ap.Time)
	}

	// A second booking spelled the padded way hits the same slot.
	_, _, err = schedule.Execute(ctx, ScheduleAppointmentInput{
		FacilityID: 1,
		DoctorID:   10,
		PatientID:  100,
		Date:       testDate,
		Time:       "09:15",
		Reason:     "Follow-up visit",
	})
	if !httperr.IsBusiness(err, "time_conflict") {
		t.Fatalf("err = %v, want time_conflict for the padded spelling", err)
	}

	moved, fields, err := reschedule.Execute(ctx, RescheduleAppointmentInput{
		FacilityID:    1,
		ActorID:       10,
		AppointmentID: ap.ID,
		Date:          testDate,
		Time:          "9:45",
	})
	if err != nil || fields != nil {
		t.Fatalf("reschedule: err=%v fields=%v", err, fields)
	}
	if moved.Time != "09:45" {
		t.Fatalf("moved time = %q, want zero-padded 09:45", moved.Time)
	}
}

func TestRescheduleOntoOwnSlotIsNotAConflict(t *testing.T) {
	repo := newFakeRepo()
	bus := testBus()
	schedule := NewScheduleAppointment(repo, noAudit, bus)
	reschedule := NewRescheduleAppointment(repo, noAudit, bus)

	ctx := context.Background()
	ap, _, err := schedule.Execute(ctx, ScheduleAppointmentInput{
		FacilityID: 1,
		DoctorID:   10,
		PatientID:  100,
		Date:       testDate,
		Time:       "13:30",
		Reason:     "Follow-up visit",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	_, fields, err := reschedule.Execute(ctx, RescheduleAppointmentInput{
		FacilityID:    1,
		ActorID:       10,
		AppointmentID: ap.ID,
		Date:          testDate,
		Time:          "13:30",
	})
	if err != nil || fields != nil {
		t.Fatalf("same-slot reschedule: err=%v fields=%v", err, fields)
	}
}

func TestGetDaySlotsMarksBookedTimes(t *testing.T) {
	repo := newFakeRepo()
	schedule := NewScheduleAppointment(repo, noAudit, testBus())
	daySlots := NewGetDaySlots(repo)

	ctx := context.Background()
	ap, _, err := schedule.Execute(ctx, ScheduleAppointmentInput{
		FacilityID: 1,
		DoctorID:   10,
		PatientID:  100,
		Date:       testDate,
		Time:       "09:30",
		Reason:     "Annual checkup",
	})
	if err != nil {
		t.Fatalf("schedule: %v", err)
	}

	slots, err := daySlots.Execute(ctx, 10, ap.Date)
	if err != nil {
		t.Fatalf("day slots: %v", err)
	}
	if len(slots) != 16 {
		t.Fatalf("have %d slots, want the full catalog of 16", len(slots))
	}
	for _, s := range slots {
		wantAvailable := s.Time != "09:30"
		if s.Available != wantAvailable {
			t.Fatalf("slot %s available=%v, want %v", s.Time, s.Available, wantAvailable)
		}
	}
}

func TestGrantedPatientIDsScopesParents(t *testing.T) {
	repo := newFakeRepo()
	repo.grants = append(repo.grants,
		models.ChildAccessGrant{ID: 1, ParentUserID: 50, PatientID: 100, Relationship: "mother"},
	)
	children := NewListChildren(repo)

	ctx := context.Background()
	ids, err := children.GrantedPatientIDs(ctx, 50, 0)
	if err != nil {
		t.Fatalf("granted ids: %v", err)
	}
	if len(ids) != 1 || ids[0] != 100 {
		t.Fatalf("ids = %v, want [100]", ids)
	}

	_, err = children.GrantedPatientIDs(ctx, 50, 999)
	if !httperr.IsBusiness(err, "child_not_granted") {
		t.Fatalf("err = %v, want child_not_granted", err)
	}

	ids, err = children.GrantedPatientIDs(ctx, 51, 0)
	if err != nil {
		t.Fatalf("granted ids for parent without grants: %v", err)
	}
	if len(ids) != 0 {
		t.Fatalf("ids = %v, want empty set", ids)
	}
}

func TestSearchPatientsWithoutCache(t *testing.T) {
	repo := newFakeRepo()
	uc := NewSearchPatients(repo, cache.NewPatientSearch(nil))

	ctx := context.Background()
	patients, err := uc.Execute(ctx, 1, "may")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(patients) != 1 || patients[0].FullName != "Maya Thompson" {
		t.Fatalf("patients = %+v, want Maya Thompson", patients)
	}

	patients, err = uc.Execute(ctx, 1, "   ")
	if err != nil {
		t.Fatalf("blank search: %v", err)
	}
	if len(patients) != 0 {
		t.Fatalf("blank term must yield no results, got %+v", patients)
	}
}
