package appointment

import (
	"context"
	"time"

	domain "github.com/carelink/clinic-scheduler/internal/domain/appointment"
	"github.com/carelink/clinic-scheduler/internal/timezone"
)

type MonthGrid struct {
	repo domain.Repository
}

func NewMonthGrid(repo domain.Repository) *MonthGrid {
	return &MonthGrid{repo: repo}
}

// Execute loads every appointment inside the 42-cell window (including
// the padding days of adjacent months) and builds the grid.
func (uc *MonthGrid) Execute(
	ctx context.Context,
	facilityID uint,
	doctorID uint,
	year int,
	month time.Month,
) ([]domain.CalendarDay, error) {

	facility, err := uc.repo.GetFacilityByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	loc := timezone.Location(facility.Timezone)

	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	gridStart := firstOfMonth.AddDate(0, 0, -int(firstOfMonth.Weekday()))
	gridEnd := gridStart.AddDate(0, 0, 42)

	appointments, err := uc.repo.ListAppointmentsForPeriod(
		ctx,
		facilityID,
		doctorID,
		gridStart,
		gridEnd,
	)
	if err != nil {
		return nil, err
	}

	return domain.BuildMonthGrid(year, month, appointments, loc), nil
}
