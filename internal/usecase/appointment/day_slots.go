package appointment

import (
	"context"
	"time"

	domain "github.com/carelink/clinic-scheduler/internal/domain/appointment"
)

type DaySlot struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// GetDaySlots pairs the fixed catalog with the doctor's existing
// bookings so the caller gets a conflict-free picture of one day.
type GetDaySlots struct {
	repo domain.Repository
}

func NewGetDaySlots(repo domain.Repository) *GetDaySlots {
	return &GetDaySlots{repo: repo}
}

func (uc *GetDaySlots) Execute(
	ctx context.Context,
	doctorID uint,
	date time.Time,
) ([]DaySlot, error) {

	booked, err := uc.repo.BookedTimesForDay(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}

	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}

	catalog := domain.ListSlots()
	slots := make([]DaySlot, 0, len(catalog))
	for _, t := range catalog {
		_, isTaken := taken[t]
		slots = append(slots, DaySlot{
			Time:      t,
			Available: !isTaken,
		})
	}

	return slots, nil
}
