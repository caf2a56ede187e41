package appointment

import (
	"time"

	"github.com/carelink/clinic-scheduler/internal/models"
)

// ===============================
// Calendar Grid
// ===============================

const gridCells = 42 // 6 rows x 7 columns, Sunday-first

type DayIndicator string

const (
	IndicatorEmergency DayIndicator = "emergency" // red
	IndicatorFollowUp  DayIndicator = "followup"  // amber
	IndicatorDefault   DayIndicator = "default"   // primary
)

type CalendarDay struct {
	Date           time.Time            `json:"date"`
	IsCurrentMonth bool                 `json:"is_current_month"`
	Appointments   []models.Appointment `json:"appointments"`
}

// Selectable guards day selection: padding cells from adjacent months
// are never selectable, independent of how they are styled.
func (d CalendarDay) Selectable() bool {
	return d.IsCurrentMonth
}

// IsToday compares by exact calendar date against the caller's now.
func (d CalendarDay) IsToday(now time.Time) bool {
	return SameDay(d.Date, now)
}

// Indicator picks the day marker with fixed precedence: one emergency
// appointment turns the whole day red no matter what else is booked,
// then followup, then the default color.
func (d CalendarDay) Indicator() DayIndicator {
	indicator := IndicatorDefault
	for _, ap := range d.Appointments {
		switch ap.Kind {
		case models.KindEmergency:
			return IndicatorEmergency
		case models.KindFollowUp:
			indicator = IndicatorFollowUp
		}
	}
	return indicator
}

func SameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// BuildMonthGrid produces the 42-cell Sunday-first grid for one month:
// trailing days of the previous month, days 1..N of the target month,
// then leading days of the next month. Every appointment whose date
// falls on a cell's calendar day is attached to that cell.
func BuildMonthGrid(
	year int,
	month time.Month,
	appointments []models.Appointment,
	loc *time.Location,
) []CalendarDay {

	if loc == nil {
		loc = time.UTC
	}

	byDay := make(map[string][]models.Appointment, len(appointments))
	for _, ap := range appointments {
		key := ap.Date.Format("2006-01-02")
		byDay[key] = append(byDay[key], ap)
	}

	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	leading := int(firstOfMonth.Weekday()) // 0 = Sunday

	grid := make([]CalendarDay, 0, gridCells)
	cursor := firstOfMonth.AddDate(0, 0, -leading)

	for i := 0; i < gridCells; i++ {
		grid = append(grid, CalendarDay{
			Date:           cursor,
			IsCurrentMonth: cursor.Month() == month && cursor.Year() == year,
			Appointments:   byDay[cursor.Format("2006-01-02")],
		})
		cursor = cursor.AddDate(0, 0, 1)
	}

	return grid
}
