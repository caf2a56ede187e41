package appointment

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/carelink/clinic-scheduler/internal/httperr"
)

// ===============================
// TimeSlot Catalog
// ===============================

// Booking grid: 30-minute slots from 09:00 through 17:30, with the
// 12:00-13:00 lunch window excluded (last morning slot 11:30, first
// afternoon slot 13:00). Same grid for every facility and date.
const (
	gridOpen   = "09:00"
	gridClose  = "17:30"
	lunchStart = "12:00"
	lunchEnd   = "13:00"

	slotStepMinutes = 30
)

// Manual entry is deliberately looser than the canned grid: any
// well-formed time whose hour falls in [8,18] passes. Keep the two
// checks separate; they serve different callers.
const (
	entryOpenHour  = 8
	entryCloseHour = 18
)

var timePattern = regexp.MustCompile(`^([0-1]?[0-9]|2[0-3]):[0-5][0-9]$`)

// ListSlots returns the ordered bookable "HH:MM" values for one day.
// The result is freshly allocated; callers may mutate it.
func ListSlots() []string {
	step := time.Duration(slotStepMinutes) * time.Minute

	first, _ := time.Parse("15:04", gridOpen)
	last, _ := time.Parse("15:04", gridClose)
	lStart, _ := time.Parse("15:04", lunchStart)
	lEnd, _ := time.Parse("15:04", lunchEnd)

	var slots []string
	for cur := first; !cur.After(last); cur = cur.Add(step) {
		if !cur.Before(lStart) && cur.Before(lEnd) {
			continue
		}
		slots = append(slots, cur.Format("15:04"))
	}
	return slots
}

// IsWithinBusinessHours reports whether hhmm is a well-formed 24h time
// whose hour component lies inside the manual-entry window.
func IsWithinBusinessHours(hhmm string) bool {
	if !timePattern.MatchString(hhmm) {
		return false
	}
	hour, _ := strconv.Atoi(strings.SplitN(hhmm, ":", 2)[0])
	return hour >= entryOpenHour && hour <= entryCloseHour
}

// NormalizeTime zero-pads a single-digit hour so "9:15" and "09:15"
// store and compare as the same value. Input must already be
// well-formed; validate first.
func NormalizeTime(hhmm string) string {
	if strings.IndexByte(hhmm, ':') == 1 {
		return "0" + hhmm
	}
	return hhmm
}

// ValidateTime distinguishes malformed input from out-of-hours input so
// the caller can name the exact problem.
func ValidateTime(hhmm string) error {
	if !timePattern.MatchString(hhmm) {
		return httperr.ErrBusiness("invalid_time_format")
	}
	if !IsWithinBusinessHours(hhmm) {
		return httperr.ErrBusiness("outside_business_hours")
	}
	return nil
}
