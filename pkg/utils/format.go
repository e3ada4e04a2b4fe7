package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Constants
const (
	DATE_LAYOUT  = "2006-01-02"
	CLOCK_LAYOUT = "15:04"
)

// FormatRole renders a visit role for display.
func FormatRole(role string) string {
	switch role {
	case "":
		return "—"
	case "resident":
		return "Resident"
	case "guest":
		return "Guest"
	case "vendor":
		return "Vendor"
	case "staff":
		return "Staff"
	case "futureResident":
		return "Future resident"
	default:
		return role
	}
}

// FormatTimeLabel turns "HH:MM" into "h:MM AM/PM". Input that is not a
// clock time is returned unchanged.
func FormatTimeLabel(time24 string) string {
	if time24 == "" {
		return ""
	}
	hStr, mStr, found := strings.Cut(time24, ":")
	h, err := strconv.Atoi(hStr)
	if err != nil || h < 0 || h > 23 {
		return time24
	}
	if !found || mStr == "" {
		mStr = "00"
	}

	ampm := "AM"
	if h >= 12 {
		ampm = "PM"
	}
	switch {
	case h == 0:
		h = 12
	case h > 12:
		h -= 12
	}
	return fmt.Sprintf("%d:%s %s", h, mStr, ampm)
}

// ComputeEndTime adds durationMinutes to an "HH:MM" start and returns the
// end as "HH:MM", wrapping past midnight.
func ComputeEndTime(startTime string, durationMinutes int) string {
	if startTime == "" || durationMinutes < 0 {
		return ""
	}
	hStr, mStr, _ := strings.Cut(startTime, ":")
	h, _ := strconv.Atoi(hStr)
	m, _ := strconv.Atoi(mStr)

	base := time.Date(2000, 1, 1, h, m, 0, 0, time.UTC)
	return base.Add(time.Duration(durationMinutes) * time.Minute).Format(CLOCK_LAYOUT)
}
