package policy

import "time"

// inQuietHours reports whether t falls inside the configured window,
// evaluated as hour-of-day in loc. A window with start > end wraps past
// midnight; start == end means the window is disabled.
func inQuietHours(t time.Time, qh QuietHours, loc *time.Location) bool {
	if qh.StartHour == qh.EndHour {
		return false
	}
	hour := t.In(loc).Hour()
	if qh.StartHour > qh.EndHour {
		return hour >= qh.StartHour || hour < qh.EndHour
	}
	return hour >= qh.StartHour && hour < qh.EndHour
}

// nextQuietHoursEnd returns the next occurrence of the window's end hour
// strictly after t, in loc.
func nextQuietHoursEnd(t time.Time, qh QuietHours, loc *time.Location) time.Time {
	local := t.In(loc)
	end := time.Date(local.Year(), local.Month(), local.Day(), qh.EndHour, 0, 0, 0, loc)
	if !end.After(local) {
		end = end.AddDate(0, 0, 1)
	}
	return end
}

// nextDayStart returns midnight of the calendar day after t, in loc.
func nextDayStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
}
