package ledger

import "time"

// Period tokens recognized by the resolver. These are the names the
// reporting screens present; unknown tokens fall back to the current week.
const (
	PeriodCurrentWeek  = "Current Week"
	PeriodLastWeek     = "Last Week"
	PeriodLastTwoWeeks = "Last Two Weeks"
	PeriodLastMonth    = "Last Month"
	PeriodLast3Months  = "Last 3 Months"
	PeriodLast6Months  = "Last 6 Months"
	PeriodLastYear     = "Last Year"
)

// DateRange is a closed date range: callers filter date >= Start && date <= End.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether t falls inside the range
func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// ResolvePeriod maps a named period token to a concrete date range relative
// to now. Weeks run Monday through Sunday.
func ResolvePeriod(token string, now time.Time) DateRange {
	switch token {
	case PeriodLastWeek:
		monday := startOfWeek(now).AddDate(0, 0, -7)
		return DateRange{Start: monday, End: endOfDay(monday.AddDate(0, 0, 6))}
	case PeriodLastTwoWeeks:
		return DateRange{Start: startOfDay(now.AddDate(0, 0, -14)), End: endOfDay(now)}
	case PeriodLastMonth:
		return DateRange{Start: startOfDay(now.AddDate(0, -1, 0)), End: endOfDay(now)}
	case PeriodLast3Months:
		return DateRange{Start: startOfDay(now.AddDate(0, -3, 0)), End: endOfDay(now)}
	case PeriodLast6Months:
		return DateRange{Start: startOfDay(now.AddDate(0, -6, 0)), End: endOfDay(now)}
	case PeriodLastYear:
		return DateRange{Start: startOfDay(now.AddDate(-1, 0, 0)), End: endOfDay(now)}
	case PeriodCurrentWeek:
		fallthrough
	default:
		monday := startOfWeek(now)
		return DateRange{Start: monday, End: endOfDay(monday.AddDate(0, 0, 6))}
	}
}

// startOfWeek returns midnight of the Monday of t's week
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 { // Sunday belongs to the week that started six days earlier
		weekday = 7
	}
	return startOfDay(t.AddDate(0, 0, 1-weekday))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}
