package timex

import (
	"fmt"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/models"
)

// NextOccurrence returns t advanced by value units of the given calendar
// unit. Month and year addition clamps day-of-month overflow to the last
// valid day of the target month (Jan 31 + 1 month = Feb 28, or Feb 29 in a
// leap year), unlike time.AddDate which would normalize into March.
// Unknown units return t unchanged; the function is total.
func NextOccurrence(t time.Time, unit models.RecurringUnit, value int) time.Time {
	switch unit {
	case models.UnitDays:
		return t.AddDate(0, 0, value)
	case models.UnitWeeks:
		return t.AddDate(0, 0, 7*value)
	case models.UnitMonths:
		return addMonthsClamped(t, value)
	case models.UnitYears:
		return addMonthsClamped(t, 12*value)
	}
	return t
}

func addMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()

	m := int(month) - 1 + months
	year += m / 12
	m %= 12
	if m < 0 {
		m += 12
		year--
	}
	target := time.Month(m + 1)

	if last := daysInMonth(year, target); day > last {
		day = last
	}

	hour, min, sec := t.Clock()
	return time.Date(year, target, day, hour, min, sec, t.Nanosecond(), t.Location())
}

// daysInMonth returns the number of days in the given month; day 0 of the
// following month normalizes to the last day of this one.
func daysInMonth(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FormatTimeSince renders the gap between t and now with coarsening
// precision: "today", "3d", "2w 3d", "3m 2w", "1y 3m". Never reports hours.
func FormatTimeSince(t, now time.Time) string {
	days := int(now.Sub(t).Hours() / 24)
	if days <= 0 {
		return "today"
	}
	if days < 7 {
		return fmt.Sprintf("%dd", days)
	}
	if days < 30 {
		weeks := days / 7
		if rem := days - weeks*7; rem > 0 {
			return fmt.Sprintf("%dw %dd", weeks, rem)
		}
		return fmt.Sprintf("%dw", weeks)
	}

	months := monthsBetween(t, now)
	if months < 12 {
		if months < 1 {
			months = 1
		}
		remWeeks := (days - months*30) / 7
		if remWeeks > 0 {
			return fmt.Sprintf("%dm %dw", months, remWeeks)
		}
		return fmt.Sprintf("%dm", months)
	}

	years := months / 12
	if remMonths := months - years*12; remMonths > 0 {
		return fmt.Sprintf("%dy %dm", years, remMonths)
	}
	return fmt.Sprintf("%dy", years)
}

// monthsBetween returns the number of whole calendar months from a to b.
func monthsBetween(a, b time.Time) int {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	months := (y2-y1)*12 + int(m2) - int(m1)
	if d2 < d1 {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}
