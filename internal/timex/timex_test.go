package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/keepintouch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func TestNextOccurrence_DaysAndWeeks(t *testing.T) {
	start := date(2024, time.January, 10)

	assert.Equal(t, date(2024, time.January, 13), NextOccurrence(start, models.UnitDays, 3))
	assert.Equal(t, date(2024, time.January, 24), NextOccurrence(start, models.UnitWeeks, 2))
}

func TestNextOccurrence_MonthClampsOverflow(t *testing.T) {
	jan31 := date(2024, time.January, 31)

	// 2024 is a leap year
	assert.Equal(t, date(2024, time.February, 29), NextOccurrence(jan31, models.UnitMonths, 1))
	assert.Equal(t, date(2023, time.February, 28), NextOccurrence(date(2023, time.January, 31), models.UnitMonths, 1))

	// months without overflow keep the day
	assert.Equal(t, date(2024, time.April, 15), NextOccurrence(date(2024, time.January, 15), models.UnitMonths, 3))

	// crossing a year boundary
	assert.Equal(t, date(2025, time.January, 30), NextOccurrence(date(2024, time.November, 30), models.UnitMonths, 2))
}

func TestNextOccurrence_YearClampsLeapDay(t *testing.T) {
	feb29 := date(2024, time.February, 29)
	assert.Equal(t, date(2025, time.February, 28), NextOccurrence(feb29, models.UnitYears, 1))
	assert.Equal(t, date(2028, time.February, 29), NextOccurrence(feb29, models.UnitYears, 4))
}

func TestNextOccurrence_UnknownUnitIsIdentity(t *testing.T) {
	start := date(2024, time.June, 1)
	assert.Equal(t, start, NextOccurrence(start, models.RecurringUnit("FORTNIGHTS"), 2))
}

func TestNextOccurrence_PreservesClock(t *testing.T) {
	start := time.Date(2024, time.January, 31, 23, 59, 58, 7, time.UTC)
	got := NextOccurrence(start, models.UnitMonths, 1)
	assert.Equal(t, time.Date(2024, time.February, 29, 23, 59, 58, 7, time.UTC), got)
}

func TestFormatTimeSince(t *testing.T) {
	now := date(2024, time.June, 15)

	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{"same day", now, "today"},
		{"three days", now.AddDate(0, 0, -3), "3d"},
		{"exact weeks", now.AddDate(0, 0, -14), "2w"},
		{"weeks and days", now.AddDate(0, 0, -17), "2w 3d"},
		{"months", now.AddDate(0, -3, 0), "3m"},
		{"months and weeks", now.AddDate(0, 0, -100), "3m 1w"},
		{"years and months", now.AddDate(-1, -3, 0), "1y 3m"},
		{"exact years", now.AddDate(-2, 0, 0), "2y"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatTimeSince(tc.t, now))
		})
	}
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	var d Duration

	require.NoError(t, json.Unmarshal([]byte(`"15m"`), &d))
	assert.Equal(t, 15*time.Minute, d.Duration)

	require.NoError(t, json.Unmarshal([]byte(`1000000000`), &d))
	assert.Equal(t, time.Second, d.Duration)

	assert.Error(t, json.Unmarshal([]byte(`"bogus"`), &d))
	assert.Error(t, json.Unmarshal([]byte(`true`), &d))
}
