package generic_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/benefit-engine/generic"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func date(year int, month time.Month, day int) generic.TimePoint {
	return generic.NewTimePoint(year, month, day)
}

// =============================================================================
// BUSINESS DAY TESTS
// =============================================================================

func TestBusinessDays_May2025(t *testing.T) {
	may := generic.MonthPeriod(2025, time.May)

	assert.Equal(t, 22, may.BusinessDays())
	assert.Equal(t, 12, may.BusinessDaysFrom(date(2025, time.May, 15)))
	assert.Equal(t, 11, may.BusinessDaysUntil(date(2025, time.May, 15)))
}

func TestBusinessDays_MatchesDayByDayCount(t *testing.T) {
	// GIVEN: Every month of two years
	// THEN: The closed-form count equals iterating the days
	for year := 2024; year <= 2025; year++ {
		for m := time.January; m <= time.December; m++ {
			p := generic.MonthPeriod(year, m)
			want := 0
			for d := p.Start; d.BeforeOrEqual(p.End); d = d.AddDays(1) {
				if d.IsWorkday() {
					want++
				}
			}
			assert.Equal(t, want, p.BusinessDays(), "month %s", p)
		}
	}
}

func TestBusinessDays_Edges(t *testing.T) {
	sat := date(2025, time.May, 3)
	sun := date(2025, time.May, 4)
	mon := date(2025, time.May, 5)

	assert.Equal(t, 0, generic.BusinessDays(sat, sun), "weekend only")
	assert.Equal(t, 1, generic.BusinessDays(mon, mon), "single weekday")
	assert.Equal(t, 0, generic.BusinessDays(mon, sat), "reversed range")
}

// =============================================================================
// PERIOD TESTS
// =============================================================================

func TestPeriod_PreviousMonth(t *testing.T) {
	tests := []struct {
		name      string
		benefit   generic.Period
		wantStart generic.TimePoint
		wantEnd   generic.TimePoint
	}{
		{"june to may", generic.MonthPeriod(2025, time.June), date(2025, time.May, 1), date(2025, time.May, 31)},
		{"january to december", generic.MonthPeriod(2025, time.January), date(2024, time.December, 1), date(2024, time.December, 31)},
		{"march to leap february", generic.MonthPeriod(2024, time.March), date(2024, time.February, 1), date(2024, time.February, 29)},
		{"may to april", generic.MonthPeriod(2025, time.May), date(2025, time.April, 1), date(2025, time.April, 30)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prev := tt.benefit.PreviousMonth()
			assert.True(t, prev.Start.Equal(tt.wantStart), "start %s", prev.Start)
			assert.True(t, prev.End.Equal(tt.wantEnd), "end %s", prev.End)
		})
	}
}

func TestPeriod_Contains(t *testing.T) {
	may := generic.MonthPeriod(2025, time.May)

	assert.True(t, may.Contains(date(2025, time.May, 1)))
	assert.True(t, may.Contains(date(2025, time.May, 31)))
	assert.False(t, may.Contains(date(2025, time.April, 30)))
	assert.False(t, may.Contains(date(2025, time.June, 1)))
}
