package generic

import "time"

// =============================================================================
// PERIOD - The unit every benefit calculation is evaluated over
// =============================================================================

// Period is a closed interval of calendar days.
//
// Examples:
//   - Benefit month June 2025: Jun 1 - Jun 30
//   - Events month May 2025:   May 1 - May 31
type Period struct {
	Start TimePoint
	End   TimePoint
}

// MonthPeriod returns the period spanning the whole calendar month.
func MonthPeriod(year int, month time.Month) Period {
	return Period{Start: StartOfMonth(year, month), End: EndOfMonth(year, month)}
}

// MonthOf returns the calendar month containing t.
func MonthOf(t TimePoint) Period {
	return MonthPeriod(t.Year(), t.Month())
}

// Contains returns true if the time point is within the period [Start, End]
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// BusinessDays counts the Monday-Friday days of the whole period.
func (p Period) BusinessDays() int {
	return BusinessDays(p.Start, p.End)
}

// BusinessDaysFrom counts business days from t (inclusive) to the end of the period.
func (p Period) BusinessDaysFrom(t TimePoint) int {
	return BusinessDays(t, p.End)
}

// BusinessDaysUntil counts business days from the start of the period to t (inclusive).
func (p Period) BusinessDaysUntil(t TimePoint) int {
	return BusinessDays(p.Start, t)
}

// ShiftMonths moves a month period by n calendar months, keeping month
// boundaries (a 30-day month shifted into a 31-day month ends on the 31st).
func (p Period) ShiftMonths(n int) Period {
	first := p.Start.Time.AddDate(0, n, 0)
	return MonthPeriod(first.Year(), first.Month())
}

// PreviousMonth returns the calendar month before the one starting the period.
func (p Period) PreviousMonth() Period {
	return MonthOf(p.Start).ShiftMonths(-1)
}

// String returns a string representation of the period.
func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}
