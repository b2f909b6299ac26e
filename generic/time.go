package generic

import (
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// TIME POINT - Calendar day abstraction (every event in this system is a day)
// =============================================================================

type TimePoint struct {
	Time time.Time
}

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates t to its calendar day (in t's own location) and moves it to UTC.
func FromTime(t time.Time) TimePoint {
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// dateLayouts are tried in order by ParseTimePoint.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02/01/2006",
	"2/1/2006",
	"2006/01/02",
	"02-01-2006",
	"2006-01",
}

// ParseTimePoint parses the date formats found in HR spreadsheet exports:
// ISO dates, Brazilian day-first dates, "YYYY-MM" competencies and Excel
// serial day numbers.
func ParseTimePoint(s string) (TimePoint, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimePoint{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), true
		}
	}
	if serial, err := strconv.ParseFloat(s, 64); err == nil {
		return FromExcelSerial(serial)
	}
	return TimePoint{}, false
}

// excelEpoch is day zero of the 1900 date system (Lotus leap-year bug included).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// FromExcelSerial converts an Excel serial day number. Values outside
// 1900-01-01..9999-12-31 are rejected so plain integers are not read as dates.
func FromExcelSerial(serial float64) (TimePoint, bool) {
	if serial < 1 || serial > 2958465 {
		return TimePoint{}, false
	}
	return FromTime(excelEpoch.AddDate(0, 0, int(serial))), true
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.normalize().Before(other.normalize()) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.normalize().Equal(other.normalize()) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.normalize().After(other.normalize()) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

func (tp TimePoint) normalize() time.Time {
	return time.Date(tp.Time.Year(), tp.Time.Month(), tp.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int             { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month     { return tp.Time.Month() }
func (tp TimePoint) Day() int              { return tp.Time.Day() }
func (tp TimePoint) Weekday() time.Weekday { return tp.Time.Weekday() }
func (tp TimePoint) IsWeekend() bool       { return tp.Weekday() == time.Saturday || tp.Weekday() == time.Sunday }
func (tp TimePoint) IsWorkday() bool       { return !tp.IsWeekend() }
func (tp TimePoint) IsZero() bool          { return tp.Time.IsZero() }

func (tp TimePoint) String() string {
	return tp.Time.Format("2006-01-02")
}

// =============================================================================
// TIME UTILITIES
// =============================================================================

func DaysBetween(from, to TimePoint) int { return int(to.normalize().Sub(from.normalize()).Hours() / 24) }
func StartOfMonth(year int, month time.Month) TimePoint { return NewTimePoint(year, month, 1) }
func EndOfMonth(year int, month time.Month) TimePoint {
	return TimePoint{Time: time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
}

// BusinessDays counts Monday-Friday days in [from, to], both ends included.
// No holiday calendar is applied. Returns 0 when to is before from.
func BusinessDays(from, to TimePoint) int {
	if to.Before(from) {
		return 0
	}
	total := DaysBetween(from, to) + 1
	weeks := total / 7
	count := weeks * 5
	for d := from.AddDays(weeks * 7); d.BeforeOrEqual(to); d = d.AddDays(1) {
		if d.IsWorkday() {
			count++
		}
	}
	return count
}
