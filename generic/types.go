/*
Package generic provides the domain-agnostic building blocks of the benefit engine.

PURPOSE:
  This package contains the types and algorithms that do not know anything
  about meal vouchers: calendar days, month periods, business-day counting,
  loosely typed tables as they come out of spreadsheets, and money rounding.
  The voucher package builds the benefit rules on top of them.

KEY CONCEPTS:
  - TimePoint: A calendar day (time.go)
  - Period: A closed interval of days, usually a calendar month (period.go)
  - Table: Named columns over loosely typed rows, with cell coercion (table.go)
  - EntityID: Employee registration number (this file)
  - Money helpers: cent rounding and pro-ration ratios (money.go)

DESIGN PRINCIPLES:
  1. Immutability: Table transformations return new tables
  2. Precision: Uses decimal.Decimal for factors and money
  3. Tolerance: Coercion mirrors spreadsheet reality; bad cells become
     "no value" instead of errors, and callers pick the default

USAGE:
  may := generic.MonthPeriod(2025, time.May)
  may.BusinessDays()                                 // 22
  may.BusinessDaysFrom(generic.NewTimePoint(2025, time.May, 15)) // 12

SEE ALSO:
  - voucher/calculator.go: Pro-ration built on Period
  - voucher/validator.go: Table preparation built on cell coercion
*/
package generic

import "strconv"

// =============================================================================
// IDENTIFIERS
// =============================================================================

// EntityID is an employee registration number ("matrícula").
type EntityID int64

func (id EntityID) String() string { return strconv.FormatInt(int64(id), 10) }

// ToEntityID coerces a cell to an employee ID; nil when unparseable.
func ToEntityID(v any) *EntityID {
	n, ok := ToInt(v)
	if !ok {
		return nil
	}
	id := EntityID(n)
	return &id
}
