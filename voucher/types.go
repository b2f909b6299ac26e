// Package voucher implements the monthly meal/food voucher (VR/VA) benefit rules.
// It uses the generic building blocks with the benefit-specific validation,
// eligibility, region inference and pro-ration rules.
package voucher

import (
	"github.com/shopspring/decimal"
	"github.com/warp/benefit-engine/generic"
)

// =============================================================================
// INPUT TABLES
// =============================================================================

// Names of the input tables a run consumes. A missing input is an empty table.
const (
	TableActive       = "ATIVOS"
	TableAdmissions   = "ADMISSAO"
	TableTerminations = "DESLIGADOS"
	TableVacations    = "FERIAS"
	TableLeaves       = "AFASTAMENTOS"
	TableApprentices  = "APRENDIZ"
	TableInterns      = "ESTAGIO"
	TableOverseas     = "EXTERIOR"
	TableWorkingDays  = "DIAS_UTEIS"
	TableRegionValues = "SIND_VALOR"
)

// InputTables lists every table in collection order.
var InputTables = []string{
	TableActive, TableAdmissions, TableTerminations, TableVacations, TableLeaves,
	TableApprentices, TableInterns, TableOverseas, TableWorkingDays, TableRegionValues,
}

// =============================================================================
// RECORDS
// =============================================================================

// Employee is one row of the active roster. ID is nil when the source cell
// could not be read as a number; such rows are kept but never match a lookup.
type Employee struct {
	ID       *generic.EntityID
	JobTitle string
	Union    string
}

// Termination is a prepared row of the terminations table.
type Termination struct {
	ID           *generic.EntityID
	Date         *generic.TimePoint
	Acknowledged bool // communication field equals "OK"
}

// UnionWorkingDays is a prepared row of the working-days table.
type UnionWorkingDays struct {
	Union string
	Days  int
}

// RegionValue is a prepared row of the daily-value table.
type RegionValue struct {
	Region string
	Value  decimal.Decimal
}

// Prepared holds the validated inputs of one run.
type Prepared struct {
	// Tables are the schema-mapped inputs; the terminations table is the
	// prepared version (trimmed headers, typed ID/date, OK column).
	Tables generic.Tables

	WorkingDays  []UnionWorkingDays
	RegionValues []RegionValue
	Terminations []Termination
}

// =============================================================================
// RESULT
// =============================================================================

// Result is the computed benefit of one eligible employee.
type Result struct {
	Employee Employee
	Region   Region

	BaseDays     int
	UnitValue    decimal.Decimal
	VacationDays int

	AdmissionDate   *generic.TimePoint
	AdmissionFactor decimal.Decimal

	Termination        *Termination
	TerminationOutcome TerminationOutcome
	TerminationFactor  decimal.Decimal

	// SettlementAdjustment marks a post-15 termination paid in full now under
	// the integral rule; the difference is settled at termination payout.
	SettlementAdjustment bool

	PayableDays   int
	Total         decimal.Decimal
	EmployerShare decimal.Decimal // 80%
	EmployeeShare decimal.Decimal // 20%

	Observation string
}

// Prorated reports an admission inside the events month paid below the
// full factor.
func (r Result) Prorated() bool {
	return r.AdmissionDate != nil && r.AdmissionFactor.LessThan(generic.One)
}
