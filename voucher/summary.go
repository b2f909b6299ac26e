package voucher

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/benefit-engine/generic"
)

// Summary aggregates the results of one run.
type Summary struct {
	Employees int `json:"employees"`

	NoRegion      int `json:"no_region"`
	ZeroBaseDays  int `json:"zero_base_days"`
	ZeroUnitValue int `json:"zero_unit_value"`
	ZeroPayable   int `json:"zero_payable"`
	ZeroTotal     int `json:"zero_total"`

	ProratedAdmissions   int `json:"prorated_admissions"`
	ZeroedTerminations   int `json:"zeroed_terminations"`
	ProratedTerminations int `json:"prorated_terminations"`
	SettlementAdjusted   int `json:"settlement_adjusted"`
	VacationAdjusted     int `json:"vacation_adjusted"`

	Total         decimal.Decimal `json:"total"`
	EmployerTotal decimal.Decimal `json:"employer_total"`
	EmployeeTotal decimal.Decimal `json:"employee_total"`
}

// Summarize counts the adjustments and anomalies of a result set.
func Summarize(results []Result) Summary {
	s := Summary{Employees: len(results), Total: decimal.Zero, EmployerTotal: decimal.Zero, EmployeeTotal: decimal.Zero}
	for _, r := range results {
		if r.Region == RegionNone {
			s.NoRegion++
		}
		if r.BaseDays == 0 {
			s.ZeroBaseDays++
		}
		if r.UnitValue.IsZero() {
			s.ZeroUnitValue++
		}
		if r.PayableDays == 0 {
			s.ZeroPayable++
		}
		if r.Total.IsZero() {
			s.ZeroTotal++
		}
		if r.Prorated() {
			s.ProratedAdmissions++
		}
		switch r.TerminationOutcome {
		case TerminationEarly:
			s.ZeroedTerminations++
		case TerminationLate:
			if r.TerminationFactor.LessThan(generic.One) {
				s.ProratedTerminations++
			}
		}
		if r.SettlementAdjustment {
			s.SettlementAdjusted++
		}
		if r.VacationDays > 0 {
			s.VacationAdjusted++
		}
		s.Total = s.Total.Add(r.Total)
		s.EmployerTotal = s.EmployerTotal.Add(r.EmployerShare)
		s.EmployeeTotal = s.EmployeeTotal.Add(r.EmployeeShare)
	}
	return s
}

// Warnings lists the anomalies worth showing to the operator.
func (s Summary) Warnings() []string {
	var out []string
	if s.NoRegion > 0 {
		out = append(out, fmt.Sprintf("%d colaborador(es) sem estado identificado a partir do sindicato", s.NoRegion))
	}
	if s.ZeroBaseDays > 0 {
		out = append(out, fmt.Sprintf("%d colaborador(es) com dias úteis base igual a zero", s.ZeroBaseDays))
	}
	if s.ZeroUnitValue > 0 {
		out = append(out, fmt.Sprintf("%d colaborador(es) com valor diário igual a zero", s.ZeroUnitValue))
	}
	return out
}

// Adjustments is a one-line Portuguese account of the adjustments applied.
func (s Summary) Adjustments() string {
	return fmt.Sprintf("Admissões proporcionais: %d, desligamentos zerados: %d, desligamentos proporcionais: %d, "+
		"ajustes em rescisão: %d, descontos de férias: %d",
		s.ProratedAdmissions, s.ZeroedTerminations, s.ProratedTerminations, s.SettlementAdjusted, s.VacationAdjusted)
}
