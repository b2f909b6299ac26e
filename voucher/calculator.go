/*
calculator.go - Per-employee benefit computation

PURPOSE:
  Computes payable days and money for every eligible employee. Each row is
  independent; the only shared data are the References built once per run.

PIPELINE (per employee):
  1. Region          = classifier(union)
  2. Base days       = working days of the region (0 if unknown)
  3. Unit value      = daily value of the region (0 if unknown)
  4. Vacation days   = summed vacation days
  5. Admission date  = lookup
  6. Admission factor:
       1 if no admission inside the events month, else
       bdays(admission..end of month) / bdays(month)
  7. Termination factor: see policy.go
  8. Payable days    = round(base * adm * term) - vacation, floored at 0
  9. Total           = round(payable * unit, 2)
     Employer share  = round(0.80 * total, 2)
     Employee share  = round(0.20 * total, 2)
  10. Observation    = see observation.go

ROUNDING:
  Payable days round half to even. Money rounds to cents. The two shares
  are rounded independently and may be one cent away from the total; that
  gap is kept as is.

EXAMPLE:
  Events month May 2025 (22 business days), admitted on May 15:
    factor = 12/22, payable = round(22 * 12/22) = 12

SEE ALSO:
  - references.go: Lookups
  - policy.go: Termination assessment
  - summary.go: Run-level counters and warnings
*/
package voucher

import (
	"log/slog"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/warp/benefit-engine/generic"
)

const (
	employerPercent = 80
	employeePercent = 20
)

// Calculator computes results. The zero value is not usable; use NewCalculator.
type Calculator struct {
	Classifier *Classifier

	// Workers > 1 spreads employees over that many goroutines.
	Workers int

	Logger *slog.Logger
}

func NewCalculator(c *Classifier) *Calculator {
	return &Calculator{Classifier: c, Workers: 1, Logger: slog.Default()}
}

// Calculate returns one result per employee, in roster order. An empty
// roster returns an empty slice.
func (c *Calculator) Calculate(roster []Employee, p *Prepared, rc RunContext) []Result {
	if len(roster) == 0 {
		c.Logger.Warn("calculator: eligible roster is empty, nothing to compute")
		return []Result{}
	}
	refs := BuildReferences(p, c.Classifier)
	eventDays := rc.Events.BusinessDays()
	c.Logger.Info("calculator: events month",
		"start", rc.Events.Start.String(), "end", rc.Events.End.String(), "business_days", eventDays)

	results := make([]Result, len(roster))
	if c.Workers <= 1 {
		for i, e := range roster {
			results[i] = c.calculateOne(e, refs, rc)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(c.Workers)
		for i, e := range roster {
			i, e := i, e
			g.Go(func() error {
				results[i] = c.calculateOne(e, refs, rc)
				return nil
			})
		}
		_ = g.Wait()
	}

	s := Summarize(results)
	c.Logger.Info("calculator: done",
		"employees", s.Employees,
		"no_region", s.NoRegion,
		"zero_base_days", s.ZeroBaseDays,
		"zero_unit_value", s.ZeroUnitValue,
		"zero_payable", s.ZeroPayable,
		"total", s.Total.StringFixed(generic.Cents))
	return results
}

func (c *Calculator) calculateOne(e Employee, refs *References, rc RunContext) Result {
	region := c.Classifier.Classify(e.Union)
	r := Result{
		Employee:      e,
		Region:        region,
		BaseDays:      refs.WorkingDays[region],
		UnitValue:     refs.UnitValues[region],
		VacationDays:  refs.VacationDays(e.ID),
		AdmissionDate: refs.Admission(e.ID),
		Termination:   refs.Termination(e.ID),
	}

	r.AdmissionFactor = AdmissionFactor(r.AdmissionDate, rc.Events)

	term := AssessTermination(r.Termination, rc)
	r.TerminationOutcome = term.Outcome
	r.TerminationFactor = term.Factor
	r.SettlementAdjustment = term.Settlement

	r.PayableDays = PayableDays(r.BaseDays, r.AdmissionFactor, r.TerminationFactor, r.VacationDays)
	r.Total = generic.RoundMoney(decimal.NewFromInt(int64(r.PayableDays)).Mul(r.UnitValue))
	r.EmployerShare = generic.Share(r.Total, employerPercent)
	r.EmployeeShare = generic.Share(r.Total, employeePercent)

	r.Observation = Observation(r, term)
	return r
}

// AdmissionFactor pro-rates an admission inside the events month.
func AdmissionFactor(admission *generic.TimePoint, events generic.Period) decimal.Decimal {
	if admission == nil || !events.Contains(*admission) {
		return generic.One
	}
	return generic.Ratio(events.BusinessDaysFrom(*admission), events.BusinessDays())
}

// PayableDays applies both factors, rounds half to even, deducts vacation
// and floors at zero.
func PayableDays(base int, admission, termination decimal.Decimal, vacation int) int {
	days := decimal.NewFromInt(int64(base)).Mul(admission).Mul(termination).RoundBank(0).IntPart()
	days -= int64(vacation)
	if days < 0 {
		return 0
	}
	return int(days)
}
