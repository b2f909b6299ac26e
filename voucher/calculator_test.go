package voucher_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/benefit-engine/generic"
	"github.com/warp/benefit-engine/schema"
	"github.com/warp/benefit-engine/voucher"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const (
	unionSP = "SINDPD SP - SIND.TRAB.EM PROC DADOS E EMPR.EMPRESAS PROC DADOS ESTADO DE SP."
	unionRJ = "SINDPD RJ - SINDICATO PROFISSIONAIS DE PROC DADOS DO RIO DE JANEIRO"
)

// June 2025 competency: events month is May 2025 (22 business days).
func juneContext(t *testing.T, rule voucher.Pos15Rule) voucher.RunContext {
	t.Helper()
	rc, err := voucher.NewRunContext(generic.NewTimePoint(2025, time.June, 1), rule)
	require.NoError(t, err)
	return rc
}

func newTestCalculator() *voucher.Calculator {
	calc := voucher.NewCalculator(voucher.DefaultClassifier())
	calc.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return calc
}

func id(n int64) *generic.EntityID {
	e := generic.EntityID(n)
	return &e
}

func day(y int, m time.Month, d int) *generic.TimePoint {
	tp := generic.NewTimePoint(y, m, d)
	return &tp
}

// basePrepared has SP with 22 days at 37.50 and RJ with 21 days at 35.00.
func basePrepared() *voucher.Prepared {
	return &voucher.Prepared{
		Tables: generic.Tables{
			voucher.TableAdmissions: generic.NewTable(voucher.TableAdmissions, []string{schema.ColID, schema.ColAdmission}),
			voucher.TableVacations:  generic.NewTable(voucher.TableVacations, []string{schema.ColID, schema.ColVacationDays}),
		},
		WorkingDays: []voucher.UnionWorkingDays{
			{Union: unionSP, Days: 22},
			{Union: unionRJ, Days: 21},
		},
		RegionValues: []voucher.RegionValue{
			{Region: "São Paulo", Value: decimal.RequireFromString("37.50")},
			{Region: "Rio de Janeiro", Value: decimal.RequireFromString("35.00")},
		},
	}
}

func employee(n int64, union string) voucher.Employee {
	return voucher.Employee{ID: id(n), JobTitle: "ANALISTA", Union: union}
}

func calculateOne(t *testing.T, p *voucher.Prepared, rc voucher.RunContext, e voucher.Employee) voucher.Result {
	t.Helper()
	results := newTestCalculator().Calculate([]voucher.Employee{e}, p, rc)
	require.Len(t, results, 1)
	return results[0]
}

func assertMoney(t *testing.T, expected string, actual decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(expected).Equal(actual),
		append([]any{"expected %s, got %s", expected, actual.String()}, msgAndArgs...)...)
}

// =============================================================================
// BASELINE
// =============================================================================

func TestCalculator_NoEvents_PaysBaseDays(t *testing.T) {
	// GIVEN: An SP employee with no admission, vacation or termination
	// WHEN: Calculating June 2025
	// THEN: Payable days equal the region's working days and money follows

	rc := juneContext(t, voucher.Pos15ProRata)
	r := calculateOne(t, basePrepared(), rc, employee(1, unionSP))

	assert.Equal(t, voucher.RegionSP, r.Region)
	assert.Equal(t, 22, r.BaseDays)
	assert.Equal(t, 22, r.PayableDays)
	assertMoney(t, "825.00", r.Total)
	assertMoney(t, "660.00", r.EmployerShare)
	assertMoney(t, "165.00", r.EmployeeShare)
	assert.True(t, r.AdmissionFactor.Equal(generic.One))
	assert.True(t, r.TerminationFactor.Equal(generic.One))
	assert.Empty(t, r.Observation)
}

func TestCalculator_UnknownUnion_ZeroEverything(t *testing.T) {
	// GIVEN: An employee whose union names no known state
	// WHEN: Calculating
	// THEN: Region none, zero days and zero value, no error

	r := calculateOne(t, basePrepared(), juneContext(t, voucher.Pos15ProRata),
		employee(1, "SINDICATO DOS COMERCIARIOS"))

	assert.Equal(t, voucher.RegionNone, r.Region)
	assert.Equal(t, 0, r.BaseDays)
	assert.True(t, r.UnitValue.IsZero())
	assert.Equal(t, 0, r.PayableDays)
	assert.True(t, r.Total.IsZero())
}

func TestCalculator_EmptyRoster_EmptyResult(t *testing.T) {
	results := newTestCalculator().Calculate(nil, basePrepared(), juneContext(t, voucher.Pos15ProRata))

	assert.NotNil(t, results)
	assert.Empty(t, results)
}

// =============================================================================
// ADMISSION & VACATION
// =============================================================================

func TestCalculator_AdmissionMidMonth_Prorated(t *testing.T) {
	// GIVEN: Admission on 2025-05-15, May 2025 has 22 business days
	// WHEN: Calculating June 2025
	// THEN: Factor is 12/22 and payable days are 12

	p := basePrepared()
	p.Tables[voucher.TableAdmissions].Append(generic.Row{int64(1), "2025-05-15"})

	r := calculateOne(t, p, juneContext(t, voucher.Pos15ProRata), employee(1, unionSP))

	assert.True(t, generic.Ratio(12, 22).Equal(r.AdmissionFactor), "factor %s", r.AdmissionFactor)
	assert.Equal(t, 12, r.PayableDays)
	assertMoney(t, "450.00", r.Total)
	assert.Equal(t, "Admitido em 2025-05-15 (proporcional)", r.Observation)
}

func TestCalculator_AdmissionOutsideEventsMonth_NotProrated(t *testing.T) {
	p := basePrepared()
	p.Tables[voucher.TableAdmissions].Append(generic.Row{int64(1), "2025-04-15"})

	r := calculateOne(t, p, juneContext(t, voucher.Pos15ProRata), employee(1, unionSP))

	assert.True(t, r.AdmissionFactor.Equal(generic.One))
	assert.Equal(t, 22, r.PayableDays)
	assert.Empty(t, r.Observation)
}

func TestCalculator_AdmissionOnFirstDay_FullFactor(t *testing.T) {
	// GIVEN: Admission on the first day of the events month
	// THEN: Every business day counts, no observation

	p := basePrepared()
	p.Tables[voucher.TableAdmissions].Append(generic.Row{int64(1), "2025-05-01"})

	r := calculateOne(t, p, juneContext(t, voucher.Pos15ProRata), employee(1, unionSP))

	assert.True(t, r.AdmissionFactor.Equal(generic.One))
	assert.Equal(t, 22, r.PayableDays)
	assert.Empty(t, r.Observation)
}

func TestCalculator_Vacation_Deducted(t *testing.T) {
	// GIVEN: Two vacation rows of 3 and 2 days for the same employee
	// THEN: 5 days are deducted

	p := basePrepared()
	p.Tables[voucher.TableVacations].Append(generic.Row{int64(1), int64(3)})
	p.Tables[voucher.TableVacations].Append(generic.Row{int64(1), "2"})

	r := calculateOne(t, p, juneContext(t, voucher.Pos15ProRata), employee(1, unionSP))

	assert.Equal(t, 5, r.VacationDays)
	assert.Equal(t, 17, r.PayableDays)
	assert.Equal(t, "Férias 5 dia(s)", r.Observation)
}

func TestCalculator_FractionalVacation_TruncatedAfterSum(t *testing.T) {
	// GIVEN: Two vacation rows of 2.5 days for the same employee
	// WHEN: Calculating
	// THEN: The rows add up to 5 days before the fraction is dropped

	p := basePrepared()
	p.Tables[voucher.TableVacations].Append(generic.Row{int64(1), "2.5"})
	p.Tables[voucher.TableVacations].Append(generic.Row{int64(1), "2,5"})

	r := calculateOne(t, p, juneContext(t, voucher.Pos15ProRata), employee(1, unionSP))

	assert.Equal(t, 5, r.VacationDays)
	assert.Equal(t, 17, r.PayableDays)
}

func TestCalculator_VacationAboveBase_FlooredAtZero(t *testing.T) {
	p := basePrepared()
	p.Tables[voucher.TableVacations].Append(generic.Row{int64(1), int64(30)})

	r := calculateOne(t, p, juneContext(t, voucher.Pos15ProRata), employee(1, unionSP))

	assert.Equal(t, 0, r.PayableDays)
	assert.True(t, r.Total.IsZero())
}

// =============================================================================
// TERMINATION
// =============================================================================

func terminated(n int64, date *generic.TimePoint, ok bool) voucher.Termination {
	return voucher.Termination{ID: id(n), Date: date, Acknowledged: ok}
}

func TestCalculator_TerminatedUpToDay15_Zeroed(t *testing.T) {
	// GIVEN: Termination on May 10 with communication OK
	// WHEN: Calculating under either post-15 rule
	// THEN: Payable days are zero

	for _, rule := range []voucher.Pos15Rule{voucher.Pos15ProRata, voucher.Pos15Integral} {
		t.Run(string(rule), func(t *testing.T) {
			p := basePrepared()
			p.Terminations = []voucher.Termination{terminated(1, day(2025, time.May, 10), true)}

			r := calculateOne(t, p, juneContext(t, rule), employee(1, unionSP))

			assert.Equal(t, 0, r.PayableDays)
			assert.Equal(t, voucher.TerminationEarly, r.TerminationOutcome)
			assert.True(t, r.TerminationFactor.IsZero())
			assert.True(t, r.Total.IsZero())
			assert.Equal(t, "Desligado em 2025-05-10 (OK até dia 15)", r.Observation)
		})
	}
}

func TestCalculator_TerminatedOnDay15_Zeroed(t *testing.T) {
	p := basePrepared()
	p.Terminations = []voucher.Termination{terminated(1, day(2025, time.May, 15), true)}

	r := calculateOne(t, p, juneContext(t, voucher.Pos15ProRata), employee(1, unionSP))

	assert.Equal(t, 0, r.PayableDays)
}

func TestCalculator_TerminatedAfterDay15_ProRata(t *testing.T) {
	// GIVEN: Termination on May 20; May 1..20 holds 14 business days
	// WHEN: Post-15 rule is pro-rata
	// THEN: Factor 14/22 and payable days 14

	p := basePrepared()
	p.Terminations = []voucher.Termination{terminated(1, day(2025, time.May, 20), true)}

	r := calculateOne(t, p, juneContext(t, voucher.Pos15ProRata), employee(1, unionSP))

	assert.Equal(t, voucher.TerminationLate, r.TerminationOutcome)
	assert.True(t, generic.Ratio(14, 22).Equal(r.TerminationFactor), "factor %s", r.TerminationFactor)
	assert.Equal(t, 14, r.PayableDays)
	assert.False(t, r.SettlementAdjustment)
	assert.Equal(t, "Desligado em 2025-05-20 (>15) - pró-rata no período", r.Observation)
}

func TestCalculator_TerminatedAfterDay15_Integral(t *testing.T) {
	// GIVEN: Termination on May 20
	// WHEN: Post-15 rule is integral
	// THEN: Full month is paid now, flagged for settlement

	p := basePrepared()
	p.Terminations = []voucher.Termination{terminated(1, day(2025, time.May, 20), true)}

	r := calculateOne(t, p, juneContext(t, voucher.Pos15Integral), employee(1, unionSP))

	assert.True(t, r.TerminationFactor.Equal(generic.One))
	assert.Equal(t, 22, r.PayableDays)
	assert.True(t, r.SettlementAdjustment)
	assert.Equal(t, "Desligado em 2025-05-20 (>15) - compra integral, ajuste em rescisão", r.Observation)
}

func TestCalculator_TerminationIgnored(t *testing.T) {
	tests := []struct {
		name string
		rec  voucher.Termination
	}{
		{"not acknowledged", terminated(1, day(2025, time.May, 10), false)},
		{"no date", terminated(1, nil, true)},
		{"outside events month", terminated(1, day(2025, time.June, 5), true)},
		{"other employee", terminated(2, day(2025, time.May, 10), true)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := basePrepared()
			p.Terminations = []voucher.Termination{tt.rec}

			r := calculateOne(t, p, juneContext(t, voucher.Pos15ProRata), employee(1, unionSP))

			assert.Equal(t, voucher.TerminationNone, r.TerminationOutcome)
			assert.True(t, r.TerminationFactor.Equal(generic.One))
			assert.Equal(t, 22, r.PayableDays)
			assert.Empty(t, r.Observation)
		})
	}
}

func TestCalculator_DuplicateTermination_FirstWins(t *testing.T) {
	p := basePrepared()
	p.Terminations = []voucher.Termination{
		terminated(1, day(2025, time.May, 10), true),
		terminated(1, day(2025, time.May, 20), true),
	}

	r := calculateOne(t, p, juneContext(t, voucher.Pos15ProRata), employee(1, unionSP))

	assert.Equal(t, 0, r.PayableDays)
}

// =============================================================================
// COMBINED & PROPERTIES
// =============================================================================

func TestCalculator_Observation_FragmentOrder(t *testing.T) {
	// GIVEN: Admission, vacation and a late termination in the same month
	// THEN: Fragments appear in that order, pipe separated

	p := basePrepared()
	p.Tables[voucher.TableAdmissions].Append(generic.Row{int64(1), "2025-05-05"})
	p.Tables[voucher.TableVacations].Append(generic.Row{int64(1), int64(2)})
	p.Terminations = []voucher.Termination{terminated(1, day(2025, time.May, 28), true)}

	r := calculateOne(t, p, juneContext(t, voucher.Pos15ProRata), employee(1, unionSP))

	assert.Equal(t,
		"Admitido em 2025-05-05 (proporcional) | Férias 2 dia(s) | Desligado em 2025-05-28 (>15) - pró-rata no período",
		r.Observation)
}

func TestCalculator_Idempotent(t *testing.T) {
	// GIVEN: The same inputs
	// WHEN: Calculating twice, once sequentially and once with workers
	// THEN: Results are identical and keep roster order

	p := basePrepared()
	p.Tables[voucher.TableAdmissions].Append(generic.Row{int64(3), "2025-05-15"})
	p.Tables[voucher.TableVacations].Append(generic.Row{int64(4), int64(4)})
	p.Terminations = []voucher.Termination{terminated(5, day(2025, time.May, 22), true)}
	rc := juneContext(t, voucher.Pos15ProRata)

	var roster []voucher.Employee
	for i := int64(1); i <= 50; i++ {
		union := unionSP
		if i%3 == 0 {
			union = unionRJ
		}
		roster = append(roster, employee(i, union))
	}

	calc := newTestCalculator()
	first := calc.Calculate(roster, p, rc)
	second := calc.Calculate(roster, p, rc)

	parallel := newTestCalculator()
	parallel.Workers = 4
	third := parallel.Calculate(roster, p, rc)

	require.Len(t, first, len(roster))
	assert.Equal(t, first, second)
	assert.Equal(t, first, third)
	for i, r := range third {
		assert.Equal(t, roster[i].ID, r.Employee.ID)
	}
}

func TestCalculator_SharesWithinOneCent(t *testing.T) {
	// GIVEN: Many unit values producing arbitrary totals
	// THEN: Employer plus employee shares never drift more than a cent from the total

	rc := juneContext(t, voucher.Pos15ProRata)
	for cents := int64(1); cents <= 5000; cents += 37 {
		p := basePrepared()
		p.RegionValues = []voucher.RegionValue{{Region: "SP", Value: decimal.New(cents, -2)}}

		r := calculateOne(t, p, rc, employee(1, unionSP))

		diff := r.EmployerShare.Add(r.EmployeeShare).Sub(r.Total).Abs()
		assert.True(t, diff.LessThanOrEqual(generic.OneCent), "unit %d cents: diff %s", cents, diff)
	}
}

func TestPayableDays_RoundsHalfToEven(t *testing.T) {
	half := decimal.RequireFromString("0.5")

	assert.Equal(t, 2, voucher.PayableDays(5, half, generic.One, 0), "2.5 rounds to 2")
	assert.Equal(t, 4, voucher.PayableDays(7, half, generic.One, 0), "3.5 rounds to 4")
	assert.Equal(t, 0, voucher.PayableDays(7, half, generic.One, 9))
}

// =============================================================================
// SUMMARY
// =============================================================================

func TestSummarize_CountsAndWarnings(t *testing.T) {
	p := basePrepared()
	p.Tables[voucher.TableAdmissions].Append(generic.Row{int64(2), "2025-05-15"})
	p.Terminations = []voucher.Termination{terminated(3, day(2025, time.May, 2), true)}

	roster := []voucher.Employee{
		employee(1, unionSP),
		employee(2, unionSP),
		employee(3, unionRJ),
		employee(4, "SEM SINDICATO"),
	}
	results := newTestCalculator().Calculate(roster, p, juneContext(t, voucher.Pos15ProRata))
	s := voucher.Summarize(results)

	assert.Equal(t, 4, s.Employees)
	assert.Equal(t, 1, s.NoRegion)
	assert.Equal(t, 1, s.ZeroBaseDays)
	assert.Equal(t, 1, s.ZeroUnitValue)
	assert.Equal(t, 2, s.ZeroPayable)
	assert.Equal(t, 1, s.ProratedAdmissions)
	assert.Equal(t, 1, s.ZeroedTerminations)
	assertMoney(t, "1275.00", s.Total) // 825.00 + 450.00
	assert.True(t, s.EmployerTotal.Add(s.EmployeeTotal).Equal(s.Total))
	assert.Len(t, s.Warnings(), 3)
	assert.Contains(t, s.Adjustments(), "Admissões proporcionais: 1")
}

func TestSummarize_UnsetFactorsAreNotAdjustments(t *testing.T) {
	// GIVEN: A result built without admission or termination factors
	// WHEN: Summarizing
	// THEN: No admission or termination adjustment is counted

	s := voucher.Summarize([]voucher.Result{{
		Employee:    employee(1, unionSP),
		Region:      voucher.RegionSP,
		BaseDays:    22,
		PayableDays: 22,
	}})

	assert.Zero(t, s.ProratedAdmissions)
	assert.Zero(t, s.ZeroedTerminations)
	assert.Zero(t, s.ProratedTerminations)
	assert.Contains(t, s.Adjustments(), "Admissões proporcionais: 0, desligamentos zerados: 0")
}

func TestSummarize_TerminationOutcomes(t *testing.T) {
	// GIVEN: One early and one late termination under each post-15 rule
	// WHEN: Summarizing
	// THEN: Early ones are zeroed, late pro-rata ones prorated, late integral ones settled

	p := basePrepared()
	p.Terminations = []voucher.Termination{
		terminated(1, day(2025, time.May, 10), true),
		terminated(2, day(2025, time.May, 20), true),
	}
	roster := []voucher.Employee{employee(1, unionSP), employee(2, unionSP)}

	proRata := voucher.Summarize(newTestCalculator().Calculate(roster, p, juneContext(t, voucher.Pos15ProRata)))
	assert.Equal(t, 1, proRata.ZeroedTerminations)
	assert.Equal(t, 1, proRata.ProratedTerminations)
	assert.Zero(t, proRata.SettlementAdjusted)

	integral := voucher.Summarize(newTestCalculator().Calculate(roster, p, juneContext(t, voucher.Pos15Integral)))
	assert.Equal(t, 1, integral.ZeroedTerminations)
	assert.Zero(t, integral.ProratedTerminations)
	assert.Equal(t, 1, integral.SettlementAdjusted)
}
