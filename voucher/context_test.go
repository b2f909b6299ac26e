package voucher_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/benefit-engine/generic"
	"github.com/warp/benefit-engine/voucher"
)

// =============================================================================
// RUN CONTEXT
// =============================================================================

func TestNewRunContext_DerivesPeriods(t *testing.T) {
	// GIVEN: Any day of June 2025
	// WHEN: Building the run context
	// THEN: Benefit month is June and events month is May

	rc, err := voucher.NewRunContext(generic.NewTimePoint(2025, time.June, 17), voucher.Pos15Integral)
	require.NoError(t, err)

	assert.True(t, rc.Competency.Equal(generic.NewTimePoint(2025, time.June, 1)))
	assert.Equal(t, generic.MonthPeriod(2025, time.June), rc.Benefit)
	assert.Equal(t, generic.MonthPeriod(2025, time.May), rc.Events)
	assert.Equal(t, voucher.Pos15Integral, rc.Policy.Rule())
	assert.Equal(t, "06.2025", rc.Label())
	assert.Equal(t, "Junho", rc.BenefitMonthName())
	assert.Equal(t, "Maio", rc.EventsMonthName())
}

func TestNewRunContext_JanuaryCompetency_EventsInDecember(t *testing.T) {
	rc, err := voucher.NewRunContext(generic.NewTimePoint(2026, time.January, 1), voucher.Pos15ProRata)
	require.NoError(t, err)

	assert.Equal(t, generic.MonthPeriod(2025, time.December), rc.Events)
}

func TestNewRunContext_UnknownRule(t *testing.T) {
	_, err := voucher.NewRunContext(generic.NewTimePoint(2025, time.June, 1), voucher.Pos15Rule("metade"))

	assert.ErrorIs(t, err, voucher.ErrUnknownPolicy)
}

func TestParseCompetency(t *testing.T) {
	june := generic.NewTimePoint(2025, time.June, 1)

	for _, in := range []string{"2025-06-01", "2025-06-30", "2025-06", "06/2025", " 2025-06-15 "} {
		got, err := voucher.ParseCompetency(in)
		require.NoError(t, err, in)
		assert.True(t, got.Equal(june), "%s parsed as %s", in, got)
	}

	for _, in := range []string{"", "junho", "45809", "2025-13-01"} {
		_, err := voucher.ParseCompetency(in)
		assert.ErrorIs(t, err, generic.ErrInvalidDate, in)
	}
}

// =============================================================================
// POLICY
// =============================================================================

func TestParsePos15Rule(t *testing.T) {
	tests := map[string]voucher.Pos15Rule{
		"integral":  voucher.Pos15Integral,
		"INTEGRAL":  voucher.Pos15Integral,
		"pro-rata":  voucher.Pos15ProRata,
		"pro_rata":  voucher.Pos15ProRata,
		"Prorata":   voucher.Pos15ProRata,
		" pró-rata": voucher.Pos15ProRata,
	}
	for in, want := range tests {
		got, err := voucher.ParsePos15Rule(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := voucher.ParsePos15Rule("half")
	assert.ErrorIs(t, err, voucher.ErrUnknownPolicy)
}

func TestAssessTermination_Outcomes(t *testing.T) {
	rc := juneContext(t, voucher.Pos15ProRata)

	none := voucher.AssessTermination(nil, rc)
	assert.Equal(t, voucher.TerminationNone, none.Outcome)
	assert.True(t, none.Factor.Equal(generic.One))

	early := voucher.AssessTermination(&voucher.Termination{Date: day(2025, time.May, 15), Acknowledged: true}, rc)
	assert.Equal(t, voucher.TerminationEarly, early.Outcome)
	assert.True(t, early.Factor.IsZero())

	late := voucher.AssessTermination(&voucher.Termination{Date: day(2025, time.May, 16), Acknowledged: true}, rc)
	assert.Equal(t, voucher.TerminationLate, late.Outcome)
	assert.True(t, generic.Ratio(12, 22).Equal(late.Factor), "May 1..16 holds 12 business days")
	assert.Equal(t, "pró-rata no período", late.Note)
}

func TestAssessTermination_LastDayProRata_FullFactor(t *testing.T) {
	rc := juneContext(t, voucher.Pos15ProRata)

	a := voucher.AssessTermination(&voucher.Termination{Date: day(2025, time.May, 31), Acknowledged: true}, rc)

	assert.True(t, a.Factor.Equal(generic.One))
}
