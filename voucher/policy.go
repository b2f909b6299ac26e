/*
policy.go - Termination rules

PURPOSE:
  An employee terminated during the events month loses part or all of the
  next month's benefit. The rule has a fixed half and a configurable half:

    Day 1-15 of the events month:  benefit zeroed (factor 0)
    Day 16 onwards:                depends on the configured Pos15Rule

AVAILABLE POLICIES:
  integral: Buy the full month now; the excess is recovered in the
            termination settlement. Factor stays 1 here, the result is
            flagged and annotated.
  pro-rata: Factor = business days from the start of the events month
            through the termination date / business days of the month.

  Only acknowledged terminations (communication field "OK") with a date
  inside the events month are considered at all.

SEE ALSO:
  - context.go: RunContext carries the resolved policy
  - calculator.go: Applies the assessment
*/
package voucher

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/benefit-engine/generic"
)

// TerminationCutoffDay is the last day of the month whose terminations zero the benefit.
const TerminationCutoffDay = 15

// =============================================================================
// POS-15 RULE
// =============================================================================

type Pos15Rule string

const (
	Pos15Integral Pos15Rule = "integral"
	Pos15ProRata  Pos15Rule = "pro-rata"
)

// ParsePos15Rule accepts the configured spelling, case-insensitive.
func ParsePos15Rule(s string) (Pos15Rule, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "integral":
		return Pos15Integral, nil
	case "pro-rata", "pro_rata", "prorata", "pró-rata":
		return Pos15ProRata, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// TerminationPolicy decides what a termination after the cutoff day does.
type TerminationPolicy interface {
	Rule() Pos15Rule

	// LateFactor is the pro-ration factor for a termination after the cutoff.
	LateFactor(date generic.TimePoint, events generic.Period) decimal.Decimal

	// Settles reports whether the adjustment is deferred to the settlement.
	Settles() bool

	// LateNote is the observation suffix for a termination after the cutoff.
	LateNote() string
}

type integralPolicy struct{}

func (integralPolicy) Rule() Pos15Rule { return Pos15Integral }
func (integralPolicy) LateFactor(generic.TimePoint, generic.Period) decimal.Decimal {
	return generic.One
}
func (integralPolicy) Settles() bool    { return true }
func (integralPolicy) LateNote() string { return "compra integral, ajuste em rescisão" }

type proRataPolicy struct{}

func (proRataPolicy) Rule() Pos15Rule { return Pos15ProRata }
func (proRataPolicy) LateFactor(date generic.TimePoint, events generic.Period) decimal.Decimal {
	return generic.Ratio(events.BusinessDaysUntil(date), events.BusinessDays())
}
func (proRataPolicy) Settles() bool    { return false }
func (proRataPolicy) LateNote() string { return "pró-rata no período" }

// PolicyFor resolves a rule to its policy.
func PolicyFor(rule Pos15Rule) (TerminationPolicy, error) {
	switch rule {
	case Pos15Integral:
		return integralPolicy{}, nil
	case Pos15ProRata:
		return proRataPolicy{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, string(rule))
}

// =============================================================================
// ASSESSMENT
// =============================================================================

// TerminationOutcome classifies a termination against the events month.
// The zero value means no termination applies.
type TerminationOutcome int

const (
	TerminationNone  TerminationOutcome = iota // no applicable termination
	TerminationEarly                           // on or before the cutoff day: zeroed
	TerminationLate                            // after the cutoff day: policy decides
)

// TerminationAssessment is the single source for both the factor and the
// observation of a termination.
type TerminationAssessment struct {
	Outcome    TerminationOutcome
	Date       generic.TimePoint
	Factor     decimal.Decimal
	Settlement bool
	Note       string // policy text of a late termination
}

// AssessTermination applies the termination rule to a record (nil allowed).
func AssessTermination(t *Termination, rc RunContext) TerminationAssessment {
	none := TerminationAssessment{Outcome: TerminationNone, Factor: generic.One}
	if t == nil || t.Date == nil || !t.Acknowledged || !rc.Events.Contains(*t.Date) {
		return none
	}
	d := *t.Date
	if d.Day() <= TerminationCutoffDay {
		return TerminationAssessment{Outcome: TerminationEarly, Date: d, Factor: decimal.Zero}
	}
	return TerminationAssessment{
		Outcome:    TerminationLate,
		Date:       d,
		Factor:     rc.Policy.LateFactor(d, rc.Events),
		Settlement: rc.Policy.Settles(),
		Note:       rc.Policy.LateNote(),
	}
}
