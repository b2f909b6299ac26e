package voucher

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/warp/benefit-engine/generic"
)

// RunContext is the immutable context of one competency run. It is passed
// by value into every component call; nothing in this package keeps run
// state at package level.
type RunContext struct {
	// Competency is the first day of the benefit month.
	Competency generic.TimePoint

	// Benefit is the month the voucher is paid for.
	Benefit generic.Period

	// Events is the month before Benefit; admissions, terminations and
	// vacations are evaluated over it.
	Events generic.Period

	Policy TerminationPolicy
}

// NewRunContext derives both periods from any day of the competency month.
func NewRunContext(competency generic.TimePoint, rule Pos15Rule) (RunContext, error) {
	policy, err := PolicyFor(rule)
	if err != nil {
		return RunContext{}, err
	}
	benefit := generic.MonthOf(competency)
	return RunContext{
		Competency: benefit.Start,
		Benefit:    benefit,
		Events:     benefit.PreviousMonth(),
		Policy:     policy,
	}, nil
}

// ParseCompetency reads "YYYY-MM-DD", "YYYY-MM" or "MM/YYYY".
func ParseCompetency(s string) (generic.TimePoint, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("01/2006", s); err == nil {
		return generic.FromTime(t), nil
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return generic.TimePoint{}, fmt.Errorf("competency %q: %w", s, generic.ErrInvalidDate)
	}
	tp, ok := generic.ParseTimePoint(s)
	if !ok {
		return generic.TimePoint{}, fmt.Errorf("competency %q: %w", s, generic.ErrInvalidDate)
	}
	return generic.MonthOf(tp).Start, nil
}

var monthNamesPT = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// MonthName returns the Portuguese month name.
func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNamesPT[m-1]
}

// BenefitMonthName and EventsMonthName are used in user-facing messages.
func (rc RunContext) BenefitMonthName() string { return MonthName(rc.Benefit.Start.Month()) }
func (rc RunContext) EventsMonthName() string  { return MonthName(rc.Events.Start.Month()) }

// Label is the "MM.YYYY" tag used in report names.
func (rc RunContext) Label() string { return rc.Competency.Time.Format("01.2006") }
