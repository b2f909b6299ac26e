package voucher

import (
	"fmt"
	"strings"
	"time"

	"github.com/warp/benefit-engine/generic"
)

const observationSep = " | "

// Observation builds the free-text note of a result. Fragments appear in
// a fixed order: admission, vacation, termination.
func Observation(r Result, term TerminationAssessment) string {
	var parts []string
	if r.Prorated() {
		parts = append(parts, fmt.Sprintf("Admitido em %s (proporcional)", formatDay(*r.AdmissionDate)))
	}
	if r.VacationDays > 0 {
		parts = append(parts, fmt.Sprintf("Férias %d dia(s)", r.VacationDays))
	}
	switch term.Outcome {
	case TerminationEarly:
		parts = append(parts, fmt.Sprintf("Desligado em %s (OK até dia %d)", formatDay(term.Date), TerminationCutoffDay))
	case TerminationLate:
		parts = append(parts, fmt.Sprintf("Desligado em %s (>%d) - %s", formatDay(term.Date), TerminationCutoffDay, term.Note))
	}
	return strings.Join(parts, observationSep)
}

// formatDay renders observation dates as ISO days (2025-05-15).
func formatDay(t generic.TimePoint) string {
	return t.Time.Format(time.DateOnly)
}
