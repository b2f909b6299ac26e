package voucher

import (
	"errors"
	"strings"

	"github.com/warp/benefit-engine/generic"
)

var (
	// ErrValidation is returned when the inputs of a run fail a critical check.
	ErrValidation = errors.New("voucher: validation failed")

	// ErrUnknownPolicy is returned for a post-15 rule that is not configured.
	ErrUnknownPolicy = errors.New("voucher: unknown post-15 termination rule")
)

// ValidationError carries every critical message of one validation pass.
// Missing holds the column-presence failures behind some of the messages.
type ValidationError struct {
	Messages []string
	Missing  []*generic.MissingColumnsError
}

func (e *ValidationError) Error() string {
	return "Erros de validação impediram o cálculo: " + strings.Join(e.Messages, "; ")
}

func (e *ValidationError) Unwrap() []error {
	errs := []error{ErrValidation}
	for _, m := range e.Missing {
		errs = append(errs, m)
	}
	return errs
}
