package contract

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyContract          = errors.New("contract collateral and fee rate fields must be non-zero")
	ErrTooHighFeeRate         = errors.New("fee rate exceeds 25 * 250")
	ErrMissingIntervals       = errors.New("no payout intervals in contract descriptor")
	ErrInvalidIntervalPoints  = errors.New("each payout interval must contain exactly 2 points with increasing outcomes")
	ErrInvalidFirstOutcome    = errors.New("first payout interval must start at outcome 0")
	ErrNonContinuousIntervals = errors.New("payout intervals are not continuous in event outcome")
	ErrOutcomeRangeMismatch   = errors.New("last outcome does not match 2^nb_digits - 1")
	ErrInvalidPayout          = errors.New("outcome payout exceeds the sum of offer and accept collateral")
	ErrNbDigitsMismatch       = errors.New("contract nb_digits does not match the configured number of digits")
)

// ValidationError reports which contract invariant was broken and where.
type ValidationError struct {
	Err      error
	Interval int
	Detail   string
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("contract validation: %v", e.Err)
	}
	return fmt.Sprintf("contract validation: %v (%s)", e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(err error, interval int, format string, args ...any) *ValidationError {
	return &ValidationError{Err: err, Interval: interval, Detail: fmt.Sprintf(format, args...)}
}
