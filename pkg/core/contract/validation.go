package contract

import (
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
)

// Validate checks the contract input against the outcome space. Checks run
// in a fixed order and the first broken invariant is reported.
func Validate(input ContractInput, space outcome.Space) error {
	if input.OfferCollateral == 0 || input.AcceptCollateral == 0 || input.FeeRate == 0 {
		return &ValidationError{Err: ErrEmptyContract, Interval: -1}
	}
	if input.FeeRate > MaxFeeRate {
		return invalid(ErrTooHighFeeRate, -1, "fee rate %d", input.FeeRate)
	}

	intervals := input.ContractInfo.ContractDescriptor.PayoutIntervals
	if len(intervals) == 0 {
		return &ValidationError{Err: ErrMissingIntervals, Interval: -1}
	}

	for i, interval := range intervals {
		if len(interval.PayoutPoints) != 2 {
			return invalid(ErrInvalidIntervalPoints, i, "interval %d has %d points", i, len(interval.PayoutPoints))
		}
		if interval.PayoutPoints[0].EventOutcome >= interval.PayoutPoints[1].EventOutcome {
			return invalid(ErrInvalidIntervalPoints, i, "interval %d does not increase", i)
		}
	}

	if first := intervals[0].PayoutPoints[0].EventOutcome; first != 0 {
		return invalid(ErrInvalidFirstOutcome, 0, "first outcome %d", first)
	}

	for i := 1; i < len(intervals); i++ {
		prevEnd := intervals[i-1].PayoutPoints[1].EventOutcome
		start := intervals[i].PayoutPoints[0].EventOutcome
		if prevEnd != start {
			return invalid(ErrNonContinuousIntervals, i, "interval %d starts at %d, previous ends at %d", i, start, prevEnd)
		}
	}

	last := intervals[len(intervals)-1].PayoutPoints[1].EventOutcome
	if uint64(last) != uint64(space.Max()) {
		return invalid(ErrOutcomeRangeMismatch, len(intervals)-1, "last outcome %d, expected %d", last, space.Max())
	}

	total := input.TotalCollateral()
	for i, interval := range intervals {
		for _, p := range interval.PayoutPoints {
			if p.OutcomePayout > total {
				return invalid(ErrInvalidPayout, i, "payout %d at outcome %d exceeds %d", p.OutcomePayout, p.EventOutcome, total)
			}
		}
	}

	if nb := input.ContractInfo.Oracle.NbDigits; nb != space.NbDigits {
		return invalid(ErrNbDigitsMismatch, -1, "contract declares %d, configured %d", nb, space.NbDigits)
	}

	return nil
}
