package contract

import (
	"fmt"
	"io"
	"math/bits"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
)

// Entry is one row of the flattened payout table.
type Entry struct {
	Outcome outcome.Outcome
	Payout  uint64
}

// ParsedContract maps every outcome of the space to the accepter's payout.
// Entries are ordered by outcome and the index of an entry equals its outcome value.
type ParsedContract []Entry

// Payout returns the payout for the given outcome.
func (p ParsedContract) Payout(o outcome.Outcome) (uint64, bool) {
	if uint64(o) >= uint64(len(p)) {
		return 0, false
	}
	return p[o].Payout, true
}

// WriteTable writes runs of equal payout as "from-to payout" lines followed by
// the number of outcomes.
func (p ParsedContract) WriteTable(w io.Writer) error {
	for start := 0; start < len(p); {
		end := start
		for end+1 < len(p) && p[end+1].Payout == p[start].Payout {
			end++
		}
		if _, err := fmt.Fprintf(w, "%d-%d %d\n", p[start].Outcome, p[end].Outcome, p[start].Payout); err != nil {
			return err
		}
		start = end + 1
	}
	_, err := fmt.Fprintf(w, "outcomes: %d\n", len(p))
	return err
}

// Flatten expands a validated contract descriptor into the full payout table.
// Constant intervals are replicated; sloped intervals are linearly interpolated
// and rounded half up.
func Flatten(descriptor ContractDescriptor, space outcome.Space) ParsedContract {
	parsed := make(ParsedContract, 0, space.Size())

	for _, interval := range descriptor.PayoutIntervals {
		from, to := interval.PayoutPoints[0], interval.PayoutPoints[1]
		span := uint64(to.EventOutcome - from.EventOutcome)

		for i := uint64(0); i < span; i++ {
			parsed = append(parsed, Entry{
				Outcome: outcome.Outcome(uint64(from.EventOutcome) + i),
				Payout:  interpolate(from.OutcomePayout, to.OutcomePayout, i, span),
			})
		}
	}

	intervals := descriptor.PayoutIntervals
	last := intervals[len(intervals)-1].PayoutPoints[1]
	return append(parsed, Entry{Outcome: outcome.Outcome(last.EventOutcome), Payout: last.OutcomePayout})
}

func interpolate(from, to, i, span uint64) uint64 {
	switch {
	case from == to:
		return from
	case to > from:
		return from + mulDivRound(i, to-from, span, true)
	default:
		// round(from - x) half up == from - round(x) half down
		return from - mulDivRound(i, from-to, span, false)
	}
}

// mulDivRound returns a*b/c rounded to the nearest integer. Ties round up when
// tiesUp is set and down otherwise. Requires a <= c.
func mulDivRound(a, b, c uint64, tiesUp bool) uint64 {
	hi, lo := bits.Mul64(a, b)
	q, r := bits.Div64(hi, lo, c)
	twice := 2 * r
	if twice > c || (twice == c && tiesUp) {
		q++
	}
	return q
}
