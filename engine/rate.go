/*
rate.go - Client rate resolution from a tiered margin schedule

PURPOSE:
  Maps a balance amount to the client's effective interest rate. The
  company publishes a base rate and keeps a margin per balance tier; the
  client earns base minus the margin of the tier containing the balance.

BOUNDARY CONVENTION:
  Tier upper bounds are INCLUSIVE: an amount exactly equal to a bound
  belongs to the lower band (the "<=" convention). With the standard card
  {<=50,000: 8, <=499,000: 7, unbounded: 6.5} and base 20.66:

    resolve(50,000)  -> 20.66 - 8   = 12.66
    resolve(50,001)  -> 20.66 - 7   = 13.66
    resolve(600,000) -> 20.66 - 6.5 = 14.16

  The convention is applied uniformly for per-lot accrual and for the
  aggregate balance shown on statement rows.

SEE ALSO:
  - engine.go: Calls Resolve on every accrual step
  - errors.go: ErrInvalidConfiguration
*/
package engine

// =============================================================================
// TIER SCHEDULE - Contiguous margin bands over the non-negative reals
// =============================================================================

// Tier is one margin band. UpperBound nil marks the final, unbounded band.
type Tier struct {
	UpperBound *Money
	Margin     Percent
}

// TierSchedule is an ordered set of tiers partitioning [0, inf) into
// contiguous bands: each band runs from just above the previous bound
// (inclusive lower end at zero for the first) up to and including its own
// bound; the last band is unbounded above.
type TierSchedule []Tier

// Validate checks that the schedule covers the non-negative reals
// exhaustively without overlap: at least one tier, strictly ascending
// positive bounds, non-negative margins, and exactly one unbounded tier
// in the final position.
func (s TierSchedule) Validate() error {
	if len(s) == 0 {
		return &ConfigError{Field: "tiers", Reason: "schedule is empty"}
	}
	var prev *Money
	for i, tier := range s {
		if tier.Margin.IsNegative() {
			return &ConfigError{Field: "tiers", Reason: "margin must be non-negative"}
		}
		last := i == len(s)-1
		if last {
			if tier.UpperBound != nil {
				return &ConfigError{Field: "tiers", Reason: "final tier must be unbounded"}
			}
			continue
		}
		if tier.UpperBound == nil {
			return &ConfigError{Field: "tiers", Reason: "only the final tier may be unbounded"}
		}
		if tier.UpperBound.IsNegative() || tier.UpperBound.IsZero() {
			return &ConfigError{Field: "tiers", Reason: "tier bound must be positive"}
		}
		if prev != nil && !prev.LessThan(*tier.UpperBound) {
			return &ConfigError{Field: "tiers", Reason: "tier bounds must be strictly ascending"}
		}
		prev = tier.UpperBound
	}
	return nil
}

// Resolve returns the client rate (base minus tier margin) for the tier
// containing amount. Deterministic and total over all non-negative
// amounts; a negative amount is an InvalidConfiguration error.
//
// The returned rate may be negative if a margin exceeds the base rate;
// that is a valid (if unusual) card.
func (s TierSchedule) Resolve(amount Money, base Percent) (Percent, error) {
	if amount.IsNegative() {
		return Percent{}, &ConfigError{Field: "amount", Reason: "rate resolution amount must be non-negative"}
	}
	if err := s.Validate(); err != nil {
		return Percent{}, err
	}
	for _, tier := range s {
		if tier.UpperBound == nil || amount.LessThanOrEqual(*tier.UpperBound) {
			return base.Sub(tier.Margin), nil
		}
	}
	// Unreachable: Validate guarantees a final unbounded tier.
	return base.Sub(s[len(s)-1].Margin), nil
}
