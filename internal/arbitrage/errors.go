// Package arbitrage is the detection and stake allocation engine. Every
// function is pure: it performs no I/O, holds no state and never logs, so
// callers may invoke it concurrently for independent events.
package arbitrage

import (
	"fmt"

	"github.com/alanyoungcy/sportsarb/internal/domain"
)

// IneligibleMarketError reports why an event cannot be analysed.
type IneligibleMarketError struct {
	EventID string
	Reason  string
}

func (e *IneligibleMarketError) Error() string {
	if e.EventID == "" {
		return fmt.Sprintf("ineligible market: %s", e.Reason)
	}
	return fmt.Sprintf("ineligible market %s: %s", e.EventID, e.Reason)
}

// Unwrap lets errors.Is match domain.ErrIneligibleMarket.
func (e *IneligibleMarketError) Unwrap() error { return domain.ErrIneligibleMarket }

// InvalidStakeError reports a rejected allocation request.
type InvalidStakeError struct {
	Reason string
}

func (e *InvalidStakeError) Error() string {
	return "invalid stake: " + e.Reason
}

// Unwrap lets errors.Is match domain.ErrInvalidStake.
func (e *InvalidStakeError) Unwrap() error { return domain.ErrInvalidStake }

// Reasons carried by InvalidStakeError.
const (
	ReasonNonFiniteStake   = "non-finite stake"
	ReasonNonPositiveStake = "non-positive stake"
	ReasonStakeTooSmall    = "stake below smallest currency unit"
	ReasonSubCentStake     = "stake has sub-cent precision"
	ReasonNoPicks          = "no picks"
	ReasonMalformedOdds    = "malformed odds"
	ReasonDuplicateOutcome = "duplicate outcome"
)
