// apps/go-server/internal/game/errors.go
//
// Sentinel errors returned by the session service.
// Responsibilities:
//   - Name every lookup, input and business-rule failure.
//   - Let the HTTP layer tell caller mistakes from server faults via IsInvalid.

package game

import "errors"

// Lookup failures.
var ErrNotFound = errors.New("session not found")

// Invalid input. Nothing is mutated.
var (
	ErrBadMode       = errors.New("unknown mode")
	ErrBadDifficulty = errors.New("difficulty must be 1, 2 or 3")
	ErrBadDirection  = errors.New("unknown direction")
	ErrOutOfBounds   = errors.New("out of bounds")
	ErrUnknownItem   = errors.New("unknown item")
)

// Business-rule violations. Nothing is mutated.
var (
	ErrGameOver      = errors.New("game over")
	ErrFrozen        = errors.New("frozen")
	ErrBlocked       = errors.New("blocked")
	ErrNoMatch       = errors.New("no match")
	ErrItemsDisabled = errors.New("items are only available to players in pvp/pve matches")
	ErrInsufficient  = errors.New("insufficient balance")
	ErrNotQueued     = errors.New("not waiting for a match")
)

// ErrDelivery reports a purchase whose item could not be credited.
// The coins have been refunded when this is returned.
var ErrDelivery = errors.New("could not deliver item")

// IsInvalid reports whether err is a client mistake or a rule violation,
// as opposed to a lookup or persistence failure.
func IsInvalid(err error) bool {
	for _, target := range []error{
		ErrBadMode, ErrBadDifficulty, ErrBadDirection, ErrOutOfBounds, ErrUnknownItem,
		ErrGameOver, ErrFrozen, ErrBlocked, ErrNoMatch, ErrItemsDisabled, ErrInsufficient, ErrNotQueued,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
