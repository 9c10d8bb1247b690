package usecase

import "errors"

var (
	ErrUnknownStrategy  = errors.New("unknown concurrency strategy")
	ErrUnknownGuardMode = errors.New("unknown duplicate guard mode")
)

// Strategy selects how concurrent mutations against the same balance are
// serialized.
type Strategy string

const (
	// StrategyLock reads the balance under an exclusive row lock held for the
	// duration of the unit of work.
	StrategyLock Strategy = "lock"
	// StrategyOptimistic writes the new amount conditioned on the stored
	// version still matching the one read.
	StrategyOptimistic Strategy = "optimistic"
	// StrategyToken stamps the transaction token onto the balance in the same
	// write that updates the amount; the token's unique index rejects the
	// second writer.
	StrategyToken Strategy = "token"
)

// ParseStrategy parses a strategy name.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyLock, StrategyOptimistic, StrategyToken:
		return Strategy(s), nil
	}

	return "", ErrUnknownStrategy
}

// GuardMode selects how duplicate requests are detected.
type GuardMode string

const (
	// GuardProbe queries for an existing entry with the token before mutating.
	GuardProbe GuardMode = "probe"
	// GuardInsertFirst writes the entry as the first statement of the unit of
	// work and relies on the unique token index to reject duplicates.
	GuardInsertFirst GuardMode = "insert-first"
)

// ParseGuardMode parses a guard mode name.
func ParseGuardMode(s string) (GuardMode, error) {
	switch GuardMode(s) {
	case GuardProbe, GuardInsertFirst:
		return GuardMode(s), nil
	}

	return "", ErrUnknownGuardMode
}
