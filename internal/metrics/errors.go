package metrics

import "fmt"

// MissingPriceError reports that the oracle has no price for a token at the
// requested block height. The engine never substitutes a default price.
type MissingPriceError struct {
	Token       string
	BlockNumber uint64
}

func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("no price for token %s at block %d", e.Token, e.BlockNumber)
}

// MalformedAggregateError reports a stored record that violates a structural
// invariant, e.g. a balances slice of the wrong length. The engine cannot
// guess a repair, so the operation fails.
type MalformedAggregateError struct {
	Kind   string
	ID     string
	Reason string
}

func (e *MalformedAggregateError) Error() string {
	return fmt.Sprintf("malformed %s %s: %s", e.Kind, e.ID, e.Reason)
}
