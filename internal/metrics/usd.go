package metrics

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// Oracle supplies the last known USD price for a token at a block height.
// ok is false when the oracle has never priced the token at that height.
type Oracle interface {
	PriceUSD(ctx context.Context, token string, blockNumber uint64) (price decimal.Decimal, ok bool, err error)
}

// priceUSD resolves a price or fails with a MissingPriceError. Absence of a
// price is a hard dependency failure, never defaulted.
func (e *Engine) priceUSD(ctx context.Context, token string, blockNumber uint64) (decimal.Decimal, error) {
	price, ok, err := e.oracle.PriceUSD(ctx, token, blockNumber)
	if err != nil {
		return decimal.Zero, fmt.Errorf("price lookup %s: %w", token, err)
	}
	if !ok {
		return decimal.Zero, &MissingPriceError{Token: token, BlockNumber: blockNumber}
	}
	return price, nil
}

// usdFromRaw converts a raw token amount scaled by the token's decimals into
// its USD value at the given price.
func usdFromRaw(amount *big.Int, decimals int32, price decimal.Decimal) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(amount, -decimals).Mul(price)
}

// clampedSub returns total minus protocolSide, clamped to zero.
func clampedSub(total, protocolSide decimal.Decimal) decimal.Decimal {
	if total.LessThanOrEqual(protocolSide) {
		return decimal.Zero
	}
	return total.Sub(protocolSide)
}
