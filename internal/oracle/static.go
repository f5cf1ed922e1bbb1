package oracle

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
)

// StaticOracle serves fixed per-token prices regardless of block height.
type StaticOracle struct {
	mu     sync.RWMutex
	prices map[string]decimal.Decimal
}

func NewStaticOracle(prices map[string]decimal.Decimal) *StaticOracle {
	out := make(map[string]decimal.Decimal, len(prices))
	for token, price := range prices {
		out[strings.ToLower(token)] = price
	}
	return &StaticOracle{prices: out}
}

// SetPrice sets or replaces the price for a token.
func (o *StaticOracle) SetPrice(token string, price decimal.Decimal) {
	o.mu.Lock()
	o.prices[strings.ToLower(token)] = price
	o.mu.Unlock()
}

func (o *StaticOracle) PriceUSD(ctx context.Context, token string, blockNumber uint64) (decimal.Decimal, bool, error) {
	o.mu.RLock()
	price, ok := o.prices[strings.ToLower(token)]
	o.mu.RUnlock()
	if !ok {
		return decimal.Zero, false, nil
	}
	return price, true, nil
}
