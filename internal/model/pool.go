package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// Balance slots of Pool.InputTokenBalances.
const (
	BalanceSlotReward = 0
	BalanceSlotBase   = 1
)

// Pool is the singleton staking pool aggregate. InputTokenBalances holds
// exactly two raw token amounts: slot 0 the reward token, slot 1 the base
// token. Balances only ever accumulate.
type Pool struct {
	ID                               string          `json:"id"`
	CreatedBlockNumber               uint64          `json:"created_block_number"`
	CreatedTimestamp                 uint64          `json:"created_timestamp"`
	InputTokenBalances               []*big.Int      `json:"input_token_balances"`
	TotalValueLockedUSD              decimal.Decimal `json:"total_value_locked_usd"`
	CumulativeTotalRevenueUSD        decimal.Decimal `json:"cumulative_total_revenue_usd"`
	CumulativeProtocolSideRevenueUSD decimal.Decimal `json:"cumulative_protocol_side_revenue_usd"`
	CumulativeSupplySideRevenueUSD   decimal.Decimal `json:"cumulative_supply_side_revenue_usd"`
	OutputTokenSupply                *big.Int        `json:"output_token_supply"`
	OutputTokenPriceUSD              decimal.Decimal `json:"output_token_price_usd"`
}

// Clone returns a deep copy.
func (p *Pool) Clone() *Pool {
	if p == nil {
		return nil
	}
	cp := *p
	cp.InputTokenBalances = CloneBigInts(p.InputTokenBalances)
	cp.OutputTokenSupply = cloneBigInt(p.OutputTokenSupply)
	return &cp
}

// CloneBigInts deep-copies a slice of big integers.
func CloneBigInts(values []*big.Int) []*big.Int {
	if values == nil {
		return nil
	}
	out := make([]*big.Int, len(values))
	for i, v := range values {
		out[i] = cloneBigInt(v)
	}
	return out
}

func cloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}
