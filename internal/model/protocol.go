package model

import "github.com/shopspring/decimal"

// Protocol is the all-time aggregate for the staking protocol.
// There is exactly one row; its id is the output token address.
type Protocol struct {
	ID                               string          `json:"id"`
	TotalValueLockedUSD              decimal.Decimal `json:"total_value_locked_usd"`
	CumulativeTotalRevenueUSD        decimal.Decimal `json:"cumulative_total_revenue_usd"`
	CumulativeProtocolSideRevenueUSD decimal.Decimal `json:"cumulative_protocol_side_revenue_usd"`
	CumulativeSupplySideRevenueUSD   decimal.Decimal `json:"cumulative_supply_side_revenue_usd"`
}

// Clone returns a deep copy.
func (p *Protocol) Clone() *Protocol {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
