package model

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// FinancialsDailySnapshot mirrors the protocol-level cumulative figures for
// one calendar day plus the revenue accrued within that day. Its id is the
// day index (timestamp / 86400) rendered as a string.
type FinancialsDailySnapshot struct {
	ID                               string          `json:"id"`
	Protocol                         string          `json:"protocol"`
	TotalValueLockedUSD              decimal.Decimal `json:"total_value_locked_usd"`
	DailyTotalRevenueUSD             decimal.Decimal `json:"daily_total_revenue_usd"`
	CumulativeTotalRevenueUSD        decimal.Decimal `json:"cumulative_total_revenue_usd"`
	DailyProtocolSideRevenueUSD      decimal.Decimal `json:"daily_protocol_side_revenue_usd"`
	CumulativeProtocolSideRevenueUSD decimal.Decimal `json:"cumulative_protocol_side_revenue_usd"`
	DailySupplySideRevenueUSD        decimal.Decimal `json:"daily_supply_side_revenue_usd"`
	CumulativeSupplySideRevenueUSD   decimal.Decimal `json:"cumulative_supply_side_revenue_usd"`
	BlockNumber                      uint64          `json:"block_number"`
	Timestamp                        uint64          `json:"timestamp"`
}

// Clone returns a deep copy.
func (s *FinancialsDailySnapshot) Clone() *FinancialsDailySnapshot {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

// PoolDailySnapshot captures the pool state for one calendar day. The
// emission slices hold exactly one slot for the reward token.
type PoolDailySnapshot struct {
	ID                               string            `json:"id"`
	Protocol                         string            `json:"protocol"`
	Pool                             string            `json:"pool"`
	TotalValueLockedUSD              decimal.Decimal   `json:"total_value_locked_usd"`
	DailyTotalRevenueUSD             decimal.Decimal   `json:"daily_total_revenue_usd"`
	CumulativeTotalRevenueUSD        decimal.Decimal   `json:"cumulative_total_revenue_usd"`
	DailyProtocolSideRevenueUSD      decimal.Decimal   `json:"daily_protocol_side_revenue_usd"`
	CumulativeProtocolSideRevenueUSD decimal.Decimal   `json:"cumulative_protocol_side_revenue_usd"`
	DailySupplySideRevenueUSD        decimal.Decimal   `json:"daily_supply_side_revenue_usd"`
	CumulativeSupplySideRevenueUSD   decimal.Decimal   `json:"cumulative_supply_side_revenue_usd"`
	InputTokenBalances               []*big.Int        `json:"input_token_balances"`
	OutputTokenSupply                *big.Int          `json:"output_token_supply"`
	OutputTokenPriceUSD              decimal.Decimal   `json:"output_token_price_usd"`
	StakedOutputTokenAmount          *big.Int          `json:"staked_output_token_amount"`
	RewardTokenEmissionsAmount       []*big.Int        `json:"reward_token_emissions_amount"`
	RewardTokenEmissionsUSD          []decimal.Decimal `json:"reward_token_emissions_usd"`
	BlockNumber                      uint64            `json:"block_number"`
	Timestamp                        uint64            `json:"timestamp"`
}

// Clone returns a deep copy.
func (s *PoolDailySnapshot) Clone() *PoolDailySnapshot {
	if s == nil {
		return nil
	}
	cp := *s
	cp.InputTokenBalances = CloneBigInts(s.InputTokenBalances)
	cp.OutputTokenSupply = cloneBigInt(s.OutputTokenSupply)
	cp.StakedOutputTokenAmount = cloneBigInt(s.StakedOutputTokenAmount)
	cp.RewardTokenEmissionsAmount = CloneBigInts(s.RewardTokenEmissionsAmount)
	cp.RewardTokenEmissionsUSD = append([]decimal.Decimal(nil), s.RewardTokenEmissionsUSD...)
	return &cp
}

// PoolHourlySnapshot is the hourly counterpart of PoolDailySnapshot. Its id
// is the hour index (timestamp / 3600).
type PoolHourlySnapshot struct {
	ID                               string            `json:"id"`
	Protocol                         string            `json:"protocol"`
	Pool                             string            `json:"pool"`
	TotalValueLockedUSD              decimal.Decimal   `json:"total_value_locked_usd"`
	HourlyTotalRevenueUSD            decimal.Decimal   `json:"hourly_total_revenue_usd"`
	CumulativeTotalRevenueUSD        decimal.Decimal   `json:"cumulative_total_revenue_usd"`
	HourlyProtocolSideRevenueUSD     decimal.Decimal   `json:"hourly_protocol_side_revenue_usd"`
	CumulativeProtocolSideRevenueUSD decimal.Decimal   `json:"cumulative_protocol_side_revenue_usd"`
	HourlySupplySideRevenueUSD       decimal.Decimal   `json:"hourly_supply_side_revenue_usd"`
	CumulativeSupplySideRevenueUSD   decimal.Decimal   `json:"cumulative_supply_side_revenue_usd"`
	InputTokenBalances               []*big.Int        `json:"input_token_balances"`
	OutputTokenSupply                *big.Int          `json:"output_token_supply"`
	OutputTokenPriceUSD              decimal.Decimal   `json:"output_token_price_usd"`
	StakedOutputTokenAmount          *big.Int          `json:"staked_output_token_amount"`
	RewardTokenEmissionsAmount       []*big.Int        `json:"reward_token_emissions_amount"`
	RewardTokenEmissionsUSD          []decimal.Decimal `json:"reward_token_emissions_usd"`
	BlockNumber                      uint64            `json:"block_number"`
	Timestamp                        uint64            `json:"timestamp"`
}

// Clone returns a deep copy.
func (s *PoolHourlySnapshot) Clone() *PoolHourlySnapshot {
	if s == nil {
		return nil
	}
	cp := *s
	cp.InputTokenBalances = CloneBigInts(s.InputTokenBalances)
	cp.OutputTokenSupply = cloneBigInt(s.OutputTokenSupply)
	cp.StakedOutputTokenAmount = cloneBigInt(s.StakedOutputTokenAmount)
	cp.RewardTokenEmissionsAmount = CloneBigInts(s.RewardTokenEmissionsAmount)
	cp.RewardTokenEmissionsUSD = append([]decimal.Decimal(nil), s.RewardTokenEmissionsUSD...)
	return &cp
}
