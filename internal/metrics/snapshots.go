package metrics

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"stakemetrics/internal/model"
)

// The get-or-create functions materialize one snapshot row per bucket id.
// A new row is seeded from the pool's current cumulative state with period
// deltas zeroed; an existing row keeps its fields. Both paths stamp the row
// with the triggering block's number and timestamp (last write wins) and
// persist it before returning.

func (e *Engine) getOrCreateFinancialsDaily(ctx context.Context, blk model.Block) (*model.FinancialsDailySnapshot, error) {
	id := DayID(blk.Timestamp)
	snapshot, err := e.store.LoadFinancialsDaily(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load financials snapshot: %w", err)
	}

	if snapshot == nil {
		pool, err := e.getOrCreatePool(ctx, blk)
		if err != nil {
			return nil, err
		}
		snapshot = &model.FinancialsDailySnapshot{
			ID:                               id,
			Protocol:                         e.tokens.OutputToken,
			TotalValueLockedUSD:              pool.TotalValueLockedUSD,
			CumulativeTotalRevenueUSD:        pool.CumulativeTotalRevenueUSD,
			CumulativeProtocolSideRevenueUSD: pool.CumulativeProtocolSideRevenueUSD,
			CumulativeSupplySideRevenueUSD:   pool.CumulativeSupplySideRevenueUSD,
		}
	}

	snapshot.BlockNumber = blk.Number
	snapshot.Timestamp = blk.Timestamp
	if err := e.store.SaveFinancialsDaily(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("save financials snapshot: %w", err)
	}
	return snapshot, nil
}

func (e *Engine) getOrCreatePoolDaily(ctx context.Context, blk model.Block) (*model.PoolDailySnapshot, error) {
	id := DayID(blk.Timestamp)
	snapshot, err := e.store.LoadPoolDaily(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load pool daily snapshot: %w", err)
	}

	if snapshot == nil {
		pool, err := e.getOrCreatePool(ctx, blk)
		if err != nil {
			return nil, err
		}
		protocol, err := e.getOrCreateProtocol(ctx)
		if err != nil {
			return nil, err
		}
		snapshot = &model.PoolDailySnapshot{
			ID:                               id,
			Protocol:                         protocol.ID,
			Pool:                             pool.ID,
			TotalValueLockedUSD:              pool.TotalValueLockedUSD,
			CumulativeTotalRevenueUSD:        pool.CumulativeTotalRevenueUSD,
			CumulativeProtocolSideRevenueUSD: pool.CumulativeProtocolSideRevenueUSD,
			CumulativeSupplySideRevenueUSD:   pool.CumulativeSupplySideRevenueUSD,
			InputTokenBalances:               model.CloneBigInts(pool.InputTokenBalances),
			OutputTokenSupply:                new(big.Int).Set(pool.OutputTokenSupply),
			OutputTokenPriceUSD:              pool.OutputTokenPriceUSD,
			StakedOutputTokenAmount:          new(big.Int).Set(pool.OutputTokenSupply),
			RewardTokenEmissionsAmount:       []*big.Int{new(big.Int)},
			RewardTokenEmissionsUSD:          []decimal.Decimal{decimal.Zero},
		}
	}

	snapshot.BlockNumber = blk.Number
	snapshot.Timestamp = blk.Timestamp
	if err := e.store.SavePoolDaily(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("save pool daily snapshot: %w", err)
	}
	return snapshot, nil
}

func (e *Engine) getOrCreatePoolHourly(ctx context.Context, blk model.Block) (*model.PoolHourlySnapshot, error) {
	id := HourID(blk.Timestamp)
	snapshot, err := e.store.LoadPoolHourly(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load pool hourly snapshot: %w", err)
	}

	if snapshot == nil {
		pool, err := e.getOrCreatePool(ctx, blk)
		if err != nil {
			return nil, err
		}
		protocol, err := e.getOrCreateProtocol(ctx)
		if err != nil {
			return nil, err
		}
		snapshot = &model.PoolHourlySnapshot{
			ID:                               id,
			Protocol:                         protocol.ID,
			Pool:                             pool.ID,
			TotalValueLockedUSD:              pool.TotalValueLockedUSD,
			CumulativeTotalRevenueUSD:        pool.CumulativeTotalRevenueUSD,
			CumulativeProtocolSideRevenueUSD: pool.CumulativeProtocolSideRevenueUSD,
			CumulativeSupplySideRevenueUSD:   pool.CumulativeSupplySideRevenueUSD,
			InputTokenBalances:               model.CloneBigInts(pool.InputTokenBalances),
			OutputTokenSupply:                new(big.Int).Set(pool.OutputTokenSupply),
			OutputTokenPriceUSD:              pool.OutputTokenPriceUSD,
			StakedOutputTokenAmount:          new(big.Int).Set(pool.OutputTokenSupply),
			RewardTokenEmissionsAmount:       []*big.Int{new(big.Int)},
			RewardTokenEmissionsUSD:          []decimal.Decimal{decimal.Zero},
		}
	}

	snapshot.BlockNumber = blk.Number
	snapshot.Timestamp = blk.Timestamp
	if err := e.store.SavePoolHourly(ctx, snapshot); err != nil {
		return nil, fmt.Errorf("save pool hourly snapshot: %w", err)
	}
	return snapshot, nil
}
