package metrics

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stakemetrics/internal/model"
)

// TokenConfig identifies the tokens the pool holds and issues. Balance slot 1
// holds the base token (the network's native asset), slot 0 the reward token.
// The output token address doubles as the protocol and pool id.
type TokenConfig struct {
	BaseToken      string
	BaseDecimals   int32
	RewardToken    string
	RewardDecimals int32
	OutputToken    string
}

// Engine applies metric updates to the pool and protocol aggregates and to
// the daily/hourly snapshots in lock-step. It is built for sequential
// per-event delivery; callers that process events concurrently must
// serialize calls per aggregate themselves.
type Engine struct {
	store  RecordStore
	oracle Oracle
	tokens TokenConfig
	logger *zap.Logger
}

func NewEngine(store RecordStore, oracle Oracle, tokens TokenConfig, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		store:  store,
		oracle: oracle,
		tokens: tokens,
		logger: logger,
	}
}

// UpdateTVL adds the deposited amounts to the pool balances and recomputes
// total value locked on the pool and protocol aggregates. Snapshot rows are
// not touched here; callers propagate TVL separately so revenue updates and
// TVL updates compose without double-writing.
func (e *Engine) UpdateTVL(ctx context.Context, blk model.Block, baseAmount, rewardAmount *big.Int) error {
	basePrice, err := e.priceUSD(ctx, e.tokens.BaseToken, blk.Number)
	if err != nil {
		return err
	}
	rewardPrice, err := e.priceUSD(ctx, e.tokens.RewardToken, blk.Number)
	if err != nil {
		return err
	}

	pool, err := e.getOrCreatePool(ctx, blk)
	if err != nil {
		return err
	}
	protocol, err := e.getOrCreateProtocol(ctx)
	if err != nil {
		return err
	}

	balances := model.CloneBigInts(pool.InputTokenBalances)
	if rewardAmount != nil {
		balances[model.BalanceSlotReward].Add(balances[model.BalanceSlotReward], rewardAmount)
	}
	if baseAmount != nil {
		balances[model.BalanceSlotBase].Add(balances[model.BalanceSlotBase], baseAmount)
	}
	pool.InputTokenBalances = balances

	baseTVL := usdFromRaw(balances[model.BalanceSlotBase], e.tokens.BaseDecimals, basePrice)
	rewardTVL := usdFromRaw(balances[model.BalanceSlotReward], e.tokens.RewardDecimals, rewardPrice)
	pool.TotalValueLockedUSD = baseTVL.Add(rewardTVL)

	if err := e.store.SavePool(ctx, pool); err != nil {
		return fmt.Errorf("save pool: %w", err)
	}

	protocol.TotalValueLockedUSD = pool.TotalValueLockedUSD
	if err := e.store.SaveProtocol(ctx, protocol); err != nil {
		return fmt.Errorf("save protocol: %w", err)
	}

	e.logger.Debug("tvl updated",
		zap.Uint64("block", blk.Number),
		zap.String("tvl_usd", pool.TotalValueLockedUSD.String()),
	)
	return nil
}

// PropagateTVL copies the pool's TVL and balances into the snapshot rows for
// the buckets containing blk's timestamp.
func (e *Engine) PropagateTVL(ctx context.Context, blk model.Block) error {
	pool, err := e.getOrCreatePool(ctx, blk)
	if err != nil {
		return err
	}
	daily, err := e.getOrCreatePoolDaily(ctx, blk)
	if err != nil {
		return err
	}
	hourly, err := e.getOrCreatePoolHourly(ctx, blk)
	if err != nil {
		return err
	}
	financials, err := e.getOrCreateFinancialsDaily(ctx, blk)
	if err != nil {
		return err
	}

	daily.TotalValueLockedUSD = pool.TotalValueLockedUSD
	daily.InputTokenBalances = model.CloneBigInts(pool.InputTokenBalances)
	if err := e.store.SavePoolDaily(ctx, daily); err != nil {
		return fmt.Errorf("save pool daily snapshot: %w", err)
	}

	hourly.TotalValueLockedUSD = pool.TotalValueLockedUSD
	hourly.InputTokenBalances = model.CloneBigInts(pool.InputTokenBalances)
	if err := e.store.SavePoolHourly(ctx, hourly); err != nil {
		return fmt.Errorf("save pool hourly snapshot: %w", err)
	}

	financials.TotalValueLockedUSD = pool.TotalValueLockedUSD
	if err := e.store.SaveFinancialsDaily(ctx, financials); err != nil {
		return fmt.Errorf("save financials snapshot: %w", err)
	}
	return nil
}

// UpdateTotalRevenue adds periodRewardsUSD to the cumulative and period
// total-revenue figures, refreshes the pool's output token supply and price,
// and accrues rewardStaked into the snapshots' reward emissions. The
// emission USD figure is recomputed from the running amount at the current
// price rather than accumulated per call.
func (e *Engine) UpdateTotalRevenue(ctx context.Context, blk model.Block, periodRewardsUSD decimal.Decimal, rewardStaked, outputShares *big.Int) error {
	rewardPrice, err := e.priceUSD(ctx, e.tokens.RewardToken, blk.Number)
	if err != nil {
		return err
	}
	outputPrice, err := e.priceUSD(ctx, e.tokens.OutputToken, blk.Number)
	if err != nil {
		return err
	}

	pool, err := e.getOrCreatePool(ctx, blk)
	if err != nil {
		return err
	}
	protocol, err := e.getOrCreateProtocol(ctx)
	if err != nil {
		return err
	}
	financials, err := e.getOrCreateFinancialsDaily(ctx, blk)
	if err != nil {
		return err
	}
	daily, err := e.getOrCreatePoolDaily(ctx, blk)
	if err != nil {
		return err
	}
	hourly, err := e.getOrCreatePoolHourly(ctx, blk)
	if err != nil {
		return err
	}

	pool.CumulativeTotalRevenueUSD = pool.CumulativeTotalRevenueUSD.Add(periodRewardsUSD)
	if outputShares != nil {
		pool.OutputTokenSupply = new(big.Int).Set(outputShares)
	}
	pool.OutputTokenPriceUSD = outputPrice
	if err := e.store.SavePool(ctx, pool); err != nil {
		return fmt.Errorf("save pool: %w", err)
	}

	daily.CumulativeTotalRevenueUSD = pool.CumulativeTotalRevenueUSD
	daily.DailyTotalRevenueUSD = daily.DailyTotalRevenueUSD.Add(periodRewardsUSD)
	daily.OutputTokenSupply = new(big.Int).Set(pool.OutputTokenSupply)
	daily.OutputTokenPriceUSD = pool.OutputTokenPriceUSD
	daily.StakedOutputTokenAmount = new(big.Int).Set(pool.OutputTokenSupply)
	if err := accrueEmissions(daily.RewardTokenEmissionsAmount, daily.RewardTokenEmissionsUSD, rewardStaked, e.tokens.RewardDecimals, rewardPrice); err != nil {
		return &MalformedAggregateError{Kind: "pool daily snapshot", ID: daily.ID, Reason: err.Error()}
	}
	if err := e.store.SavePoolDaily(ctx, daily); err != nil {
		return fmt.Errorf("save pool daily snapshot: %w", err)
	}

	hourly.CumulativeTotalRevenueUSD = pool.CumulativeTotalRevenueUSD
	hourly.HourlyTotalRevenueUSD = hourly.HourlyTotalRevenueUSD.Add(periodRewardsUSD)
	hourly.OutputTokenSupply = new(big.Int).Set(pool.OutputTokenSupply)
	hourly.OutputTokenPriceUSD = pool.OutputTokenPriceUSD
	hourly.StakedOutputTokenAmount = new(big.Int).Set(pool.OutputTokenSupply)
	if err := accrueEmissions(hourly.RewardTokenEmissionsAmount, hourly.RewardTokenEmissionsUSD, rewardStaked, e.tokens.RewardDecimals, rewardPrice); err != nil {
		return &MalformedAggregateError{Kind: "pool hourly snapshot", ID: hourly.ID, Reason: err.Error()}
	}
	if err := e.store.SavePoolHourly(ctx, hourly); err != nil {
		return fmt.Errorf("save pool hourly snapshot: %w", err)
	}

	protocol.CumulativeTotalRevenueUSD = pool.CumulativeTotalRevenueUSD
	if err := e.store.SaveProtocol(ctx, protocol); err != nil {
		return fmt.Errorf("save protocol: %w", err)
	}

	financials.CumulativeTotalRevenueUSD = pool.CumulativeTotalRevenueUSD
	financials.DailyTotalRevenueUSD = daily.DailyTotalRevenueUSD
	if err := e.store.SaveFinancialsDaily(ctx, financials); err != nil {
		return fmt.Errorf("save financials snapshot: %w", err)
	}
	return nil
}

// UpdateProtocolSideRevenue adds periodProtocolRevenueUSD to the cumulative
// and period protocol-side revenue figures.
func (e *Engine) UpdateProtocolSideRevenue(ctx context.Context, blk model.Block, periodProtocolRevenueUSD decimal.Decimal) error {
	pool, err := e.getOrCreatePool(ctx, blk)
	if err != nil {
		return err
	}
	protocol, err := e.getOrCreateProtocol(ctx)
	if err != nil {
		return err
	}
	financials, err := e.getOrCreateFinancialsDaily(ctx, blk)
	if err != nil {
		return err
	}
	daily, err := e.getOrCreatePoolDaily(ctx, blk)
	if err != nil {
		return err
	}
	hourly, err := e.getOrCreatePoolHourly(ctx, blk)
	if err != nil {
		return err
	}

	pool.CumulativeProtocolSideRevenueUSD = pool.CumulativeProtocolSideRevenueUSD.Add(periodProtocolRevenueUSD)
	if err := e.store.SavePool(ctx, pool); err != nil {
		return fmt.Errorf("save pool: %w", err)
	}

	daily.CumulativeProtocolSideRevenueUSD = pool.CumulativeProtocolSideRevenueUSD
	daily.DailyProtocolSideRevenueUSD = daily.DailyProtocolSideRevenueUSD.Add(periodProtocolRevenueUSD)
	if err := e.store.SavePoolDaily(ctx, daily); err != nil {
		return fmt.Errorf("save pool daily snapshot: %w", err)
	}

	hourly.CumulativeProtocolSideRevenueUSD = pool.CumulativeProtocolSideRevenueUSD
	hourly.HourlyProtocolSideRevenueUSD = hourly.HourlyProtocolSideRevenueUSD.Add(periodProtocolRevenueUSD)
	if err := e.store.SavePoolHourly(ctx, hourly); err != nil {
		return fmt.Errorf("save pool hourly snapshot: %w", err)
	}

	protocol.CumulativeProtocolSideRevenueUSD = pool.CumulativeProtocolSideRevenueUSD
	if err := e.store.SaveProtocol(ctx, protocol); err != nil {
		return fmt.Errorf("save protocol: %w", err)
	}

	financials.CumulativeProtocolSideRevenueUSD = pool.CumulativeProtocolSideRevenueUSD
	financials.DailyProtocolSideRevenueUSD = financials.DailyProtocolSideRevenueUSD.Add(periodProtocolRevenueUSD)
	if err := e.store.SaveFinancialsDaily(ctx, financials); err != nil {
		return fmt.Errorf("save financials snapshot: %w", err)
	}
	return nil
}

// UpdateSupplySideRevenue derives supply-side revenue as total minus
// protocol-side, clamped to zero, independently for each entity from its own
// figures. It must run after the total and protocol-side updates for the
// same event.
func (e *Engine) UpdateSupplySideRevenue(ctx context.Context, blk model.Block) error {
	pool, err := e.getOrCreatePool(ctx, blk)
	if err != nil {
		return err
	}
	protocol, err := e.getOrCreateProtocol(ctx)
	if err != nil {
		return err
	}
	financials, err := e.getOrCreateFinancialsDaily(ctx, blk)
	if err != nil {
		return err
	}
	daily, err := e.getOrCreatePoolDaily(ctx, blk)
	if err != nil {
		return err
	}
	hourly, err := e.getOrCreatePoolHourly(ctx, blk)
	if err != nil {
		return err
	}

	pool.CumulativeSupplySideRevenueUSD = clampedSub(pool.CumulativeTotalRevenueUSD, pool.CumulativeProtocolSideRevenueUSD)
	if err := e.store.SavePool(ctx, pool); err != nil {
		return fmt.Errorf("save pool: %w", err)
	}

	daily.CumulativeSupplySideRevenueUSD = pool.CumulativeSupplySideRevenueUSD
	daily.DailySupplySideRevenueUSD = clampedSub(daily.DailyTotalRevenueUSD, daily.DailyProtocolSideRevenueUSD)
	if err := e.store.SavePoolDaily(ctx, daily); err != nil {
		return fmt.Errorf("save pool daily snapshot: %w", err)
	}

	hourly.CumulativeSupplySideRevenueUSD = pool.CumulativeSupplySideRevenueUSD
	hourly.HourlySupplySideRevenueUSD = clampedSub(hourly.HourlyTotalRevenueUSD, hourly.HourlyProtocolSideRevenueUSD)
	if err := e.store.SavePoolHourly(ctx, hourly); err != nil {
		return fmt.Errorf("save pool hourly snapshot: %w", err)
	}

	protocol.CumulativeSupplySideRevenueUSD = pool.CumulativeSupplySideRevenueUSD
	if err := e.store.SaveProtocol(ctx, protocol); err != nil {
		return fmt.Errorf("save protocol: %w", err)
	}

	financials.CumulativeSupplySideRevenueUSD = pool.CumulativeSupplySideRevenueUSD
	financials.DailySupplySideRevenueUSD = clampedSub(financials.DailyTotalRevenueUSD, financials.DailyProtocolSideRevenueUSD)
	if err := e.store.SaveFinancialsDaily(ctx, financials); err != nil {
		return fmt.Errorf("save financials snapshot: %w", err)
	}
	return nil
}

// accrueEmissions adds rewardStaked to slot 0 of the emissions amount and
// recomputes slot 0 of the USD slice from the running amount.
func accrueEmissions(amounts []*big.Int, usd []decimal.Decimal, rewardStaked *big.Int, decimals int32, price decimal.Decimal) error {
	if len(amounts) != 1 || len(usd) != 1 {
		return fmt.Errorf("reward emission slices must have length 1, got %d/%d", len(amounts), len(usd))
	}
	if amounts[0] == nil {
		amounts[0] = new(big.Int)
	}
	if rewardStaked != nil {
		amounts[0].Add(amounts[0], rewardStaked)
	}
	usd[0] = usdFromRaw(amounts[0], decimals, price)
	return nil
}
