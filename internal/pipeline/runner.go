package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"stakemetrics/internal/model"
)

// MetricsEngine is the set of update operations the pipeline drives.
type MetricsEngine interface {
	UpdateTVL(ctx context.Context, blk model.Block, baseAmount, rewardAmount *big.Int) error
	PropagateTVL(ctx context.Context, blk model.Block) error
	UpdateTotalRevenue(ctx context.Context, blk model.Block, periodRewardsUSD decimal.Decimal, rewardStaked, outputShares *big.Int) error
	UpdateProtocolSideRevenue(ctx context.Context, blk model.Block, periodProtocolRevenueUSD decimal.Decimal) error
	UpdateSupplySideRevenue(ctx context.Context, blk model.Block) error
}

// EventSource streams decoded staking events in file order.
type EventSource interface {
	Each(ctx context.Context, fn func(record *model.StakingEventRecord, decodeErr error) error) error
}

// Config controls pipeline behavior.
type Config struct {
	RecomputeFrom uint64
	MaxRetries    int
	RetryBackoff  time.Duration
	StateStore    StateStore
	SaveEvery     int
}

// Runner applies staking events to the metrics engine sequentially. Events
// are delivered one at a time; the engine relies on that serialization.
type Runner struct {
	cfg    Config
	engine MetricsEngine
	source EventSource
	logger *zap.Logger
}

func NewRunner(cfg Config, engine MetricsEngine, source EventSource, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		engine: engine,
		source: source,
		logger: logger,
	}
}

// Run processes all events from the source, skipping those at or before the
// resume timestamp, and tracks progress through the state store.
func (r *Runner) Run(ctx context.Context) error {
	if r.engine == nil {
		return fmt.Errorf("engine is nil")
	}
	if r.source == nil {
		return fmt.Errorf("event source is nil")
	}
	if r.cfg.SaveEvery <= 0 {
		r.cfg.SaveEvery = 500
	}

	startTs, err := r.loadStartTimestamp(ctx)
	if err != nil {
		return err
	}

	var total, processed, skipped, failed int
	lastTs := startTs
	sinceSave := 0

	err = r.source.Each(ctx, func(record *model.StakingEventRecord, decodeErr error) error {
		total++
		if decodeErr != nil {
			failed++
			r.logger.Warn("decode event", zap.Error(decodeErr))
			return nil
		}

		if record.Timestamp <= startTs {
			skipped++
			return nil
		}

		if err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			return r.apply(ctx, *record)
		}); err != nil {
			return fmt.Errorf("apply event %s at block %d: %w", record.EventName, record.BlockNumber, err)
		}
		processed++

		if record.Timestamp > lastTs {
			lastTs = record.Timestamp
		}

		sinceSave++
		if sinceSave >= r.cfg.SaveEvery {
			sinceSave = 0
			return r.saveState(ctx, lastTs)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := r.saveState(ctx, lastTs); err != nil {
		return err
	}

	r.logger.Info("pipeline complete",
		zap.Int("total", total),
		zap.Int("processed", processed),
		zap.Int("skipped", skipped),
		zap.Int("failed", failed),
	)
	return nil
}

// apply dispatches one event through the engine in the fixed call order for
// its type. Unknown event names are ignored.
func (r *Runner) apply(ctx context.Context, record model.StakingEventRecord) error {
	blk := model.Block{Number: record.BlockNumber, Timestamp: record.Timestamp}

	switch record.EventName {
	case model.EventDeposit:
		var data model.DepositEventData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return fmt.Errorf("decode deposit: %w", err)
		}
		amount, err := parseBigInt(data.Amount)
		if err != nil {
			return err
		}
		if err := r.engine.UpdateTVL(ctx, blk, amount, new(big.Int)); err != nil {
			return err
		}
		return r.engine.PropagateTVL(ctx, blk)

	case model.EventRewardStake:
		var data model.RewardStakeEventData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return fmt.Errorf("decode reward stake: %w", err)
		}
		amount, err := parseBigInt(data.Amount)
		if err != nil {
			return err
		}
		if err := r.engine.UpdateTVL(ctx, blk, new(big.Int), amount); err != nil {
			return err
		}
		return r.engine.PropagateTVL(ctx, blk)

	case model.EventRewardsAccrued:
		var data model.RewardsAccruedEventData
		if err := json.Unmarshal(record.Decoded, &data); err != nil {
			return fmt.Errorf("decode rewards accrued: %w", err)
		}
		rewardsUSD, err := parseDecimal(data.RewardsUSD)
		if err != nil {
			return err
		}
		protocolUSD, err := parseDecimal(data.ProtocolRewardsUSD)
		if err != nil {
			return err
		}
		rewardStaked, err := parseBigInt(data.RewardStaked)
		if err != nil {
			return err
		}
		outputShares, err := parseBigInt(data.OutputShares)
		if err != nil {
			return err
		}

		if err := r.engine.UpdateTotalRevenue(ctx, blk, rewardsUSD, rewardStaked, outputShares); err != nil {
			return err
		}
		if err := r.engine.UpdateProtocolSideRevenue(ctx, blk, protocolUSD); err != nil {
			return err
		}
		if err := r.engine.UpdateSupplySideRevenue(ctx, blk); err != nil {
			return err
		}
		return r.engine.PropagateTVL(ctx, blk)

	default:
		return nil
	}
}

func (r *Runner) loadStartTimestamp(ctx context.Context) (uint64, error) {
	if r.cfg.RecomputeFrom > 0 {
		return r.cfg.RecomputeFrom - 1, nil
	}
	if r.cfg.StateStore == nil {
		return 0, nil
	}
	last, ok, err := r.cfg.StateStore.Load(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	return last, nil
}

func (r *Runner) saveState(ctx context.Context, ts uint64) error {
	if r.cfg.StateStore == nil {
		return nil
	}
	return r.cfg.StateStore.Save(ctx, ts)
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return new(big.Int), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("invalid int: %s", value)
	}
	return parsed, nil
}

func parseDecimal(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %s: %w", value, err)
	}
	return parsed, nil
}
