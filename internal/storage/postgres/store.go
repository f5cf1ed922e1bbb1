package postgres

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stakemetrics/internal/model"
)

// Store provides Postgres persistence for the aggregates and snapshots.
// Numeric values are stored as text to round-trip arbitrary precision.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) LoadProtocol(ctx context.Context, id string) (*model.Protocol, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, total_value_locked_usd, cumulative_total_revenue_usd,
			cumulative_protocol_side_revenue_usd, cumulative_supply_side_revenue_usd
		FROM protocols WHERE id=$1
	`, id)

	var p model.Protocol
	var tvl, total, protocolSide, supplySide string
	if err := row.Scan(&p.ID, &tvl, &total, &protocolSide, &supplySide); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	var err error
	if p.TotalValueLockedUSD, err = parseDecimal(tvl); err != nil {
		return nil, err
	}
	if p.CumulativeTotalRevenueUSD, err = parseDecimal(total); err != nil {
		return nil, err
	}
	if p.CumulativeProtocolSideRevenueUSD, err = parseDecimal(protocolSide); err != nil {
		return nil, err
	}
	if p.CumulativeSupplySideRevenueUSD, err = parseDecimal(supplySide); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) SaveProtocol(ctx context.Context, p *model.Protocol) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO protocols (
			id, total_value_locked_usd, cumulative_total_revenue_usd,
			cumulative_protocol_side_revenue_usd, cumulative_supply_side_revenue_usd,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,now(),now())
		ON CONFLICT (id) DO UPDATE SET
			total_value_locked_usd = EXCLUDED.total_value_locked_usd,
			cumulative_total_revenue_usd = EXCLUDED.cumulative_total_revenue_usd,
			cumulative_protocol_side_revenue_usd = EXCLUDED.cumulative_protocol_side_revenue_usd,
			cumulative_supply_side_revenue_usd = EXCLUDED.cumulative_supply_side_revenue_usd,
			updated_at = now()
	`,
		p.ID,
		p.TotalValueLockedUSD.String(),
		p.CumulativeTotalRevenueUSD.String(),
		p.CumulativeProtocolSideRevenueUSD.String(),
		p.CumulativeSupplySideRevenueUSD.String(),
	)
	return err
}

func (s *Store) LoadPool(ctx context.Context, id string) (*model.Pool, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, created_block_number, created_timestamp,
			reward_token_balance, base_token_balance,
			total_value_locked_usd, cumulative_total_revenue_usd,
			cumulative_protocol_side_revenue_usd, cumulative_supply_side_revenue_usd,
			output_token_supply, output_token_price_usd
		FROM pools WHERE id=$1
	`, id)

	var p model.Pool
	var createdBlock, createdTS int64
	var rewardBal, baseBal, tvl, total, protocolSide, supplySide, supply, outputPrice string
	if err := row.Scan(
		&p.ID, &createdBlock, &createdTS,
		&rewardBal, &baseBal,
		&tvl, &total, &protocolSide, &supplySide,
		&supply, &outputPrice,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	p.CreatedBlockNumber = uint64(createdBlock)
	p.CreatedTimestamp = uint64(createdTS)

	reward, err := parseBigInt(rewardBal)
	if err != nil {
		return nil, err
	}
	base, err := parseBigInt(baseBal)
	if err != nil {
		return nil, err
	}
	p.InputTokenBalances = []*big.Int{reward, base}

	if p.TotalValueLockedUSD, err = parseDecimal(tvl); err != nil {
		return nil, err
	}
	if p.CumulativeTotalRevenueUSD, err = parseDecimal(total); err != nil {
		return nil, err
	}
	if p.CumulativeProtocolSideRevenueUSD, err = parseDecimal(protocolSide); err != nil {
		return nil, err
	}
	if p.CumulativeSupplySideRevenueUSD, err = parseDecimal(supplySide); err != nil {
		return nil, err
	}
	if p.OutputTokenSupply, err = parseBigInt(supply); err != nil {
		return nil, err
	}
	if p.OutputTokenPriceUSD, err = parseDecimal(outputPrice); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) SavePool(ctx context.Context, p *model.Pool) error {
	if len(p.InputTokenBalances) != 2 {
		return fmt.Errorf("pool %s: input token balances must have length 2", p.ID)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pools (
			id, created_block_number, created_timestamp,
			reward_token_balance, base_token_balance,
			total_value_locked_usd, cumulative_total_revenue_usd,
			cumulative_protocol_side_revenue_usd, cumulative_supply_side_revenue_usd,
			output_token_supply, output_token_price_usd, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now())
		ON CONFLICT (id) DO UPDATE SET
			reward_token_balance = EXCLUDED.reward_token_balance,
			base_token_balance = EXCLUDED.base_token_balance,
			total_value_locked_usd = EXCLUDED.total_value_locked_usd,
			cumulative_total_revenue_usd = EXCLUDED.cumulative_total_revenue_usd,
			cumulative_protocol_side_revenue_usd = EXCLUDED.cumulative_protocol_side_revenue_usd,
			cumulative_supply_side_revenue_usd = EXCLUDED.cumulative_supply_side_revenue_usd,
			output_token_supply = EXCLUDED.output_token_supply,
			output_token_price_usd = EXCLUDED.output_token_price_usd,
			updated_at = now()
	`,
		p.ID,
		int64(p.CreatedBlockNumber),
		int64(p.CreatedTimestamp),
		bigIntString(p.InputTokenBalances[model.BalanceSlotReward]),
		bigIntString(p.InputTokenBalances[model.BalanceSlotBase]),
		p.TotalValueLockedUSD.String(),
		p.CumulativeTotalRevenueUSD.String(),
		p.CumulativeProtocolSideRevenueUSD.String(),
		p.CumulativeSupplySideRevenueUSD.String(),
		bigIntString(p.OutputTokenSupply),
		p.OutputTokenPriceUSD.String(),
	)
	return err
}

func (s *Store) LoadFinancialsDaily(ctx context.Context, id string) (*model.FinancialsDailySnapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, protocol, total_value_locked_usd,
			daily_total_revenue_usd, cumulative_total_revenue_usd,
			daily_protocol_side_revenue_usd, cumulative_protocol_side_revenue_usd,
			daily_supply_side_revenue_usd, cumulative_supply_side_revenue_usd,
			block_number, ts
		FROM financials_daily_snapshots WHERE id=$1
	`, id)

	var snap model.FinancialsDailySnapshot
	var blockNumber, ts int64
	fields := make([]string, 7)
	if err := row.Scan(
		&snap.ID, &snap.Protocol, &fields[0],
		&fields[1], &fields[2],
		&fields[3], &fields[4],
		&fields[5], &fields[6],
		&blockNumber, &ts,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	parsed, err := parseDecimals(fields)
	if err != nil {
		return nil, err
	}
	snap.TotalValueLockedUSD = parsed[0]
	snap.DailyTotalRevenueUSD = parsed[1]
	snap.CumulativeTotalRevenueUSD = parsed[2]
	snap.DailyProtocolSideRevenueUSD = parsed[3]
	snap.CumulativeProtocolSideRevenueUSD = parsed[4]
	snap.DailySupplySideRevenueUSD = parsed[5]
	snap.CumulativeSupplySideRevenueUSD = parsed[6]
	snap.BlockNumber = uint64(blockNumber)
	snap.Timestamp = uint64(ts)
	return &snap, nil
}

func (s *Store) SaveFinancialsDaily(ctx context.Context, snap *model.FinancialsDailySnapshot) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO financials_daily_snapshots (
			id, protocol, total_value_locked_usd,
			daily_total_revenue_usd, cumulative_total_revenue_usd,
			daily_protocol_side_revenue_usd, cumulative_protocol_side_revenue_usd,
			daily_supply_side_revenue_usd, cumulative_supply_side_revenue_usd,
			block_number, ts, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now(),now())
		ON CONFLICT (id) DO UPDATE SET
			total_value_locked_usd = EXCLUDED.total_value_locked_usd,
			daily_total_revenue_usd = EXCLUDED.daily_total_revenue_usd,
			cumulative_total_revenue_usd = EXCLUDED.cumulative_total_revenue_usd,
			daily_protocol_side_revenue_usd = EXCLUDED.daily_protocol_side_revenue_usd,
			cumulative_protocol_side_revenue_usd = EXCLUDED.cumulative_protocol_side_revenue_usd,
			daily_supply_side_revenue_usd = EXCLUDED.daily_supply_side_revenue_usd,
			cumulative_supply_side_revenue_usd = EXCLUDED.cumulative_supply_side_revenue_usd,
			block_number = EXCLUDED.block_number,
			ts = EXCLUDED.ts,
			updated_at = now()
	`,
		snap.ID,
		snap.Protocol,
		snap.TotalValueLockedUSD.String(),
		snap.DailyTotalRevenueUSD.String(),
		snap.CumulativeTotalRevenueUSD.String(),
		snap.DailyProtocolSideRevenueUSD.String(),
		snap.CumulativeProtocolSideRevenueUSD.String(),
		snap.DailySupplySideRevenueUSD.String(),
		snap.CumulativeSupplySideRevenueUSD.String(),
		int64(snap.BlockNumber),
		int64(snap.Timestamp),
	)
	return err
}

func (s *Store) LoadPoolDaily(ctx context.Context, id string) (*model.PoolDailySnapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, protocol, pool, total_value_locked_usd,
			daily_total_revenue_usd, cumulative_total_revenue_usd,
			daily_protocol_side_revenue_usd, cumulative_protocol_side_revenue_usd,
			daily_supply_side_revenue_usd, cumulative_supply_side_revenue_usd,
			reward_token_balance, base_token_balance,
			output_token_supply, output_token_price_usd, staked_output_token_amount,
			reward_token_emissions_amount, reward_token_emissions_usd,
			block_number, ts
		FROM pool_daily_snapshots WHERE id=$1
	`, id)

	var snap model.PoolDailySnapshot
	common, err := scanPoolSnapshotRow(row, &snap.ID, &snap.Protocol, &snap.Pool)
	if err != nil {
		return nil, err
	}
	if common == nil {
		return nil, nil
	}
	snap.TotalValueLockedUSD = common.tvl
	snap.DailyTotalRevenueUSD = common.periodTotal
	snap.CumulativeTotalRevenueUSD = common.cumulativeTotal
	snap.DailyProtocolSideRevenueUSD = common.periodProtocol
	snap.CumulativeProtocolSideRevenueUSD = common.cumulativeProtocol
	snap.DailySupplySideRevenueUSD = common.periodSupply
	snap.CumulativeSupplySideRevenueUSD = common.cumulativeSupply
	snap.InputTokenBalances = common.balances
	snap.OutputTokenSupply = common.outputSupply
	snap.OutputTokenPriceUSD = common.outputPrice
	snap.StakedOutputTokenAmount = common.stakedOutput
	snap.RewardTokenEmissionsAmount = common.emissionsAmount
	snap.RewardTokenEmissionsUSD = common.emissionsUSD
	snap.BlockNumber = common.blockNumber
	snap.Timestamp = common.timestamp
	return &snap, nil
}

func (s *Store) SavePoolDaily(ctx context.Context, snap *model.PoolDailySnapshot) error {
	if len(snap.InputTokenBalances) != 2 || len(snap.RewardTokenEmissionsAmount) != 1 || len(snap.RewardTokenEmissionsUSD) != 1 {
		return fmt.Errorf("pool daily snapshot %s: malformed balance or emission slices", snap.ID)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pool_daily_snapshots (
			id, protocol, pool, total_value_locked_usd,
			daily_total_revenue_usd, cumulative_total_revenue_usd,
			daily_protocol_side_revenue_usd, cumulative_protocol_side_revenue_usd,
			daily_supply_side_revenue_usd, cumulative_supply_side_revenue_usd,
			reward_token_balance, base_token_balance,
			output_token_supply, output_token_price_usd, staked_output_token_amount,
			reward_token_emissions_amount, reward_token_emissions_usd,
			block_number, ts, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,now(),now())
		ON CONFLICT (id) DO UPDATE SET
			total_value_locked_usd = EXCLUDED.total_value_locked_usd,
			daily_total_revenue_usd = EXCLUDED.daily_total_revenue_usd,
			cumulative_total_revenue_usd = EXCLUDED.cumulative_total_revenue_usd,
			daily_protocol_side_revenue_usd = EXCLUDED.daily_protocol_side_revenue_usd,
			cumulative_protocol_side_revenue_usd = EXCLUDED.cumulative_protocol_side_revenue_usd,
			daily_supply_side_revenue_usd = EXCLUDED.daily_supply_side_revenue_usd,
			cumulative_supply_side_revenue_usd = EXCLUDED.cumulative_supply_side_revenue_usd,
			reward_token_balance = EXCLUDED.reward_token_balance,
			base_token_balance = EXCLUDED.base_token_balance,
			output_token_supply = EXCLUDED.output_token_supply,
			output_token_price_usd = EXCLUDED.output_token_price_usd,
			staked_output_token_amount = EXCLUDED.staked_output_token_amount,
			reward_token_emissions_amount = EXCLUDED.reward_token_emissions_amount,
			reward_token_emissions_usd = EXCLUDED.reward_token_emissions_usd,
			block_number = EXCLUDED.block_number,
			ts = EXCLUDED.ts,
			updated_at = now()
	`,
		snap.ID,
		snap.Protocol,
		snap.Pool,
		snap.TotalValueLockedUSD.String(),
		snap.DailyTotalRevenueUSD.String(),
		snap.CumulativeTotalRevenueUSD.String(),
		snap.DailyProtocolSideRevenueUSD.String(),
		snap.CumulativeProtocolSideRevenueUSD.String(),
		snap.DailySupplySideRevenueUSD.String(),
		snap.CumulativeSupplySideRevenueUSD.String(),
		bigIntString(snap.InputTokenBalances[model.BalanceSlotReward]),
		bigIntString(snap.InputTokenBalances[model.BalanceSlotBase]),
		bigIntString(snap.OutputTokenSupply),
		snap.OutputTokenPriceUSD.String(),
		bigIntString(snap.StakedOutputTokenAmount),
		bigIntString(snap.RewardTokenEmissionsAmount[0]),
		snap.RewardTokenEmissionsUSD[0].String(),
		int64(snap.BlockNumber),
		int64(snap.Timestamp),
	)
	return err
}

func (s *Store) LoadPoolHourly(ctx context.Context, id string) (*model.PoolHourlySnapshot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, protocol, pool, total_value_locked_usd,
			hourly_total_revenue_usd, cumulative_total_revenue_usd,
			hourly_protocol_side_revenue_usd, cumulative_protocol_side_revenue_usd,
			hourly_supply_side_revenue_usd, cumulative_supply_side_revenue_usd,
			reward_token_balance, base_token_balance,
			output_token_supply, output_token_price_usd, staked_output_token_amount,
			reward_token_emissions_amount, reward_token_emissions_usd,
			block_number, ts
		FROM pool_hourly_snapshots WHERE id=$1
	`, id)

	var snap model.PoolHourlySnapshot
	common, err := scanPoolSnapshotRow(row, &snap.ID, &snap.Protocol, &snap.Pool)
	if err != nil {
		return nil, err
	}
	if common == nil {
		return nil, nil
	}
	snap.TotalValueLockedUSD = common.tvl
	snap.HourlyTotalRevenueUSD = common.periodTotal
	snap.CumulativeTotalRevenueUSD = common.cumulativeTotal
	snap.HourlyProtocolSideRevenueUSD = common.periodProtocol
	snap.CumulativeProtocolSideRevenueUSD = common.cumulativeProtocol
	snap.HourlySupplySideRevenueUSD = common.periodSupply
	snap.CumulativeSupplySideRevenueUSD = common.cumulativeSupply
	snap.InputTokenBalances = common.balances
	snap.OutputTokenSupply = common.outputSupply
	snap.OutputTokenPriceUSD = common.outputPrice
	snap.StakedOutputTokenAmount = common.stakedOutput
	snap.RewardTokenEmissionsAmount = common.emissionsAmount
	snap.RewardTokenEmissionsUSD = common.emissionsUSD
	snap.BlockNumber = common.blockNumber
	snap.Timestamp = common.timestamp
	return &snap, nil
}

func (s *Store) SavePoolHourly(ctx context.Context, snap *model.PoolHourlySnapshot) error {
	if len(snap.InputTokenBalances) != 2 || len(snap.RewardTokenEmissionsAmount) != 1 || len(snap.RewardTokenEmissionsUSD) != 1 {
		return fmt.Errorf("pool hourly snapshot %s: malformed balance or emission slices", snap.ID)
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pool_hourly_snapshots (
			id, protocol, pool, total_value_locked_usd,
			hourly_total_revenue_usd, cumulative_total_revenue_usd,
			hourly_protocol_side_revenue_usd, cumulative_protocol_side_revenue_usd,
			hourly_supply_side_revenue_usd, cumulative_supply_side_revenue_usd,
			reward_token_balance, base_token_balance,
			output_token_supply, output_token_price_usd, staked_output_token_amount,
			reward_token_emissions_amount, reward_token_emissions_usd,
			block_number, ts, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,now(),now())
		ON CONFLICT (id) DO UPDATE SET
			total_value_locked_usd = EXCLUDED.total_value_locked_usd,
			hourly_total_revenue_usd = EXCLUDED.hourly_total_revenue_usd,
			cumulative_total_revenue_usd = EXCLUDED.cumulative_total_revenue_usd,
			hourly_protocol_side_revenue_usd = EXCLUDED.hourly_protocol_side_revenue_usd,
			cumulative_protocol_side_revenue_usd = EXCLUDED.cumulative_protocol_side_revenue_usd,
			hourly_supply_side_revenue_usd = EXCLUDED.hourly_supply_side_revenue_usd,
			cumulative_supply_side_revenue_usd = EXCLUDED.cumulative_supply_side_revenue_usd,
			reward_token_balance = EXCLUDED.reward_token_balance,
			base_token_balance = EXCLUDED.base_token_balance,
			output_token_supply = EXCLUDED.output_token_supply,
			output_token_price_usd = EXCLUDED.output_token_price_usd,
			staked_output_token_amount = EXCLUDED.staked_output_token_amount,
			reward_token_emissions_amount = EXCLUDED.reward_token_emissions_amount,
			reward_token_emissions_usd = EXCLUDED.reward_token_emissions_usd,
			block_number = EXCLUDED.block_number,
			ts = EXCLUDED.ts,
			updated_at = now()
	`,
		snap.ID,
		snap.Protocol,
		snap.Pool,
		snap.TotalValueLockedUSD.String(),
		snap.HourlyTotalRevenueUSD.String(),
		snap.CumulativeTotalRevenueUSD.String(),
		snap.HourlyProtocolSideRevenueUSD.String(),
		snap.CumulativeProtocolSideRevenueUSD.String(),
		snap.HourlySupplySideRevenueUSD.String(),
		snap.CumulativeSupplySideRevenueUSD.String(),
		bigIntString(snap.InputTokenBalances[model.BalanceSlotReward]),
		bigIntString(snap.InputTokenBalances[model.BalanceSlotBase]),
		bigIntString(snap.OutputTokenSupply),
		snap.OutputTokenPriceUSD.String(),
		bigIntString(snap.StakedOutputTokenAmount),
		bigIntString(snap.RewardTokenEmissionsAmount[0]),
		snap.RewardTokenEmissionsUSD[0].String(),
		int64(snap.BlockNumber),
		int64(snap.Timestamp),
	)
	return err
}

// LoadState returns last_processed_ts for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var ts int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_ts FROM pipeline_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(ts), true, nil
}

// SaveState upserts last_processed_ts for a name.
func (s *Store) SaveState(ctx context.Context, name string, ts uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pipeline_state (name, last_processed_ts, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_ts = EXCLUDED.last_processed_ts, updated_at = now()
	`, name, int64(ts))
	return err
}

type poolSnapshotRow struct {
	tvl                decimal.Decimal
	periodTotal        decimal.Decimal
	cumulativeTotal    decimal.Decimal
	periodProtocol     decimal.Decimal
	cumulativeProtocol decimal.Decimal
	periodSupply       decimal.Decimal
	cumulativeSupply   decimal.Decimal
	balances           []*big.Int
	outputSupply       *big.Int
	outputPrice        decimal.Decimal
	stakedOutput       *big.Int
	emissionsAmount    []*big.Int
	emissionsUSD       []decimal.Decimal
	blockNumber        uint64
	timestamp          uint64
}

// scanPoolSnapshotRow scans the shared column layout of the daily and hourly
// pool snapshot tables.
func scanPoolSnapshotRow(row pgx.Row, id, protocol, pool *string) (*poolSnapshotRow, error) {
	decimals := make([]string, 7)
	var rewardBal, baseBal, outputSupply, outputPrice, stakedOutput, emissionsAmount, emissionsUSD string
	var blockNumber, ts int64

	if err := row.Scan(
		id, protocol, pool, &decimals[0],
		&decimals[1], &decimals[2],
		&decimals[3], &decimals[4],
		&decimals[5], &decimals[6],
		&rewardBal, &baseBal,
		&outputSupply, &outputPrice, &stakedOutput,
		&emissionsAmount, &emissionsUSD,
		&blockNumber, &ts,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	parsed, err := parseDecimals(decimals)
	if err != nil {
		return nil, err
	}

	out := &poolSnapshotRow{
		tvl:                parsed[0],
		periodTotal:        parsed[1],
		cumulativeTotal:    parsed[2],
		periodProtocol:     parsed[3],
		cumulativeProtocol: parsed[4],
		periodSupply:       parsed[5],
		cumulativeSupply:   parsed[6],
		blockNumber:        uint64(blockNumber),
		timestamp:          uint64(ts),
	}

	reward, err := parseBigInt(rewardBal)
	if err != nil {
		return nil, err
	}
	base, err := parseBigInt(baseBal)
	if err != nil {
		return nil, err
	}
	out.balances = []*big.Int{reward, base}

	if out.outputSupply, err = parseBigInt(outputSupply); err != nil {
		return nil, err
	}
	if out.outputPrice, err = parseDecimal(outputPrice); err != nil {
		return nil, err
	}
	if out.stakedOutput, err = parseBigInt(stakedOutput); err != nil {
		return nil, err
	}

	emissionAmt, err := parseBigInt(emissionsAmount)
	if err != nil {
		return nil, err
	}
	out.emissionsAmount = []*big.Int{emissionAmt}

	emissionVal, err := parseDecimal(emissionsUSD)
	if err != nil {
		return nil, err
	}
	out.emissionsUSD = []decimal.Decimal{emissionVal}

	return out, nil
}

func parseDecimal(value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	parsed, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse decimal %q: %w", value, err)
	}
	return parsed, nil
}

func parseDecimals(values []string) ([]decimal.Decimal, error) {
	out := make([]decimal.Decimal, len(values))
	for i, value := range values {
		parsed, err := parseDecimal(value)
		if err != nil {
			return nil, err
		}
		out[i] = parsed
	}
	return out, nil
}

func parseBigInt(value string) (*big.Int, error) {
	if value == "" {
		return new(big.Int), nil
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return nil, fmt.Errorf("parse big int %q", value)
	}
	return parsed, nil
}

func bigIntString(value *big.Int) string {
	if value == nil {
		return "0"
	}
	return value.String()
}
