package metrics

import (
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"

	"stakemetrics/internal/model"
	"stakemetrics/internal/oracle"
	"stakemetrics/internal/storage"
)

const (
	testBaseToken   = "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"
	testRewardToken = "0xd33526068d116ce69f19a9ee46f0bd304f21a51f"
	testOutputToken = "0xae78736cd615f374d3085123a210448e74fc6393"
)

func newTestEngine(t *testing.T) (*Engine, *storage.MemoryStore, *oracle.StaticOracle) {
	t.Helper()
	store := storage.NewMemoryStore()
	prices := oracle.NewStaticOracle(map[string]decimal.Decimal{
		testBaseToken:   decimal.NewFromInt(2000),
		testRewardToken: decimal.NewFromInt(20),
		testOutputToken: decimal.RequireFromString("1.05"),
	})
	engine := NewEngine(store, prices, TokenConfig{
		BaseToken:      testBaseToken,
		BaseDecimals:   18,
		RewardToken:    testRewardToken,
		RewardDecimals: 18,
		OutputToken:    testOutputToken,
	}, nil)
	return engine, store, prices
}

// raw returns n whole tokens scaled to 18 decimals.
func raw(n int64) *big.Int {
	scale := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	return new(big.Int).Mul(big.NewInt(n), scale)
}

func TestUpdateTVLComputesPoolAndProtocolTVL(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	blk := model.Block{Number: 100, Timestamp: 0}
	if err := engine.UpdateTVL(ctx, blk, raw(100), raw(10)); err != nil {
		t.Fatalf("UpdateTVL failed: %v", err)
	}

	pool, err := store.LoadPool(ctx, testOutputToken)
	if err != nil {
		t.Fatalf("load pool: %v", err)
	}
	want := decimal.NewFromInt(200200)
	if !pool.TotalValueLockedUSD.Equal(want) {
		t.Fatalf("pool TVL = %s, want %s", pool.TotalValueLockedUSD, want)
	}
	if pool.InputTokenBalances[model.BalanceSlotReward].Cmp(raw(10)) != 0 {
		t.Fatalf("reward balance = %s, want %s", pool.InputTokenBalances[model.BalanceSlotReward], raw(10))
	}
	if pool.InputTokenBalances[model.BalanceSlotBase].Cmp(raw(100)) != 0 {
		t.Fatalf("base balance = %s, want %s", pool.InputTokenBalances[model.BalanceSlotBase], raw(100))
	}

	protocol, err := store.LoadProtocol(ctx, testOutputToken)
	if err != nil {
		t.Fatalf("load protocol: %v", err)
	}
	if !protocol.TotalValueLockedUSD.Equal(want) {
		t.Fatalf("protocol TVL = %s, want %s", protocol.TotalValueLockedUSD, want)
	}

	// TVL updates never touch snapshots on their own.
	if store.CountFinancialsDaily() != 0 || store.CountPoolDaily() != 0 || store.CountPoolHourly() != 0 {
		t.Fatalf("snapshots created by UpdateTVL")
	}
}

func TestUpdateTVLBalanceAccumulation(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	deposits := []struct {
		base   int64
		reward int64
	}{
		{100, 10},
		{50, 0},
		{0, 5},
		{25, 25},
	}
	for i, d := range deposits {
		blk := model.Block{Number: uint64(100 + i), Timestamp: uint64(i * 100)}
		if err := engine.UpdateTVL(ctx, blk, raw(d.base), raw(d.reward)); err != nil {
			t.Fatalf("UpdateTVL %d failed: %v", i, err)
		}
	}

	pool, err := store.LoadPool(ctx, testOutputToken)
	if err != nil {
		t.Fatalf("load pool: %v", err)
	}
	if pool.InputTokenBalances[model.BalanceSlotReward].Cmp(raw(40)) != 0 {
		t.Fatalf("reward balance = %s, want %s", pool.InputTokenBalances[model.BalanceSlotReward], raw(40))
	}
	if pool.InputTokenBalances[model.BalanceSlotBase].Cmp(raw(175)) != 0 {
		t.Fatalf("base balance = %s, want %s", pool.InputTokenBalances[model.BalanceSlotBase], raw(175))
	}
}

func TestPropagateTVLWritesSnapshots(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	blk := model.Block{Number: 100, Timestamp: 0}
	if err := engine.UpdateTVL(ctx, blk, raw(100), raw(10)); err != nil {
		t.Fatalf("UpdateTVL failed: %v", err)
	}
	if err := engine.PropagateTVL(ctx, blk); err != nil {
		t.Fatalf("PropagateTVL failed: %v", err)
	}

	want := decimal.NewFromInt(200200)

	daily, err := store.LoadPoolDaily(ctx, "0")
	if err != nil {
		t.Fatalf("load pool daily: %v", err)
	}
	if daily == nil || !daily.TotalValueLockedUSD.Equal(want) {
		t.Fatalf("pool daily snapshot TVL mismatch: %+v", daily)
	}
	if daily.InputTokenBalances[model.BalanceSlotBase].Cmp(raw(100)) != 0 {
		t.Fatalf("pool daily base balance mismatch")
	}

	hourly, err := store.LoadPoolHourly(ctx, "0")
	if err != nil {
		t.Fatalf("load pool hourly: %v", err)
	}
	if hourly == nil || !hourly.TotalValueLockedUSD.Equal(want) {
		t.Fatalf("pool hourly snapshot TVL mismatch: %+v", hourly)
	}

	financials, err := store.LoadFinancialsDaily(ctx, "0")
	if err != nil {
		t.Fatalf("load financials: %v", err)
	}
	if financials == nil || !financials.TotalValueLockedUSD.Equal(want) {
		t.Fatalf("financials snapshot TVL mismatch: %+v", financials)
	}
}

func TestPropagateTVLSameDayNewHour(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	first := model.Block{Number: 100, Timestamp: 0}
	if err := engine.UpdateTVL(ctx, first, raw(100), raw(10)); err != nil {
		t.Fatalf("UpdateTVL failed: %v", err)
	}
	if err := engine.PropagateTVL(ctx, first); err != nil {
		t.Fatalf("PropagateTVL failed: %v", err)
	}

	second := model.Block{Number: 200, Timestamp: 50000}
	if err := engine.UpdateTVL(ctx, second, raw(50), new(big.Int)); err != nil {
		t.Fatalf("second UpdateTVL failed: %v", err)
	}
	if err := engine.PropagateTVL(ctx, second); err != nil {
		t.Fatalf("second PropagateTVL failed: %v", err)
	}

	// Same day updated in place, new hour bucket created.
	if got := store.CountFinancialsDaily(); got != 1 {
		t.Fatalf("financials snapshots = %d, want 1", got)
	}
	if got := store.CountPoolDaily(); got != 1 {
		t.Fatalf("pool daily snapshots = %d, want 1", got)
	}
	if got := store.CountPoolHourly(); got != 2 {
		t.Fatalf("pool hourly snapshots = %d, want 2", got)
	}

	want := decimal.NewFromInt(300200)
	daily, err := store.LoadPoolDaily(ctx, "0")
	if err != nil {
		t.Fatalf("load pool daily: %v", err)
	}
	if !daily.TotalValueLockedUSD.Equal(want) {
		t.Fatalf("pool daily TVL = %s, want %s", daily.TotalValueLockedUSD, want)
	}
	if daily.BlockNumber != 200 || daily.Timestamp != 50000 {
		t.Fatalf("pool daily block metadata not last-write-wins: %d/%d", daily.BlockNumber, daily.Timestamp)
	}

	hourly, err := store.LoadPoolHourly(ctx, "13")
	if err != nil {
		t.Fatalf("load pool hourly: %v", err)
	}
	if hourly == nil {
		t.Fatalf("hour-13 snapshot missing")
	}
	if !hourly.TotalValueLockedUSD.Equal(want) {
		t.Fatalf("pool hourly TVL = %s, want %s", hourly.TotalValueLockedUSD, want)
	}
}

func TestUpdateTotalRevenueAdditiveWithinBucket(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	blk := model.Block{Number: 100, Timestamp: 1000}
	if err := engine.UpdateTotalRevenue(ctx, blk, decimal.NewFromInt(10), raw(5), raw(100)); err != nil {
		t.Fatalf("first UpdateTotalRevenue failed: %v", err)
	}
	blk = model.Block{Number: 101, Timestamp: 2000}
	if err := engine.UpdateTotalRevenue(ctx, blk, decimal.NewFromInt(5), raw(5), raw(110)); err != nil {
		t.Fatalf("second UpdateTotalRevenue failed: %v", err)
	}

	want := decimal.NewFromInt(15)

	pool, err := store.LoadPool(ctx, testOutputToken)
	if err != nil {
		t.Fatalf("load pool: %v", err)
	}
	if !pool.CumulativeTotalRevenueUSD.Equal(want) {
		t.Fatalf("pool cumulative total revenue = %s, want %s", pool.CumulativeTotalRevenueUSD, want)
	}
	if pool.OutputTokenSupply.Cmp(raw(110)) != 0 {
		t.Fatalf("output token supply = %s, want %s", pool.OutputTokenSupply, raw(110))
	}
	if !pool.OutputTokenPriceUSD.Equal(decimal.RequireFromString("1.05")) {
		t.Fatalf("output token price = %s, want 1.05", pool.OutputTokenPriceUSD)
	}

	daily, err := store.LoadPoolDaily(ctx, "0")
	if err != nil {
		t.Fatalf("load pool daily: %v", err)
	}
	if !daily.DailyTotalRevenueUSD.Equal(want) {
		t.Fatalf("daily total revenue = %s, want %s", daily.DailyTotalRevenueUSD, want)
	}

	hourly, err := store.LoadPoolHourly(ctx, "0")
	if err != nil {
		t.Fatalf("load pool hourly: %v", err)
	}
	if !hourly.HourlyTotalRevenueUSD.Equal(want) {
		t.Fatalf("hourly total revenue = %s, want %s", hourly.HourlyTotalRevenueUSD, want)
	}

	financials, err := store.LoadFinancialsDaily(ctx, "0")
	if err != nil {
		t.Fatalf("load financials: %v", err)
	}
	if !financials.DailyTotalRevenueUSD.Equal(want) {
		t.Fatalf("financials daily total revenue = %s, want %s", financials.DailyTotalRevenueUSD, want)
	}

	protocol, err := store.LoadProtocol(ctx, testOutputToken)
	if err != nil {
		t.Fatalf("load protocol: %v", err)
	}
	if !protocol.CumulativeTotalRevenueUSD.Equal(want) {
		t.Fatalf("protocol cumulative total revenue = %s, want %s", protocol.CumulativeTotalRevenueUSD, want)
	}
}

func TestEmissionRecomputeUsesLatestPrice(t *testing.T) {
	engine, store, prices := newTestEngine(t)
	ctx := context.Background()

	blk := model.Block{Number: 100, Timestamp: 1000}
	if err := engine.UpdateTotalRevenue(ctx, blk, decimal.Zero, raw(5), raw(100)); err != nil {
		t.Fatalf("first UpdateTotalRevenue failed: %v", err)
	}

	prices.SetPrice(testRewardToken, decimal.NewFromInt(30))

	blk = model.Block{Number: 101, Timestamp: 2000}
	if err := engine.UpdateTotalRevenue(ctx, blk, decimal.Zero, raw(5), raw(100)); err != nil {
		t.Fatalf("second UpdateTotalRevenue failed: %v", err)
	}

	daily, err := store.LoadPoolDaily(ctx, "0")
	if err != nil {
		t.Fatalf("load pool daily: %v", err)
	}
	if daily.RewardTokenEmissionsAmount[0].Cmp(raw(10)) != 0 {
		t.Fatalf("emissions amount = %s, want %s", daily.RewardTokenEmissionsAmount[0], raw(10))
	}
	// 10 tokens at the latest price only, not 5*20 + 5*30.
	want := decimal.NewFromInt(300)
	if !daily.RewardTokenEmissionsUSD[0].Equal(want) {
		t.Fatalf("emissions USD = %s, want %s", daily.RewardTokenEmissionsUSD[0], want)
	}
}

func TestSupplySideRevenueClamped(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	blk := model.Block{Number: 100, Timestamp: 1000}
	if err := engine.UpdateTotalRevenue(ctx, blk, decimal.NewFromInt(10), new(big.Int), raw(100)); err != nil {
		t.Fatalf("UpdateTotalRevenue failed: %v", err)
	}
	if err := engine.UpdateProtocolSideRevenue(ctx, blk, decimal.NewFromInt(4)); err != nil {
		t.Fatalf("UpdateProtocolSideRevenue failed: %v", err)
	}
	if err := engine.UpdateSupplySideRevenue(ctx, blk); err != nil {
		t.Fatalf("UpdateSupplySideRevenue failed: %v", err)
	}

	pool, err := store.LoadPool(ctx, testOutputToken)
	if err != nil {
		t.Fatalf("load pool: %v", err)
	}
	if !pool.CumulativeSupplySideRevenueUSD.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("supply side revenue = %s, want 6", pool.CumulativeSupplySideRevenueUSD)
	}

	daily, err := store.LoadPoolDaily(ctx, "0")
	if err != nil {
		t.Fatalf("load pool daily: %v", err)
	}
	if !daily.DailySupplySideRevenueUSD.Equal(decimal.NewFromInt(6)) {
		t.Fatalf("daily supply side revenue = %s, want 6", daily.DailySupplySideRevenueUSD)
	}

	// Push protocol side above total; the derived figure clamps at zero.
	if err := engine.UpdateProtocolSideRevenue(ctx, blk, decimal.NewFromInt(10)); err != nil {
		t.Fatalf("second UpdateProtocolSideRevenue failed: %v", err)
	}
	if err := engine.UpdateSupplySideRevenue(ctx, blk); err != nil {
		t.Fatalf("second UpdateSupplySideRevenue failed: %v", err)
	}

	pool, err = store.LoadPool(ctx, testOutputToken)
	if err != nil {
		t.Fatalf("load pool: %v", err)
	}
	if !pool.CumulativeSupplySideRevenueUSD.IsZero() {
		t.Fatalf("supply side revenue = %s, want 0", pool.CumulativeSupplySideRevenueUSD)
	}

	financials, err := store.LoadFinancialsDaily(ctx, "0")
	if err != nil {
		t.Fatalf("load financials: %v", err)
	}
	if !financials.DailySupplySideRevenueUSD.IsZero() {
		t.Fatalf("financials daily supply side revenue = %s, want 0", financials.DailySupplySideRevenueUSD)
	}
}

func TestCrossDayRolloverSeedsNewSnapshot(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	dayZero := model.Block{Number: 100, Timestamp: 1000}
	if err := engine.UpdateTotalRevenue(ctx, dayZero, decimal.NewFromInt(10), new(big.Int), raw(100)); err != nil {
		t.Fatalf("day-0 UpdateTotalRevenue failed: %v", err)
	}

	dayOne := model.Block{Number: 200, Timestamp: 86400}
	if err := engine.UpdateTotalRevenue(ctx, dayOne, decimal.NewFromInt(3), new(big.Int), raw(100)); err != nil {
		t.Fatalf("day-1 UpdateTotalRevenue failed: %v", err)
	}

	first, err := store.LoadFinancialsDaily(ctx, "0")
	if err != nil {
		t.Fatalf("load day-0 financials: %v", err)
	}
	if !first.DailyTotalRevenueUSD.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("day-0 delta = %s, want 10", first.DailyTotalRevenueUSD)
	}

	second, err := store.LoadFinancialsDaily(ctx, "1")
	if err != nil {
		t.Fatalf("load day-1 financials: %v", err)
	}
	if second == nil {
		t.Fatalf("day-1 snapshot missing")
	}
	if !second.DailyTotalRevenueUSD.Equal(decimal.NewFromInt(3)) {
		t.Fatalf("day-1 delta = %s, want 3", second.DailyTotalRevenueUSD)
	}
	if !second.CumulativeTotalRevenueUSD.Equal(decimal.NewFromInt(13)) {
		t.Fatalf("day-1 cumulative = %s, want 13", second.CumulativeTotalRevenueUSD)
	}
}

func TestMissingPriceAbortsWithoutWrites(t *testing.T) {
	store := storage.NewMemoryStore()
	prices := oracle.NewStaticOracle(map[string]decimal.Decimal{
		testRewardToken: decimal.NewFromInt(20),
	})
	engine := NewEngine(store, prices, TokenConfig{
		BaseToken:      testBaseToken,
		BaseDecimals:   18,
		RewardToken:    testRewardToken,
		RewardDecimals: 18,
		OutputToken:    testOutputToken,
	}, nil)
	ctx := context.Background()

	err := engine.UpdateTVL(ctx, model.Block{Number: 100, Timestamp: 0}, raw(100), raw(10))
	var missing *MissingPriceError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingPriceError, got %v", err)
	}
	if missing.Token != testBaseToken {
		t.Fatalf("missing token = %s, want %s", missing.Token, testBaseToken)
	}

	pool, loadErr := store.LoadPool(ctx, testOutputToken)
	if loadErr != nil {
		t.Fatalf("load pool: %v", loadErr)
	}
	if pool != nil {
		t.Fatalf("pool persisted despite missing price")
	}
}

func TestMalformedPoolBalancesRejected(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	if err := store.SavePool(ctx, &model.Pool{
		ID:                 testOutputToken,
		InputTokenBalances: []*big.Int{big.NewInt(1)},
	}); err != nil {
		t.Fatalf("seed pool: %v", err)
	}

	err := engine.UpdateTVL(ctx, model.Block{Number: 100, Timestamp: 0}, raw(1), new(big.Int))
	var malformed *MalformedAggregateError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedAggregateError, got %v", err)
	}
}

func TestSnapshotCreationIdempotent(t *testing.T) {
	engine, store, _ := newTestEngine(t)
	ctx := context.Background()

	if err := engine.PropagateTVL(ctx, model.Block{Number: 100, Timestamp: 1000}); err != nil {
		t.Fatalf("first PropagateTVL failed: %v", err)
	}
	if err := engine.PropagateTVL(ctx, model.Block{Number: 105, Timestamp: 2000}); err != nil {
		t.Fatalf("second PropagateTVL failed: %v", err)
	}

	if got := store.CountFinancialsDaily(); got != 1 {
		t.Fatalf("financials snapshots = %d, want 1", got)
	}
	if got := store.CountPoolDaily(); got != 1 {
		t.Fatalf("pool daily snapshots = %d, want 1", got)
	}
	if got := store.CountPoolHourly(); got != 1 {
		t.Fatalf("pool hourly snapshots = %d, want 1", got)
	}

	financials, err := store.LoadFinancialsDaily(ctx, "0")
	if err != nil {
		t.Fatalf("load financials: %v", err)
	}
	if financials.BlockNumber != 105 || financials.Timestamp != 2000 {
		t.Fatalf("financials block metadata = %d/%d, want 105/2000", financials.BlockNumber, financials.Timestamp)
	}
}
