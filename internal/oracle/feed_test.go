package oracle

import (
	"bytes"
	"context"
	"fmt"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/shopspring/decimal"
)

const (
	testToken = "0xAe78736Cd615f374D3085123A210448E74Fc6393"
	testFeed  = "0x536218f9E9Eb48863970252233c8F271f554C2d0"
)

// fakeCaller answers aggregator calls with canned ABI-encoded responses.
type fakeCaller struct {
	feedDecimals uint8
	answer       *big.Int

	decimalsCalls int
	roundCalls    int
	lastBlock     *big.Int
}

func (c *fakeCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	feedABI, err := getAggregatorABI()
	if err != nil {
		return nil, err
	}

	switch {
	case bytes.Equal(msg.Data, feedABI.Methods["decimals"].ID):
		c.decimalsCalls++
		return feedABI.Methods["decimals"].Outputs.Pack(c.feedDecimals)
	case bytes.Equal(msg.Data, feedABI.Methods["latestRoundData"].ID):
		c.roundCalls++
		c.lastBlock = blockNumber
		return feedABI.Methods["latestRoundData"].Outputs.Pack(
			big.NewInt(1), c.answer, big.NewInt(0), big.NewInt(0), big.NewInt(1),
		)
	default:
		return nil, fmt.Errorf("unexpected call data %x", msg.Data)
	}
}

func TestFeedOraclePriceScaling(t *testing.T) {
	caller := &fakeCaller{feedDecimals: 8, answer: big.NewInt(2000_00000000)}
	oracle, err := NewFeedOracle(caller, map[string]string{testToken: testFeed})
	if err != nil {
		t.Fatalf("NewFeedOracle failed: %v", err)
	}

	price, ok, err := oracle.PriceUSD(context.Background(), testToken, 19000000)
	if err != nil {
		t.Fatalf("PriceUSD failed: %v", err)
	}
	if !ok {
		t.Fatalf("expected a price")
	}
	if !price.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("price = %s, want 2000", price)
	}
	if caller.lastBlock == nil || caller.lastBlock.Uint64() != 19000000 {
		t.Fatalf("call block = %v, want 19000000", caller.lastBlock)
	}
}

func TestFeedOracleLookupIsCaseInsensitive(t *testing.T) {
	caller := &fakeCaller{feedDecimals: 8, answer: big.NewInt(100_00000000)}
	oracle, err := NewFeedOracle(caller, map[string]string{testToken: testFeed})
	if err != nil {
		t.Fatalf("NewFeedOracle failed: %v", err)
	}

	_, ok, err := oracle.PriceUSD(context.Background(), "0xae78736cd615f374d3085123a210448e74fc6393", 1)
	if err != nil {
		t.Fatalf("PriceUSD failed: %v", err)
	}
	if !ok {
		t.Fatalf("lowercased token not matched")
	}
}

func TestFeedOracleNoFeedConfigured(t *testing.T) {
	caller := &fakeCaller{feedDecimals: 8, answer: big.NewInt(1)}
	oracle, err := NewFeedOracle(caller, map[string]string{testToken: testFeed})
	if err != nil {
		t.Fatalf("NewFeedOracle failed: %v", err)
	}

	price, ok, err := oracle.PriceUSD(context.Background(), "0x0000000000000000000000000000000000000001", 1)
	if err != nil {
		t.Fatalf("PriceUSD failed: %v", err)
	}
	if ok {
		t.Fatalf("unexpected price %s for unconfigured token", price)
	}
	if caller.roundCalls != 0 {
		t.Fatalf("oracle called the chain for an unconfigured token")
	}
}

func TestFeedOracleNonPositiveAnswer(t *testing.T) {
	caller := &fakeCaller{feedDecimals: 8, answer: big.NewInt(-5)}
	oracle, err := NewFeedOracle(caller, map[string]string{testToken: testFeed})
	if err != nil {
		t.Fatalf("NewFeedOracle failed: %v", err)
	}

	_, ok, err := oracle.PriceUSD(context.Background(), testToken, 1)
	if err != nil {
		t.Fatalf("PriceUSD failed: %v", err)
	}
	if ok {
		t.Fatalf("negative answer reported as a price")
	}
}

func TestFeedOracleCachesPerBlock(t *testing.T) {
	caller := &fakeCaller{feedDecimals: 8, answer: big.NewInt(500_00000000)}
	oracle, err := NewFeedOracle(caller, map[string]string{testToken: testFeed})
	if err != nil {
		t.Fatalf("NewFeedOracle failed: %v", err)
	}
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, _, err := oracle.PriceUSD(ctx, testToken, 100); err != nil {
			t.Fatalf("PriceUSD failed: %v", err)
		}
	}
	if caller.roundCalls != 1 {
		t.Fatalf("round calls = %d, want 1 (cached per block)", caller.roundCalls)
	}
	if caller.decimalsCalls != 1 {
		t.Fatalf("decimals calls = %d, want 1", caller.decimalsCalls)
	}

	if _, _, err := oracle.PriceUSD(ctx, testToken, 200); err != nil {
		t.Fatalf("PriceUSD failed: %v", err)
	}
	if caller.roundCalls != 2 {
		t.Fatalf("round calls = %d, want 2 after new block", caller.roundCalls)
	}
}

func TestNewFeedOracleRejectsBadAddresses(t *testing.T) {
	if _, err := NewFeedOracle(&fakeCaller{}, map[string]string{testToken: "not-an-address"}); err == nil {
		t.Fatalf("expected error for invalid feed address")
	}
	if _, err := NewFeedOracle(nil, nil); err == nil {
		t.Fatalf("expected error for nil caller")
	}
}

func TestStaticOracle(t *testing.T) {
	oracle := NewStaticOracle(map[string]decimal.Decimal{
		testToken: decimal.NewFromInt(2000),
	})
	ctx := context.Background()

	price, ok, err := oracle.PriceUSD(ctx, "0xae78736cd615f374d3085123a210448e74fc6393", 1)
	if err != nil {
		t.Fatalf("PriceUSD failed: %v", err)
	}
	if !ok || !price.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("price = %s/%v, want 2000/true", price, ok)
	}

	_, ok, err = oracle.PriceUSD(ctx, "0x0000000000000000000000000000000000000001", 1)
	if err != nil {
		t.Fatalf("PriceUSD failed: %v", err)
	}
	if ok {
		t.Fatalf("unexpected price for unknown token")
	}

	oracle.SetPrice(testToken, decimal.NewFromInt(2100))
	price, _, err = oracle.PriceUSD(ctx, testToken, 2)
	if err != nil {
		t.Fatalf("PriceUSD failed: %v", err)
	}
	if !price.Equal(decimal.NewFromInt(2100)) {
		t.Fatalf("price after SetPrice = %s, want 2100", price)
	}
}
