package oracle

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const aggregatorABIJSON = `[
  {"inputs": [], "name": "latestRoundData", "outputs": [{"internalType": "uint80", "name": "roundId", "type": "uint80"}, {"internalType": "int256", "name": "answer", "type": "int256"}, {"internalType": "uint256", "name": "startedAt", "type": "uint256"}, {"internalType": "uint256", "name": "updatedAt", "type": "uint256"}, {"internalType": "uint80", "name": "answeredInRound", "type": "uint80"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "decimals", "outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}], "stateMutability": "view", "type": "function"}
]`

var (
	aggregatorABI    abi.ABI
	aggregatorOnce   sync.Once
	aggregatorABIErr error
)

func getAggregatorABI() (abi.ABI, error) {
	aggregatorOnce.Do(func() {
		aggregatorABI, aggregatorABIErr = abi.JSON(strings.NewReader(aggregatorABIJSON))
	})
	return aggregatorABI, aggregatorABIErr
}

// ContractCaller performs an eth_call at an optional block height.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

type priceKey struct {
	feed  common.Address
	block uint64
}

// FeedOracle reads token USD prices from Chainlink-style aggregator feeds.
// Tokens without a configured feed report no price.
type FeedOracle struct {
	caller ContractCaller
	feeds  map[string]common.Address

	mu       sync.RWMutex
	decimals map[common.Address]uint8
	prices   map[priceKey]decimal.Decimal
}

// NewFeedOracle builds an oracle from a token address to feed address map.
func NewFeedOracle(caller ContractCaller, feeds map[string]string) (*FeedOracle, error) {
	if caller == nil {
		return nil, fmt.Errorf("contract caller is nil")
	}
	parsed := make(map[string]common.Address, len(feeds))
	for token, feed := range feeds {
		if !common.IsHexAddress(feed) {
			return nil, fmt.Errorf("invalid feed address for token %s: %s", token, feed)
		}
		parsed[strings.ToLower(token)] = common.HexToAddress(feed)
	}
	return &FeedOracle{
		caller:   caller,
		feeds:    parsed,
		decimals: make(map[common.Address]uint8),
		prices:   make(map[priceKey]decimal.Decimal),
	}, nil
}

// PriceUSD returns the feed answer for the token at the block height, scaled
// by the feed's decimals. ok is false when the token has no configured feed
// or the feed reports a non-positive answer.
func (o *FeedOracle) PriceUSD(ctx context.Context, token string, blockNumber uint64) (decimal.Decimal, bool, error) {
	feed, configured := o.feeds[strings.ToLower(token)]
	if !configured {
		return decimal.Zero, false, nil
	}

	key := priceKey{feed: feed, block: blockNumber}
	o.mu.RLock()
	price, cached := o.prices[key]
	o.mu.RUnlock()
	if cached {
		return price, true, nil
	}

	feedDecimals, err := o.feedDecimals(ctx, feed)
	if err != nil {
		return decimal.Zero, false, err
	}

	answer, err := o.latestAnswer(ctx, feed, blockNumber)
	if err != nil {
		return decimal.Zero, false, err
	}
	if answer.Sign() <= 0 {
		return decimal.Zero, false, nil
	}

	price = decimal.NewFromBigInt(answer, -int32(feedDecimals))
	o.mu.Lock()
	o.prices[key] = price
	o.mu.Unlock()
	return price, true, nil
}

func (o *FeedOracle) feedDecimals(ctx context.Context, feed common.Address) (uint8, error) {
	o.mu.RLock()
	cached, ok := o.decimals[feed]
	o.mu.RUnlock()
	if ok {
		return cached, nil
	}

	feedABI, err := getAggregatorABI()
	if err != nil {
		return 0, err
	}

	data, err := feedABI.Pack("decimals")
	if err != nil {
		return 0, fmt.Errorf("pack decimals: %w", err)
	}

	resp, err := o.caller.CallContract(ctx, ethereum.CallMsg{To: &feed, Data: data}, nil)
	if err != nil {
		return 0, fmt.Errorf("call decimals: %w", err)
	}

	values, err := feedABI.Unpack("decimals", resp)
	if err != nil {
		return 0, fmt.Errorf("unpack decimals: %w", err)
	}
	if len(values) != 1 {
		return 0, fmt.Errorf("decimals return size %d", len(values))
	}
	feedDecimals, ok := values[0].(uint8)
	if !ok {
		return 0, fmt.Errorf("decimals unexpected type %T", values[0])
	}

	o.mu.Lock()
	o.decimals[feed] = feedDecimals
	o.mu.Unlock()
	return feedDecimals, nil
}

func (o *FeedOracle) latestAnswer(ctx context.Context, feed common.Address, blockNumber uint64) (*big.Int, error) {
	feedABI, err := getAggregatorABI()
	if err != nil {
		return nil, err
	}

	data, err := feedABI.Pack("latestRoundData")
	if err != nil {
		return nil, fmt.Errorf("pack latestRoundData: %w", err)
	}

	var blockPtr *big.Int
	if blockNumber > 0 {
		blockPtr = new(big.Int).SetUint64(blockNumber)
	}

	resp, err := o.caller.CallContract(ctx, ethereum.CallMsg{To: &feed, Data: data}, blockPtr)
	if err != nil {
		return nil, fmt.Errorf("call latestRoundData: %w", err)
	}

	values, err := feedABI.Unpack("latestRoundData", resp)
	if err != nil {
		return nil, fmt.Errorf("unpack latestRoundData: %w", err)
	}
	if len(values) != 5 {
		return nil, fmt.Errorf("latestRoundData return size %d", len(values))
	}
	answer, ok := values[1].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("latestRoundData unexpected answer type %T", values[1])
	}
	return answer, nil
}
