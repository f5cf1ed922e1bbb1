package metrics

import (
	"context"
	"fmt"
	"math/big"

	"stakemetrics/internal/model"
)

// getOrCreateProtocol returns the singleton protocol aggregate, creating it
// with zeroed fields on first access.
func (e *Engine) getOrCreateProtocol(ctx context.Context) (*model.Protocol, error) {
	protocol, err := e.store.LoadProtocol(ctx, e.tokens.OutputToken)
	if err != nil {
		return nil, fmt.Errorf("load protocol: %w", err)
	}
	if protocol != nil {
		return protocol, nil
	}

	protocol = &model.Protocol{ID: e.tokens.OutputToken}
	if err := e.store.SaveProtocol(ctx, protocol); err != nil {
		return nil, fmt.Errorf("save protocol: %w", err)
	}
	return protocol, nil
}

// getOrCreatePool returns the singleton pool aggregate, creating it with
// zeroed balances on first access. The creation block is recorded once; the
// id stays stable afterwards.
func (e *Engine) getOrCreatePool(ctx context.Context, blk model.Block) (*model.Pool, error) {
	pool, err := e.store.LoadPool(ctx, e.tokens.OutputToken)
	if err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}
	if pool != nil {
		if len(pool.InputTokenBalances) != 2 {
			return nil, &MalformedAggregateError{
				Kind:   "pool",
				ID:     pool.ID,
				Reason: fmt.Sprintf("input token balances must have length 2, got %d", len(pool.InputTokenBalances)),
			}
		}
		if pool.OutputTokenSupply == nil {
			pool.OutputTokenSupply = new(big.Int)
		}
		return pool, nil
	}

	pool = &model.Pool{
		ID:                 e.tokens.OutputToken,
		CreatedBlockNumber: blk.Number,
		CreatedTimestamp:   blk.Timestamp,
		InputTokenBalances: []*big.Int{new(big.Int), new(big.Int)},
		OutputTokenSupply:  new(big.Int),
	}
	if err := e.store.SavePool(ctx, pool); err != nil {
		return nil, fmt.Errorf("save pool: %w", err)
	}
	return pool, nil
}
