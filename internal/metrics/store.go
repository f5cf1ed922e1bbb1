package metrics

import (
	"context"

	"stakemetrics/internal/model"
)

// RecordStore persists the aggregates and snapshots the engine maintains.
// Load methods return (nil, nil) when no record exists for the id; Save is
// an upsert of the whole record.
type RecordStore interface {
	LoadProtocol(ctx context.Context, id string) (*model.Protocol, error)
	SaveProtocol(ctx context.Context, protocol *model.Protocol) error

	LoadPool(ctx context.Context, id string) (*model.Pool, error)
	SavePool(ctx context.Context, pool *model.Pool) error

	LoadFinancialsDaily(ctx context.Context, id string) (*model.FinancialsDailySnapshot, error)
	SaveFinancialsDaily(ctx context.Context, snapshot *model.FinancialsDailySnapshot) error

	LoadPoolDaily(ctx context.Context, id string) (*model.PoolDailySnapshot, error)
	SavePoolDaily(ctx context.Context, snapshot *model.PoolDailySnapshot) error

	LoadPoolHourly(ctx context.Context, id string) (*model.PoolHourlySnapshot, error)
	SavePoolHourly(ctx context.Context, snapshot *model.PoolHourlySnapshot) error
}
