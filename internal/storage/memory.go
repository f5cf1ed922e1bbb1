package storage

import (
	"context"
	"sync"

	"stakemetrics/internal/model"
)

// MemoryStore is a map-backed record store. Records are deep-copied on both
// save and load so callers never share state with the store, matching the
// isolation a real database gives.
type MemoryStore struct {
	mu         sync.RWMutex
	protocols  map[string]*model.Protocol
	pools      map[string]*model.Pool
	financials map[string]*model.FinancialsDailySnapshot
	poolDaily  map[string]*model.PoolDailySnapshot
	poolHourly map[string]*model.PoolHourlySnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		protocols:  make(map[string]*model.Protocol),
		pools:      make(map[string]*model.Pool),
		financials: make(map[string]*model.FinancialsDailySnapshot),
		poolDaily:  make(map[string]*model.PoolDailySnapshot),
		poolHourly: make(map[string]*model.PoolHourlySnapshot),
	}
}

func (s *MemoryStore) LoadProtocol(ctx context.Context, id string) (*model.Protocol, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.protocols[id].Clone(), nil
}

func (s *MemoryStore) SaveProtocol(ctx context.Context, protocol *model.Protocol) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.protocols[protocol.ID] = protocol.Clone()
	return nil
}

func (s *MemoryStore) LoadPool(ctx context.Context, id string) (*model.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pools[id].Clone(), nil
}

func (s *MemoryStore) SavePool(ctx context.Context, pool *model.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pools[pool.ID] = pool.Clone()
	return nil
}

func (s *MemoryStore) LoadFinancialsDaily(ctx context.Context, id string) (*model.FinancialsDailySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.financials[id].Clone(), nil
}

func (s *MemoryStore) SaveFinancialsDaily(ctx context.Context, snapshot *model.FinancialsDailySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.financials[snapshot.ID] = snapshot.Clone()
	return nil
}

func (s *MemoryStore) LoadPoolDaily(ctx context.Context, id string) (*model.PoolDailySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.poolDaily[id].Clone(), nil
}

func (s *MemoryStore) SavePoolDaily(ctx context.Context, snapshot *model.PoolDailySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poolDaily[snapshot.ID] = snapshot.Clone()
	return nil
}

func (s *MemoryStore) LoadPoolHourly(ctx context.Context, id string) (*model.PoolHourlySnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.poolHourly[id].Clone(), nil
}

func (s *MemoryStore) SavePoolHourly(ctx context.Context, snapshot *model.PoolHourlySnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poolHourly[snapshot.ID] = snapshot.Clone()
	return nil
}

// CountFinancialsDaily returns the number of financials snapshot rows.
func (s *MemoryStore) CountFinancialsDaily() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.financials)
}

// CountPoolDaily returns the number of daily pool snapshot rows.
func (s *MemoryStore) CountPoolDaily() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.poolDaily)
}

// CountPoolHourly returns the number of hourly pool snapshot rows.
func (s *MemoryStore) CountPoolHourly() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.poolHourly)
}
