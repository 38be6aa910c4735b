package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

type MemoryRepo struct {
	mu     sync.RWMutex
	nextID atomic.Int64
	items  map[int64]Scenario
}

var _ Repo = (*MemoryRepo)(nil)

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{items: map[int64]Scenario{}}
}

func (r *MemoryRepo) Save(ctx context.Context, sc Scenario) (Scenario, error) {
	if err := ctx.Err(); err != nil {
		return Scenario{}, err
	}
	sc, err := Validate(sc)
	if err != nil {
		return Scenario{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	sc.ID = r.nextID.Add(1)
	sc.Attacks = cloneAttacks(sc.Attacks)
	r.items[sc.ID] = sc
	return sc, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id int64) (Scenario, error) {
	if err := ctx.Err(); err != nil {
		return Scenario{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	sc, ok := r.items[id]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	sc.Attacks = cloneAttacks(sc.Attacks)
	return sc, nil
}

func (r *MemoryRepo) List(ctx context.Context) ([]Scenario, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Scenario, 0, len(r.items))
	for _, sc := range r.items {
		sc.Attacks = cloneAttacks(sc.Attacks)
		out = append(out, sc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	delete(r.items, id)
	return nil
}
