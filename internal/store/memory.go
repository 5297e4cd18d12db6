package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/deal-desk/internal/model"
)

// MemoryStore implements Store in process memory. It is the default for
// tests and quick local runs; nothing survives a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	deals map[string]model.Deal
}

// NewMemory creates an empty MemoryStore.
func NewMemory() *MemoryStore {
	return &MemoryStore{deals: make(map[string]model.Deal)}
}

func (s *MemoryStore) Migrate(ctx context.Context) error { return nil }

func (s *MemoryStore) Close() error { return nil }

func (s *MemoryStore) CreateDeal(ctx context.Context, deal model.Deal) (*model.Deal, error) {
	now := time.Now().UTC()
	deal.ID = uuid.New().String()
	if deal.Status == "" {
		deal.Status = model.DealStatusDraft
	}
	deal.CreatedAt = now
	deal.UpdatedAt = now

	s.mu.Lock()
	s.deals[deal.ID] = cloneDeal(deal)
	s.mu.Unlock()

	return &deal, nil
}

func (s *MemoryStore) CreateDeals(ctx context.Context, deals []model.Deal) (int64, error) {
	now := time.Now().UTC()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range deals {
		deals[i].ID = uuid.New().String()
		if deals[i].Status == "" {
			deals[i].Status = model.DealStatusDraft
		}
		deals[i].CreatedAt = now
		deals[i].UpdatedAt = now
		s.deals[deals[i].ID] = cloneDeal(deals[i])
	}
	return int64(len(deals)), nil
}

func (s *MemoryStore) GetDeal(ctx context.Context, dealID string) (*model.Deal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.deals[dealID]
	if !ok {
		return nil, ErrNotFound
	}
	out := cloneDeal(d)
	return &out, nil
}

func (s *MemoryStore) ListDeals(ctx context.Context, filter DealFilter) ([]model.Deal, error) {
	s.mu.RLock()
	var deals []model.Deal
	for _, d := range s.deals {
		if filter.Status != "" && d.Status != filter.Status {
			continue
		}
		if filter.Customer != "" && !strings.EqualFold(d.Customer, filter.Customer) {
			continue
		}
		deals = append(deals, cloneDeal(d))
	}
	s.mu.RUnlock()

	// Newest first, matching the SQL backends.
	sort.Slice(deals, func(i, j int) bool {
		if deals[i].CreatedAt.Equal(deals[j].CreatedAt) {
			return deals[i].ID > deals[j].ID
		}
		return deals[i].CreatedAt.After(deals[j].CreatedAt)
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(deals) {
			return nil, nil
		}
		deals = deals[filter.Offset:]
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	if len(deals) > limit {
		deals = deals[:limit]
	}
	return deals, nil
}

func (s *MemoryStore) UpdateDeal(ctx context.Context, deal *model.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.deals[deal.ID]
	if !ok {
		return ErrNotFound
	}
	updated := cloneDeal(*deal)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	s.deals[deal.ID] = updated
	deal.CreatedAt = updated.CreatedAt
	deal.UpdatedAt = updated.UpdatedAt
	return nil
}

func (s *MemoryStore) UpdateDealStatus(ctx context.Context, dealID string, status model.DealStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deals[dealID]
	if !ok {
		return ErrNotFound
	}
	d.Status = status
	d.UpdatedAt = time.Now().UTC()
	s.deals[dealID] = d
	return nil
}

func (s *MemoryStore) SetApproval(ctx context.Context, dealID string, approval *model.DealApproval) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.deals[dealID]
	if !ok {
		return ErrNotFound
	}
	if approval != nil {
		a := *approval
		a.Sequence = append([]model.ApproverLevel(nil), approval.Sequence...)
		d.Approval = &a
	} else {
		d.Approval = nil
	}
	d.UpdatedAt = time.Now().UTC()
	s.deals[dealID] = d
	return nil
}

func (s *MemoryStore) DeleteDeal(ctx context.Context, dealID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.deals[dealID]; !ok {
		return ErrNotFound
	}
	delete(s.deals, dealID)
	return nil
}

// cloneDeal copies the deal and its nested slices so callers never share
// memory with the store.
func cloneDeal(d model.Deal) model.Deal {
	out := d
	out.Tiers = make([]model.DealTier, len(d.Tiers))
	for i, t := range d.Tiers {
		out.Tiers[i] = t
		out.Tiers[i].Incentives = append([]model.Incentive(nil), t.Incentives...)
	}
	if d.Approval != nil {
		a := *d.Approval
		a.Sequence = append([]model.ApproverLevel(nil), d.Approval.Sequence...)
		out.Approval = &a
	}
	return out
}
