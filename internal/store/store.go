package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/deal-desk/internal/model"
)

// ErrNotFound is returned when a deal id does not exist.
var ErrNotFound = eris.New("deal not found")

// DealFilter specifies criteria for listing deals.
type DealFilter struct {
	Status   model.DealStatus `json:"status,omitempty"`
	Customer string           `json:"customer,omitempty"`
	Limit    int              `json:"limit,omitempty"`
	Offset   int              `json:"offset,omitempty"`
}

// Store defines the persistence interface for the deal desk.
type Store interface {
	// Deals
	CreateDeal(ctx context.Context, deal model.Deal) (*model.Deal, error)
	CreateDeals(ctx context.Context, deals []model.Deal) (int64, error)
	GetDeal(ctx context.Context, dealID string) (*model.Deal, error)
	ListDeals(ctx context.Context, filter DealFilter) ([]model.Deal, error)
	UpdateDeal(ctx context.Context, deal *model.Deal) error
	UpdateDealStatus(ctx context.Context, dealID string, status model.DealStatus) error
	SetApproval(ctx context.Context, dealID string, approval *model.DealApproval) error
	DeleteDeal(ctx context.Context, dealID string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
