package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-desk/internal/model"
)

func newTestSQLite(t *testing.T) Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func newTestMemory(t *testing.T) Store {
	t.Helper()
	s := NewMemory()
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleDeal() model.Deal {
	return model.Deal{
		Name:               "Acme renewal FY26",
		Customer:           "Acme Corp",
		DealType:           "grow",
		SalesChannel:       "direct",
		TotalValue:         600000,
		DiscountPercentage: 5,
		ContractTermMonths: 12,
		Tiers: []model.DealTier{
			{TierNumber: 1, AnnualRevenue: 500000, AnnualGrossMargin: 0.30, IncentiveValue: 20000},
			{TierNumber: 2, AnnualRevenue: 850000, AnnualGrossMargin: 0.35, Incentives: []model.Incentive{
				{Category: "rebate", Value: 30000},
				{Category: "marketing", SubCategory: "co-op", Option: "q3", Value: 20000},
			}},
		},
	}
}

func storeTestSuite(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CreateAndGetDeal", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.CreateDeal(ctx, sampleDeal())
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, model.DealStatusDraft, created.Status)
		assert.False(t, created.CreatedAt.IsZero())

		got, err := s.GetDeal(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Acme Corp", got.Customer)
		require.Len(t, got.Tiers, 2)
		assert.InDelta(t, 850000, got.Tiers[1].AnnualRevenue, 0.01)
		require.Len(t, got.Tiers[1].Incentives, 2)
		assert.Equal(t, "co-op", got.Tiers[1].Incentives[1].SubCategory)
		assert.Nil(t, got.Approval)
	})

	t.Run("CreateDeals", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		batch := []model.Deal{sampleDeal(), sampleDeal(), sampleDeal()}
		batch[1].Customer = "Globex"
		batch[2].Status = model.DealStatusSubmitted

		n, err := s.CreateDeals(ctx, batch)
		require.NoError(t, err)
		assert.EqualValues(t, 3, n)

		// IDs and timestamps are assigned in place.
		for _, d := range batch {
			assert.NotEmpty(t, d.ID)
			assert.False(t, d.CreatedAt.IsZero())
		}

		deals, err := s.ListDeals(ctx, DealFilter{})
		require.NoError(t, err)
		assert.Len(t, deals, 3)

		got, err := s.GetDeal(ctx, batch[2].ID)
		require.NoError(t, err)
		assert.Equal(t, model.DealStatusSubmitted, got.Status)

		n, err = s.CreateDeals(ctx, nil)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("GetDealNotFound", func(t *testing.T) {
		s := newStore(t)

		_, err := s.GetDeal(context.Background(), "nonexistent-id")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdateDealStatus", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.CreateDeal(ctx, sampleDeal())
		require.NoError(t, err)

		require.NoError(t, s.UpdateDealStatus(ctx, created.ID, model.DealStatusSubmitted))

		got, err := s.GetDeal(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, model.DealStatusSubmitted, got.Status)
	})

	t.Run("UpdateDealStatusNotFound", func(t *testing.T) {
		s := newStore(t)

		err := s.UpdateDealStatus(context.Background(), "nonexistent-id", model.DealStatusSubmitted)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("UpdateDeal", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.CreateDeal(ctx, sampleDeal())
		require.NoError(t, err)

		created.TotalValue = 750000
		created.Tiers = model.NormalizeTiers(created.Tiers[:1])
		require.NoError(t, s.UpdateDeal(ctx, created))

		got, err := s.GetDeal(ctx, created.ID)
		require.NoError(t, err)
		assert.InDelta(t, 750000, got.TotalValue, 0.01)
		assert.Len(t, got.Tiers, 1)
	})

	t.Run("SetApproval", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.CreateDeal(ctx, sampleDeal())
		require.NoError(t, err)

		approval := &model.DealApproval{
			Level:    model.LevelSVP,
			Sequence: []model.ApproverLevel{model.LevelRegionalDirector, model.LevelFinance, model.LevelLegal, model.LevelExecutive},
			Message:  "Requires SVP of Sales approval",
			Severity: model.SeverityWarning,
		}
		require.NoError(t, s.SetApproval(ctx, created.ID, approval))

		got, err := s.GetDeal(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Approval)
		assert.Equal(t, model.LevelSVP, got.Approval.Level)
		assert.Len(t, got.Approval.Sequence, 4)
		assert.Equal(t, model.SeverityWarning, got.Approval.Severity)

		// Clearing works too.
		require.NoError(t, s.SetApproval(ctx, created.ID, nil))
		got, err = s.GetDeal(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Approval)
	})

	t.Run("DeleteDeal", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		created, err := s.CreateDeal(ctx, sampleDeal())
		require.NoError(t, err)

		require.NoError(t, s.DeleteDeal(ctx, created.ID))

		_, err = s.GetDeal(ctx, created.ID)
		assert.ErrorIs(t, err, ErrNotFound)

		assert.ErrorIs(t, s.DeleteDeal(ctx, created.ID), ErrNotFound)
	})

	t.Run("ListDealsFilters", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		first, err := s.CreateDeal(ctx, sampleDeal())
		require.NoError(t, err)

		other := sampleDeal()
		other.Customer = "Globex"
		second, err := s.CreateDeal(ctx, other)
		require.NoError(t, err)
		require.NoError(t, s.UpdateDealStatus(ctx, second.ID, model.DealStatusSubmitted))

		all, err := s.ListDeals(ctx, DealFilter{})
		require.NoError(t, err)
		assert.Len(t, all, 2)

		submitted, err := s.ListDeals(ctx, DealFilter{Status: model.DealStatusSubmitted})
		require.NoError(t, err)
		require.Len(t, submitted, 1)
		assert.Equal(t, second.ID, submitted[0].ID)

		acme, err := s.ListDeals(ctx, DealFilter{Customer: "acme corp"})
		require.NoError(t, err)
		require.Len(t, acme, 1)
		assert.Equal(t, first.ID, acme[0].ID)

		limited, err := s.ListDeals(ctx, DealFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		offset, err := s.ListDeals(ctx, DealFilter{Offset: 1})
		require.NoError(t, err)
		assert.Len(t, offset, 1)

		none, err := s.ListDeals(ctx, DealFilter{Customer: "Initech"})
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}

func TestMemoryStore(t *testing.T) {
	storeTestSuite(t, newTestMemory)
}

func TestSQLiteStore(t *testing.T) {
	storeTestSuite(t, newTestSQLite)
}

// The memory store hands back copies; mutating a returned deal must not
// leak into stored state.
func TestMemoryStoreIsolation(t *testing.T) {
	t.Parallel()
	s := NewMemory()
	ctx := context.Background()

	created, err := s.CreateDeal(ctx, sampleDeal())
	require.NoError(t, err)

	got, err := s.GetDeal(ctx, created.ID)
	require.NoError(t, err)
	got.Tiers[0].AnnualRevenue = -1
	got.Customer = "tampered"

	fresh, err := s.GetDeal(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", fresh.Customer)
	assert.InDelta(t, 500000, fresh.Tiers[0].AnnualRevenue, 0.01)
}
