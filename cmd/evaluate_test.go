package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/deal-desk/internal/approval"
	"github.com/sells-group/deal-desk/internal/finance"
	"github.com/sells-group/deal-desk/internal/model"
)

func TestFormatEvaluation(t *testing.T) {
	deal := &model.Deal{
		Name:               "Acme renewal FY26",
		Customer:           "Acme Corp",
		TotalValue:         600000,
		DiscountPercentage: 5,
		ContractTermMonths: 12,
		Tiers: []model.DealTier{
			{TierNumber: 1, AnnualRevenue: 850000, AnnualGrossMargin: 0.35, IncentiveValue: 50000},
		},
	}

	resolver := approval.NewResolver(approval.DefaultMatrix())
	result := evaluation{
		Tiers:     finance.ComputeTierMetrics(deal.Tiers, nil),
		Aggregate: finance.ComputeAggregateMetrics(deal.Tiers),
		Decision:  resolver.Resolve(deal.Parameters()),
		Sequence: []model.ApproverLevel{
			model.LevelRegionalDirector, model.LevelFinance, model.LevelExecutive,
		},
	}

	var buf bytes.Buffer
	formatEvaluation(&buf, deal, result)

	output := buf.String()
	assert.Contains(t, output, "Acme renewal FY26")
	assert.Contains(t, output, "Acme Corp")
	assert.Contains(t, output, "TIER")
	assert.Contains(t, output, "297500.00")
	assert.Contains(t, output, "247500.00")
	assert.Contains(t, output, "Projected net value: 247500.00")
	assert.Contains(t, output, "Approval level: svp")
	assert.Contains(t, output, "Regional Director -> Finance -> Executive Committee")
}
