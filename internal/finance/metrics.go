// Package finance computes derived financial metrics for tiered deals.
//
// Every function here is pure and never-failing: missing numeric inputs are
// treated as 0 and divide-by-zero guards return 0, so no operation produces
// NaN, Inf, or a panic regardless of input.
package finance

import "github.com/sells-group/deal-desk/internal/model"

// TierMetrics holds the derived values for a single deal tier.
type TierMetrics struct {
	TierNumber          int     `json:"tier_number"`
	AnnualRevenue       float64 `json:"annual_revenue"`
	GrossProfit         float64 `json:"gross_profit"`
	IncentiveCost       float64 `json:"incentive_cost"`
	AdjustedGrossProfit float64 `json:"adjusted_gross_profit"`
	AdjustedGrossMargin float64 `json:"adjusted_gross_margin"`
	RevenueGrowth       float64 `json:"revenue_growth,omitempty"`
	MarginGrowth        float64 `json:"margin_growth,omitempty"`
	ProfitGrowth        float64 `json:"profit_growth,omitempty"`
	IncentiveGrowth     float64 `json:"incentive_growth,omitempty"`
}

// AggregateMetrics holds totals across all tiers of a deal.
type AggregateMetrics struct {
	TotalRevenue              float64 `json:"total_revenue"`
	TotalGrossProfit          float64 `json:"total_gross_profit"`
	TotalIncentiveValue       float64 `json:"total_incentive_value"`
	ProjectedNetValue         float64 `json:"projected_net_value"`
	AverageGrossMarginPercent float64 `json:"average_gross_margin_percent"`
}

// Baseline is an optional prior-period reference for growth rates.
type Baseline struct {
	Revenue       float64 `json:"revenue"`
	Margin        float64 `json:"margin"`
	IncentiveCost float64 `json:"incentive_cost"`
}

// NormalizeMargin coerces a margin value to the canonical 0-1 fraction.
// Upstream sources disagree on units: some send 0.35, others send 35.
// Anything above 1 is treated as a percentage; negatives clamp to 0.
func NormalizeMargin(margin float64) float64 {
	if margin < 0 {
		return 0
	}
	if margin > 1 {
		return margin / 100
	}
	return margin
}

// TierGrossProfit returns revenue times margin for one tier.
func TierGrossProfit(tier model.DealTier) float64 {
	return tier.AnnualRevenue * NormalizeMargin(tier.AnnualGrossMargin)
}

// TierIncentiveCost returns the total incentive cost of a tier: the sum of
// itemized incentive lines when present, otherwise the aggregated
// IncentiveValue field.
func TierIncentiveCost(tier model.DealTier) float64 {
	if len(tier.Incentives) == 0 {
		return tier.IncentiveValue
	}
	var total float64
	for _, inc := range tier.Incentives {
		total += inc.Value
	}
	return total
}

// AdjustedGrossProfit returns gross profit net of incentive cost. The
// result may be negative; incentives subtract from profit, never revenue.
func AdjustedGrossProfit(tier model.DealTier) float64 {
	return TierGrossProfit(tier) - TierIncentiveCost(tier)
}

// AdjustedGrossMargin returns adjusted gross profit as a fraction of
// revenue, or 0 for zero-revenue tiers.
func AdjustedGrossMargin(tier model.DealTier) float64 {
	if tier.AnnualRevenue == 0 {
		return 0
	}
	return AdjustedGrossProfit(tier) / tier.AnnualRevenue
}

// GrowthRate returns (current - baseline) / baseline. Non-positive
// baselines short-circuit to 0 rather than producing Inf or NaN.
func GrowthRate(current, baseline float64) float64 {
	if baseline <= 0 {
		return 0
	}
	return (current - baseline) / baseline
}

// AggregateAcrossTiers sums fieldFn over all tiers.
func AggregateAcrossTiers(tiers []model.DealTier, fieldFn func(model.DealTier) float64) float64 {
	var total float64
	for _, t := range tiers {
		total += fieldFn(t)
	}
	return total
}

// ComputeTierMetrics returns per-tier derived metrics. When baseline is
// non-nil, each tier additionally carries growth rates for revenue,
// margin, profit, and incentive cost against that baseline.
func ComputeTierMetrics(tiers []model.DealTier, baseline *Baseline) []TierMetrics {
	metrics := make([]TierMetrics, 0, len(tiers))
	for _, t := range tiers {
		m := TierMetrics{
			TierNumber:          t.TierNumber,
			AnnualRevenue:       t.AnnualRevenue,
			GrossProfit:         TierGrossProfit(t),
			IncentiveCost:       TierIncentiveCost(t),
			AdjustedGrossProfit: AdjustedGrossProfit(t),
			AdjustedGrossMargin: AdjustedGrossMargin(t),
		}
		if baseline != nil {
			baseProfit := baseline.Revenue * NormalizeMargin(baseline.Margin)
			m.RevenueGrowth = GrowthRate(t.AnnualRevenue, baseline.Revenue)
			m.MarginGrowth = GrowthRate(NormalizeMargin(t.AnnualGrossMargin), NormalizeMargin(baseline.Margin))
			m.ProfitGrowth = GrowthRate(m.GrossProfit, baseProfit)
			m.IncentiveGrowth = GrowthRate(m.IncentiveCost, baseline.IncentiveCost)
		}
		metrics = append(metrics, m)
	}
	return metrics
}

// ComputeAggregateMetrics returns deal-level totals across all tiers. The
// average margin is revenue-weighted, expressed as a 0-100 percentage.
func ComputeAggregateMetrics(tiers []model.DealTier) AggregateMetrics {
	agg := AggregateMetrics{
		TotalRevenue:        AggregateAcrossTiers(tiers, func(t model.DealTier) float64 { return t.AnnualRevenue }),
		TotalGrossProfit:    AggregateAcrossTiers(tiers, TierGrossProfit),
		TotalIncentiveValue: AggregateAcrossTiers(tiers, TierIncentiveCost),
	}
	agg.ProjectedNetValue = agg.TotalGrossProfit - agg.TotalIncentiveValue
	if agg.TotalRevenue > 0 {
		agg.AverageGrossMarginPercent = agg.TotalGrossProfit / agg.TotalRevenue * 100
	}
	return agg
}
