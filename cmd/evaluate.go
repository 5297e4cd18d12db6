package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/deal-desk/internal/approval"
	"github.com/sells-group/deal-desk/internal/finance"
	"github.com/sells-group/deal-desk/internal/model"
)

var evaluateJSON bool

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <deal.json>",
	Short: "Evaluate a deal file: financial metrics and approval routing",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return eris.Wrap(err, "evaluate: read deal file")
		}

		var deal model.Deal
		if err := json.Unmarshal(data, &deal); err != nil {
			return eris.Wrap(err, "evaluate: parse deal file")
		}

		deal.Tiers = model.NormalizeTiers(deal.Tiers)
		for i := range deal.Tiers {
			deal.Tiers[i].AnnualGrossMargin = finance.NormalizeMargin(deal.Tiers[i].AnnualGrossMargin)
		}

		matrix, err := cfg.Matrix()
		if err != nil {
			return err
		}
		resolver := approval.NewResolver(matrix)

		result := evaluation{
			Tiers:     finance.ComputeTierMetrics(deal.Tiers, nil),
			Aggregate: finance.ComputeAggregateMetrics(deal.Tiers),
			Decision:  resolver.Resolve(deal.Parameters()),
			Sequence: approval.RequiredApprovers(cfg.Approval.StandardDeal,
				deal.TotalValue, deal.DealType, deal.SalesChannel,
				deal.HasLegalExceptions, deal.HasFinancialExceptions),
		}

		if evaluateJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		}

		formatEvaluation(os.Stdout, &deal, result)
		return nil
	},
}

type evaluation struct {
	Tiers     []finance.TierMetrics    `json:"tiers"`
	Aggregate finance.AggregateMetrics `json:"aggregate"`
	Decision  approval.Decision        `json:"decision"`
	Sequence  []model.ApproverLevel    `json:"sequence"`
}

func formatEvaluation(w io.Writer, deal *model.Deal, result evaluation) {
	fmt.Fprintf(w, "Deal: %s (%s)\n", deal.Name, deal.Customer)
	fmt.Fprintf(w, "Value: %.2f  Discount: %.1f%%  Term: %d months\n\n",
		deal.TotalValue, deal.DiscountPercentage, deal.ContractTermMonths)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIER\tREVENUE\tGROSS PROFIT\tINCENTIVES\tADJ PROFIT\tADJ MARGIN")
	for _, t := range result.Tiers {
		fmt.Fprintf(tw, "%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f%%\n",
			t.TierNumber, t.AnnualRevenue, t.GrossProfit, t.IncentiveCost,
			t.AdjustedGrossProfit, t.AdjustedGrossMargin*100)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nTotal revenue: %.2f\n", result.Aggregate.TotalRevenue)
	fmt.Fprintf(w, "Projected net value: %.2f\n", result.Aggregate.ProjectedNetValue)
	fmt.Fprintf(w, "Average gross margin: %.2f%%\n\n", result.Aggregate.AverageGrossMarginPercent)

	fmt.Fprintf(w, "Approval level: %s (%s)\n", result.Decision.Level, result.Decision.Severity)
	fmt.Fprintf(w, "Reason: %s\n", result.Decision.Message)

	approvers := make([]string, len(result.Sequence))
	for i, level := range result.Sequence {
		approvers[i] = approval.RuleFor(level).Title
	}
	fmt.Fprintf(w, "Approver sequence: %s\n", strings.Join(approvers, " -> "))
}

func init() {
	evaluateCmd.Flags().BoolVar(&evaluateJSON, "json", false, "emit machine-readable JSON")
	rootCmd.AddCommand(evaluateCmd)
}
