package main

import (
	"fmt"
	"runtime"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/deal-desk/internal/finance"
	"github.com/sells-group/deal-desk/internal/model"
	"github.com/sells-group/deal-desk/internal/store"
)

const exportPageSize = 500

var (
	exportOutput string
	exportStatus string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export deals to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		filter := store.DealFilter{Limit: exportPageSize}
		if exportStatus != "" {
			ds := model.DealStatus(exportStatus)
			if !ds.Valid() {
				return eris.Errorf("export: unknown status %q", exportStatus)
			}
			filter.Status = ds
		}

		var deals []model.Deal
		for {
			page, err := st.ListDeals(ctx, filter)
			if err != nil {
				return eris.Wrap(err, "export: list deals")
			}
			deals = append(deals, page...)
			if len(page) < exportPageSize {
				break
			}
			filter.Offset += exportPageSize
		}
		if len(deals) == 0 {
			fmt.Println("No deals to export.")
			return nil
		}

		// Metrics are derived, not stored, so recompute them per deal.
		metrics := make([]finance.AggregateMetrics, len(deals))
		g, _ := errgroup.WithContext(ctx)
		g.SetLimit(runtime.NumCPU())
		for i := range deals {
			g.Go(func() error {
				metrics[i] = finance.ComputeAggregateMetrics(deals[i].Tiers)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		f, err := buildWorkbook(deals, metrics)
		if err != nil {
			return err
		}
		if err := f.Save(exportOutput); err != nil {
			return eris.Wrap(err, "export: save workbook")
		}

		zap.L().Info("deals exported",
			zap.Int("count", len(deals)),
			zap.String("path", exportOutput),
		)
		fmt.Printf("Exported %d deals to %s.\n", len(deals), exportOutput)
		return nil
	},
}

var exportHeader = []string{
	"ID", "Name", "Customer", "Status", "Deal Type", "Sales Channel",
	"Total Value", "Discount %", "Term (months)", "Tiers",
	"Total Revenue", "Total Gross Profit", "Total Incentives",
	"Projected Net Value", "Avg Gross Margin %",
	"Approval Level", "Created At",
}

func buildWorkbook(deals []model.Deal, metrics []finance.AggregateMetrics) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Deals")
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for _, h := range exportHeader {
		header.AddCell().SetString(h)
	}

	for i, d := range deals {
		m := metrics[i]
		row := sheet.AddRow()
		row.AddCell().SetString(d.ID)
		row.AddCell().SetString(d.Name)
		row.AddCell().SetString(d.Customer)
		row.AddCell().SetString(string(d.Status))
		row.AddCell().SetString(d.DealType)
		row.AddCell().SetString(d.SalesChannel)
		row.AddCell().SetFloat(d.TotalValue)
		row.AddCell().SetFloat(d.DiscountPercentage)
		row.AddCell().SetInt(d.ContractTermMonths)
		row.AddCell().SetInt(len(d.Tiers))
		row.AddCell().SetFloat(m.TotalRevenue)
		row.AddCell().SetFloat(m.TotalGrossProfit)
		row.AddCell().SetFloat(m.TotalIncentiveValue)
		row.AddCell().SetFloat(m.ProjectedNetValue)
		row.AddCell().SetFloat(m.AverageGrossMarginPercent)
		level := ""
		if d.Approval != nil {
			level = string(d.Approval.Level)
		}
		row.AddCell().SetString(level)
		row.AddCell().SetString(d.CreatedAt.Format("2006-01-02 15:04"))
	}

	return f, nil
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "deals.xlsx", "output file path")
	exportCmd.Flags().StringVar(&exportStatus, "status", "", "only export deals with this status")
	rootCmd.AddCommand(exportCmd)
}
