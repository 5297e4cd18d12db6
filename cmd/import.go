package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/deal-desk/internal/approval"
	"github.com/sells-group/deal-desk/internal/dealsheet"
)

var importSheet string

var importCmd = &cobra.Command{
	Use:   "import <deals.xlsx>",
	Short: "Bulk-import deals from an XLSX workbook",
	Long:  "Reads deal rows from a spreadsheet, computes approval routing for each, and inserts them in one batch.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		deals, err := dealsheet.ReadFile(args[0], dealsheet.Options{SheetName: importSheet})
		if err != nil {
			return err
		}
		if len(deals) == 0 {
			fmt.Println("No deals found in sheet.")
			return nil
		}

		matrix, err := cfg.Matrix()
		if err != nil {
			return err
		}
		resolver := approval.NewResolver(matrix)
		for i := range deals {
			deals[i].Approval = approval.Evaluate(resolver, cfg.Approval.StandardDeal, &deals[i])
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		n, err := st.CreateDeals(ctx, deals)
		if err != nil {
			return eris.Wrap(err, "import: insert deals")
		}

		zap.L().Info("deals imported",
			zap.Int64("count", n),
			zap.String("file", args[0]),
		)
		fmt.Printf("Imported %d deals from %s.\n", n, args[0])
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importSheet, "sheet", "", "sheet name (default: first sheet)")
	rootCmd.AddCommand(importCmd)
}
