package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"starforge/internal/schema"
	"starforge/internal/transform"
	"starforge/internal/ui"
	apperrors "starforge/pkg/errors"
)

var transformCmd = &cobra.Command{
	Use:   "transform",
	Short: "Clean the raw tables into the processed star schema",
	Long: "Transform reads the raw CSV files, coerces types, derives the " +
		"margin and measure columns, enforces referential integrity on the " +
		"fact table and writes the processed CSV files.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTransform()
	},
}

func init() {
	rootCmd.AddCommand(transformCmd)
}

func runTransform() error {
	start := time.Now()
	stageLog := log.WithRun(runID, "transform")

	ui.ShowHeader("Transform Pipeline")
	ui.PrintKeyValue("Input", appConfig.Data.RawDir)
	ui.PrintKeyValue("Output", appConfig.Data.ProcessedDir)

	ds, err := schema.ReadDataset(appConfig.Data.RawDir)
	if err != nil {
		return err
	}

	spinner := ui.NewSpinner("Transforming tables...")
	spinner.Start()
	summary := transform.New(stageLog).Apply(ds)
	if summary.FactRows == 0 {
		spinner.Stop(false, "No fact rows survived cleaning")
		return apperrors.TransformError("no fact rows survived cleaning", schema.TableFactSales,
			fmt.Errorf("%d products, %d orphans and %d null-measure rows were dropped",
				summary.DroppedProducts, summary.DroppedOrphans, summary.DroppedNullMeasures))
	}
	spinner.Stop(true, fmt.Sprintf("Transformed %d tables", len(schema.TableNames)))

	if err := schema.WriteDataset(appConfig.Data.ProcessedDir, ds, true); err != nil {
		return err
	}

	ui.PrintSection("Summary")
	if !summary.FirstDate.IsZero() {
		ui.PrintKeyValue("Date range", fmt.Sprintf("%s to %s",
			summary.FirstDate.Format("2006-01-02"), summary.LastDate.Format("2006-01-02")))
	}
	ui.PrintKeyValue("Total revenue", "$"+humanize.CommafWithDigits(summary.TotalRevenue, 2))
	ui.PrintKeyValue("Orders", humanize.Comma(int64(summary.TotalOrders)))
	ui.PrintKeyValue("Avg gross margin", fmt.Sprintf("%.2f%%", summary.AvgMarginPct))
	ui.PrintKeyValue("Customers", humanize.Comma(int64(summary.Customers)))
	ui.PrintKeyValue("Products sold", humanize.Comma(int64(summary.ProductsSold)))

	dropped := summary.DroppedProducts + summary.DroppedOrphans + summary.DroppedNullMeasures
	if dropped > 0 {
		ui.ShowWarning(fmt.Sprintf("Dropped %d rows during cleaning (%d products, %d orphans, %d null measures)",
			dropped, summary.DroppedProducts, summary.DroppedOrphans, summary.DroppedNullMeasures))
	}

	ui.ShowSuccess(fmt.Sprintf("Processed tables written to %s", appConfig.Data.ProcessedDir))
	stageLog.TimedInfo("transform stage complete", start)
	return nil
}
