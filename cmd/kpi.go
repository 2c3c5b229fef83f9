package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"starforge/internal/exporter"
	"starforge/internal/kpi"
	"starforge/internal/schema"
	"starforge/internal/ui"
)

var kpiCmd = &cobra.Command{
	Use:   "kpi",
	Short: "Compute the KPI dashboard and write the report artifacts",
	Long: "Kpi evaluates the KPI catalog over the revenue-eligible fact rows, " +
		"prints the dashboard with RAG statuses and writes the report CSVs " +
		"(and optionally an Excel workbook) to the reports directory.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("catalog") {
			appConfig.KPI.CatalogFile = kpiCatalogFile
		}
		if cmd.Flags().Changed("top-n") {
			appConfig.KPI.TopN = kpiTopN
		}
		if cmd.Flags().Changed("excel") {
			appConfig.KPI.ExportExcel = kpiExcel
		}
		return runKPI()
	},
}

var (
	kpiCatalogFile string
	kpiTopN        int
	kpiExcel       bool
)

func init() {
	rootCmd.AddCommand(kpiCmd)

	kpiCmd.Flags().StringVar(&kpiCatalogFile, "catalog", "", "YAML file overriding the built-in KPI catalog")
	kpiCmd.Flags().IntVar(&kpiTopN, "top-n", 10, "number of products and customers to rank")
	kpiCmd.Flags().BoolVar(&kpiExcel, "excel", true, "also write the Excel workbook")
}

func runKPI() error {
	start := time.Now()
	stageLog := log.WithRun(runID, "kpi")

	ui.ShowHeader("KPI Dashboard")
	ui.PrintKeyValue("Input", appConfig.Data.ProcessedDir)
	ui.PrintKeyValue("Reports", appConfig.Data.ReportsDir)

	defs, err := kpi.LoadCatalog(appConfig.KPI.CatalogFile)
	if err != nil {
		return err
	}

	ds, err := schema.ReadDataset(appConfig.Data.ProcessedDir)
	if err != nil {
		return err
	}

	calc := kpi.NewCalculator(ds, defs, stageLog)
	results, err := calc.CalculateAll()
	if err != nil {
		return err
	}

	trend := calc.MonthlyTrend()
	products := calc.TopProducts(appConfig.KPI.TopN)
	customers := calc.TopCustomers(appConfig.KPI.TopN)
	regions := calc.RegionalPerformance()

	fmt.Print(kpi.RenderDashboard(results, trend, products, regions, !noColor))

	exp := exporter.New(appConfig.Data.ReportsDir, stageLog)
	if err := exp.WriteAll(results, trend, products, customers, regions); err != nil {
		return err
	}
	if appConfig.KPI.ExportExcel {
		if err := exp.WriteWorkbook(results, trend, products, customers, regions); err != nil {
			return err
		}
	}

	ui.ShowSuccess(fmt.Sprintf("Report artifacts written to %s", appConfig.Data.ReportsDir))
	stageLog.TimedInfo("kpi stage complete", start)
	return nil
}
