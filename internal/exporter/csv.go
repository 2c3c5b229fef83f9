package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"starforge/internal/common"
	"starforge/internal/kpi"
	"starforge/internal/logger"
	"starforge/internal/schema"
	apperrors "starforge/pkg/errors"
)

// Report artifact file names
const (
	FileKPIResults   = "kpi_results.csv"
	FileMonthlyTrend = "kpi_monthly_trend.csv"
	FileTopProducts  = "top_products.csv"
	FileTopCustomers = "top_customers.csv"
	FileRegional     = "regional_performance.csv"
	FileWorkbook     = "kpi_report.xlsx"
)

// Exporter writes the KPI report artifacts into the reports directory
type Exporter struct {
	dir string
	log *logger.Logger
}

func New(dir string, log *logger.Logger) *Exporter {
	return &Exporter{dir: dir, log: log}
}

// WriteAll writes every CSV artifact
func (e *Exporter) WriteAll(results []kpi.Result, trend []kpi.TrendPoint, products []kpi.ProductRank, customers []kpi.CustomerRank, regions []kpi.RegionRank) error {
	if err := e.WriteKPIResults(results); err != nil {
		return err
	}
	if err := e.WriteMonthlyTrend(trend); err != nil {
		return err
	}
	if err := e.WriteTopProducts(products); err != nil {
		return err
	}
	if err := e.WriteTopCustomers(customers); err != nil {
		return err
	}
	return e.WriteRegional(regions)
}

// WriteKPIResults writes kpi_results.csv
func (e *Exporter) WriteKPIResults(results []kpi.Result) error {
	rows := [][]string{kpiResultsHeader()}
	for _, r := range results {
		rows = append(rows, kpiResultRow(r))
	}
	return e.write(FileKPIResults, rows)
}

// WriteMonthlyTrend writes kpi_monthly_trend.csv
func (e *Exporter) WriteMonthlyTrend(trend []kpi.TrendPoint) error {
	rows := [][]string{trendHeader()}
	for _, p := range trend {
		rows = append(rows, trendRow(p))
	}
	return e.write(FileMonthlyTrend, rows)
}

// WriteTopProducts writes top_products.csv
func (e *Exporter) WriteTopProducts(products []kpi.ProductRank) error {
	rows := [][]string{productsHeader()}
	for _, p := range products {
		rows = append(rows, productRow(p))
	}
	return e.write(FileTopProducts, rows)
}

// WriteTopCustomers writes top_customers.csv
func (e *Exporter) WriteTopCustomers(customers []kpi.CustomerRank) error {
	rows := [][]string{customersHeader()}
	for _, c := range customers {
		rows = append(rows, customerRow(c))
	}
	return e.write(FileTopCustomers, rows)
}

// WriteRegional writes regional_performance.csv
func (e *Exporter) WriteRegional(regions []kpi.RegionRank) error {
	rows := [][]string{regionalHeader()}
	for _, r := range regions {
		rows = append(rows, regionRow(r))
	}
	return e.write(FileRegional, rows)
}

func (e *Exporter) write(name string, rows [][]string) error {
	if err := common.EnsureDir(e.dir); err != nil {
		return err
	}
	path := filepath.Join(e.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return apperrors.FileError("failed to create report file", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return apperrors.FileError("failed to write report file", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.FileError("failed to flush report file", path, err)
	}
	e.log.Infof("wrote %s (%d rows)", path, len(rows)-1)
	return nil
}

// Column layouts shared by the CSV and Excel writers.

func kpiResultsHeader() []string {
	return []string{"kpi_id", "kpi_name", "category", "value", "unit", "rag_status", "formula", "calculated_at"}
}

func kpiResultRow(r kpi.Result) []string {
	return []string{
		r.KPIID, r.Name, r.Category,
		fmtFloat(r.Value), r.Unit, r.Status, r.Formula,
		r.CalculatedAt.Format(time.RFC3339),
	}
}

func trendHeader() []string {
	return []string{
		"year", "month_number", "month_name", "quarter", "revenue",
		"gross_margin", "cogs", "orders", "customers", "avg_discount_pct",
		"gross_margin_pct", "revenue_growth_mom",
	}
}

func trendRow(p kpi.TrendPoint) []string {
	return []string{
		strconv.Itoa(p.Year), strconv.Itoa(p.Month), p.MonthName, p.Quarter,
		fmtFloat(p.Revenue), fmtFloat(p.GrossMargin), fmtFloat(p.COGS),
		strconv.Itoa(p.Orders), strconv.Itoa(p.Customers),
		fmtFloat(p.AvgDiscountPct), fmtFloat(p.GrossMarginPct), fmtFloat(p.GrowthMoM),
	}
}

func productsHeader() []string {
	return []string{
		"product_key", "product_name", "category", "revenue", "gross_margin",
		"orders", "quantity", "gross_margin_pct",
	}
}

func productRow(p kpi.ProductRank) []string {
	return []string{
		strconv.FormatInt(p.ProductKey, 10), p.ProductName, p.Category,
		fmtFloat(p.Revenue), fmtFloat(p.GrossMargin),
		strconv.Itoa(p.Orders), fmtFloat(p.Quantity), fmtFloat(p.GrossMarginPct),
	}
}

func customersHeader() []string {
	return []string{"customer_key", "customer_name", "segment", "revenue", "orders", "avg_order_value"}
}

func customerRow(c kpi.CustomerRank) []string {
	return []string{
		strconv.FormatInt(c.CustomerKey, 10), c.CustomerName, c.Segment,
		fmtFloat(c.Revenue), strconv.Itoa(c.Orders), fmtFloat(c.AvgOrderValue),
	}
}

func regionalHeader() []string {
	return []string{
		"region_key", "region", "country", "revenue", "gross_margin", "orders",
		"customers", "target", "revenue_share_pct", "gross_margin_pct",
		"target_attainment_pct",
	}
}

func regionRow(r kpi.RegionRank) []string {
	return []string{
		strconv.FormatInt(r.RegionKey, 10), r.Region, r.Country,
		fmtFloat(r.Revenue), fmtFloat(r.GrossMargin),
		strconv.Itoa(r.Orders), strconv.Itoa(r.Customers), fmtFloat(r.Target),
		fmtFloat(r.RevenueSharePct), fmtFloat(r.GrossMarginPct), fmtFloat(r.TargetAttainmentPct),
	}
}

// fmtFloat renders a float for CSV output; null sentinels become empty
// cells
func fmtFloat(v float64) string {
	if schema.IsNull(v) {
		return ""
	}
	return fmt.Sprintf("%.4f", v)
}
