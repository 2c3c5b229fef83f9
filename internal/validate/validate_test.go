package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starforge/internal/logger"
	"starforge/internal/schema"
	"starforge/pkg/models"
)

func cleanDataset() *schema.Dataset {
	date := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return &schema.Dataset{
		Dates: []schema.DimDate{
			{DateKey: 20240101, FullDate: date, DayOfMonth: 1, MonthNumber: 1, Quarter: "Q1", Year: 2024},
		},
		Products: []schema.DimProduct{
			{ProductKey: 1, ProductID: "PRD-0001", ProductName: "Laptop X", Category: "Electronics", UnitCost: 500, ListPrice: 1000},
		},
		Customers: []schema.DimCustomer{
			{CustomerKey: 1, CustomerID: "CUST-00001", CustomerName: "Acme Corp", Segment: "Enterprise"},
		},
		Employees: []schema.DimEmployee{
			{EmployeeKey: 1, EmployeeID: "EMP-001", FullName: "Jane Smith", Department: "Sales"},
		},
		Regions: []schema.DimRegion{
			{RegionKey: 1, Country: "United States", Region: "North America", City: "New York", Currency: "USD"},
		},
		Sales: []schema.FactSale{
			{
				SalesKey: 1, OrderID: "ORD-000001", DateKey: 20240101,
				ProductKey: 1, CustomerKey: 1, RegionKey: 1, EmployeeKey: 1,
				Quantity: 2, UnitPrice: 1000, DiscountPct: 0.1,
				SalesAmount: 1800, COGS: 1000, GrossMargin: 800,
				OrderStatus: schema.StatusDelivered,
			},
		},
	}
}

func run(t *testing.T, ds *schema.Dataset) *Report {
	t.Helper()
	return New(models.ValidationConfig{}, logger.NewNop()).Run(ds)
}

func findResult(t *testing.T, rep *Report, table, check string) Result {
	t.Helper()
	for _, res := range rep.Results {
		if res.Table == table && res.CheckName == check {
			return res
		}
	}
	t.Fatalf("no result for %s/%s", table, check)
	return Result{}
}

func TestCleanDatasetPasses(t *testing.T) {
	rep := run(t, cleanDataset())

	assert.Empty(t, rep.Errors())
	assert.Empty(t, rep.Warnings())
	assert.Equal(t, len(rep.Results), rep.PassedCount())
	assert.True(t, rep.OK(true))
}

func TestNullKeyColumnFails(t *testing.T) {
	ds := cleanDataset()
	ds.Sales[0].SalesAmount = schema.Null()

	rep := run(t, ds)
	res := findResult(t, rep, "fact_sales", "no_nulls.sales_amount")
	assert.False(t, res.Passed)
	assert.Equal(t, SeverityError, res.Severity)
	assert.Equal(t, 1, res.RowCount)
	assert.False(t, rep.OK(false))
}

func TestNullRateWithinToleranceIsWarning(t *testing.T) {
	ds := cleanDataset()
	for i := 2; i <= 200; i++ {
		s := ds.Sales[0]
		s.SalesKey = int64(i)
		ds.Sales = append(ds.Sales, s)
	}
	ds.Sales[0].SalesAmount = schema.Null() // 1 of 200 rows

	cfg := models.ValidationConfig{MaxNullRate: 0.01}
	rep := New(cfg, logger.NewNop()).Run(ds)

	res := findResult(t, rep, "fact_sales", "no_nulls.sales_amount")
	assert.False(t, res.Passed)
	assert.Equal(t, SeverityWarning, res.Severity)
	assert.True(t, rep.OK(false))
	assert.False(t, rep.OK(true))
}

func TestDuplicatePrimaryKey(t *testing.T) {
	ds := cleanDataset()
	ds.Products = append(ds.Products, ds.Products[0])

	rep := run(t, ds)
	res := findResult(t, rep, "dim_product", "no_duplicate_pk.product_key")
	assert.False(t, res.Passed)
	assert.Equal(t, 1, res.RowCount)
}

func TestOrphanForeignKey(t *testing.T) {
	ds := cleanDataset()
	ds.Sales[0].ProductKey = 999

	rep := run(t, ds)
	res := findResult(t, rep, "fact_sales", "fk.product_key -> dim_product.product_key")
	assert.False(t, res.Passed)
	assert.Equal(t, SeverityError, res.Severity)
	assert.Equal(t, 1, res.RowCount)
}

func TestRangeChecks(t *testing.T) {
	tests := []struct {
		name  string
		mut   func(ds *schema.Dataset)
		table string
		check string
	}{
		{
			"month out of range",
			func(ds *schema.Dataset) { ds.Dates[0].MonthNumber = 13 },
			"dim_date", "range.month_number in [1, 12]",
		},
		{
			"year out of range",
			func(ds *schema.Dataset) { ds.Dates[0].Year = 1999 },
			"dim_date", "range.year in [2000, 2030]",
		},
		{
			"zero quantity",
			func(ds *schema.Dataset) { ds.Sales[0].Quantity = 0 },
			"fact_sales", "range.quantity in [1, -]",
		},
		{
			"free unit price",
			func(ds *schema.Dataset) { ds.Sales[0].UnitPrice = 0 },
			"fact_sales", "range.unit_price in [0.01, -]",
		},
		{
			"discount above one",
			func(ds *schema.Dataset) { ds.Sales[0].DiscountPct = 1.5 },
			"fact_sales", "range.discount_pct in [0, 1]",
		},
		{
			"negative sales amount",
			func(ds *schema.Dataset) { ds.Sales[0].SalesAmount = -10 },
			"fact_sales", "range.sales_amount in [0, -]",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := cleanDataset()
			tt.mut(ds)
			rep := run(t, ds)
			res := findResult(t, rep, tt.table, tt.check)
			assert.False(t, res.Passed)
			assert.Equal(t, 1, res.RowCount)
		})
	}
}

func TestInvalidQuarterValue(t *testing.T) {
	ds := cleanDataset()
	ds.Dates[0].Quarter = "Q5"

	rep := run(t, ds)
	res := findResult(t, rep, "dim_date", "valid_quarter_values")
	assert.False(t, res.Passed)
	assert.Equal(t, 1, res.RowCount)
}

func TestInvalidQuarterValuesCountedDistinct(t *testing.T) {
	ds := cleanDataset()
	// both rows carry the same bad label, which counts once
	second := ds.Dates[0]
	second.DateKey = 20240102
	second.FullDate = ds.Dates[0].FullDate.AddDate(0, 0, 1)
	second.DayOfMonth = 2
	ds.Dates = append(ds.Dates, second)
	ds.Dates[0].Quarter = "Q5"
	ds.Dates[1].Quarter = "Q5"

	rep := run(t, ds)
	res := findResult(t, rep, "dim_date", "valid_quarter_values")
	assert.False(t, res.Passed)
	assert.Equal(t, 1, res.RowCount)
}

func TestPriceBelowCostIsWarning(t *testing.T) {
	ds := cleanDataset()
	ds.Products[0].ListPrice = 400 // below the 500 cost

	rep := run(t, ds)
	res := findResult(t, rep, "dim_product", "list_price >= unit_cost")
	assert.False(t, res.Passed)
	assert.Equal(t, SeverityWarning, res.Severity)
	assert.True(t, rep.OK(false), "warnings alone do not fail the run")
	assert.False(t, rep.OK(true))
}

func TestInvalidSegmentIsWarning(t *testing.T) {
	ds := cleanDataset()
	ds.Customers[0].Segment = "Wholesale"

	rep := run(t, ds)
	res := findResult(t, rep, "dim_customer", "valid_segment_values")
	assert.False(t, res.Passed)
	assert.Equal(t, SeverityWarning, res.Severity)
}

func TestGrossMarginAboveSalesIsWarning(t *testing.T) {
	ds := cleanDataset()
	ds.Sales[0].GrossMargin = ds.Sales[0].SalesAmount + 1

	rep := run(t, ds)
	res := findResult(t, rep, "fact_sales", "gross_margin <= sales_amount")
	assert.False(t, res.Passed)
	assert.Equal(t, SeverityWarning, res.Severity)
}

func TestInvalidOrderStatus(t *testing.T) {
	ds := cleanDataset()
	ds.Sales[0].OrderStatus = "Pending"

	rep := run(t, ds)
	res := findResult(t, rep, "fact_sales", "valid_order_status")
	assert.False(t, res.Passed)
	assert.Equal(t, SeverityError, res.Severity)
}

func TestRenderSummary(t *testing.T) {
	ds := cleanDataset()
	ds.Sales[0].OrderStatus = "Pending"
	ds.Products[0].ListPrice = 400

	rep := run(t, ds)
	out := RenderSummary(rep, false)

	require.Contains(t, out, "DATA QUALITY VALIDATION REPORT")
	assert.Contains(t, out, "FAILED CHECKS")
	assert.Contains(t, out, "valid_order_status")
	assert.Contains(t, out, "list_price >= unit_cost")
	assert.Contains(t, out, "PASSED CHECKS")
	assert.True(t, strings.Contains(out, "Errors       : 1"))
	assert.True(t, strings.Contains(out, "Warnings     : 1"))
}
