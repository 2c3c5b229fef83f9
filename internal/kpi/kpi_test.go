package kpi

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starforge/internal/logger"
	"starforge/internal/schema"
)

type saleSpec struct {
	orderID  string
	sales    float64
	gm       float64
	cogs     float64
	target   float64
	discount float64
	quantity float64
	employee int64
	customer int64
	product  int64
	region   int64
	status   string
	dateKey  int64
}

func buildDataset(specs []saleSpec) *schema.Dataset {
	ds := &schema.Dataset{
		Dates: []schema.DimDate{
			{DateKey: 20250101, FullDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), MonthNumber: 1, MonthName: "January", Quarter: "Q1", Year: 2025},
			{DateKey: 20250201, FullDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), MonthNumber: 2, MonthName: "February", Quarter: "Q1", Year: 2025},
			{DateKey: 20250301, FullDate: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), MonthNumber: 3, MonthName: "March", Quarter: "Q1", Year: 2025},
		},
		Products: []schema.DimProduct{
			{ProductKey: 1, ProductName: "Laptop X", Category: "Electronics"},
			{ProductKey: 2, ProductName: "Server Y", Category: "Hardware"},
		},
		Customers: []schema.DimCustomer{
			{CustomerKey: 1, CustomerName: "Acme Corp", Segment: "Enterprise"},
			{CustomerKey: 2, CustomerName: "Globex Inc", Segment: "SMB"},
			{CustomerKey: 3, CustomerName: "Initech Ltd", Segment: "Startup"},
		},
		Regions: []schema.DimRegion{
			{RegionKey: 1, Region: "North America", Country: "United States"},
			{RegionKey: 2, Region: "Europe", Country: "Germany"},
		},
	}
	for i, s := range specs {
		if s.product == 0 {
			s.product = 1
		}
		if s.region == 0 {
			s.region = 1
		}
		if s.dateKey == 0 {
			s.dateKey = 20250101
		}
		ds.Sales = append(ds.Sales, schema.FactSale{
			SalesKey:          int64(i + 1),
			OrderID:           s.orderID,
			DateKey:           s.dateKey,
			ProductKey:        s.product,
			CustomerKey:       s.customer,
			RegionKey:         s.region,
			EmployeeKey:       s.employee,
			Quantity:          s.quantity,
			DiscountPct:       s.discount,
			SalesAmount:       s.sales,
			COGS:              s.cogs,
			GrossMargin:       s.gm,
			TargetAmount:      s.target,
			OrderStatus:       s.status,
			IsRevenueEligible: s.status != schema.StatusCancelled,
		})
	}
	return ds
}

func calc(specs []saleSpec) *Calculator {
	return NewCalculator(buildDataset(specs), DefaultCatalog(), logger.NewNop())
}

func TestTotalRevenueExcludesCancelled(t *testing.T) {
	c := calc([]saleSpec{
		{orderID: "ORD-001", sales: 1000, gm: 400, cogs: 600, target: 950, discount: 0.10, quantity: 2, employee: 1, customer: 1, status: schema.StatusDelivered},
		{orderID: "ORD-002", sales: 2500, gm: 1000, cogs: 1500, target: 2400, discount: 0.05, quantity: 5, employee: 2, customer: 2, status: schema.StatusDelivered},
		{orderID: "ORD-003", sales: 500, gm: 200, cogs: 300, target: 480, discount: 0, quantity: 1, employee: 1, customer: 3, status: schema.StatusCancelled},
	})
	assert.InDelta(t, 3500.0, c.totalRevenue(), 0.001)
}

func TestGrossMarginPct(t *testing.T) {
	c := calc([]saleSpec{
		{orderID: "ORD-001", sales: 1000, gm: 400, cogs: 600, target: 950, discount: 0.10, quantity: 2, employee: 1, customer: 1, status: schema.StatusDelivered},
		{orderID: "ORD-002", sales: 2000, gm: 1000, cogs: 1000, target: 2000, quantity: 4, employee: 2, customer: 2, status: schema.StatusShipped},
	})
	assert.InDelta(t, 46.6667, c.grossMarginPct(), 0.001)
}

func TestAvgOrderValue(t *testing.T) {
	c := calc([]saleSpec{
		{orderID: "ORD-001", sales: 1000, gm: 400, cogs: 600, target: 950, discount: 0.10, quantity: 2, employee: 1, customer: 1, status: schema.StatusDelivered},
		{orderID: "ORD-001", sales: 500, gm: 200, cogs: 300, target: 480, discount: 0.05, quantity: 1, employee: 1, customer: 1, status: schema.StatusDelivered},
		{orderID: "ORD-002", sales: 2000, gm: 800, cogs: 1200, target: 2000, quantity: 4, employee: 2, customer: 2, status: schema.StatusShipped},
	})
	assert.InDelta(t, 1750.0, c.avgOrderValue(), 0.001)
}

func TestTargetAttainment(t *testing.T) {
	c := calc([]saleSpec{
		{orderID: "ORD-001", sales: 1050, gm: 420, cogs: 630, target: 1000, discount: 0.05, quantity: 2, employee: 1, customer: 1, status: schema.StatusDelivered},
		{orderID: "ORD-002", sales: 900, gm: 360, cogs: 540, target: 1000, discount: 0.10, quantity: 2, employee: 2, customer: 2, status: schema.StatusShipped},
	})
	assert.InDelta(t, 97.5, c.targetAttainment(), 0.001)
}

func TestRevenueGrowthMoM(t *testing.T) {
	c := calc([]saleSpec{
		{orderID: "ORD-001", sales: 100000, customer: 1, employee: 1, status: schema.StatusDelivered, dateKey: 20250101},
		{orderID: "ORD-002", sales: 110000, customer: 1, employee: 1, status: schema.StatusDelivered, dateKey: 20250201},
		{orderID: "ORD-003", sales: 105000, customer: 1, employee: 1, status: schema.StatusDelivered, dateKey: 20250301},
	})
	// March vs February
	assert.InDelta(t, -4.545, c.revenueGrowthMoM(), 0.01)
}

func TestDiscountRate(t *testing.T) {
	c := calc([]saleSpec{
		{orderID: "ORD-001", sales: 950, discount: 0.05, customer: 1, employee: 1, status: schema.StatusDelivered},
		{orderID: "ORD-002", sales: 800, discount: 0.20, customer: 2, employee: 2, status: schema.StatusDelivered},
		{orderID: "ORD-003", sales: 1000, discount: 0, customer: 3, employee: 3, status: schema.StatusDelivered},
	})
	assert.InDelta(t, 8.333, c.discountRate(), 0.01)
}

func TestRevenuePerEmployee(t *testing.T) {
	c := calc([]saleSpec{
		{orderID: "ORD-001", sales: 1000, customer: 1, employee: 1, status: schema.StatusDelivered},
		{orderID: "ORD-002", sales: 2000, customer: 2, employee: 1, status: schema.StatusDelivered},
		{orderID: "ORD-003", sales: 3000, customer: 3, employee: 2, status: schema.StatusDelivered},
	})
	assert.InDelta(t, 3000.0, c.revenuePerEmployee(), 0.001)
}

func TestCustomerCount(t *testing.T) {
	c := calc([]saleSpec{
		{orderID: "ORD-001", sales: 1000, customer: 1, employee: 1, status: schema.StatusDelivered},
		{orderID: "ORD-002", sales: 2000, customer: 1, employee: 1, status: schema.StatusDelivered},
		{orderID: "ORD-003", sales: 3000, customer: 2, employee: 2, status: schema.StatusDelivered},
	})
	assert.Equal(t, 2.0, c.customerCount())
}

func TestTop10RevenueShare(t *testing.T) {
	c := calc([]saleSpec{
		{orderID: "ORD-001", sales: 900, customer: 1, employee: 1, product: 1, status: schema.StatusDelivered},
		{orderID: "ORD-002", sales: 100, customer: 2, employee: 2, product: 2, status: schema.StatusDelivered},
	})
	// only two products, both in the top 10
	assert.InDelta(t, 100.0, c.top10RevenueShare(), 0.001)
}

func TestRAGStatus(t *testing.T) {
	revenue := DefaultCatalog()[0].Thresholds

	assert.Equal(t, StatusGreen, RAGStatus(12_000_000, revenue))
	assert.Equal(t, StatusGreen, RAGStatus(8_000_000, revenue))
	assert.Equal(t, StatusAmber, RAGStatus(5_000_000, revenue))
	assert.Equal(t, StatusRed, RAGStatus(2_000_000, revenue))
	assert.Equal(t, StatusInfo, RAGStatus(42, Thresholds{}))
}

func TestCompareOperators(t *testing.T) {
	tests := []struct {
		op    string
		value float64
		limit float64
		want  bool
	}{
		{">=", 10, 10, true},
		{">=", 9, 10, false},
		{"<=", 10, 10, true},
		{"<=", 11, 10, false},
		{">", 10, 10, false},
		{"<", 9, 10, true},
		{"=", 10, 10, true},
		{"??", 10, 10, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, compare(tt.value, Threshold{Operator: tt.op, Value: tt.limit}), "%g %s %g", tt.value, tt.op, tt.limit)
	}
}

func TestCalculateAll(t *testing.T) {
	c := calc([]saleSpec{
		{orderID: "ORD-001", sales: 1000, gm: 400, cogs: 600, target: 950, discount: 0.10, quantity: 2, employee: 1, customer: 1, status: schema.StatusDelivered},
	})
	results, err := c.CalculateAll()
	require.NoError(t, err)
	require.Len(t, results, 10)

	byID := make(map[string]Result)
	for _, r := range results {
		assert.NotEmpty(t, r.Name)
		assert.NotEmpty(t, r.Status)
		byID[r.KPIID] = r
	}
	assert.InDelta(t, 1000.0, byID["KPI-001"].Value, 0.001)
	assert.Equal(t, StatusInfo, byID["KPI-006"].Status, "total orders carries no thresholds")
}

func TestCalculateAllUnknownKPI(t *testing.T) {
	defs := append(DefaultCatalog(), Definition{ID: "KPI-099", Name: "Bogus"})
	c := NewCalculator(buildDataset(nil), defs, logger.NewNop())

	_, err := c.CalculateAll()
	assert.Error(t, err)
}

func TestEmptyDatasetGuardsDivisionByZero(t *testing.T) {
	c := calc(nil)

	assert.Zero(t, c.grossMarginPct())
	assert.Zero(t, c.avgOrderValue())
	assert.Zero(t, c.targetAttainment())
	assert.Zero(t, c.discountRate())
	assert.Zero(t, c.revenuePerEmployee())
	assert.Zero(t, c.top10RevenueShare())
	assert.Zero(t, c.revenueGrowthMoM())
}

func TestMonthlyTrend(t *testing.T) {
	c := calc([]saleSpec{
		{orderID: "ORD-001", sales: 1000, gm: 400, cogs: 600, discount: 0.10, customer: 1, employee: 1, status: schema.StatusDelivered, dateKey: 20250101},
		{orderID: "ORD-002", sales: 2000, gm: 800, cogs: 1200, discount: 0.20, customer: 2, employee: 1, status: schema.StatusDelivered, dateKey: 20250101},
		{orderID: "ORD-003", sales: 1500, gm: 600, cogs: 900, discount: 0, customer: 1, employee: 2, status: schema.StatusDelivered, dateKey: 20250201},
	})
	trend := c.MonthlyTrend()
	require.Len(t, trend, 2)

	jan := trend[0]
	assert.Equal(t, 2025, jan.Year)
	assert.Equal(t, 1, jan.Month)
	assert.Equal(t, "January", jan.MonthName)
	assert.InDelta(t, 3000.0, jan.Revenue, 0.001)
	assert.Equal(t, 2, jan.Orders)
	assert.Equal(t, 2, jan.Customers)
	assert.InDelta(t, 40.0, jan.GrossMarginPct, 0.001)
	assert.InDelta(t, 15.0, jan.AvgDiscountPct, 0.001)
	assert.True(t, math.IsNaN(jan.GrowthMoM), "first month has no growth figure")

	feb := trend[1]
	assert.InDelta(t, 1500.0, feb.Revenue, 0.001)
	assert.InDelta(t, -50.0, feb.GrowthMoM, 0.001)
}

func TestTopProducts(t *testing.T) {
	c := calc([]saleSpec{
		{orderID: "ORD-001", sales: 1000, gm: 400, quantity: 2, customer: 1, employee: 1, product: 1, status: schema.StatusDelivered},
		{orderID: "ORD-002", sales: 5000, gm: 1000, quantity: 5, customer: 2, employee: 1, product: 2, status: schema.StatusDelivered},
	})
	top := c.TopProducts(10)
	require.Len(t, top, 2)

	assert.Equal(t, "Server Y", top[0].ProductName)
	assert.InDelta(t, 5000.0, top[0].Revenue, 0.001)
	assert.InDelta(t, 20.0, top[0].GrossMarginPct, 0.001)
	assert.Equal(t, "Laptop X", top[1].ProductName)

	assert.Len(t, c.TopProducts(1), 1)
}

func TestTopCustomers(t *testing.T) {
	c := calc([]saleSpec{
		{orderID: "ORD-001", sales: 1000, customer: 1, employee: 1, status: schema.StatusDelivered},
		{orderID: "ORD-002", sales: 3000, customer: 2, employee: 1, status: schema.StatusDelivered},
		{orderID: "ORD-003", sales: 1000, customer: 2, employee: 1, status: schema.StatusDelivered},
	})
	top := c.TopCustomers(10)
	require.Len(t, top, 2)

	assert.Equal(t, "Globex Inc", top[0].CustomerName)
	assert.Equal(t, "SMB", top[0].Segment)
	assert.InDelta(t, 4000.0, top[0].Revenue, 0.001)
	assert.Equal(t, 2, top[0].Orders)
	assert.InDelta(t, 2000.0, top[0].AvgOrderValue, 0.001)
}

func TestRegionalPerformance(t *testing.T) {
	c := calc([]saleSpec{
		{orderID: "ORD-001", sales: 3000, gm: 1200, target: 3000, customer: 1, employee: 1, region: 1, status: schema.StatusDelivered},
		{orderID: "ORD-002", sales: 1000, gm: 500, target: 2000, customer: 2, employee: 1, region: 2, status: schema.StatusDelivered},
	})
	regions := c.RegionalPerformance()
	require.Len(t, regions, 2)

	na := regions[0]
	assert.Equal(t, "North America", na.Region)
	assert.InDelta(t, 75.0, na.RevenueSharePct, 0.001)
	assert.InDelta(t, 40.0, na.GrossMarginPct, 0.001)
	assert.InDelta(t, 100.0, na.TargetAttainmentPct, 0.001)

	eu := regions[1]
	assert.InDelta(t, 25.0, eu.RevenueSharePct, 0.001)
	assert.InDelta(t, 50.0, eu.TargetAttainmentPct, 0.001)
}

func TestLoadCatalogDefault(t *testing.T) {
	defs, err := LoadCatalog("")
	require.NoError(t, err)
	assert.Len(t, defs, 10)
	assert.Equal(t, "KPI-001", defs[0].ID)
}

func TestLoadCatalogFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `kpis:
  - id: KPI-001
    name: Total Revenue
    category: Sales
    unit: currency
    formula: SUM(sales_amount)
    trend_direction: higher_is_better
    thresholds:
      excellent: {operator: ">=", value: 5000}
      good: {operator: ">=", value: 3000}
      warning: {operator: ">=", value: 1000}
      critical: {operator: "<", value: 1000}
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	defs, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, ">=", defs[0].Thresholds.Excellent.Operator)
	assert.Equal(t, 5000.0, defs[0].Thresholds.Excellent.Value)
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog("/nonexistent/catalog.yaml")
	assert.Error(t, err)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "$1,234,567.89", FormatValue(1234567.89, "currency"))
	assert.Equal(t, "46.67%", FormatValue(46.6667, "percentage"))
	assert.Equal(t, "8,000", FormatValue(8000, "count"))
	assert.Equal(t, "1.2346", FormatValue(1.23456, "ratio"))
}

func TestRenderDashboard(t *testing.T) {
	c := calc([]saleSpec{
		{orderID: "ORD-001", sales: 1000, gm: 400, cogs: 600, target: 950, discount: 0.10, quantity: 2, customer: 1, employee: 1, status: schema.StatusDelivered},
	})
	results, err := c.CalculateAll()
	require.NoError(t, err)

	out := RenderDashboard(results, c.MonthlyTrend(), c.TopProducts(5), c.RegionalPerformance(), false)
	assert.Contains(t, out, "KPI DASHBOARD")
	assert.Contains(t, out, "Total Revenue")
	assert.Contains(t, out, "MONTHLY REVENUE TREND")
	assert.Contains(t, out, "TOP PRODUCTS BY REVENUE")
	assert.Contains(t, out, "North America")
}
