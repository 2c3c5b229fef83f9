package transform

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"starforge/internal/logger"
	"starforge/internal/schema"
)

func day(y int, m time.Month, d int) schema.DimDate {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return schema.DimDate{
		DateKey:     int64(y*10000 + int(m)*100 + d),
		FullDate:    t,
		DayOfWeek:   t.Weekday().String(),
		MonthNumber: int(m),
		Quarter:     "Q1",
		Year:        y,
	}
}

func sampleDataset() *schema.Dataset {
	return &schema.Dataset{
		Dates: []schema.DimDate{day(2024, 1, 1), day(2024, 1, 2)},
		Products: []schema.DimProduct{
			{ProductKey: 1, ProductID: "PRD-0001", UnitCost: 50, ListPrice: 100},
			{ProductKey: 2, ProductID: "PRD-0002", UnitCost: 90, ListPrice: 100},
		},
		Customers: []schema.DimCustomer{
			{CustomerKey: 1, CustomerID: "CUST-00001", CustomerName: "acme corp", Segment: "enterprise"},
		},
		Employees: []schema.DimEmployee{
			{EmployeeKey: 1, EmployeeID: "EMP-001", FullName: "  Jane Smith  "},
		},
		Regions: []schema.DimRegion{
			{RegionKey: 1, Country: " United States ", Region: "North America", SubRegion: "West US", City: "Los Angeles"},
		},
		Sales: []schema.FactSale{
			{
				SalesKey: 1, OrderID: "ORD-000001", DateKey: 20240101,
				ProductKey: 1, CustomerKey: 1, EmployeeKey: 1, RegionKey: 1,
				Quantity: 10, UnitPrice: 100, DiscountPct: 0.10,
				SalesAmount: 900, COGS: 500, GrossMargin: 400, TargetAmount: 1000,
				OrderStatus: schema.StatusDelivered,
			},
			{
				SalesKey: 2, OrderID: "ORD-000002", DateKey: 20240102,
				ProductKey: 2, CustomerKey: 1, EmployeeKey: 1, RegionKey: 1,
				Quantity: 1, UnitPrice: 100, DiscountPct: 0,
				SalesAmount: 100, COGS: 90, GrossMargin: 10, TargetAmount: 200,
				OrderStatus: schema.StatusCancelled,
			},
		},
	}
}

func apply(t *testing.T, ds *schema.Dataset) *Summary {
	t.Helper()
	return New(logger.NewNop()).Apply(ds)
}

func TestDatesDeduped(t *testing.T) {
	ds := sampleDataset()
	ds.Dates = append(ds.Dates, day(2024, 1, 1))

	apply(t, ds)
	assert.Len(t, ds.Dates, 2)
}

func TestDateRangeIgnoresFileOrder(t *testing.T) {
	ds := sampleDataset()
	ds.Dates = []schema.DimDate{day(2024, 1, 15), day(2024, 1, 31), day(2024, 1, 1)}

	sum := apply(t, ds)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), sum.FirstDate)
	assert.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), sum.LastDate)
}

func TestMarginBands(t *testing.T) {
	tests := []struct {
		name      string
		cost      float64
		price     float64
		wantBand  string
	}{
		{"low", 90, 100, BandLow},
		{"low boundary", 80, 100, BandLow},
		{"medium", 70, 100, BandMedium},
		{"high", 50, 100, BandHigh},
		{"premium", 20, 100, BandPremium},
		{"zero margin unbanded", 100, 100, ""},
		{"negative margin unbanded", 120, 100, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds := sampleDataset()
			ds.Products = []schema.DimProduct{{ProductKey: 1, UnitCost: tt.cost, ListPrice: tt.price}}
			ds.Sales = nil
			apply(t, ds)
			require.Len(t, ds.Products, 1)
			assert.Equal(t, tt.wantBand, ds.Products[0].MarginBand)
		})
	}
}

func TestProductsWithMissingPricesDropped(t *testing.T) {
	ds := sampleDataset()
	ds.Products = append(ds.Products, schema.DimProduct{ProductKey: 3, UnitCost: schema.Null(), ListPrice: 100})

	sum := apply(t, ds)
	assert.Len(t, ds.Products, 2)
	assert.Equal(t, 1, sum.DroppedProducts)
}

func TestCustomerCleanup(t *testing.T) {
	ds := sampleDataset()
	apply(t, ds)

	assert.Equal(t, "Acme Corp", ds.Customers[0].CustomerName)
	assert.Equal(t, "Enterprise", ds.Customers[0].Segment)
}

func TestUnknownSegmentKept(t *testing.T) {
	ds := sampleDataset()
	ds.Customers[0].Segment = "Wholesale"
	apply(t, ds)

	assert.Equal(t, "Wholesale", ds.Customers[0].Segment)
}

func TestStringTrimming(t *testing.T) {
	ds := sampleDataset()
	apply(t, ds)

	assert.Equal(t, "Jane Smith", ds.Employees[0].FullName)
	assert.Equal(t, "United States", ds.Regions[0].Country)
}

func TestOrphanFactRowsDropped(t *testing.T) {
	ds := sampleDataset()
	orphan := ds.Sales[0]
	orphan.SalesKey = 3
	orphan.ProductKey = 999
	ds.Sales = append(ds.Sales, orphan)

	sum := apply(t, ds)
	assert.Len(t, ds.Sales, 2)
	assert.Equal(t, 1, sum.DroppedOrphans)
}

func TestFactRowsReferencingDroppedProductRemoved(t *testing.T) {
	ds := sampleDataset()
	// product 2 loses its price, so the cancelled line referencing it
	// becomes an orphan
	ds.Products[1].ListPrice = schema.Null()

	sum := apply(t, ds)
	assert.Len(t, ds.Sales, 1)
	assert.Equal(t, 1, sum.DroppedOrphans)
	assert.Equal(t, int64(1), ds.Sales[0].SalesKey)
}

func TestNullMeasureRowsDropped(t *testing.T) {
	ds := sampleDataset()
	ds.Sales[1].SalesAmount = schema.Null()

	sum := apply(t, ds)
	assert.Len(t, ds.Sales, 1)
	assert.Equal(t, 1, sum.DroppedNullMeasures)
}

func TestDerivedMeasures(t *testing.T) {
	ds := sampleDataset()
	apply(t, ds)

	s := ds.Sales[0]
	assert.InDelta(t, 44.44, s.GrossMarginPct, 0.001)   // 400/900*100
	assert.InDelta(t, 90.0, s.TargetAttainmentPct, 0.001) // 900/1000*100
	assert.InDelta(t, 100.0, s.DiscountImpact, 0.001)     // 10*100*0.10
	assert.True(t, s.IsRevenueEligible)

	assert.False(t, ds.Sales[1].IsRevenueEligible, "cancelled orders are not eligible")
}

func TestRatioGuardsDivisionByZero(t *testing.T) {
	assert.True(t, math.IsNaN(ratio(100, 0, 100)))
	assert.True(t, math.IsNaN(ratio(schema.Null(), 10, 100)))
	assert.InDelta(t, 50.0, ratio(5, 10, 100), 0.001)
}

func TestSummary(t *testing.T) {
	ds := sampleDataset()
	sum := apply(t, ds)

	assert.Equal(t, 2, sum.FactRows)
	assert.Equal(t, 1, sum.EligibleRows)
	assert.Equal(t, 2, sum.TotalOrders)
	assert.Equal(t, 1, sum.Customers)
	assert.Equal(t, 2, sum.ProductsSold)
	assert.InDelta(t, 900.0, sum.TotalRevenue, 0.001)
	assert.InDelta(t, 44.44, sum.AvgMarginPct, 0.001)
}
