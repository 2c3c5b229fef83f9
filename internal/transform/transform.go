package transform

import (
	"math"
	"strings"
	"time"

	"starforge/internal/logger"
	"starforge/internal/schema"
)

// Margin band labels derived on dim_product
const (
	BandLow     = "Low (<20%)"
	BandMedium  = "Medium (20-40%)"
	BandHigh    = "High (40-60%)"
	BandPremium = "Premium (>60%)"
)

// segmentCanon maps lowercased segment labels to their canonical form
var segmentCanon = map[string]string{
	"enterprise": "Enterprise",
	"mid-market": "Mid-Market",
	"smb":        "SMB",
	"startup":    "Startup",
}

// Summary captures what the transform did so the CLI can report it
type Summary struct {
	DroppedProducts     int
	DroppedOrphans      int
	DroppedNullMeasures int

	FirstDate time.Time
	LastDate  time.Time

	TotalRevenue float64
	TotalOrders  int
	AvgMarginPct float64
	Customers    int
	ProductsSold int
	EligibleRows int
	FactRows     int
}

// Transformer cleans a raw dataset into the processed star schema
type Transformer struct {
	log *logger.Logger
}

func New(log *logger.Logger) *Transformer {
	return &Transformer{log: log}
}

// Apply transforms every table in place order: dimensions first so the
// fact FK filter runs against cleaned keys.
func (t *Transformer) Apply(ds *schema.Dataset) *Summary {
	sum := &Summary{}

	t.log.Info("transforming dim_date")
	ds.Dates = t.dates(ds.Dates, sum)

	t.log.Info("transforming dim_product")
	ds.Products = t.products(ds.Products, sum)

	t.log.Info("transforming dim_customer")
	ds.Customers = t.customers(ds.Customers)

	t.log.Info("transforming dim_employee")
	ds.Employees = t.employees(ds.Employees)

	t.log.Info("transforming dim_region")
	ds.Regions = t.regions(ds.Regions)

	t.log.Info("transforming fact_sales")
	ds.Sales = t.sales(ds, sum)

	t.summarize(ds, sum)
	return sum
}

// dates dedupes on date_key, keeping the first occurrence
func (t *Transformer) dates(rows []schema.DimDate, sum *Summary) []schema.DimDate {
	seen := make(map[int64]bool, len(rows))
	out := rows[:0]
	for _, r := range rows {
		if seen[r.DateKey] {
			continue
		}
		seen[r.DateKey] = true
		out = append(out, r)

		// the raw file is not guaranteed to be sorted
		if r.FullDate.IsZero() {
			continue
		}
		if sum.FirstDate.IsZero() || r.FullDate.Before(sum.FirstDate) {
			sum.FirstDate = r.FullDate
		}
		if r.FullDate.After(sum.LastDate) {
			sum.LastDate = r.FullDate
		}
	}
	if !sum.FirstDate.IsZero() {
		t.log.Infof("date range %s to %s",
			sum.FirstDate.Format("2006-01-02"),
			sum.LastDate.Format("2006-01-02"))
	}
	return out
}

// products derives the margin band and drops rows with missing prices
func (t *Transformer) products(rows []schema.DimProduct, sum *Summary) []schema.DimProduct {
	out := rows[:0]
	for _, r := range rows {
		if schema.IsNull(r.UnitCost) || schema.IsNull(r.ListPrice) {
			sum.DroppedProducts++
			continue
		}
		r.MarginBand = marginBand((r.ListPrice - r.UnitCost) / r.ListPrice * 100)
		out = append(out, r)
	}
	if sum.DroppedProducts > 0 {
		t.log.Warnf("dropped %d products with missing prices", sum.DroppedProducts)
	}
	return out
}

func (t *Transformer) customers(rows []schema.DimCustomer) []schema.DimCustomer {
	for i := range rows {
		rows[i].CustomerName = titleCase(strings.TrimSpace(rows[i].CustomerName))
		if canon, ok := segmentCanon[strings.ToLower(strings.TrimSpace(rows[i].Segment))]; ok {
			rows[i].Segment = canon
		}
	}
	return rows
}

func (t *Transformer) employees(rows []schema.DimEmployee) []schema.DimEmployee {
	for i := range rows {
		rows[i].FullName = strings.TrimSpace(rows[i].FullName)
	}
	return rows
}

func (t *Transformer) regions(rows []schema.DimRegion) []schema.DimRegion {
	for i := range rows {
		rows[i].Country = strings.TrimSpace(rows[i].Country)
		rows[i].Region = strings.TrimSpace(rows[i].Region)
		rows[i].SubRegion = strings.TrimSpace(rows[i].SubRegion)
		rows[i].City = strings.TrimSpace(rows[i].City)
	}
	return rows
}

// sales filters orphan FK rows, derives the measure columns and drops
// rows missing critical measures
func (t *Transformer) sales(ds *schema.Dataset, sum *Summary) []schema.FactSale {
	dates := ds.DateByKey()
	products := ds.ProductByKey()
	customers := ds.CustomerByKey()
	employees := ds.EmployeeByKey()
	regions := ds.RegionByKey()

	out := ds.Sales[:0]
	for _, r := range ds.Sales {
		if _, ok := dates[r.DateKey]; !ok {
			sum.DroppedOrphans++
			continue
		}
		if _, ok := products[r.ProductKey]; !ok {
			sum.DroppedOrphans++
			continue
		}
		if _, ok := customers[r.CustomerKey]; !ok {
			sum.DroppedOrphans++
			continue
		}
		if _, ok := employees[r.EmployeeKey]; !ok {
			sum.DroppedOrphans++
			continue
		}
		if _, ok := regions[r.RegionKey]; !ok {
			sum.DroppedOrphans++
			continue
		}

		if schema.IsNull(r.SalesAmount) || schema.IsNull(r.COGS) || schema.IsNull(r.Quantity) {
			sum.DroppedNullMeasures++
			continue
		}

		r.GrossMarginPct = ratio(r.GrossMargin, r.SalesAmount, 100)
		r.TargetAttainmentPct = ratio(r.SalesAmount, r.TargetAmount, 100)
		if schema.IsNull(r.DiscountPct) || schema.IsNull(r.UnitPrice) {
			r.DiscountImpact = schema.Null()
		} else {
			r.DiscountImpact = round2(r.Quantity * r.UnitPrice * r.DiscountPct)
		}
		r.IsRevenueEligible = r.OrderStatus != schema.StatusCancelled

		out = append(out, r)
	}

	if sum.DroppedOrphans > 0 {
		t.log.Warnf("dropped %d orphan fact rows failing key lookups", sum.DroppedOrphans)
	}
	if sum.DroppedNullMeasures > 0 {
		t.log.Warnf("dropped %d fact rows with null measures", sum.DroppedNullMeasures)
	}
	return out
}

func (t *Transformer) summarize(ds *schema.Dataset, sum *Summary) {
	orders := make(map[string]bool)
	custs := make(map[int64]bool)
	prods := make(map[int64]bool)
	var marginSum float64
	var marginN int

	for _, s := range ds.Sales {
		orders[s.OrderID] = true
		custs[s.CustomerKey] = true
		prods[s.ProductKey] = true
		if s.IsRevenueEligible {
			sum.TotalRevenue += s.SalesAmount
			sum.EligibleRows++
			if !schema.IsNull(s.GrossMarginPct) {
				marginSum += s.GrossMarginPct
				marginN++
			}
		}
	}

	sum.FactRows = len(ds.Sales)
	sum.TotalOrders = len(orders)
	sum.Customers = len(custs)
	sum.ProductsSold = len(prods)
	if marginN > 0 {
		sum.AvgMarginPct = marginSum / float64(marginN)
	}

	t.log.Infof("revenue-eligible rows: %d / %d", sum.EligibleRows, sum.FactRows)
}

// marginBand buckets a margin percentage; out-of-range values get no band
func marginBand(pct float64) string {
	switch {
	case schema.IsNull(pct) || pct <= 0 || pct > 100:
		return ""
	case pct <= 20:
		return BandLow
	case pct <= 40:
		return BandMedium
	case pct <= 60:
		return BandHigh
	default:
		return BandPremium
	}
}

// ratio returns num/den*scale rounded to 2 places, null when den is
// zero or either side is null
func ratio(num, den, scale float64) float64 {
	if schema.IsNull(num) || schema.IsNull(den) || den == 0 {
		return schema.Null()
	}
	return round2(num / den * scale)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// titleCase uppercases the first letter of each space-separated word
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
