package kpi

import (
	"math"
	"sort"
	"time"

	"starforge/internal/logger"
	"starforge/internal/schema"
	apperrors "starforge/pkg/errors"
)

// Result is one computed KPI with its classification
type Result struct {
	KPIID        string
	Name         string
	Category     string
	Value        float64
	Unit         string
	Status       string
	Formula      string
	CalculatedAt time.Time
}

// row is a revenue-eligible fact line enriched with its calendar
// attributes from dim_date
type row struct {
	schema.FactSale
	Year      int
	Month     int
	MonthName string
	Quarter   string
}

// Calculator computes the KPI catalog and its supporting aggregations
// over the processed dataset
type Calculator struct {
	ds   *schema.Dataset
	defs []Definition
	rows []row
	log  *logger.Logger
}

// NewCalculator joins the revenue-eligible fact rows to dim_date and
// prepares the catalog for evaluation
func NewCalculator(ds *schema.Dataset, defs []Definition, log *logger.Logger) *Calculator {
	dates := ds.DateByKey()
	eligible := ds.EligibleSales()
	rows := make([]row, 0, len(eligible))
	for _, s := range eligible {
		r := row{FactSale: s}
		if d, ok := dates[s.DateKey]; ok {
			r.Year = d.Year
			r.Month = d.MonthNumber
			r.MonthName = d.MonthName
			r.Quarter = d.Quarter
		}
		rows = append(rows, r)
	}
	return &Calculator{ds: ds, defs: defs, rows: rows, log: log}
}

// CalculateAll evaluates every catalog definition in order
func (c *Calculator) CalculateAll() ([]Result, error) {
	funcs := map[string]func() float64{
		"KPI-001": c.totalRevenue,
		"KPI-002": c.grossMarginPct,
		"KPI-003": c.revenueGrowthMoM,
		"KPI-004": c.avgOrderValue,
		"KPI-005": c.targetAttainment,
		"KPI-006": c.totalOrders,
		"KPI-007": c.discountRate,
		"KPI-008": c.revenuePerEmployee,
		"KPI-009": c.customerCount,
		"KPI-010": c.top10RevenueShare,
	}

	now := time.Now()
	results := make([]Result, 0, len(c.defs))
	for _, def := range c.defs {
		fn, ok := funcs[def.ID]
		if !ok {
			return nil, apperrors.KPIError("no calculation registered for KPI", def.ID, nil)
		}
		value := round4(fn())
		results = append(results, Result{
			KPIID:        def.ID,
			Name:         def.Name,
			Category:     def.Category,
			Value:        value,
			Unit:         def.Unit,
			Status:       RAGStatus(value, def.Thresholds),
			Formula:      def.Formula,
			CalculatedAt: now,
		})
	}
	c.log.Infof("calculated %d KPIs over %d revenue-eligible rows", len(results), len(c.rows))
	return results, nil
}

func (c *Calculator) totalRevenue() float64 {
	var total float64
	for _, r := range c.rows {
		total += nz(r.SalesAmount)
	}
	return total
}

func (c *Calculator) grossMarginPct() float64 {
	var rev, gm float64
	for _, r := range c.rows {
		rev += nz(r.SalesAmount)
		gm += nz(r.GrossMargin)
	}
	if rev <= 0 {
		return 0
	}
	return gm / rev * 100
}

func (c *Calculator) revenueGrowthMoM() float64 {
	monthly := c.monthlyRevenue()
	if len(monthly) < 2 {
		return 0
	}
	cur := monthly[len(monthly)-1].revenue
	prev := monthly[len(monthly)-2].revenue
	if prev <= 0 {
		return 0
	}
	return (cur - prev) / prev * 100
}

func (c *Calculator) avgOrderValue() float64 {
	orders := c.distinctOrders()
	if orders == 0 {
		return 0
	}
	return c.totalRevenue() / float64(orders)
}

func (c *Calculator) targetAttainment() float64 {
	var actual, target float64
	for _, r := range c.rows {
		actual += nz(r.SalesAmount)
		target += nz(r.TargetAmount)
	}
	if target <= 0 {
		return 0
	}
	return actual / target * 100
}

func (c *Calculator) totalOrders() float64 {
	return float64(c.distinctOrders())
}

func (c *Calculator) discountRate() float64 {
	var sum float64
	var n int
	for _, r := range c.rows {
		if schema.IsNull(r.DiscountPct) {
			continue
		}
		sum += r.DiscountPct
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n) * 100
}

func (c *Calculator) revenuePerEmployee() float64 {
	employees := make(map[int64]bool)
	for _, r := range c.rows {
		employees[r.EmployeeKey] = true
	}
	if len(employees) == 0 {
		return 0
	}
	return c.totalRevenue() / float64(len(employees))
}

func (c *Calculator) customerCount() float64 {
	customers := make(map[int64]bool)
	for _, r := range c.rows {
		customers[r.CustomerKey] = true
	}
	return float64(len(customers))
}

func (c *Calculator) top10RevenueShare() float64 {
	byProduct := make(map[int64]float64)
	var total float64
	for _, r := range c.rows {
		byProduct[r.ProductKey] += nz(r.SalesAmount)
		total += nz(r.SalesAmount)
	}
	if total <= 0 {
		return 0
	}
	revenues := make([]float64, 0, len(byProduct))
	for _, v := range byProduct {
		revenues = append(revenues, v)
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(revenues)))
	var top float64
	for i, v := range revenues {
		if i >= 10 {
			break
		}
		top += v
	}
	return top / total * 100
}

type monthRevenue struct {
	year    int
	month   int
	revenue float64
}

// monthlyRevenue sums eligible revenue per calendar month, sorted
// chronologically
func (c *Calculator) monthlyRevenue() []monthRevenue {
	byMonth := make(map[int]float64)
	for _, r := range c.rows {
		byMonth[r.Year*100+r.Month] += nz(r.SalesAmount)
	}
	out := make([]monthRevenue, 0, len(byMonth))
	for key, rev := range byMonth {
		out = append(out, monthRevenue{year: key / 100, month: key % 100, revenue: rev})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].year != out[j].year {
			return out[i].year < out[j].year
		}
		return out[i].month < out[j].month
	})
	return out
}

func (c *Calculator) distinctOrders() int {
	orders := make(map[string]bool)
	for _, r := range c.rows {
		orders[r.OrderID] = true
	}
	return len(orders)
}

// nz treats null measures as zero so sums skip them
func nz(v float64) float64 {
	if schema.IsNull(v) {
		return 0
	}
	return v
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
