package kpi

import (
	"sort"

	"starforge/internal/schema"
)

// TrendPoint is one calendar month of the revenue trend. GrowthMoM is
// null on the first month.
type TrendPoint struct {
	Year           int
	Month          int
	MonthName      string
	Quarter        string
	Revenue        float64
	GrossMargin    float64
	COGS           float64
	Orders         int
	Customers      int
	AvgDiscountPct float64
	GrossMarginPct float64
	GrowthMoM      float64
}

// ProductRank is one product's aggregate revenue performance
type ProductRank struct {
	ProductKey     int64
	ProductName    string
	Category       string
	Revenue        float64
	GrossMargin    float64
	Orders         int
	Quantity       float64
	GrossMarginPct float64
}

// CustomerRank is one customer's aggregate revenue performance
type CustomerRank struct {
	CustomerKey   int64
	CustomerName  string
	Segment       string
	Revenue       float64
	Orders        int
	AvgOrderValue float64
}

// RegionRank is one region's share of revenue and margin
type RegionRank struct {
	RegionKey           int64
	Region              string
	Country             string
	Revenue             float64
	GrossMargin         float64
	Orders              int
	Customers           int
	Target              float64
	RevenueSharePct     float64
	GrossMarginPct      float64
	TargetAttainmentPct float64
}

type monthAgg struct {
	monthName   string
	quarter     string
	revenue     float64
	grossMargin float64
	cogs        float64
	orders      map[string]bool
	customers   map[int64]bool
	discountSum float64
	discountN   int
}

// MonthlyTrend aggregates eligible revenue per calendar month with
// month-over-month growth
func (c *Calculator) MonthlyTrend() []TrendPoint {
	byMonth := make(map[int]*monthAgg)
	for _, r := range c.rows {
		key := r.Year*100 + r.Month
		agg, ok := byMonth[key]
		if !ok {
			agg = &monthAgg{
				monthName: r.MonthName,
				quarter:   r.Quarter,
				orders:    make(map[string]bool),
				customers: make(map[int64]bool),
			}
			byMonth[key] = agg
		}
		agg.revenue += nz(r.SalesAmount)
		agg.grossMargin += nz(r.GrossMargin)
		agg.cogs += nz(r.COGS)
		agg.orders[r.OrderID] = true
		agg.customers[r.CustomerKey] = true
		if !schema.IsNull(r.DiscountPct) {
			agg.discountSum += r.DiscountPct
			agg.discountN++
		}
	}

	keys := make([]int, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	points := make([]TrendPoint, 0, len(keys))
	for i, k := range keys {
		agg := byMonth[k]
		p := TrendPoint{
			Year:        k / 100,
			Month:       k % 100,
			MonthName:   agg.monthName,
			Quarter:     agg.quarter,
			Revenue:     agg.revenue,
			GrossMargin: agg.grossMargin,
			COGS:        agg.cogs,
			Orders:      len(agg.orders),
			Customers:   len(agg.customers),
		}
		if agg.revenue > 0 {
			p.GrossMarginPct = round2(agg.grossMargin / agg.revenue * 100)
		}
		if agg.discountN > 0 {
			p.AvgDiscountPct = round2(agg.discountSum / float64(agg.discountN) * 100)
		}
		p.GrowthMoM = schema.Null()
		if i > 0 {
			prev := byMonth[keys[i-1]].revenue
			if prev > 0 {
				p.GrowthMoM = (agg.revenue - prev) / prev * 100
			}
		}
		points = append(points, p)
	}
	return points
}

// TopProducts ranks products by eligible revenue, highest first
func (c *Calculator) TopProducts(n int) []ProductRank {
	type agg struct {
		revenue     float64
		grossMargin float64
		orders      map[string]bool
		quantity    float64
	}
	byProduct := make(map[int64]*agg)
	for _, r := range c.rows {
		a, ok := byProduct[r.ProductKey]
		if !ok {
			a = &agg{orders: make(map[string]bool)}
			byProduct[r.ProductKey] = a
		}
		a.revenue += nz(r.SalesAmount)
		a.grossMargin += nz(r.GrossMargin)
		a.orders[r.OrderID] = true
		a.quantity += nz(r.Quantity)
	}

	products := c.ds.ProductByKey()
	ranks := make([]ProductRank, 0, len(byProduct))
	for key, a := range byProduct {
		rank := ProductRank{
			ProductKey:  key,
			Revenue:     a.revenue,
			GrossMargin: a.grossMargin,
			Orders:      len(a.orders),
			Quantity:    a.quantity,
		}
		if p, ok := products[key]; ok {
			rank.ProductName = p.ProductName
			rank.Category = p.Category
		}
		if a.revenue > 0 {
			rank.GrossMarginPct = round2(a.grossMargin / a.revenue * 100)
		}
		ranks = append(ranks, rank)
	}
	sortByRevenue(ranks, func(r ProductRank) (float64, int64) { return r.Revenue, r.ProductKey })
	return head(ranks, n)
}

// TopCustomers ranks customers by eligible revenue, highest first
func (c *Calculator) TopCustomers(n int) []CustomerRank {
	type agg struct {
		revenue float64
		orders  map[string]bool
	}
	byCustomer := make(map[int64]*agg)
	for _, r := range c.rows {
		a, ok := byCustomer[r.CustomerKey]
		if !ok {
			a = &agg{orders: make(map[string]bool)}
			byCustomer[r.CustomerKey] = a
		}
		a.revenue += nz(r.SalesAmount)
		a.orders[r.OrderID] = true
	}

	customers := c.ds.CustomerByKey()
	ranks := make([]CustomerRank, 0, len(byCustomer))
	for key, a := range byCustomer {
		rank := CustomerRank{
			CustomerKey: key,
			Revenue:     a.revenue,
			Orders:      len(a.orders),
		}
		if cust, ok := customers[key]; ok {
			rank.CustomerName = cust.CustomerName
			rank.Segment = cust.Segment
		}
		if rank.Orders > 0 {
			rank.AvgOrderValue = round2(a.revenue / float64(rank.Orders))
		}
		ranks = append(ranks, rank)
	}
	sortByRevenue(ranks, func(r CustomerRank) (float64, int64) { return r.Revenue, r.CustomerKey })
	return head(ranks, n)
}

// RegionalPerformance aggregates eligible revenue per region, sorted
// by revenue
func (c *Calculator) RegionalPerformance() []RegionRank {
	type agg struct {
		revenue     float64
		grossMargin float64
		orders      map[string]bool
		customers   map[int64]bool
		target      float64
	}
	byRegion := make(map[int64]*agg)
	var totalRevenue float64
	for _, r := range c.rows {
		a, ok := byRegion[r.RegionKey]
		if !ok {
			a = &agg{orders: make(map[string]bool), customers: make(map[int64]bool)}
			byRegion[r.RegionKey] = a
		}
		a.revenue += nz(r.SalesAmount)
		a.grossMargin += nz(r.GrossMargin)
		a.orders[r.OrderID] = true
		a.customers[r.CustomerKey] = true
		a.target += nz(r.TargetAmount)
		totalRevenue += nz(r.SalesAmount)
	}

	regions := c.ds.RegionByKey()
	ranks := make([]RegionRank, 0, len(byRegion))
	for key, a := range byRegion {
		rank := RegionRank{
			RegionKey:   key,
			Revenue:     a.revenue,
			GrossMargin: a.grossMargin,
			Orders:      len(a.orders),
			Customers:   len(a.customers),
			Target:      a.target,
		}
		if reg, ok := regions[key]; ok {
			rank.Region = reg.Region
			rank.Country = reg.Country
		}
		if totalRevenue > 0 {
			rank.RevenueSharePct = round2(a.revenue / totalRevenue * 100)
		}
		if a.revenue > 0 {
			rank.GrossMarginPct = round2(a.grossMargin / a.revenue * 100)
		}
		if a.target > 0 {
			rank.TargetAttainmentPct = round2(a.revenue / a.target * 100)
		}
		ranks = append(ranks, rank)
	}
	sortByRevenue(ranks, func(r RegionRank) (float64, int64) { return r.Revenue, r.RegionKey })
	return ranks
}

// sortByRevenue orders ranks by revenue descending, breaking ties by
// key so output is deterministic
func sortByRevenue[T any](ranks []T, field func(T) (float64, int64)) {
	sort.Slice(ranks, func(i, j int) bool {
		ri, ki := field(ranks[i])
		rj, kj := field(ranks[j])
		if ri != rj {
			return ri > rj
		}
		return ki < kj
	})
}

func head[T any](s []T, n int) []T {
	if n >= 0 && len(s) > n {
		return s[:n]
	}
	return s
}
