package schema

import (
	"math"
	"time"
)

// Table names as they appear on disk (<name>.csv)
const (
	TableDimDate     = "dim_date"
	TableDimProduct  = "dim_product"
	TableDimCustomer = "dim_customer"
	TableDimEmployee = "dim_employee"
	TableDimRegion   = "dim_region"
	TableFactSales   = "fact_sales"
)

// TableNames lists all star-schema tables, dimensions first
var TableNames = []string{
	TableDimDate,
	TableDimProduct,
	TableDimCustomer,
	TableDimEmployee,
	TableDimRegion,
	TableFactSales,
}

// Order statuses carried by fact rows
const (
	StatusOpen      = "Open"
	StatusConfirmed = "Confirmed"
	StatusShipped   = "Shipped"
	StatusDelivered = "Delivered"
	StatusCancelled = "Cancelled"
)

// ValidOrderStatuses is the closed set of order statuses
var ValidOrderStatuses = []string{
	StatusOpen, StatusConfirmed, StatusShipped, StatusDelivered, StatusCancelled,
}

// ValidSegments is the closed set of customer segments
var ValidSegments = []string{"Enterprise", "Mid-Market", "SMB", "Startup"}

// ValidQuarters is the closed set of quarter labels
var ValidQuarters = []string{"Q1", "Q2", "Q3", "Q4"}

// DimDate is one calendar day of the date dimension
type DimDate struct {
	DateKey      int64 // YYYYMMDD
	FullDate     time.Time
	DayOfWeek    string
	DayOfMonth   int
	WeekNumber   int
	MonthNumber  int
	MonthName    string
	Quarter      string
	Year         int
	IsWeekend    bool
	IsHoliday    bool
	FiscalPeriod string
}

// DimProduct is one row of the product dimension. MarginBand is derived
// during transform and empty in raw data.
type DimProduct struct {
	ProductKey  int64
	ProductID   string
	ProductName string
	Category    string
	SubCategory string
	Brand       string
	UnitCost    float64 // NaN when missing
	ListPrice   float64 // NaN when missing
	IsActive    bool
	LaunchDate  time.Time
	MarginBand  string
}

// DimCustomer is one row of the customer dimension
type DimCustomer struct {
	CustomerKey     int64
	CustomerID      string
	CustomerName    string
	Segment         string
	Industry        string
	Email           string
	AcquisitionDate time.Time
	IsActive        bool
}

// DimEmployee is one row of the employee dimension
type DimEmployee struct {
	EmployeeKey int64
	EmployeeID  string
	FullName    string
	Department  string
	JobTitle    string
	ManagerID   string
	HireDate    time.Time
	RegionKey   int64
	IsActive    bool
}

// DimRegion is one row of the region dimension
type DimRegion struct {
	RegionKey int64
	Country   string
	Region    string
	SubRegion string
	City      string
	Currency  string
}

// FactSale is one fact line item. The block after Channel is derived by
// transform and absent from raw files.
type FactSale struct {
	SalesKey    int64
	OrderID     string
	LineNumber  int
	DateKey     int64
	ProductKey  int64
	CustomerKey int64
	RegionKey   int64
	EmployeeKey int64

	Quantity     float64 // NaN when missing
	UnitPrice    float64
	DiscountPct  float64
	SalesAmount  float64
	COGS         float64
	GrossMargin  float64
	TargetAmount float64

	OrderStatus string
	Channel     string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	GrossMarginPct      float64
	TargetAttainmentPct float64
	DiscountImpact      float64
	IsRevenueEligible   bool
}

// Dataset groups all star-schema tables held in memory
type Dataset struct {
	Dates     []DimDate
	Products  []DimProduct
	Customers []DimCustomer
	Employees []DimEmployee
	Regions   []DimRegion
	Sales     []FactSale
}

// IsNull reports whether a float column value is the null sentinel
func IsNull(v float64) bool {
	return math.IsNaN(v)
}

// Null returns the null sentinel for float columns
func Null() float64 {
	return math.NaN()
}

// EligibleSales returns the revenue-eligible fact rows
func (d *Dataset) EligibleSales() []FactSale {
	out := make([]FactSale, 0, len(d.Sales))
	for _, s := range d.Sales {
		if s.IsRevenueEligible {
			out = append(out, s)
		}
	}
	return out
}

// DateByKey indexes the date dimension by date_key
func (d *Dataset) DateByKey() map[int64]DimDate {
	m := make(map[int64]DimDate, len(d.Dates))
	for _, dd := range d.Dates {
		m[dd.DateKey] = dd
	}
	return m
}

// ProductByKey indexes the product dimension by product_key
func (d *Dataset) ProductByKey() map[int64]DimProduct {
	m := make(map[int64]DimProduct, len(d.Products))
	for _, p := range d.Products {
		m[p.ProductKey] = p
	}
	return m
}

// CustomerByKey indexes the customer dimension by customer_key
func (d *Dataset) CustomerByKey() map[int64]DimCustomer {
	m := make(map[int64]DimCustomer, len(d.Customers))
	for _, c := range d.Customers {
		m[c.CustomerKey] = c
	}
	return m
}

// EmployeeByKey indexes the employee dimension by employee_key
func (d *Dataset) EmployeeByKey() map[int64]DimEmployee {
	m := make(map[int64]DimEmployee, len(d.Employees))
	for _, e := range d.Employees {
		m[e.EmployeeKey] = e
	}
	return m
}

// RegionByKey indexes the region dimension by region_key
func (d *Dataset) RegionByKey() map[int64]DimRegion {
	m := make(map[int64]DimRegion, len(d.Regions))
	for _, r := range d.Regions {
		m[r.RegionKey] = r
	}
	return m
}
