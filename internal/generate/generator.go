package generate

import (
	"fmt"
	"math/rand"
	"time"

	"starforge/internal/logger"
	"starforge/internal/schema"
	apperrors "starforge/pkg/errors"
	"starforge/pkg/models"
)

// regionCatalog is the fixed regional hierarchy the generator draws from
var regionCatalog = []schema.DimRegion{
	{Country: "United States", Region: "North America", SubRegion: "Northeast US", City: "New York", Currency: "USD"},
	{Country: "United States", Region: "North America", SubRegion: "Southeast US", City: "Atlanta", Currency: "USD"},
	{Country: "United States", Region: "North America", SubRegion: "Midwest US", City: "Chicago", Currency: "USD"},
	{Country: "United States", Region: "North America", SubRegion: "West US", City: "Los Angeles", Currency: "USD"},
	{Country: "United States", Region: "North America", SubRegion: "Southwest US", City: "Dallas", Currency: "USD"},
	{Country: "Canada", Region: "North America", SubRegion: "Eastern Canada", City: "Toronto", Currency: "CAD"},
	{Country: "Canada", Region: "North America", SubRegion: "Western Canada", City: "Vancouver", Currency: "CAD"},
	{Country: "United Kingdom", Region: "Europe", SubRegion: "England", City: "London", Currency: "GBP"},
	{Country: "Germany", Region: "Europe", SubRegion: "West Germany", City: "Frankfurt", Currency: "EUR"},
	{Country: "France", Region: "Europe", SubRegion: "Ile-de-France", City: "Paris", Currency: "EUR"},
	{Country: "Netherlands", Region: "Europe", SubRegion: "North Holland", City: "Amsterdam", Currency: "EUR"},
	{Country: "Spain", Region: "Europe", SubRegion: "Catalonia", City: "Barcelona", Currency: "EUR"},
	{Country: "Australia", Region: "Asia Pacific", SubRegion: "New South Wales", City: "Sydney", Currency: "AUD"},
	{Country: "Australia", Region: "Asia Pacific", SubRegion: "Victoria", City: "Melbourne", Currency: "AUD"},
	{Country: "Japan", Region: "Asia Pacific", SubRegion: "Kanto", City: "Tokyo", Currency: "JPY"},
	{Country: "Singapore", Region: "Asia Pacific", SubRegion: "Central Region", City: "Singapore", Currency: "SGD"},
	{Country: "India", Region: "Asia Pacific", SubRegion: "Maharashtra", City: "Mumbai", Currency: "INR"},
	{Country: "Brazil", Region: "Latin America", SubRegion: "Southeast", City: "São Paulo", Currency: "BRL"},
	{Country: "Mexico", Region: "Latin America", SubRegion: "Mexico City", City: "Mexico City", Currency: "MXN"},
	{Country: "UAE", Region: "Middle East", SubRegion: "Dubai", City: "Dubai", Currency: "AED"},
}

// productTaxonomy is kept as an ordered slice so a fixed seed always
// produces the same catalog
var productTaxonomy = []struct {
	category      string
	subCategories []string
}{
	{"Electronics", []string{"Laptops", "Tablets", "Monitors", "Peripherals"}},
	{"Software", []string{"ERP Licenses", "Analytics Tools", "Security Suite", "Cloud Services"}},
	{"Services", []string{"Consulting", "Implementation", "Support & Maintenance", "Training"}},
	{"Hardware", []string{"Servers", "Networking", "Storage", "IoT Devices"}},
	{"Office Supplies", []string{"Furniture", "Stationery", "Equipment", "Accessories"}},
}

var (
	brands     = []string{"TechCorp", "SoftPro", "GlobalSystems", "InnovateTech", "DataStream", "CloudEdge"}
	segments   = []string{"Enterprise", "Mid-Market", "SMB", "Startup"}
	industries = []string{
		"Manufacturing", "Financial Services", "Healthcare", "Retail",
		"Technology", "Energy", "Telecommunications", "Education",
		"Government", "Logistics",
	}
	jobTitles = []string{
		"Account Executive", "Senior Account Executive",
		"Sales Manager", "Regional Sales Director",
		"Business Development Rep", "Inside Sales Rep",
	}
	departments = []string{"Sales", "Pre-Sales", "Channel Sales", "Enterprise Sales"}

	orderStatuses  = []string{schema.StatusOpen, schema.StatusConfirmed, schema.StatusShipped, schema.StatusDelivered, schema.StatusCancelled}
	statusWeights  = []int{5, 10, 20, 60, 5}
	channels       = []string{"Direct", "Partner", "Online", "Retail"}
	channelWeights = []int{40, 30, 20, 10}

	discountSteps   = []float64{0, 0.05, 0.10, 0.15, 0.20, 0.25}
	discountWeights = []int{30, 20, 20, 15, 10, 5}
)

// Generator produces the raw star-schema tables from a seeded RNG
type Generator struct {
	cfg   models.GeneratorConfig
	rng   *rand.Rand
	log   *logger.Logger
	start time.Time
	end   time.Time
}

// New creates a Generator from config. The same seed always yields the
// same dataset.
func New(cfg models.GeneratorConfig, log *logger.Logger) (*Generator, error) {
	start, err := time.Parse("2006-01-02", cfg.StartDate)
	if err != nil {
		return nil, apperrors.ConfigError("invalid generator start date", "generator.start_date")
	}
	end, err := time.Parse("2006-01-02", cfg.EndDate)
	if err != nil {
		return nil, apperrors.ConfigError("invalid generator end date", "generator.end_date")
	}
	if end.Before(start) {
		return nil, apperrors.ConfigError("end date precedes start date", "generator.end_date")
	}
	return &Generator{
		cfg:   cfg,
		rng:   rand.New(rand.NewSource(cfg.Seed)),
		log:   log,
		start: start,
		end:   end,
	}, nil
}

// Dataset builds all six raw tables
func (g *Generator) Dataset() *schema.Dataset {
	ds := &schema.Dataset{}

	ds.Dates = g.dates()
	g.log.Infof("generated %d date records", len(ds.Dates))

	ds.Regions = g.regions()
	g.log.Infof("generated %d regions", len(ds.Regions))

	ds.Products = g.products()
	g.log.Infof("generated %d products", len(ds.Products))

	ds.Customers = g.customers()
	g.log.Infof("generated %d customers", len(ds.Customers))

	ds.Employees = g.employees(ds.Regions)
	g.log.Infof("generated %d employees", len(ds.Employees))

	ds.Sales = g.sales(ds)
	g.log.Infof("generated %d sales line items", len(ds.Sales))

	return ds
}

func (g *Generator) dates() []schema.DimDate {
	holidays := make(map[int64]bool)
	for year := g.start.Year(); year <= g.end.Year(); year++ {
		for _, d := range []time.Time{
			time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(year, 7, 4, 0, 0, 0, 0, time.UTC),
			time.Date(year, 12, 25, 0, 0, 0, 0, time.UTC),
		} {
			holidays[dateKey(d)] = true
		}
	}

	var rows []schema.DimDate
	for cur := g.start; !cur.After(g.end); cur = cur.AddDate(0, 0, 1) {
		_, week := cur.ISOWeek()
		wd := cur.Weekday()
		rows = append(rows, schema.DimDate{
			DateKey:      dateKey(cur),
			FullDate:     cur,
			DayOfWeek:    wd.String(),
			DayOfMonth:   cur.Day(),
			WeekNumber:   week,
			MonthNumber:  int(cur.Month()),
			MonthName:    cur.Month().String(),
			Quarter:      fmt.Sprintf("Q%d", (int(cur.Month())-1)/3+1),
			Year:         cur.Year(),
			IsWeekend:    wd == time.Saturday || wd == time.Sunday,
			IsHoliday:    holidays[dateKey(cur)],
			FiscalPeriod: fmt.Sprintf("FY%d-P%02d", cur.Year(), int(cur.Month())),
		})
	}
	return rows
}

func (g *Generator) regions() []schema.DimRegion {
	n := g.cfg.Regions
	if n > len(regionCatalog) {
		n = len(regionCatalog)
	}
	rows := make([]schema.DimRegion, 0, n)
	for i := 0; i < n; i++ {
		r := regionCatalog[i]
		r.RegionKey = int64(i + 1)
		rows = append(rows, r)
	}
	return rows
}

func (g *Generator) products() []schema.DimProduct {
	rows := make([]schema.DimProduct, 0, g.cfg.Products)
	for i := 1; i <= g.cfg.Products; i++ {
		tax := productTaxonomy[g.rng.Intn(len(productTaxonomy))]
		sub := tax.subCategories[g.rng.Intn(len(tax.subCategories))]
		unitCost := round2(uniform(g.rng, 50, 5000))
		listPrice := round2(unitCost * uniform(g.rng, 1.3, 2.5))
		rows = append(rows, schema.DimProduct{
			ProductKey:  int64(i),
			ProductID:   fmt.Sprintf("PRD-%04d", i),
			ProductName: fmt.Sprintf("%s %s %s", brands[g.rng.Intn(len(brands))], sub, bothify(g.rng, "??-###")),
			Category:    tax.category,
			SubCategory: sub,
			Brand:       brands[g.rng.Intn(len(brands))],
			UnitCost:    unitCost,
			ListPrice:   listPrice,
			IsActive:    weightedChoice(g.rng, []int{90, 10}) == 0,
			LaunchDate:  dateBetween(g.rng, time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), g.start),
		})
	}
	return rows
}

func (g *Generator) customers() []schema.DimCustomer {
	rows := make([]schema.DimCustomer, 0, g.cfg.Customers)
	for i := 1; i <= g.cfg.Customers; i++ {
		name := companyName(g.rng)
		rows = append(rows, schema.DimCustomer{
			CustomerKey:     int64(i),
			CustomerID:      fmt.Sprintf("CUST-%05d", i),
			CustomerName:    name,
			Segment:         segments[g.rng.Intn(len(segments))],
			Industry:        industries[g.rng.Intn(len(industries))],
			Email:           contactEmail(name),
			AcquisitionDate: dateBetween(g.rng, time.Date(2019, 1, 1, 0, 0, 0, 0, time.UTC), g.start),
			IsActive:        weightedChoice(g.rng, []int{85, 15}) == 0,
		})
	}
	return rows
}

func (g *Generator) employees(regions []schema.DimRegion) []schema.DimEmployee {
	n := g.cfg.Employees
	rows := make([]schema.DimEmployee, 0, n)
	for i := 1; i <= n; i++ {
		managerID := ""
		if i > 5 {
			pool := n / 5
			if pool < 1 {
				pool = 1
			}
			managerID = fmt.Sprintf("EMP-%03d", g.rng.Intn(pool)+1)
		}
		rows = append(rows, schema.DimEmployee{
			EmployeeKey: int64(i),
			EmployeeID:  fmt.Sprintf("EMP-%03d", i),
			FullName:    personName(g.rng),
			Department:  departments[g.rng.Intn(len(departments))],
			JobTitle:    jobTitles[g.rng.Intn(len(jobTitles))],
			ManagerID:   managerID,
			HireDate:    dateBetween(g.rng, time.Date(2018, 1, 1, 0, 0, 0, 0, time.UTC), g.start),
			RegionKey:   regions[g.rng.Intn(len(regions))].RegionKey,
			IsActive:    weightedChoice(g.rng, []int{92, 8}) == 0,
		})
	}
	return rows
}

func (g *Generator) sales(ds *schema.Dataset) []schema.FactSale {
	var rows []schema.FactSale
	salesKey := int64(1)

	for orderNum := 1; orderNum <= g.cfg.Orders; orderNum++ {
		orderID := fmt.Sprintf("ORD-%06d", orderNum)
		orderDate := ds.Dates[g.rng.Intn(len(ds.Dates))].DateKey
		customer := ds.Customers[g.rng.Intn(len(ds.Customers))].CustomerKey
		employee := ds.Employees[g.rng.Intn(len(ds.Employees))].EmployeeKey
		region := ds.Regions[g.rng.Intn(len(ds.Regions))].RegionKey
		channel := channels[weightedChoice(g.rng, channelWeights)]
		status := orderStatuses[weightedChoice(g.rng, statusWeights)]
		lines := g.rng.Intn(5) + 1

		ts := time.Now().
			Truncate(time.Hour * 24).
			Add(time.Duration(g.rng.Intn(11)+8) * time.Hour).
			Add(time.Duration(g.rng.Intn(60)) * time.Minute).
			Add(time.Duration(g.rng.Intn(60)) * time.Second).
			AddDate(0, 0, -g.rng.Intn(731))

		for line := 1; line <= lines; line++ {
			product := ds.Products[g.rng.Intn(len(ds.Products))]
			quantity := float64(g.rng.Intn(50) + 1)
			discount := discountSteps[weightedChoice(g.rng, discountWeights)]
			unitPrice := round2(product.ListPrice * (1 - discount/2))
			salesAmt := round2(quantity * unitPrice * (1 - discount))
			cogs := round2(quantity * product.UnitCost)

			rows = append(rows, schema.FactSale{
				SalesKey:     salesKey,
				OrderID:      orderID,
				LineNumber:   line,
				DateKey:      orderDate,
				ProductKey:   product.ProductKey,
				CustomerKey:  customer,
				RegionKey:    region,
				EmployeeKey:  employee,
				Quantity:     quantity,
				UnitPrice:    unitPrice,
				DiscountPct:  discount,
				SalesAmount:  salesAmt,
				COGS:         cogs,
				GrossMargin:  round2(salesAmt - cogs),
				TargetAmount: round2(salesAmt * uniform(g.rng, 0.85, 1.20)),
				OrderStatus:  status,
				Channel:      channel,
				CreatedAt:    ts,
				UpdatedAt:    ts,
			})
			salesKey++
		}
	}
	return rows
}

func dateKey(t time.Time) int64 {
	return int64(t.Year()*10000 + int(t.Month())*100 + t.Day())
}
