package validate

import (
	"fmt"

	"starforge/internal/logger"
	"starforge/internal/schema"
	"starforge/pkg/models"
)

// Severity levels carried by check results
const (
	SeverityError   = "ERROR"
	SeverityWarning = "WARNING"
	SeverityInfo    = "INFO"
)

// Result is the outcome of a single named check against one table
type Result struct {
	CheckName string
	Table     string
	Passed    bool
	Message   string
	Severity  string
	RowCount  int
}

// Report collects check results across all tables
type Report struct {
	Results []Result
}

func (r *Report) add(res Result) {
	r.Results = append(r.Results, res)
}

// Errors returns the failed ERROR-severity results
func (r *Report) Errors() []Result {
	return r.failed(SeverityError)
}

// Warnings returns the failed WARNING-severity results
func (r *Report) Warnings() []Result {
	return r.failed(SeverityWarning)
}

func (r *Report) failed(severity string) []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.Passed && res.Severity == severity {
			out = append(out, res)
		}
	}
	return out
}

// Passed returns the passing results
func (r *Report) Passed() []Result {
	var out []Result
	for _, res := range r.Results {
		if res.Passed {
			out = append(out, res)
		}
	}
	return out
}

// PassedCount is the number of checks that passed
func (r *Report) PassedCount() int {
	return len(r.Passed())
}

// OK reports whether the dataset is loadable: no ERROR findings, and no
// WARNING findings either when failOnWarning is set.
func (r *Report) OK(failOnWarning bool) bool {
	if len(r.Errors()) > 0 {
		return false
	}
	if failOnWarning && len(r.Warnings()) > 0 {
		return false
	}
	return true
}

// Runner executes the check catalog against a processed dataset
type Runner struct {
	cfg models.ValidationConfig
	log *logger.Logger
}

func New(cfg models.ValidationConfig, log *logger.Logger) *Runner {
	return &Runner{cfg: cfg, log: log}
}

// Run validates every table and returns the combined report
func (r *Runner) Run(ds *schema.Dataset) *Report {
	rep := &Report{}

	r.dimDate(ds, rep)
	r.dimProduct(ds, rep)
	r.dimCustomer(ds, rep)
	r.dimEmployee(ds, rep)
	r.dimRegion(ds, rep)
	r.factSales(ds, rep)

	r.log.Infof("ran %d checks: %d passed, %d errors, %d warnings",
		len(rep.Results), rep.PassedCount(), len(rep.Errors()), len(rep.Warnings()))
	return rep
}

func (r *Runner) dimDate(ds *schema.Dataset, rep *Report) {
	const table = schema.TableDimDate
	n := len(ds.Dates)

	r.noNulls(rep, table, n, []column{
		{"date_key", func(i int) bool { return ds.Dates[i].DateKey == 0 }},
		{"full_date", func(i int) bool { return ds.Dates[i].FullDate.IsZero() }},
		{"year", func(i int) bool { return ds.Dates[i].Year == 0 }},
		{"month_number", func(i int) bool { return ds.Dates[i].MonthNumber == 0 }},
	})
	noDuplicates(rep, table, "date_key", keysOf(n, func(i int) int64 { return ds.Dates[i].DateKey }))
	valueRange(rep, table, "month_number", floatsOf(n, func(i int) float64 { return float64(ds.Dates[i].MonthNumber) }), f(1), f(12), SeverityError)
	valueRange(rep, table, "day_of_month", floatsOf(n, func(i int) float64 { return float64(ds.Dates[i].DayOfMonth) }), f(1), f(31), SeverityError)
	valueRange(rep, table, "year", floatsOf(n, func(i int) float64 { return float64(ds.Dates[i].Year) }), f(2000), f(2030), SeverityError)

	allowed := toSet(schema.ValidQuarters)
	invalid := make(map[string]bool)
	for _, d := range ds.Dates {
		if _, ok := allowed[d.Quarter]; !ok {
			invalid[d.Quarter] = true
		}
	}
	ruleCheck(rep, table, "valid_quarter_values", SeverityError, len(invalid), "distinct invalid quarter values")
}

func (r *Runner) dimProduct(ds *schema.Dataset, rep *Report) {
	const table = schema.TableDimProduct
	n := len(ds.Products)

	r.noNulls(rep, table, n, []column{
		{"product_key", func(i int) bool { return ds.Products[i].ProductKey == 0 }},
		{"product_id", func(i int) bool { return ds.Products[i].ProductID == "" }},
		{"product_name", func(i int) bool { return ds.Products[i].ProductName == "" }},
		{"category", func(i int) bool { return ds.Products[i].Category == "" }},
		{"unit_cost", func(i int) bool { return schema.IsNull(ds.Products[i].UnitCost) }},
		{"list_price", func(i int) bool { return schema.IsNull(ds.Products[i].ListPrice) }},
	})
	noDuplicates(rep, table, "product_key", keysOf(n, func(i int) int64 { return ds.Products[i].ProductKey }))
	valueRange(rep, table, "unit_cost", floatsOf(n, func(i int) float64 { return ds.Products[i].UnitCost }), f(0), nil, SeverityError)
	valueRange(rep, table, "list_price", floatsOf(n, func(i int) float64 { return ds.Products[i].ListPrice }), f(0), nil, SeverityError)

	inverted := 0
	for _, p := range ds.Products {
		if p.ListPrice < p.UnitCost {
			inverted++
		}
	}
	ruleCheck(rep, table, "list_price >= unit_cost", SeverityWarning, inverted, "products where list_price < unit_cost")
}

func (r *Runner) dimCustomer(ds *schema.Dataset, rep *Report) {
	const table = schema.TableDimCustomer
	n := len(ds.Customers)

	r.noNulls(rep, table, n, []column{
		{"customer_key", func(i int) bool { return ds.Customers[i].CustomerKey == 0 }},
		{"customer_id", func(i int) bool { return ds.Customers[i].CustomerID == "" }},
		{"customer_name", func(i int) bool { return ds.Customers[i].CustomerName == "" }},
		{"segment", func(i int) bool { return ds.Customers[i].Segment == "" }},
	})
	noDuplicates(rep, table, "customer_key", keysOf(n, func(i int) int64 { return ds.Customers[i].CustomerKey }))

	allowed := toSet(schema.ValidSegments)
	bad := 0
	for _, c := range ds.Customers {
		if _, ok := allowed[c.Segment]; !ok {
			bad++
		}
	}
	ruleCheck(rep, table, "valid_segment_values", SeverityWarning, bad, "rows with invalid segment values")
}

func (r *Runner) dimEmployee(ds *schema.Dataset, rep *Report) {
	const table = schema.TableDimEmployee
	n := len(ds.Employees)

	r.noNulls(rep, table, n, []column{
		{"employee_key", func(i int) bool { return ds.Employees[i].EmployeeKey == 0 }},
		{"employee_id", func(i int) bool { return ds.Employees[i].EmployeeID == "" }},
		{"full_name", func(i int) bool { return ds.Employees[i].FullName == "" }},
		{"department", func(i int) bool { return ds.Employees[i].Department == "" }},
	})
	noDuplicates(rep, table, "employee_key", keysOf(n, func(i int) int64 { return ds.Employees[i].EmployeeKey }))
}

func (r *Runner) dimRegion(ds *schema.Dataset, rep *Report) {
	const table = schema.TableDimRegion
	n := len(ds.Regions)

	r.noNulls(rep, table, n, []column{
		{"region_key", func(i int) bool { return ds.Regions[i].RegionKey == 0 }},
		{"country", func(i int) bool { return ds.Regions[i].Country == "" }},
		{"region", func(i int) bool { return ds.Regions[i].Region == "" }},
		{"city", func(i int) bool { return ds.Regions[i].City == "" }},
		{"currency", func(i int) bool { return ds.Regions[i].Currency == "" }},
	})
	noDuplicates(rep, table, "region_key", keysOf(n, func(i int) int64 { return ds.Regions[i].RegionKey }))
}

func (r *Runner) factSales(ds *schema.Dataset, rep *Report) {
	const table = schema.TableFactSales
	n := len(ds.Sales)

	r.noNulls(rep, table, n, []column{
		{"sales_key", func(i int) bool { return ds.Sales[i].SalesKey == 0 }},
		{"order_id", func(i int) bool { return ds.Sales[i].OrderID == "" }},
		{"date_key", func(i int) bool { return ds.Sales[i].DateKey == 0 }},
		{"product_key", func(i int) bool { return ds.Sales[i].ProductKey == 0 }},
		{"customer_key", func(i int) bool { return ds.Sales[i].CustomerKey == 0 }},
		{"region_key", func(i int) bool { return ds.Sales[i].RegionKey == 0 }},
		{"employee_key", func(i int) bool { return ds.Sales[i].EmployeeKey == 0 }},
		{"quantity", func(i int) bool { return schema.IsNull(ds.Sales[i].Quantity) }},
		{"unit_price", func(i int) bool { return schema.IsNull(ds.Sales[i].UnitPrice) }},
		{"sales_amount", func(i int) bool { return schema.IsNull(ds.Sales[i].SalesAmount) }},
		{"cogs", func(i int) bool { return schema.IsNull(ds.Sales[i].COGS) }},
	})
	noDuplicates(rep, table, "sales_key", keysOf(n, func(i int) int64 { return ds.Sales[i].SalesKey }))

	fkIntegrity(rep, table, "date_key", schema.TableDimDate,
		keysOf(n, func(i int) int64 { return ds.Sales[i].DateKey }), refSet(ds.DateByKey()))
	fkIntegrity(rep, table, "product_key", schema.TableDimProduct,
		keysOf(n, func(i int) int64 { return ds.Sales[i].ProductKey }), refSet(ds.ProductByKey()))
	fkIntegrity(rep, table, "customer_key", schema.TableDimCustomer,
		keysOf(n, func(i int) int64 { return ds.Sales[i].CustomerKey }), refSet(ds.CustomerByKey()))
	fkIntegrity(rep, table, "employee_key", schema.TableDimEmployee,
		keysOf(n, func(i int) int64 { return ds.Sales[i].EmployeeKey }), refSet(ds.EmployeeByKey()))
	fkIntegrity(rep, table, "region_key", schema.TableDimRegion,
		keysOf(n, func(i int) int64 { return ds.Sales[i].RegionKey }), refSet(ds.RegionByKey()))

	valueRange(rep, table, "quantity", floatsOf(n, func(i int) float64 { return ds.Sales[i].Quantity }), f(1), nil, SeverityError)
	valueRange(rep, table, "unit_price", floatsOf(n, func(i int) float64 { return ds.Sales[i].UnitPrice }), f(0.01), nil, SeverityError)
	valueRange(rep, table, "discount_pct", floatsOf(n, func(i int) float64 { return ds.Sales[i].DiscountPct }), f(0), f(1), SeverityError)
	valueRange(rep, table, "sales_amount", floatsOf(n, func(i int) float64 { return ds.Sales[i].SalesAmount }), f(0), nil, SeverityError)
	valueRange(rep, table, "cogs", floatsOf(n, func(i int) float64 { return ds.Sales[i].COGS }), f(0), nil, SeverityError)

	anomalies := 0
	for _, s := range ds.Sales {
		if s.GrossMargin > s.SalesAmount {
			anomalies++
		}
	}
	ruleCheck(rep, table, "gross_margin <= sales_amount", SeverityWarning, anomalies, "rows where gross_margin > sales_amount")

	allowed := toSet(schema.ValidOrderStatuses)
	bad := 0
	for _, s := range ds.Sales {
		if _, ok := allowed[s.OrderStatus]; !ok {
			bad++
		}
	}
	ruleCheck(rep, table, "valid_order_status", SeverityError, bad, "rows with invalid order_status")
}

// column pairs a column name with its null predicate so tables with
// mixed types share one null check
type column struct {
	name   string
	isNull func(i int) bool
}

// noNulls counts nulls per column. A non-zero count fails the check;
// counts within the configured max null rate are downgraded to WARNING.
func (r *Runner) noNulls(rep *Report, table string, n int, cols []column) {
	for _, col := range cols {
		nulls := 0
		for i := 0; i < n; i++ {
			if col.isNull(i) {
				nulls++
			}
		}
		severity := SeverityError
		if nulls > 0 && n > 0 && float64(nulls)/float64(n) <= r.cfg.MaxNullRate {
			severity = SeverityWarning
		}
		rep.add(Result{
			CheckName: fmt.Sprintf("no_nulls.%s", col.name),
			Table:     table,
			Passed:    nulls == 0,
			Message:   resultMessage(nulls, fmt.Sprintf("null values in column '%s'", col.name)),
			Severity:  severity,
			RowCount:  nulls,
		})
	}
}

func noDuplicates[K comparable](rep *Report, table, pk string, keys []K) {
	seen := make(map[K]bool, len(keys))
	dups := 0
	for _, k := range keys {
		if seen[k] {
			dups++
		}
		seen[k] = true
	}
	rep.add(Result{
		CheckName: fmt.Sprintf("no_duplicate_pk.%s", pk),
		Table:     table,
		Passed:    dups == 0,
		Message:   resultMessage(dups, fmt.Sprintf("duplicate values in PK '%s'", pk)),
		Severity:  SeverityError,
		RowCount:  dups,
	})
}

func fkIntegrity[K comparable](rep *Report, table, col, refTable string, keys []K, ref map[K]struct{}) {
	orphans := 0
	for _, k := range keys {
		if _, ok := ref[k]; !ok {
			orphans++
		}
	}
	rep.add(Result{
		CheckName: fmt.Sprintf("fk.%s -> %s.%s", col, refTable, col),
		Table:     table,
		Passed:    orphans == 0,
		Message:   resultMessage(orphans, fmt.Sprintf("orphan FK values (no match in %s.%s)", refTable, col)),
		Severity:  SeverityError,
		RowCount:  orphans,
	})
}

// valueRange flags values outside [min, max]; nil bounds are open ended
// and null values are skipped (no_nulls covers those).
func valueRange(rep *Report, table, col string, values []float64, min, max *float64, severity string) {
	out := 0
	for _, v := range values {
		if schema.IsNull(v) {
			continue
		}
		if (min != nil && v < *min) || (max != nil && v > *max) {
			out++
		}
	}
	label := fmt.Sprintf("[%s, %s]", bound(min), bound(max))
	rep.add(Result{
		CheckName: fmt.Sprintf("range.%s in %s", col, label),
		Table:     table,
		Passed:    out == 0,
		Message:   resultMessage(out, fmt.Sprintf("values outside range %s", label)),
		Severity:  severity,
		RowCount:  out,
	})
}

func ruleCheck(rep *Report, table, name, severity string, bad int, noun string) {
	rep.add(Result{
		CheckName: name,
		Table:     table,
		Passed:    bad == 0,
		Message:   resultMessage(bad, noun),
		Severity:  severity,
		RowCount:  bad,
	})
}

func resultMessage(count int, noun string) string {
	if count == 0 {
		return "OK"
	}
	return fmt.Sprintf("%d %s", count, noun)
}

func keysOf[K comparable](n int, get func(i int) K) []K {
	out := make([]K, n)
	for i := 0; i < n; i++ {
		out[i] = get(i)
	}
	return out
}

func floatsOf(n int, get func(i int) float64) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = get(i)
	}
	return out
}

func refSet[K comparable, V any](m map[K]V) map[K]struct{} {
	out := make(map[K]struct{}, len(m))
	for k := range m {
		out[k] = struct{}{}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		out[v] = struct{}{}
	}
	return out
}

func f(v float64) *float64 { return &v }

func bound(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%g", *v)
}
