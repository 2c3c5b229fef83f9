package schema

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	apperrors "starforge/pkg/errors"

	"starforge/internal/common"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "2006-01-02 15:04:05"
)

// Column layouts per table. Raw files carry the source columns only;
// processed files append the derived ones.
var (
	dateHeader = []string{
		"date_key", "full_date", "day_of_week", "day_of_month", "week_number",
		"month_number", "month_name", "quarter", "year", "is_weekend",
		"is_holiday", "fiscal_period",
	}

	productHeader = []string{
		"product_key", "product_id", "product_name", "category", "sub_category",
		"brand", "unit_cost", "list_price", "is_active", "launch_date",
	}
	productDerived = []string{"margin_band"}

	customerHeader = []string{
		"customer_key", "customer_id", "customer_name", "segment", "industry",
		"email", "acquisition_date", "is_active",
	}

	employeeHeader = []string{
		"employee_key", "employee_id", "full_name", "department", "job_title",
		"manager_id", "hire_date", "region_key", "is_active",
	}

	regionHeader = []string{
		"region_key", "country", "region", "sub_region", "city", "currency",
	}

	factHeader = []string{
		"sales_key", "order_id", "line_number", "date_key", "product_key",
		"customer_key", "region_key", "employee_key", "quantity", "unit_price",
		"discount_pct", "sales_amount", "cogs", "gross_margin", "target_amount",
		"order_status", "channel", "created_at", "updated_at",
	}
	factDerived = []string{
		"gross_margin_pct", "target_attainment_pct", "discount_impact",
		"is_revenue_eligible",
	}
)

// record is one CSV row with named column access. Missing columns and
// unparseable cells yield null sentinels, mirroring errors="coerce" reads.
type record struct {
	idx map[string]int
	row []string
}

func (r record) str(col string) string {
	i, ok := r.idx[col]
	if !ok || i >= len(r.row) {
		return ""
	}
	return r.row[i]
}

func (r record) float(col string) float64 {
	s := strings.TrimSpace(r.str(col))
	if s == "" {
		return Null()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Null()
	}
	return v
}

func (r record) integer(col string) int64 {
	s := strings.TrimSpace(r.str(col))
	if s == "" {
		return 0
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		// tolerate "80.0" style integers
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil {
			return 0
		}
		return int64(f)
	}
	return v
}

func (r record) boolean(col string) bool {
	switch strings.ToLower(strings.TrimSpace(r.str(col))) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

func (r record) date(col string) time.Time {
	s := strings.TrimSpace(r.str(col))
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t
	}
	// processed files may carry a time component
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	return time.Time{}
}

func (r record) datetime(col string) time.Time {
	s := strings.TrimSpace(r.str(col))
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t
	}
	return time.Time{}
}

// readTable loads a CSV file and verifies the required columns are present
func readTable(path, table string, required []string) ([]record, error) {
	f, err := os.Open(path) // #nosec G304 - paths come from validated config
	if err != nil {
		return nil, apperrors.FileError(fmt.Sprintf("missing %s table", table), path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.CSVError(fmt.Sprintf("failed to parse %s", table), table, err)
	}
	if len(rows) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeEmptyTable, fmt.Sprintf("%s has no header row", table))
	}

	idx := make(map[string]int, len(rows[0]))
	for i, col := range rows[0] {
		idx[strings.TrimSpace(col)] = i
	}
	for _, col := range required {
		if _, ok := idx[col]; !ok {
			return nil, apperrors.New(apperrors.ErrCodeColumnMissing,
				fmt.Sprintf("%s is missing required column %q", table, col)).
				WithContext("table", table).
				WithContext("column", col)
		}
	}

	records := make([]record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, record{idx: idx, row: row})
	}
	return records, nil
}

func writeTable(path string, header []string, rows [][]string) error {
	if err := common.EnsureDir(filepath.Dir(path)); err != nil {
		return apperrors.FileError("failed to create output directory", path, err)
	}

	f, err := os.Create(path) // #nosec G304 - paths come from validated config
	if err != nil {
		return apperrors.FileError("failed to create table file", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return apperrors.FileError("failed to write header", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return apperrors.FileError("failed to write row", path, err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	if IsNull(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatMoney(v float64) string {
	if IsNull(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatBool(v bool) string {
	return strconv.FormatBool(v)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatDatetime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(timeLayout)
}

// ReadDates loads the date dimension from path
func ReadDates(path string) ([]DimDate, error) {
	recs, err := readTable(path, TableDimDate, dateHeader)
	if err != nil {
		return nil, err
	}
	out := make([]DimDate, 0, len(recs))
	for _, r := range recs {
		out = append(out, DimDate{
			DateKey:      r.integer("date_key"),
			FullDate:     r.date("full_date"),
			DayOfWeek:    r.str("day_of_week"),
			DayOfMonth:   int(r.integer("day_of_month")),
			WeekNumber:   int(r.integer("week_number")),
			MonthNumber:  int(r.integer("month_number")),
			MonthName:    r.str("month_name"),
			Quarter:      r.str("quarter"),
			Year:         int(r.integer("year")),
			IsWeekend:    r.boolean("is_weekend"),
			IsHoliday:    r.boolean("is_holiday"),
			FiscalPeriod: r.str("fiscal_period"),
		})
	}
	return out, nil
}

// WriteDates writes the date dimension to path
func WriteDates(path string, rows []DimDate) error {
	out := make([][]string, 0, len(rows))
	for _, d := range rows {
		out = append(out, []string{
			strconv.FormatInt(d.DateKey, 10),
			formatDate(d.FullDate),
			d.DayOfWeek,
			strconv.Itoa(d.DayOfMonth),
			strconv.Itoa(d.WeekNumber),
			strconv.Itoa(d.MonthNumber),
			d.MonthName,
			d.Quarter,
			strconv.Itoa(d.Year),
			formatBool(d.IsWeekend),
			formatBool(d.IsHoliday),
			d.FiscalPeriod,
		})
	}
	return writeTable(path, dateHeader, out)
}

// ReadProducts loads the product dimension from path. The margin_band
// column is optional so raw and processed files share one reader.
func ReadProducts(path string) ([]DimProduct, error) {
	recs, err := readTable(path, TableDimProduct, productHeader)
	if err != nil {
		return nil, err
	}
	out := make([]DimProduct, 0, len(recs))
	for _, r := range recs {
		out = append(out, DimProduct{
			ProductKey:  r.integer("product_key"),
			ProductID:   r.str("product_id"),
			ProductName: r.str("product_name"),
			Category:    r.str("category"),
			SubCategory: r.str("sub_category"),
			Brand:       r.str("brand"),
			UnitCost:    r.float("unit_cost"),
			ListPrice:   r.float("list_price"),
			IsActive:    r.boolean("is_active"),
			LaunchDate:  r.date("launch_date"),
			MarginBand:  r.str("margin_band"),
		})
	}
	return out, nil
}

// WriteProducts writes the product dimension. processed appends the
// derived margin_band column.
func WriteProducts(path string, rows []DimProduct, processed bool) error {
	header := productHeader
	if processed {
		header = append(append([]string{}, productHeader...), productDerived...)
	}
	out := make([][]string, 0, len(rows))
	for _, p := range rows {
		row := []string{
			strconv.FormatInt(p.ProductKey, 10),
			p.ProductID,
			p.ProductName,
			p.Category,
			p.SubCategory,
			p.Brand,
			formatMoney(p.UnitCost),
			formatMoney(p.ListPrice),
			formatBool(p.IsActive),
			formatDate(p.LaunchDate),
		}
		if processed {
			row = append(row, p.MarginBand)
		}
		out = append(out, row)
	}
	return writeTable(path, header, out)
}

// ReadCustomers loads the customer dimension from path
func ReadCustomers(path string) ([]DimCustomer, error) {
	recs, err := readTable(path, TableDimCustomer, customerHeader)
	if err != nil {
		return nil, err
	}
	out := make([]DimCustomer, 0, len(recs))
	for _, r := range recs {
		out = append(out, DimCustomer{
			CustomerKey:     r.integer("customer_key"),
			CustomerID:      r.str("customer_id"),
			CustomerName:    r.str("customer_name"),
			Segment:         r.str("segment"),
			Industry:        r.str("industry"),
			Email:           r.str("email"),
			AcquisitionDate: r.date("acquisition_date"),
			IsActive:        r.boolean("is_active"),
		})
	}
	return out, nil
}

// WriteCustomers writes the customer dimension to path
func WriteCustomers(path string, rows []DimCustomer) error {
	out := make([][]string, 0, len(rows))
	for _, c := range rows {
		out = append(out, []string{
			strconv.FormatInt(c.CustomerKey, 10),
			c.CustomerID,
			c.CustomerName,
			c.Segment,
			c.Industry,
			c.Email,
			formatDate(c.AcquisitionDate),
			formatBool(c.IsActive),
		})
	}
	return writeTable(path, customerHeader, out)
}

// ReadEmployees loads the employee dimension from path
func ReadEmployees(path string) ([]DimEmployee, error) {
	recs, err := readTable(path, TableDimEmployee, employeeHeader)
	if err != nil {
		return nil, err
	}
	out := make([]DimEmployee, 0, len(recs))
	for _, r := range recs {
		out = append(out, DimEmployee{
			EmployeeKey: r.integer("employee_key"),
			EmployeeID:  r.str("employee_id"),
			FullName:    r.str("full_name"),
			Department:  r.str("department"),
			JobTitle:    r.str("job_title"),
			ManagerID:   r.str("manager_id"),
			HireDate:    r.date("hire_date"),
			RegionKey:   r.integer("region_key"),
			IsActive:    r.boolean("is_active"),
		})
	}
	return out, nil
}

// WriteEmployees writes the employee dimension to path
func WriteEmployees(path string, rows []DimEmployee) error {
	out := make([][]string, 0, len(rows))
	for _, e := range rows {
		out = append(out, []string{
			strconv.FormatInt(e.EmployeeKey, 10),
			e.EmployeeID,
			e.FullName,
			e.Department,
			e.JobTitle,
			e.ManagerID,
			formatDate(e.HireDate),
			strconv.FormatInt(e.RegionKey, 10),
			formatBool(e.IsActive),
		})
	}
	return writeTable(path, employeeHeader, out)
}

// ReadRegions loads the region dimension from path
func ReadRegions(path string) ([]DimRegion, error) {
	recs, err := readTable(path, TableDimRegion, regionHeader)
	if err != nil {
		return nil, err
	}
	out := make([]DimRegion, 0, len(recs))
	for _, r := range recs {
		out = append(out, DimRegion{
			RegionKey: r.integer("region_key"),
			Country:   r.str("country"),
			Region:    r.str("region"),
			SubRegion: r.str("sub_region"),
			City:      r.str("city"),
			Currency:  r.str("currency"),
		})
	}
	return out, nil
}

// WriteRegions writes the region dimension to path
func WriteRegions(path string, rows []DimRegion) error {
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			strconv.FormatInt(r.RegionKey, 10),
			r.Country,
			r.Region,
			r.SubRegion,
			r.City,
			r.Currency,
		})
	}
	return writeTable(path, regionHeader, out)
}

// ReadFacts loads the sales fact table from path. Derived columns are
// optional so raw and processed files share one reader.
func ReadFacts(path string) ([]FactSale, error) {
	recs, err := readTable(path, TableFactSales, factHeader)
	if err != nil {
		return nil, err
	}
	out := make([]FactSale, 0, len(recs))
	for _, r := range recs {
		out = append(out, FactSale{
			SalesKey:    r.integer("sales_key"),
			OrderID:     r.str("order_id"),
			LineNumber:  int(r.integer("line_number")),
			DateKey:     r.integer("date_key"),
			ProductKey:  r.integer("product_key"),
			CustomerKey: r.integer("customer_key"),
			RegionKey:   r.integer("region_key"),
			EmployeeKey: r.integer("employee_key"),

			Quantity:     r.float("quantity"),
			UnitPrice:    r.float("unit_price"),
			DiscountPct:  r.float("discount_pct"),
			SalesAmount:  r.float("sales_amount"),
			COGS:         r.float("cogs"),
			GrossMargin:  r.float("gross_margin"),
			TargetAmount: r.float("target_amount"),

			OrderStatus: r.str("order_status"),
			Channel:     r.str("channel"),
			CreatedAt:   r.datetime("created_at"),
			UpdatedAt:   r.datetime("updated_at"),

			GrossMarginPct:      r.float("gross_margin_pct"),
			TargetAttainmentPct: r.float("target_attainment_pct"),
			DiscountImpact:      r.float("discount_impact"),
			IsRevenueEligible:   r.boolean("is_revenue_eligible"),
		})
	}
	return out, nil
}

// WriteFacts writes the sales fact table. processed appends the derived
// measure columns and the revenue-eligibility flag.
func WriteFacts(path string, rows []FactSale, processed bool) error {
	header := factHeader
	if processed {
		header = append(append([]string{}, factHeader...), factDerived...)
	}
	out := make([][]string, 0, len(rows))
	for _, s := range rows {
		row := []string{
			strconv.FormatInt(s.SalesKey, 10),
			s.OrderID,
			strconv.Itoa(s.LineNumber),
			strconv.FormatInt(s.DateKey, 10),
			strconv.FormatInt(s.ProductKey, 10),
			strconv.FormatInt(s.CustomerKey, 10),
			strconv.FormatInt(s.RegionKey, 10),
			strconv.FormatInt(s.EmployeeKey, 10),
			formatFloat(s.Quantity),
			formatMoney(s.UnitPrice),
			formatFloat(s.DiscountPct),
			formatMoney(s.SalesAmount),
			formatMoney(s.COGS),
			formatMoney(s.GrossMargin),
			formatMoney(s.TargetAmount),
			s.OrderStatus,
			s.Channel,
			formatDatetime(s.CreatedAt),
			formatDatetime(s.UpdatedAt),
		}
		if processed {
			row = append(row,
				formatFloat(s.GrossMarginPct),
				formatFloat(s.TargetAttainmentPct),
				formatFloat(s.DiscountImpact),
				formatBool(s.IsRevenueEligible),
			)
		}
		out = append(out, row)
	}
	return writeTable(path, header, out)
}

// ReadDataset loads all six tables from dir
func ReadDataset(dir string) (*Dataset, error) {
	ds := &Dataset{}
	var err error

	if ds.Dates, err = ReadDates(common.TablePath(dir, TableDimDate)); err != nil {
		return nil, err
	}
	if ds.Products, err = ReadProducts(common.TablePath(dir, TableDimProduct)); err != nil {
		return nil, err
	}
	if ds.Customers, err = ReadCustomers(common.TablePath(dir, TableDimCustomer)); err != nil {
		return nil, err
	}
	if ds.Employees, err = ReadEmployees(common.TablePath(dir, TableDimEmployee)); err != nil {
		return nil, err
	}
	if ds.Regions, err = ReadRegions(common.TablePath(dir, TableDimRegion)); err != nil {
		return nil, err
	}
	if ds.Sales, err = ReadFacts(common.TablePath(dir, TableFactSales)); err != nil {
		return nil, err
	}
	return ds, nil
}

// WriteDataset writes all six tables to dir
func WriteDataset(dir string, ds *Dataset, processed bool) error {
	if err := WriteDates(common.TablePath(dir, TableDimDate), ds.Dates); err != nil {
		return err
	}
	if err := WriteProducts(common.TablePath(dir, TableDimProduct), ds.Products, processed); err != nil {
		return err
	}
	if err := WriteCustomers(common.TablePath(dir, TableDimCustomer), ds.Customers); err != nil {
		return err
	}
	if err := WriteEmployees(common.TablePath(dir, TableDimEmployee), ds.Employees); err != nil {
		return err
	}
	if err := WriteRegions(common.TablePath(dir, TableDimRegion), ds.Regions); err != nil {
		return err
	}
	return WriteFacts(common.TablePath(dir, TableFactSales), ds.Sales, processed)
}
