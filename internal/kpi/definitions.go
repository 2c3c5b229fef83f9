package kpi

import (
	"os"

	"gopkg.in/yaml.v3"

	apperrors "starforge/pkg/errors"
)

// Trend directions declared on KPI definitions
const (
	HigherIsBetter = "higher_is_better"
	LowerIsBetter  = "lower_is_better"
)

// Threshold is one RAG band: an operator applied against the KPI value
type Threshold struct {
	Operator string  `yaml:"operator"`
	Value    float64 `yaml:"value"`
}

// Thresholds holds the four RAG bands of a definition. An empty set
// means the KPI is informational only.
type Thresholds struct {
	Excellent Threshold `yaml:"excellent"`
	Good      Threshold `yaml:"good"`
	Warning   Threshold `yaml:"warning"`
	Critical  Threshold `yaml:"critical"`
}

// Empty reports whether no band is configured
func (t Thresholds) Empty() bool {
	return t.Excellent.Operator == "" && t.Good.Operator == "" &&
		t.Warning.Operator == "" && t.Critical.Operator == ""
}

// Definition describes one KPI in the catalog
type Definition struct {
	ID             string     `yaml:"id"`
	Name           string     `yaml:"name"`
	Category       string     `yaml:"category"`
	Unit           string     `yaml:"unit"` // currency | percentage | count | ratio
	Formula        string     `yaml:"formula"`
	TrendDirection string     `yaml:"trend_direction"`
	Thresholds     Thresholds `yaml:"thresholds"`
}

type catalogFile struct {
	KPIs []Definition `yaml:"kpis"`
}

// DefaultCatalog returns the built-in ten-KPI catalog
func DefaultCatalog() []Definition {
	return []Definition{
		{
			ID: "KPI-001", Name: "Total Revenue", Category: "Sales", Unit: "currency",
			Formula:        "SUM(sales_amount) over revenue-eligible rows",
			TrendDirection: HigherIsBetter,
			Thresholds: Thresholds{
				Excellent: Threshold{">=", 10_000_000},
				Good:      Threshold{">=", 7_000_000},
				Warning:   Threshold{">=", 4_000_000},
				Critical:  Threshold{"<", 4_000_000},
			},
		},
		{
			ID: "KPI-002", Name: "Gross Margin %", Category: "Profitability", Unit: "percentage",
			Formula:        "SUM(gross_margin) / SUM(sales_amount) * 100",
			TrendDirection: HigherIsBetter,
			Thresholds: Thresholds{
				Excellent: Threshold{">=", 45},
				Good:      Threshold{">=", 38},
				Warning:   Threshold{">=", 30},
				Critical:  Threshold{"<", 30},
			},
		},
		{
			ID: "KPI-003", Name: "Revenue Growth MoM", Category: "Growth", Unit: "percentage",
			Formula:        "(revenue(last month) - revenue(prev month)) / revenue(prev month) * 100",
			TrendDirection: HigherIsBetter,
			Thresholds: Thresholds{
				Excellent: Threshold{">=", 10},
				Good:      Threshold{">=", 0},
				Warning:   Threshold{">=", -10},
				Critical:  Threshold{"<", -10},
			},
		},
		{
			ID: "KPI-004", Name: "Average Order Value", Category: "Sales", Unit: "currency",
			Formula:        "SUM(sales_amount) / COUNT(DISTINCT order_id)",
			TrendDirection: HigherIsBetter,
			Thresholds: Thresholds{
				Excellent: Threshold{">=", 200_000},
				Good:      Threshold{">=", 120_000},
				Warning:   Threshold{">=", 60_000},
				Critical:  Threshold{"<", 60_000},
			},
		},
		{
			ID: "KPI-005", Name: "Target Attainment", Category: "Sales", Unit: "percentage",
			Formula:        "SUM(sales_amount) / SUM(target_amount) * 100",
			TrendDirection: HigherIsBetter,
			Thresholds: Thresholds{
				Excellent: Threshold{">=", 100},
				Good:      Threshold{">=", 95},
				Warning:   Threshold{">=", 85},
				Critical:  Threshold{"<", 85},
			},
		},
		{
			ID: "KPI-006", Name: "Total Orders", Category: "Volume", Unit: "count",
			Formula:        "COUNT(DISTINCT order_id)",
			TrendDirection: HigherIsBetter,
		},
		{
			ID: "KPI-007", Name: "Discount Rate", Category: "Pricing", Unit: "percentage",
			Formula:        "AVG(discount_pct) * 100",
			TrendDirection: LowerIsBetter,
			Thresholds: Thresholds{
				Excellent: Threshold{"<=", 5},
				Good:      Threshold{"<=", 8},
				Warning:   Threshold{"<=", 12},
				Critical:  Threshold{">", 12},
			},
		},
		{
			ID: "KPI-008", Name: "Revenue per Employee", Category: "Productivity", Unit: "currency",
			Formula:        "SUM(sales_amount) / COUNT(DISTINCT employee_key)",
			TrendDirection: HigherIsBetter,
			Thresholds: Thresholds{
				Excellent: Threshold{">=", 50_000_000},
				Good:      Threshold{">=", 30_000_000},
				Warning:   Threshold{">=", 15_000_000},
				Critical:  Threshold{"<", 15_000_000},
			},
		},
		{
			ID: "KPI-009", Name: "Customer Count", Category: "Volume", Unit: "count",
			Formula:        "COUNT(DISTINCT customer_key)",
			TrendDirection: HigherIsBetter,
		},
		{
			ID: "KPI-010", Name: "Top-10 Revenue Share", Category: "Concentration", Unit: "percentage",
			Formula:        "SUM(revenue of top 10 products) / SUM(revenue) * 100",
			TrendDirection: LowerIsBetter,
			Thresholds: Thresholds{
				Excellent: Threshold{"<=", 25},
				Good:      Threshold{"<=", 40},
				Warning:   Threshold{"<=", 60},
				Critical:  Threshold{">", 60},
			},
		},
	}
}

// LoadCatalog reads KPI definitions from a YAML file. An empty path
// returns the default catalog.
func LoadCatalog(path string) ([]Definition, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.FileError("failed to read KPI catalog", path, err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeKPICatalog, "failed to parse KPI catalog").
			WithContext("file", path)
	}
	if len(file.KPIs) == 0 {
		return nil, apperrors.New(apperrors.ErrCodeKPICatalog, "KPI catalog contains no definitions").
			WithContext("file", path)
	}
	return file.KPIs, nil
}
