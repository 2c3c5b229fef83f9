package models

// Config is the root configuration for the starforge pipeline
type Config struct {
	Data       DataConfig       `yaml:"data" validate:"required"`
	Generator  GeneratorConfig  `yaml:"generator" validate:"required"`
	Validation ValidationConfig `yaml:"validation"`
	KPI        KPIConfig        `yaml:"kpi"`
	Log        LogConfig        `yaml:"log"`
}

// DataConfig locates the flat-file layers of the pipeline
type DataConfig struct {
	RawDir       string `yaml:"raw_dir" validate:"required"`
	ProcessedDir string `yaml:"processed_dir" validate:"required"`
	ReportsDir   string `yaml:"reports_dir" validate:"required"`
}

// GeneratorConfig controls the synthetic source-data generator
type GeneratorConfig struct {
	Seed      int64  `yaml:"seed"`
	StartDate string `yaml:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `yaml:"end_date" validate:"required,datetime=2006-01-02"`
	Products  int    `yaml:"products" validate:"min=1"`
	Customers int    `yaml:"customers" validate:"min=1"`
	Employees int    `yaml:"employees" validate:"min=1"`
	Regions   int    `yaml:"regions" validate:"min=1,max=20"`
	Orders    int    `yaml:"orders" validate:"min=1"`
}

// ValidationConfig contains validation engine settings
type ValidationConfig struct {
	FailOnWarning bool    `yaml:"fail_on_warning"`
	MaxNullRate   float64 `yaml:"max_null_rate" validate:"gte=0,lte=1"`
}

// KPIConfig contains KPI calculator settings
type KPIConfig struct {
	CatalogFile string `yaml:"catalog_file"` // optional override of the built-in catalog
	TopN        int    `yaml:"top_n" validate:"min=1"`
	ExportExcel bool   `yaml:"export_excel"`
}

// LogConfig controls structured logging output
type LogConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
}

// DefaultConfig returns the configuration used when no config file exists.
// The generator defaults mirror the reference dataset: two years of dates,
// 80 products, 300 customers, 40 employees, 20 regions, 8000 orders.
func DefaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			RawDir:       "data/raw",
			ProcessedDir: "data/processed",
			ReportsDir:   "data/reports",
		},
		Generator: GeneratorConfig{
			Seed:      42,
			StartDate: "2024-01-01",
			EndDate:   "2025-12-31",
			Products:  80,
			Customers: 300,
			Employees: 40,
			Regions:   20,
			Orders:    8000,
		},
		Validation: ValidationConfig{
			FailOnWarning: false,
			MaxNullRate:   0.01,
		},
		KPI: KPIConfig{
			TopN:        10,
			ExportExcel: true,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
