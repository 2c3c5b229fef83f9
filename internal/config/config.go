package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"starforge/internal/common"
	"starforge/pkg/models"
)

var validate = validator.New()

// GetConfigPath returns the directory holding the config file
func GetConfigPath() string {
	if configPath := os.Getenv("STARFORGE_CONFIG"); configPath != "" {
		return filepath.Dir(configPath)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".starforge")
}

// GetConfigFile returns the full path of the config file
func GetConfigFile() string {
	if configFile := os.Getenv("STARFORGE_CONFIG"); configFile != "" {
		cleaned, err := common.CleanPath(configFile)
		if err != nil {
			return filepath.Join(GetConfigPath(), "config.yaml")
		}
		return cleaned
	}
	return filepath.Join(GetConfigPath(), "config.yaml")
}

// Load builds the effective configuration. Values are resolved in layers:
// compiled-in defaults, then the config file (STARFORGE_CONFIG if set,
// otherwise ./config.yaml or ~/.starforge/config.yaml), then STARFORGE_*
// environment variables.
func Load() (*models.Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	if configFile := os.Getenv("STARFORGE_CONFIG"); configFile != "" {
		cleaned, err := common.CleanPath(configFile)
		if err != nil {
			return nil, fmt.Errorf("invalid config file path: %w", err)
		}
		v.SetConfigFile(cleaned)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath(GetConfigPath())
	}

	v.SetEnvPrefix("STARFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults and env vars apply
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := models.DefaultConfig()
	if err := v.Unmarshal(config, yamlTagNames); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

// setDefaults registers every key so environment overrides are visible
// to Unmarshal
func setDefaults(v *viper.Viper) {
	def := models.DefaultConfig()
	v.SetDefault("data.raw_dir", def.Data.RawDir)
	v.SetDefault("data.processed_dir", def.Data.ProcessedDir)
	v.SetDefault("data.reports_dir", def.Data.ReportsDir)
	v.SetDefault("generator.seed", def.Generator.Seed)
	v.SetDefault("generator.start_date", def.Generator.StartDate)
	v.SetDefault("generator.end_date", def.Generator.EndDate)
	v.SetDefault("generator.products", def.Generator.Products)
	v.SetDefault("generator.customers", def.Generator.Customers)
	v.SetDefault("generator.employees", def.Generator.Employees)
	v.SetDefault("generator.regions", def.Generator.Regions)
	v.SetDefault("generator.orders", def.Generator.Orders)
	v.SetDefault("validation.fail_on_warning", def.Validation.FailOnWarning)
	v.SetDefault("validation.max_null_rate", def.Validation.MaxNullRate)
	v.SetDefault("kpi.catalog_file", def.KPI.CatalogFile)
	v.SetDefault("kpi.top_n", def.KPI.TopN)
	v.SetDefault("kpi.export_excel", def.KPI.ExportExcel)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
}

// yamlTagNames makes Unmarshal honor the same yaml tags Save writes.
// WeaklyTypedInput lets string-valued environment variables fill the
// numeric and boolean fields.
func yamlTagNames(dc *mapstructure.DecoderConfig) {
	dc.TagName = "yaml"
	dc.WeaklyTypedInput = true
}

// Save writes the config file, creating the config directory if needed
func Save(config *models.Config) error {
	if err := validate.Struct(config); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	configPath := GetConfigPath()
	if err := os.MkdirAll(configPath, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(GetConfigFile(), data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Exists reports whether a config file is present
func Exists() bool {
	_, err := os.Stat(GetConfigFile())
	return err == nil
}
