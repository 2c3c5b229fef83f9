package cmd

import (
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"starforge/internal/config"
	"starforge/internal/logger"
	"starforge/internal/ui"
	apperrors "starforge/pkg/errors"
	"starforge/pkg/models"
)

var (
	appConfig *models.Config
	log       *logger.Logger
	runID     string

	logLevel string
	noColor  bool
)

var rootCmd = &cobra.Command{
	Use:   "starforge",
	Short: "Build and report on a synthetic sales star schema",
	Long: "Starforge generates a synthetic sales star schema, transforms it into " +
		"processed tables, runs data quality checks against them and computes " +
		"the KPI dashboard with its report artifacts.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		if noColor {
			color.NoColor = true
		}
		appConfig = cfg
		log = logger.New(cfg.Log)
		runID = uuid.NewString()
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.ShowError(err)
		if apperrors.IsRecoverable(err) {
			ui.ShowInfo("The stage can be re-run once the inputs are fixed.")
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override configured log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}
