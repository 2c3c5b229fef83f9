package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"starforge/internal/schema"
	"starforge/internal/ui"
	"starforge/internal/validate"
	apperrors "starforge/pkg/errors"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Run data quality checks against the processed tables",
	Long: "Validate runs the data quality check catalog (nulls, duplicate " +
		"keys, referential integrity, value ranges and business rules) " +
		"against the processed tables and fails when errors are found.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("fail-on-warning") {
			appConfig.Validation.FailOnWarning = failOnWarning
		}
		return runValidate()
	},
}

var failOnWarning bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&failOnWarning, "fail-on-warning", false, "treat warnings as failures")
}

func runValidate() error {
	start := time.Now()
	stageLog := log.WithRun(runID, "validate")

	ui.ShowHeader("Data Quality Validation")
	ui.PrintKeyValue("Input", appConfig.Data.ProcessedDir)

	ds, err := schema.ReadDataset(appConfig.Data.ProcessedDir)
	if err != nil {
		return err
	}

	report := validate.New(appConfig.Validation, stageLog).Run(ds)
	fmt.Print(validate.RenderSummary(report, !noColor))

	stageLog.TimedInfo("validate stage complete", start)

	if !report.OK(appConfig.Validation.FailOnWarning) {
		failure := apperrors.New(apperrors.ErrCodeValidationFailed, "data quality validation failed").
			WithContext("errors", len(report.Errors())).
			WithContext("warnings", len(report.Warnings())).
			WithSuggestions(
				"Review the failed checks above",
				"Run 'starforge transform' to rebuild the processed tables",
			)
		if report.OK(false) {
			// warnings only, the run is repeatable once the data is cleaned up
			failure = failure.AsRecoverable()
		}
		return failure
	}

	ui.ShowSuccess("All validations passed")
	return nil
}
