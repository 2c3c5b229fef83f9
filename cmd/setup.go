package cmd

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"starforge/internal/config"
	"starforge/internal/ui"
	"starforge/pkg/models"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration setup",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	ui.ShowHeader("Starforge Setup")

	if config.Exists() {
		overwrite, err := ui.Confirm("Configuration already exists. Do you want to overwrite it?", false)
		if err != nil {
			return err
		}
		if !overwrite {
			ui.ShowInfo("Setup cancelled.")
			return nil
		}
	}

	cfg := models.DefaultConfig()

	ui.PrintSection("Data Directories")
	dirQs := []*survey.Question{
		{
			Name:     "rawdir",
			Prompt:   &survey.Input{Message: "Raw data directory:", Default: cfg.Data.RawDir},
			Validate: survey.Required,
		},
		{
			Name:     "processeddir",
			Prompt:   &survey.Input{Message: "Processed data directory:", Default: cfg.Data.ProcessedDir},
			Validate: survey.Required,
		},
		{
			Name:     "reportsdir",
			Prompt:   &survey.Input{Message: "Reports directory:", Default: cfg.Data.ReportsDir},
			Validate: survey.Required,
		},
	}
	if err := survey.Ask(dirQs, &cfg.Data); err != nil {
		return err
	}

	ui.PrintSection("Generator")
	answers := struct {
		Seed      string
		Orders    string
		StartDate string
		EndDate   string
	}{}
	genQs := []*survey.Question{
		{
			Name:     "seed",
			Prompt:   &survey.Input{Message: "Random seed:", Default: strconv.FormatInt(cfg.Generator.Seed, 10)},
			Validate: integerAnswer,
		},
		{
			Name:     "orders",
			Prompt:   &survey.Input{Message: "Number of orders:", Default: strconv.Itoa(cfg.Generator.Orders)},
			Validate: integerAnswer,
		},
		{
			Name:     "startdate",
			Prompt:   &survey.Input{Message: "Calendar start date (YYYY-MM-DD):", Default: cfg.Generator.StartDate},
			Validate: survey.Required,
		},
		{
			Name:     "enddate",
			Prompt:   &survey.Input{Message: "Calendar end date (YYYY-MM-DD):", Default: cfg.Generator.EndDate},
			Validate: survey.Required,
		},
	}
	if err := survey.Ask(genQs, &answers); err != nil {
		return err
	}
	cfg.Generator.Seed, _ = strconv.ParseInt(answers.Seed, 10, 64)
	cfg.Generator.Orders, _ = strconv.Atoi(answers.Orders)
	cfg.Generator.StartDate = answers.StartDate
	cfg.Generator.EndDate = answers.EndDate

	ui.PrintSection("Validation and Reports")
	var failWarn, excel bool
	if err := survey.AskOne(&survey.Confirm{
		Message: "Treat validation warnings as failures?",
		Default: cfg.Validation.FailOnWarning,
	}, &failWarn); err != nil {
		return err
	}
	if err := survey.AskOne(&survey.Confirm{
		Message: "Export the Excel workbook with each KPI run?",
		Default: cfg.KPI.ExportExcel,
	}, &excel); err != nil {
		return err
	}
	cfg.Validation.FailOnWarning = failWarn
	cfg.KPI.ExportExcel = excel

	if err := config.Save(cfg); err != nil {
		return err
	}

	ui.ShowSuccess(fmt.Sprintf("Configuration saved to %s", config.GetConfigFile()))
	ui.ShowInfo("Run 'starforge run' to execute the full pipeline.")
	return nil
}

func integerAnswer(val interface{}) error {
	s, ok := val.(string)
	if !ok {
		return fmt.Errorf("expected a text answer")
	}
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return fmt.Errorf("must be a whole number")
	}
	return nil
}
