package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"starforge/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: generate, transform, validate, kpi",
	Long: "Run executes all pipeline stages in order. The pipeline stops at " +
		"the first failing stage; in particular the KPI stage is skipped " +
		"when validation fails.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if skipGenerate {
			return runPipeline([]stage{
				{"transform", runTransform},
				{"validate", runValidate},
				{"kpi", runKPI},
			})
		}
		return runPipeline([]stage{
			{"generate", runGenerate},
			{"transform", runTransform},
			{"validate", runValidate},
			{"kpi", runKPI},
		})
	},
}

var skipGenerate bool

type stage struct {
	name string
	fn   func() error
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVar(&skipGenerate, "skip-generate", false, "start from existing raw files")
}

func runPipeline(stages []stage) error {
	log.WithRun(runID, "pipeline").Infof("starting pipeline with %d stages", len(stages))

	tracker := ui.NewStageTracker(len(stages))
	for _, s := range stages {
		start := time.Now()
		tracker.Begin(s.name)
		if err := s.fn(); err != nil {
			tracker.Done(false, err.Error(), time.Since(start))
			tracker.Finish(1)
			return err
		}
		tracker.Done(true, "completed", time.Since(start))
	}
	tracker.Finish(0)
	return nil
}
