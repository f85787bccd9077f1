package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/reposnap/internal/app"
	"github.com/quantmind-br/reposnap/internal/manifest"
	"github.com/quantmind-br/reposnap/internal/output"
)

var batchCmd = &cobra.Command{
	Use:   "batch <manifest>",
	Short: "Fetch every source of a YAML or JSON manifest",
	Long: `Fetches every source listed in a manifest concurrently and writes each
snapshot, plus an index.json, to the output directory.

Manifest example:

  sources:
    - url: https://github.com/org/repo/tree/main/docs
    - url: https://github.com/org/other
      branch: develop
      timeout: 60
  options:
    continue_on_error: true
    concurrency: 4
    output: ./snapshots`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Bool("no-progress", false, "Do not show the progress bar")
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	manifestPath := args[0]
	m, err := manifest.NewLoader().Load(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	// An explicit -o wins over the manifest
	outputDir := m.Options.Output
	if cmd.Flags().Changed("output") {
		outputDir = cfg.Output.Directory
	}

	ctx, cancel := signalContext()
	defer cancel()

	writer := output.NewWriter(output.WriterOptions{BaseDir: outputDir})
	d, err := buildDeps(ctx, cfg, writer)
	if err != nil {
		return err
	}
	defer d.close()

	noProgress, _ := cmd.Flags().GetBool("no-progress")
	runner := app.NewBatchRunner(app.BatchOptions{
		Fetcher: d.service,
		Collector: output.NewIndexCollector(output.CollectorOptions{
			BaseDir:  writer.BaseDir(),
			Manifest: manifestPath,
			Enabled:  true,
		}),
		Logger:       log.WithComponent("batch"),
		ShowProgress: !noProgress,
	})

	summary, runErr := runner.Run(ctx, m)
	if summary != nil {
		printSummary(cmd.OutOrStdout(), summary)
	}
	return runErr
}

func printSummary(w io.Writer, s *app.BatchSummary) {
	for _, res := range s.Results {
		switch {
		case res.Error == nil && res.Result.PersistErr != nil:
			fmt.Fprintf(w, "ok      %s (not saved: %v)\n", res.Source.URL, res.Result.PersistErr)
		case res.Error == nil:
			fmt.Fprintf(w, "ok      %s -> %s\n", res.Source.URL, res.Result.PersistedPath)
		case errors.Is(res.Error, app.ErrSkipped):
			fmt.Fprintf(w, "skipped %s\n", res.Source.URL)
		default:
			fmt.Fprintf(w, "failed  %s: %v\n", res.Source.URL, res.Error)
		}
	}
	fmt.Fprintf(w, "%d succeeded, %d failed, %d skipped in %s\n",
		s.Succeeded, s.Failed, s.Skipped, s.Duration.Round(time.Millisecond))
}
