package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/reposnap/internal/domain"
	"github.com/quantmind-br/reposnap/internal/output"
	"github.com/quantmind-br/reposnap/internal/utils"
)

const spinnerInterval = 100 * time.Millisecond

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Fetch one GitHub folder and print its text",
	Long: `Fetches the folder named by a GitHub web URL and prints the aggregated
text to stdout, one "File: <path>" block per file.

Examples:
  reposnap fetch https://github.com/octocat/Hello-World
  reposnap fetch https://github.com/org/repo/tree/main/docs --save -o ./snapshots`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("branch", "", "Clone this branch instead of resolving main/master")
	fetchCmd.Flags().Bool("save", false, "Also write the snapshot to the output directory")
	fetchCmd.Flags().Bool("quiet", false, "Do not show the spinner")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	save, _ := cmd.Flags().GetBool("save")
	branch, _ := cmd.Flags().GetString("branch")
	quiet, _ := cmd.Flags().GetBool("quiet")

	var writer domain.Writer
	if save {
		writer = output.NewWriter(output.WriterOptions{BaseDir: cfg.Output.Directory})
	}

	d, err := buildDeps(ctx, cfg, writer)
	if err != nil {
		return err
	}
	defer d.close()

	req := domain.FetchRequest{
		URL:     args[0],
		Timeout: cfg.Fetch.Timeout,
		Branch:  branch,
	}

	var stop func()
	if !quiet {
		stop = startSpinner(ctx, cmd.ErrOrStderr())
	}
	result, err := d.service.Fetch(ctx, req)
	if stop != nil {
		stop()
	}
	if err != nil {
		return err
	}

	if _, err := io.WriteString(cmd.OutOrStdout(), result.Content.String()); err != nil {
		return err
	}

	if save {
		if result.PersistErr != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: snapshot not saved: %v\n", result.PersistErr)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved %s\n", result.PersistedPath)
		}
	}
	return nil
}

// startSpinner animates an indeterminate bar on w until the returned func is called
func startSpinner(ctx context.Context, w io.Writer) func() {
	bar := utils.NewProgressBarTo(w, -1, utils.DescCloning)
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(spinnerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	return func() {
		close(done)
		<-finished
		_ = bar.Finish()
	}
}
