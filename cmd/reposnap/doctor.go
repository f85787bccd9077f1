package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/quantmind-br/reposnap/internal/config"
	"github.com/quantmind-br/reposnap/internal/git"
	"github.com/quantmind-br/reposnap/internal/output"
)

var (
	// Dependencies for testing
	gitProbe = func(ctx context.Context) (string, bool) {
		return git.NewCLIClient(git.NewExecRunner(), git.DefaultBinary).Available(ctx)
	}
	loadConfig = config.Load
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check system dependencies",
	Long:  "Verifies that git, the output directory and the configuration are usable.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !runDoctor(cmd.Context(), cmd.OutOrStdout()) {
			return fmt.Errorf("some checks failed")
		}
		return nil
	},
}

// runDoctor prints one line per check and reports whether every critical check passed
func runDoctor(ctx context.Context, w io.Writer) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	fmt.Fprintln(w, "Checking system dependencies...")
	allPassed := true

	// Check 1: Config file
	fmt.Fprint(w, "  Config file: ")
	cfg, err := loadConfig()
	if err != nil {
		warnColor.Fprintf(w, "WARN (%v)\n", err)
		cfg = config.Default()
	} else {
		okColor.Fprintln(w, "OK")
	}

	// Check 2: git binary
	fmt.Fprint(w, "  git binary: ")
	if v, ok := gitProbe(ctx); ok {
		okColor.Fprintf(w, "OK (%s)\n", v)
	} else if cfg.Fetch.GitBackend == git.BackendNative {
		warnColor.Fprintln(w, "NOT FOUND (native backend in use)")
	} else {
		failColor.Fprintln(w, "NOT FOUND")
		allPassed = false
	}

	// Check 3: Write permissions for output dir
	fmt.Fprint(w, "  Output directory: ")
	writer := output.NewWriter(output.WriterOptions{BaseDir: cfg.Output.Directory})
	if err := writer.CheckWritable(); err != nil {
		failColor.Fprintf(w, "FAILED (%v)\n", err)
		allPassed = false
	} else {
		okColor.Fprintf(w, "OK (%s)\n", writer.BaseDir())
	}

	// Check 4: Scratch directory for clones
	fmt.Fprint(w, "  Temp directory: ")
	tmp := cfg.Fetch.TempDir
	if tmp == "" {
		tmp = os.TempDir()
	}
	if info, err := os.Stat(tmp); err != nil || !info.IsDir() {
		failColor.Fprintf(w, "FAILED (%s)\n", tmp)
		allPassed = false
	} else {
		okColor.Fprintf(w, "OK (%s)\n", tmp)
	}

	// Check 5: Journal directory
	fmt.Fprint(w, "  Journal: ")
	switch {
	case !cfg.Journal.Enabled:
		warnColor.Fprintln(w, "DISABLED")
	case dirExists(cfg.Journal.Directory):
		okColor.Fprintf(w, "OK (%s)\n", cfg.Journal.Directory)
	default:
		warnColor.Fprintln(w, "WARN (will be created on first use)")
	}

	fmt.Fprintln(w)
	if allPassed {
		fmt.Fprintln(w, "All critical checks passed!")
	} else {
		fmt.Fprintln(w, "Some checks failed. Please resolve the issues above.")
	}
	return allPassed
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
