package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/quantmind-br/reposnap/internal/config"
	"github.com/quantmind-br/reposnap/internal/domain"
	"github.com/quantmind-br/reposnap/internal/git"
	"github.com/quantmind-br/reposnap/internal/journal"
	"github.com/quantmind-br/reposnap/internal/snapshot"
	"github.com/quantmind-br/reposnap/internal/telemetry"
	"github.com/quantmind-br/reposnap/internal/utils"
	"github.com/quantmind-br/reposnap/pkg/version"
)

var (
	cfgFile string
	verbose bool
	log     *utils.Logger

	// Dependencies for testing
	newGitClient = git.NewClient
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "reposnap",
	Short: "Snapshot a GitHub folder as plain text",
	Long: `RepoSnap turns a GitHub web URL into the concatenated text of the files
in that folder. It shallow-clones the repository's main (or master) branch
into a scratch directory, reads the folder's direct children and removes the
clone again.

Run it once with "fetch", over a manifest with "batch", or as an HTTP
service with "serve".`,
	Version:       version.Short(),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.reposnap/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Duration("timeout", config.DefaultFetchTimeout, "Timeout for each git operation")
	rootCmd.PersistentFlags().String("git-backend", config.DefaultGitBackend, "Git backend: cli or native")
	rootCmd.PersistentFlags().StringP("output", "o", config.DefaultOutputDir, "Output directory for saved snapshots")
	rootCmd.PersistentFlags().Bool("no-journal", false, "Do not record fetches in the journal")

	// Bind flags to viper
	_ = viper.BindPFlag("fetch.timeout", rootCmd.PersistentFlags().Lookup("timeout"))
	_ = viper.BindPFlag("fetch.git_backend", rootCmd.PersistentFlags().Lookup("git-backend"))
	_ = viper.BindPFlag("output.directory", rootCmd.PersistentFlags().Lookup("output"))

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// setup loads the configuration and builds the command logger from it
func setup(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if noJournal, _ := cmd.Flags().GetBool("no-journal"); noJournal {
		cfg.Journal.Enabled = false
	}

	log = utils.NewLogger(utils.LoggerOptions{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Output:  cmd.ErrOrStderr(),
		Verbose: verbose,
	})
	return cfg, nil
}

// deps holds everything a fetching command needs; close releases it
type deps struct {
	service   *snapshot.Service
	journal   domain.Journal
	telemetry *telemetry.Telemetry
}

func (d *deps) close() {
	if d.journal != nil {
		if err := d.journal.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close journal")
		}
	}
	if d.telemetry != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := d.telemetry.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("Telemetry shutdown failed")
		}
	}
}

// buildDeps wires the snapshot service. A nil writer disables persistence.
func buildDeps(ctx context.Context, cfg *config.Config, writer domain.Writer) (*deps, error) {
	client, err := newGitClient(cfg.Fetch.GitBackend, nil)
	if err != nil {
		return nil, err
	}

	tel, err := telemetry.New(ctx, telemetry.Options{
		Enabled:     cfg.Telemetry.Enabled,
		ServiceName: cfg.Telemetry.ServiceName,
	})
	if err != nil {
		return nil, fmt.Errorf("telemetry init failed: %w", err)
	}

	d := &deps{telemetry: tel, journal: openJournal(cfg)}
	d.service = snapshot.NewService(snapshot.ServiceOptions{
		Client:  client,
		TempDir: cfg.Fetch.TempDir,
		Writer:  writer,
		Journal: d.journal,
		Metrics: telemetry.NewFetchMetrics(),
		Logger:  log,
	})
	return d, nil
}

// openJournal opens the fetch journal. The journal is optional: a failure to
// open it (for example while a server holds the lock) only disables it.
func openJournal(cfg *config.Config) domain.Journal {
	if !cfg.Journal.Enabled {
		return nil
	}
	j, err := journal.NewBadgerJournal(journal.Options{
		Directory: cfg.Journal.Directory,
		Retention: cfg.Journal.Retention,
	})
	if err != nil {
		log.Warn().Err(err).Str("dir", cfg.Journal.Directory).Msg("Journal unavailable")
		return nil
	}
	return j
}

// signalContext is cancelled on SIGINT or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
