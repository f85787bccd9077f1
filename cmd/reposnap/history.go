package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/quantmind-br/reposnap/internal/domain"
	"github.com/quantmind-br/reposnap/internal/journal"
)

const defaultHistoryLimit = 20

var (
	okColor   = color.New(color.FgGreen)
	failColor = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent fetches from the journal",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Number of records to show (0 shows all)")
	historyCmd.Flags().Bool("clear", false, "Delete every record instead of listing them")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}
	if !cfg.Journal.Enabled {
		return fmt.Errorf("journal is disabled")
	}

	j, err := journal.NewBadgerJournal(journal.Options{
		Directory: cfg.Journal.Directory,
		Retention: cfg.Journal.Retention,
	})
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer j.Close()

	if wipe, _ := cmd.Flags().GetBool("clear"); wipe {
		if err := j.Clear(); err != nil {
			return fmt.Errorf("failed to clear journal: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Journal cleared")
		return nil
	}

	limit, _ := cmd.Flags().GetInt("limit")
	records, err := j.Recent(context.Background(), limit)
	if err != nil {
		return fmt.Errorf("failed to read journal: %w", err)
	}
	return printHistory(cmd.OutOrStdout(), records)
}

// printHistory renders journal records newest first
func printHistory(w io.Writer, records []*domain.FetchRecord) error {
	if len(records) == 0 {
		fmt.Fprintln(w, "No fetches recorded")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Time", "URL", "Branch", "Files", "Bytes", "Duration", "Status"})

	data := make([][]string, 0, len(records))
	for _, r := range records {
		data = append(data, []string{
			r.FetchedAt.Local().Format(time.DateTime),
			r.URL,
			r.Branch,
			strconv.Itoa(r.Files),
			strconv.Itoa(r.Bytes),
			r.Duration.Round(time.Millisecond).String(),
			status(r),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	failed := 0
	for _, r := range records {
		if !r.Succeeded() {
			failed++
		}
	}
	fmt.Fprintf(w, "Showing %d fetches (%d failed)\n", len(records), failed)
	return nil
}

func status(r *domain.FetchRecord) string {
	if r.Succeeded() {
		return okColor.Sprint("ok")
	}
	return failColor.Sprint(truncate(r.Error, 60))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
