package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pictomancers/shaded/pkg/shaded/config"
	"github.com/pictomancers/shaded/pkg/shaded/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View build history",
	Long: `View the archives shaded has built.

Every successful build is recorded with its archive path, size and the
shaderpacks it contains. Set history.enabled to false to stop recording.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show details of a build",
	Long:  `Display a recorded build by its ID or a unique ID prefix.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove old history records",
	Long:  `Remove history records older than history.retention_days.`,
	Args:  cobra.NoArgs,
	RunE:  runHistoryClean,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "maximum number of records to show")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCleanCmd)
	rootCmd.AddCommand(historyCmd)
}

func historyStore() (*history.Store, error) {
	store, err := history.New(appConfig.History.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	return store, nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	store, err := historyStore()
	if err != nil {
		return err
	}

	records, err := store.List(historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}

	w := cmd.OutOrStdout()
	if len(records) == 0 {
		fmt.Fprintln(w, "No builds recorded.")
		return nil
	}

	fmt.Fprintf(w, "%-8s  %-16s  %-10s  %-5s  %-10s  %s\n", "ID", "WHEN", "KIND", "PACKS", "SIZE", "NAME")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, rec := range records {
		fmt.Fprintf(w, "%-8s  %-16s  %-10s  %-5d  %-10s  %s\n",
			shortID(rec.ID),
			rec.Timestamp.Local().Format("2006-01-02 15:04"),
			rec.Kind,
			len(rec.Members),
			humanize.Bytes(uint64(rec.ArchiveSize)),
			rec.Name,
		)
	}
	fmt.Fprintln(w, strings.Repeat("-", 80))
	fmt.Fprintln(w, "Use 'shaded history show <id>' for details on a build.")
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	store, err := historyStore()
	if err != nil {
		return err
	}

	rec, err := store.Get(args[0])
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "ID:       %s\n", rec.ID)
	fmt.Fprintf(w, "Built:    %s\n", rec.Timestamp.Local().Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(w, "Kind:     %s\n", rec.Kind)
	fmt.Fprintf(w, "Name:     %s\n", rec.Name)
	fmt.Fprintf(w, "Source:   %s\n", rec.Source)
	fmt.Fprintf(w, "Archive:  %s (%s)\n", rec.ArchivePath, humanize.Bytes(uint64(rec.ArchiveSize)))
	fmt.Fprintf(w, "Took:     %s\n", rec.Duration)
	fmt.Fprintf(w, "Files:    %d\n", rec.Files())

	if len(rec.Members) > 0 {
		fmt.Fprintln(w, "\nShaderpacks:")
		for _, m := range rec.Members {
			fmt.Fprintf(w, "  %-30s %d shaders, %d textures, %d presets, %d addons\n",
				m.Name, m.ShaderCount, m.TextureCount, m.PresetCount, m.AddonCount)
		}
	}
	return nil
}

func runHistoryClean(cmd *cobra.Command, args []string) error {
	store, err := historyStore()
	if err != nil {
		return err
	}

	days := appConfig.History.RetentionDays
	if days <= 0 {
		days = config.DefaultRetentionDays
	}

	removed, err := store.Cleanup(days)
	if err != nil {
		return fmt.Errorf("failed to clean history: %w", err)
	}
	printInfo(cmd, "Removed %d history %s older than %d days.", removed, pluralize(removed, "record", "records"), days)
	return nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
