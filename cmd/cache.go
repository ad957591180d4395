package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jmcampanini/awr/internal/cache"
)

var cacheClearProfileFlag string

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the response cache",
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached responses",
	Long: `List every cached aws response with its size and age.

Entries older than the configured TTL are marked expired; they are removed
the next time they are read.`,
	Args: cobra.NoArgs,
	RunE: runCacheList,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached responses",
	Long: `Remove cached aws responses.

By default every profile's cache is removed. With --profile only that
profile's entries are removed.`,
	Args: cobra.NoArgs,
	RunE: runCacheClear,
}

func init() {
	cacheClearCmd.Flags().StringVar(&cacheClearProfileFlag, "profile", "", "Only clear entries of this AWS profile")
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func openCache() (*cache.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Cache.Dir == "" {
		return nil, fmt.Errorf("no cache directory configured")
	}
	return cache.NewStore(cfg.Cache.Dir, cfg.Cache.TTL), nil
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	store, err := openCache()
	if err != nil {
		return err
	}
	entries, err := store.Entries()
	if err != nil {
		return err
	}
	return outputCacheList(cmd, store.Dir(), entries)
}

// outputCacheList renders a lipgloss table of cache entries to stdout.
func outputCacheList(cmd *cobra.Command, dir string, entries []cache.EntryInfo) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "No cached responses in %s.\n", dir)
		return err
	}

	purple := lipgloss.Color("99")
	gray := lipgloss.Color("245")
	lightGray := lipgloss.Color("241")

	headerStyle := lipgloss.NewStyle().Foreground(purple).Bold(true).Align(lipgloss.Center)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	oddRowStyle := cellStyle.Foreground(gray)
	evenRowStyle := cellStyle.Foreground(lightGray)

	var total uint64
	rows := make([][]string, len(entries))
	for i, e := range entries {
		status := ""
		if e.Expired {
			status = "expired"
		}
		total += uint64(e.Size)
		rows[i] = []string{
			e.Profile,
			e.Name,
			humanize.Bytes(uint64(e.Size)),
			cache.AgeString(int64(e.Age.Seconds())),
			status,
		}
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(purple)).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row%2 == 0:
				return evenRowStyle
			default:
				return oddRowStyle
			}
		}).
		Headers("Profile", "Entry", "Size", "Age", "").
		Rows(rows...)

	_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\n%d entries, %s in %s\n", t, len(entries), humanize.Bytes(total), dir)
	return err
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	store, err := openCache()
	if err != nil {
		return err
	}
	return clearCache(cmd, store, cacheClearProfileFlag)
}

func clearCache(cmd *cobra.Command, store *cache.Store, profile string) error {
	if profile == "" {
		if err := store.Clear(); err != nil {
			return err
		}
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "Cleared cached responses for all profiles.")
		return err
	}

	if err := store.ClearProfile(profile); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "Cleared cached responses for profile %s.\n", profile)
	return err
}
