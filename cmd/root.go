package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jmcampanini/awr/internal/aws"
	"github.com/jmcampanini/awr/internal/browse"
	"github.com/jmcampanini/awr/internal/cache"
	"github.com/jmcampanini/awr/internal/catalog"
	"github.com/jmcampanini/awr/internal/command"
	"github.com/jmcampanini/awr/internal/config"
	"github.com/jmcampanini/awr/internal/menu"
	"github.com/jmcampanini/awr/internal/state"
)

// Version is set at build time via ldflags.
var Version = "n/a"

var rootCmd = &cobra.Command{
	Use:   "awr",
	Short: "Browse CodeCommit and CodePipeline from the terminal",
	Long: `awr wraps the aws CLI to browse CodeCommit repositories and pull requests
and CodePipeline pipelines and executions.

Responses are cached on disk, the last profile, repository and pipeline are
remembered between sessions, and every detail view prints ready-to-paste
approval and merge commands. awr itself never changes anything in AWS.

Environment:
  AWR_TIMEOUT     timeout for each aws call (default 30s)
  AWR_CACHE_TTL   how long responses are reused (default 5m, 0 disables)
  AWR_CACHE_DIR   cache location
  AWR_PROFILE     start with this profile
  AWR_REGION      region passed to every aws call
  AWR_DEBUG       debug logging
  AWR_QUIET       log errors only`,
	Args:         cobra.NoArgs,
	RunE:         runInteractive,
	SilenceUsage: true,
}

func init() {
	rootCmd.Version = Version
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads config files and environment overrides and resolves
// default file locations.
func loadConfig() (config.Config, error) {
	dirs := config.UserDirs()
	loader := config.NewDefaultLoader().WithEnv(os.LookupEnv)
	result, err := loader.Load(config.ConfigPaths(dirs.Config, dirs.Home))
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return result.Config.WithDefaultPaths(dirs), nil
}

func isInteractive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	closer, err := setupLogging(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() { _ = closer.Close() }()

	if !isInteractive() {
		return errors.New("awr needs an interactive terminal")
	}

	client := aws.New(cfg.AWS.Binary, cfg.AWS.Timeout)
	if err := client.Validate(); err != nil {
		return err
	}

	store := cache.NewStore(cfg.Cache.Dir, cfg.Cache.TTL)
	cat := catalog.New(client, store).WithMaxExecutions(cfg.AWS.MaxExecutions)
	selector := menu.NewTeaSelector(cmd.InOrStdin(), cmd.OutOrStdout())

	nav := browse.New(cat, state.NewStore(cfg.State.Path), selector, cmd.OutOrStdout(), browse.Options{
		ClearOnProfileSwitch: cfg.Cache.ClearOnProfileSwitch,
		Profile:              cfg.AWS.Profile,
		Region:               cfg.AWS.Region,
		Summaries: command.Summaries{
			Approve: cfg.Approval.ApproveSummary,
			Reject:  cfg.Approval.RejectSummary,
		},
	})
	return nav.Run(cmd.Context())
}
