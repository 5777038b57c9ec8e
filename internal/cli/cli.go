package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/RevCBH/fsgit/internal/config"
)

// versionInfo carries build-time version metadata for the "version"
// subcommand.
type versionInfo struct {
	Version string
	Commit  string
	Date    string
}

// App represents the CLI application with all wired dependencies.
type App struct {
	rootCmd *cobra.Command

	configPath string
	config     *config.Config

	verbose  bool
	cancel   context.CancelFunc
	shutdown chan struct{}

	versionInfo versionInfo
}

// New creates a new CLI application.
func New() *App {
	app := &App{
		shutdown: make(chan struct{}),
	}
	app.setupRootCmd()
	return app
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.rootCmd.Execute()
}

// SetVersion sets the version string for the version command.
func (a *App) SetVersion(version, commit, date string) {
	a.versionInfo = versionInfo{Version: version, Commit: commit, Date: date}
}

// loadConfig loads broker configuration from the --config flag, falling
// back to defaults plus environment overrides when unset.
func (a *App) loadConfig() (*config.Config, error) {
	if a.config != nil {
		return a.config, nil
	}
	cfg, err := config.LoadConfig(a.configPath)
	if err != nil {
		return nil, err
	}
	a.config = cfg
	return cfg, nil
}

// setupRootCmd configures the root Cobra command.
func (a *App) setupRootCmd() {
	a.rootCmd = &cobra.Command{
		Use:   "fsgitd",
		Short: "Git-enforced filesystem broker",
		Long: `fsgitd is a long-lived broker that exposes file-mutation
primitives (write, text-replace, patch-apply) to an automated agent over a
JSON-RPC tool-call protocol. Every accepted mutation lands as one
templated, auditable git commit.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	a.rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"Verbose output")
	a.rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "",
		"Path to a broker config YAML file (optional)")

	a.rootCmd.AddCommand(NewVersionCmd(a))
	a.rootCmd.AddCommand(NewServeCmd(a))
	a.rootCmd.AddCommand(NewSessionsCmd(a))
}
