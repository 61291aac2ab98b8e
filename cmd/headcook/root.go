package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/headcookai/headcook/internal/client"
	"github.com/headcookai/headcook/internal/logger"
)

// cliConfig is read from the environment; flags override it.
type cliConfig struct {
	Server     string `env:"HEADCOOK_SERVER" envDefault:"http://localhost:3001"`
	ConfigDir  string `env:"HEADCOOK_CONFIG_DIR"`
	ImageLimit int    `env:"HEADCOOK_IMAGE_LIMIT" envDefault:"3"`
	Verbose    bool   `env:"HEADCOOK_VERBOSE"`
}

// app holds what the commands share once flags are parsed
type app struct {
	cfg        cliConfig
	log        *zap.Logger
	identity   *client.IdentityStore
	api        *client.APIClient
	favorites  string
	lastSearch string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	if err := env.Parse(&a.cfg); err != nil {
		fmt.Fprintln(os.Stderr, "invalid environment:", err)
	}

	root := &cobra.Command{
		Use:          "headcook",
		Short:        "Recipe ideas from the ingredients you have",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfg.Server, "server", a.cfg.Server, "Head Cook API base URL")
	flags.StringVar(&a.cfg.ConfigDir, "config-dir", a.cfg.ConfigDir, "directory for the identity and favorites files")
	flags.BoolVarP(&a.cfg.Verbose, "verbose", "v", a.cfg.Verbose, "log debug output")

	root.AddCommand(
		newRegisterCmd(a),
		newLoginCmd(a),
		newLogoutCmd(a),
		newSearchCmd(a),
		newFavoritesCmd(a),
		newSuggestCmd(),
		newCuisinesCmd(),
		newUsageCmd(a),
	)
	return root
}

func (a *app) init() error {
	a.log = zap.NewNop()
	if a.cfg.Verbose {
		a.log = logger.New(logger.Config{Level: "debug", Format: "console", Development: true})
	}

	dir := a.cfg.ConfigDir
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("failed to locate config directory: %w", err)
		}
		dir = filepath.Join(base, "headcook")
	}

	identity, err := client.LoadIdentityStore(filepath.Join(dir, "identity.json"))
	if err != nil {
		return err
	}
	a.identity = identity
	a.api = client.NewAPIClient(a.cfg.Server, client.WithTokenSource(identity))
	a.favorites = filepath.Join(dir, "favorites.json")
	a.lastSearch = filepath.Join(dir, "last_search.json")
	return nil
}
