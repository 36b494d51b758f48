// Package cli implements circlectl, a terminal client for the Circle backend.
// It keeps its login in a tokens.FileRepo so it survives between invocations.
package cli

import (
	"context"
	"io"
	"os"

	"github.com/jrsteele09/circle-miniapp/authsession"
	"github.com/jrsteele09/circle-miniapp/circleapi"
	"github.com/jrsteele09/circle-miniapp/internal/config"
	"github.com/jrsteele09/circle-miniapp/internal/logging"
	"github.com/jrsteele09/circle-miniapp/telegram"
	"github.com/jrsteele09/circle-miniapp/tokens"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	v   *viper.Viper
	cfg Config
	out io.Writer
}

// session wires a store, an API handle and a manager for the configured
// session name.
func (a *app) session() (*tokens.Store, *circleapi.API, *authsession.Manager) {
	opts := []circleapi.Option{circleapi.WithUserAgent("circlectl")}
	if a.cfg.Timeout > 0 {
		opts = append(opts, circleapi.WithTimeout(a.cfg.Timeout))
	}
	store := tokens.NewStore(tokens.NewFileRepo(a.cfg.SessionDir()), a.cfg.Session)
	api := circleapi.NewClient(a.cfg.APIURL, opts...).For(store)
	return store, api, authsession.NewManager(store, api, nil)
}

func (a *app) telegramManager(initData string) (*tokens.Store, *authsession.Manager) {
	store, api, _ := a.session()
	bridge := telegram.NewBridge(telegram.Launch{Available: true, InitData: initData}, "", false)
	return store, authsession.NewManager(store, api, bridge)
}

// NewRootCommand builds the circlectl command tree writing to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{v: newViper(), out: out}

	root := &cobra.Command{
		Use:   "circlectl",
		Short: "Command line client for the Circle travel community",
		Long: `circlectl talks to the Circle backend with the same session rules as the
mini-app: tokens are refreshed transparently and a rejected refresh ends the
session.

Configuration is read from flags, CIRCLE_* environment variables and
~/.circle/config.yaml.

Examples:
  circlectl login --login +998901234567 --password secret123
  circlectl tours list --type 1 --price-max 300000
  circlectl wishlist toggle 3`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg

			logging.Setup(config.EnvDev)
			if !cfg.Verbose && os.Getenv("LOG_LEVEL") == "" {
				zerolog.SetGlobalLevel(zerolog.WarnLevel)
			}
			return nil
		},
	}
	root.SetOut(out)
	root.SetErr(out)

	flags := root.PersistentFlags()
	flags.String("api-url", defaultAPIURL, "Circle API base URL including the version prefix")
	flags.String("home", defaultHome(), "directory holding config.yaml and saved sessions")
	flags.String("session", defaultSession, "name of the saved session to use")
	flags.Duration("timeout", defaultTimeout, "per request timeout")
	flags.Bool("json", false, "print JSON instead of tables")
	flags.BoolP("verbose", "v", false, "log requests and token refreshes")
	if err := bindFlags(a.v, flags); err != nil {
		panic(err)
	}

	root.AddCommand(
		a.loginCommand(),
		a.registerCommand(),
		a.logoutCommand(),
		a.whoamiCommand(),
		a.refreshCommand(),
		a.toursCommand(),
		a.wishlistCommand(),
		a.onboardingCommand(),
	)
	return root
}

// Execute runs circlectl with the process arguments.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdout).ExecuteContext(ctx)
}
