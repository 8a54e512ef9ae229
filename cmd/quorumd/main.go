package main

import (
	"fmt"
	"io"
	"os"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/cmd/quorumd/app"
	"github.com/iov-one/quorum/commands"
	"github.com/iov-one/quorum/commands/server"
	"github.com/spf13/cobra"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
	logger, err := newLogger(cfg.LogLevel, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}

	root := rootCmd(&cfg, logger, os.Stdout, openApp(logger))
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %+v\n", err)
		os.Exit(1)
	}
}

// appOpener gives access to the application state stored in home.
type appOpener func(home string) (abci.Application, error)

// openApp opens the database of a stopped node.
func openApp(logger log.Logger) appOpener {
	return func(home string) (abci.Application, error) {
		return app.GenerateApp(home, logger, false)
	}
}

func rootCmd(cfg *Config, logger log.Logger, out io.Writer, open appOpener) *cobra.Command {
	root := &cobra.Command{
		Use:           "quorumd",
		Short:         "Threshold multisig node and client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&cfg.Home, "home", cfg.Home, "directory to store files under")

	root.AddCommand(
		server.InitCmd(app.GenInitOptions, logger, &cfg.Home),
		server.StartCmd(app.GenerateApp, logger, &cfg.Home, server.StartOptions{
			Bind:  cfg.Bind,
			Debug: cfg.Debug,
		}),
		server.ValidateCmd(app.Initializer(app.Engine())),
		commands.TestGenCmd(app.Examples),
		keysCmd(out),
		txCmd(cfg, out),
		queryCmd(cfg, out, open),
		&cobra.Command{
			Use:   "version",
			Short: "Print the app version",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Fprintln(out, quorum.Version())
			},
		},
	)
	return root
}
