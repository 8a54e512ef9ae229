package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/iov-one/quorum/errors"
	"github.com/spf13/cobra"
	"github.com/tendermint/tendermint/abci/server"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

// StartOptions configures the abci server.
type StartOptions struct {
	// Bind is the address the abci socket server listens on
	Bind string
	// Debug returns full error information to the client
	Debug bool
}

// AppGenerator lets us lazily initialize app, using home dir
// and logger potentially initialized with other flags
type AppGenerator func(home string, logger log.Logger, debug bool) (abci.Application, error)

// StartCmd returns the command that runs the abci server until it
// receives an interrupt signal. defaults are used for unset flags.
func StartCmd(gen AppGenerator, logger log.Logger, home *string, defaults StartOptions) *cobra.Command {
	opts := defaults
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the abci server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return Start(ctx, gen, logger, *home, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Bind, "bind", defaults.Bind, "address server listens on")
	cmd.Flags().BoolVar(&opts.Debug, "debug", defaults.Debug, "call stack returned on error")
	return cmd
}

// Start generates the application in home and serves it over the abci
// socket protocol until ctx is done.
func Start(ctx context.Context, gen AppGenerator, logger log.Logger, home string, opts StartOptions) error {
	app, err := gen(home, logger, opts.Debug)
	if err != nil {
		return errors.Wrap(err, "cannot create app")
	}

	logger.Info("Starting ABCI app", "bind", opts.Bind)
	svr, err := server.NewServer(opts.Bind, "socket", app)
	if err != nil {
		return errors.Wrap(err, "cannot create listener")
	}
	svr.SetLogger(logger.With("module", "abci-server"))
	if err := svr.Start(); err != nil {
		return errors.Wrap(err, "cannot start server")
	}

	<-ctx.Done()
	logger.Info("Stopping ABCI app")
	if err := svr.Stop(); err != nil {
		return errors.Wrap(err, "cannot stop server")
	}
	return nil
}
