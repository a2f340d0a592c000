package cli

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/4chain-ag/go-dlc-settlement/pkg/appconfig"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/contract"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/crypto"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleclient"
	"github.com/4chain-ag/go-dlc-settlement/pkg/oracleserver"
	"github.com/gookit/slog"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// NewOracleCommand groups the commands running an oracle.
func NewOracleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "oracle",
		Short: "Run a random integer oracle",
	}
	cmd.AddCommand(newOracleServeCommand(rootOpts))
	return cmd
}

type oracleServeOptions struct {
	NbDigits uint8
}

func newOracleServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &oracleServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the local oracle over HTTP",
		Long: `Serve announcements and attestations of the local random integer oracle
over HTTP, configured by the oracle_server and oracle.local sections. Parties
reach it with oracle.mode set to http.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOracleServe(cmd.Context(), rootOpts, opts)
		},
	}

	cmd.Flags().Uint8Var(&opts.NbDigits, "nb-digits", 0, "outcome digits of the served events (defaults to contract.nb_digits, then the contract file)")
	return cmd
}

func runOracleServe(ctx context.Context, rootOpts *RootOptions, opts *oracleServeOptions) error {
	cfg := rootOpts.Config

	space, err := serveSpace(opts.NbDigits, cfg.Contract)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot determine the outcome space", err)
	}
	strategy, err := crypto.StrategyByName(cfg.Engine.CryptoStrategy)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid crypto strategy", err)
	}
	local, err := newLocalOracle(cfg.Oracle.Local, space, strategy)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to create the local oracle", err)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := oracleserver.New(
		oracleserver.WithConfig(cfg.OracleServer),
		oracleserver.WithOracle(local),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(ctx)
	}()

	pub, _ := local.PublicKey(ctx)
	slog.WithFields(slog.M{
		"addr":       srv.SocketAddr(),
		"public_key": hex.EncodeToString(pub.SerializeCompressed()),
		"nb_digits":  space.NbDigits,
		"strategy":   strategy.Name(),
	}).Info("oracle server listening")

	select {
	case err := <-errCh:
		return WrapExitError(ExitFailure, "oracle server stopped", err)
	case <-ctx.Done():
	}

	slog.Info("shutting down oracle server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return WrapExitError(ExitFailure, "oracle server shutdown failed", err)
	}
	return nil
}

// serveSpace picks the outcome space from the flag, the configuration or
// the contract file, in that order.
func serveSpace(flagDigits uint8, cfg appconfig.Contract) (outcome.Space, error) {
	switch {
	case flagDigits > 0:
		return outcome.NewSpace(flagDigits)
	case cfg.NbDigits > 0:
		return outcome.NewSpace(cfg.NbDigits)
	}

	input, err := contract.ReadInput(cfg.Path)
	if err != nil {
		return outcome.Space{}, fmt.Errorf("no --nb-digits or contract.nb_digits given: %w", err)
	}
	return outcome.NewSpace(input.ContractInfo.Oracle.NbDigits)
}

// newOracle returns the oracle the parties settle against.
func newOracle(cfg appconfig.Oracle, space outcome.Space, strategy crypto.Strategy) (oracle.Oracle, error) {
	switch cfg.Mode {
	case appconfig.OracleModeHTTP:
		return oracleclient.New(cfg.HTTP), nil
	case appconfig.OracleModeLocal:
		return newLocalOracle(cfg.Local, space, strategy)
	default:
		return nil, errors.New("unknown oracle mode " + cfg.Mode)
	}
}

func newLocalOracle(cfg appconfig.LocalOracle, space outcome.Space, strategy crypto.Strategy) (*oracle.RandIntOracle, error) {
	opts := []oracle.RandIntOption{
		oracle.WithStrategy(strategy),
		oracle.WithAttestationDelay(cfg.AttestationDelay),
	}
	if cfg.Outcome != appconfig.RandomOutcome {
		opts = append(opts, oracle.WithOutcome(outcome.Outcome(cfg.Outcome)))
	}
	return oracle.NewRandIntOracle(space, opts...)
}
