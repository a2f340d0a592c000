package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/adaptor"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/computation"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/contract"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/controller"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/crypto"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/oracle"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/storage"
	"github.com/gookit/slog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	ErrAdaptorsRejected = errors.New("counterparty adaptors failed verification")
	ErrPayoutMismatch   = errors.New("parties disagree on the payout")
	ErrInvalidSignature = errors.New("finalized signatures do not verify against the fund address")
)

// PhaseTiming is the wall time one handshake phase took for both parties.
type PhaseTiming struct {
	Name     string `json:"name"`
	Duration string `json:"duration"`
}

// SimulationReport is the result of settling a contract between two local parties.
type SimulationReport struct {
	EventID        string        `json:"eventId"`
	Scheme         string        `json:"scheme"`
	Strategy       string        `json:"strategy"`
	Outcomes       int           `json:"outcomes"`
	Outcome        uint32        `json:"outcome"`
	OffererPayout  uint64        `json:"offererPayout"`
	AccepterPayout uint64        `json:"accepterPayout"`
	Verified       bool          `json:"signaturesVerified"`
	Phases         []PhaseTiming `json:"phases"`

	payout controller.Payout
}

func (r SimulationReport) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Event:\t%s\n", r.EventID)
	fmt.Fprintf(tw, "Scheme:\t%s (%s)\n", r.Scheme, r.Strategy)
	fmt.Fprintf(tw, "Outcomes:\t%d\n", r.Outcomes)
	fmt.Fprintf(tw, "Attested outcome:\t%d\n", r.Outcome)
	fmt.Fprintf(tw, "Signatures verified:\t%t\n", r.Verified)
	for _, p := range r.Phases {
		fmt.Fprintf(tw, "  %s\t%s\n", p.Name, p.Duration)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, r.payout.String())
	return err
}

type simulateOptions struct {
	ContractPath string
	Timeout      time.Duration
}

// NewSimulateCommand creates the command settling a contract between an
// offerer and an accepter running in the same process.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &simulateOptions{}

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Settle a contract between two local parties",
		Long: `Run the offerer and the accepter through the full handshake: load the
contract, precompute pre-signatures, exchange and verify adaptors, wait for
the oracle attestation and finalize. Every phase is timed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if opts.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
				defer cancel()
			}
			return runSimulate(ctx, rootOpts, opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ContractPath, "contract", "", "contract file (defaults to contract.path)")
	cmd.Flags().DurationVar(&opts.Timeout, "timeout", 0, "abort the settlement after this long (0 waits forever)")
	return cmd
}

func runSimulate(ctx context.Context, rootOpts *RootOptions, opts *simulateOptions, cmd *cobra.Command) error {
	cfg := rootOpts.Config
	formatter := &OutputFormatter{Format: rootOpts.Format, Writer: cmd.OutOrStdout()}

	path := cfg.Contract.Path
	if opts.ContractPath != "" {
		path = opts.ContractPath
	}
	input, err := contract.ReadInput(path)
	if err != nil {
		return formatter.Error(ExitCommandError, "failed to read contract", err)
	}
	if cfg.Contract.EventID != "" {
		input.ContractInfo.Oracle.EventID = cfg.Contract.EventID
	}

	space, err := contractSpace(cfg.Contract.NbDigits, input)
	if err != nil {
		return formatter.Error(ExitCommandError, "invalid outcome space", err)
	}
	scheme, err := adaptor.SchemeByName(cfg.Engine.AdaptorScheme)
	if err != nil {
		return formatter.Error(ExitCommandError, "invalid adaptor scheme", err)
	}
	strategy, err := crypto.StrategyByName(cfg.Engine.CryptoStrategy)
	if err != nil {
		return formatter.Error(ExitCommandError, "invalid crypto strategy", err)
	}
	orc, err := newOracle(cfg.Oracle, space, strategy)
	if err != nil {
		return formatter.Error(ExitCommandError, "failed to create oracle", err)
	}

	ctrlOpts := []controller.Option{
		controller.WithScheme(scheme),
		controller.WithStrategy(strategy),
		controller.WithExecutor(computation.ExecutorFor(cfg.Engine.Workers)),
	}
	if cfg.Contract.NbDigits > 0 {
		ctrlOpts = append(ctrlOpts, controller.WithSpace(space))
	}
	if cfg.Storage.SQLitePath != "" {
		store, err := storage.NewSQLiteSnapshotStore(cfg.Storage.SQLitePath)
		if err != nil {
			return formatter.Error(ExitCommandError, "failed to open snapshot store", err)
		}
		defer store.Close()
		ctrlOpts = append(ctrlOpts, controller.WithSnapshotStore(store))
	}

	sim, err := newSimulation(scheme, ctrlOpts, orc)
	if err != nil {
		return formatter.Error(ExitFailure, "failed to create parties", err)
	}
	sim.report = SimulationReport{
		EventID:  input.ContractInfo.Oracle.EventID,
		Scheme:   scheme.Name(),
		Strategy: strategy.Name(),
		Outcomes: int(space.Size()),
		Phases:   []PhaseTiming{},
	}

	phases := []struct {
		name string
		run  func(context.Context) error
	}{
		{"load contract", sim.loadContract(input)},
		{"init storage", sim.initStorage},
		{"exchange", sim.exchange},
		{"verify adaptors", sim.verifyAdaptors},
		{"update adaptors", sim.updateAdaptors},
		{"wait attestation", sim.waitAttestation},
		{"finalize", sim.finalize},
	}

	started := time.Now()
	for _, p := range phases {
		start := time.Now()
		if err := p.run(ctx); err != nil {
			slog.WithFields(slog.M{"phase": p.name, "error": err.Error()}).Error("settlement failed")
			return formatter.Error(ExitFailure, p.name+" failed", err)
		}
		elapsed := time.Since(start)
		slog.WithFields(slog.M{"phase": p.name, "duration": elapsed.String()}).Info("phase completed")
		sim.report.Phases = append(sim.report.Phases, PhaseTiming{Name: p.name, Duration: elapsed.String()})
	}
	slog.WithFields(slog.M{"duration": time.Since(started).String()}).Info("settlement completed")

	return formatter.Success(sim.report)
}

// simulation holds both parties of one settlement.
type simulation struct {
	scheme   adaptor.Scheme
	offerer  *controller.Controller
	accepter *controller.Controller
	report   SimulationReport
}

func newSimulation(scheme adaptor.Scheme, opts []controller.Option, orc oracle.Oracle) (*simulation, error) {
	offerer, err := controller.New(controller.Offerer, orc, opts...)
	if err != nil {
		return nil, err
	}
	accepter, err := controller.New(controller.Accepter, orc, opts...)
	if err != nil {
		return nil, err
	}
	return &simulation{scheme: scheme, offerer: offerer, accepter: accepter}, nil
}

func (s *simulation) parties() []*controller.Controller {
	return []*controller.Controller{s.offerer, s.accepter}
}

// both runs fn for each party concurrently. Each goroutine owns one controller.
func (s *simulation) both(ctx context.Context, fn func(context.Context, *controller.Controller) error) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range s.parties() {
		g.Go(func() error {
			if err := fn(gctx, c); err != nil {
				return fmt.Errorf("%s: %w", c.Role(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (s *simulation) loadContract(input contract.ContractInput) func(context.Context) error {
	return func(context.Context) error {
		for _, c := range s.parties() {
			if err := c.LoadContract(input); err != nil {
				return fmt.Errorf("%s: %w", c.Role(), err)
			}
		}
		return nil
	}
}

func (s *simulation) initStorage(ctx context.Context) error {
	return s.both(ctx, func(ctx context.Context, c *controller.Controller) error {
		return c.InitStorage(ctx)
	})
}

func (s *simulation) exchange(context.Context) error {
	if err := handOver(s.offerer, s.accepter); err != nil {
		return err
	}
	return handOver(s.accepter, s.offerer)
}

// handOver passes the verification key and adaptors of from to its counterparty.
func handOver(from, to *controller.Controller) error {
	key, err := from.ShareVerificationKey()
	if err != nil {
		return fmt.Errorf("%s: %w", from.Role(), err)
	}
	adaptors, err := from.ShareAdaptors()
	if err != nil {
		return fmt.Errorf("%s: %w", from.Role(), err)
	}
	if err := to.SaveCPVerificationKey(key); err != nil {
		return fmt.Errorf("%s: %w", to.Role(), err)
	}
	if err := to.SaveCPAdaptors(adaptors); err != nil {
		return fmt.Errorf("%s: %w", to.Role(), err)
	}
	return nil
}

func (s *simulation) verifyAdaptors(ctx context.Context) error {
	return s.both(ctx, func(ctx context.Context, c *controller.Controller) error {
		ok, err := c.VerifyCPAdaptors(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAdaptorsRejected
		}
		return nil
	})
}

func (s *simulation) updateAdaptors(ctx context.Context) error {
	return s.both(ctx, func(ctx context.Context, c *controller.Controller) error {
		return c.UpdateCPAdaptors(ctx)
	})
}

func (s *simulation) waitAttestation(ctx context.Context) error {
	return s.both(ctx, func(ctx context.Context, c *controller.Controller) error {
		return c.WaitAttestation(ctx)
	})
}

func (s *simulation) finalize(context.Context) error {
	fund, err := s.offerer.FundAddress()
	if err != nil {
		return err
	}

	var payouts []controller.Payout
	verified := true
	for _, c := range s.parties() {
		tx, err := c.FinalizeTx()
		if err != nil {
			return fmt.Errorf("%s: %w", c.Role(), err)
		}
		verified = verified && fund.Verify(s.scheme, tx)

		payout, err := c.Payout()
		if err != nil {
			return fmt.Errorf("%s: %w", c.Role(), err)
		}
		payouts = append(payouts, payout)
	}

	if !verified {
		return ErrInvalidSignature
	}
	o, a := payouts[0], payouts[1]
	if o.Outcome != a.Outcome || o.Offerer != a.Offerer || o.Accepter != a.Accepter {
		return fmt.Errorf("%w: %s, %s", ErrPayoutMismatch, o, a)
	}

	s.report.Verified = verified
	s.report.Outcome = uint32(o.Outcome)
	s.report.OffererPayout = o.Offerer
	s.report.AccepterPayout = o.Accepter
	s.report.payout = o
	return nil
}
