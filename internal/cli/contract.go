package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/4chain-ag/go-dlc-settlement/pkg/core/contract"
	"github.com/4chain-ag/go-dlc-settlement/pkg/core/outcome"
	"github.com/spf13/cobra"
)

// PayoutRange is a run of consecutive outcomes sharing one payout.
type PayoutRange struct {
	From     uint32 `json:"from"`
	To       uint32 `json:"to"`
	Accepter uint64 `json:"accepter"`
	Offerer  uint64 `json:"offerer"`
}

// ContractReport summarizes a parsed contract.
type ContractReport struct {
	EventID          string        `json:"eventId"`
	OraclePublicKey  string        `json:"oraclePublicKey,omitempty"`
	NbDigits         uint8         `json:"nbDigits"`
	Outcomes         uint64        `json:"outcomes"`
	OfferCollateral  uint64        `json:"offerCollateral"`
	AcceptCollateral uint64        `json:"acceptCollateral"`
	TotalCollateral  uint64        `json:"totalCollateral"`
	FeeRate          uint64        `json:"feeRate"`
	Payouts          []PayoutRange `json:"payouts"`
}

func (r ContractReport) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Event:\t%s\n", r.EventID)
	if r.OraclePublicKey != "" {
		fmt.Fprintf(tw, "Oracle key:\t%s\n", r.OraclePublicKey)
	}
	fmt.Fprintf(tw, "Outcome digits:\t%d (%d outcomes)\n", r.NbDigits, r.Outcomes)
	fmt.Fprintf(tw, "Offer collateral:\t%d sats\n", r.OfferCollateral)
	fmt.Fprintf(tw, "Accept collateral:\t%d sats\n", r.AcceptCollateral)
	fmt.Fprintf(tw, "Total collateral:\t%d sats\n", r.TotalCollateral)
	fmt.Fprintf(tw, "Fee rate:\t%d sats/vbyte\n", r.FeeRate)
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "FROM\tTO\tACCEPTER\tOFFERER\t")
	for _, p := range r.Payouts {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t\n", p.From, p.To, p.Accepter, p.Offerer)
	}
	return tw.Flush()
}

// NewContractCommand groups the commands working on contract offers.
func NewContractCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contract",
		Short: "Inspect contract offers",
	}
	cmd.AddCommand(newContractInspectCommand(rootOpts))
	return cmd
}

func newContractInspectCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [contract-file]",
		Short: "Validate a contract and print its payout table",
		Long: `Validate a contract offer against its outcome space and print the
flattened payout table, merging consecutive outcomes with equal payouts.
Without an argument the contract path from the configuration is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := rootOpts.Config.Contract.Path
			if len(args) == 1 {
				path = args[0]
			}
			return runContractInspect(rootOpts, path, cmd)
		},
	}
}

func runContractInspect(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}

	input, err := contract.ReadInput(path)
	if err != nil {
		return formatter.Error(ExitCommandError, "failed to read contract", err)
	}

	space, err := contractSpace(opts.Config.Contract.NbDigits, input)
	if err != nil {
		return formatter.Error(ExitCommandError, "invalid outcome space", err)
	}

	parsed, err := contract.ParseContractInput(input, space)
	if err != nil {
		return formatter.Error(ExitFailure, "contract is invalid", err)
	}

	return formatter.Success(newContractReport(input, space, parsed))
}

// contractSpace returns the configured space or, when none is configured, the
// space the contract declares.
func contractSpace(nbDigits uint8, input contract.ContractInput) (outcome.Space, error) {
	if nbDigits == 0 {
		nbDigits = input.ContractInfo.Oracle.NbDigits
	}
	return outcome.NewSpace(nbDigits)
}

func newContractReport(input contract.ContractInput, space outcome.Space, parsed contract.ParsedContract) ContractReport {
	total := input.TotalCollateral()
	report := ContractReport{
		EventID:          input.ContractInfo.Oracle.EventID,
		OraclePublicKey:  input.ContractInfo.Oracle.PublicKey,
		NbDigits:         space.NbDigits,
		Outcomes:         space.Size(),
		OfferCollateral:  input.OfferCollateral,
		AcceptCollateral: input.AcceptCollateral,
		TotalCollateral:  total,
		FeeRate:          input.FeeRate,
		Payouts:          []PayoutRange{},
	}

	for start := 0; start < len(parsed); {
		end := start
		for end+1 < len(parsed) && parsed[end+1].Payout == parsed[start].Payout {
			end++
		}
		report.Payouts = append(report.Payouts, PayoutRange{
			From:     uint32(parsed[start].Outcome),
			To:       uint32(parsed[end].Outcome),
			Accepter: parsed[start].Payout,
			Offerer:  total - parsed[start].Payout,
		})
		start = end + 1
	}
	return report
}
