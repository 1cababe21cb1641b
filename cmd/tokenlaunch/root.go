// Copyright (C) 2025 Creditor Corp. Group.
// See LICENSE for copying information.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/blocto/solana-go-sdk/common"
	"github.com/blocto/solana-go-sdk/rpc"
	"github.com/blocto/solana-go-sdk/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/BoostyLabs/tokenlaunch/internal/config"
	"github.com/BoostyLabs/tokenlaunch/internal/logger"
	"github.com/BoostyLabs/tokenlaunch/internal/metrics"
	"github.com/BoostyLabs/tokenlaunch/solana/fee"
	"github.com/BoostyLabs/tokenlaunch/solana/issuance"
	"github.com/BoostyLabs/tokenlaunch/solana/rpcclient"
	"github.com/BoostyLabs/tokenlaunch/solana/signer"
	"github.com/BoostyLabs/tokenlaunch/solana/txbuilder"
)

const appName = "tokenlaunch"

// app holds state shared by subcommands, filled by root pre-run.
type app struct {
	configPath string
	config     *config.Config
	log        *logrus.Logger
}

// NewRootCmd creates a new root command for tokenlaunch.
func NewRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Create SPL tokens with optional authority revocation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./tokenlaunch.yaml)")

	rootCmd.AddCommand(
		quoteCmd(a),
		createCmd(a),
		infoCmd(a),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	a.config, a.log = cfg, log

	return nil
}

func (a *app) client() *rpcclient.Client {
	return rpcclient.NewFromEndpoint(a.config.RPCEndpoint, rpcclient.Config{
		Commitment:     rpc.Commitment(a.config.Commitment),
		ConfirmTimeout: a.config.ConfirmTimeout,
		PollInterval:   a.config.PollInterval,
	}, a.log)
}

func quoteCmd(a *app) *cobra.Command {
	var flags fee.Flags

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Print service fee for token options",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schedule, err := a.config.Schedule()
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), schedule.Quote(flags).String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&flags.RevokeFreeze, "revoke-freeze", false, "never grant freeze authority")
	cmd.Flags().BoolVar(&flags.RevokeMint, "revoke-mint", false, "revoke mint authority after minting")

	return cmd
}

func createCmd(a *app) *cobra.Command {
	var (
		req         issuance.TokenCreationRequest
		keypairPath string
		dryRun      bool
		yes         bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Pay service fee and create token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if keypairPath == "" {
				keypairPath = a.config.KeypairPath
			}

			approve := signer.ApproveAll
			if !yes {
				approve = prompt(cmd.InOrStdin(), cmd.OutOrStdout())
			}

			wallet, err := signer.NewSignerFromKeypairFile(keypairPath, approve)
			if err != nil {
				return err
			}

			recipient, err := a.config.FeeRecipientKey()
			if err != nil {
				return err
			}

			schedule, err := a.config.Schedule()
			if err != nil {
				return err
			}

			registry := prometheus.NewRegistry()
			m, err := metrics.NewIssuance(registry)
			if err != nil {
				return err
			}
			defer a.logMetrics(registry)

			issuer := issuance.NewIssuer(a.client(), txbuilder.NewTxBuilder(recipient, a.config.MintAccountSize),
				issuance.WithSchedule(schedule),
				issuance.WithLogger(a.log),
				issuance.WithMetrics(m),
			)

			out := cmd.OutOrStdout()
			if dryRun {
				plan, err := issuer.Plan(cmd.Context(), wallet, req)
				if err != nil {
					return err
				}

				printPlan(out, plan)
				return nil
			}

			result, err := issuer.CreateToken(cmd.Context(), wallet, req)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "token:        %s\n", result.TokenAddress)
			fmt.Fprintf(out, "metadata:     %s\n", result.MetadataAddress)
			fmt.Fprintf(out, "holding:      %s\n", result.HoldingAddress)
			fmt.Fprintf(out, "minted:       %d\n", result.MintedAmount)
			fmt.Fprintf(out, "fee:          %s (%s)\n", result.FeeCharged, result.FeeTransactionID)
			fmt.Fprintf(out, "transaction:  %s\n", result.TransactionID)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&req.Name, "name", "", "token name")
	flags.StringVar(&req.Symbol, "symbol", "", "token symbol")
	flags.Uint8Var(&req.Decimals, "decimals", 9, "token decimals")
	flags.Uint64Var(&req.Supply, "supply", 0, "initial supply in whole tokens")
	flags.StringVar(&req.URI, "uri", "", "metadata uri")
	flags.StringVar(&req.Description, "description", "", "token description")
	flags.StringVar(&req.Creator, "creator", "", "creator name")
	flags.StringVar(&req.Website, "website", "", "project website")
	flags.StringVar(&req.Telegram, "telegram", "", "telegram handle")
	flags.StringVar(&req.Twitter, "twitter", "", "twitter handle")
	flags.BoolVar(&req.RevokeFreeze, "revoke-freeze", false, "never grant freeze authority")
	flags.BoolVar(&req.RevokeMint, "revoke-mint", false, "revoke mint authority after minting")
	flags.StringVar(&keypairPath, "keypair", "", "wallet keypair file (default from config)")
	flags.BoolVar(&dryRun, "dry-run", false, "print cost without submitting transactions")
	flags.BoolVarP(&yes, "yes", "y", false, "sign without confirmation")

	return cmd
}

func infoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <mint>",
		Short: "Print on-chain state of a mint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := parseAddress(args[0])
			if err != nil {
				return err
			}

			info, err := a.client().GetMint(cmd.Context(), mint)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mint:             %s\n", info.Address.ToBase58())
			fmt.Fprintf(out, "decimals:         %d\n", info.Decimals)
			fmt.Fprintf(out, "supply:           %d\n", info.Supply)
			fmt.Fprintf(out, "mint authority:   %s\n", authority(info.MintAuthority))
			fmt.Fprintf(out, "freeze authority: %s\n", authority(info.FreezeAuthority))
			return nil
		},
	}
}

// logMetrics logs issuance counters collected during the command.
func (a *app) logMetrics(gatherer prometheus.Gatherer) {
	values, err := metrics.Snapshot(gatherer)
	if err != nil {
		a.log.WithError(err).Warn("could not gather issuance metrics")
		return
	}

	fields := make(logrus.Fields, len(values))
	for key, value := range values {
		fields[key] = value
	}
	a.log.WithFields(fields).Info("issuance metrics")
}

func printPlan(out io.Writer, plan *issuance.Plan) {
	fmt.Fprintf(out, "payer:          %s\n", plan.Payer.ToBase58())
	fmt.Fprintf(out, "service fee:    %s\n", plan.Fee)
	fmt.Fprintf(out, "mint rent:      %s\n", fee.Lamports(plan.Cost.MintRent))
	fmt.Fprintf(out, "holding rent:   %s\n", fee.Lamports(plan.Cost.HoldingRent))
	fmt.Fprintf(out, "metadata rent:  %s\n", fee.Lamports(plan.Cost.MetadataRent))
	fmt.Fprintf(out, "network fee:    %s\n", fee.Lamports(plan.Cost.NetworkFee))
	fmt.Fprintf(out, "required:       %s\n", fee.Lamports(plan.Required))
	fmt.Fprintf(out, "available:      %s\n", fee.Lamports(plan.Available))
	if !plan.Sufficient {
		fmt.Fprintf(out, "shortfall:      %s\n", fee.Lamports(plan.Required-plan.Available))
	}
}

// prompt asks for confirmation before every signature.
func prompt(in io.Reader, out io.Writer) signer.ApproveFunc {
	reader := bufio.NewReader(in)

	return func(tx types.Transaction) bool {
		fmt.Fprintf(out, "Sign transaction with %d instruction(s)? [y/N] ", len(tx.Message.Instructions))

		answer, err := reader.ReadString('\n')
		if err != nil && answer == "" {
			return false
		}

		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
}

func parseAddress(address string) (common.PublicKey, error) {
	key := common.PublicKeyFromString(address)
	if key.ToBase58() != address {
		return common.PublicKey{}, fmt.Errorf("invalid address %q", address)
	}

	return key, nil
}

func authority(key *common.PublicKey) string {
	if key == nil {
		return "none"
	}

	return key.ToBase58()
}
