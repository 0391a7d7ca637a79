package main

import (
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/noah-isme/tour-inventory/internal/analytics"
	"github.com/noah-isme/tour-inventory/internal/fixture"
	"github.com/noah-isme/tour-inventory/internal/pricing"
)

type options struct {
	snapshot string
	currency string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "quotectl",
		Short: "Price quotes and inspect allocation pools against a catalog file",
		Long: `quotectl evaluates the pricing engine and pool profit reports against a
YAML catalog file, without a database or Redis.

Examples:
  quotectl quote --snapshot catalog.yaml --offer offer-athens --rate rate-athens-adult --qty 2 --channel b2b
  quotectl pool --snapshot catalog.yaml pool-athens
  quotectl pool --snapshot catalog.yaml --all
  quotectl cheapest --snapshot catalog.yaml pool-athens`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&opts.snapshot, "snapshot", "s", "", "catalog YAML file")
	root.PersistentFlags().StringVar(&opts.currency, "currency", pricing.DefaultCurrency, "currency used when a rate has none")
	_ = root.MarkPersistentFlagRequired("snapshot")

	root.AddCommand(newQuoteCmd(opts), newPoolCmd(opts), newCheapestCmd(opts))
	return root
}

func newQuoteCmd(opts *options) *cobra.Command {
	var req pricing.Request
	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Compute the price of an offer and rate for a channel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := fixture.LoadFile(opts.snapshot)
			if err != nil {
				return err
			}
			resp, err := pricing.NewEngine(opts.currency).ComputePrice(snap, req)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), resp)
		},
	}
	cmd.Flags().StringVar(&req.OfferID, "offer", "", "offer id")
	cmd.Flags().StringVar(&req.RateID, "rate", "", "rate id")
	cmd.Flags().IntVarP(&req.Quantity, "qty", "q", 1, "requested quantity")
	cmd.Flags().StringVarP(&req.Channel, "channel", "c", "", "sell channel")
	_ = cmd.MarkFlagRequired("offer")
	_ = cmd.MarkFlagRequired("rate")
	return cmd
}

func newPoolCmd(opts *options) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "pool [poolId]",
		Short: "Report cost, revenue and profit of an allocation pool",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := fixture.LoadFile(opts.snapshot)
			if err != nil {
				return err
			}
			if all {
				return writeJSON(cmd.OutOrStdout(), analytics.AllPoolProfits(snap))
			}
			if len(args) == 0 {
				return errors.New("pool id required unless --all is set")
			}
			summary, ok := analytics.PoolProfit(args[0], snap.Allocations(), snap.Contracts(), snap.Rates(), snap.PoolCapacities())
			if !ok {
				return fmt.Errorf("pool %q not found", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), summary)
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "report every pool")
	return cmd
}

func newCheapestCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "cheapest <poolId>",
		Short: "Find the lowest-cost supplier contracted into a pool",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := fixture.LoadFile(opts.snapshot)
			if err != nil {
				return err
			}
			choice, ok := analytics.CheapestSupplierForPool(args[0], snap.Allocations(), snap.Contracts())
			if !ok {
				return fmt.Errorf("pool %q has no allocations", args[0])
			}
			return writeJSON(cmd.OutOrStdout(), choice)
		},
	}
}

func writeJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
