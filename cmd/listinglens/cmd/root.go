package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "listinglens",
		Short:        "ListingLens: match marketplace listings to catalog products",
		Long:         "Resolve noisy product listings against a catalog by manufacturer and model, then prune accessories and price outliers.",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", "", "config file (default: listinglens.yaml in ., ./config or /etc/listinglens/)")

	root.AddCommand(newResolveCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newVersionCmd())
	return root
}

// Execute runs the root command until done or interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCmd().ExecuteContext(ctx)
}
