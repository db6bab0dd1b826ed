package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	httpDelivery "github.com/listinglens/backend/internal/delivery/http"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "listinglens %s\n", httpDelivery.Version)
		},
	}
}
