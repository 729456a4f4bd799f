package cli

import (
	"context"
	"fmt"

	"github.com/codenav/navcore/internal/daemon/transport"
	"github.com/spf13/cobra"
)

var openCmd = &cobra.Command{
	Use:   "open <symbol-id>",
	Short: "Print a symbol's owning file path",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpen,
}

func init() {
	rootCmd.AddCommand(openCmd)
}

func runOpen(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c, _, err := dialDaemon(ctx)
	if err != nil {
		return err
	}

	var resp transport.OpenResponse
	if err := c.Do(ctx, "/v1/nav/open", transport.OpenRequest{SymbolID: args[0]}, &resp); err != nil {
		return fmt.Errorf("opening %s: %w", args[0], err)
	}

	if jsonFlag {
		return printJSON(resp)
	}
	fmt.Println(resp.Path)
	return nil
}
