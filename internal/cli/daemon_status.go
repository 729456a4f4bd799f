package cli

import (
	"context"
	"fmt"

	"github.com/codenav/navcore/internal/daemon/transport"
	"github.com/spf13/cobra"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Inspect or stop the navigator daemon for this project",
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether a daemon is running for this project",
	RunE:  runDaemonStatus,
}

func init() {
	rootCmd.AddCommand(daemonCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
}

func runDaemonStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c, proj, err := peekDaemon(ctx)
	if err != nil {
		if jsonFlag {
			return printJSON(map[string]interface{}{"running": false})
		}
		fmt.Println("navd: not running")
		return nil
	}

	var status transport.IndexStatus
	if err := c.Health(ctx, &status); err != nil {
		if jsonFlag {
			return printJSON(map[string]interface{}{"running": false})
		}
		fmt.Println("navd: not running")
		return nil
	}

	if jsonFlag {
		return printJSON(map[string]interface{}{
			"running": true,
			"root":    proj.root,
			"hash":    proj.hash,
			"index":   status,
		})
	}
	fmt.Printf("navd: running for %s (project hash %s)\n", proj.root, proj.hash)
	fmt.Printf("  index: %s, %d symbols across %d files\n", status.State, status.Symbols, status.Files)
	if status.Notice != "" {
		fmt.Printf("  notice: %s\n", status.Notice)
	}
	return nil
}
