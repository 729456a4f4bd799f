package cli

import (
	"context"
	"fmt"

	"github.com/codenav/navcore/internal/daemon/transport"
	"github.com/spf13/cobra"
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Force a full symbol index rebuild",
	Long: `Reindex asks the daemon to rebuild its symbol index from scratch,
which in turn triggers a hybrid retrieval rebuild once it completes.`,
	RunE: runReindex,
}

func init() {
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c, _, err := dialDaemon(ctx)
	if err != nil {
		return err
	}

	var status transport.IndexStatus
	if err := c.Do(ctx, "/v1/nav/reindex", struct{}{}, &status); err != nil {
		return fmt.Errorf("reindexing: %w", err)
	}

	if jsonFlag {
		return printJSON(status)
	}
	fmt.Printf("index %s: %d symbols across %d files\n", status.State, status.Symbols, status.Files)
	if status.Notice != "" {
		fmt.Printf("notice: %s\n", status.Notice)
	}
	return nil
}
