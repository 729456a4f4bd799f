package cli

import (
	"fmt"

	"github.com/codenav/navcore/internal/daemon/client"
	"github.com/spf13/cobra"
)

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the navigator daemon for this project",
	RunE:  runDaemonStop,
}

func init() {
	daemonCmd.AddCommand(daemonStopCmd)
}

func runDaemonStop(cmd *cobra.Command, args []string) error {
	proj, err := resolveProject()
	if err != nil {
		return err
	}

	meta, err := client.ReadMetadata(codeFinderDir(proj.cfg), proj.hash)
	if err != nil {
		fmt.Println("navd: not running")
		return nil
	}

	if err := client.RequestShutdown(meta.PID); err != nil {
		return fmt.Errorf("stopping daemon (pid %d): %w", meta.PID, err)
	}
	fmt.Printf("navd: stop signal sent to pid %d\n", meta.PID)
	return nil
}
