package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/codenav/navcore/internal/daemon/transport"
	"github.com/spf13/cobra"
)

var snippetContextLines int

var snippetCmd = &cobra.Command{
	Use:   "snippet <symbol-id>",
	Short: "Print a context-expanded source snippet around a symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnippet,
}

func init() {
	rootCmd.AddCommand(snippetCmd)
	snippetCmd.Flags().IntVar(&snippetContextLines, "context", 5, "lines of context above and below the symbol")
}

func runSnippet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c, proj, err := dialDaemon(ctx)
	if err != nil {
		return err
	}

	req := transport.SnippetRequest{SymbolID: args[0], ContextLines: snippetContextLines}
	var resp transport.SnippetResponse
	if err := c.Do(ctx, "/v1/nav/snippet", req, &resp); err != nil {
		return fmt.Errorf("fetching snippet for %s: %w", args[0], err)
	}

	if jsonFlag {
		return printJSON(resp)
	}
	return printSnippetLines(proj.root, resp)
}

func printSnippetLines(root string, resp transport.SnippetResponse) error {
	path := resp.Path
	if !strings.HasPrefix(path, root) {
		path = root + string(os.PathSeparator) + path
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", resp.Path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		if line < resp.StartLine {
			continue
		}
		if line > resp.EndLine {
			break
		}
		fmt.Printf("%5d  %s\n", line, scanner.Text())
	}
	return scanner.Err()
}
