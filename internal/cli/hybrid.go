package cli

import (
	"context"
	"fmt"

	"github.com/codenav/navcore/internal/daemon/transport"
	"github.com/codenav/navcore/internal/retrieval"
	"github.com/spf13/cobra"
)

var hybridSearchCmd = &cobra.Command{
	Use:   "hr-search <query>",
	Short: "Run a hybrid lexical+semantic retrieval query",
	Long: `hr-search fuses a fuzzy lexical search over indexed chunks with a
semantic vector search, returning the fused and optionally reranked
result list from the Hybrid Retrieval Pipeline.`,
	Args: cobra.ExactArgs(1),
	RunE: runHybridSearch,
}

func init() {
	rootCmd.AddCommand(hybridSearchCmd)
}

func runHybridSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c, _, err := dialDaemon(ctx)
	if err != nil {
		return err
	}

	req := transport.HybridSearchRequest{Query: args[0]}
	var results retrieval.SearchResults
	if err := c.Do(ctx, "/v1/hr/search", req, &results); err != nil {
		return fmt.Errorf("hybrid search: %w", err)
	}

	if jsonFlag {
		return printJSON(results)
	}
	return printHybridResults(results)
}

func printHybridResults(results retrieval.SearchResults) error {
	if len(results.Degraded) > 0 {
		fmt.Printf("degraded stages: %v\n", results.Degraded)
	}
	if len(results.Results) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, r := range results.Results {
		loc := r.Chunk.Path
		if r.Chunk.Symbol != "" {
			loc = fmt.Sprintf("%s (%s)", loc, r.Chunk.Symbol)
		}
		fmt.Printf("%-6.3f %s:%d-%d\n", r.Score, loc, r.Chunk.StartLine, r.Chunk.EndLine)
	}
	return nil
}
