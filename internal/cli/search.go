package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/codenav/navcore/internal/daemon/transport"
	"github.com/spf13/cobra"
)

var (
	searchLimit     int
	searchWithRefs  bool
	searchRefsLimit int
	searchProfiles  []string
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the symbol index",
	Long: `Search scores symbols in the project's index against query, applying
any filters and profile bonuses the daemon's search engine supports.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().IntVar(&searchLimit, "limit", 20, "maximum hits to return")
	searchCmd.Flags().BoolVar(&searchWithRefs, "with-refs", false, "include textual references for each hit")
	searchCmd.Flags().IntVar(&searchRefsLimit, "refs-limit", 0, "maximum references per hit (0 = engine default)")
	searchCmd.Flags().StringSliceVar(&searchProfiles, "profile", nil, "scoring profiles to apply (balanced, focused, broad, symbols, files, tests, docs, deps, recent, references)")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	c, _, err := dialDaemon(ctx)
	if err != nil {
		return err
	}

	req := transport.SearchRequest{
		Query:     args[0],
		Limit:     searchLimit,
		WithRefs:  searchWithRefs,
		RefsLimit: searchRefsLimit,
		Profiles:  searchProfiles,
	}
	var resp transport.SearchResponse
	if err := c.Do(ctx, "/v1/nav/search", req, &resp); err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if jsonFlag {
		return printJSON(resp)
	}
	return printSearchHits(resp)
}

func printSearchHits(resp transport.SearchResponse) error {
	if resp.Index.State != "ready" {
		fmt.Printf("index is %s (%d symbols, %d files)\n", resp.Index.State, resp.Index.Symbols, resp.Index.Files)
	}
	if len(resp.Hits) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, hit := range resp.Hits {
		fmt.Printf("%-9s %s:%d  %s  (%.2f)\n", hit.Kind, hit.Path, hit.Line, hit.SymbolID, hit.Score)
		if hit.Preview != "" {
			fmt.Printf("    %s\n", hit.Preview)
		}
		for _, ref := range hit.References {
			fmt.Printf("    ref %s:%d  %s\n", ref.Path, ref.Line, ref.Preview)
		}
	}
	if resp.QueryID != "" {
		fmt.Printf("\nquery id: %s (pass it as a search request's refine field to narrow this result set)\n", resp.QueryID)
	}
	return nil
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
