package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gamelore/gamelore/internal/app"
	"github.com/gamelore/gamelore/internal/knowledge"
)

var (
	searchTypes []string
	searchLimit int
)

var searchCmd = &cobra.Command{
	Use:   "search <game> <query>",
	Short: "Search a game's stored knowledge",
	Long: `Search embeds the query and returns the stored chunks nearest to it,
ranked by distance (lower is closer).

Requires GEMINI_API_KEY (or GOOGLE_API_KEY) in the environment.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVar(&searchTypes, "types", nil,
		"content types to search (wiki, youtube, forum); default all")
	searchCmd.Flags().IntVar(&searchLimit, "limit", knowledge.DefaultSearchLimit,
		"maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	game := args[0]
	query := strings.Join(args[1:], " ")

	a, err := app.New(cmd.Context(), newLogger())
	if err != nil {
		return err
	}

	hits := a.Knowledge.Search(cmd.Context(), game, query, searchTypes, searchLimit)
	if len(hits) == 0 {
		fmt.Println("No results.")
		return nil
	}

	for i, hit := range hits {
		fmt.Printf("%d. [%s] distance=%.4f\n", i+1, hit.ContentType, hit.Distance)
		if title := hit.Metadata["title"]; title != "" {
			fmt.Printf("   %s\n", title)
		}
		if url := hit.Metadata["url"]; url != "" {
			fmt.Printf("   %s\n", url)
		}
		fmt.Printf("   %s\n\n", hit.Content)
	}
	return nil
}
