package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamelore/gamelore/internal/app"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <game>",
	Short: "Build the knowledge base for a game from its manifest",
	Long: `Ingest reads the game's CSV manifest, fetches and cleans the listed
wiki and forum pages, chunks the text, embeds the chunks, and stores them.
Previously ingested knowledge for the game is replaced.

Requires GEMINI_API_KEY (or GOOGLE_API_KEY) in the environment.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	game := args[0]

	a, err := app.New(cmd.Context(), newLogger())
	if err != nil {
		return err
	}

	if ok, problems := a.Knowledge.ValidateManifest(game); !ok {
		fmt.Printf("Manifest for %q is invalid:\n", game)
		for _, problem := range problems {
			fmt.Printf("  - %s\n", problem)
		}
		return fmt.Errorf("invalid manifest for %q", game)
	}

	fmt.Printf("Ingesting %q (this fetches every manifest URL and may take a while)...\n", game)
	if !a.Knowledge.Ingest(cmd.Context(), game) {
		return fmt.Errorf("ingestion failed for %q", game)
	}

	stats := a.Knowledge.Stats(game)
	fmt.Printf("Done. Stored chunks: wiki=%d youtube=%d forum=%d\n",
		stats["wiki"], stats["youtube"], stats["forum"])
	return nil
}
