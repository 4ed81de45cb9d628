package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamelore/gamelore/internal/app"
)

var listManifests bool

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List games with stored knowledge",
	RunE:  runGames,
}

func init() {
	gamesCmd.Flags().BoolVar(&listManifests, "manifests", false,
		"list games with a manifest on disk instead of ingested games")
	rootCmd.AddCommand(gamesCmd)
}

func runGames(cmd *cobra.Command, args []string) error {
	a, err := app.NewOffline(newLogger())
	if err != nil {
		return err
	}

	var games []string
	if listManifests {
		games = a.Knowledge.AvailableManifests()
	} else {
		games = a.Knowledge.ListAvailableGames()
	}

	if len(games) == 0 {
		if listManifests {
			fmt.Printf("No manifests found in %s\n", a.Config.ManifestDir)
		} else {
			fmt.Println("No games ingested yet.")
		}
		return nil
	}

	for _, game := range games {
		fmt.Println(game)
	}
	return nil
}
