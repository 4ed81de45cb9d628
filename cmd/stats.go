package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamelore/gamelore/internal/app"
	"github.com/gamelore/gamelore/internal/knowledge"
)

var statsCmd = &cobra.Command{
	Use:   "stats <game>",
	Short: "Show stored chunk counts for a game",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	game := args[0]

	a, err := app.NewOffline(newLogger())
	if err != nil {
		return err
	}

	stats := a.Knowledge.Stats(game)
	total := 0
	for _, contentType := range knowledge.ContentTypes() {
		fmt.Printf("%-8s %d\n", contentType, stats[contentType])
		total += stats[contentType]
	}
	fmt.Printf("%-8s %d\n", "total", total)
	return nil
}
