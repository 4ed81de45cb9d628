package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamelore/gamelore/internal/app"
)

var deleteCmd = &cobra.Command{
	Use:   "delete <game>",
	Short: "Delete all stored knowledge for a game",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	game := args[0]

	a, err := app.NewOffline(newLogger())
	if err != nil {
		return err
	}

	if !a.Knowledge.DeleteGame(game) {
		return fmt.Errorf("deleting knowledge for %q failed", game)
	}
	fmt.Printf("Deleted stored knowledge for %q\n", game)
	return nil
}
