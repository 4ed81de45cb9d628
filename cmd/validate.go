package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gamelore/gamelore/internal/app"
)

var validateCmd = &cobra.Command{
	Use:   "validate <game>",
	Short: "Check a game's manifest without fetching anything",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	game := args[0]

	a, err := app.NewOffline(newLogger())
	if err != nil {
		return err
	}

	ok, problems := a.Knowledge.ValidateManifest(game)
	if ok {
		fmt.Printf("Manifest for %q is valid\n", game)
		return nil
	}

	fmt.Printf("Manifest for %q has problems:\n", game)
	for _, problem := range problems {
		fmt.Printf("  - %s\n", problem)
	}
	return fmt.Errorf("invalid manifest for %q", game)
}
