package cmd

import "testing"

func TestSubcommandsRegistered(t *testing.T) {
	want := []string{"ingest", "search", "stats", "games", "delete", "validate", "version"}

	registered := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		registered[c.Name()] = true
	}

	for _, name := range want {
		if !registered[name] {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRootCommandName(t *testing.T) {
	if rootCmd.Use != "gamelore" {
		t.Errorf("root command Use = %q", rootCmd.Use)
	}
}
