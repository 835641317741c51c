package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"search", "locate", "catalog", "shell"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "locator", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestSearchCommand_Flags(t *testing.T) {
	for _, name := range []string{"radius", "sort", "use-location", "format"} {
		flag := searchCmd.Flags().Lookup(name)
		require.NotNil(t, flag, "search command should have --%s flag", name)
	}
	assert.Equal(t, "cards", searchCmd.Flags().Lookup("format").DefValue)
	assert.Equal(t, "false", searchCmd.Flags().Lookup("use-location").DefValue)
}

func TestShellCommand_Flags(t *testing.T) {
	flag := shellCmd.Flags().Lookup("format")
	require.NotNil(t, flag, "shell command should have --format flag")
	assert.Equal(t, "cards", flag.DefValue)
}
