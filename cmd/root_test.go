package main

import (
	"strings"
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
	expected := []string{"parse", "classify", "authors", "repetitions", "export", "migrate", "serve", "stats", "runs"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "turkology-cli", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
}

func TestParseCommand_Flags(t *testing.T) {
	for _, name := range []string{"out", "formats", "no-store", "no-authors", "no-repetitions", "concurrency"} {
		assert.NotNil(t, parseCmd.Flags().Lookup(name), "parse should have --%s flag", name)
	}
}

func TestParseCommand_LongDescribesPassOrder(t *testing.T) {
	authors := strings.Index(parseCmd.Long, "reinforces known authors")
	repetitions := strings.Index(parseCmd.Long, "links repetitions")
	require.NotEqual(t, -1, authors)
	require.NotEqual(t, -1, repetitions)
	assert.Less(t, authors, repetitions)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestRunsCommand_HasSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range runsCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["list"])
	assert.True(t, names["show"])
}

func TestClassifyCommand_Args(t *testing.T) {
	assert.Error(t, classifyCmd.Args(classifyCmd, nil))
	assert.NoError(t, classifyCmd.Args(classifyCmd, []string{"TA06_x.xml"}))
}
