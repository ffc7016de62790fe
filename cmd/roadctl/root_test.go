package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Subcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"migrate", "seed-city", "import-osm"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestMigrateCmd_HasUp(t *testing.T) {
	c, _, err := rootCmd.Find([]string{"migrate", "up"})
	require.NoError(t, err)
	assert.Equal(t, "up", c.Name())
}

func TestImportOSMCmd_Flags(t *testing.T) {
	f := importOSMCmd.Flags()
	for _, name := range []string{"file", "city", "batch-size", "parallelism", "highways"} {
		assert.NotNil(t, f.Lookup(name), "missing flag %s", name)
	}
	assert.Equal(t, "500", f.Lookup("batch-size").DefValue)
}

func TestParseHighways(t *testing.T) {
	assert.Nil(t, parseHighways(""))
	assert.Equal(t, []string{"primary", "residential"}, parseHighways(" primary, ,residential "))
}
