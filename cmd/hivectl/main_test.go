package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHiveRequiresHiveURI(t *testing.T) {
	orig := cfgFile
	cfgFile = ""
	defer func() { cfgFile = orig }()

	_, err := loadHive()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hive_uri")
}

func TestRootCommandHasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["status"])
	assert.True(t, names["dimensions"])
	assert.True(t, names["nodes"])
}
