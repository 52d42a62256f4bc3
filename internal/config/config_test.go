package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/obsidian-net/classicd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitMissingFileKeepsDefaults(t *testing.T) {
	config.Keys = config.Config{Port: 1}
	config.Init(filepath.Join(t.TempDir(), "does-not-exist.json"))
	assert.Equal(t, 1, config.Keys.Port, "missing config file must not touch Keys")
}

func TestInitDecodesAndValidates(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"address": "127.0.0.1",
		"port": 25566,
		"serverName": "Test Server",
		"operatorsList": ["steve"],
		"gzipCompressionLevel": 9
	}`), 0o644))

	config.Init(path)
	assert.Equal(t, "127.0.0.1", config.Keys.Address)
	assert.Equal(t, 25566, config.Keys.Port)
	assert.True(t, config.Keys.IsOperator("steve"))
	assert.False(t, config.Keys.IsOperator("alex"))
}

func TestValidateRejectsOutOfRangeGzipLevel(t *testing.T) {
	err := config.Validate([]byte(`{"gzipCompressionLevel": 42}`))
	assert.Error(t, err)
}

func TestPolicyHelpers(t *testing.T) {
	c := &config.Config{
		DisabledBlocks:    []int{7},
		DisabledCommands:  []string{"fly"},
		BannedPlayers:     []string{"griefer"},
		BannedIPs:         []string{"1.2.3.4"},
		LiquidPlacementAllowed: false,
	}
	assert.True(t, c.IsBlockDisabled(7))
	assert.False(t, c.IsBlockDisabled(8))
	assert.True(t, c.IsCommandDisabled("fly"))
	assert.True(t, c.IsBanned("griefer"))
	assert.True(t, c.IsIPBanned("1.2.3.4"))
	assert.False(t, c.IsIPBanned("5.6.7.8"))
	assert.False(t, c.AllowLiquidPlacement())
}
