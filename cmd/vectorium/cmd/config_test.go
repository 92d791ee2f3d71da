package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorium/vectorium/internal/config"
)

func runConfigInit(t *testing.T, args ...string) error {
	t.Helper()
	root := NewRootCmd()
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))
	root.SetArgs(append([]string{"config", "init"}, args...))
	return root.Execute()
}

func TestConfigInitWritesTemplate(t *testing.T) {
	t.Chdir(t.TempDir())

	require.NoError(t, runConfigInit(t))

	data, err := os.ReadFile(config.DefaultConfigFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "endpoint: localhost:6334")

	// the template must itself be loadable
	cfg, err := config.Load(config.DefaultConfigFile)
	require.NoError(t, err)
	assert.Equal(t, "documents", cfg.Store.Collection)
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	t.Chdir(t.TempDir())
	require.NoError(t, os.WriteFile(config.DefaultConfigFile, []byte("store:\n  endpoint: custom:1\n"), 0o644))

	require.Error(t, runConfigInit(t))

	require.NoError(t, runConfigInit(t, "--force"))
	data, err := os.ReadFile(config.DefaultConfigFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "localhost:6334")
}
