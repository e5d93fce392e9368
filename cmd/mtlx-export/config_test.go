package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atlas-foundry/mtlx-go-sdk/mtlx"
)

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "none.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mtlx-export.toml")
	require.NoError(t, os.WriteFile(path, []byte("[export]\nindent = \"  \"\n[serve]\naddr = \"127.0.0.1:9000\"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "  ", cfg.Export.Indent)
	assert.True(t, cfg.Export.Header, "header keeps its default")
	assert.Equal(t, "127.0.0.1:9000", cfg.Serve.Addr)
	assert.Equal(t, "8M", cfg.Serve.BodyLimit)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mtlx-export.toml")
	require.NoError(t, os.WriteFile(path, []byte("[export]\nonly_selcted = true\n"), 0o644))
	_, err := LoadConfig(path)
	assert.ErrorContains(t, err, "export.only_selcted")

	require.NoError(t, os.WriteFile(path, []byte("[export\n"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestExportOptionsFromConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Export.Indent = ""
	cfg.Export.Version = "1.0"
	opts := cfg.ExportOptions(nil)
	assert.Equal(t, mtlx.DefaultIndent, opts.Encode.Indent)
	assert.True(t, opts.Encode.IncludeHeader)
	assert.Equal(t, "1.0", opts.Version)
}

func TestParseLevel(t *testing.T) {
	lvl, err := parseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)

	_, err = parseLevel("loud")
	assert.Error(t, err)

	_, _, err = run(t, "--log-level", "loud", "version")
	assert.Error(t, err)
}
