package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gzhole/faultcorpus/internal/fault"
)

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("", "", "")
	require.NoError(t, err)

	dir := filepath.Join(home, DefaultConfigDir)
	assert.Equal(t, dir, cfg.ConfigDir)
	assert.Equal(t, filepath.Join(dir, DefaultLogFile), cfg.LogPath)
	assert.Equal(t, filepath.Join(dir, DefaultCatalogFile), cfg.CatalogPath)
	assert.Equal(t, DefaultHeapLimit, cfg.HeapLimit)
	assert.Equal(t, fault.FormatText, cfg.Format)
	assert.Empty(t, cfg.ConfigPath)
	assert.True(t, cfg.DefaultCatalog())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), info.Mode().Perm())
}

func TestLoad_YAMLFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, DefaultConfigDir)
	require.NoError(t, os.MkdirAll(dir, 0700))
	data := "log_path: /tmp/custom.jsonl\nheap_limit: 1048576\nformat: yaml\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigYAML), []byte(data), 0600))

	cfg, err := Load("", "", "")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/custom.jsonl", cfg.LogPath)
	assert.Equal(t, uint64(1<<20), cfg.HeapLimit)
	assert.Equal(t, fault.FormatYAML, cfg.Format)
}

func TestLoad_TOMLFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "corpus.toml")
	data := "catalog_path = \"/srv/cases.yaml\"\nformat = \"msgpack\"\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := Load(path, "", "")
	require.NoError(t, err)
	assert.Equal(t, path, cfg.ConfigPath)
	assert.Equal(t, "/srv/cases.yaml", cfg.CatalogPath)
	assert.Equal(t, fault.FormatMsgpack, cfg.Format)
	assert.Equal(t, DefaultHeapLimit, cfg.HeapLimit)
}

func TestLoad_FlagsOverrideFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_path: /from/file.jsonl\n"), 0600))

	cfg, err := Load(path, "/from/flag.jsonl", "/from/flag.yaml")
	require.NoError(t, err)
	assert.Equal(t, "/from/flag.jsonl", cfg.LogPath)
	assert.Equal(t, "/from/flag.yaml", cfg.CatalogPath)
	assert.False(t, cfg.DefaultCatalog())
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"), "", "")
	assert.Error(t, err, "explicit config file must exist")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("format: xml\n"), 0600))
	_, err = Load(bad, "", "")
	assert.ErrorIs(t, err, fault.ErrUnknownFormat)

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("format = \n"), 0600))
	_, err = Load(broken, "", "")
	assert.Error(t, err)
}
