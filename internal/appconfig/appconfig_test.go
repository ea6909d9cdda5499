package appconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.Equal(t, 300.0, cfg.Render.DPI)
	assert.Equal(t, uint64(0), cfg.Render.Seed)
	assert.Equal(t, 8, cfg.Render.Concurrency)
	assert.Empty(t, cfg.Assets.BaseDir)
}

func TestLoadPriority(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bingo.toml")
	require.NoError(t, os.WriteFile(file, []byte(`
[render]
dpi = 150
seed = 11
concurrency = 2

[assets]
base_dir = "/srv/images"
`), 0o644))

	t.Setenv("BINGO_RENDER_SEED", "99")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	RegisterFlags(flags)
	require.NoError(t, flags.Parse([]string{"--concurrency", "4"}))

	cfg, err := Load(file, flags)
	require.NoError(t, err)

	assert.Equal(t, 150.0, cfg.Render.DPI, "file beats default")
	assert.Equal(t, uint64(99), cfg.Render.Seed, "env beats file")
	assert.Equal(t, 4, cfg.Render.Concurrency, "flag beats file")
	assert.Equal(t, "/srv/images", cfg.Assets.BaseDir)
	assert.Equal(t, "info", cfg.Log.Level, "unset flag keeps default")
}

func TestLoadDiscoversFileInWorkingDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bingo.toml"), []byte("[log]\nlevel = \"debug\"\n"), 0o644))
	t.Chdir(dir)

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadExplicitFileMustExist(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"), nil)
	assert.Error(t, err)
}

func TestLoadValidates(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BINGO_RENDER_DPI", "-1")
	t.Setenv("BINGO_RENDER_CONCURRENCY", "0")

	_, err := Load("", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "render.dpi")
	assert.Contains(t, err.Error(), "render.concurrency")
}
