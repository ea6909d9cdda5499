package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ByLCY/bingo/card"
	"github.com/ByLCY/bingo/internal/appconfig"
	"github.com/ByLCY/bingo/layout"
)

func writeInputs(t *testing.T, dir string, n int, cfg layout.Config) (itemsPath, configPath string) {
	t.Helper()
	items := make([]card.Item, n)
	for i := range items {
		items[i] = card.NewItem(string(rune('A'+i)), "")
	}
	var buf bytes.Buffer
	require.NoError(t, card.EncodeItems(&buf, items))
	itemsPath = filepath.Join(dir, "items.json")
	require.NoError(t, os.WriteFile(itemsPath, buf.Bytes(), 0o644))

	buf.Reset()
	require.NoError(t, cfg.Encode(&buf))
	configPath = filepath.Join(dir, "layout.json")
	require.NoError(t, os.WriteFile(configPath, buf.Bytes(), 0o644))
	return itemsPath, configPath
}

func testSettings() *appconfig.Config {
	return &appconfig.Config{Render: appconfig.RenderConfig{DPI: 30, Seed: 5, Concurrency: 2}}
}

func TestRunWritesAllOutputs(t *testing.T) {
	dir := t.TempDir()
	cfg := layout.DefaultConfig()
	cfg.Table.Rows, cfg.Table.Columns = 1, 5
	itemsPath, configPath := writeInputs(t, dir, 5, cfg)

	opts := options{
		configPath:  configPath,
		itemsPath:   itemsPath,
		outPath:     filepath.Join(dir, "out", "cards.pdf"),
		previewPath: filepath.Join(dir, "out", "card.png"),
		debugPath:   filepath.Join(dir, "out", "geometry.json"),
		cards:       2,
	}
	require.NoError(t, run(context.Background(), opts, testSettings(), zap.NewNop()))

	pdf, err := os.ReadFile(opts.outPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))

	png, err := os.ReadFile(opts.previewPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	raw, err := os.ReadFile(opts.debugPath)
	require.NoError(t, err)
	var g layout.Geometry
	require.NoError(t, json.Unmarshal(raw, &g))
	assert.Len(t, g.Cells, 5)
}

func TestRunReportsInsufficientItems(t *testing.T) {
	dir := t.TempDir()
	cfg := layout.DefaultConfig()
	cfg.Table.Rows, cfg.Table.Columns = 2, 2
	itemsPath, configPath := writeInputs(t, dir, 3, cfg)

	err := run(context.Background(), options{
		configPath: configPath,
		itemsPath:  itemsPath,
		outPath:    filepath.Join(dir, "cards.pdf"),
	}, testSettings(), zap.NewNop())

	var insufficient *card.InsufficientItemsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 4, insufficient.Required)
	assert.NoFileExists(t, filepath.Join(dir, "cards.pdf"))
}

func TestRunRequiresAnOutput(t *testing.T) {
	err := run(context.Background(), options{itemsPath: "items.json"}, testSettings(), zap.NewNop())
	assert.Error(t, err)
}

func TestRunRejectsInvalidLayout(t *testing.T) {
	dir := t.TempDir()
	cfg := layout.DefaultConfig()
	cfg.Table.Rows = 0
	itemsPath, configPath := writeInputs(t, dir, 5, cfg)

	err := run(context.Background(), options{
		configPath: configPath,
		itemsPath:  itemsPath,
		outPath:    filepath.Join(dir, "cards.pdf"),
	}, testSettings(), zap.NewNop())
	assert.ErrorContains(t, err, "行数")
}
