package canvasrenderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ByLCY/bingo/card"
	"github.com/ByLCY/bingo/layout"
	"github.com/ByLCY/bingo/renderer"
)

func pool(n int) []card.Item {
	items := make([]card.Item, n)
	for i := range items {
		items[i] = card.NewItem(fmt.Sprintf("item %d", i+1), "")
	}
	return items
}

func smallConfig() layout.Config {
	cfg := layout.DefaultConfig()
	cfg.Table.Rows, cfg.Table.Columns = 3, 3
	cfg.Footer.Show = true
	cfg.Footer.Text = "${card.number} / ${card.total}"
	return cfg
}

func sources(pages []PageInfo) []renderer.Source {
	out := make([]renderer.Source, len(pages))
	for i, p := range pages {
		out[i] = p.Source
	}
	return out
}

// failOn 返回一个在指定卡片（从 1 开始）上失败的绘制函数，其余卡片正常绘制。
func failOn(number int, fail func() error) painter {
	return func(s layout.Surface, cfg layout.Config, inst card.Instance, images layout.ImageSet, vars layout.Vars) error {
		if vars.Number == number {
			return fail()
		}
		return paintVector(s, cfg, inst, images, vars)
	}
}

func TestBuildDocumentAllVector(t *testing.T) {
	r := New(Options{})
	res, err := r.BuildDocument(context.Background(), pool(12), smallConfig(), 3)
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(res.PDF, []byte("%PDF")))
	assert.Equal(t, []renderer.Source{renderer.SourceVector, renderer.SourceVector, renderer.SourceVector}, sources(res.Pages))
	for i, p := range res.Pages {
		assert.Equal(t, i, p.Index)
	}
}

func TestBuildDocumentFallsBackPerCard(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := New(Options{Logger: zap.New(core), FallbackDPI: 40})
	r.paint = failOn(2, func() error { return errors.New("synthetic vector failure") })

	res, err := r.BuildDocument(context.Background(), pool(12), smallConfig(), 3)
	require.NoError(t, err)
	assert.Equal(t, []renderer.Source{renderer.SourceVector, renderer.SourceRaster, renderer.SourceVector}, sources(res.Pages))

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.EqualValues(t, 1, warns[0].ContextMap()["card"])

	done := logs.FilterMessage("文档生成完成").All()
	require.Len(t, done, 1)
	assert.EqualValues(t, 3, done[0].ContextMap()["pages"])
	assert.EqualValues(t, 1, done[0].ContextMap()["raster"])
}

func TestBuildDocumentRecoversPanics(t *testing.T) {
	r := New(Options{FallbackDPI: 40})
	r.paint = failOn(1, func() error { panic("malformed geometry") })

	res, err := r.BuildDocument(context.Background(), pool(9), smallConfig(), 2)
	require.NoError(t, err)
	assert.Equal(t, []renderer.Source{renderer.SourceRaster, renderer.SourceVector}, sources(res.Pages))
}

func TestBuildDocumentPlaceholderWhenFallbackFails(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	// 分辨率过高，栅格表面无法创建
	r := New(Options{Logger: zap.New(core), FallbackDPI: 1e6})
	r.paint = failOn(1, func() error { return errors.New("unsupported font") })

	res, err := r.BuildDocument(context.Background(), pool(9), smallConfig(), 2)
	require.NoError(t, err)
	assert.Equal(t, []renderer.Source{renderer.SourcePlaceholder, renderer.SourceVector}, sources(res.Pages))
	assert.Equal(t, 1, res.Count(renderer.SourcePlaceholder))
	require.Equal(t, 1, logs.Len())
}

func TestBuildDocumentInsufficientItems(t *testing.T) {
	r := New(Options{})
	cfg := layout.DefaultConfig()
	cfg.Table.Rows, cfg.Table.Columns = 2, 2

	_, err := r.BuildDocument(context.Background(), pool(3), cfg, 2)
	var insufficient *card.InsufficientItemsError
	require.ErrorAs(t, err, &insufficient)
	assert.Contains(t, err.Error(), "4")
}

func TestRenderDocumentCardAppendsPages(t *testing.T) {
	r := New(Options{Seed: 42})
	cfg := smallConfig()
	doc := NewDocument(cfg)

	for i := 0; i < 2; i++ {
		require.NoError(t, r.RenderDocumentCard(context.Background(), doc, pool(9), cfg, i))
	}
	assert.Len(t, doc.Pages(), 2)

	res, err := r.Finish(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(res.PDF, []byte("%PDF")))

	// 重复关闭不会出错
	again, err := doc.Close()
	require.NoError(t, err)
	assert.Equal(t, res.PDF, again)
}

func TestRenderUsesExportCount(t *testing.T) {
	cfg := smallConfig()
	cfg.Export.NumberOfCards = 0
	data, err := New(Options{}).Render(context.Background(), pool(9), cfg)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestFontCacheSharesFamilies(t *testing.T) {
	fc := newFontCache()
	a, err := fc.family("Arial")
	require.NoError(t, err)
	b, err := fc.family("sans-serif")
	require.NoError(t, err)
	assert.Same(t, a, b)

	serif, err := fc.family("Georgia, serif")
	require.NoError(t, err)
	assert.NotSame(t, a, serif)
}

func TestDedupe(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, dedupe([]string{"a", "b", "a", "c", "b"}))
}
