package rasterrenderer

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"math/rand/v2"

	"go.uber.org/zap"

	"github.com/ByLCY/bingo/card"
	"github.com/ByLCY/bingo/layout"
	"github.com/ByLCY/bingo/renderer"
)

// Options configures the raster renderer.
type Options struct {
	Loader      renderer.ImageLoader
	Logger      *zap.Logger
	Seed        uint64 // 0 表示每次预览都重新随机
	Concurrency int    // 同时加载的图片数量
	DPI         float64
}

// Renderer 生成单张卡片的位图预览。
type Renderer struct {
	loader      renderer.ImageLoader
	log         *zap.Logger
	seed        uint64
	concurrency int
	dpi         float64
}

var _ renderer.Renderer = (*Renderer)(nil)

// New 创建栅格渲染器。
func New(opts Options) *Renderer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	dpi := opts.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	return &Renderer{
		loader:      opts.Loader,
		log:         log.Named("raster"),
		seed:        opts.Seed,
		concurrency: opts.Concurrency,
		dpi:         dpi,
	}
}

// Preview 是一次预览的结果。
type Preview struct {
	Image  image.Image
	PNG    []byte
	Width  int
	Height int
	Scale  float64 // 每毫米像素数
	Card   card.Instance
}

// DataURI 返回可直接显示的 data:image/png;base64 地址。
func (p *Preview) DataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(p.PNG)
}

// Render 以默认 dpi 渲染第一张卡片并返回 PNG 数据。
func (r *Renderer) Render(ctx context.Context, items []card.Item, cfg layout.Config) ([]byte, error) {
	p, err := r.RenderPreview(ctx, items, cfg, 0, r.dpi)
	if err != nil {
		return nil, err
	}
	return p.PNG, nil
}

// RenderPreview 生成第 cardIndex 张卡片（从 0 开始）的预览。
// 组卡会重新生成 cardIndex+1 张并取最后一张；未设置种子时同一 cardIndex 的结果不可复现。
// 图片全部加载完成后才开始绘制，加载失败的图片按无图处理。
func (r *Renderer) RenderPreview(ctx context.Context, items []card.Item, cfg layout.Config, cardIndex int, dpi float64) (*Preview, error) {
	if dpi <= 0 {
		dpi = r.dpi
	}
	cardIndex = max(cardIndex, 0)

	cards, err := card.Compose(items, cfg.CellsPerCard(), cardIndex+1, r.rng(cardIndex))
	if err != nil {
		return nil, err
	}
	inst := cards[len(cards)-1]

	images := renderer.LoadImages(ctx, r.loader, renderer.ImageRefs(inst), r.concurrency, r.log)
	vars := layout.Vars{Number: cardIndex + 1, Total: max(cfg.Export.NumberOfCards, cardIndex+1)}
	s, err := RenderCard(cfg, inst, images, dpi, vars)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("编码预览图片失败: %w", err)
	}
	w, h := s.Bounds()
	return &Preview{
		Image:  s.Image(),
		PNG:    buf.Bytes(),
		Width:  w,
		Height: h,
		Scale:  s.Scale(),
		Card:   inst,
	}, nil
}

// RenderCard 在新的位图表面上绘制一张已组好的卡片，图片需事先加载。
// 矢量渲染失败时也用它生成整页回退图片。
func RenderCard(cfg layout.Config, inst card.Instance, images layout.ImageSet, dpi float64, vars layout.Vars) (*Surface, error) {
	s, err := NewSurface(cfg, dpi)
	if err != nil {
		return nil, err
	}
	if err := layout.RenderCard(s, cfg, s.Scale(), inst, images, vars); err != nil {
		return nil, fmt.Errorf("绘制卡片失败: %w", err)
	}
	return s, nil
}

// rng 在设置种子时为每个预览序号提供独立且可复现的随机源。
func (r *Renderer) rng(cardIndex int) *rand.Rand {
	if r.seed == 0 {
		return nil
	}
	return card.Seeded(r.seed, uint64(cardIndex))
}
