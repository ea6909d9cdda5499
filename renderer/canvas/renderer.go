package canvasrenderer

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"go.uber.org/zap"

	"github.com/ByLCY/bingo/card"
	"github.com/ByLCY/bingo/layout"
	"github.com/ByLCY/bingo/renderer"
	rasterrenderer "github.com/ByLCY/bingo/renderer/raster"
)

// FallbackDPI 是矢量渲染失败时整页栅格化使用的分辨率。
const FallbackDPI = 300

// Creator 写入 PDF 元数据的生成程序名称。
const Creator = "bingo"

// painter 在矢量表面上绘制一张卡片。
type painter func(s layout.Surface, cfg layout.Config, inst card.Instance, images layout.ImageSet, vars layout.Vars) error

func paintVector(s layout.Surface, cfg layout.Config, inst card.Instance, images layout.ImageSet, vars layout.Vars) error {
	return layout.RenderCard(s, cfg, 1, inst, images, vars)
}

// Options configures the canvas renderer.
type Options struct {
	Loader      renderer.ImageLoader
	Logger      *zap.Logger
	Seed        uint64 // 0 表示随机组卡
	Concurrency int
	FallbackDPI float64
}

// Renderer draws bingo cards into a PDF via github.com/tdewolff/canvas.
// 每张卡片单独绘制在新的画布上，失败时整张丢弃并改用栅格回退。
type Renderer struct {
	loader      renderer.ImageLoader
	log         *zap.Logger
	seed        uint64
	concurrency int
	fallbackDPI float64
	fonts       *fontCache
	paint       painter
}

var _ renderer.Renderer = (*Renderer)(nil)

// New creates a canvas-based renderer.
func New(opts Options) *Renderer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	dpi := opts.FallbackDPI
	if dpi <= 0 {
		dpi = FallbackDPI
	}
	return &Renderer{
		loader:      opts.Loader,
		log:         log.Named("canvas"),
		seed:        opts.Seed,
		concurrency: opts.Concurrency,
		fallbackDPI: dpi,
		fonts:       newFontCache(),
		paint:       paintVector,
	}
}

// PageInfo 记录一页的来源。
type PageInfo struct {
	Index  int             `json:"index"`
	Source renderer.Source `json:"source"`
}

// Result 是生成完成的文档。
type Result struct {
	PDF   []byte
	Pages []PageInfo
}

// Count 返回指定来源的页数。
func (r *Result) Count(src renderer.Source) int {
	n := 0
	for _, p := range r.Pages {
		if p.Source == src {
			n++
		}
	}
	return n
}

// Document 是逐页追加的 PDF。页面尺寸取配置的物理尺寸。
type Document struct {
	buf    bytes.Buffer
	writer *pdf.PDF
	cfg    layout.Config // 毫米
	pages  []PageInfo
	closed bool
}

// NewDocument 创建空文档并写入元数据。
func NewDocument(cfg layout.Config) *Document {
	cfg = cfg.Normalized()
	d := &Document{cfg: cfg}
	d.writer = pdf.New(&d.buf, cfg.Width, cfg.Height, nil)
	d.writer.SetInfo(cfg.Title.Text, "", "bingo", "", Creator)
	return d
}

// Pages 返回已追加页面的来源记录。
func (d *Document) Pages() []PageInfo { return d.pages }

// Close 结束文档并返回 PDF 数据。
func (d *Document) Close() ([]byte, error) {
	if d.closed {
		return d.buf.Bytes(), nil
	}
	d.closed = true
	if err := d.writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return d.buf.Bytes(), nil
}

func (d *Document) appendPage(c *canvas.Canvas, src renderer.Source) {
	if len(d.pages) > 0 {
		d.writer.NewPage(d.cfg.Width, d.cfg.Height)
	}
	c.RenderTo(d.writer)
	d.pages = append(d.pages, PageInfo{Index: len(d.pages), Source: src})
}

// Render 生成 cfg.Export.NumberOfCards 张卡片的 PDF。
func (r *Renderer) Render(ctx context.Context, items []card.Item, cfg layout.Config) ([]byte, error) {
	res, err := r.BuildDocument(ctx, items, cfg, cfg.Export.NumberOfCards)
	if err != nil {
		return nil, err
	}
	return res.PDF, nil
}

// BuildDocument 组好 numberOfCards 张卡片，一次性加载全部图片后逐页绘制。
// 单张卡片的失败不会中断整个文档，只有已选条目不足会返回错误。
func (r *Renderer) BuildDocument(ctx context.Context, items []card.Item, cfg layout.Config, numberOfCards int) (*Result, error) {
	cards, err := card.Compose(items, cfg.CellsPerCard(), numberOfCards, r.rng(0))
	if err != nil {
		return nil, err
	}
	var refs []string
	for _, inst := range cards {
		refs = append(refs, renderer.ImageRefs(inst)...)
	}
	images := renderer.LoadImages(ctx, r.loader, dedupe(refs), r.concurrency, r.log)

	doc := NewDocument(cfg)
	for i, inst := range cards {
		r.appendCard(doc, cfg, inst, images, layout.Vars{Number: i + 1, Total: len(cards)})
	}
	return r.finish(doc)
}

// RenderDocumentCard 组一张卡片并作为新页追加到 doc，cardIndex 从 0 开始。
func (r *Renderer) RenderDocumentCard(ctx context.Context, doc *Document, items []card.Item, cfg layout.Config, cardIndex int) error {
	cards, err := card.Compose(items, cfg.CellsPerCard(), 1, r.rng(uint64(max(cardIndex, 0))))
	if err != nil {
		return err
	}
	inst := cards[0]
	images := renderer.LoadImages(ctx, r.loader, renderer.ImageRefs(inst), r.concurrency, r.log)
	total := max(cfg.Export.NumberOfCards, cardIndex+1)
	r.appendCard(doc, cfg, inst, images, layout.Vars{Number: cardIndex + 1, Total: total})
	return nil
}

// Finish 关闭文档并记录各来源页数。
func (r *Renderer) Finish(doc *Document) (*Result, error) { return r.finish(doc) }

func (r *Renderer) finish(doc *Document) (*Result, error) {
	data, err := doc.Close()
	if err != nil {
		return nil, err
	}
	res := &Result{PDF: data, Pages: doc.Pages()}
	r.log.Info("文档生成完成",
		zap.Int("pages", len(res.Pages)),
		zap.Int("vector", res.Count(renderer.SourceVector)),
		zap.Int("raster", res.Count(renderer.SourceRaster)),
		zap.Int("placeholder", res.Count(renderer.SourcePlaceholder)))
	return res, nil
}

// appendCard 依次尝试矢量绘制、整页栅格回退与错误占位页，总会追加一页。
func (r *Renderer) appendCard(doc *Document, cfg layout.Config, inst card.Instance, images layout.ImageSet, vars layout.Vars) {
	index := vars.Number - 1
	w, h := doc.cfg.Width, doc.cfg.Height

	c := canvas.New(w, h)
	err := r.drawVector(c, cfg, inst, images, vars)
	if err == nil {
		doc.appendPage(c, renderer.SourceVector)
		return
	}
	vecErr := &renderer.VectorRenderError{Card: index, Cause: err}
	r.log.Warn("矢量渲染失败，改用栅格回退", zap.Int("card", index), zap.Error(vecErr))

	c = canvas.New(w, h)
	err = r.drawRaster(c, cfg, inst, images, vars)
	if err == nil {
		doc.appendPage(c, renderer.SourceRaster)
		return
	}
	r.log.Error("栅格回退失败，输出占位页", zap.Int("card", index), zap.Error(err))

	c = canvas.New(w, h)
	r.drawPlaceholder(c, doc.cfg, index)
	doc.appendPage(c, renderer.SourcePlaceholder)
}

func (r *Renderer) drawVector(c *canvas.Canvas, cfg layout.Config, inst card.Instance, images layout.ImageSet, vars layout.Vars) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	return r.paint(newSurface(c, r.fonts), cfg, inst, images, vars)
}

// drawRaster 在位图上重新绘制同一张卡片，并作为整页图片嵌入。
func (r *Renderer) drawRaster(c *canvas.Canvas, cfg layout.Config, inst card.Instance, images layout.ImageSet, vars layout.Vars) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	bitmap, err := rasterrenderer.RenderCard(cfg, inst, images, r.fallbackDPI, vars)
	if err != nil {
		return err
	}
	s := newSurface(c, r.fonts)
	page := layout.Rect{Width: c.W, Height: c.H}
	return s.DrawImage(bitmap.Image(), page)
}

// drawPlaceholder 输出带红色虚线边框与说明文字的错误页，自身失败时保留空白页。
// 内置字体不含中文字形，说明文字使用英文。
func (r *Renderer) drawPlaceholder(c *canvas.Canvas, cfg layout.Config, index int) {
	defer func() {
		if p := recover(); p != nil {
			r.log.Error("占位页绘制失败", zap.Int("card", index), zap.Any("panic", p))
		}
	}()
	s := newSurface(c, r.fonts)
	box := layout.Rect{X: cfg.Margins.Left, Y: cfg.Margins.Top, Width: c.W - cfg.Margins.Left - cfg.Margins.Right, Height: c.H - cfg.Margins.Top - cfg.Margins.Bottom}
	s.StrokeRect(box, layout.Stroke{Color: layout.Color{R: 200}, Width: 0.5, Dashes: []float64{5, 2.5}})
	_ = s.DrawText(layout.TextRun{
		Text:     fmt.Sprintf("Card %d could not be rendered", index+1),
		X:        box.X + box.Width/2,
		Y:        box.Y + box.Height/2,
		Anchor:   layout.AnchorMiddle,
		Baseline: layout.BaselineMiddle,
		Font:     layout.Font{Family: "sans-serif", Size: layout.PtToSurface(18, 1)},
		Color:    layout.Color{R: 200},
	})
}

func (r *Renderer) rng(stream uint64) *rand.Rand {
	if r.seed == 0 {
		return nil
	}
	return card.Seeded(r.seed, stream)
}

func dedupe(refs []string) []string {
	seen := make(map[string]struct{}, len(refs))
	out := refs[:0]
	for _, ref := range refs {
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}
