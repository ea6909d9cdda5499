package canvasrenderer

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/tdewolff/canvas"

	"github.com/ByLCY/bingo/fonts"
	"github.com/ByLCY/bingo/layout"
)

// Surface 是 canvas.Context 上的 layout.Surface 实现，单位为毫米，原点在左上角。
type Surface struct {
	ctx   *canvas.Context
	fonts *fontCache
}

var _ layout.Surface = (*Surface)(nil)

func newSurface(c *canvas.Canvas, fc *fontCache) *Surface {
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点
	return &Surface{ctx: ctx, fonts: fc}
}

var transparent = color.RGBA{0, 0, 0, 0}

func (s *Surface) FillRect(r layout.Rect, fill layout.Fill) {
	if r.Empty() || fill.Opacity <= 0 {
		return
	}
	s.ctx.SetFillColor(fill.Color.NRGBA(fill.Opacity))
	s.ctx.SetStrokeColor(transparent)
	s.ctx.DrawPath(r.X, r.Y, canvas.Rectangle(r.Width, r.Height))
}

func (s *Surface) StrokeRect(r layout.Rect, st layout.Stroke) {
	if st.Width <= 0 {
		return
	}
	s.ctx.SetFillColor(transparent)
	s.ctx.SetStrokeColor(st.Color.NRGBA(1))
	s.ctx.SetStrokeWidth(st.Width)
	s.ctx.SetDashes(0, st.Dashes...)
	s.ctx.DrawPath(r.X, r.Y, canvas.Rectangle(r.Width, r.Height))
}

// DrawImage 以位图形式嵌入图片，分辨率按目标宽度换算。
func (s *Surface) DrawImage(img image.Image, dst layout.Rect) error {
	if dst.Empty() {
		return nil
	}
	px := img.Bounds().Dx()
	if px <= 0 {
		return fmt.Errorf("图片尺寸无效")
	}
	dpmm := float64(px) / dst.Width
	s.ctx.DrawImage(dst.X, dst.Y, img, canvas.DPMM(dpmm))
	return nil
}

// DrawText 的字号为毫米；创建字体面需要 pt，这里做一次 mm→pt。
func (s *Surface) DrawText(run layout.TextRun) error {
	if run.Text == "" || run.Font.Size <= 0 {
		return nil
	}
	face, err := s.fonts.face(run.Font.Family, toPt(run.Font.Size), run.Color)
	if err != nil {
		return err
	}

	var align canvas.TextAlign
	switch run.Anchor {
	case layout.AnchorMiddle:
		align = canvas.Center
	case layout.AnchorEnd:
		align = canvas.Right
	default:
		align = canvas.Left
	}
	m := face.Metrics()
	_, baseline := run.Origin(0, m.Ascent, math.Abs(m.Descent))
	s.ctx.DrawText(run.X, baseline, canvas.NewTextLine(face, run.Text, align))
	return nil
}

// fontCache 按内置字体族缓存 canvas.FontFamily，可在多个页面间共享。
type fontCache struct {
	mu       sync.Mutex
	families map[string]*canvas.FontFamily
}

func newFontCache() *fontCache {
	return &fontCache{families: map[string]*canvas.FontFamily{}}
}

func (fc *fontCache) face(family string, sizePt float64, col layout.Color) (*canvas.FontFace, error) {
	f, err := fc.family(family)
	if err != nil {
		return nil, err
	}
	return f.Face(sizePt, col.NRGBA(1), canvas.FontRegular, canvas.FontNormal), nil
}

func (fc *fontCache) family(name string) (*canvas.FontFamily, error) {
	key := fonts.Resolve(name)
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if f, ok := fc.families[key]; ok {
		return f, nil
	}
	f := canvas.NewFontFamily(key)
	if err := f.LoadFont(fonts.Load(key), 0, canvas.FontRegular); err != nil {
		return nil, fmt.Errorf("加载字体 %s 失败: %w", key, err)
	}
	fc.families[key] = f
	return f, nil
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
