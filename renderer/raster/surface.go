// Package rasterrenderer 使用 github.com/fogleman/gg 在位图上绘制卡片，用于预览与矢量失败时的回退。
package rasterrenderer

import (
	"fmt"
	"image"
	"image/color"
	"io"
	"math"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ByLCY/bingo/fonts"
	"github.com/ByLCY/bingo/layout"
	"github.com/ByLCY/bingo/renderer"
)

// DefaultDPI 是预览与回退栅格化使用的分辨率。
const DefaultDPI = 300

// maxPixels 限制单个表面的像素数，约 1 GiB RGBA。
const maxPixels = 1 << 28

// Surface 是 gg 位图上的 layout.Surface 实现，坐标单位为像素。
type Surface struct {
	dc     *gg.Context
	scale  float64
	width  int
	height int
	faces  map[faceKey]font.Face
}

var _ layout.Surface = (*Surface)(nil)

type faceKey struct {
	family string
	size   float64
}

// Scale 返回 dpi 对应的每毫米像素数。
func Scale(dpi float64) float64 { return dpi / layout.MmPerInch }

// NewSurface 按页面物理尺寸与 dpi 创建白底位图表面。
func NewSurface(cfg layout.Config, dpi float64) (s *Surface, err error) {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	cfg = cfg.Normalized()
	scale := Scale(dpi)
	w := int(math.Round(cfg.Width * scale))
	h := int(math.Round(cfg.Height * scale))
	if w <= 0 || h <= 0 {
		return nil, &renderer.SurfaceUnavailableError{Width: w, Height: h, Cause: fmt.Errorf("页面尺寸无效")}
	}
	if int64(w)*int64(h) > maxPixels {
		return nil, &renderer.SurfaceUnavailableError{Width: w, Height: h, Cause: fmt.Errorf("超过 %d 像素上限", maxPixels)}
	}
	defer func() {
		if p := recover(); p != nil {
			s, err = nil, &renderer.SurfaceUnavailableError{Width: w, Height: h, Cause: fmt.Errorf("%v", p)}
		}
	}()

	dc := gg.NewContext(w, h)
	dc.SetColor(color.White)
	dc.Clear()
	return &Surface{dc: dc, scale: scale, width: w, height: h, faces: map[faceKey]font.Face{}}, nil
}

// Scale 返回每毫米像素数。
func (s *Surface) Scale() float64 { return s.scale }

// Bounds 返回位图像素尺寸。
func (s *Surface) Bounds() (width, height int) { return s.width, s.height }

// Image 返回当前位图。
func (s *Surface) Image() image.Image { return s.dc.Image() }

// EncodePNG 将位图编码为 PNG。
func (s *Surface) EncodePNG(w io.Writer) error { return s.dc.EncodePNG(w) }

func (s *Surface) FillRect(r layout.Rect, fill layout.Fill) {
	if r.Empty() || fill.Opacity <= 0 {
		return
	}
	s.dc.SetColor(fill.Color.NRGBA(fill.Opacity))
	s.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	s.dc.Fill()
}

func (s *Surface) StrokeRect(r layout.Rect, st layout.Stroke) {
	if st.Width <= 0 {
		return
	}
	s.dc.SetColor(st.Color.NRGBA(1))
	s.dc.SetLineWidth(st.Width)
	s.dc.SetDash(st.Dashes...)
	s.dc.DrawRectangle(r.X, r.Y, r.Width, r.Height)
	s.dc.Stroke()
}

// DrawImage 用 Lanczos 重采样把图片缩放到目标像素尺寸后贴到位图上。
func (s *Surface) DrawImage(img image.Image, dst layout.Rect) error {
	w, h := int(math.Round(dst.Width)), int(math.Round(dst.Height))
	if w <= 0 || h <= 0 {
		return nil
	}
	resized := imaging.Resize(img, w, h, imaging.Lanczos)
	s.dc.DrawImage(resized, int(math.Round(dst.X)), int(math.Round(dst.Y)))
	return nil
}

func (s *Surface) DrawText(run layout.TextRun) error {
	if run.Text == "" || run.Font.Size <= 0 {
		return nil
	}
	face, err := s.face(run.Font)
	if err != nil {
		return err
	}
	s.dc.SetFontFace(face)
	s.dc.SetColor(run.Color.NRGBA(1))

	width, _ := s.dc.MeasureString(run.Text)
	m := face.Metrics()
	ascent, descent := fixedToFloat(m.Ascent), fixedToFloat(m.Descent)
	x, baseline := run.Origin(width, ascent, descent)
	s.dc.DrawString(run.Text, x, baseline)
	return nil
}

// face 按字体族与像素字号缓存字体面。72 DPI 下 1pt 等于 1px。
func (s *Surface) face(f layout.Font) (font.Face, error) {
	key := faceKey{family: fonts.Resolve(f.Family), size: f.Size}
	if face, ok := s.faces[key]; ok {
		return face, nil
	}
	parsed, err := fonts.Parse(key.family)
	if err != nil {
		return nil, err
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    f.Size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("创建字体 %s 失败: %w", key.family, err)
	}
	s.faces[key] = face
	return face, nil
}

func fixedToFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
