package layout

// 该文件定义布局计算与两个绘制后端共用的几何与样式记录。
// 所有坐标均为表面坐标：左上角为原点，y 向下；栅格后端单位为像素，矢量后端单位为毫米。

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Rect 是表面坐标下的轴对齐矩形。
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area 返回矩形面积。
func (r Rect) Area() float64 { return r.Width * r.Height }

// Empty 表示矩形是否没有可绘制面积。
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Inset 按四边内边距收缩矩形，结果宽高不小于 0。
func (r Rect) Inset(top, right, bottom, left float64) Rect {
	out := Rect{
		X:      r.X + left,
		Y:      r.Y + top,
		Width:  r.Width - left - right,
		Height: r.Height - top - bottom,
	}
	out.Width = max(out.Width, 0)
	out.Height = max(out.Height, 0)
	return out
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	Black = Color{}
	White = Color{R: 255, G: 255, B: 255}
)

// NRGBA 返回带不透明度的颜色（opacity 取值 0..1）。
func (c Color) NRGBA(opacity float64) color.NRGBA {
	opacity = min(max(opacity, 0), 1)
	return color.NRGBA{R: uint8(c.R), G: uint8(c.G), B: uint8(c.B), A: uint8(opacity*255 + 0.5)}
}

// ParseColor 解析 #rgb / #rrggbb / #rrggbbaa 形式的颜色。
func ParseColor(value string) (Color, error) {
	value = strings.TrimPrefix(strings.TrimSpace(value), "#")
	switch len(value) {
	case 3:
		r := strings.Repeat(string(value[0]), 2)
		g := strings.Repeat(string(value[1]), 2)
		b := strings.Repeat(string(value[2]), 2)
		return Color{R: mustHex(r), G: mustHex(g), B: mustHex(b)}, nil
	case 6, 8:
		return Color{
			R: mustHex(value[0:2]),
			G: mustHex(value[2:4]),
			B: mustHex(value[4:6]),
		}, nil
	default:
		return Color{}, fmt.Errorf("颜色值 %s 无法解析", value)
	}
}

// resolveColor 解析颜色，失败时使用 fallback。
func resolveColor(value string, fallback Color) Color {
	if c, err := ParseColor(value); err == nil {
		return c
	}
	return fallback
}

// isTransparent 表示配置的背景色是否意味着不填充。
func isTransparent(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return v == "" || v == "transparent" || v == "none"
}

func mustHex(s string) int {
	v, _ := strconv.ParseInt(s, 16, 64)
	return int(v)
}

// Fill 是填充样式。
type Fill struct {
	Color   Color
	Opacity float64
}

// Solid 返回不透明填充。
func Solid(c Color) Fill { return Fill{Color: c, Opacity: 1} }

// Stroke 是描边样式。Dashes 为空表示实线；每次绘制都显式携带，绘制后不残留。
type Stroke struct {
	Color  Color
	Width  float64
	Dashes []float64
}

// TextAnchor 是文字在 X 方向上的锚点。
type TextAnchor int

const (
	AnchorStart TextAnchor = iota
	AnchorMiddle
	AnchorEnd
)

// Baseline 决定 Y 坐标对应文字的哪一部分。
type Baseline int

const (
	BaselineTop Baseline = iota
	BaselineMiddle
	BaselineBottom
)

// Font 描述字体族与字号（字号为表面单位）。
type Font struct {
	Family string
	Size   float64
}

// TextRun 是一次单行文字绘制，不折行也不缩放。
type TextRun struct {
	Text     string
	X, Y     float64
	Anchor   TextAnchor
	Baseline Baseline
	Font     Font
	Color    Color
}

// Origin 根据文字宽度与字体度量（均为表面单位，descent 为正值）
// 计算实际绘制起点与基线位置。
func (t TextRun) Origin(width, ascent, descent float64) (x, baseline float64) {
	x = t.X
	switch t.Anchor {
	case AnchorMiddle:
		x -= width / 2
	case AnchorEnd:
		x -= width
	}
	switch t.Baseline {
	case BaselineTop:
		baseline = t.Y + ascent
	case BaselineBottom:
		baseline = t.Y - descent
	default:
		baseline = t.Y + (ascent-descent)/2
	}
	return x, baseline
}
