package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// HAlign 是水平对齐方式。
type HAlign string

const (
	AlignLeft   HAlign = "left"
	AlignCenter HAlign = "center"
	AlignRight  HAlign = "right"
)

// VAlign 是垂直对齐方式。
type VAlign string

const (
	AlignTop    VAlign = "top"
	AlignMiddle VAlign = "middle"
	AlignBottom VAlign = "bottom"
)

// Alignment 组合水平与垂直对齐，共 9 种。
type Alignment struct {
	Horizontal HAlign `json:"horizontal"`
	Vertical   VAlign `json:"vertical"`
}

type BorderStyle string

const (
	BorderSolid  BorderStyle = "solid"
	BorderDashed BorderStyle = "dashed"
	BorderDotted BorderStyle = "dotted"
)

type FillType string

const (
	FillNone  FillType = "none"
	FillSolid FillType = "solid"
)

// ContentType 决定单元格的渲染模式。
type ContentType string

const (
	ContentTextOnly  ContentType = "text-only"
	ContentImageOnly ContentType = "image-only"
	ContentImageText ContentType = "image-text"
)

// ImageScaling 控制等比适配是否允许放大。
type ImageScaling string

const (
	ScaleContain   ImageScaling = "contain"
	ScaleScaleDown ImageScaling = "scale-down"
)

// Position 是 image-text 模式下文字相对图片的位置。
type Position string

const (
	PositionTop    Position = "top"
	PositionBottom Position = "bottom"
	PositionLeft   Position = "left"
	PositionRight  Position = "right"
	PositionCenter Position = "center"
)

type TextOrientation string

const (
	TextHorizontal TextOrientation = "horizontal"
	TextVertical   TextOrientation = "vertical"
)

// Margins 以配置单位保存页边距；Linked 为 true 时修改任一边会同步到四边。
type Margins struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
	Linked bool    `json:"linked"`
}

// Band 描述标题带或页脚带。Height 使用配置单位，FontSize 使用 pt。
type Band struct {
	Show            bool      `json:"show"`
	Text            string    `json:"text"`
	Height          float64   `json:"height"`
	FontSize        float64   `json:"fontSize"`
	FontFamily      string    `json:"fontFamily"`
	Color           string    `json:"color"`
	BackgroundColor string    `json:"backgroundColor"`
	Alignment       Alignment `json:"alignment"`
}

// Padding 是单元格内边距（mm）。
type Padding struct {
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
	Left   float64 `json:"left"`
}

// Table 描述内容网格。边框宽度、内边距与元素间距均为 mm，字号为 pt。
type Table struct {
	Rows              int             `json:"rows"`
	Columns           int             `json:"columns"`
	BorderWidth       float64         `json:"borderWidth"`
	BorderColor       string          `json:"borderColor"`
	BorderStyle       BorderStyle     `json:"borderStyle"`
	FillType          FillType        `json:"fillType"`
	FillColor         string          `json:"fillColor"`
	Padding           Padding         `json:"padding"`
	ContentAlignment  Alignment       `json:"contentAlignment"`
	ContentType       ContentType     `json:"contentType"`
	ImageScaling      ImageScaling    `json:"imageScaling"`
	TextImagePosition Position        `json:"textImagePosition"`
	Spacing           float64         `json:"spacing"`
	TextOrientation   TextOrientation `json:"textOrientation"`
	FontSize          float64         `json:"fontSize"`
	FontFamily        string          `json:"fontFamily"`
	TextColor         string          `json:"textColor"`
}

// Export 控制导出的卡片数量。
type Export struct {
	NumberOfCards int `json:"numberOfCards"`
}

// Config 是整个页面布局配置，按值传入每一次渲染。
// 所有空间数值（宽高、页边距、两条带的高度、区段间距）都以 Unit 记录。
type Config struct {
	PaperSize      PaperSize   `json:"paperSize"`
	Orientation    Orientation `json:"orientation"`
	Width          float64     `json:"width"`
	Height         float64     `json:"height"`
	Unit           Unit        `json:"unit"`
	Margins        Margins     `json:"margins"`
	Title          Band        `json:"title"`
	Table          Table       `json:"table"`
	Footer         Band        `json:"footer"`
	SectionSpacing float64     `json:"sectionSpacing"`
	Export         Export      `json:"export"`
}

// DefaultConfig 返回 A4 纵向、5×5 网格的默认配置。
func DefaultConfig() Config {
	return Config{
		PaperSize:   PaperA4,
		Orientation: Portrait,
		Width:       210,
		Height:      297,
		Unit:        UnitMM,
		Margins:     Margins{Top: 10, Right: 10, Bottom: 10, Left: 10, Linked: true},
		Title: Band{
			Show:            true,
			Text:            "BINGO",
			Height:          20,
			FontSize:        24,
			FontFamily:      "sans-serif",
			Color:           "#000000",
			BackgroundColor: "#ffffff",
			Alignment:       Alignment{Horizontal: AlignCenter, Vertical: AlignMiddle},
		},
		Table: Table{
			Rows:              5,
			Columns:           5,
			BorderWidth:       0.5,
			BorderColor:       "#000000",
			BorderStyle:       BorderSolid,
			FillType:          FillNone,
			FillColor:         "#ffffff",
			Padding:           Padding{Top: 5, Right: 5, Bottom: 5, Left: 5},
			ContentAlignment:  Alignment{Horizontal: AlignCenter, Vertical: AlignMiddle},
			ContentType:       ContentTextOnly,
			ImageScaling:      ScaleContain,
			TextImagePosition: PositionTop,
			Spacing:           2,
			TextOrientation:   TextHorizontal,
			FontSize:          14,
			FontFamily:        "sans-serif",
			TextColor:         "#000000",
		},
		Footer: Band{
			Show:            false,
			Text:            "",
			Height:          15,
			FontSize:        12,
			FontFamily:      "sans-serif",
			Color:           "#000000",
			BackgroundColor: "#ffffff",
			Alignment:       Alignment{Horizontal: AlignCenter, Vertical: AlignMiddle},
		},
		SectionSpacing: 5,
		Export:         Export{NumberOfCards: 1},
	}
}

// SetUnit 切换单位，并按同一换算因子缩放所有已保存的长度，使物理尺寸保持不变。
func (c *Config) SetUnit(u Unit) {
	if !u.Valid() || u == c.Unit {
		return
	}
	from := c.Unit
	conv := func(v *float64) { *v = ConvertUnits(*v, from, u) }
	conv(&c.Width)
	conv(&c.Height)
	conv(&c.Margins.Top)
	conv(&c.Margins.Right)
	conv(&c.Margins.Bottom)
	conv(&c.Margins.Left)
	conv(&c.Title.Height)
	conv(&c.Footer.Height)
	conv(&c.SectionSpacing)
	c.Unit = u
}

// SetPaperSize 切换纸张；非 Custom 时按纸张表与当前方向重新计算宽高。
func (c *Config) SetPaperSize(size PaperSize) {
	c.PaperSize = size
	if size == PaperCustom {
		return
	}
	w, h := PaperSizeDimensions(size, c.Orientation)
	c.Width = ConvertUnits(w, UnitMM, c.Unit)
	c.Height = ConvertUnits(h, UnitMM, c.Unit)
}

// SetOrientation 切换方向；非 Custom 纸张交换宽高，Custom 保持尺寸不变。
func (c *Config) SetOrientation(o Orientation) {
	if o == c.Orientation {
		return
	}
	c.Orientation = o
	if c.PaperSize != PaperCustom {
		c.Width, c.Height = c.Height, c.Width
	}
}

// Side 标识页边距的一条边。
type Side string

const (
	SideTop    Side = "top"
	SideRight  Side = "right"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
)

// SetMargin 设置一条边的页边距；Linked 时同步到四边。
func (c *Config) SetMargin(side Side, v float64) {
	if c.Margins.Linked {
		c.Margins.Top, c.Margins.Right, c.Margins.Bottom, c.Margins.Left = v, v, v, v
		return
	}
	switch side {
	case SideTop:
		c.Margins.Top = v
	case SideRight:
		c.Margins.Right = v
	case SideBottom:
		c.Margins.Bottom = v
	case SideLeft:
		c.Margins.Left = v
	}
}

// Grid 返回行列数，至少为 1。
func (c Config) Grid() (rows, cols int) {
	return max(c.Table.Rows, 1), max(c.Table.Columns, 1)
}

// CellsPerCard 返回每张卡片的单元格数量。
func (c Config) CellsPerCard() int {
	r, cols := c.Grid()
	return r * cols
}

// Normalized 返回换算为毫米的副本，布局计算总是基于该副本。
func (c Config) Normalized() Config {
	out := c
	if !out.Unit.Valid() {
		out.Unit = UnitMM
		return out
	}
	out.SetUnit(UnitMM)
	return out
}

// Validate 检查配置不变式，返回所有问题的合并错误。
func (c Config) Validate() error {
	var errs []error
	if c.Table.Rows < 1 {
		errs = append(errs, fmt.Errorf("表格行数必须 ≥ 1，当前为 %d", c.Table.Rows))
	}
	if c.Table.Columns < 1 {
		errs = append(errs, fmt.Errorf("表格列数必须 ≥ 1，当前为 %d", c.Table.Columns))
	}
	if !c.Unit.Valid() {
		errs = append(errs, fmt.Errorf("无法识别的单位：%s", c.Unit))
	}
	if c.Width <= 0 || c.Height <= 0 {
		errs = append(errs, fmt.Errorf("页面尺寸必须为正数：%gx%g", c.Width, c.Height))
	}
	if c.PaperSize != PaperCustom {
		w, h := PaperSizeDimensions(c.PaperSize, c.Orientation)
		w, h = ConvertUnits(w, UnitMM, c.Unit), ConvertUnits(h, UnitMM, c.Unit)
		if !nearlyEqual(w, c.Width) || !nearlyEqual(h, c.Height) {
			errs = append(errs, fmt.Errorf("页面尺寸 %gx%g 与纸张 %s(%s) 不一致", c.Width, c.Height, c.PaperSize, c.Orientation))
		}
	}
	n := c.Normalized()
	if w, h := n.contentWidth(), n.contentHeight(); w < 0 || h < 0 {
		errs = append(errs, fmt.Errorf("可用内容区域为负：%gx%g mm", w, h))
	}
	switch c.Table.ContentType {
	case ContentTextOnly, ContentImageOnly, ContentImageText:
	default:
		errs = append(errs, fmt.Errorf("无法识别的内容类型：%s", c.Table.ContentType))
	}
	return errors.Join(errs...)
}

func (c Config) contentWidth() float64 {
	return c.Width - c.Margins.Left - c.Margins.Right
}

func (c Config) contentHeight() float64 {
	h := c.Height - c.Margins.Top - c.Margins.Bottom
	if c.Title.Show {
		h -= c.Title.Height + c.SectionSpacing
	}
	if c.Footer.Show {
		h -= c.Footer.Height + c.SectionSpacing
	}
	return h
}

func nearlyEqual(a, b float64) bool {
	d := a - b
	return d < 1e-6 && d > -1e-6
}

// DecodeConfig 读取布局配置 JSON；缺失的字段保留默认值。
func DecodeConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	if err := json.NewDecoder(r).Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("解析布局配置失败: %w", err)
	}
	return cfg, nil
}

// Encode 以与结构一致的 JSON 写出配置。
func (c Config) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("写出布局配置失败: %w", err)
	}
	return nil
}
