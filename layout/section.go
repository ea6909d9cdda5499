package layout

import "github.com/ByLCY/bingo/card"

// 该文件负责页面纵向分区：标题带 / 内容网格 / 页脚带。
// 入参 cfg 会先换算为毫米，scale 为每毫米对应的表面单位数。

// bandInsetRatio 是非居中对齐时文字距带边缘的内缩比例（相对带高）。
const bandInsetRatio = 0.1

// AvailableWidth 返回左右页边距之间的内容宽度（表面单位，不小于 0）。
func AvailableWidth(cfg Config, scale float64) float64 {
	cfg = cfg.Normalized()
	return max(cfg.contentWidth()*scale, 0)
}

// ContentRegion 返回网格可用区域：去掉上下页边距、可见带及其间距后的部分。
func ContentRegion(cfg Config, scale float64) Rect {
	cfg = cfg.Normalized()
	y := cfg.Margins.Top * scale
	h := (cfg.Height - cfg.Margins.Top - cfg.Margins.Bottom) * scale
	if cfg.Title.Show {
		y += cfg.Title.Height*scale + cfg.SectionSpacing*scale
		h -= cfg.Title.Height*scale + cfg.SectionSpacing*scale
	}
	if cfg.Footer.Show {
		h -= cfg.Footer.Height*scale + cfg.SectionSpacing*scale
	}
	return Rect{
		X:      cfg.Margins.Left * scale,
		Y:      y,
		Width:  max(cfg.contentWidth()*scale, 0),
		Height: max(h, 0),
	}
}

// LayoutTitle 绘制标题带并返回下一区段的起始 Y。
// 标题隐藏时不占空间，也不追加间距，直接返回 startY。
func LayoutTitle(s Surface, cfg Config, scale, startY, availableWidth float64, vars Vars) (float64, error) {
	cfg = cfg.Normalized()
	if !cfg.Title.Show {
		return startY, nil
	}
	rect := Rect{X: cfg.Margins.Left * scale, Y: startY, Width: availableWidth, Height: cfg.Title.Height * scale}
	if err := drawBand(s, cfg.Title, rect, scale, vars); err != nil {
		return startY, err
	}
	return startY + cfg.Title.Height*scale + cfg.SectionSpacing*scale, nil
}

// LayoutFooter 绘制贴底的页脚带：footerY = canvasHeight − 下边距 − 带高。
func LayoutFooter(s Surface, cfg Config, scale, canvasHeight, availableWidth float64, vars Vars) error {
	cfg = cfg.Normalized()
	if !cfg.Footer.Show {
		return nil
	}
	h := cfg.Footer.Height * scale
	rect := Rect{
		X:      cfg.Margins.Left * scale,
		Y:      canvasHeight - cfg.Margins.Bottom*scale - h,
		Width:  availableWidth,
		Height: h,
	}
	return drawBand(s, cfg.Footer, rect, scale, vars)
}

// drawBand 绘制带背景与单行文字。超出带范围的文字不折行也不缩小。
func drawBand(s Surface, band Band, rect Rect, scale float64, vars Vars) error {
	if !isTransparent(band.BackgroundColor) {
		s.FillRect(rect, Solid(resolveColor(band.BackgroundColor, White)))
	}
	text := vars.expand(band.Text)
	if text == "" {
		return nil
	}
	run := bandTextRun(band, rect)
	run.Text = text
	run.Font = Font{Family: band.FontFamily, Size: PtToSurface(band.FontSize, scale)}
	run.Color = resolveColor(band.Color, Black)
	return s.DrawText(run)
}

// bandTextRun 将 9 向对齐映射为锚点与基线；非居中方向内缩带高的 10%。
func bandTextRun(band Band, rect Rect) TextRun {
	inset := rect.Height * bandInsetRatio
	var run TextRun
	switch band.Alignment.Horizontal {
	case AlignLeft:
		run.X, run.Anchor = rect.X+inset, AnchorStart
	case AlignRight:
		run.X, run.Anchor = rect.X+rect.Width-inset, AnchorEnd
	default:
		run.X, run.Anchor = rect.X+rect.Width/2, AnchorMiddle
	}
	switch band.Alignment.Vertical {
	case AlignTop:
		run.Y, run.Baseline = rect.Y+inset, BaselineTop
	case AlignBottom:
		run.Y, run.Baseline = rect.Y+rect.Height-inset, BaselineBottom
	default:
		run.Y, run.Baseline = rect.Y+rect.Height/2, BaselineMiddle
	}
	return run
}

// RenderCard 在表面上依次绘制标题、网格与页脚，两种后端共用。
func RenderCard(s Surface, cfg Config, scale float64, items []card.Item, images ImageSet, vars Vars) error {
	cfg = cfg.Normalized()
	availableWidth := AvailableWidth(cfg, scale)
	if _, err := LayoutTitle(s, cfg, scale, cfg.Margins.Top*scale, availableWidth, vars); err != nil {
		return err
	}
	if err := RenderGrid(s, cfg, scale, items, ContentRegion(cfg, scale), images); err != nil {
		return err
	}
	return LayoutFooter(s, cfg, scale, cfg.Height*scale, availableWidth, vars)
}
