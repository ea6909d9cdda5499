package layout

import (
	"image"

	"github.com/ByLCY/bingo/card"
)

const (
	// 横排文字最多保留的字符数。
	maxTextRunes = 15
	// 竖排文字最多保留的字符数。
	maxVerticalRunes = 10

	// image-text 模式下文字所占比例，其余给图片。
	textShare = 0.4
	// center 模式下文字衬底的不透明度。
	overlayOpacity = 0.7
	// 竖排字符间距上限（相对字号）。
	verticalLineFactor = 1.5
)

// CellRenderer 负责单元格内容的绘制，几何计算与后端无关。
type CellRenderer struct {
	s       Surface
	table   Table
	scale   float64
	images  ImageSet
	font    Font
	color   Color
	padding Padding // 表面单位
	spacing float64 // 表面单位
}

// NewCellRenderer 为给定表面创建单元格渲染器。
func NewCellRenderer(s Surface, cfg Config, scale float64, images ImageSet) *CellRenderer {
	t := cfg.Table
	return &CellRenderer{
		s:      s,
		table:  t,
		scale:  scale,
		images: images,
		font:   Font{Family: t.FontFamily, Size: PtToSurface(t.FontSize, scale)},
		color:  resolveColor(t.TextColor, Black),
		padding: Padding{
			Top:    t.Padding.Top * scale,
			Right:  t.Padding.Right * scale,
			Bottom: t.Padding.Bottom * scale,
			Left:   t.Padding.Left * scale,
		},
		spacing: max(t.Spacing*scale, 0),
	}
}

// Render 按内容类型绘制一个条目。缺少图片时退化为纯文字。
func (r *CellRenderer) Render(cell Rect, item card.Item) error {
	switch r.table.ContentType {
	case ContentImageOnly:
		img, ok := r.images.Lookup(item.Image)
		if !ok {
			return r.renderText(cell, item.Text)
		}
		return r.drawImage(img, r.inner(cell))
	case ContentImageText:
		img, ok := r.images.Lookup(item.Image)
		if !ok {
			return r.renderText(cell, item.Text)
		}
		return r.renderImageText(cell, item.Text, img)
	default:
		return r.renderText(cell, item.Text)
	}
}

func (r *CellRenderer) inner(cell Rect) Rect {
	p := r.padding
	return cell.Inset(p.Top, p.Right, p.Bottom, p.Left)
}

// renderText 是 text-only 模式：按 contentAlignment 对齐，或在竖排时逐字堆叠。
func (r *CellRenderer) renderText(cell Rect, text string) error {
	if r.table.TextOrientation == TextVertical {
		return r.verticalText(r.inner(cell), text)
	}
	return r.alignedText(cell, r.padding, truncate(text, maxTextRunes), r.table.ContentAlignment)
}

// alignedText 在 box 内按 9 向对齐放置单行文字，pad 为相应边的内缩。
func (r *CellRenderer) alignedText(box Rect, pad Padding, text string, align Alignment) error {
	if text == "" {
		return nil
	}
	run := TextRun{Text: text, Font: r.font, Color: r.color}
	switch align.Horizontal {
	case AlignLeft:
		run.X, run.Anchor = box.X+pad.Left, AnchorStart
	case AlignRight:
		run.X, run.Anchor = box.X+box.Width-pad.Right, AnchorEnd
	default:
		run.X, run.Anchor = box.X+box.Width/2, AnchorMiddle
	}
	switch align.Vertical {
	case AlignTop:
		run.Y, run.Baseline = box.Y+pad.Top, BaselineTop
	case AlignBottom:
		run.Y, run.Baseline = box.Y+box.Height-pad.Bottom, BaselineBottom
	default:
		run.Y, run.Baseline = box.Y+box.Height/2, BaselineMiddle
	}
	return r.s.DrawText(run)
}

// verticalText 逐字竖排：最多 10 个字符加省略号，字距取 min(高度/字数, 字号×1.5)，整体垂直居中。
func (r *CellRenderer) verticalText(box Rect, text string) error {
	runes := []rune(text)
	if len(runes) > maxVerticalRunes {
		runes = append(runes[:maxVerticalRunes:maxVerticalRunes], '…')
	}
	n := len(runes)
	if n == 0 || box.Height <= 0 {
		return nil
	}
	step := min(box.Height/float64(n), r.font.Size*verticalLineFactor)
	y := box.Y + (box.Height-step*float64(n))/2 + step/2
	x := box.X + box.Width/2
	for _, ch := range runes {
		run := TextRun{
			Text:     string(ch),
			X:        x,
			Y:        y,
			Anchor:   AnchorMiddle,
			Baseline: BaselineMiddle,
			Font:     r.font,
			Color:    r.color,
		}
		if err := r.s.DrawText(run); err != nil {
			return err
		}
		y += step
	}
	return nil
}

func (r *CellRenderer) drawImage(img image.Image, box Rect) error {
	dst := fitImage(img, box, r.table.ImageScaling, r.scale)
	if dst.Empty() {
		return nil
	}
	return r.s.DrawImage(img, dst)
}

// renderImageText 按 textImagePosition 切分单元格：上下为 40%/60%，左右为 40%/60% 且文字竖排，
// center 时图片铺满并在中间 1/3 高度加半透明白色衬底。
func (r *CellRenderer) renderImageText(cell Rect, text string, img image.Image) error {
	inner := r.inner(cell)
	sp := r.spacing
	centered := Alignment{Horizontal: r.table.ContentAlignment.Horizontal, Vertical: AlignMiddle}
	short := truncate(text, maxTextRunes)

	switch r.table.TextImagePosition {
	case PositionBottom:
		imgH := inner.Height * (1 - textShare)
		imgBox := Rect{X: inner.X, Y: inner.Y, Width: inner.Width, Height: max(imgH-sp, 0)}
		textBox := Rect{X: inner.X, Y: inner.Y + imgH, Width: inner.Width, Height: inner.Height - imgH}
		if err := r.drawImage(img, imgBox); err != nil {
			return err
		}
		return r.alignedText(textBox, Padding{}, short, centered)

	case PositionLeft:
		textW := inner.Width * textShare
		textBox := Rect{X: inner.X, Y: inner.Y, Width: textW, Height: inner.Height}
		imgBox := Rect{X: inner.X + textW + sp, Y: inner.Y, Width: max(inner.Width-textW-sp, 0), Height: inner.Height}
		if err := r.drawImage(img, imgBox); err != nil {
			return err
		}
		return r.verticalText(textBox, text)

	case PositionRight:
		imgW := inner.Width * (1 - textShare)
		imgBox := Rect{X: inner.X, Y: inner.Y, Width: max(imgW-sp, 0), Height: inner.Height}
		textBox := Rect{X: inner.X + imgW, Y: inner.Y, Width: inner.Width - imgW, Height: inner.Height}
		if err := r.drawImage(img, imgBox); err != nil {
			return err
		}
		return r.verticalText(textBox, text)

	case PositionCenter:
		if err := r.drawImage(img, inner); err != nil {
			return err
		}
		if short == "" {
			return nil
		}
		backing := Rect{X: cell.X, Y: cell.Y + cell.Height/3, Width: cell.Width, Height: cell.Height / 3}
		r.s.FillRect(backing, Fill{Color: White, Opacity: overlayOpacity})
		return r.alignedText(cell, Padding{}, short, Alignment{Horizontal: AlignCenter, Vertical: AlignMiddle})

	default: // top
		textH := inner.Height * textShare
		textBox := Rect{X: inner.X, Y: inner.Y, Width: inner.Width, Height: textH}
		imgBox := Rect{X: inner.X, Y: inner.Y + textH + sp, Width: inner.Width, Height: max(inner.Height-textH-sp, 0)}
		if err := r.alignedText(textBox, Padding{}, short, centered); err != nil {
			return err
		}
		return r.drawImage(img, imgBox)
	}
}

// truncate 截断到 n 个字符并追加省略号。
func truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
