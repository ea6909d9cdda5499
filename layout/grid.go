package layout

import "github.com/ByLCY/bingo/card"

// GridCells 将区域等分为 rows×cols 个单元格，按行优先顺序返回。
func GridCells(region Rect, rows, cols int) []Rect {
	rows, cols = max(rows, 1), max(cols, 1)
	cellW := region.Width / float64(cols)
	cellH := region.Height / float64(rows)
	cells := make([]Rect, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cells = append(cells, Rect{
				X:      region.X + float64(c)*cellW,
				Y:      region.Y + float64(r)*cellH,
				Width:  cellW,
				Height: cellH,
			})
		}
	}
	return cells
}

// BorderStroke 返回单元格边框样式；虚线与点线的线段长度随 scale 缩放。
func BorderStroke(t Table, scale float64) Stroke {
	st := Stroke{
		Color: resolveColor(t.BorderColor, Black),
		Width: t.BorderWidth * scale,
	}
	switch t.BorderStyle {
	case BorderDashed:
		st.Dashes = []float64{10 * scale / 2, 5 * scale / 2}
	case BorderDotted:
		st.Dashes = []float64{2 * scale / 2, 3 * scale / 2}
	}
	return st
}

// RenderGrid 按行优先顺序绘制网格：第 i 个条目占据第 i 个单元格。
// 条目不足时剩余单元格只绘制边框。
func RenderGrid(s Surface, cfg Config, scale float64, items []card.Item, region Rect, images ImageSet) error {
	cfg = cfg.Normalized()
	rows, cols := cfg.Grid()
	cells := GridCells(region, rows, cols)
	cr := NewCellRenderer(s, cfg, scale, images)
	stroke := BorderStroke(cfg.Table, scale)

	for i, cell := range cells {
		if cfg.Table.FillType == FillSolid {
			s.FillRect(cell, Solid(resolveColor(cfg.Table.FillColor, White)))
		}
		if i < len(items) {
			if err := cr.Render(cell, items[i]); err != nil {
				return err
			}
		}
		if stroke.Width > 0 {
			s.StrokeRect(cell, stroke)
		}
	}
	return nil
}
