package layout

import (
	"encoding/json"
	"os"
)

// Geometry 记录一次布局的各区段矩形，便于调试或可视化。
type Geometry struct {
	Scale   float64 `json:"scale"`
	Page    Rect    `json:"page"`
	Title   *Rect   `json:"title,omitempty"`
	Content Rect    `json:"content"`
	Footer  *Rect   `json:"footer,omitempty"`
	Cells   []Rect  `json:"cells"`
}

// ComputeGeometry 计算给定缩放下的页面分区与全部单元格，不做任何绘制。
func ComputeGeometry(cfg Config, scale float64) Geometry {
	cfg = cfg.Normalized()
	width := AvailableWidth(cfg, scale)
	g := Geometry{
		Scale:   scale,
		Page:    Rect{Width: cfg.Width * scale, Height: cfg.Height * scale},
		Content: ContentRegion(cfg, scale),
	}
	if cfg.Title.Show {
		g.Title = &Rect{X: cfg.Margins.Left * scale, Y: cfg.Margins.Top * scale, Width: width, Height: cfg.Title.Height * scale}
	}
	if cfg.Footer.Show {
		h := cfg.Footer.Height * scale
		g.Footer = &Rect{X: cfg.Margins.Left * scale, Y: cfg.Height*scale - cfg.Margins.Bottom*scale - h, Width: width, Height: h}
	}
	rows, cols := cfg.Grid()
	g.Cells = GridCells(g.Content, rows, cols)
	return g
}

// WriteDebugJSON 将布局几何输出为 JSON。
func WriteDebugJSON(g Geometry, path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
