package renderer

import (
	"context"
	"fmt"

	"github.com/ByLCY/bingo/card"
	"github.com/ByLCY/bingo/layout"
)

// Renderer 将条目与布局配置输出为最终文件，例如 PNG 预览或多页 PDF。
type Renderer interface {
	Render(ctx context.Context, items []card.Item, cfg layout.Config) ([]byte, error)
}

// Source 标识一页内容的来源。
type Source string

const (
	SourceVector      Source = "vector"
	SourceRaster      Source = "raster"
	SourcePlaceholder Source = "placeholder"
)

// SurfaceUnavailableError 表示无法创建绘制表面，本次渲染失败。
type SurfaceUnavailableError struct {
	Width  int
	Height int
	Cause  error
}

func (e *SurfaceUnavailableError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("无法创建 %dx%d 的绘制表面", e.Width, e.Height)
	}
	return fmt.Sprintf("无法创建 %dx%d 的绘制表面: %v", e.Width, e.Height, e.Cause)
}

func (e *SurfaceUnavailableError) Unwrap() error { return e.Cause }

// ImageLoadError 是单个条目图片的加载失败，只记录日志，单元格退化为无图显示。
type ImageLoadError struct {
	Ref   string
	Cause error
}

func (e *ImageLoadError) Error() string {
	return fmt.Sprintf("加载图片 %s 失败: %v", e.Ref, e.Cause)
}

func (e *ImageLoadError) Unwrap() error { return e.Cause }

// VectorRenderError 是单张卡片矢量渲染失败，由栅格回退接管。Card 从 0 开始。
type VectorRenderError struct {
	Card  int
	Cause error
}

func (e *VectorRenderError) Error() string {
	return fmt.Sprintf("第 %d 张卡片矢量渲染失败: %v", e.Card+1, e.Cause)
}

func (e *VectorRenderError) Unwrap() error { return e.Cause }

// ImageRefs 返回条目引用的去重图片地址，保持首次出现的顺序。
func ImageRefs(items []card.Item) []string {
	seen := make(map[string]struct{}, len(items))
	var refs []string
	for _, it := range items {
		if !it.HasImage() {
			continue
		}
		if _, ok := seen[it.Image]; ok {
			continue
		}
		seen[it.Image] = struct{}{}
		refs = append(refs, it.Image)
	}
	return refs
}
