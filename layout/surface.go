package layout

import "image"

// Surface 是布局引擎的绘制目标。栅格与矢量后端各自实现，布局计算只依赖该接口。
// 每次调用都显式携带完整样式，实现不得依赖上一次调用遗留的状态。
type Surface interface {
	FillRect(r Rect, fill Fill)
	StrokeRect(r Rect, stroke Stroke)
	DrawImage(img image.Image, dst Rect) error
	DrawText(run TextRun) error
}

// ImageSet 保存预加载的条目图片，键为条目的图片引用。
// 加载失败的图片不会出现在集合中。
type ImageSet map[string]image.Image

// Lookup 查找引用对应的图片；空引用或加载失败时返回 false。
func (s ImageSet) Lookup(ref string) (image.Image, bool) {
	if ref == "" || s == nil {
		return nil, false
	}
	img, ok := s[ref]
	if !ok || img == nil {
		return nil, false
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, false
	}
	return img, true
}
