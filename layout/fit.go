package layout

import "image"

// FitRect 将 srcW×srcH 等比缩放到 box 内并居中：图片相对更宽时按宽度约束、垂直居中，
// 否则按高度约束、水平居中。不裁剪，不拉伸，允许放大。
func FitRect(srcW, srcH float64, box Rect) Rect {
	if srcW <= 0 || srcH <= 0 || box.Empty() {
		return Rect{X: box.X + box.Width/2, Y: box.Y + box.Height/2}
	}
	if srcW/srcH > box.Width/box.Height {
		h := box.Width * srcH / srcW
		return Rect{X: box.X, Y: box.Y + (box.Height-h)/2, Width: box.Width, Height: h}
	}
	w := box.Height * srcW / srcH
	return Rect{X: box.X + (box.Width-w)/2, Y: box.Y, Width: w, Height: box.Height}
}

// fitImage 按缩放模式计算图片目标矩形。scale-down 模式下不超过图片按 96 px/in 计算的自然尺寸。
func fitImage(img image.Image, box Rect, mode ImageScaling, scale float64) Rect {
	b := img.Bounds()
	srcW, srcH := float64(b.Dx()), float64(b.Dy())
	dst := FitRect(srcW, srcH, box)
	if mode != ScaleScaleDown {
		return dst
	}
	perPixel := MmPerInch / CSSPixelsPerInch * scale
	natW, natH := srcW*perPixel, srcH*perPixel
	if dst.Width <= natW {
		return dst
	}
	return Rect{
		X:      box.X + (box.Width-natW)/2,
		Y:      box.Y + (box.Height-natH)/2,
		Width:  natW,
		Height: natH,
	}
}
