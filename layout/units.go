package layout

import "strings"

// Unit 是配置中空间数值所使用的物理单位。
type Unit string

const (
	UnitMM   Unit = "mm"
	UnitCM   Unit = "cm"
	UnitInch Unit = "inch"
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm

	// CSSPixelsPerInch 是预览缩放的基准分辨率（96 px/in）。
	CSSPixelsPerInch = 96.0
	MmPerInch        = 25.4
)

// mmPerUnit 返回 1 个单位对应的毫米数；未知单位返回 false。
func mmPerUnit(u Unit) (float64, bool) {
	switch Unit(strings.ToLower(string(u))) {
	case UnitMM:
		return 1, true
	case UnitCM:
		return 10, true
	case UnitInch, "in":
		return MmPerInch, true
	default:
		return 0, false
	}
}

// Valid 表示单位是否可识别。
func (u Unit) Valid() bool {
	_, ok := mmPerUnit(u)
	return ok
}

// ConvertUnits 以毫米为中间单位换算长度。
// from == to 或任一单位无法识别时原样返回 value。
func ConvertUnits(value float64, from, to Unit) float64 {
	if from == to {
		return value
	}
	f, ok := mmPerUnit(from)
	if !ok {
		return value
	}
	t, ok := mmPerUnit(to)
	if !ok {
		return value
	}
	return value * f / t
}

// PaperSize 是纸张尺寸枚举。
type PaperSize string

const (
	PaperA4     PaperSize = "A4"
	PaperA3     PaperSize = "A3"
	PaperB5     PaperSize = "B5"
	PaperCustom PaperSize = "Custom"
)

// Orientation 是页面方向。
type Orientation string

const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// paperPresets 以毫米记录纵向纸张尺寸。
var paperPresets = map[PaperSize][2]float64{
	PaperA4: {210, 297},
	PaperA3: {297, 420},
	PaperB5: {176, 250},
}

// PaperSizeDimensions 返回纸张在给定方向下的宽高（mm）。
// 未知尺寸（包括 Custom）按 A4 处理。
func PaperSizeDimensions(size PaperSize, orientation Orientation) (width, height float64) {
	base, ok := paperPresets[PaperSize(strings.ToUpper(string(size)))]
	if !ok {
		base = paperPresets[PaperA4]
	}
	width, height = base[0], base[1]
	if orientation == Landscape {
		width, height = height, width
	}
	return width, height
}

// PtToSurface 将字号（pt）换算为表面单位；scale 为每毫米对应的表面单位数。
func PtToSurface(pt, scale float64) float64 { return pt * PtToMm * scale }
