package layout

import "github.com/ByLCY/bingo/binding"

// Vars 是渲染单张卡片时带文字中可引用的变量：${card.number} 与 ${card.total}。
type Vars struct {
	Number int // 从 1 开始；0 表示未知
	Total  int
}

func (v Vars) expand(text string) string {
	if v.Number <= 0 {
		return text
	}
	card := map[string]any{"number": v.Number}
	if v.Total > 0 {
		card["total"] = v.Total
	}
	return binding.Interpolate(text, map[string]any{"card": card})
}
