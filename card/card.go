package card

import (
	"fmt"
	"math/rand/v2"
)

// Item 是条目池中的一个条目（文字 + 可选图片）。
// 渲染期间条目视为只读值，id 在创建时分配且不会复用。
type Item struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Image     string `json:"image,omitempty"`
	Selected  bool   `json:"selected"`
	FileCheck *bool  `json:"fileCheck,omitempty"`
}

// HasImage 表示条目是否引用了图片。
func (it Item) HasImage() bool { return it.Image != "" }

// Instance 是一张卡片的具体排布：按行优先顺序依次对应网格单元格。
type Instance []Item

// InsufficientItemsError 表示已选条目少于每张卡片所需的单元格数量。
// 这是可由用户修正的前置条件，调用方应直接展示，不应自动重试。
type InsufficientItemsError struct {
	Required int
	Selected int
}

func (e *InsufficientItemsError) Error() string {
	return fmt.Sprintf("已选条目不足：每张卡片需要 %d 个条目，当前仅选中 %d 个", e.Required, e.Selected)
}

// Selected 返回池中 selected 为 true 的条目副本，保持原有顺序。
func Selected(pool []Item) []Item {
	out := make([]Item, 0, len(pool))
	for _, it := range pool {
		if it.Selected {
			out = append(out, it)
		}
	}
	return out
}

// Compose 为 numberOfCards 张卡片各自生成一个排布。
// 每张卡片都对全部已选条目做一次独立的均匀洗牌，并截取前 cellsPerCard 个。
// 不保证多张卡片两两不同。rng 为空时使用随机种子。
func Compose(pool []Item, cellsPerCard, numberOfCards int, rng *rand.Rand) ([]Instance, error) {
	selected := Selected(pool)
	if len(selected) < cellsPerCard {
		return nil, &InsufficientItemsError{Required: cellsPerCard, Selected: len(selected)}
	}
	if cellsPerCard < 0 {
		cellsPerCard = 0
	}
	if numberOfCards <= 0 {
		return []Instance{}, nil
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	cards := make([]Instance, 0, numberOfCards)
	for i := 0; i < numberOfCards; i++ {
		perm := make([]Item, len(selected))
		copy(perm, selected)
		rng.Shuffle(len(perm), func(a, b int) { perm[a], perm[b] = perm[b], perm[a] })
		cards = append(cards, Instance(perm[:cellsPerCard:cellsPerCard]))
	}
	return cards, nil
}

// Seeded 返回一个可复现的随机源；同一 seed 与 stream 总是得到同一序列。
func Seeded(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}
