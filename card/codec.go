package card

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// flag 按 1/0 序列化布尔值，读取时同时兼容 true/false。
type flag bool

func (f flag) MarshalJSON() ([]byte, error) {
	if f {
		return []byte("1"), nil
	}
	return []byte("0"), nil
}

func (f *flag) UnmarshalJSON(data []byte) error {
	switch string(bytes.TrimSpace(data)) {
	case "1", "true", `"1"`, `"true"`:
		*f = true
	case "0", "false", "null", `"0"`, `"false"`, `""`:
		*f = false
	default:
		return fmt.Errorf("无法识别的 selected 值 %s", data)
	}
	return nil
}

type itemRecord struct {
	Image    string `json:"image"`
	Text     string `json:"text"`
	Selected flag   `json:"selected"`
}

// DecodeItems 读取条目 JSON 数组。导入的条目不携带稳定身份，id 总是重新生成。
func DecodeItems(r io.Reader) ([]Item, error) {
	var records []itemRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("解析条目 JSON 失败: %w", err)
	}
	items := make([]Item, 0, len(records))
	for _, rec := range records {
		items = append(items, Item{
			ID:       uuid.NewString(),
			Text:     rec.Text,
			Image:    rec.Image,
			Selected: bool(rec.Selected),
		})
	}
	return items, nil
}

// EncodeItems 以 {image, text, selected} 数组写出条目，selected 写为 1/0。
func EncodeItems(w io.Writer, items []Item) error {
	records := make([]itemRecord, 0, len(items))
	for _, it := range items {
		records = append(records, itemRecord{Image: it.Image, Text: it.Text, Selected: flag(it.Selected)})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("写出条目 JSON 失败: %w", err)
	}
	return nil
}

// NewItem 创建一个新条目并分配唯一 id。
func NewItem(text, image string) Item {
	return Item{ID: uuid.NewString(), Text: text, Image: image, Selected: true}
}
