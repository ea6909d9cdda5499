// Package fonts 提供内置字体数据，并把 CSS 风格的字体族名称映射到可用字体。
package fonts

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-fonts/latin-modern/lmroman10regular"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// 内置字体族名称。
const (
	SansSerif = "sans-serif"
	Serif     = "serif"
	Monospace = "monospace"
)

var aliases = map[string]string{
	"sans-serif":      SansSerif,
	"sans":            SansSerif,
	"go":              SansSerif,
	"arial":           SansSerif,
	"helvetica":       SansSerif,
	"system-ui":       SansSerif,
	"serif":           Serif,
	"times":           Serif,
	"times new roman": Serif,
	"georgia":         Serif,
	"latin modern":    Serif,
	"monospace":       Monospace,
	"mono":            Monospace,
	"courier":         Monospace,
	"courier new":     Monospace,
	"go mono":         Monospace,
}

var blobs = map[string][]byte{
	SansSerif: goregular.TTF,
	Serif:     lmroman10regular.TTF,
	Monospace: gomono.TTF,
}

// Resolve 将 "Georgia, serif" 这类逗号分隔的族列表解析为内置字体族，
// 依次尝试每一项，均无法识别时回退到 sans-serif。
func Resolve(family string) string {
	for _, name := range strings.Split(family, ",") {
		name = strings.ToLower(strings.Trim(strings.TrimSpace(name), `"'`))
		if resolved, ok := aliases[name]; ok {
			return resolved
		}
	}
	return SansSerif
}

// Load 返回字体族对应的 TTF 字节。
func Load(family string) []byte {
	return blobs[Resolve(family)]
}

var (
	parseMu sync.Mutex
	parsed  = map[string]*opentype.Font{}
)

// Parse 返回解析后的字体，同一字体族只解析一次。
func Parse(family string) (*opentype.Font, error) {
	key := Resolve(family)
	parseMu.Lock()
	defer parseMu.Unlock()
	if f, ok := parsed[key]; ok {
		return f, nil
	}
	f, err := opentype.Parse(blobs[key])
	if err != nil {
		return nil, fmt.Errorf("解析内置字体 %s 失败: %w", key, err)
	}
	parsed[key] = f
	return f, nil
}
