package renderer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/ByLCY/bingo/layout"
)

// DefaultConcurrency 是同时进行的图片加载数量上限。
const DefaultConcurrency = 8

// ImageLoader 根据条目的图片地址取得解码后的图片。
type ImageLoader interface {
	Load(ctx context.Context, ref string) (image.Image, error)
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// AssetLoader 支持三种图片地址：
//   - data:image/png;base64,... 内联数据
//   - built-in:<name> 通过 Images 注入的资源
//   - 普通路径，相对路径基于 BaseDir 解析
type AssetLoader struct {
	baseDir string
	blobs   map[string][]byte
}

var _ ImageLoader = (*AssetLoader)(nil)

// NewAssetLoader 创建图片加载器。Path 形式的注入资源在创建时读取，读取失败的资源视为不存在。
func NewAssetLoader(baseDir string, images map[string]Resource) *AssetLoader {
	l := &AssetLoader{baseDir: baseDir, blobs: map[string][]byte{}}
	for name, res := range images {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			l.blobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, _ := os.ReadFile(res.Path) // 使用时再报告缺失
			if len(data) > 0 {
				l.blobs[name] = data
			}
		}
	}
	return l
}

// Load 读取并解码图片；JPEG 会按 EXIF 方向自动旋转。
func (l *AssetLoader) Load(ctx context.Context, ref string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case strings.HasPrefix(ref, "data:"):
		data, err := decodeDataURI(ref)
		if err != nil {
			return nil, err
		}
		return decode(bytes.NewReader(data))
	case strings.HasPrefix(ref, "built-in:") || strings.HasPrefix(ref, "builtin:"):
		name := strings.TrimPrefix(strings.TrimPrefix(ref, "built-in:"), "builtin:")
		blob, ok := l.blobs[name]
		if !ok {
			return nil, fmt.Errorf("找不到内置图片资源 built-in:%s", name)
		}
		return decode(bytes.NewReader(blob))
	}

	path := ref
	if l.baseDir == "" && !filepath.IsAbs(path) {
		return nil, fmt.Errorf("未指定资源目录时不允许直接使用相对路径：%s", ref)
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(l.baseDir, path)
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return decode(file)
}

func decode(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("解码图片失败: %w", err)
	}
	return img, nil
}

// decodeDataURI 解析 data:[<mediatype>][;base64],<data>。
func decodeDataURI(uri string) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return nil, errors.New("data URI 缺少数据部分")
	}
	if strings.HasSuffix(meta, ";base64") {
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data URI base64 解码失败: %w", err)
		}
		return data, nil
	}
	data, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data URI 解码失败: %w", err)
	}
	return []byte(data), nil
}

// LoadImages 并发加载全部图片并等待完成后返回。
// 单个加载失败只记录日志，对应地址不会出现在结果中；结果与完成顺序无关。
func LoadImages(ctx context.Context, loader ImageLoader, refs []string, concurrency int, log *zap.Logger) layout.ImageSet {
	images := layout.ImageSet{}
	if loader == nil || len(refs) == 0 {
		return images
	}
	if log == nil {
		log = zap.NewNop()
	}
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	loaded := make([]image.Image, len(refs))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, ref := range refs {
		g.Go(func() error {
			img, err := loadOne(ctx, loader, ref)
			if err != nil {
				log.Warn("图片加载失败，单元格将仅显示文字",
					zap.String("ref", abbreviate(ref)),
					zap.Error(&ImageLoadError{Ref: abbreviate(ref), Cause: err}))
				return nil
			}
			loaded[i] = img
			return nil
		})
	}
	_ = g.Wait() // 每个任务都自行处理错误

	for i, img := range loaded {
		if img != nil {
			images[refs[i]] = img
		}
	}
	return images
}

func loadOne(ctx context.Context, loader ImageLoader, ref string) (img image.Image, err error) {
	defer func() {
		if p := recover(); p != nil {
			img, err = nil, fmt.Errorf("panic: %v", p)
		}
	}()
	return loader.Load(ctx, ref)
}

// abbreviate 截短 data URI，避免把整段图片数据写进日志。
func abbreviate(ref string) string {
	const limit = 64
	if len(ref) <= limit {
		return ref
	}
	return ref[:limit] + "..."
}
