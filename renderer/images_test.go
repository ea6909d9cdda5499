package renderer

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/ByLCY/bingo/card"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.NRGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestAssetLoaderSources(t *testing.T) {
	data := pngBytes(t, 4, 2)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cat.png"), data, 0o644))

	loader := NewAssetLoader(dir, map[string]Resource{"logo": {Bytes: data}})
	ctx := context.Background()

	refs := []string{
		"data:image/png;base64," + base64.StdEncoding.EncodeToString(data),
		"built-in:logo",
		"builtin:logo",
		"cat.png",
		filepath.Join(dir, "cat.png"),
	}
	for _, ref := range refs {
		img, err := loader.Load(ctx, ref)
		require.NoError(t, err, ref)
		assert.Equal(t, 4, img.Bounds().Dx(), ref)
		assert.Equal(t, 2, img.Bounds().Dy(), ref)
	}
}

func TestAssetLoaderFailures(t *testing.T) {
	ctx := context.Background()
	loader := NewAssetLoader("", nil)

	_, err := loader.Load(ctx, "relative.png")
	assert.Error(t, err, "relative paths need a base dir")

	_, err = loader.Load(ctx, "built-in:missing")
	assert.ErrorContains(t, err, "built-in:missing")

	_, err = loader.Load(ctx, "data:image/png;base64,!!!")
	assert.Error(t, err)

	_, err = loader.Load(ctx, "data:text/plain,not-an-image")
	assert.Error(t, err)
}

type fakeLoader struct {
	calls atomic.Int32
	fail  map[string]bool
}

func (f *fakeLoader) Load(_ context.Context, ref string) (image.Image, error) {
	f.calls.Add(1)
	if ref == "panic" {
		panic("decoder exploded")
	}
	if f.fail[ref] {
		return nil, errors.New("boom")
	}
	return image.NewRGBA(image.Rect(0, 0, 3, 3)), nil
}

func TestLoadImagesDegradesFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	loader := &fakeLoader{fail: map[string]bool{"b.png": true}}

	refs := []string{"a.png", "b.png", "c.png", "panic"}
	images := LoadImages(context.Background(), loader, refs, 2, zap.New(core))

	assert.Len(t, images, 2)
	assert.Contains(t, images, "a.png")
	assert.Contains(t, images, "c.png")
	assert.NotContains(t, images, "b.png")
	assert.EqualValues(t, 4, loader.calls.Load())

	entries := logs.All()
	require.Len(t, entries, 2)
	failed := map[any]bool{}
	for _, e := range entries {
		fields := e.ContextMap()
		failed[fields["ref"]] = true
		assert.NotEmpty(t, fields["error"])
	}
	assert.Equal(t, map[any]bool{"b.png": true, "panic": true}, failed)
}

func TestLoadImagesEmpty(t *testing.T) {
	assert.Empty(t, LoadImages(context.Background(), nil, []string{"a"}, 0, nil))
	assert.Empty(t, LoadImages(context.Background(), &fakeLoader{}, nil, 0, nil))
}

func TestImageRefsDeduplicates(t *testing.T) {
	items := []card.Item{
		{Text: "a", Image: "x.png"},
		{Text: "b"},
		{Text: "c", Image: "y.png"},
		{Text: "d", Image: "x.png"},
	}
	assert.Equal(t, []string{"x.png", "y.png"}, ImageRefs(items))
}

func TestErrorTypesUnwrap(t *testing.T) {
	cause := errors.New("cause")
	var err error = &VectorRenderError{Card: 2, Cause: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "第 3 张")

	err = &SurfaceUnavailableError{Width: 10, Height: 20, Cause: cause}
	var surfaceErr *SurfaceUnavailableError
	require.ErrorAs(t, err, &surfaceErr)
	assert.Equal(t, 10, surfaceErr.Width)

	err = &ImageLoadError{Ref: "a.png", Cause: cause}
	assert.ErrorIs(t, err, cause)
}
