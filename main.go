package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/ByLCY/bingo/card"
	"github.com/ByLCY/bingo/internal/appconfig"
	"github.com/ByLCY/bingo/internal/logger"
	"github.com/ByLCY/bingo/layout"
	"github.com/ByLCY/bingo/renderer"
	canvasrenderer "github.com/ByLCY/bingo/renderer/canvas"
	rasterrenderer "github.com/ByLCY/bingo/renderer/raster"
)

// options 是一次命令行调用的输入输出参数。
type options struct {
	configPath  string
	itemsPath   string
	outPath     string
	previewPath string
	debugPath   string
	cards       int
	cardIndex   int
}

func main() {
	var (
		opts      options
		appConfig string
	)
	flags := pflag.NewFlagSet("bingo", pflag.ExitOnError)
	flags.StringVarP(&opts.configPath, "config", "c", "", "Layout configuration JSON (defaults when empty)")
	flags.StringVarP(&opts.itemsPath, "items", "i", "items.json", "Item list JSON")
	flags.StringVarP(&opts.outPath, "out", "o", "", "PDF output path")
	flags.StringVarP(&opts.previewPath, "preview", "p", "", "PNG preview output path")
	flags.StringVar(&opts.debugPath, "debug", "", "Layout geometry JSON output path")
	flags.IntVarP(&opts.cards, "cards", "n", 0, "Number of cards in the PDF (0 uses export.numberOfCards)")
	flags.IntVar(&opts.cardIndex, "card-index", 0, "Card index shown in the preview")
	flags.StringVar(&appConfig, "app-config", "", "Application settings file (bingo.toml)")
	appconfig.RegisterFlags(flags)
	flags.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: bingo --items items.json [--config layout.json] [--out cards.pdf] [--preview card.png]\n\nFlags:\n")
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	settings, err := appconfig.Load(appConfig, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取运行配置失败: %v\n", err)
		os.Exit(2)
	}
	log, err := logger.New(settings.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(2)
	}
	defer func() { _ = log.Sync() }()

	if err := run(context.Background(), opts, settings, log); err != nil {
		var insufficient *card.InsufficientItemsError
		var surface *renderer.SurfaceUnavailableError
		switch {
		case errors.As(err, &insufficient):
			fmt.Fprintln(os.Stderr, insufficient.Error())
		case errors.As(err, &surface):
			fmt.Fprintln(os.Stderr, "预览不可用，请降低分辨率或检查页面尺寸")
		}
		log.Error("生成失败", zap.Error(err))
		os.Exit(1)
	}
}

// run 串联读取配置、条目与渲染。
func run(ctx context.Context, opts options, settings *appconfig.Config, log *zap.Logger) error {
	if opts.previewPath == "" && opts.outPath == "" && opts.debugPath == "" {
		return errors.New("至少需要指定 --out、--preview 或 --debug 之一")
	}
	cfg, err := loadLayout(opts.configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("布局配置无效: %w", err)
	}
	items, err := loadItems(opts.itemsPath)
	if err != nil {
		return err
	}

	baseDir := settings.Assets.BaseDir
	if baseDir == "" {
		baseDir = filepath.Dir(opts.itemsPath)
	}
	loader := renderer.NewAssetLoader(baseDir, nil)

	if opts.debugPath != "" {
		g := layout.ComputeGeometry(cfg, 1)
		if err := writeFile(opts.debugPath, nil, func(path string) error { return layout.WriteDebugJSON(g, path) }); err != nil {
			return fmt.Errorf("输出调试 JSON 失败: %w", err)
		}
	}

	if opts.previewPath != "" {
		r := rasterrenderer.New(rasterrenderer.Options{
			Loader:      loader,
			Logger:      log,
			Seed:        settings.Render.Seed,
			Concurrency: settings.Render.Concurrency,
			DPI:         settings.Render.DPI,
		})
		preview, err := r.RenderPreview(ctx, items, cfg, opts.cardIndex, settings.Render.DPI)
		if err != nil {
			return fmt.Errorf("生成预览失败: %w", err)
		}
		if err := writeFile(opts.previewPath, preview.PNG, nil); err != nil {
			return err
		}
		log.Info("已生成预览", zap.String("path", opts.previewPath), zap.Int("width", preview.Width), zap.Int("height", preview.Height))
	}

	if opts.outPath != "" {
		n := opts.cards
		if n <= 0 {
			n = cfg.Export.NumberOfCards
		}
		r := canvasrenderer.New(canvasrenderer.Options{
			Loader:      loader,
			Logger:      log,
			Seed:        settings.Render.Seed,
			Concurrency: settings.Render.Concurrency,
		})
		res, err := r.BuildDocument(ctx, items, cfg, n)
		if err != nil {
			return fmt.Errorf("生成 PDF 失败: %w", err)
		}
		if err := writeFile(opts.outPath, res.PDF, nil); err != nil {
			return err
		}
		log.Info("已生成 PDF", zap.String("path", opts.outPath), zap.Int("pages", len(res.Pages)))
	}
	return nil
}

func loadLayout(path string) (layout.Config, error) {
	if path == "" {
		return layout.DefaultConfig(), nil
	}
	file, err := os.Open(path)
	if err != nil {
		return layout.Config{}, fmt.Errorf("无法打开布局配置 %s: %w", path, err)
	}
	defer file.Close()
	return layout.DecodeConfig(file)
}

func loadItems(path string) ([]card.Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开条目文件 %s: %w", path, err)
	}
	defer file.Close()
	return card.DecodeItems(file)
}

// writeFile 创建父目录后写出 data；write 非空时由它负责写文件。
func writeFile(path string, data []byte, write func(string) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if write != nil {
		return write(path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件 %s 失败: %w", path, err)
	}
	return nil
}
