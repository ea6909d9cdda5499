// Package appconfig 读取命令行程序的运行配置。
//
// 优先级（从高到低）：
//  1. 命令行参数
//  2. BINGO_ 前缀的环境变量（如 BINGO_RENDER_DPI）
//  3. bingo.toml
//  4. 内置默认值
package appconfig

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ByLCY/bingo/internal/logger"
)

// Config 是运行配置。
type Config struct {
	Log    logger.Config
	Render RenderConfig
	Assets AssetsConfig
}

// RenderConfig 控制渲染参数。
type RenderConfig struct {
	DPI         float64 // 预览分辨率
	Seed        uint64  // 0 表示随机组卡
	Concurrency int     // 同时加载的图片数量
}

// AssetsConfig 控制图片资源的解析。
type AssetsConfig struct {
	BaseDir string
}

// flagKeys 将命令行参数名映射到配置键。
var flagKeys = map[string]string{
	"log-level":   "log.level",
	"log-format":  "log.format",
	"log-output":  "log.output",
	"dpi":         "render.dpi",
	"seed":        "render.seed",
	"concurrency": "render.concurrency",
	"base-dir":    "assets.base_dir",
}

func setDefaults(v *viper.Viper) {
	d := logger.DefaultConfig()
	v.SetDefault("log.level", d.Level)
	v.SetDefault("log.format", d.Format)
	v.SetDefault("log.output", d.Output)
	v.SetDefault("render.dpi", 300)
	v.SetDefault("render.seed", 0)
	v.SetDefault("render.concurrency", 8)
	v.SetDefault("assets.base_dir", "")
}

// RegisterFlags 注册与配置键对应的命令行参数。
func RegisterFlags(flags *pflag.FlagSet) {
	d := logger.DefaultConfig()
	flags.String("log-level", d.Level, "Log level: debug|info|warn|error")
	flags.String("log-format", d.Format, "Log format: console|json")
	flags.String("log-output", d.Output, "Log output: stdout|stderr|<file>")
	flags.Float64("dpi", 300, "Preview resolution in dots per inch")
	flags.Uint64("seed", 0, "Shuffle seed (0 = random)")
	flags.Int("concurrency", 8, "Image loads in flight")
	flags.String("base-dir", "", "Directory used to resolve relative image paths")
}

// Load 读取配置。configFile 为空时在当前目录查找可选的 bingo.toml；
// 显式指定的文件必须存在。flags 可以为 nil。
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("bingo")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("读取配置文件失败: %w", err)
		}
	}

	v.SetEnvPrefix("BINGO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("绑定参数 --%s 失败: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		Log: logger.Config{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Render: RenderConfig{
			DPI:         v.GetFloat64("render.dpi"),
			Seed:        v.GetUint64("render.seed"),
			Concurrency: v.GetInt("render.concurrency"),
		},
		Assets: AssetsConfig{
			BaseDir: v.GetString("assets.base_dir"),
		},
	}
	return cfg, cfg.Validate()
}

// Validate 检查数值范围。
func (c *Config) Validate() error {
	var errs []error
	if c.Render.DPI <= 0 {
		errs = append(errs, fmt.Errorf("render.dpi 必须为正数，当前为 %g", c.Render.DPI))
	}
	if c.Render.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("render.concurrency 必须 ≥ 1，当前为 %d", c.Render.Concurrency))
	}
	return errors.Join(errs...)
}
