package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ByLCY/wordsdisplay/config"
	"github.com/ByLCY/wordsdisplay/dsl"
	"github.com/ByLCY/wordsdisplay/layout"
	"github.com/ByLCY/wordsdisplay/renderer"
	canvasrenderer "github.com/ByLCY/wordsdisplay/renderer/canvas"
	termrenderer "github.com/ByLCY/wordsdisplay/renderer/term"
)

// termDefaults 是 term 格式下配置文件未覆盖时使用的样式。
var termDefaults = map[string]string{"width": "80", "line-gap": "0"}

// options 汇总命令行参数。
type options struct {
	input    string
	output   string
	format   string
	config   string
	debug    string
	data     string
	width    string
	logLevel string
	lenient  bool
	plain    bool
}

func main() {
	var opts options
	flag.StringVar(&opts.input, "in", "examples/demo.words", "DSL 文件路径")
	flag.StringVar(&opts.output, "out", "", "输出路径（pdf 默认 output/<文件名>.pdf，term 默认标准输出）")
	flag.StringVar(&opts.format, "format", "pdf", "输出格式：pdf 或 term")
	flag.StringVar(&opts.config, "config", "", "TOML 配置文件路径")
	flag.StringVar(&opts.debug, "debug", "", "布局调试 JSON 输出路径")
	flag.StringVar(&opts.data, "data", "", "绑定到 DSL 的 JSON 数据")
	flag.StringVar(&opts.width, "width", "", "覆盖视口宽度，例如 90mm 或 80（term 以单元格计）")
	flag.StringVar(&opts.logLevel, "log-level", "", "日志级别，覆盖配置文件")
	flag.BoolVar(&opts.lenient, "lenient", false, "单个段落排版失败时继续处理其余段落")
	flag.BoolVar(&opts.plain, "plain", false, "term 格式下不输出颜色")
	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).With().Timestamp().Logger()

	if err := run(opts, os.Stdout); err != nil {
		log.Fatal().Err(err).Str("in", opts.input).Msg("生成失败")
	}
}

// run 串联配置、解析、布局与渲染。
func run(opts options, stdout io.Writer) error {
	cfg, err := config.Load(opts.config)
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	level := cfg.Log.LevelOrDefault()
	if opts.logLevel != "" {
		if level, err = zerolog.ParseLevel(opts.logLevel); err != nil {
			return fmt.Errorf("日志级别 %q 无法解析: %w", opts.logLevel, err)
		}
	}
	logger := log.Logger.Level(level)

	var inputData any
	if opts.data != "" {
		if err := json.Unmarshal([]byte(opts.data), &inputData); err != nil {
			return fmt.Errorf("解析 data JSON 失败: %w", err)
		}
	}

	backend, err := newBackend(opts, &logger)
	if err != nil {
		return err
	}

	defaults, err := cfg.StyleProps()
	if err != nil {
		return err
	}
	if opts.format == "term" {
		// 终端以单元格为单位：配置未给出的宽度与行距使用终端默认值
		for k, v := range termDefaults {
			if _, ok := defaults[k]; !ok {
				defaults[k] = v
				logger.Debug().Str("key", k).Str("value", v).Msg("使用终端默认样式")
			}
		}
	}
	// -width 优先于文档样式
	override := map[string]string{}
	if opts.width != "" {
		override["width"] = opts.width
	}

	file, err := os.Open(opts.input)
	if err != nil {
		return fmt.Errorf("无法打开 DSL 文件 %s: %w", opts.input, err)
	}
	defer file.Close()

	doc, err := dsl.Parse(file)
	if err != nil {
		return fmt.Errorf("解析 DSL 失败: %w", err)
	}
	if len(override) > 0 {
		doc.Sections = append(doc.Sections, styleSection(override))
	}

	result, err := layout.Build(doc, inputData, layout.BuildOptions{
		Typesetter: backend,
		Defaults:   defaults,
		Unit:       backend.Unit(),
		Metrics:    cfg.Display,
		Lenient:    opts.lenient,
		Logger:     &logger,
		Debug:      layout.DebugOptions{Widths: opts.debug != ""},
	})
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}
	logger.Info().Int("passages", len(result.Blocks)).Msg("排版完成")

	if opts.debug != "" {
		if err := writeDebug(result, opts.debug); err != nil {
			return err
		}
	}

	out, err := backend.Render(result)
	if err != nil {
		return fmt.Errorf("渲染失败: %w", err)
	}
	return writeOutput(opts, out, stdout, &logger)
}

func newBackend(opts options, logger *zerolog.Logger) (renderer.Backend, error) {
	switch opts.format {
	case "pdf", "":
		return canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
			BaseDir: filepath.Dir(opts.input),
			Logger:  logger,
		}), nil
	case "term":
		return termrenderer.NewRenderer(termrenderer.Options{Plain: opts.plain, Logger: logger}), nil
	default:
		return nil, fmt.Errorf("未知的输出格式：%s", opts.format)
	}
}

// styleSection 把命令行覆盖项包装成一个追加在文档末尾的 style 段。
func styleSection(props map[string]string) *dsl.Section {
	block := &dsl.Block{}
	for k, v := range props {
		s := dsl.StringLiteral(v)
		block.Assignments = append(block.Assignments, &dsl.Assignment{Key: k, Value: &dsl.Value{String: &s}})
	}
	return &dsl.Section{Style: &dsl.StyleSection{Block: block}}
}

func writeOutput(opts options, out []byte, stdout io.Writer, logger *zerolog.Logger) error {
	path := opts.output
	if path == "" && opts.format == "term" {
		_, err := stdout.Write(out)
		return err
	}
	if path == "" {
		base := filepath.Base(opts.input)
		path = filepath.Join("output", base[:len(base)-len(filepath.Ext(base))]+".pdf")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("写入输出文件失败: %w", err)
	}
	logger.Info().Str("out", path).Int("bytes", len(out)).Msg("已生成")
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}
