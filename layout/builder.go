package layout

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ByLCY/wordsdisplay/binding"
	"github.com/ByLCY/wordsdisplay/dsl"
)

// 与原始视图一致的默认值：16sp 字号、4dp 行距。
const (
	defaultFontSize = "16sp"
	defaultLineGap  = "4dp"
	defaultWidth    = "360dp"
	defaultFont     = "builtin:go-regular"
)

// Style 是解析后的样式：一份 Engine 配置加上字体信息。
type Style struct {
	Config   Config
	Font     FontResource
	FontSize float64
}

// Build 根据 DSL AST 为每个 text 段落创建 Engine 并完成排版。
func Build(doc *dsl.Document, data any, opts BuildOptions) (*Result, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档为空")
	}
	if opts.Typesetter == nil {
		return nil, fmt.Errorf("layout: 缺少排版后端 Typesetter")
	}
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	style, err := ResolveStyle(mergeProps(opts.Defaults, doc.StyleProps()), opts.Unit, opts.Metrics)
	if err != nil {
		return nil, err
	}
	measurer, err := opts.Typesetter.Measurer(style.Font, style.FontSize)
	if err != nil {
		return nil, fmt.Errorf("创建测量器失败: %w", err)
	}

	res := &Result{
		Font:     style.Font,
		FontSize: style.FontSize,
		Meta:     collectMeta(doc),
	}
	for i, passage := range doc.Passages() {
		name := passage.Name
		if name == "" {
			name = "#" + strconv.Itoa(i+1)
		}
		block, err := buildBlock(name, passage, data, style, measurer, logger, opts)
		if err != nil {
			return nil, err
		}
		res.Blocks = append(res.Blocks, block)
	}
	return res, nil
}

func buildBlock(name string, passage *dsl.TextSection, data any, style Style, m Measurer, logger zerolog.Logger, opts BuildOptions) (Block, error) {
	text := string(passage.Content)
	phrases := passage.Phrases()
	if data != nil {
		for _, path := range binding.Unresolved(text+" "+strings.Join(phrases, " "), data) {
			logger.Warn().Str("passage", name).Str("path", path).Msg("占位符没有对应的数据")
		}
		text = binding.Interpolate(text, data)
		phrases = binding.InterpolateAll(phrases, data)
	}

	blockLogger := logger.With().Str("passage", name).Logger()
	engine, err := NewEngine(style.Config, m, WithLogger(blockLogger), WithDebugWidths(opts.Debug.Widths))
	if err != nil {
		return Block{}, err
	}
	block := Block{Name: passage.Name, Text: text, Highlights: phrases}
	block.Layout, err = engine.SetDisplayedText(text, phrases)
	if err != nil {
		if opts.Lenient && errors.Is(err, ErrUnplaceableSegment) {
			block.Err = err
			return block, nil
		}
		return Block{}, fmt.Errorf("段落 %s: %w", name, err)
	}
	return block, nil
}

// ResolveStyle 将样式属性解析为 Engine 配置，长度换算到 unit。
func ResolveStyle(props map[string]string, unit Unit, metrics DisplayMetrics) (Style, error) {
	get := func(key, def string) string {
		if v := strings.TrimSpace(props[key]); v != "" {
			return v
		}
		return def
	}
	var errs []error
	length := func(key, def string) float64 {
		l, err := ParseLength(get(key, def))
		if err != nil {
			errs = append(errs, fmt.Errorf("样式 %s 的值 %q 无法解析: %w", key, props[key], err))
			return 0
		}
		return l.To(unit, metrics)
	}

	cfg := Config{
		Width:      length("width", defaultWidth),
		Height:     length("height", "0"),
		WordHeight: length("word-height", "0"),
		GapWidth:   length("gap", "0"),
		LineGap:    length("line-gap", defaultLineGap),
		Palette:    DefaultPalette(),
	}
	mode, err := ParseHeightMode(props["height-mode"])
	if err != nil {
		errs = append(errs, err)
	}
	cfg.HeightMode = mode

	padding, err := resolvePadding(props, unit, metrics)
	if err != nil {
		errs = append(errs, err)
	}
	cfg.Padding = padding

	switch p := props["punctuation"]; p {
	case "":
	case "none", "keep":
		cfg.KeepWordPunctuation = true
	default:
		cfg.AttachedPunctuation = p
	}

	if v := props["color"]; v != "" {
		if c, err := ParseColor(v); err == nil {
			cfg.Palette.Default = c
		} else {
			errs = append(errs, err)
		}
	}
	if v := props["highlight-color"]; v != "" {
		if c, err := ParseColor(v); err == nil {
			cfg.Palette.Highlight = c
		} else {
			errs = append(errs, err)
		}
	}

	style := Style{
		Config:   cfg,
		FontSize: length("size", defaultFontSize),
		Font: FontResource{
			Name:  get("font", "Body"),
			Src:   get("font-src", defaultFont),
			Style: props["font-style"],
		},
	}
	if style.FontSize <= 0 {
		errs = append(errs, fmt.Errorf("字号 %g 必须大于 0", style.FontSize))
	}
	if err := errors.Join(errs...); err != nil {
		return Style{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return style, nil
}

// resolvePadding 支持 CSS 式的 1~4 个值，再由 padding-left 等单边属性覆盖。
func resolvePadding(props map[string]string, unit Unit, metrics DisplayMetrics) (Padding, error) {
	var vals []float64
	for _, f := range strings.Fields(props["padding"]) {
		l, err := ParseLength(f)
		if err != nil {
			return Padding{}, fmt.Errorf("padding 的值 %q 无法解析: %w", f, err)
		}
		vals = append(vals, l.To(unit, metrics))
	}
	var p Padding
	switch len(vals) {
	case 0:
	case 1:
		p = Padding{Top: vals[0], Right: vals[0], Bottom: vals[0], Left: vals[0]}
	case 2:
		p = Padding{Top: vals[0], Right: vals[1], Bottom: vals[0], Left: vals[1]}
	case 3:
		p = Padding{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[1]}
	default:
		p = Padding{Top: vals[0], Right: vals[1], Bottom: vals[2], Left: vals[3]}
	}
	sides := []struct {
		key string
		dst *float64
	}{
		{"padding-left", &p.Left},
		{"padding-right", &p.Right},
		{"padding-top", &p.Top},
		{"padding-bottom", &p.Bottom},
	}
	for _, side := range sides {
		v := props[side.key]
		if v == "" {
			continue
		}
		l, err := ParseLength(v)
		if err != nil {
			return Padding{}, fmt.Errorf("%s 的值 %q 无法解析: %w", side.key, v, err)
		}
		*side.dst = l.To(unit, metrics)
	}
	return p, nil
}

func mergeProps(layers ...map[string]string) map[string]string {
	out := map[string]string{}
	for _, layer := range layers {
		for k, v := range layer {
			out[k] = v
		}
	}
	return out
}

func collectMeta(doc *dsl.Document) DocumentMeta {
	props := doc.MetaProps()
	meta := DocumentMeta{
		Title:   props["title"],
		Author:  props["author"],
		Subject: props["subject"],
		Creator: props["creator"],
	}
	if meta.Creator == "" {
		meta.Creator = "WordsDisplay"
	}
	return meta
}

var namedColors = map[string]Color{
	"black": Black,
	"red":   Red,
	"white": {R: 255, G: 255, B: 255},
	"gray":  {R: 128, G: 128, B: 128},
	"blue":  {B: 255},
	"green": {G: 128},
}

// ParseColor 解析 #RGB、#RRGGBB、#RRGGBBAA（忽略透明度）或常见颜色名。
func ParseColor(value string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if c, ok := namedColors[v]; ok {
		return c, nil
	}
	hex := "#" + strings.TrimPrefix(v, "#")
	if len(hex) == 9 {
		hex = hex[:7]
	}
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("颜色值 %s 无法解析: %w", value, err)
	}
	r, g, b := c.RGB255()
	return Color{R: int(r), G: int(g), B: int(b)}, nil
}
