package layout

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/ByLCY/wordsdisplay/dsl"
)

// stubTypesetter 是一个最小实现，仅用于测试，避免引入 renderer 造成循环依赖。
type stubTypesetter struct {
	font FontResource
	size float64
}

func (s *stubTypesetter) Measurer(font FontResource, fontSize float64) (Measurer, error) {
	s.font, s.size = font, fontSize
	return &fixedMeasurer{char: 10, height: 12}, nil
}

func buildDSL(t *testing.T, dslText string, data any, opts BuildOptions) (*Result, error) {
	t.Helper()
	doc, err := dsl.Parse(strings.NewReader(dslText))
	if err != nil {
		t.Fatalf("解析 DSL 失败: %v", err)
	}
	if opts.Typesetter == nil {
		opts.Typesetter = &stubTypesetter{}
	}
	nop := zerolog.Nop()
	opts.Logger = &nop
	return Build(doc, data, opts)
}

const buildSample = `
words Demo v1 {
  meta { title: "Demo" }
  style { width: 200; line-gap: 2; padding: 5; size: 14 }
  text intro "the cat sat." {
    highlight "cat"
  }
  text "Hello, ${user.name}!" {
    highlight "${user.name}"
  }
}
`

func TestBuildPassages(t *testing.T) {
	var data any
	if err := json.Unmarshal([]byte(`{"user":{"name":"Ada"}}`), &data); err != nil {
		t.Fatalf("decode: %v", err)
	}
	ts := &stubTypesetter{}
	res, err := buildDSL(t, buildSample, data, BuildOptions{Typesetter: ts})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	if len(res.Blocks) != 2 {
		t.Fatalf("期望 2 个段落，实际 %d", len(res.Blocks))
	}
	if ts.size != 14 || res.FontSize != 14 {
		t.Fatalf("字号未传给排版后端: %g", ts.size)
	}
	if ts.font.Src != defaultFont {
		t.Fatalf("默认字体错误: %+v", ts.font)
	}
	if res.Meta.Title != "Demo" || res.Meta.Creator != "WordsDisplay" {
		t.Fatalf("元信息错误: %+v", res.Meta)
	}

	intro := res.Blocks[0]
	if intro.Name != "intro" {
		t.Fatalf("段落名错误: %q", intro.Name)
	}
	assertSegments(t, intro.Layout.Segments, []seg{
		{0, "the", false}, {4, "cat", true}, {8, "sat", false}, {11, ".", false},
	})
	first := intro.Layout.Segments[0].Position
	if first.X != 5 || first.Y != 17 {
		t.Fatalf("留白未生效: %+v", *first)
	}

	hello := res.Blocks[1]
	if hello.Text != "Hello, Ada!" || len(hello.Highlights) != 1 || hello.Highlights[0] != "Ada" {
		t.Fatalf("占位符未替换: %q %v", hello.Text, hello.Highlights)
	}
	assertSegments(t, hello.Layout.Segments, []seg{
		{0, "Hello", false}, {5, ",", false}, {7, "Ada", true}, {10, "!", false},
	})
}

func TestBuildDefaultsAreOverriddenByDocument(t *testing.T) {
	res, err := buildDSL(t, buildSample, nil, BuildOptions{
		Defaults: map[string]string{"width": "999", "highlight-color": "blue"},
	})
	if err != nil {
		t.Fatalf("布局计算失败: %v", err)
	}
	l := res.Blocks[0].Layout
	if l.Width != 200 {
		t.Fatalf("文档样式应覆盖默认值，width=%g", l.Width)
	}
	if l.Palette.Highlight != (Color{B: 255}) {
		t.Fatalf("默认高亮色未生效: %+v", l.Palette)
	}
	// 没有数据时占位符原样保留
	if res.Blocks[1].Text != "Hello, ${user.name}!" {
		t.Fatalf("无数据时不应替换: %q", res.Blocks[1].Text)
	}
}

func TestBuildUnplaceable(t *testing.T) {
	src := `words Narrow { style { width: 50 } text "a extraordinary b" text "ok" }`
	if _, err := buildDSL(t, src, nil, BuildOptions{}); !errors.Is(err, ErrUnplaceableSegment) {
		t.Fatalf("期望 ErrUnplaceableSegment，实际 %v", err)
	}

	res, err := buildDSL(t, src, nil, BuildOptions{Lenient: true})
	if err != nil {
		t.Fatalf("宽松模式不应中断: %v", err)
	}
	if !errors.Is(res.Blocks[0].Err, ErrUnplaceableSegment) || !res.Blocks[0].Layout.Fallback {
		t.Fatalf("第一个段落应记录错误并使用回退布局: %+v", res.Blocks[0])
	}
	if res.Blocks[1].Err != nil || res.Blocks[1].Layout.Fallback {
		t.Fatalf("第二个段落应正常排版")
	}

	var buf bytes.Buffer
	if err := EncodeDebug(&buf, res); err != nil {
		t.Fatalf("EncodeDebug 失败: %v", err)
	}
	if !strings.Contains(buf.String(), `"error": "排版失败: `) || !strings.Contains(buf.String(), `"fallback": true`) {
		t.Fatalf("调试 JSON 缺少错误信息:\n%s", buf.String())
	}
}

func TestBuildInvalidStyle(t *testing.T) {
	src := `words Bad { style { width: wide; color: "nope" } text "x" }`
	_, err := buildDSL(t, src, nil, BuildOptions{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("期望 ErrInvalidConfig，实际 %v", err)
	}
	if !strings.Contains(err.Error(), "width") || !strings.Contains(err.Error(), "nope") {
		t.Fatalf("应同时报告所有样式错误: %v", err)
	}
}

func TestResolveStyleUnits(t *testing.T) {
	props := map[string]string{
		"width":           "90mm",
		"padding":         "1mm 2mm",
		"padding-left":    "3mm",
		"punctuation":     "keep",
		"color":           "#333",
		"highlight-color": "blue",
		"height-mode":     "exactly",
		"height":          "1cm",
		"size":            "12pt",
	}
	style, err := ResolveStyle(props, UnitMM, DefaultMetrics())
	if err != nil {
		t.Fatalf("ResolveStyle 失败: %v", err)
	}
	cfg := style.Config
	near := func(got, want float64) bool { return math.Abs(got-want) < 1e-9 }
	if !near(cfg.Width, 90) || !near(cfg.Height, 10) {
		t.Fatalf("尺寸换算错误: %+v", cfg)
	}
	p := cfg.Padding
	if !near(p.Left, 3) || !near(p.Right, 2) || !near(p.Top, 1) || !near(p.Bottom, 1) {
		t.Fatalf("留白错误: %+v", p)
	}
	if !near(style.FontSize, 12*PtToMm) {
		t.Fatalf("字号换算错误: %g", style.FontSize)
	}
	if !cfg.KeepWordPunctuation || cfg.attached() != "" {
		t.Fatalf("punctuation: keep 应关闭标点拆分")
	}
	if cfg.HeightMode != HeightFixed {
		t.Fatalf("exactly 应映射为 fixed，实际 %s", cfg.HeightMode)
	}
	if cfg.Palette.Default != (Color{R: 0x33, G: 0x33, B: 0x33}) || cfg.Palette.Highlight != (Color{B: 255}) {
		t.Fatalf("颜色错误: %+v", cfg.Palette)
	}
	// 4dp 默认行距，在 160dpi 基准下为 4/160 英寸
	if !near(cfg.LineGap, 4.0/160*25.4) {
		t.Fatalf("默认行距错误: %g", cfg.LineGap)
	}
}

func TestResolveStyleCustomPunctuation(t *testing.T) {
	style, err := ResolveStyle(map[string]string{"punctuation": ".,"}, UnitNone, DefaultMetrics())
	if err != nil {
		t.Fatalf("ResolveStyle 失败: %v", err)
	}
	e, _ := newTestEngine(t, Config{Width: 1000, AttachedPunctuation: style.Config.AttachedPunctuation})
	l, _ := e.SetDisplayedText("what? yes.", nil)
	assertSegments(t, l.Segments, []seg{{0, "what?", false}, {6, "yes", false}, {9, ".", false}})
}

func TestParseColor(t *testing.T) {
	cases := map[string]Color{
		"#F00":      Red,
		"#00ff00":   {G: 255},
		"#0000FF80": {B: 255},
		"Black":     Black,
	}
	for in, want := range cases {
		got, err := ParseColor(in)
		if err != nil || got != want {
			t.Fatalf("ParseColor(%q) = %+v, %v；期望 %+v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "#12", "#GGGGGG", "chartreuse"} {
		if _, err := ParseColor(bad); err == nil {
			t.Fatalf("ParseColor(%q) 应失败", bad)
		}
	}
}
