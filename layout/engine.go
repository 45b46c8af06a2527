package layout

import (
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Engine 负责一个文本块的高亮匹配、分词与排版。
//
// 每次 SetDisplayedText 都从头重建片段序列；Resize 只重新排版已有片段。
// Engine 不是并发安全的，一个实例只服务一个文本块。
type Engine struct {
	cfg        Config
	measurer   Measurer
	logger     zerolog.Logger
	wordHeight float64
	gap        float64
	debug      bool

	widths   map[string]float64
	segments []Segment
}

// Option 配置 Engine。
type Option func(*Engine)

// WithLogger 指定日志输出，默认使用全局 zerolog 日志。
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithDebugWidths 让每次排版结果附带各片段的测量宽度。
func WithDebugWidths(on bool) Option {
	return func(e *Engine) { e.debug = on }
}

// NewEngine 校验配置并创建 Engine。
// WordHeight/GapWidth 未设置时通过测量 ReferenceGlyph 推导。
func NewEngine(cfg Config, m Measurer, opts ...Option) (*Engine, error) {
	if m == nil {
		return nil, configError("缺少测量器 Measurer")
	}
	if cfg.HeightMode == "" {
		cfg.HeightMode = HeightWrap
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:      cfg,
		measurer: m,
		logger:   log.Logger,
		widths:   map[string]float64{},
	}
	for _, opt := range opts {
		opt(e)
	}

	e.wordHeight, e.gap = cfg.WordHeight, cfg.GapWidth
	if e.wordHeight == 0 || e.gap == 0 {
		w, h := m.Measure(ReferenceGlyph)
		if e.gap == 0 {
			e.gap = w
		}
		if e.wordHeight == 0 {
			e.wordHeight = h
		}
	}
	if e.wordHeight <= 0 || math.IsNaN(e.wordHeight) {
		return nil, configError("字高 %g 必须大于 0", e.wordHeight)
	}
	if e.gap <= 0 || math.IsNaN(e.gap) {
		return nil, configError("词间距 %g 必须大于 0", e.gap)
	}
	return e, nil
}

// Config 返回当前配置。
func (e *Engine) Config() Config { return e.cfg }

// WordHeight 返回实际使用的字高。
func (e *Engine) WordHeight() float64 { return e.wordHeight }

// GapWidth 返回实际使用的词间距。
func (e *Engine) GapWidth() float64 { return e.gap }

// Segments 返回当前片段序列的副本（未定位）。
func (e *Engine) Segments() []Segment {
	out := make([]Segment, len(e.segments))
	copy(out, e.segments)
	return out
}

// SetDisplayedText 用新的文本与高亮词组替换片段序列并重新排版。
//
// highlights 的顺序即优先级：重叠时列表靠前的词组胜出。
// 若某个片段放不下，返回 *LayoutError 以及一个 Fallback 布局。
func (e *Engine) SetDisplayedText(text string, highlights []string) (*Layout, error) {
	matched := MatchHighlights(text, highlights)
	tokens := Tokenize(text, matched.Claimed, e.cfg.attached())
	e.segments = Assemble(matched.Highlighted, tokens)
	if text == "" {
		e.segments = nil
	}
	e.logger.Debug().
		Int("segments", len(e.segments)).
		Int("highlighted", len(matched.Highlighted)).
		Int("phrases", len(highlights)).
		Msg("文本已切分")
	return e.Relayout()
}

// Resize 修改视口宽度后只重新执行排版步骤。
func (e *Engine) Resize(width float64) (*Layout, error) {
	cfg := e.cfg
	cfg.Width = width
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e.cfg = cfg
	return e.Relayout()
}

// Relayout 以当前配置重新排版现有片段。
func (e *Engine) Relayout() (*Layout, error) {
	p := newFlowParams(e.cfg, e.wordHeight, e.gap)
	placed, widths, contentHeight, err := flow(e.segments, p, e.measureWidth)
	if err != nil {
		var le *LayoutError
		if errors.As(err, &le) {
			e.logger.Warn().
				Str("segment", le.Segment.Value).
				Int("start", le.Segment.StartIndex).
				Float64("width", le.Width).
				Float64("available", le.Available).
				Msg("视图宽度放不下片段，使用回退布局")
		}
		return e.fallback(), fmt.Errorf("排版失败: %w", err)
	}

	l := &Layout{
		Segments:      placed,
		ContentHeight: contentHeight,
		WordHeight:    e.wordHeight,
		Palette:       e.cfg.Palette,
	}
	e.size(l, contentHeight)
	if e.debug {
		l.Debug = &LayoutDebug{Widths: widths}
	}
	return l, nil
}

// fallback 是放不下片段时报告的最小布局：不定位任何片段。
func (e *Engine) fallback() *Layout {
	segs := make([]Segment, len(e.segments))
	for i, seg := range e.segments {
		segs[i] = seg.withoutPosition()
	}
	l := &Layout{
		Segments:   segs,
		WordHeight: e.wordHeight,
		Palette:    e.cfg.Palette,
		Fallback:   true,
	}
	e.size(l, e.cfg.Padding.Top+e.cfg.Padding.Bottom)
	return l
}

// size 根据高度模式填充视图尺寸与裁剪矩形。
func (e *Engine) size(l *Layout, required float64) {
	l.Width = e.cfg.Width
	switch e.cfg.HeightMode {
	case HeightFixed:
		l.Height = e.cfg.Height
	case HeightAtMost:
		l.Height = math.Min(e.cfg.Height, required)
	default:
		l.Height = required
	}
	l.ContentRect = Rect{
		Left:   e.cfg.Padding.Left,
		Top:    e.cfg.Padding.Top,
		Right:  l.Width - e.cfg.Padding.Right,
		Bottom: l.Height - e.cfg.Padding.Bottom,
	}
}

func (e *Engine) measureWidth(seg Segment) float64 {
	if w, ok := e.widths[seg.Value]; ok {
		return w
	}
	w, _ := e.measurer.Measure(seg.Value)
	e.widths[seg.Value] = w
	return w
}
