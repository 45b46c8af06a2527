package canvasrenderer

import (
	"bytes"
	"fmt"
	"math"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"

	"github.com/ByLCY/wordsdisplay/layout"
	"github.com/ByLCY/wordsdisplay/renderer"
)

// Renderer draws layout results via github.com/tdewolff/canvas.
// 所有长度均为毫米（mm），字号在与字体系统交互时换算为 pt。
type Renderer struct {
	logger zerolog.Logger
	fonts  *fontBook
}

var (
	_ renderer.Backend  = (*Renderer)(nil)
	_ layout.Typesetter = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // fonts accessible via builtin:<name>, checked before the bundled ones
	Logger  *zerolog.Logger
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font files.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	logger := log.Logger
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Renderer{
		logger: logger,
		fonts:  newFontBook(opts.BaseDir, opts.Fonts, logger),
	}
}

// Unit 报告布局长度使用毫米。
func (r *Renderer) Unit() layout.Unit { return layout.UnitMM }

// Measurer 实现 layout.Typesetter。fontSize 为 mm。
func (r *Renderer) Measurer(font layout.FontResource, fontSize float64) (layout.Measurer, error) {
	if fontSize <= 0 {
		return nil, fmt.Errorf("字号 %g 必须大于 0", fontSize)
	}
	face, err := r.fonts.face(font, toPt(fontSize), layout.Black)
	if err != nil {
		return nil, err
	}
	return &faceMeasurer{face: face}, nil
}

// faceMeasurer 用字体面测量文本：宽度为前进宽度，高度为大写字母高度。
type faceMeasurer struct {
	face *canvas.FontFace
}

func (m *faceMeasurer) Measure(text string) (float64, float64) {
	metrics := m.face.Metrics()
	height := metrics.CapHeight
	if height <= 0 {
		height = metrics.Ascent
	}
	return m.face.TextWidth(text), height
}

// Render renders each block onto its own PDF page sized to the block's view.
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	var pages []layout.Block
	for _, b := range result.Blocks {
		if b.Layout != nil {
			pages = append(pages, b)
		}
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("缺少可渲染的段落")
	}

	var buf bytes.Buffer
	w, h := pageSize(pages[0].Layout)
	writer := pdf.New(&buf, w, h, nil)
	r.applyMeta(writer, result.Meta)
	for i, block := range pages {
		w, h := pageSize(block.Layout)
		if i > 0 {
			writer.NewPage(w, h)
		}
		c := canvas.New(w, h)
		ctx := canvas.NewContext(c)
		ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

		if err := r.drawBlock(ctx, block, result.Font, result.FontSize); err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	return buf.Bytes(), nil
}

// pageSize 返回页面尺寸；空段落的高度为 0，此时保留一个字高避免生成零高度页面。
func pageSize(l *layout.Layout) (float64, float64) {
	h := l.Height
	if h <= 0 {
		h = math.Max(l.WordHeight, 1)
	}
	return l.Width, h
}

func (r *Renderer) applyMeta(writer *pdf.PDF, meta layout.DocumentMeta) {
	if writer == nil {
		return
	}
	writer.SetInfo(meta.Title, meta.Subject, "", meta.Author, meta.Creator)
}

// drawBlock 在各片段的基线处绘制文本，只绘制 clipped 返回的片段。
func (r *Renderer) drawBlock(ctx *canvas.Context, block layout.Block, font layout.FontResource, fontSize float64) error {
	l := block.Layout
	if l.Fallback {
		r.logger.Warn().Str("passage", block.Name).Msg("段落使用回退布局，页面留空")
		return nil
	}
	faces := map[layout.Color]*canvas.FontFace{}
	for _, seg := range clipped(l) {
		col := l.Palette.For(seg)
		face, ok := faces[col]
		if !ok {
			var err error
			face, err = r.fonts.face(font, toPt(fontSize), col)
			if err != nil {
				return err
			}
			faces[col] = face
		}
		ctx.DrawText(seg.Position.X, seg.Position.Y, canvas.NewTextLine(face, seg.Value, canvas.Left))
	}
	return nil
}

// clipped 返回字框完整落在 ContentRect 内的片段。
// 跨越上下边界的片段整体不绘制，避免画进内边距。
func clipped(l *layout.Layout) []layout.Segment {
	var out []layout.Segment
	for _, seg := range l.Segments {
		if !l.Visible(seg) {
			continue
		}
		if seg.Position.Y > l.ContentRect.Bottom || seg.Position.Y-l.WordHeight < l.ContentRect.Top {
			continue
		}
		out = append(out, seg)
	}
	return out
}

// toPt 将毫米(mm)转换为点(pt)。
func toPt(mm float64) float64 { return mm * layout.MmToPt }
