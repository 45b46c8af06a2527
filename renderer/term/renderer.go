// Package termrenderer 把布局结果画成终端文本：一个单元格为一个长度单位，每行一个基线。
package termrenderer

import (
	"fmt"
	"math"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/rivo/uniseg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ByLCY/wordsdisplay/layout"
	"github.com/ByLCY/wordsdisplay/renderer"
)

var _ renderer.Backend = (*Renderer)(nil)

// Renderer 以终端单元格为单位测量与绘制片段。
type Renderer struct {
	plain  bool
	logger zerolog.Logger
	styles map[layout.Color]lipgloss.Style
}

// Options configures the terminal renderer.
type Options struct {
	// Plain 为 true 时不输出任何 ANSI 样式。
	Plain  bool
	Logger *zerolog.Logger
}

func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		plain:  opts.Plain,
		logger: log.Logger,
		styles: map[layout.Color]lipgloss.Style{},
	}
	if opts.Logger != nil {
		r.logger = *opts.Logger
	}
	return r
}

// Unit 报告布局长度不做换算，直接按单元格计。
func (r *Renderer) Unit() layout.Unit { return layout.UnitNone }

// Measurer 忽略字体与字号：终端里每个片段高一格，宽度为显示宽度。
func (r *Renderer) Measurer(layout.FontResource, float64) (layout.Measurer, error) {
	return layout.MeasureFunc(cellMeasure), nil
}

func cellMeasure(text string) (float64, float64) {
	return float64(uniseg.StringWidth(text)), 1
}

// Render 逐段落输出文本，段落之间空一行。
func (r *Renderer) Render(result *layout.Result) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("渲染结果为空")
	}
	if len(result.Blocks) == 0 {
		return nil, fmt.Errorf("缺少可渲染的段落")
	}
	var sb strings.Builder
	for i, block := range result.Blocks {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, row := range r.rows(block) {
			sb.WriteString(row)
			sb.WriteByte('\n')
		}
	}
	return []byte(sb.String()), nil
}

// rows 把段落的每一行画成一个字符串。
// 终端没有亚格精度，x 取最近的整数列；行与行之间的行距被折叠。
func (r *Renderer) rows(block layout.Block) []string {
	l := block.Layout
	if l == nil {
		return nil
	}
	if l.Fallback {
		r.logger.Warn().Str("passage", block.Name).Msg("段落使用回退布局")
		msg := "段落无法排版"
		if block.Err != nil {
			msg = block.Err.Error()
		}
		return []string{r.style(l.Palette.Highlight).Render("[" + msg + "]")}
	}

	var rows []string
	for _, line := range l.Lines() {
		var sb strings.Builder
		col := 0
		drawn := false
		for _, seg := range line.Segments {
			if !l.Visible(seg) {
				continue
			}
			drawn = true
			if x := int(math.Round(seg.Position.X)); x > col {
				sb.WriteString(strings.Repeat(" ", x-col))
				col = x
			}
			sb.WriteString(r.style(l.Palette.For(seg)).Render(seg.Value))
			col += uniseg.StringWidth(seg.Value)
		}
		if drawn {
			rows = append(rows, sb.String())
		}
	}
	return rows
}

func (r *Renderer) style(c layout.Color) lipgloss.Style {
	if r.plain {
		return lipgloss.NewStyle()
	}
	if s, ok := r.styles[c]; ok {
		return s
	}
	s := lipgloss.NewStyle().Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)))
	r.styles[c] = s
	return s
}
