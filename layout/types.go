package layout

// 该文件定义布局结果与资源描述，供布局计算、渲染与调试 JSON 共用。

// Result 保存整个文档的排版结果。
type Result struct {
	Blocks []Block      `json:"blocks"`
	Font   FontResource `json:"font"`
	// FontSize 与排版长度使用同一单位。
	FontSize float64      `json:"fontSize"`
	Meta     DocumentMeta `json:"meta"`
}

// Block 对应文档中的一个 text 段落。
type Block struct {
	Name       string   `json:"name,omitempty"`
	Text       string   `json:"text"`
	Highlights []string `json:"highlights"`
	Layout     *Layout  `json:"layout"`
	// Err 仅在 BuildOptions.Lenient 时记录该段落的排版错误。
	Err error `json:"-"`
}

// Layout 是一次排版的不可变结果：已定位的片段与视图应报告的尺寸。
type Layout struct {
	Segments []Segment `json:"segments"`
	// ContentHeight = 最后一行基线 + 下留白；无片段时为 0。
	ContentHeight float64 `json:"contentHeight"`
	// Width/Height 为按高度模式计算后的视图尺寸。
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	ContentRect Rect         `json:"contentRect"`
	WordHeight  float64      `json:"wordHeight"`
	Palette     Palette      `json:"palette"`
	Fallback    bool         `json:"fallback,omitempty"`
	Debug       *LayoutDebug `json:"debug,omitempty"`
}

// LayoutDebug 保存调试用的附加信息。
type LayoutDebug struct {
	Widths []float64 `json:"widths"`
}

// Rect 是绘制时的裁剪矩形。
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Line 是同一基线上的一组片段。
type Line struct {
	Baseline float64   `json:"baseline"`
	Segments []Segment `json:"segments"`
}

// Lines 按基线把已定位的片段分组，顺序与片段序列一致。
func (l *Layout) Lines() []Line {
	if l == nil {
		return nil
	}
	var lines []Line
	for _, seg := range l.Segments {
		if !seg.Placed() {
			continue
		}
		if n := len(lines); n > 0 && lines[n-1].Baseline == seg.Position.Y {
			lines[n-1].Segments = append(lines[n-1].Segments, seg)
			continue
		}
		lines = append(lines, Line{Baseline: seg.Position.Y, Segments: []Segment{seg}})
	}
	return lines
}

// Visible 判断片段的字框是否与裁剪矩形相交；未定位的片段不可见。
func (l *Layout) Visible(seg Segment) bool {
	if l == nil || !seg.Placed() {
		return false
	}
	top := seg.Position.Y - l.WordHeight
	return top < l.ContentRect.Bottom && seg.Position.Y > l.ContentRect.Top
}

// Color 采用 0-255 的 RGB 数值。
type Color struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

var (
	Black = Color{}
	Red   = Color{R: 255}
)

// Palette 是默认文字与高亮文字的颜色。
type Palette struct {
	Default   Color `json:"default"`
	Highlight Color `json:"highlight"`
}

// DefaultPalette 与原始视图一致：黑色正文，红色高亮。
func DefaultPalette() Palette { return Palette{Default: Black, Highlight: Red} }

// For 返回片段应使用的颜色。
func (p Palette) For(seg Segment) Color {
	if seg.Highlighted {
		return p.Highlight
	}
	return p.Default
}

// FontResource 描述字体资源，src 可以是文件路径或 builtin:* 形式。
type FontResource struct {
	Name  string `json:"name"`
	Src   string `json:"src"`
	Style string `json:"style,omitempty"`
}

// DocumentMeta 保存文档元信息。
type DocumentMeta struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Subject string `json:"subject"`
	Creator string `json:"creator"`
}
