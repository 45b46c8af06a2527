package layout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ReferenceGlyph 是用来推导默认词间距与字高的代表字符。
const ReferenceGlyph = "A"

// Measurer 测量一段文本的宽高，单位与 Config 中的长度一致。
// 对于固定的字体配置必须是确定性的。
type Measurer interface {
	Measure(text string) (width, height float64)
}

// MeasureFunc 让普通函数满足 Measurer。
type MeasureFunc func(text string) (width, height float64)

func (f MeasureFunc) Measure(text string) (float64, float64) { return f(text) }

// Typesetter 根据字体与字号提供测量器，由渲染后端实现。
type Typesetter interface {
	Measurer(font FontResource, fontSize float64) (Measurer, error)
}

// BuildOptions 配置布局阶段所需的依赖，例如排版后端。
type BuildOptions struct {
	Typesetter Typesetter
	// Defaults 是样式的默认属性（通常来自配置文件），文档内 style 段会覆盖它们。
	Defaults map[string]string
	// Unit 是后端使用的长度单位；UnitNone 表示不做换算，直接使用数值。
	Unit    Unit
	Metrics DisplayMetrics
	// Lenient 为 true 时，单个段落排版失败不会中断整个文档，错误记录在 Block.Err。
	Lenient bool
	Logger  *zerolog.Logger
	Debug   DebugOptions
}

// DebugOptions 控制调试相关输出。
type DebugOptions struct {
	Widths bool // 在调试 JSON 中为每个片段输出测量宽度
}

// HeightMode 决定视图报告的高度。
type HeightMode string

const (
	HeightWrap   HeightMode = "wrap"    // 高度等于内容高度
	HeightFixed  HeightMode = "fixed"   // 高度固定为 Config.Height，超出部分被裁剪
	HeightAtMost HeightMode = "at-most" // 取内容高度与 Config.Height 的较小值
)

// ParseHeightMode 解析高度模式字符串，空串视为 wrap。
func ParseHeightMode(v string) (HeightMode, error) {
	switch m := HeightMode(strings.ToLower(strings.TrimSpace(v))); m {
	case "":
		return HeightWrap, nil
	case HeightWrap, HeightFixed, HeightAtMost:
		return m, nil
	case "exactly":
		return HeightFixed, nil
	default:
		return "", fmt.Errorf("未知的高度模式：%s", v)
	}
}

// Padding 为内容区四周的留白。
type Padding struct {
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
}

// Config 是单个文本块的排版配置，由宿主持有，Engine 只读。
type Config struct {
	Width      float64    `json:"width"`
	Height     float64    `json:"height,omitempty"`
	HeightMode HeightMode `json:"heightMode"`
	Padding    Padding    `json:"padding"`
	// WordHeight 与 GapWidth 为 0 时，通过测量 ReferenceGlyph 推导。
	WordHeight float64 `json:"wordHeight"`
	GapWidth   float64 `json:"gapWidth"`
	LineGap    float64 `json:"lineGap"`
	// AttachedPunctuation 为从单词尾部拆出的标点集合，空串时使用 DefaultAttachedPunctuation。
	AttachedPunctuation string `json:"attachedPunctuation,omitempty"`
	// KeepWordPunctuation 为 true 时不拆分尾部标点，整个非空白串作为一个片段。
	KeepWordPunctuation bool    `json:"keepWordPunctuation,omitempty"`
	Palette             Palette `json:"palette"`
}

// attached 返回分词时实际使用的尾部标点集合。
func (c Config) attached() string {
	if c.KeepWordPunctuation {
		return ""
	}
	if c.AttachedPunctuation == "" {
		return DefaultAttachedPunctuation
	}
	return c.AttachedPunctuation
}

// ContentWidth 返回视口宽度减去左右留白。
func (c Config) ContentWidth() float64 {
	return c.Width - c.Padding.Left - c.Padding.Right
}

// Validate 检查配置，返回所有问题的合并错误。
func (c Config) Validate() error {
	var errs []error
	if c.Width <= 0 {
		errs = append(errs, configError("width=%g 必须大于 0", c.Width))
	}
	if c.Padding.Left < 0 || c.Padding.Right < 0 || c.Padding.Top < 0 || c.Padding.Bottom < 0 {
		errs = append(errs, configError("padding 不能为负：%+v", c.Padding))
	}
	if c.Width > 0 && c.ContentWidth() <= 0 {
		errs = append(errs, configError("内容区宽度 %g 必须大于 0（width=%g, padding=%g+%g）",
			c.ContentWidth(), c.Width, c.Padding.Left, c.Padding.Right))
	}
	if c.LineGap < 0 {
		errs = append(errs, configError("lineGap=%g 不能为负", c.LineGap))
	}
	if c.WordHeight < 0 {
		errs = append(errs, configError("wordHeight=%g 不能为负", c.WordHeight))
	}
	if c.GapWidth < 0 {
		errs = append(errs, configError("gapWidth=%g 不能为负", c.GapWidth))
	}
	switch c.HeightMode {
	case "", HeightWrap:
	case HeightFixed, HeightAtMost:
		if c.Height <= 0 {
			errs = append(errs, configError("heightMode=%s 需要 height > 0", c.HeightMode))
		}
	default:
		errs = append(errs, configError("未知的 heightMode=%q", c.HeightMode))
	}
	return errors.Join(errs...)
}
