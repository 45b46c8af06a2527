package layout

import "unicode/utf8"

// Segment 是排版与绘制的最小单位：一个单词、一个符号或一个高亮词组。
// StartIndex 为该片段在原文中的字节偏移，是唯一的排序键。
type Segment struct {
	StartIndex  int       `json:"startIndex"`
	Value       string    `json:"value"`
	Highlighted bool      `json:"highlighted"`
	Position    *Position `json:"position,omitempty"`
}

// Position 是片段的绘制坐标：X 为左边缘，Y 为基线（字框顶部 + 字高）。
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// End 返回片段在原文中结束位置（不含）。
func (s Segment) End() int { return s.StartIndex + len(s.Value) }

// Placed 报告片段是否已经过排版。
func (s Segment) Placed() bool { return s.Position != nil }

// IsPunctuation 判断片段是否为单个非字母字符（例如句号、逗号、连字符）。
// 排版时这类片段紧贴前一个片段，不留词间距。
func (s Segment) IsPunctuation() bool {
	r, size := utf8.DecodeRuneInString(s.Value)
	if size == 0 || size != len(s.Value) {
		return false
	}
	return !isASCIILetter(r)
}

func (s Segment) String() string { return s.Value }

func isASCIILetter(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')
}

// withPosition 返回带坐标的副本，原片段保持不变。
func (s Segment) withPosition(x, y float64) Segment {
	s.Position = &Position{X: x, Y: y}
	return s
}

func (s Segment) withoutPosition() Segment {
	s.Position = nil
	return s
}
