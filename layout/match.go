package layout

import (
	"sort"
	"strings"
)

// span 是原文中的半开区间 [start, end)。
type span struct {
	start int
	end   int
}

// claimSet 记录已被高亮词组占用的区间，按 start 升序且互不重叠。
// 先写入者优先：与已占用区间重叠的后续申请一律被拒绝。
type claimSet struct {
	spans []span
}

// overlaps 报告 [start, end) 是否与任一已占用区间相交。
func (c *claimSet) overlaps(start, end int) bool {
	i := sort.Search(len(c.spans), func(i int) bool { return c.spans[i].end > start })
	return i < len(c.spans) && c.spans[i].start < end
}

// claim 尝试占用 [start, end)，若与已有区间重叠则返回 false。
func (c *claimSet) claim(start, end int) bool {
	if start >= end || c.overlaps(start, end) {
		return false
	}
	i := sort.Search(len(c.spans), func(i int) bool { return c.spans[i].start >= start })
	c.spans = append(c.spans, span{})
	copy(c.spans[i+1:], c.spans[i:])
	c.spans[i] = span{start: start, end: end}
	return true
}

// contains 报告 offset 是否落在某个已占用区间内。
func (c *claimSet) contains(offset int) bool {
	return c.overlaps(offset, offset+1)
}

// MatchResult 是高亮匹配的输出：高亮片段（按发现顺序，尚未排序）以及它们占用的区间。
type MatchResult struct {
	Highlighted []Segment
	claims      claimSet
}

// Claimed 报告原文 offset 处的字节是否属于某个高亮片段。
func (m *MatchResult) Claimed(offset int) bool { return m.claims.contains(offset) }

// MatchHighlights 按词组列表顺序在 text 中查找完整单词形式的出现位置。
//
// 每个词组都从偏移 0 开始向右扫描；候选位置前后相邻字符（若存在）不能是 ASCII 字母。
// 无论候选是否被接受，同一词组都从候选末尾继续查找；
// 与已占用区间重叠的候选被丢弃并从下一个字节继续，因此列表中靠前的词组优先。
func MatchHighlights(text string, phrases []string) *MatchResult {
	res := &MatchResult{}
	if text == "" {
		return res
	}
	for _, phrase := range phrases {
		if phrase == "" {
			continue
		}
		from := 0
		for from <= len(text)-len(phrase) {
			idx := strings.Index(text[from:], phrase)
			if idx < 0 {
				break
			}
			start := from + idx
			end := start + len(phrase)
			if !wordBounded(text, start, end) {
				// 不在单词边界上的候选同样跳过整个词组长度
				from = end
				continue
			}
			if !res.claims.claim(start, end) {
				from = start + 1
				continue
			}
			res.Highlighted = append(res.Highlighted, Segment{
				StartIndex:  start,
				Value:       phrase,
				Highlighted: true,
			})
			from = end
		}
	}
	return res
}

// wordBounded 检查 text[start:end] 两侧是否为单词边界。
// 数字、标点与文本首尾都视为合法边界，只有 ASCII 字母不是。
func wordBounded(text string, start, end int) bool {
	if start > 0 && isASCIILetter(rune(text[start-1])) {
		return false
	}
	if end < len(text) && isASCIILetter(rune(text[end])) {
		return false
	}
	return true
}
