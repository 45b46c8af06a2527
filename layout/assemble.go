package layout

import "sort"

// Assemble 合并高亮片段与普通片段，并按 StartIndex 稳定升序排序。
// 高亮片段先放入，因此即便出现相同偏移也排在前面。
func Assemble(highlighted []Segment, plain []Token) []Segment {
	out := make([]Segment, 0, len(highlighted)+len(plain))
	for _, seg := range highlighted {
		out = append(out, seg.withoutPosition())
	}
	for _, tok := range plain {
		out = append(out, tok.Segment())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartIndex < out[j].StartIndex
	})
	return out
}

// Segmentize 依次执行高亮匹配、分词与合并，得到一段文本的完整片段序列。
func Segmentize(text string, phrases []string, attached string) []Segment {
	if text == "" {
		return nil
	}
	matched := MatchHighlights(text, phrases)
	tokens := Tokenize(text, matched.Claimed, attached)
	return Assemble(matched.Highlighted, tokens)
}
