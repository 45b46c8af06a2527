package layout

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultAttachedPunctuation 是默认从单词末尾拆出的标点集合。
// 拆出后的单字符片段在排版时紧贴前一个片段。
const DefaultAttachedPunctuation = ".,;:!?"

// Token 是分词得到的普通片段。
type Token struct {
	StartIndex int
	Value      string
	// Punctuation 标记单个非字母字符，供排版的间距规则使用。
	Punctuation bool
}

// Segment 将 Token 转为未排版的普通片段。
func (t Token) Segment() Segment {
	return Segment{StartIndex: t.StartIndex, Value: t.Value}
}

// Tokenize 将 text 中未被高亮占用的部分按空白拆成单词。
//
// 被占用的区间视同空白，因此分词永远不会跨过高亮片段。偏移与原文一致。
// attached 中的字符若出现在单词末尾，会被逐个拆成独立的单字符片段；attached 为空时保持整段。
func Tokenize(text string, claimed func(offset int) bool, attached string) []Token {
	var tokens []Token
	start := -1
	flush := func(end int) {
		if start < 0 {
			return
		}
		tokens = appendWord(tokens, start, text[start:end], attached)
		start = -1
	}
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		gap := unicode.IsSpace(r) || (claimed != nil && claimed(i))
		if gap {
			flush(i)
		} else if start < 0 {
			start = i
		}
		i += size
	}
	flush(len(text))
	return tokens
}

// appendWord 追加一个完整的非空白串，并按 attached 拆出尾部标点。
func appendWord(tokens []Token, start int, word string, attached string) []Token {
	cut := len(word)
	if attached != "" {
		for cut > 0 {
			r, size := utf8.DecodeLastRuneInString(word[:cut])
			if cut-size == 0 || !strings.ContainsRune(attached, r) {
				break
			}
			cut -= size
		}
	}
	tokens = append(tokens, newToken(start, word[:cut]))
	for i := cut; i < len(word); {
		_, size := utf8.DecodeRuneInString(word[i:])
		tokens = append(tokens, newToken(start+i, word[i:i+size]))
		i += size
	}
	return tokens
}

func newToken(start int, value string) Token {
	t := Token{StartIndex: start, Value: value}
	t.Punctuation = t.Segment().IsPunctuation()
	return t
}
