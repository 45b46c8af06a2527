package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "Color", Pattern: `#(?:[0-9A-Fa-f]{8}|[0-9A-Fa-f]{6}|[0-9A-Fa-f]{3})\b`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `-?(?:\d+\.\d+|\d+)(?:pt|mm|cm|in|px|dp|sp)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=:;]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root AST node for a words document.
type Document struct {
	Pos      lexer.Position `parser:"" json:"-"`
	Name     string         `parser:"Newline* 'words' @Ident"`
	Version  string         `parser:"@Ident?"`
	Sections []*Section     `parser:"'{' Newline* ( @@ Newline* )* '}' Newline*"`
}

// Section represents a top-level section (meta/style/text).
type Section struct {
	Meta  *MetaSection  `parser:"  @@"`
	Style *StyleSection `parser:"| @@"`
	Text  *TextSection  `parser:"| @@"`
}

// Kind returns the human-readable section type.
func (s *Section) Kind() string {
	switch {
	case s == nil:
		return "unknown"
	case s.Meta != nil:
		return "meta"
	case s.Style != nil:
		return "style"
	case s.Text != nil:
		return "text"
	default:
		return "unknown"
	}
}

// MetaSection captures metadata assignments.
type MetaSection struct {
	Block *Block `parser:"'meta' @@"`
}

// StyleSection holds layout properties shared by every passage.
type StyleSection struct {
	Block *Block `parser:"'style' @@"`
}

// Block is a delimited list of assignments.
type Block struct {
	Assignments []*Assignment `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Assignment uses colon syntax (key: value).
type Assignment struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Key   string         `parser:"@Ident"`
	Value *Value         `parser:"':' @@"`
}

// Value represents generic property values.
type Value struct {
	String  *StringLiteral `parser:"  @String"`
	Color   *string        `parser:"| @Color"`
	Numbers []string       `parser:"| @Number+"`
	Array   *ArrayValue    `parser:"| @@"`
	Ident   *string        `parser:"| @Ident"`
}

// ArrayValue captures `[ ... ]` expressions.
type ArrayValue struct {
	Values []*Value `parser:"'[' Newline* ( @@ ( (',' | Newline+) Newline* @@ )* )? Newline* ']'"`
}

// TextSection is one passage: optional name, content and ordered highlight phrases.
type TextSection struct {
	Pos        lexer.Position `parser:"" json:"-"`
	Name       string         `parser:"'text' @Ident?"`
	Content    StringLiteral  `parser:"@String"`
	Highlights []*Highlight   `parser:"( Newline* '{' Newline* ( @@ ( ';' | Newline )* )* '}' )?"`
}

// Highlight lists one or more phrases; list order is priority order.
type Highlight struct {
	Phrases []StringLiteral `parser:"'highlight' @String ( ',' @String )*"`
}

// Phrases flattens every highlight statement of the passage, keeping declaration order.
func (t *TextSection) Phrases() []string {
	var out []string
	for _, h := range t.Highlights {
		for _, p := range h.Phrases {
			out = append(out, string(p))
		}
	}
	return out
}

// Text renders the value as a plain string; numbers are joined by spaces.
func (v *Value) Text() string {
	if v == nil {
		return ""
	}
	switch {
	case v.String != nil:
		return string(*v.String)
	case v.Color != nil:
		return *v.Color
	case len(v.Numbers) > 0:
		return strings.Join(v.Numbers, " ")
	case v.Ident != nil:
		return *v.Ident
	case v.Array != nil:
		parts := make([]string, 0, len(v.Array.Values))
		for _, item := range v.Array.Values {
			if s := item.Text(); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// Props returns the block assignments as a key/value map; later keys win.
func (b *Block) Props() map[string]string {
	out := map[string]string{}
	if b == nil {
		return out
	}
	for _, a := range b.Assignments {
		out[a.Key] = a.Value.Text()
	}
	return out
}

// Passages returns all text sections in document order.
func (d *Document) Passages() []*TextSection {
	var out []*TextSection
	for _, s := range d.Sections {
		if s.Text != nil {
			out = append(out, s.Text)
		}
	}
	return out
}

// StyleProps merges every style section in document order.
func (d *Document) StyleProps() map[string]string {
	out := map[string]string{}
	for _, s := range d.Sections {
		if s.Style == nil {
			continue
		}
		for k, v := range s.Style.Block.Props() {
			out[k] = v
		}
	}
	return out
}

// MetaProps merges every meta section in document order.
func (d *Document) MetaProps() map[string]string {
	out := map[string]string{}
	for _, s := range d.Sections {
		if s.Meta == nil {
			continue
		}
		for k, v := range s.Meta.Block.Props() {
			out[k] = v
		}
	}
	return out
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses DSL content from an io.Reader.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses DSL content from a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
