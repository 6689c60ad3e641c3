package token

// Comment represents a SQL comment with position.
type Comment struct {
	Kind Kind   // LineComment or BlockComment
	Text string // includes delimiters (-- or /* */)
	Span Span
}

// IsLineComment returns true if this is a line comment.
func (c *Comment) IsLineComment() bool {
	return c.Kind == LineComment
}

// IsBlockComment returns true if this is a block comment.
func (c *Comment) IsBlockComment() bool {
	return c.Kind == BlockComment
}

// Comments collects the comments of a token stream in source order.
func Comments(toks []Token) []*Comment {
	var out []*Comment
	for _, t := range toks {
		if !t.IsComment() {
			continue
		}
		out = append(out, &Comment{
			Kind: t.Kind,
			Text: t.Literal,
			Span: Span{Start: t.Pos, End: t.Pos.Advance(t.Literal)},
		})
	}
	return out
}
