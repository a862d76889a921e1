package shell

import "fmt"

// TokenKind classifies a Token. The set is closed: every consumer switches
// over all of the kinds below.
type TokenKind int

const (
	Word              TokenKind = iota // ls, -la, out.txt
	StringLiteral                      // "quoted \"text\""
	Pipe                               // |
	RedirectOut                        // > or 1>
	RedirectOutAppend                  // >> or 1>>
	RedirectErr                        // 2>
	RedirectErrAppend                  // 2>>
)

func (k TokenKind) String() string {
	switch k {
	case Word:
		return "Word"
	case StringLiteral:
		return "StringLiteral"
	case Pipe:
		return "Pipe"
	case RedirectOut:
		return "RedirectOut"
	case RedirectOutAppend:
		return "RedirectOutAppend"
	case RedirectErr:
		return "RedirectErr"
	case RedirectErrAppend:
		return "RedirectErrAppend"
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// IsRedirection reports whether the kind introduces a redirection.
func (k TokenKind) IsRedirection() bool {
	switch k {
	case RedirectOut, RedirectOutAppend, RedirectErr, RedirectErrAppend:
		return true
	case Word, StringLiteral, Pipe:
		return false
	}
	return false
}

// Token is a single lexical unit. Text holds the source text exactly as it
// appeared on the line; for string literals that includes the quotes.
type Token struct {
	Kind TokenKind
	Text string
}

func (t Token) String() string {
	switch t.Kind {
	case Word, StringLiteral:
		return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
	case Pipe, RedirectOut, RedirectOutAppend, RedirectErr, RedirectErrAppend:
		return t.Kind.String()
	}
	return t.Kind.String()
}
