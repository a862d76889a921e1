package shell

import (
	"regexp"
)

// recognizer pairs an anchored pattern with the kind of token it produces.
type recognizer struct {
	pattern *regexp.Regexp
	kind    TokenKind
}

// recognizers are tried top to bottom at every scan position and the first
// match wins. Longer operators precede their prefixes (2>> before 2> before
// >) and string literals precede words so quoted | and > stay inside the
// literal.
var recognizers = []recognizer{
	{regexp.MustCompile(`^"(?:\\.|[^"\\])*"`), StringLiteral},
	{regexp.MustCompile(`^2>>`), RedirectErrAppend},
	{regexp.MustCompile(`^1?>>`), RedirectOutAppend},
	{regexp.MustCompile(`^2>`), RedirectErr},
	{regexp.MustCompile(`^1?>`), RedirectOut},
	{regexp.MustCompile(`^\|`), Pipe},
	{regexp.MustCompile(`^[^\s|>"]+`), Word},
}

var leadingSpace = regexp.MustCompile(`^\s+`)

// Tokenize splits line into tokens in source order. Blank input yields no
// tokens. A *LexError is returned if nothing matches at some position.
func Tokenize(line string) ([]Token, error) {
	var tokens []Token

	remaining := skipSpace(line)
	for remaining != "" {
		tok, ok := match(remaining)
		if !ok {
			return nil, &LexError{Remaining: remaining}
		}

		tokens = append(tokens, tok)
		remaining = skipSpace(remaining[len(tok.Text):])
	}

	return tokens, nil
}

func match(text string) (Token, bool) {
	for _, r := range recognizers {
		if loc := r.pattern.FindStringIndex(text); loc != nil && loc[1] > 0 {
			return Token{Kind: r.kind, Text: text[:loc[1]]}, true
		}
	}
	return Token{}, false
}

func skipSpace(text string) string {
	if loc := leadingSpace.FindStringIndex(text); loc != nil {
		return text[loc[1]:]
	}
	return text
}
