package shell

// Grammar:
//
//	command        ::= pipeline
//	pipeline       ::= stage { "|" stage }
//	stage          ::= simple_command { redirection }
//	simple_command ::= WORD { WORD | STRING }
//	redirection    ::= ( ">" | "1>" | ">>" | "1>>" | "2>" | "2>>" ) WORD

import (
	"strings"
)

// Parse builds a Command from tokens. It either returns a complete Command
// or a *SyntaxError, never a partial tree.
func Parse(tokens []Token) (*Command, error) {
	p := &parser{tokens: tokens}

	cmd, err := p.parseCommand()
	if err != nil {
		return nil, err
	}

	if tok, ok := p.peek(); ok {
		return nil, syntaxErrorf("unexpected %s after end of pipeline", tok)
	}

	return cmd, nil
}

// ParseLine tokenizes and parses a line.
func ParseLine(line string) (*Command, error) {
	tokens, err := Tokenize(line)
	if err != nil {
		return nil, err
	}
	return Parse(tokens)
}

type parser struct {
	tokens []Token
	pos    int
}

func (p *parser) peek() (Token, bool) {
	if p.pos >= len(p.tokens) {
		return Token{}, false
	}
	return p.tokens[p.pos], true
}

func (p *parser) advance() {
	if p.pos < len(p.tokens) {
		p.pos++
	}
}

func (p *parser) parseCommand() (*Command, error) {
	pipeline, err := p.parsePipeline()
	if err != nil {
		return nil, err
	}
	return &Command{Pipeline: pipeline}, nil
}

func (p *parser) parsePipeline() (Pipeline, error) {
	var stages []Stage

	stage, err := p.parseStage()
	if err != nil {
		return Pipeline{}, err
	}
	stages = append(stages, stage)

	for {
		tok, ok := p.peek()
		if !ok || tok.Kind != Pipe {
			break
		}
		p.advance()

		stage, err := p.parseStage()
		if err != nil {
			return Pipeline{}, err
		}
		stages = append(stages, stage)
	}

	return Pipeline{Stages: stages}, nil
}

func (p *parser) parseStage() (Stage, error) {
	simple, err := p.parseSimpleCommand()
	if err != nil {
		return Stage{}, err
	}

	stage := Stage{SimpleCommand: simple}
	for {
		tok, ok := p.peek()
		if !ok || !tok.Kind.IsRedirection() {
			break
		}

		redir, err := p.parseRedirection()
		if err != nil {
			return Stage{}, err
		}
		stage.Redirections = append(stage.Redirections, redir)
	}

	return stage, nil
}

func (p *parser) parseSimpleCommand() (SimpleCommand, error) {
	tok, ok := p.peek()
	switch {
	case !ok:
		return SimpleCommand{}, syntaxErrorf("expected command name, got end of input")
	case tok.Kind != Word:
		return SimpleCommand{}, syntaxErrorf("expected command name, got %s", tok)
	}
	p.advance()

	cmd := SimpleCommand{Program: tok.Text}
	for {
		tok, ok := p.peek()
		if !ok {
			break
		}

		switch tok.Kind {
		case Word:
			cmd.Args = append(cmd.Args, tok.Text)
		case StringLiteral:
			cmd.Args = append(cmd.Args, unquote(tok.Text))
		case Pipe, RedirectOut, RedirectOutAppend, RedirectErr, RedirectErrAppend:
			return cmd, nil
		}
		p.advance()
	}

	return cmd, nil
}

func (p *parser) parseRedirection() (Redirection, error) {
	tok, _ := p.peek()

	var redir Redirection
	switch tok.Kind {
	case RedirectOut:
		redir = Redirection{Target: Stdout}
	case RedirectOutAppend:
		redir = Redirection{Target: Stdout, Append: true}
	case RedirectErr:
		redir = Redirection{Target: Stderr}
	case RedirectErrAppend:
		redir = Redirection{Target: Stderr, Append: true}
	case Word, StringLiteral, Pipe:
		return Redirection{}, syntaxErrorf("expected redirection, got %s", tok)
	}
	p.advance()

	target, ok := p.peek()
	switch {
	case !ok:
		return Redirection{}, syntaxErrorf("missing file name after %s", tok.Text)
	case target.Kind != Word:
		return Redirection{}, syntaxErrorf("expected file name after %s, got %s", tok.Text, target)
	}
	p.advance()

	redir.Filename = target.Text
	return redir, nil
}

// unquote strips the surrounding quotes of a string literal and collapses
// escaped quotes. Other backslashes are kept as written.
func unquote(literal string) string {
	inner := strings.TrimSuffix(strings.TrimPrefix(literal, `"`), `"`)
	return strings.ReplaceAll(inner, `\"`, `"`)
}
