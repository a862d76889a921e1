package shell

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Descriptor is the standard stream a redirection rebinds.
type Descriptor int

const (
	Stdout Descriptor = 1
	Stderr Descriptor = 2
)

func (d Descriptor) String() string {
	switch d {
	case Stdout:
		return "stdout"
	case Stderr:
		return "stderr"
	}
	return fmt.Sprintf("fd%d", int(d))
}

// Redirection rebinds one of a stage's output streams to a file.
type Redirection struct {
	Target   Descriptor
	Append   bool
	Filename string
}

func (r Redirection) String() string {
	op := ">"
	if r.Append {
		op = ">>"
	}
	if r.Target == Stderr {
		op = "2" + op
	}
	return op + " " + r.Filename
}

// SimpleCommand is a program name and its arguments in call order.
type SimpleCommand struct {
	Program string
	Args    []string
}

// Argv returns the argument vector including the program name.
func (c SimpleCommand) Argv() []string {
	return append([]string{c.Program}, c.Args...)
}

func (c SimpleCommand) String() string {
	parts := []string{c.Program}
	for _, arg := range c.Args {
		parts = append(parts, quoteArg(arg))
	}
	return strings.Join(parts, " ")
}

// Stage is one pipeline element. Redirections apply in order; a later one
// for the same descriptor wins.
type Stage struct {
	SimpleCommand SimpleCommand
	Redirections  []Redirection
}

func (s Stage) String() string {
	parts := []string{s.SimpleCommand.String()}
	for _, r := range s.Redirections {
		parts = append(parts, r.String())
	}
	return strings.Join(parts, " ")
}

// Pipeline holds at least one stage.
type Pipeline struct {
	Stages []Stage
}

func (p Pipeline) String() string {
	parts := make([]string, len(p.Stages))
	for i, s := range p.Stages {
		parts[i] = s.String()
	}
	return strings.Join(parts, " | ")
}

// Command is the root of a parsed line.
type Command struct {
	Pipeline Pipeline
}

// String renders the command as a line that parses back to an equal
// Command.
func (c *Command) String() string {
	return c.Pipeline.String()
}

var bareWord = regexp.MustCompile(`^[^\s|>"]+$`)

func quoteArg(arg string) string {
	if bareWord.MatchString(arg) {
		return arg
	}
	return `"` + strings.ReplaceAll(arg, `"`, `\"`) + `"`
}

// Dump writes an indented tree of the command to w.
func Dump(w io.Writer, c *Command) error {
	var sb strings.Builder

	fmt.Fprintln(&sb, "Command")
	fmt.Fprintf(&sb, "  Pipeline (%d stages)\n", len(c.Pipeline.Stages))
	for i, stage := range c.Pipeline.Stages {
		fmt.Fprintf(&sb, "    Stage %d\n", i)
		fmt.Fprintf(&sb, "      SimpleCommand program=%q\n", stage.SimpleCommand.Program)
		for j, arg := range stage.SimpleCommand.Args {
			fmt.Fprintf(&sb, "        arg[%d]=%q\n", j, arg)
		}
		for _, r := range stage.Redirections {
			fmt.Fprintf(&sb, "      Redirection fd=%s append=%t file=%q\n", r.Target, r.Append, r.Filename)
		}
	}

	_, err := io.WriteString(w, sb.String())
	return err
}
