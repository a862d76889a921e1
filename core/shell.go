package core

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/josephlewis42/swell/core/shell"
)

const (
	// DefaultPrompt is used when no prompt is configured.
	DefaultPrompt = "$ "

	// statusEscape in a prompt is replaced by the last exit status.
	statusEscape = "%?"

	// exitStatusRedirection is recorded when a line is abandoned because a
	// redirection target couldn't be opened.
	exitStatusRedirection = 1
)

// Shell is the read-eval loop: it reads lines from a LineSource, parses
// them, and runs the resulting pipelines.
type Shell struct {
	Source   LineSource
	Executor *shell.Executor
	// Stderr receives error reports.
	Stderr io.Writer
	Logger *slog.Logger

	// PromptTemplate may contain %? for the last exit status.
	PromptTemplate string

	// LastStatus is the exit status of the most recent pipeline.
	LastStatus int

	promptColor *color.Color
	errorColor  *color.Color
}

// ShellOptions configures NewShell.
type ShellOptions struct {
	Prompt string
	// Color enables coloured prompts and errors. When false colours are
	// never emitted, when true they are emitted if the output supports
	// them.
	Color  bool
	Logger *slog.Logger
}

// NewShell creates a shell reading from source and running pipelines with
// executor.
func NewShell(source LineSource, executor *shell.Executor, stderr io.Writer, opts ShellOptions) *Shell {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	prompt := opts.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}

	s := &Shell{
		Source:         source,
		Executor:       executor,
		Stderr:         stderr,
		Logger:         log,
		PromptTemplate: prompt,
		promptColor:    color.New(color.FgGreen, color.Bold),
		errorColor:     color.New(color.FgRed),
	}
	if !opts.Color {
		s.promptColor.DisableColor()
		s.errorColor.DisableColor()
	}
	return s
}

// Prompt renders the prompt for the next line.
func (s *Shell) Prompt() string {
	prompt := strings.ReplaceAll(s.PromptTemplate, statusEscape, strconv.Itoa(s.LastStatus))
	return s.promptColor.Sprint(prompt)
}

// Run reads and evaluates lines until input ends or the user types exit.
// It only fails if the terminal can't be handed over to a pipeline and
// reclaimed, or the source fails.
func (s *Shell) Run(ctx context.Context) error {
	for {
		s.Source.SetPrompt(s.Prompt())

		line, err := s.Source.ReadLine()
		switch {
		case errors.Is(err, io.EOF):
			s.Logger.Info("input closed")
			return nil
		case err != nil:
			return err
		}

		exit, err := s.Eval(ctx, line)
		if err != nil {
			return err
		}
		if exit {
			s.Logger.Info("exit requested")
			return nil
		}
	}
}

// Eval runs a single line. exit is true if the line asks the shell to
// stop. Lex, parse and execution failures are reported to Stderr and are
// not returned.
func (s *Shell) Eval(ctx context.Context, line string) (exit bool, err error) {
	switch strings.TrimSpace(line) {
	case "":
		return false, nil
	case "exit":
		return true, nil
	}

	s.Logger.Info("line accepted", "line", line)

	command, err := shell.ParseLine(line)
	if err != nil {
		s.Logger.Warn("line rejected", "line", line, "error", err)
		s.report(err)
		return false, nil
	}

	if s.Logger.Enabled(ctx, slog.LevelDebug) {
		var dump strings.Builder
		shell.Dump(&dump, command)
		s.Logger.Debug("parsed", "ast", dump.String())
	}

	resume, err := s.Source.Suspend()
	if err != nil {
		return false, err
	}
	status, execErr := s.Executor.Execute(ctx, command)
	if err := resume(); err != nil {
		return false, err
	}

	s.LastStatus = status.ExitCode()

	var redirErr *shell.RedirectionError
	if errors.As(execErr, &redirErr) {
		s.LastStatus = exitStatusRedirection
	}
	if execErr != nil {
		s.report(execErr)
	}

	s.Logger.Info("pipeline finished", "status", s.LastStatus, "stages", len(status.Stages))
	return false, nil
}

// report writes one "swell: " line per error.
func (s *Shell) report(err error) {
	var errs []error
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	} else {
		errs = []error{err}
	}

	for _, e := range errs {
		s.errorColor.Fprintf(s.Stderr, "swell: %v\n", e)
	}
}
