package core

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/swell/core/config"
	"github.com/josephlewis42/swell/core/editor"
	"github.com/josephlewis42/swell/core/tty"
)

// LineSource yields one line of input per call.
type LineSource interface {
	// SetPrompt sets the prompt shown before the next line, sources that
	// don't prompt ignore it.
	SetPrompt(prompt string)

	// ReadLine returns the next line without its terminator. It returns
	// io.EOF once input is exhausted.
	ReadLine() (string, error)

	// Suspend hands the terminal back in its saved state so a pipeline can
	// run. The returned function reclaims it before the next prompt.
	Suspend() (resume func() error, err error)

	// Close releases the source and restores the terminal.
	Close() error
}

// Terminal is the subset of a terminal driver used by the line sources.
type Terminal interface {
	EnterRaw() error
	Restore() error
}

// rawSource drives the built-in editor over a terminal in raw mode.
type rawSource struct {
	term   Terminal
	editor *editor.Editor
	log    *slog.Logger
}

var _ LineSource = (*rawSource)(nil)

func newRawSource(term Terminal, in io.Reader, out io.Writer, log *slog.Logger) (*rawSource, error) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	if err := term.EnterRaw(); err != nil {
		return nil, err
	}
	log.Debug("entered raw mode")

	return &rawSource{
		term:   term,
		editor: editor.New(in, out),
		log:    log,
	}, nil
}

func (r *rawSource) SetPrompt(prompt string) {
	r.editor.SetPrompt(prompt)
}

func (r *rawSource) ReadLine() (string, error) {
	return r.editor.ReadLine()
}

func (r *rawSource) Suspend() (func() error, error) {
	if err := r.term.Restore(); err != nil {
		return nil, err
	}
	r.log.Debug("restored terminal for pipeline")

	return func() error {
		if err := r.term.EnterRaw(); err != nil {
			return err
		}
		r.log.Debug("re-entered raw mode")
		return nil
	}, nil
}

func (r *rawSource) Close() error {
	r.log.Debug("restoring terminal")
	return r.term.Restore()
}

// readlineSource uses a readline editor with in-memory history. readline
// switches the terminal itself around each line, through the shell's own
// terminal driver.
type readlineSource struct {
	rl   *readline.Instance
	term Terminal
}

var _ LineSource = (*readlineSource)(nil)

func newReadlineSource(term Terminal, in io.Reader, out, errOut io.Writer) (*readlineSource, error) {
	cfg := &readline.Config{
		Stdin:          readline.NewCancelableStdin(in),
		Stdout:         out,
		Stderr:         errOut,
		FuncMakeRaw:    term.EnterRaw,
		FuncExitRaw:    term.Restore,
		FuncIsTerminal: func() bool { return true },
	}
	if err := cfg.Init(); err != nil {
		return nil, err
	}

	rl, err := readline.NewEx(cfg)
	if err != nil {
		return nil, err
	}
	return &readlineSource{rl: rl, term: term}, nil
}

func (r *readlineSource) SetPrompt(prompt string) {
	r.rl.SetPrompt(prompt)
}

func (r *readlineSource) ReadLine() (string, error) {
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		// Ctrl-C abandons the line.
		return "", nil
	}
	return line, err
}

func (r *readlineSource) Suspend() (func() error, error) {
	return func() error { return nil }, nil
}

func (r *readlineSource) Close() error {
	closeErr := r.rl.Close()
	if err := r.term.Restore(); err != nil {
		return err
	}
	return closeErr
}

// plainSource reads newline terminated lines from a non-terminal input
// without prompting. It reads a byte at a time so nothing past the current
// line is consumed; the rest of stdin belongs to the commands it runs.
type plainSource struct {
	in   io.Reader
	line []byte
}

var _ LineSource = (*plainSource)(nil)

func newPlainSource(in io.Reader) *plainSource {
	return &plainSource{in: in}
}

func (s *plainSource) SetPrompt(string) {}

func (s *plainSource) ReadLine() (string, error) {
	s.line = s.line[:0]

	var b [1]byte
	for {
		n, err := s.in.Read(b[:])
		if n == 1 {
			if b[0] == '\n' {
				return s.text(), nil
			}
			s.line = append(s.line, b[0])
		}

		switch {
		case err == io.EOF:
			if len(s.line) == 0 {
				return "", io.EOF
			}
			return s.text(), nil
		case err != nil:
			return "", err
		}
	}
}

func (s *plainSource) text() string {
	return strings.TrimSuffix(string(s.line), "\r")
}

func (s *plainSource) Suspend() (func() error, error) {
	return func() error { return nil }, nil
}

func (s *plainSource) Close() error {
	return nil
}

// SourceOptions configures NewLineSource.
type SourceOptions struct {
	Editor string

	// Input and Output are what the editor reads keystrokes from and draws
	// on. They default to the terminal itself.
	Input  io.Reader
	Output io.Writer
	Errors io.Writer

	Logger *slog.Logger
}

// NewLineSource picks a line source for stdin: an editor when it is a
// terminal, plain line reads otherwise. The returned Terminal is nil when
// stdin isn't one.
func NewLineSource(stdin *os.File, opts SourceOptions) (LineSource, *tty.Terminal, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	in := opts.Input
	if in == nil {
		in = stdin
	}

	term, err := tty.Open(int(stdin.Fd()))
	switch {
	case errors.Is(err, tty.ErrNotTerminal):
		log.Debug("stdin is not a terminal, reading lines")
		return newPlainSource(in), nil, nil
	case err != nil:
		return nil, nil, err
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	errOut := opts.Errors
	if errOut == nil {
		errOut = os.Stderr
	}

	var source LineSource
	switch opts.Editor {
	case config.EditorReadline:
		source, err = newReadlineSource(term, in, out, errOut)
	default:
		source, err = newRawSource(term, in, out, log)
	}
	if err != nil {
		return nil, nil, err
	}
	return source, term, nil
}
