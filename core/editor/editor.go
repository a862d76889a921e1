// Package editor implements a single-line editor over a terminal in raw
// mode. It understands insertion, backspace, forward delete, and cursor
// movement with the arrow, Home and End keys.
package editor

import (
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"
)

const (
	keyNewline   = 10
	keyEnter     = 13
	keyEscape    = 27
	keyBackspace = 127
)

// Editor reads a line at a time from in, echoing the prompt and edit buffer
// to out with ANSI escape sequences.
type Editor struct {
	in     io.Reader
	out    io.Writer
	prompt string

	buf     []rune
	cursor  int
	esc     escapeParser
	pending []byte // partial UTF-8 sequence
}

// New creates an editor. in should deliver raw, unechoed bytes.
func New(in io.Reader, out io.Writer) *Editor {
	return &Editor{
		in:     in,
		out:    out,
		prompt: "$ ",
	}
}

// SetPrompt sets the text drawn in front of the buffer.
func (e *Editor) SetPrompt(prompt string) {
	e.prompt = prompt
}

// Buffer returns the current contents of the edit buffer.
func (e *Editor) Buffer() string {
	return string(e.buf)
}

// Cursor returns the cursor position as an index into the buffer.
func (e *Editor) Cursor() int {
	return e.cursor
}

// ReadLine draws the prompt and edits a line until Enter. Both CR and LF
// end the line. If the input ends before Enter, the partial buffer is
// returned, or io.EOF if it is empty.
func (e *Editor) ReadLine() (string, error) {
	e.buf = e.buf[:0]
	e.cursor = 0
	e.pending = e.pending[:0]
	e.esc = escapeParser{}

	if err := e.redraw(); err != nil {
		return "", err
	}

	var b [1]byte
	for {
		n, err := e.in.Read(b[:])
		if n == 1 {
			done, werr := e.feed(b[0])
			if werr != nil {
				return "", werr
			}
			if done {
				if err := e.write("\r\n"); err != nil {
					return "", err
				}
				return e.Buffer(), nil
			}
		}

		switch {
		case err == io.EOF:
			if len(e.pending) > 0 {
				e.pending = e.pending[:0]
				if err := e.insert(utf8.RuneError); err != nil {
					return "", err
				}
			}
			if len(e.buf) == 0 {
				return "", io.EOF
			}
			return e.Buffer(), e.write("\r\n")
		case err != nil:
			return "", err
		}
	}
}

// feed handles a single input byte and reports whether it ended the line.
func (e *Editor) feed(b byte) (bool, error) {
	if len(e.pending) > 0 {
		if utf8.RuneStart(b) {
			e.pending = e.pending[:0]
			if err := e.insert(utf8.RuneError); err != nil {
				return false, err
			}
		} else {
			return false, e.continueRune(b)
		}
	}

	if e.esc.active() {
		act, done, passthrough := e.esc.feed(b)
		if !passthrough {
			if done {
				return false, e.apply(act)
			}
			return false, nil
		}
	}

	switch {
	case b == keyEnter || b == keyNewline:
		return true, nil
	case b == keyBackspace:
		return false, e.backspace()
	case b == keyEscape:
		e.esc.start()
		return false, nil
	case b >= utf8.RuneSelf:
		return false, e.continueRune(b)
	}

	return false, e.insert(rune(b))
}

// continueRune collects bytes of a multi-byte UTF-8 sequence and inserts
// the rune once it is complete. Invalid sequences become U+FFFD.
func (e *Editor) continueRune(b byte) error {
	e.pending = append(e.pending, b)
	if !utf8.FullRune(e.pending) {
		return nil
	}

	r, _ := utf8.DecodeRune(e.pending)
	e.pending = e.pending[:0]
	return e.insert(r)
}

func (e *Editor) apply(act action) error {
	switch act {
	case actLeft:
		if e.cursor > 0 {
			e.cursor--
			return e.write("\x1b[1D")
		}
	case actRight:
		if e.cursor < len(e.buf) {
			e.cursor++
			return e.write("\x1b[1C")
		}
	case actHome:
		if e.cursor > 0 {
			n := e.cursor
			e.cursor = 0
			return e.write(fmt.Sprintf("\x1b[%dD", n))
		}
	case actEnd:
		if n := len(e.buf) - e.cursor; n > 0 {
			e.cursor = len(e.buf)
			return e.write(fmt.Sprintf("\x1b[%dC", n))
		}
	case actDelete:
		if e.cursor < len(e.buf) {
			e.buf = append(e.buf[:e.cursor], e.buf[e.cursor+1:]...)
			return e.redraw()
		}
	case actNone:
	}
	return nil
}

func (e *Editor) insert(r rune) error {
	e.buf = append(e.buf, 0)
	copy(e.buf[e.cursor+1:], e.buf[e.cursor:])
	e.buf[e.cursor] = r
	e.cursor++
	return e.redraw()
}

func (e *Editor) backspace() error {
	if e.cursor == 0 {
		return nil
	}
	e.cursor--
	e.buf = append(e.buf[:e.cursor], e.buf[e.cursor+1:]...)
	return e.redraw()
}

// redraw clears the line, writes the prompt and buffer, then moves the
// terminal cursor back to the edit position.
func (e *Editor) redraw() error {
	var line bytes.Buffer

	line.WriteString("\x1b[2K\r")
	line.WriteString(e.prompt)
	line.WriteString(string(e.buf))
	if back := len(e.buf) - e.cursor; back > 0 {
		fmt.Fprintf(&line, "\x1b[%dD", back)
	}

	return e.write(line.String())
}

type flusher interface {
	Flush() error
}

// write sends s in a single call and flushes buffered writers so the
// terminal never lags behind the keystrokes.
func (e *Editor) write(s string) error {
	if _, err := io.WriteString(e.out, s); err != nil {
		return err
	}
	if f, ok := e.out.(flusher); ok {
		return f.Flush()
	}
	return nil
}
