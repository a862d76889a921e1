//go:build darwin || dragonfly || freebsd || linux || netbsd || openbsd

// Package tty switches a terminal between its saved (cooked) attributes and
// the raw mode used by the line editor.
package tty

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// ErrNotTerminal is returned by Open when the descriptor isn't a terminal.
var ErrNotTerminal = errors.New("not a terminal")

// IsTerminal reports whether fd refers to a terminal.
func IsTerminal(fd int) bool {
	return term.IsTerminal(fd)
}

// Terminal holds the attributes of a terminal as they were when it was
// opened. Those attributes are captured once and are what Restore puts
// back.
type Terminal struct {
	fd int

	mu    sync.Mutex
	saved unix.Termios
	raw   bool
}

// Open captures the current attributes of fd.
func Open(fd int) (*Terminal, error) {
	if !IsTerminal(fd) {
		return nil, ErrNotTerminal
	}

	saved, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return nil, fmt.Errorf("get terminal attributes: %w", err)
	}

	return &Terminal{fd: fd, saved: *saved}, nil
}

// IsRaw reports whether raw mode is currently installed.
func (t *Terminal) IsRaw() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.raw
}

// EnterRaw installs raw mode. It is a no-op if raw mode is already on.
func (t *Terminal) EnterRaw() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.raw {
		return nil
	}

	raw := MakeRaw(t.saved)
	if err := unix.IoctlSetTermios(t.fd, ioctlSetTermios, &raw); err != nil {
		return fmt.Errorf("set raw mode: %w", err)
	}
	t.raw = true
	return nil
}

// Restore reinstalls the attributes captured by Open. It is safe to call
// from a signal handler goroutine, more than once, and on a nil Terminal.
func (t *Terminal) Restore() error {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.raw {
		return nil
	}

	if err := unix.IoctlSetTermios(t.fd, ioctlSetTermios, &t.saved); err != nil {
		return fmt.Errorf("restore terminal: %w", err)
	}
	t.raw = false
	return nil
}

// MakeRaw derives the editor's raw attributes from cooked ones: no echo, no
// canonical line buffering, no signal characters, 8-bit characters. Output
// post-processing stays on so a bare "\n" written by a child still becomes
// CRLF.
func MakeRaw(cooked unix.Termios) unix.Termios {
	raw := cooked

	raw.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	raw.Oflag |= unix.OPOST | unix.ONLCR
	raw.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	raw.Cflag &^= unix.CSIZE | unix.PARENB
	raw.Cflag |= unix.CS8
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	return raw
}
