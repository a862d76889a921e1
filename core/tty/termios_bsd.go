//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package tty

import "golang.org/x/sys/unix"

const (
	ioctlGetTermios = unix.TIOCGETA
	// Takes effect at once and keeps type-ahead queued across mode switches.
	ioctlSetTermios = unix.TIOCSETA
)
