//go:build linux

package tty

import "golang.org/x/sys/unix"

const (
	ioctlGetTermios = unix.TCGETS
	// Takes effect at once and keeps type-ahead queued across mode switches.
	ioctlSetTermios = unix.TCSETS
)
