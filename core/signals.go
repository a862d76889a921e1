package core

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// ExitFunc ends the process, it is os.Exit outside tests.
type ExitFunc func(code int)

// HandleSignals keeps the shell alive through keyboard interrupts aimed at
// a running pipeline, and restores the terminal before exiting on SIGTERM
// or SIGHUP. Call the returned function to stop handling.
func HandleSignals(term Terminal, log *slog.Logger, exit ExitFunc) (stop func()) {
	// Notify, unlike Ignore, doesn't leak into children: they get the
	// default disposition back when exec'd.
	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, syscall.SIGINT, syscall.SIGQUIT)

	fatal := make(chan os.Signal, 1)
	signal.Notify(fatal, syscall.SIGTERM, syscall.SIGHUP)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case sig := <-interrupts:
				log.Debug("ignoring signal", "signal", sig)
			case sig := <-fatal:
				log.Info("terminating on signal", "signal", sig)
				if term != nil {
					if err := term.Restore(); err != nil {
						log.Error("restore terminal", "error", err)
					}
				}
				code := 128
				if s, ok := sig.(syscall.Signal); ok {
					code += int(s)
				}
				exit(code)
				return
			}
		}
	}()

	return func() {
		signal.Stop(interrupts)
		signal.Stop(fatal)
		close(done)
	}
}
