package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"syscall"

	"github.com/spf13/afero"
)

// NotStarted is the exit code recorded for a stage that never ran.
const NotStarted = 127

// Executor runs parsed commands as pipelines of OS processes.
type Executor struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// Fs is used to open redirection targets.
	Fs afero.Fs
	// FileMode is the permission given to files created by redirection.
	FileMode os.FileMode
	// LookPath resolves a program name through the search path.
	LookPath func(file string) (string, error)
	// Env is the child environment, nil inherits the shell's.
	Env []string

	Logger *slog.Logger
}

// NewExecutor creates an executor over the real filesystem and PATH.
func NewExecutor(stdin io.Reader, stdout, stderr io.Writer, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Executor{
		Stdin:    stdin,
		Stdout:   stdout,
		Stderr:   stderr,
		Fs:       afero.NewOsFs(),
		FileMode: DefaultFileMode,
		LookPath: exec.LookPath,
		Logger:   logger,
	}
}

// StageStatus is the outcome of one stage.
type StageStatus struct {
	Program  string
	Pid      int
	Started  bool
	ExitCode int
}

// Status is the outcome of a whole pipeline, one entry per stage.
type Status struct {
	Stages []StageStatus
}

// ExitCode returns the exit code of the last stage.
func (s Status) ExitCode() int {
	if len(s.Stages) == 0 {
		return 0
	}
	return s.Stages[len(s.Stages)-1].ExitCode
}

type runningStage struct {
	cmd   *exec.Cmd
	index int
}

// Execute runs every stage of cmd, connecting stage i's stdout to stage
// i+1's stdin, and waits for all of them. A non-zero exit is reported in the
// Status, not as an error.
//
// Redirection targets for every stage are opened before anything is spawned,
// so a *RedirectionError leaves no process running. Stages that can't be
// spawned produce a *SpawnError; the rest of the pipeline still runs.
func (e *Executor) Execute(ctx context.Context, command *Command) (Status, error) {
	stages := command.Pipeline.Stages
	status := Status{Stages: make([]StageStatus, len(stages))}

	// Files stay open until every stage is waited on: a non-*os.File target
	// is fed by a copying goroutine that exec only stops in Wait.
	var files closerList
	defer files.Close()

	bindings := make([]streams, len(stages))
	for i, stage := range stages {
		status.Stages[i] = StageStatus{Program: stage.SimpleCommand.Program, ExitCode: NotStarted}

		for _, r := range stage.Redirections {
			fd, err := openRedirection(e.Fs, r, e.fileMode())
			if err != nil {
				e.Logger.Warn("redirection failed", "file", r.Filename, "error", err)
				return status, err
			}
			files.add(fd)
			bindings[i].bind(r.Target, fd)
		}
	}

	var (
		running   []runningStage
		spawnErrs []error
		prevRead  *os.File
		pipeErr   error
	)

	for i, stage := range stages {
		// Handles the shell must drop once this stage has them.
		var handedOff closerList

		s := streams{stdin: e.Stdin, stdout: e.Stdout, stderr: e.Stderr}
		if prevRead != nil {
			s.stdin = prevRead
			handedOff.add(prevRead)
			prevRead = nil
		}

		if i < len(stages)-1 {
			pr, pw, err := os.Pipe()
			if err != nil {
				handedOff.Close()
				pipeErr = fmt.Errorf("pipe: %w", err)
				break
			}
			s.stdout = pw
			handedOff.add(pw)
			prevRead = pr
		}

		if bindings[i].stdout != nil {
			s.stdout = bindings[i].stdout
		}
		if bindings[i].stderr != nil {
			s.stderr = bindings[i].stderr
		}

		cmd, err := e.start(ctx, stage.SimpleCommand, s)
		handedOff.Close()
		if err != nil {
			e.Logger.Warn("stage not started", "stage", i, "program", stage.SimpleCommand.Program, "error", err)
			spawnErrs = append(spawnErrs, err)
			continue
		}

		e.Logger.Debug("stage started", "stage", i, "program", stage.SimpleCommand.Program, "pid", cmd.Process.Pid)
		status.Stages[i].Started = true
		status.Stages[i].Pid = cmd.Process.Pid
		running = append(running, runningStage{cmd: cmd, index: i})
	}

	if prevRead != nil {
		prevRead.Close()
	}

	for _, r := range running {
		code := e.wait(r.cmd)
		status.Stages[r.index].ExitCode = code
		e.Logger.Debug("stage exited", "stage", r.index, "program", status.Stages[r.index].Program, "code", code)
	}

	if pipeErr != nil {
		spawnErrs = append(spawnErrs, pipeErr)
	}
	return status, errors.Join(spawnErrs...)
}

func (e *Executor) fileMode() os.FileMode {
	if e.FileMode == 0 {
		return DefaultFileMode
	}
	return e.FileMode
}

func (e *Executor) start(ctx context.Context, sc SimpleCommand, s streams) (*exec.Cmd, error) {
	path, err := e.LookPath(sc.Program)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			err = ErrNotFound
		}
		return nil, &SpawnError{Program: sc.Program, Err: err}
	}

	cmd := exec.CommandContext(ctx, path, sc.Args...)
	cmd.Args = sc.Argv()
	cmd.Env = e.Env
	cmd.Stdin = s.stdin
	cmd.Stdout = s.stdout
	cmd.Stderr = s.stderr

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Program: sc.Program, Err: err}
	}

	return cmd, nil
}

// wait reaps cmd and returns its exit code. Signalled processes report
// 128+signal.
func (e *Executor) wait(cmd *exec.Cmd) int {
	err := cmd.Wait()
	if err == nil {
		return 0
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		e.Logger.Warn("wait failed", "program", cmd.Args[0], "error", err)
		if cmd.ProcessState != nil {
			return cmd.ProcessState.ExitCode()
		}
		return -1
	}

	if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return exitErr.ExitCode()
}
