package core

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/josephlewis42/swell/core/shell"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedSource replays fixed lines and records how the shell drove it.
type scriptedSource struct {
	lines   []string
	prompts []string

	suspended  int
	resumed    int
	suspendErr error
	resumeErr  error
	closed     bool
}

var _ LineSource = (*scriptedSource)(nil)

func (s *scriptedSource) SetPrompt(prompt string) {
	s.prompts = append(s.prompts, prompt)
}

func (s *scriptedSource) ReadLine() (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedSource) Suspend() (func() error, error) {
	if s.suspendErr != nil {
		return nil, s.suspendErr
	}
	s.suspended++
	return func() error {
		s.resumed++
		return s.resumeErr
	}, nil
}

func (s *scriptedSource) Close() error {
	s.closed = true
	return nil
}

type testShell struct {
	*Shell
	source *scriptedSource
	stdout *bytes.Buffer
	stderr *bytes.Buffer
}

func newTestShell(t *testing.T, prompt string, lines ...string) *testShell {
	t.Helper()

	for _, p := range []string{"echo", "false", "cat"} {
		if _, err := exec.LookPath(p); err != nil {
			t.Skipf("%s not available: %v", p, err)
		}
	}

	source := &scriptedSource{lines: lines}
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	executor := shell.NewExecutor(nil, stdout, stderr, nil)

	return &testShell{
		Shell:  NewShell(source, executor, stderr, ShellOptions{Prompt: prompt}),
		source: source,
		stdout: stdout,
		stderr: stderr,
	}
}

func TestShellRun(t *testing.T) {
	ts := newTestShell(t, "", "echo one", "", "   ", "echo two | cat")

	require.NoError(t, ts.Run(context.Background()))

	assert.Equal(t, "one\ntwo\n", ts.stdout.String())
	assert.Empty(t, ts.stderr.String())
	// One prompt per read, including the read that hit EOF.
	assert.Equal(t, []string{"$ ", "$ ", "$ ", "$ ", "$ "}, ts.source.prompts)
	// The terminal is only handed over for pipelines.
	assert.Equal(t, 2, ts.source.suspended)
	assert.Equal(t, 2, ts.source.resumed)
}

func TestShellExit(t *testing.T) {
	ts := newTestShell(t, "", "echo before", " exit ", "echo after")

	require.NoError(t, ts.Run(context.Background()))

	assert.Equal(t, "before\n", ts.stdout.String())
	assert.Equal(t, []string{"echo after"}, ts.source.lines)
}

func TestShellReportsErrorsAndContinues(t *testing.T) {
	cases := map[string]struct {
		line       string
		wantReport string
		wantStatus int
	}{
		"lex error": {
			line:       `echo "unterminated`,
			wantReport: `swell: no token matches at "\"unterminated"` + "\n",
			wantStatus: 0,
		},
		"syntax error": {
			line:       "| wc",
			wantReport: "swell: syntax error: ",
			wantStatus: 0,
		},
		"command not found": {
			line:       "swell-no-such-program-here",
			wantReport: "swell: swell-no-such-program-here: command not found\n",
			wantStatus: shell.NotStarted,
		},
		"redirection failure": {
			line:       "echo hi > /swell/no/such/dir/out",
			wantReport: "swell: /swell/no/such/dir/out: ",
			wantStatus: 1,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			ts := newTestShell(t, "", tc.line, "echo still running")

			require.NoError(t, ts.Run(context.Background()))

			assert.Contains(t, ts.stderr.String(), tc.wantReport)
			assert.Equal(t, "still running\n", ts.stdout.String())
		})
	}

	for tn, tc := range cases {
		t.Run(tn+" status", func(t *testing.T) {
			ts := newTestShell(t, "")

			exit, err := ts.Eval(context.Background(), tc.line)
			require.NoError(t, err)
			assert.False(t, exit)
			assert.Equal(t, tc.wantStatus, ts.LastStatus)
		})
	}
}

func TestShellReportsEachSpawnFailure(t *testing.T) {
	ts := newTestShell(t, "")

	_, err := ts.Eval(context.Background(), "swell-missing-a | swell-missing-b")
	require.NoError(t, err)

	assert.Equal(t,
		"swell: swell-missing-a: command not found\n"+
			"swell: swell-missing-b: command not found\n",
		ts.stderr.String())
}

func TestShellLastStatusPrompt(t *testing.T) {
	ts := newTestShell(t, "[%?] ", "false", "echo ok")

	require.NoError(t, ts.Run(context.Background()))

	assert.Equal(t, []string{"[0] ", "[1] ", "[0] "}, ts.source.prompts)
	assert.Equal(t, 0, ts.LastStatus)
}

func TestShellAppendsStderrRedirection(t *testing.T) {
	dir := t.TempDir()
	errLog := filepath.Join(dir, "err.log")
	ts := newTestShell(t, "", "false 2>> "+errLog, "false 2>> "+errLog)

	require.NoError(t, ts.Run(context.Background()))
	assert.Equal(t, 1, ts.LastStatus)
	assert.Empty(t, ts.stderr.String())
	assert.FileExists(t, errLog)
}

func TestShellTerminalFailuresAreFatal(t *testing.T) {
	t.Run("suspend", func(t *testing.T) {
		ts := newTestShell(t, "", "echo hi")
		ts.source.suspendErr = errors.New("tcsetattr")

		assert.EqualError(t, ts.Run(context.Background()), "tcsetattr")
		assert.Empty(t, ts.stdout.String())
	})

	t.Run("resume", func(t *testing.T) {
		ts := newTestShell(t, "", "echo hi", "echo again")
		ts.source.resumeErr = errors.New("tcsetattr")

		assert.EqualError(t, ts.Run(context.Background()), "tcsetattr")
		assert.Equal(t, "hi\n", ts.stdout.String())
	})
}

func TestShellColor(t *testing.T) {
	defer func(noColor bool) { color.NoColor = noColor }(color.NoColor)
	color.NoColor = false

	source := &scriptedSource{}
	stderr := &bytes.Buffer{}
	s := NewShell(source, shell.NewExecutor(nil, io.Discard, stderr, nil), stderr, ShellOptions{
		Prompt: "> ",
		Color:  true,
	})
	assert.Equal(t, "\x1b[32;1m> \x1b[0m", s.Prompt())

	s.report(errors.New("boom"))
	assert.Equal(t, "\x1b[31mswell: boom\n\x1b[0m", stderr.String())
}

func TestShellColorDisabled(t *testing.T) {
	defer func(noColor bool) { color.NoColor = noColor }(color.NoColor)
	color.NoColor = false

	s := NewShell(&scriptedSource{}, nil, io.Discard, ShellOptions{Prompt: "> "})
	assert.Equal(t, "> ", s.Prompt())
}
