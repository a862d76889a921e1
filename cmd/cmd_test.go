package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return out.String(), err
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "init", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Writing config.yaml")
	assert.FileExists(t, filepath.Join(dir, "config.yaml"))

	out, err = execute(t, "init", "--config", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "already exists")
}

func TestLogsCommands(t *testing.T) {
	cast := filepath.Join(t.TempDir(), "session.cast")
	require.NoError(t, os.WriteFile(cast, []byte(
		`{"version":2,"width":80,"height":24}`+"\n"+
			`[0,"o","$ "]`+"\n"+
			`[0.1,"i","l"]`+"\n"+
			`[0.2,"o","ls\r\n"]`+"\n"), 0644))

	cases := map[string][]string{
		"cat":  {"logs", "cat", cast},
		"play": {"logs", "play", "--idle-time-limit", "1ms", cast},
	}

	for tn, args := range cases {
		t.Run(tn, func(t *testing.T) {
			out, err := execute(t, args...)
			require.NoError(t, err)
			assert.Equal(t, "$ ls\r\n", out)
		})
	}
}

func TestLogsMissingFile(t *testing.T) {
	_, err := execute(t, "logs", "cat", filepath.Join(t.TempDir(), "missing.cast"))
	assert.Error(t, err)
}
