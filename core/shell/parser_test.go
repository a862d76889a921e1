package shell

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/anmitsu/go-shlex"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEndToEndExample(t *testing.T) {
	cmd, err := ParseLine("echo hello | wc -c > count.txt")
	require.NoError(t, err)

	expected := &Command{Pipeline: Pipeline{Stages: []Stage{
		{SimpleCommand: SimpleCommand{Program: "echo", Args: []string{"hello"}}},
		{
			SimpleCommand: SimpleCommand{Program: "wc", Args: []string{"-c"}},
			Redirections:  []Redirection{{Target: Stdout, Append: false, Filename: "count.txt"}},
		},
	}}}
	assert.Equal(t, expected, cmd)
}

func TestParseStageCount(t *testing.T) {
	cases := map[string]int{
		"ls":                           1,
		"ls -la":                       1,
		"ls | wc":                      2,
		"cat a | sort | uniq -c":       3,
		`echo "x | y" | cat`:           2,
		"a 2>e | b > o | c >> p | d":   4,
		"false 2>> err.log":            1,
		"a|b|c|d|e|f":                  6,
		`grep "\"quoted\"" f 1>> out`:  1,
		"tr a b 2> /dev/null | wc -l ": 2,
	}

	for line, stages := range cases {
		t.Run(line, func(t *testing.T) {
			cmd, err := ParseLine(line)
			require.NoError(t, err)
			assert.Len(t, cmd.Pipeline.Stages, stages)
		})
	}
}

func TestParseSyntaxErrors(t *testing.T) {
	cases := map[string]string{
		"dangling pipe":                "ls | ",
		"leading pipe":                 "| ls",
		"double pipe":                  "ls || wc",
		"only pipe":                    "|",
		"only redirection":             ">",
		"redirection first":            "> out ls",
		"missing filename":             "ls >",
		"literal filename":             `ls > "out"`,
		"redirection as filename":      "ls > 2> x",
		"word after redirection":       "ls > out extra",
		"literal after redirection":    `ls > out "extra"`,
		"literal program":              `"ls" -la`,
		"missing filename before pipe": "ls 2>> | wc",
	}

	for tn, line := range cases {
		t.Run(tn, func(t *testing.T) {
			cmd, err := ParseLine(line)
			require.Error(t, err)
			assert.Nil(t, cmd)
			assert.True(t, errors.Is(err, ErrSyntax), "got %v", err)

			var syntaxErr *SyntaxError
			assert.True(t, errors.As(err, &syntaxErr))
		})
	}
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(nil)
	assert.True(t, errors.Is(err, ErrSyntax))
}

func TestParseArguments(t *testing.T) {
	cases := map[string]struct {
		line string
		args []string
	}{
		"words pass through":    {`echo a\b c'd`, []string{`a\b`, `c'd`}},
		"quotes stripped":       {`echo "hello world"`, []string{"hello world"}},
		"escaped quote":         {`echo "say \"hi\""`, []string{`say "hi"`}},
		"other escapes kept":    {`echo "a\tb"`, []string{`a\tb`}},
		"empty literal":         {`echo ""`, []string{""}},
		"operators in literal":  {`echo "a|b" ">c"`, []string{"a|b", ">c"}},
		"mixed words and quote": {`printf "%s\n" x`, []string{`%s\n`, "x"}},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			cmd, err := ParseLine(tc.line)
			require.NoError(t, err)
			require.Len(t, cmd.Pipeline.Stages, 1)
			assert.Equal(t, tc.args, cmd.Pipeline.Stages[0].SimpleCommand.Args)
		})
	}
}

func TestParseRedirections(t *testing.T) {
	cmd, err := ParseLine("cmd > a 1> b >> c 1>> d 2> e 2>> f")
	require.NoError(t, err)

	expected := []Redirection{
		{Target: Stdout, Append: false, Filename: "a"},
		{Target: Stdout, Append: false, Filename: "b"},
		{Target: Stdout, Append: true, Filename: "c"},
		{Target: Stdout, Append: true, Filename: "d"},
		{Target: Stderr, Append: false, Filename: "e"},
		{Target: Stderr, Append: true, Filename: "f"},
	}
	assert.Equal(t, expected, cmd.Pipeline.Stages[0].Redirections)
}

func TestCommandStringRoundTrip(t *testing.T) {
	lines := []string{
		"ls",
		"echo hello | wc -c > count.txt",
		"false 2>> err.log",
		`echo "hello world" "a|b" "" x`,
		`echo "say \"hi\"" "back\slash here"`,
		`grep -v "> not a redirect" in.txt 1>> out 2> err | sort | uniq -c`,
		`echo "\\\""`,
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			first, err := ParseLine(line)
			require.NoError(t, err)

			second, err := ParseLine(first.String())
			require.NoError(t, err, "reparsing %q", first.String())
			assert.Equal(t, first, second)
			assert.Equal(t, first.String(), second.String())
		})
	}
}

func TestCommandStringSplitsLikePOSIX(t *testing.T) {
	// Arguments without backslashes quote the same way a POSIX splitter
	// reads them back.
	cases := map[string][]string{
		"echo hello | wc -c":            {"echo", "hello", "|", "wc", "-c"},
		`echo "hello world" x`:          {"echo", "hello world", "x"},
		`printf "a b" > out`:            {"printf", "a b", ">", "out"},
		`cat in 2>> log | tr "a b" x-y`: {"cat", "in", "2>>", "log", "|", "tr", "a b", "x-y"},
	}

	for line, expected := range cases {
		t.Run(line, func(t *testing.T) {
			cmd, err := ParseLine(line)
			require.NoError(t, err)

			actual, err := shlex.Split(cmd.String(), true)
			require.NoError(t, err)
			assert.Equal(t, expected, actual)
		})
	}
}

func TestDumpGolden(t *testing.T) {
	g := goldie.New(
		t,
		goldie.WithFixtureDir(filepath.Join("testdata", "golden")),
		goldie.WithDiffEngine(goldie.ColoredDiff),
	)

	cases := map[string]string{
		"simple":       "ls -la /tmp",
		"pipeline":     "echo hello | wc -c > count.txt",
		"stderr":       "false 2>> err.log",
		"quoted":       `echo "a | b" "say \"hi\""`,
		"multi-redirs": "make all > build.log 2> errors.log | tail -n 5",
	}

	for tn, line := range cases {
		t.Run(tn, func(t *testing.T) {
			cmd, err := ParseLine(line)
			require.NoError(t, err)

			buf := &bytes.Buffer{}
			require.NoError(t, Dump(buf, cmd))
			g.Assert(t, tn, buf.Bytes())
		})
	}
}
