package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/josephlewis42/swell/core"
	"github.com/josephlewis42/swell/core/config"
	"github.com/josephlewis42/swell/core/logger"
	"github.com/josephlewis42/swell/core/shell"
	"github.com/josephlewis42/swell/core/ttylog"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfgPath    string
	debug      bool
	recordPath string
)

func loadConfig() (*config.Configuration, error) {
	return config.Load(afero.NewOsFs(), cfgPath)
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "swell",
	Short: "A small interactive shell",
	Long: `swell reads command lines in a raw-mode line editor and runs them as
pipelines of programs with optional output and error redirection.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		configuration, err := loadConfig()
		if err != nil {
			return err
		}

		return runShell(cmd, configuration)
	},
}

func runShell(cmd *cobra.Command, configuration *config.Configuration) error {
	logFile, err := configuration.OpenLogFile()
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}

	opts := logger.Options{Level: configuration.Level()}
	if logFile != nil {
		opts.File = logFile
	}
	if debug {
		opts.Debug = cmd.ErrOrStderr()
	}
	log := logger.New(opts)

	var (
		input  io.Reader = os.Stdin
		stdout io.Writer = os.Stdout
		stderr io.Writer = os.Stderr
	)

	if recordPath != "" {
		castFile, err := os.Create(recordPath)
		if err != nil {
			return fmt.Errorf("open recording: %w", err)
		}
		defer castFile.Close()

		recorder := ttylog.NewRecorder(ttylog.NewAsciicastLogSink(castFile, recordingHeader()))
		defer func() {
			if err := recorder.Err(); err != nil {
				log.Warn("recording incomplete", "file", recordPath, "error", err)
			}
		}()

		input = recorder.Reader(os.Stdin)
		stdout = recorder.Writer(ttylog.FDStdout, os.Stdout)
		stderr = recorder.Writer(ttylog.FDStderr, os.Stderr)
	}

	source, terminal, err := core.NewLineSource(os.Stdin, core.SourceOptions{
		Editor: configuration.LineEditor,
		Input:  input,
		Output: stdout,
		Errors: stderr,
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("terminal setup: %w", err)
	}
	defer source.Close()

	var signalTerm core.Terminal
	if terminal != nil {
		signalTerm = terminal
	}
	stop := core.HandleSignals(signalTerm, log, os.Exit)
	defer stop()

	executor := shell.NewExecutor(os.Stdin, stdout, stderr, log)
	executor.FileMode = configuration.RedirectionMode()

	sh := core.NewShell(source, executor, stderr, core.ShellOptions{
		Prompt: configuration.Prompt,
		Color:  configuration.Color,
		Logger: log,
	})

	log.Info("shell started", "config", configuration.Dir(), "editor", configuration.LineEditor)
	return sh.Run(cmd.Context())
}

func recordingHeader() ttylog.AsciicastHeader {
	header := ttylog.AsciicastHeader{
		Title: "swell session",
		Shell: "swell",
		Term:  os.Getenv("TERM"),
	}
	if width, height, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		header.Width, header.Height = width, height
	}
	return header
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", ".", "config directory")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "log debug events to stderr")
	rootCmd.Flags().StringVar(&recordPath, "record", "", "record the session to an asciicast file")
}
