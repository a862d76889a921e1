package config

import (
	_ "embed"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"

	EditorRaw      = "raw"
	EditorReadline = "readline"
)

// Configuration holds the user settings for the shell.
type Configuration struct {
	configFs  afero.Fs
	configDir string

	Prompt     string `json:"prompt" validate:"required"`
	Color      bool   `json:"color"`
	LineEditor string `json:"line_editor" validate:"oneof=raw readline"`
	LogFile    string `json:"log_file"`
	LogLevel   string `json:"log_level" validate:"oneof=debug info warn error"`
	FileMode   uint32 `json:"file_mode" validate:"lte=511"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})

	return validate.Struct(c)
}

func (c *Configuration) fs() afero.Fs {
	if c.configFs == nil {
		return afero.NewOsFs()
	}
	return c.configFs
}

// Level converts LogLevel to a slog level.
func (c *Configuration) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// RedirectionMode is the permission used for files created by redirections.
func (c *Configuration) RedirectionMode() fs.FileMode {
	return fs.FileMode(c.FileMode).Perm()
}

// OpenLogFile opens the application log in an append only state. It returns
// nil if no log file is configured.
func (c *Configuration) OpenLogFile() (afero.File, error) {
	if c.LogFile == "" {
		return nil, nil
	}
	return c.fs().OpenFile(joinPath(c.configDir, c.LogFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
}

// Dir returns the directory the configuration was loaded from.
func (c *Configuration) Dir() string {
	return c.configDir
}

func defaultConfig() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}

// joinPath resolves name against the configuration directory unless it is
// already absolute.
func joinPath(dir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}
