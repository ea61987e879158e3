package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"
	"pkt.systems/pslog"

	"github.com/dshills/keymark/internal/config/loader"
	"github.com/dshills/keymark/internal/format"
	"github.com/dshills/keymark/internal/renderer"
	"github.com/dshills/keymark/internal/theme"
)

// DefaultFileName is the config file looked up in the user config dir.
const DefaultFileName = "config.toml"

// Config is the typed, merged configuration.
type Config struct {
	Editor  EditorConfig  `toml:"editor" yaml:"editor"`
	Render  RenderConfig  `toml:"render" yaml:"render"`
	Table   TableConfig   `toml:"table" yaml:"table"`
	Logging LoggingConfig `toml:"logging" yaml:"logging"`

	// Source is the file that was read, empty when none existed.
	Source string `toml:"-" yaml:"-"`
}

// EditorConfig holds session and interface settings.
type EditorConfig struct {
	Theme   string `toml:"theme" yaml:"theme"`
	Locale  string `toml:"locale" yaml:"locale"`
	MaxUndo int    `toml:"max_undo" yaml:"max_undo"`
}

// RenderConfig holds render pipeline settings.
type RenderConfig struct {
	ImageMaxWidth int  `toml:"image_max_width" yaml:"image_max_width"`
	Highlight     bool `toml:"highlight" yaml:"highlight"`
	Math          bool `toml:"math" yaml:"math"`
}

// TableConfig holds the table dialog defaults.
type TableConfig struct {
	Rows int `toml:"rows" yaml:"rows"`
	Cols int `toml:"cols" yaml:"cols"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level  string `toml:"level" yaml:"level"`
	Format string `toml:"format" yaml:"format"`
}

type options struct {
	fs        loader.FileSystem
	envPrefix string
	noEnv     bool
}

// Option configures Load.
type Option func(*options)

// WithFS reads the config file from fsys instead of the OS.
func WithFS(fsys loader.FileSystem) Option {
	return func(o *options) { o.fs = fsys }
}

// WithEnvPrefix changes the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(o *options) { o.envPrefix = prefix }
}

// WithoutEnv skips the environment layer.
func WithoutEnv() Option {
	return func(o *options) { o.noEnv = true }
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: EditorConfig{
			Theme:   theme.Light.String(),
			Locale:  "en",
			MaxUndo: 1000,
		},
		Render: RenderConfig{
			ImageMaxWidth: renderer.DefaultImageMaxWidth,
			Highlight:     true,
			Math:          true,
		},
		Table: TableConfig{
			Rows: format.DefaultRows,
			Cols: format.DefaultCols,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(defaultUserConfigDir(), DefaultFileName)
}

func defaultUserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "keymark")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "keymark")
}

// Load layers defaults, the file at path and the environment, then
// validates the result. An empty path means DefaultPath; a missing file is
// not an error.
func Load(path string, opts ...Option) (*Config, error) {
	o := options{fs: loader.DefaultFS(), envPrefix: loader.DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&o)
	}
	if path == "" {
		path = DefaultPath()
	}

	merged, err := toMap(Default())
	if err != nil {
		return nil, err
	}

	fileCfg, err := loader.ForPath(o.fs, path).Load()
	if err != nil {
		return nil, err
	}
	source := ""
	if fileCfg != nil {
		source = path
		merged = loader.DeepMerge(merged, fileCfg)
	}

	if !o.noEnv {
		envCfg, err := loader.NewEnvLoader(o.envPrefix).Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, envCfg)
	}

	cfg, err := fromMap(merged)
	if err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Source = source

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func toMap(cfg *Config) (map[string]any, error) {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

func fromMap(m map[string]any) (*Config, error) {
	data, err := toml.Marshal(m)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := toml.NewDecoder(bytes.NewReader(data)).Decode(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var logLevels = []string{"trace", "debug", "info", "warn", "error"}

// Validate checks every setting and joins the failures.
func (c *Config) Validate() error {
	var errs []error
	add := func(path, msg string, v any) {
		errs = append(errs, &ValidationError{Path: path, Message: msg, Value: v})
	}

	if _, err := theme.ParseMode(c.Editor.Theme); err != nil {
		add("editor.theme", "must be light or dark", c.Editor.Theme)
	}
	if _, err := language.Parse(c.Editor.Locale); err != nil {
		add("editor.locale", "not a language tag", c.Editor.Locale)
	}
	if c.Editor.MaxUndo < 0 {
		add("editor.max_undo", "must not be negative", c.Editor.MaxUndo)
	}
	if c.Render.ImageMaxWidth <= 0 {
		add("render.image_max_width", "must be positive", c.Render.ImageMaxWidth)
	}
	if !inDimension(c.Table.Rows) {
		add("table.rows", fmt.Sprintf("must be between %d and %d", format.MinDimension, format.MaxDimension), c.Table.Rows)
	}
	if !inDimension(c.Table.Cols) {
		add("table.cols", fmt.Sprintf("must be between %d and %d", format.MinDimension, format.MaxDimension), c.Table.Cols)
	}
	if !contains(logLevels, strings.ToLower(c.Logging.Level)) {
		add("logging.level", "must be one of "+strings.Join(logLevels, ", "), c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		add("logging.format", "must be console or json", c.Logging.Format)
	}

	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

func inDimension(n int) bool {
	return n >= format.MinDimension && n <= format.MaxDimension
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// ThemeMode returns the configured theme. Call after Validate.
func (c *Config) ThemeMode() theme.Mode {
	m, _ := theme.ParseMode(c.Editor.Theme)
	return m
}

// RendererOptions returns the pipeline options for the render section.
func (c *Config) RendererOptions() []renderer.Option {
	return []renderer.Option{
		renderer.WithImageMaxWidth(c.Render.ImageMaxWidth),
		renderer.WithHighlighting(c.Render.Highlight),
		renderer.WithMath(c.Render.Math),
	}
}

// LoggerOptions returns pslog options for the logging section.
func (c *Config) LoggerOptions() pslog.Options {
	opts := pslog.Options{Mode: pslog.ModeConsole, MinLevel: pslog.InfoLevel}
	if strings.EqualFold(c.Logging.Format, "json") {
		opts.Mode = pslog.ModeStructured
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace":
		opts.MinLevel = pslog.TraceLevel
	case "debug":
		opts.MinLevel = pslog.DebugLevel
	case "warn":
		opts.MinLevel = pslog.WarnLevel
	case "error":
		opts.MinLevel = pslog.ErrorLevel
	}
	return opts
}
