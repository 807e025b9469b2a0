package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/neurodesk/tstring/pkg/tstring"
	"github.com/neurodesk/tstring/pkg/validator"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "TSTRING"

type config struct {
	LogLevel      string `mapstructure:"log-level"`
	LogFormat     string `mapstructure:"log-format"`
	MemoryLimit   int    `mapstructure:"memory-limit"`
	MaxRenderSize int    `mapstructure:"max-render-size"`
	Output        string `mapstructure:"output"`
}

var defaults = map[string]any{
	"log-level":       "info",
	"log-format":      "text",
	"memory-limit":    0,
	"max-render-size": 0,
	"output":          "yaml",
}

func (c config) validate() error {
	return validator.All(
		validator.MatchesAllowed(c.LogLevel, []string{"debug", "info", "warn", "error"}, "log-level"),
		validator.MatchesAllowed(c.LogFormat, []string{"text", "json"}, "log-format"),
		validator.NonNegative(c.MemoryLimit, "memory-limit"),
		validator.NonNegative(c.MaxRenderSize, "max-render-size"),
		validator.MatchesAllowed(c.Output, []string{"yaml", "text"}, "output"),
	)
}

// options turns the limits in c into engine options.
func (c config) options() []tstring.Option {
	var opts []tstring.Option
	if c.MemoryLimit > 0 {
		opts = append(opts, tstring.WithAllocator(tstring.NewBudget(c.MemoryLimit)))
	}
	if c.MaxRenderSize > 0 {
		opts = append(opts, tstring.WithMaxRenderSize(c.MaxRenderSize))
	}
	return opts
}

func (c config) logger(w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func addConfigFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default is .tstring.yaml, can also use TSTRING_CONFIG_FILE env var)")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("log-format", "text", "log format (text, json)")
	fs.Int("memory-limit", 0, "bytes the engine may allocate per command, 0 for no limit")
	fs.Int("max-render-size", 0, "largest rendered text in bytes, 0 for no limit")
}

// loadConfig reads configuration from defaults, the config file, TSTRING_
// environment variables and flags, in increasing priority.
func loadConfig(v *viper.Viper, fs *pflag.FlagSet) (config, error) {
	for k, val := range defaults {
		v.SetDefault(k, val)
	}

	cfgFile, _ := fs.GetString("config")
	if cfgFile == "" {
		cfgFile = os.Getenv(envPrefix + "_CONFIG_FILE")
	}
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".tstring")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return config{}, fmt.Errorf("binding flags: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var c config
	if err := v.Unmarshal(&c); err != nil {
		return config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := c.validate(); err != nil {
		return config{}, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}
