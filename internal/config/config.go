// Package config loads KatSearch settings from flags, KATSEARCH_* environment
// variables, an optional YAML file and built-in defaults, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/kk-code-lab/katsearch/internal/catalog"
	"github.com/kk-code-lab/katsearch/internal/debuglog"
	"github.com/kk-code-lab/katsearch/internal/format"
)

const (
	EnvPrefix    = "KATSEARCH"
	MaxBatchSize = 4096
)

// Config is the resolved configuration.
type Config struct {
	BatchSize         int           `mapstructure:"batch_size"`
	ParallelVolumes   bool          `mapstructure:"parallel_volumes"`
	UnsupportedFS     []string      `mapstructure:"unsupported_fs"`
	SizeUnits         string        `mapstructure:"size_units"`
	Locale            string        `mapstructure:"locale"`
	Debug             bool          `mapstructure:"debug"`
	DebugFile         string        `mapstructure:"debug_file"`
	SessionFile       string        `mapstructure:"session_file"`
	FolderSizeTimeout time.Duration `mapstructure:"folder_size_timeout"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

// flagKeys maps config keys to the command-line flags that override them.
var flagKeys = map[string]string{
	"batch_size":       "batch-size",
	"parallel_volumes": "parallel",
	"size_units":       "units",
	"locale":           "locale",
	"debug":            "debug",
	"session_file":     "session-file",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("batch_size", catalog.DefaultBatchSize)
	v.SetDefault("parallel_volumes", false)
	v.SetDefault("unsupported_fs", catalog.DefaultUnsupportedFS)
	v.SetDefault("size_units", format.UnitsBinary.String())
	v.SetDefault("locale", "")
	v.SetDefault("debug", false)
	v.SetDefault("debug_file", "")
	v.SetDefault("session_file", "")
	v.SetDefault("folder_size_timeout", "0s")
}

// DefaultDir is the katsearch directory under the user configuration dir.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "katsearch"), nil
}

// Load resolves the configuration. An explicit file must exist; the default
// config.yaml is optional. Flags may be nil.
func Load(file string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else if dir, err := DefaultDir(); err == nil {
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if flags != nil {
		for key, name := range flagKeys {
			if flag := flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return Config{}, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the rest of the program cannot honour.
func (c Config) Validate() error {
	if c.BatchSize < 1 || c.BatchSize > MaxBatchSize {
		return fmt.Errorf("batch_size must be between 1 and %d, got %d", MaxBatchSize, c.BatchSize)
	}
	if _, err := format.ParseUnits(c.SizeUnits); err != nil {
		return fmt.Errorf("size_units: %w", err)
	}
	if c.FolderSizeTimeout < 0 {
		return fmt.Errorf("folder_size_timeout must not be negative")
	}
	return nil
}

// Units is the parsed size_units value.
func (c Config) Units() format.Units {
	units, _ := format.ParseUnits(c.SizeUnits)
	return units
}

// LocaleTag is the display locale, falling back to the environment.
func (c Config) LocaleTag() language.Tag {
	return format.ParseLocale(c.Locale)
}

// EngineOptions carries the scan settings into a catalog engine.
func (c Config) EngineOptions() catalog.Options {
	return catalog.Options{
		BatchSize:     c.BatchSize,
		Parallel:      c.ParallelVolumes,
		UnsupportedFS: c.UnsupportedFS,
	}
}

// ApplyLogging switches debug logging on when the config asks for it.
func (c Config) ApplyLogging() {
	if c.Debug || debuglog.Enabled() {
		debuglog.Configure(true, c.DebugFile)
		debuglog.Logf("config: loaded %q batch=%d parallel=%v", c.File, c.BatchSize, c.ParallelVolumes)
	}
}
