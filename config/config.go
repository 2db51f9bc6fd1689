// Package config loads generator settings from a YAML or JSON file with
// MARSHALGEN_* environment overrides.
package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/marshalgen/cgen"
	"github.com/wippyai/marshalgen/errors"
	"github.com/wippyai/marshalgen/generator"
)

// EnvPrefix prefixes environment overrides: opcode.base is read from
// MARSHALGEN_OPCODE_BASE.
const EnvPrefix = "MARSHALGEN"

type Config struct {
	Opcode   OpcodeConfig   `mapstructure:"opcode"`
	Prefix   PrefixConfig   `mapstructure:"prefix"`
	Generate GenerateConfig `mapstructure:"generate"`
	Output   OutputConfig   `mapstructure:"output"`
	Stream   StreamConfig   `mapstructure:"stream"`
	Log      LogConfig      `mapstructure:"log"`
}

type OpcodeConfig struct {
	Base uint32 `mapstructure:"base"`
}

type PrefixConfig struct {
	Marshal       string `mapstructure:"marshal"`
	Unmarshal     string `mapstructure:"unmarshal"`
	UnmarshalInto string `mapstructure:"unmarshal_into"`
}

type GenerateConfig struct {
	InPlaceReaders bool `mapstructure:"in_place_readers"`
	CommandReplies bool `mapstructure:"command_replies"`
}

// OutputConfig names the files the CLI writes. Empty paths print to stdout.
type OutputConfig struct {
	Header string `mapstructure:"header"`
	Impl   string `mapstructure:"impl"`
}

type StreamConfig struct {
	Type string `mapstructure:"type"`
}

// LogConfig selects the zap logger. Format is "console" or "json".
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	opts := generator.DefaultOptions()
	v.SetDefault("opcode.base", opts.OpcodeBase)
	v.SetDefault("prefix.marshal", opts.MarshalPrefix)
	v.SetDefault("prefix.unmarshal", opts.UnmarshalPrefix)
	v.SetDefault("prefix.unmarshal_into", opts.UnmarshalIntoPrefix)
	v.SetDefault("generate.in_place_readers", false)
	v.SetDefault("generate.command_replies", false)
	v.SetDefault("output.header", "")
	v.SetDefault("output.impl", "")
	v.SetDefault("stream.type", cgen.DefaultStreamType)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Default returns the configuration used when no file or environment
// override is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Load reads path, if non-empty, over the defaults and applies environment
// overrides. The file type follows the extension.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		switch filepath.Ext(path) {
		case ".yaml", ".yml":
			v.SetConfigType("yaml")
		case ".json":
			v.SetConfigType("json")
		}
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "read "+path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(errors.PhaseConfig, errors.KindInvalidData, err, "decode configuration")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that prefixes are usable and the log settings are known.
func (c *Config) Validate() error {
	prefixes := map[string]string{
		"prefix.marshal":        c.Prefix.Marshal,
		"prefix.unmarshal":      c.Prefix.Unmarshal,
		"prefix.unmarshal_into": c.Prefix.UnmarshalInto,
	}
	seen := make(map[string]string, len(prefixes))
	for _, key := range []string{"prefix.marshal", "prefix.unmarshal", "prefix.unmarshal_into"} {
		p := prefixes[key]
		if p == "" {
			return invalid(key, "must not be empty")
		}
		if other, dup := seen[p]; dup {
			return invalid(key, "collides with "+other)
		}
		seen[p] = key
	}
	if c.Stream.Type == "" {
		return invalid("stream.type", "must not be empty")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level", err.Error())
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return invalid("log.format", "must be console or json")
	}
	return nil
}

func invalid(key, detail string) error {
	return errors.New(errors.PhaseConfig, errors.KindInvalidInput).
		Path(key).
		Detail("%s", detail).
		Build()
}

// GeneratorOptions maps the configuration onto generator options.
func (c *Config) GeneratorOptions() generator.Options {
	opts := generator.DefaultOptions()
	opts.OpcodeBase = c.Opcode.Base
	opts.MarshalPrefix = c.Prefix.Marshal
	opts.UnmarshalPrefix = c.Prefix.Unmarshal
	opts.UnmarshalIntoPrefix = c.Prefix.UnmarshalInto
	opts.InPlaceReaders = c.Generate.InPlaceReaders
	opts.CommandReplies = c.Generate.CommandReplies
	return opts
}

// RenderOptions maps the configuration onto C rendering options.
func (c *Config) RenderOptions() cgen.Options {
	opts := cgen.Options{StreamType: c.Stream.Type}
	if c.Output.Header != "" {
		opts.HeaderName = filepath.Base(c.Output.Header)
	}
	return opts
}

// Logger builds a development logger for the console format and a
// production logger for json.
func (c *Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, invalid("log.level", err.Error())
	}
	zc := zap.NewDevelopmentConfig()
	if c.Log.Format == "json" {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	return zc.Build()
}
