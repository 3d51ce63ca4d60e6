package config

import (
	_ "embed"
	"errors"
	"os"
	"strings"

	ferrors "github.com/akhuoa/console-formatter/pkg/errors"
	"github.com/akhuoa/console-formatter/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
)

// EnvPrefix prefixes every configuration environment variable
const EnvPrefix = "CONSOLE_FORMATTER_"

//go:embed embedded/defaults.toml
var defaultConfig []byte

// sections lists the top level keys. Environment variables outside them are
// not configuration.
var sections = map[string]bool{
	"output":   true,
	"annotate": true,
	"server":   true,
	"fetch":    true,
	"log":      true,
}

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// LoadOptions selects the optional configuration sources
type LoadOptions struct {
	// File is an explicit config file; it must exist. When empty the XDG
	// config file is read if present.
	File string
	// Overrides are applied last, keyed by dotted path ("server.addr")
	Overrides map[string]interface{}
}

// DefaultContent returns the embedded defaults file
func DefaultContent() string {
	return string(defaultConfig)
}

// Default returns the configuration built from the embedded defaults alone
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		panic("invalid embedded defaults: " + err.Error())
	}
	cfg, err := unmarshal(k)
	if err != nil {
		panic("invalid embedded defaults: " + err.Error())
	}
	return cfg
}

// Load builds the configuration from every source
func Load(opts LoadOptions) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, ferrors.Wrap(err, ferrors.ErrConfigParse, "failed to load defaults")
	}

	// 2. User config file
	path := opts.File
	if path != "" {
		path = paths.ExpandHome(path)
		if _, err := os.Stat(path); err != nil {
			return nil, ferrors.Wrapf(err, ferrors.ErrConfigLoad, "config file %s not readable", path).
				WithDetail("path", path)
		}
	} else if candidate := paths.New().ConfigFile(); fileExists(candidate) {
		path = candidate
	}
	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, ferrors.Wrapf(err, ferrors.ErrConfigParse, "failed to load config from %s", path).
				WithDetail("path", path)
		}
		log.Debug().Str("component", "config").Str("path", path).Msg("Loaded config file")
	}

	// 3. PORT sets the listen address
	if port := os.Getenv("PORT"); port != "" {
		if err := k.Load(confmap.Provider(map[string]interface{}{"server.addr": ":" + port}, "."), nil); err != nil {
			return nil, ferrors.Wrap(err, ferrors.ErrConfigLoad, "failed to load PORT")
		}
	}

	// 4. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, ferrors.Wrap(err, ferrors.ErrConfigLoad, "failed to load env vars")
	}

	// 5. Overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, ferrors.Wrap(err, ferrors.ErrConfigLoad, "failed to load overrides")
		}
	}

	return unmarshal(k)
}

// envKey maps CONSOLE_FORMATTER_SERVER_ADDR to server.addr. Variables
// outside the known sections are dropped.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok || !sections[section] {
		return ""
	}
	return section + "." + strings.ReplaceAll(rest, "_", ".")
}

func unmarshal(k *koanf.Koanf) (*Config, error) {
	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, ferrors.Wrap(err, ferrors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var formats = map[string]bool{"auto": true, "term": true, "terminal": true, "ansi": true, "html": true, "text": true, "plain": true}

func validate(cfg *Config) error {
	cfg.Output.Format = strings.ToLower(strings.TrimSpace(cfg.Output.Format))
	if cfg.Output.Format == "" {
		cfg.Output.Format = "auto"
	}
	if !formats[cfg.Output.Format] {
		return ferrors.Newf(ferrors.ErrConfigParse, "unknown output format %q", cfg.Output.Format).
			WithDetail("key", "output.format")
	}
	if cfg.Fetch.Timeout <= 0 {
		return ferrors.New(ferrors.ErrConfigParse, "fetch.timeout must be positive").
			WithDetail("key", "fetch.timeout")
	}
	if cfg.Server.Limit <= 0 {
		return ferrors.New(ferrors.ErrConfigParse, "server.limit must be positive").
			WithDetail("key", "server.limit")
	}
	if cfg.Fetch.Limit <= 0 {
		return ferrors.New(ferrors.ErrConfigParse, "fetch.limit must be positive").
			WithDetail("key", "fetch.limit")
	}
	return nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
