package config

import (
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config is the complete application configuration
type Config struct {
	Output   Output   `koanf:"output"`
	Annotate Annotate `koanf:"annotate"`
	Server   Server   `koanf:"server"`
	Fetch    Fetch    `koanf:"fetch"`
	Log      Log      `koanf:"log"`
}

// Output controls how formatted text is written
type Output struct {
	Format     string `koanf:"format"`
	Standalone bool   `koanf:"standalone"`
}

// Annotate configures the category catalog
type Annotate struct {
	Prefix   string   `koanf:"prefix"`
	Commands []string `koanf:"commands"`
	Styles   string   `koanf:"styles"`
}

// Server configures the HTTP server
type Server struct {
	Addr   string `koanf:"addr"`
	Limit  int64  `koanf:"limit"`
	Static string `koanf:"static"`
}

// Fetch configures the remote fetch proxy
type Fetch struct {
	Timeout time.Duration `koanf:"timeout"`
	Limit   int64         `koanf:"limit"`
	Agent   string        `koanf:"agent"`
}

// Log configures logging
type Log struct {
	File bool `koanf:"file"`
}

// Map returns the configuration as nested maps keyed like the config file
func (c *Config) Map() map[string]interface{} {
	return map[string]interface{}{
		"output": map[string]interface{}{
			"format":     c.Output.Format,
			"standalone": c.Output.Standalone,
		},
		"annotate": map[string]interface{}{
			"prefix":   c.Annotate.Prefix,
			"commands": c.Annotate.Commands,
			"styles":   c.Annotate.Styles,
		},
		"server": map[string]interface{}{
			"addr":   c.Server.Addr,
			"limit":  c.Server.Limit,
			"static": c.Server.Static,
		},
		"fetch": map[string]interface{}{
			"timeout": c.Fetch.Timeout.String(),
			"limit":   c.Fetch.Limit,
			"agent":   c.Fetch.Agent,
		},
		"log": map[string]interface{}{
			"file": c.Log.File,
		},
	}
}

// TOML renders the configuration in config file syntax
func (c *Config) TOML() ([]byte, error) {
	return toml.Marshal(c.Map())
}
