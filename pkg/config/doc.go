// Package config loads the console-formatter configuration.
//
// Sources are layered, later ones winning:
//
//  1. the embedded defaults (embedded/defaults.toml)
//  2. the user config file, $XDG_CONFIG_HOME/console-formatter/config.toml
//     or the file given with --config
//  3. PORT, which sets server.addr
//  4. CONSOLE_FORMATTER_<SECTION>_<KEY> environment variables
//  5. explicit overrides, usually command line flags
package config
