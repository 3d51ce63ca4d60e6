// Package paths provides the on-disk locations used by console-formatter.
//
// Locations follow the XDG Base Directory specification:
//
//   - Config: $XDG_CONFIG_HOME/console-formatter (config.toml, styles.yaml)
//   - State:  $XDG_STATE_HOME/console-formatter (console-formatter.log)
//
// # Environment Variables
//
//   - CONSOLE_FORMATTER_CONFIG_HOME: override the config directory
//   - CONSOLE_FORMATTER_STATE_HOME: override the state directory
//
// # Usage
//
//	p := paths.New()
//	cfgFile := p.ConfigFile()   // ~/.config/console-formatter/config.toml
//	logFile := p.LogFilePath()  // ~/.local/state/console-formatter/console-formatter.log
package paths
