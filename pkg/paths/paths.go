package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/akhuoa/console-formatter/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigHome overrides the XDG config directory
	EnvConfigHome = "CONSOLE_FORMATTER_CONFIG_HOME"

	// EnvStateHome overrides the XDG state directory
	EnvStateHome = "CONSOLE_FORMATTER_STATE_HOME"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name used under each XDG base directory
	AppDirName = "console-formatter"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// StylesFileName is the name of the user style sheet
	StylesFileName = "styles.yaml"

	// LogFileName is the name of the log file
	LogFileName = "console-formatter.log"
)

// Paths provides the file locations of the application
type Paths interface {
	ConfigDir() string
	StateDir() string
	ConfigFile() string
	StylesFile() string
	LogFilePath() string
}

type paths struct {
	xdgConfig string
	xdgState  string
}

// New resolves the application directories, honoring the environment
// overrides
func New() Paths {
	p := &paths{}

	if dir := os.Getenv(EnvConfigHome); dir != "" {
		p.xdgConfig = ExpandHome(dir)
	} else {
		p.xdgConfig = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	// xdg reads the environment once at start-up; look at XDG_STATE_HOME
	// directly so tests and wrappers can move it.
	switch {
	case os.Getenv(EnvStateHome) != "":
		p.xdgState = ExpandHome(os.Getenv(EnvStateHome))
	case os.Getenv("XDG_STATE_HOME") != "":
		p.xdgState = filepath.Join(os.Getenv("XDG_STATE_HOME"), AppDirName)
	default:
		p.xdgState = filepath.Join(xdg.StateHome, AppDirName)
	}

	return p
}

// ConfigDir returns the configuration directory
func (p *paths) ConfigDir() string {
	return p.xdgConfig
}

// StateDir returns the state directory
func (p *paths) StateDir() string {
	return p.xdgState
}

// ConfigFile returns the default path of the user configuration file
func (p *paths) ConfigFile() string {
	return filepath.Join(p.xdgConfig, ConfigFileName)
}

// StylesFile returns the default path of the user style sheet
func (p *paths) StylesFile() string {
	return filepath.Join(p.xdgConfig, StylesFileName)
}

// LogFilePath returns the path to the log file
func (p *paths) LogFilePath() string {
	return filepath.Join(p.xdgState, LogFileName)
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := GetHomeDirectory()
	if err != nil {
		// Can't expand, return as-is
		return path
	}

	if len(path) == 1 {
		return homeDir
	}

	// Handle both ~/ and ~
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}

	// ~something (not the user's home)
	return path
}

// GetHomeDirectory returns the user's home directory with proper error handling
func GetHomeDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Try the HOME environment variable as a fallback
		if home := os.Getenv(EnvHome); home != "" {
			return home, nil
		}
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to get home directory")
	}
	return homeDir, nil
}
