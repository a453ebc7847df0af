package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

// DefaultAppName names config and data directories when no override is set.
const DefaultAppName = "tavla"

// Environment variables read by Overrides.
const (
	EnvConfig  = "TAVLA_CONFIG"
	EnvDBPath  = "TAVLA_DB_PATH"
	EnvDevMode = "TAVLA_DEV_MODE"
	EnvAppName = "TAVLA_APP_NAME"
)

// Paths holds the resolved locations of the config file and database.
type Paths struct {
	AppName    string
	ConfigPath string
	DataDir    string
	DBPath     string
}

// Options defines optional settings for path resolution.
type Options struct {
	AppName string
	DevMode bool
}

// Overrides holds values taken from the environment.
type Overrides struct {
	ConfigPath string
	DBPath     string
	AppName    string
	DevMode    bool
	DevModeSet bool
}

// OverridesFromEnv reads TAVLA_* variables through getenv.
func OverridesFromEnv(getenv func(string) string) Overrides {
	if getenv == nil {
		getenv = os.Getenv
	}
	out := Overrides{
		ConfigPath: strings.TrimSpace(getenv(EnvConfig)),
		DBPath:     strings.TrimSpace(getenv(EnvDBPath)),
		AppName:    strings.TrimSpace(getenv(EnvAppName)),
	}
	if raw := strings.TrimSpace(getenv(EnvDevMode)); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			out.DevMode = v
			out.DevModeSet = true
		}
	}
	return out
}

// DefaultPaths returns default paths.
func DefaultPaths() (Paths, error) {
	return DefaultPathsWithOptions(Options{AppName: DefaultAppName})
}

// DefaultPathsWithOptions resolves paths for the current OS and user.
func DefaultPathsWithOptions(opts Options) (Paths, error) {
	appName := strings.TrimSpace(opts.AppName)
	if appName == "" {
		appName = DefaultAppName
	}
	if opts.DevMode {
		appName += "-dev"
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return Paths{}, fmt.Errorf("user config dir: %w", err)
	}
	dataDir := configDir
	switch runtime.GOOS {
	case "linux":
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return Paths{}, fmt.Errorf("user home dir: %w", homeErr)
		}
		dataDir = filepath.Join(home, ".local", "share")
	case "windows":
		if v := strings.TrimSpace(os.Getenv("LOCALAPPDATA")); v != "" {
			dataDir = v
		}
	}

	env := map[string]string{
		"XDG_CONFIG_HOME": os.Getenv("XDG_CONFIG_HOME"),
		"XDG_DATA_HOME":   os.Getenv("XDG_DATA_HOME"),
		"APPDATA":         os.Getenv("APPDATA"),
		"LOCALAPPDATA":    os.Getenv("LOCALAPPDATA"),
	}
	return PathsFor(runtime.GOOS, env, configDir, dataDir, appName)
}

// PathsFor builds paths from explicit base dirs, honoring XDG on linux and
// APPDATA/LOCALAPPDATA on windows.
func PathsFor(goos string, env map[string]string, userConfigDir, userDataDir, appName string) (Paths, error) {
	if userConfigDir == "" || userDataDir == "" {
		return Paths{}, fmt.Errorf("empty base dirs")
	}
	appName = strings.TrimSpace(appName)
	if appName == "" {
		return Paths{}, fmt.Errorf("empty app name")
	}

	configBase := userConfigDir
	dataBase := userDataDir
	switch goos {
	case "linux":
		if v := env["XDG_CONFIG_HOME"]; v != "" {
			configBase = v
		}
		if v := env["XDG_DATA_HOME"]; v != "" {
			dataBase = v
		}
	case "windows":
		if v := env["APPDATA"]; v != "" {
			configBase = v
		}
		if v := env["LOCALAPPDATA"]; v != "" {
			dataBase = v
		}
	}

	appDataDir := filepath.Join(dataBase, appName)
	return Paths{
		AppName:    appName,
		ConfigPath: filepath.Join(configBase, appName, "config.toml"),
		DataDir:    appDataDir,
		DBPath:     filepath.Join(appDataDir, appName+".db"),
	}, nil
}
