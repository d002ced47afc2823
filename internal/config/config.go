package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/agentx-labs/platformview/internal/branding"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Setting keys.
const (
	KeyLogLevel     = "log_level"
	KeyLanguage     = "language"
	KeyPlatformsDir = "platforms_dir"
	KeyWorkers      = "workers"
)

// Languages lists the accepted values of the language setting.
var Languages = []string{"en", "de"}

// Keys returns the known setting keys, sorted.
func Keys() []string {
	return []string{KeyLanguage, KeyLogLevel, KeyPlatformsDir, KeyWorkers}
}

// Dir returns the path to the config directory (~/.platformview/). The
// PLATFORMVIEW_HOME environment variable overrides it.
func Dir() string {
	if dir := os.Getenv(branding.EnvVar("HOME")); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.AutomaticEnv()
	viper.SetDefault(KeyLogLevel, "warn")
	viper.SetDefault(KeyLanguage, "en")
	viper.SetDefault(KeyWorkers, 1)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Workers returns the background worker count, at least 1.
func Workers() int {
	if n := viper.GetInt(KeyWorkers); n > 0 {
		return n
	}
	return 1
}

// PlatformsDir returns the directory holding platform manifests. The
// PLATFORMVIEW_PLATFORMS environment variable wins over the platforms_dir
// setting, which wins over ~/.platformview/platforms.
func PlatformsDir() string {
	if dir := os.Getenv(branding.EnvVar("PLATFORMS")); dir != "" {
		return dir
	}
	if dir := viper.GetString(KeyPlatformsDir); dir != "" {
		return dir
	}
	return filepath.Join(Dir(), "platforms")
}

// Set validates and writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if err := check(key, value); err != nil {
		return err
	}
	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

func check(key, value string) error {
	switch key {
	case KeyLogLevel:
		if _, err := zerolog.ParseLevel(value); err != nil {
			return fmt.Errorf("invalid %s %q: %w", key, value, err)
		}
	case KeyLanguage:
		if !slices.Contains(Languages, value) {
			return fmt.Errorf("invalid %s %q: supported languages are %v", key, value, Languages)
		}
	case KeyWorkers:
		n, err := strconv.Atoi(value)
		if err != nil || n < 1 {
			return fmt.Errorf("invalid %s %q: must be a positive integer", key, value)
		}
	case KeyPlatformsDir:
	default:
		return fmt.Errorf("unknown setting %q (known: %v)", key, Keys())
	}
	return nil
}
