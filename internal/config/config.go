package config

import (
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/ahriknow/ahridocs/internal/pathutil"
)

// Config represents the top-level configuration.
type Config struct {
	Logging   LoggingConfig   `yaml:"logging"`
	Watch     WatchConfig     `yaml:"watch"`
	Server    ServerConfig    `yaml:"server"`
	Workspace WorkspaceConfig `yaml:"workspace"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// WatchConfig tunes the folder watcher.
type WatchConfig struct {
	// RenameWindow is how long a rename waits for the matching create.
	RenameWindow time.Duration `yaml:"rename_window"`
	QueueSize    int           `yaml:"queue_size"`
}

// ServerConfig configures the UI server. An empty Addr disables it.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// WorkspaceConfig controls how folders are listed and edited.
type WorkspaceConfig struct {
	// Exclude holds doublestar globs, relative to the opened folder.
	Exclude []string `yaml:"exclude"`
	// Trash sends deleted entries to the system trash instead of removing them.
	Trash bool `yaml:"trash"`
}

// DefaultLoggingConfig returns the default logging configuration.
func DefaultLoggingConfig() LoggingConfig {
	return LoggingConfig{
		Level: "warn",
	}
}

// DefaultWatchConfig returns the default watch configuration.
func DefaultWatchConfig() WatchConfig {
	return WatchConfig{
		RenameWindow: 100 * time.Millisecond,
		QueueSize:    256,
	}
}

// DefaultServerConfig returns the default server configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Addr: "127.0.0.1:7171",
	}
}

// DefaultWorkspaceConfig returns the default workspace configuration.
func DefaultWorkspaceConfig() WorkspaceConfig {
	return WorkspaceConfig{
		Exclude: []string{".ahriknow"},
	}
}

// Default returns a configuration with every section at its default.
func Default() *Config {
	return &Config{
		Logging:   DefaultLoggingConfig(),
		Watch:     DefaultWatchConfig(),
		Server:    DefaultServerConfig(),
		Workspace: DefaultWorkspaceConfig(),
	}
}

// Load reads and parses a configuration file using the real filesystem.
func Load(path string) (*Config, error) {
	return LoadWithFs(path, afero.NewOsFs())
}

// LoadWithFs reads and parses a configuration file using the provided filesystem.
func LoadWithFs(path string, afs afero.Fs) (*Config, error) {
	expanded := pathutil.ExpandTilde(path)

	data, err := afero.ReadFile(afs, expanded)
	if err != nil {
		return nil, err
	}

	// Start with defaults
	config := Default()

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	return config, nil
}
