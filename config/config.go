package config

import (
	"fmt"
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v3"
)

// LoginConfig holds FTP connection credentials and settings.
type LoginConfig struct {
	Address  string // Example: "ftp.gnu.org:21"
	Username string
	Password string
	Timeout  time.Duration
}

// SyncConfig describes a single mirror run. The CLI builds it once and the
// engine never mutates it while the run is in flight.
type SyncConfig struct {
	RemoteRoot   string
	LocalRoot    string
	DeleteRemote bool
	Flatten      bool
}

// Config is the fully resolved configuration for one invocation.
type Config struct {
	Login       LoginConfig
	Sync        SyncConfig
	LogFile     string
	MetricsFile string
	HistoryFile string
}

// Options carries command-line values. Non-zero values take precedence over
// the config file; boolean flags can only switch a setting on.
type Options struct {
	Host           string
	Port           int
	Username       string
	Password       string
	TimeoutSeconds int
	RemoteDir      string
	LocalDir       string
	DeleteRemote   bool
	Flatten        bool
	LogFile        string
	MetricsFile    string
	HistoryFile    string
}

// fileConfig mirrors the YAML schema. Field names match the CLI flags.
type fileConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	RemoteDir      string `yaml:"remote_dir"`
	LocalDir       string `yaml:"local_dir"`
	DeleteRemote   bool   `yaml:"delete_remote"`
	Flatten        bool   `yaml:"flatten"`
	LogFile        string `yaml:"log_file"`
	MetricsFile    string `yaml:"metrics_file"`
	HistoryFile    string `yaml:"history_file"`
}

const (
	defaultPort           = 21
	defaultTimeoutSeconds = 60
	defaultRemoteDir      = "/"
	defaultLogFile        = "ftpmirror.log"
)

// LoadFile reads a YAML config file into Options without validating it.
func LoadFile(path string) (Options, error) {
	fc := fileConfig{}
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return Options{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return Options{
		Host:           fc.Host,
		Port:           fc.Port,
		Username:       fc.Username,
		Password:       fc.Password,
		TimeoutSeconds: fc.TimeoutSeconds,
		RemoteDir:      fc.RemoteDir,
		LocalDir:       fc.LocalDir,
		DeleteRemote:   fc.DeleteRemote,
		Flatten:        fc.Flatten,
		LogFile:        fc.LogFile,
		MetricsFile:    fc.MetricsFile,
		HistoryFile:    fc.HistoryFile,
	}, nil
}

// Resolve layers defaults, the optional YAML config file, and command-line
// values into the final configuration. configPath may be empty.
func Resolve(configPath string, opts Options) (*Config, error) {
	fc := Options{}
	if configPath != "" {
		loaded, err := LoadFile(configPath)
		if err != nil {
			return nil, err
		}
		fc = loaded
	}

	merged := Options{
		Host:           firstString(opts.Host, fc.Host),
		Port:           firstInt(opts.Port, fc.Port, defaultPort),
		Username:       firstString(opts.Username, fc.Username),
		Password:       firstString(opts.Password, fc.Password),
		TimeoutSeconds: firstInt(opts.TimeoutSeconds, fc.TimeoutSeconds, defaultTimeoutSeconds),
		RemoteDir:      firstString(opts.RemoteDir, fc.RemoteDir, defaultRemoteDir),
		LocalDir:       firstString(opts.LocalDir, fc.LocalDir),
		DeleteRemote:   opts.DeleteRemote || fc.DeleteRemote,
		Flatten:        opts.Flatten || fc.Flatten,
		LogFile:        firstString(opts.LogFile, fc.LogFile, defaultLogFile),
		MetricsFile:    firstString(opts.MetricsFile, fc.MetricsFile),
		HistoryFile:    firstString(opts.HistoryFile, fc.HistoryFile),
	}

	if err := merged.validate(); err != nil {
		return nil, err
	}

	cfg := &Config{
		Login: LoginConfig{
			Address:  fmt.Sprintf("%s:%d", merged.Host, merged.Port),
			Username: merged.Username,
			Password: merged.Password,
			Timeout:  time.Duration(merged.TimeoutSeconds) * time.Second,
		},
		Sync: SyncConfig{
			RemoteRoot:   path.Clean(merged.RemoteDir),
			LocalRoot:    merged.LocalDir,
			DeleteRemote: merged.DeleteRemote,
			Flatten:      merged.Flatten,
		},
		LogFile:     merged.LogFile,
		MetricsFile: merged.MetricsFile,
		HistoryFile: merged.HistoryFile,
	}
	return cfg, nil
}

func (o Options) validate() error {
	if o.Host == "" {
		return fmt.Errorf("ftp host is required (set --host or the config file)")
	}
	if o.Port < 1 || o.Port > 65535 {
		return fmt.Errorf("invalid port %d", o.Port)
	}
	if o.Username == "" {
		return fmt.Errorf("ftp username is required (set --username or the config file)")
	}
	if o.LocalDir == "" {
		return fmt.Errorf("local directory is required (set --local-dir or the config file)")
	}
	if o.TimeoutSeconds <= 0 {
		return fmt.Errorf("timeout must be positive, got %d seconds", o.TimeoutSeconds)
	}
	return nil
}

func firstString(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstInt(values ...int) int {
	for _, v := range values {
		if v != 0 {
			return v
		}
	}
	return 0
}
