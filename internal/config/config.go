package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Endpoint    string            `toml:"endpoint"`
	DefaultMode string            `toml:"default_mode"`
	Search      SearchSettings    `toml:"search"`
	Cache       CacheSettings     `toml:"cache"`
	Storage     StorageSettings   `toml:"storage"`
	Location    LocationSettings  `toml:"location"`
	Log         LogSettings       `toml:"log"`
	Dashboard   DashboardSettings `toml:"dashboard"`
	Metrics     MetricsSettings   `toml:"metrics"`
}

// SearchSettings controls input debounce and request timeouts
type SearchSettings struct {
	Debounce Duration `toml:"debounce"`
	Timeout  Duration `toml:"timeout"`
}

// CacheSettings controls the result cache
type CacheSettings struct {
	TTL  Duration `toml:"ttl"`  // 0 keeps entries fresh for the whole session
	Size int      `toml:"size"` // maximum number of cached keys
}

// StorageSettings selects where recent queries are persisted
type StorageSettings struct {
	Backend string `toml:"backend"` // memory, file or sqlite
	Path    string `toml:"path"`
}

// LocationSettings points at the file holding the addressable link
type LocationSettings struct {
	File  string `toml:"file"`
	Watch bool   `toml:"watch"`
}

// LogSettings controls the rotating log file
type LogSettings struct {
	File       string `toml:"file"`
	Level      string `toml:"level"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// DashboardSettings controls the metrics panel
type DashboardSettings struct {
	Refresh Duration `toml:"refresh"`
}

// MetricsSettings controls the optional prometheus listener
type MetricsSettings struct {
	Listen string `toml:"listen"` // empty disables the listener
}

// Duration is a time.Duration written as a string such as "180ms" in TOML
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

type configService struct {
	filePath string
}

// NewConfigService creates a config service rooted at the user config directory
func NewConfigService() ConfigService {
	return &configService{
		filePath: filepath.Join(DefaultDir(), "config.toml"),
	}
}

// NewConfigServiceAt creates a config service for an explicit file
func NewConfigServiceAt(path string) ConfigService {
	return &configService{filePath: path}
}

// DefaultDir returns the directory searchdeck keeps its files in
func DefaultDir() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			configDir = "."
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "searchdeck")
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load loads the configuration, returning defaults when no file exists
func (cs *configService) Load() (*Config, error) {
	if _, err := os.Stat(cs.filePath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return cs.LoadFromPath(cs.filePath)
}

// Save writes the configuration to the service's file
func (cs *configService) Save(config *Config) error {
	return cs.SaveToPath(config, cs.filePath)
}

// LoadFromPath loads configuration from a specific path. Missing fields take defaults.
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate rejects values the rest of the program cannot work with
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "", "memory", "file", "sqlite":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Cache.Size < 0 {
		return fmt.Errorf("cache size must not be negative, got %d", c.Cache.Size)
	}
	if c.Search.Debounce.Duration < 0 || c.Search.Timeout.Duration < 0 {
		return fmt.Errorf("search durations must not be negative")
	}
	return nil
}

// applyDefaults fills zero values that were explicitly blanked in the file
func (c *Config) applyDefaults() {
	def := DefaultConfig()
	if c.Endpoint == "" {
		c.Endpoint = def.Endpoint
	}
	if c.DefaultMode == "" {
		c.DefaultMode = def.DefaultMode
	}
	if c.Search.Debounce.Duration == 0 {
		c.Search.Debounce = def.Search.Debounce
	}
	if c.Search.Timeout.Duration == 0 {
		c.Search.Timeout = def.Search.Timeout
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = def.Cache.Size
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = def.Storage.Backend
	}
	if c.Storage.Path == "" {
		c.Storage.Path = def.Storage.Path
	}
	if c.Location.File == "" {
		c.Location.File = def.Location.File
	}
	if c.Log.File == "" {
		c.Log.File = def.Log.File
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Dashboard.Refresh.Duration == 0 {
		c.Dashboard.Refresh = def.Dashboard.Refresh
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	dir := DefaultDir()
	return &Config{
		Endpoint:    "http://localhost:8000",
		DefaultMode: "auto",
		Search: SearchSettings{
			Debounce: Duration{180 * time.Millisecond},
			Timeout:  Duration{10 * time.Second},
		},
		Cache: CacheSettings{
			TTL:  Duration{5 * time.Minute},
			Size: 256,
		},
		Storage: StorageSettings{
			Backend: "file",
			Path:    filepath.Join(dir, "store.json"),
		},
		Location: LocationSettings{
			File:  filepath.Join(dir, "location"),
			Watch: true,
		},
		Log: LogSettings{
			File:       filepath.Join(dir, "searchdeck.log"),
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Dashboard: DashboardSettings{
			Refresh: Duration{5 * time.Second},
		},
	}
}
