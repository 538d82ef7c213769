// oreon/lumen · watchthelight <wtl>

// Package config loads the TOML configuration and computes the file layout.
// Everything the process touches on disk hangs off a Paths value constructed
// once at startup; there are no package-level path globals.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Default tuning. The daemon interval and error backoff mirror the service
// this replaces: re-evaluate every five minutes, retry after one on failure.
const (
	DefaultInterval = 5 * time.Minute
	DefaultBackoff  = 1 * time.Minute
	DefaultUtility  = "hyprsunset"
)

// Config is the on-disk configuration record.
type Config struct {
	API     APIConfig     `toml:"api"`
	Daemon  DaemonConfig  `toml:"daemon"`
	Display DisplayConfig `toml:"display"`
}

// APIConfig holds provider API keys. Empty keys are valid; the providers
// degrade to their caches or fixed defaults.
type APIConfig struct {
	OpenWeather   string `toml:"openweather"`
	IPGeolocation string `toml:"ipgeolocation"`
}

// DaemonConfig tunes the reconcile loop.
type DaemonConfig struct {
	Interval duration `toml:"interval"`
	Backoff  duration `toml:"backoff"`
}

// DisplayConfig names the external temperature utility.
type DisplayConfig struct {
	Utility string `toml:"utility"`
}

// duration lets TOML carry values like "5m".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Paths is the process-wide file layout, rooted at the config directory.
type Paths struct {
	Dir           string // config root, normally ~/.config/lumen
	ConfigFile    string
	EnvFile       string
	StateFile     string
	LockFile      string
	LogFile       string
	JournalFile   string
	CacheDir      string
	CoordsCache   string
	LocationCache string
	WeatherCache  string
	Socket        string
}

// DefaultDir returns the standard config directory for the current user.
func DefaultDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(base, "lumen"), nil
}

// NewPaths computes the file layout under dir and ensures the directories
// exist.
func NewPaths(dir string) (*Paths, error) {
	cacheDir := filepath.Join(dir, "cache")
	for _, d := range []string{dir, cacheDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("create %s: %w", d, err)
		}
	}
	return &Paths{
		Dir:           dir,
		ConfigFile:    filepath.Join(dir, "config.toml"),
		EnvFile:       filepath.Join(dir, ".env"),
		StateFile:     filepath.Join(dir, "state.json"),
		LockFile:      filepath.Join(dir, "state.lock"),
		LogFile:       filepath.Join(dir, "lumen.log"),
		JournalFile:   filepath.Join(dir, "journal.db"),
		CacheDir:      cacheDir,
		CoordsCache:   filepath.Join(cacheDir, "coordinates"),
		LocationCache: filepath.Join(cacheDir, "location.json"),
		WeatherCache:  filepath.Join(cacheDir, "weather.json"),
		Socket:        SocketPath(),
	}, nil
}

// SocketPath returns the daemon's IPC socket path. Clients that never touch
// the config directory (the tray) use it directly.
func SocketPath() string {
	if runtime := os.Getenv("XDG_RUNTIME_DIR"); runtime != "" {
		return filepath.Join(runtime, "lumen.sock")
	}
	return filepath.Join(os.TempDir(), fmt.Sprintf("lumen-%d.sock", os.Getuid()))
}

// Load reads the config file under paths, writing a default one on first
// run. A .env file beside the config and LUMEN_* environment variables
// override the API keys.
func Load(paths *Paths) (*Config, error) {
	cfg := defaultConfig()

	if _, err := os.Stat(paths.ConfigFile); os.IsNotExist(err) {
		if err := Save(paths, cfg); err != nil {
			return nil, err
		}
	} else if _, err := toml.DecodeFile(paths.ConfigFile, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", paths.ConfigFile, err)
	}

	if cfg.Daemon.Interval.Duration <= 0 {
		cfg.Daemon.Interval.Duration = DefaultInterval
	}
	if cfg.Daemon.Backoff.Duration <= 0 {
		cfg.Daemon.Backoff.Duration = DefaultBackoff
	}
	if cfg.Display.Utility == "" {
		cfg.Display.Utility = DefaultUtility
	}

	// Optional .env beside the config; missing file is fine.
	_ = godotenv.Load(paths.EnvFile)
	if v := os.Getenv("LUMEN_OPENWEATHER_KEY"); v != "" {
		cfg.API.OpenWeather = v
	}
	if v := os.Getenv("LUMEN_IPGEOLOCATION_KEY"); v != "" {
		cfg.API.IPGeolocation = v
	}

	return cfg, nil
}

// Save writes cfg to the config file.
func Save(paths *Paths, cfg *Config) error {
	f, err := os.Create(paths.ConfigFile)
	if err != nil {
		return fmt.Errorf("write %s: %w", paths.ConfigFile, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Daemon: DaemonConfig{
			Interval: duration{DefaultInterval},
			Backoff:  duration{DefaultBackoff},
		},
		Display: DisplayConfig{
			Utility: DefaultUtility,
		},
	}
}
