package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g.
// THUMBNAV_THUMBNAILS_CACHEDIR.
const EnvPrefix = "THUMBNAV"

// Config holds all user-configurable settings loaded from config.json
type Config struct {
	Browser    BrowserConfig   `json:"browser" mapstructure:"browser"`
	Thumbnails ThumbnailConfig `json:"thumbnails" mapstructure:"thumbnails"`
	Store      StoreConfig     `json:"store" mapstructure:"store"`
	Watch      WatchConfig     `json:"watch" mapstructure:"watch"`
}

// BrowserConfig holds directory browser settings
type BrowserConfig struct {
	ShowHidden      bool   `json:"showHidden" mapstructure:"showHidden"`
	StartPath       string `json:"startPath" mapstructure:"startPath"` // Empty means home
	RestoreLastPath bool   `json:"restoreLastPath" mapstructure:"restoreLastPath"`
}

// ThumbnailConfig holds thumbnail generation settings
type ThumbnailConfig struct {
	CacheDir    string  `json:"cacheDir" mapstructure:"cacheDir"`
	MaxWidth    int     `json:"maxWidth" mapstructure:"maxWidth"`
	MaxHeight   int     `json:"maxHeight" mapstructure:"maxHeight"`
	VideoOffset float64 `json:"videoOffset" mapstructure:"videoOffset"` // Seconds into the stream
	Pdftoppm    string  `json:"pdftoppm" mapstructure:"pdftoppm"`       // poppler rasteriser
	Ffmpeg      string  `json:"ffmpeg" mapstructure:"ffmpeg"`
	JpegQuality int     `json:"jpegQuality" mapstructure:"jpegQuality"`
}

// StoreConfig holds the database location
type StoreConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// WatchConfig holds directory watcher settings
type WatchConfig struct {
	DebounceMs int `json:"debounceMs" mapstructure:"debounceMs"`
}

// Manager handles loading, saving, and accessing configuration
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	parseErr error // Set when the file exists but could not be parsed
}

// NewManager creates a configuration manager for the default config path
func NewManager() *Manager {
	return NewManagerAt(ConfigPath())
}

// NewManagerAt creates a configuration manager for an explicit file
func NewManagerAt(path string) *Manager {
	return &Manager{
		config: DefaultConfig(),
		path:   path,
	}
}

func homeDir() string {
	home, err := homedir.Dir()
	if err != nil {
		home, _ = os.UserHomeDir()
	}
	return home
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	home := homeDir()
	return &Config{
		Browser: BrowserConfig{
			ShowHidden:      false,
			StartPath:       "",
			RestoreLastPath: true,
		},
		Thumbnails: ThumbnailConfig{
			CacheDir:    filepath.Join(home, ".local", "share", "3dthumb"),
			MaxWidth:    180,
			MaxHeight:   200,
			VideoOffset: 1.0,
			Pdftoppm:    "pdftoppm",
			Ffmpeg:      "ffmpeg",
			JpegQuality: 85,
		},
		Store: StoreConfig{
			Path: filepath.Join(home, ".config", "thumbnav", "thumbnav.db"),
		},
		Watch: WatchConfig{
			DebounceMs: 200,
		},
	}
}

// ConfigPath returns the config file path: ~/.config/thumbnav/config.json
func ConfigPath() string {
	return filepath.Join(homeDir(), ".config", "thumbnav", "config.json")
}

// Path returns the file this manager reads and writes
func (m *Manager) Path() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.path
}

// Load reads the configuration file. A missing file is created with
// defaults; a malformed one is reported through ParseError and defaults
// are used instead.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.parseErr = nil

	configDir := filepath.Dir(m.path)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		logrus.WithError(err).Warnf("Config: failed to create directory %s", configDir)
		return err
	}

	if _, err := os.Stat(m.path); os.IsNotExist(err) {
		logrus.Infof("Config: creating default config at %s", m.path)
		m.config = DefaultConfig()
		if saveErr := m.saveUnlocked(); saveErr != nil {
			return saveErr
		}
	} else if err != nil {
		return err
	}

	v := newViper(m.path)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return err
		}
		logrus.WithError(err).Warn("Config: parse error, using defaults")
		m.parseErr = err
		m.config = DefaultConfig()
		return nil
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		m.parseErr = err
		m.config = DefaultConfig()
		return nil
	}
	cfg.expandPaths()

	m.config = &cfg
	logrus.Debugf("Config: loaded from %s", m.path)
	return nil
}

// newViper builds a viper instance seeded with every default so that
// environment overrides apply to keys missing from the file.
func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := DefaultConfig()
	v.SetDefault("browser.showHidden", def.Browser.ShowHidden)
	v.SetDefault("browser.startPath", def.Browser.StartPath)
	v.SetDefault("browser.restoreLastPath", def.Browser.RestoreLastPath)
	v.SetDefault("thumbnails.cacheDir", def.Thumbnails.CacheDir)
	v.SetDefault("thumbnails.maxWidth", def.Thumbnails.MaxWidth)
	v.SetDefault("thumbnails.maxHeight", def.Thumbnails.MaxHeight)
	v.SetDefault("thumbnails.videoOffset", def.Thumbnails.VideoOffset)
	v.SetDefault("thumbnails.pdftoppm", def.Thumbnails.Pdftoppm)
	v.SetDefault("thumbnails.ffmpeg", def.Thumbnails.Ffmpeg)
	v.SetDefault("thumbnails.jpegQuality", def.Thumbnails.JpegQuality)
	v.SetDefault("store.path", def.Store.Path)
	v.SetDefault("watch.debounceMs", def.Watch.DebounceMs)
	return v
}

// expandPaths resolves ~ in user-supplied paths
func (c *Config) expandPaths() {
	for _, p := range []*string{&c.Browser.StartPath, &c.Thumbnails.CacheDir, &c.Store.Path} {
		if expanded, err := homedir.Expand(*p); err == nil {
			*p = expanded
		}
	}
}

// saveUnlocked saves config without acquiring lock (caller must hold lock)
func (m *Manager) saveUnlocked() error {
	data, err := json.MarshalIndent(m.config, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(m.path, data, 0o644)
}

// Save writes the current configuration to disk
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saveUnlocked()
}

// Get returns a copy of the current configuration
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.config == nil {
		return *DefaultConfig()
	}
	return *m.config
}

// ParseError returns the parsing error if config failed to load
func (m *Manager) ParseError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.parseErr
}

// SetShowHidden updates the show hidden files setting
func (m *Manager) SetShowHidden(show bool) error {
	m.mu.Lock()
	m.config.Browser.ShowHidden = show
	m.mu.Unlock()
	return m.Save()
}

// SetCacheDir updates the thumbnail cache directory
func (m *Manager) SetCacheDir(dir string) error {
	m.mu.Lock()
	m.config.Thumbnails.CacheDir = dir
	m.mu.Unlock()
	return m.Save()
}

// GenerateConfig backs up an existing config and writes a fresh default.
// Returns the backup path, or "" when there was nothing to back up.
func (m *Manager) GenerateConfig() (backupPath string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.path); err == nil {
		timestamp := time.Now().Format("20060102-150405")
		backupPath = filepath.Join(filepath.Dir(m.path), "config.backup."+timestamp+".json")

		data, err := os.ReadFile(m.path)
		if err != nil {
			return "", fmt.Errorf("failed to read existing config: %w", err)
		}
		if err := os.WriteFile(backupPath, data, 0o644); err != nil {
			return "", fmt.Errorf("failed to write backup: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return backupPath, fmt.Errorf("failed to create config directory: %w", err)
	}

	m.config = DefaultConfig()
	m.parseErr = nil
	if err := m.saveUnlocked(); err != nil {
		return backupPath, fmt.Errorf("failed to write config: %w", err)
	}
	return backupPath, nil
}
