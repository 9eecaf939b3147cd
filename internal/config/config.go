package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
	DriverMemory = "memory"
)

var ErrInvalid = errors.New("config: invalid")

type Backend struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key,omitempty"`
}

type Cache struct {
	Driver    string `yaml:"driver,omitempty"`
	Dir       string `yaml:"dir,omitempty"`
	Partition string `yaml:"partition,omitempty"`
	// TTL is empty or "0" for no expiry. Accepts Go durations and Nd days.
	TTL string `yaml:"ttl,omitempty"`
}

type Content struct {
	AllCategory   string `yaml:"all_category,omitempty"`
	Limit         int    `yaml:"limit,omitempty"`
	VideoFeedURL  string `yaml:"video_feed_url,omitempty"`
	VideoCategory string `yaml:"video_category,omitempty"`
}

type Theme struct {
	Glamour     string `yaml:"glamour,omitempty"`
	TitleColor  string `yaml:"titleColor,omitempty"`
	AccentColor string `yaml:"accentColor,omitempty"`
	MutedColor  string `yaml:"mutedColor,omitempty"`
}

// need to add to Load() below if loading from config file
type Config struct {
	ConfigPath  string       `yaml:"-"`
	ConfigDir   string       `yaml:"-"`
	Version     string       `yaml:"-"`
	NoCache     bool         `yaml:"-"`
	Pager       string       `yaml:"pager,omitempty"`
	Backend     Backend      `yaml:"backend"`
	Cache       Cache        `yaml:"cache,omitempty"`
	Content     Content      `yaml:"content,omitempty"`
	Theme       Theme        `yaml:"theme,omitempty"`
	HTTPOptions *HTTPOptions `yaml:"http,omitempty"`
}

func New(configPath string, pager string, noCache bool, version string) (*Config, error) {
	var configDir string

	if configPath == "" {
		userConfigDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("config.New: %w", err)
		}

		configDir = filepath.Join(userConfigDir, "leitor")
		configPath = filepath.Join(configDir, "config.yml")
	} else {
		configDir = filepath.Dir(configPath)
	}

	return &Config{
		ConfigPath: configPath,
		ConfigDir:  configDir,
		Version:    version,
		NoCache:    noCache,
		Pager:      pager,
		Cache: Cache{
			Driver: DriverSQLite,
		},
		Content: Content{
			AllCategory: "Todas",
			Limit:       50,
		},
		Theme: Theme{
			Glamour:     "dark",
			TitleColor:  "62",
			AccentColor: "170",
			MutedColor:  "240",
		},
		HTTPOptions: &HTTPOptions{
			MinTLSVersion: tls.VersionName(tls.VersionTLS12),
			Timeout:       "10s",
		},
	}, nil
}

// Load reads the config file over the defaults set by New, then applies
// environment overrides. Flags passed to New keep priority over both.
func (c *Config) Load() error {
	created, err := setupConfigDir(c.ConfigPath)
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	// a new config file starts out with the defaults, without flag values
	if created {
		defaults, err := New(c.ConfigPath, "", false, c.Version)
		if err != nil {
			return fmt.Errorf("config.Load: %w", err)
		}
		err = defaults.Write()
		if err != nil {
			return fmt.Errorf("config.Load: %w", err)
		}
	}

	rawData, err := os.ReadFile(c.ConfigPath)
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	// manually set config values from fileConfig, messy solve for config priority
	var fileConfig Config
	err = yaml.Unmarshal(rawData, &fileConfig)
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	c.Backend = fileConfig.Backend

	if fileConfig.Cache.Driver != "" {
		c.Cache.Driver = fileConfig.Cache.Driver
	}
	if fileConfig.Cache.Dir != "" {
		c.Cache.Dir = fileConfig.Cache.Dir
	}
	if fileConfig.Cache.Partition != "" {
		c.Cache.Partition = fileConfig.Cache.Partition
	}
	if fileConfig.Cache.TTL != "" {
		c.Cache.TTL = fileConfig.Cache.TTL
	}

	if fileConfig.Content.AllCategory != "" {
		c.Content.AllCategory = fileConfig.Content.AllCategory
	}
	if fileConfig.Content.Limit > 0 {
		c.Content.Limit = fileConfig.Content.Limit
	}
	c.Content.VideoFeedURL = fileConfig.Content.VideoFeedURL
	c.Content.VideoCategory = fileConfig.Content.VideoCategory

	if fileConfig.Theme.Glamour != "" {
		c.Theme.Glamour = fileConfig.Theme.Glamour
	}
	if fileConfig.Theme.TitleColor != "" {
		c.Theme.TitleColor = fileConfig.Theme.TitleColor
	}
	if fileConfig.Theme.AccentColor != "" {
		c.Theme.AccentColor = fileConfig.Theme.AccentColor
	}
	if fileConfig.Theme.MutedColor != "" {
		c.Theme.MutedColor = fileConfig.Theme.MutedColor
	}

	if fileConfig.HTTPOptions != nil {
		if fileConfig.HTTPOptions.MinTLSVersion != "" {
			c.HTTPOptions.MinTLSVersion = fileConfig.HTTPOptions.MinTLSVersion
		}
		if fileConfig.HTTPOptions.Timeout != "" {
			c.HTTPOptions.Timeout = fileConfig.HTTPOptions.Timeout
		}
	}

	// only set pager if it's not defined already, config file is lower
	// precidence than flags/env that can be passed to New
	if c.Pager == "" {
		c.Pager = fileConfig.Pager
	}

	err = c.applyEnv()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	return c.validate()
}

func (c *Config) validate() error {
	if c.Backend.URL != "" {
		u, err := url.Parse(c.Backend.URL)
		if err != nil {
			return fmt.Errorf("%w: backend url: %v", ErrInvalid, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%w: backend url scheme must be http or https, got %q", ErrInvalid, u.Scheme)
		}
	}

	switch c.Cache.Driver {
	case DriverSQLite, DriverFile, DriverMemory:
	default:
		return fmt.Errorf("%w: unknown cache driver %q (valid: sqlite, file, memory)", ErrInvalid, c.Cache.Driver)
	}

	if _, err := c.CacheTTL(); err != nil {
		return err
	}

	if _, err := TLSVersion(c.HTTPOptions.MinTLSVersion); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	if _, err := c.HTTPTimeout(); err != nil {
		return err
	}

	return nil
}

// Write writes to a config file
func (c *Config) Write() error {
	str, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config.Write: %w", err)
	}

	err = os.WriteFile(c.ConfigPath, str, 0600)
	if err != nil {
		return fmt.Errorf("config.Write: %w", err)
	}

	return nil
}

func (c *Config) CacheTTL() (time.Duration, error) {
	d, err := parseDuration(c.Cache.TTL)
	if err != nil {
		return 0, fmt.Errorf("%w: cache ttl: %v", ErrInvalid, err)
	}
	return d, nil
}

func (c *Config) HTTPTimeout() (time.Duration, error) {
	d, err := parseDuration(c.HTTPOptions.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: http timeout: %v", ErrInvalid, err)
	}
	return d, nil
}

func (c *Config) MinTLSVersion() uint16 {
	v, err := TLSVersion(c.HTTPOptions.MinTLSVersion)
	if err != nil {
		return tls.VersionTLS12
	}
	return v
}

// CacheDir is where the sqlite file or the file store lives.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}

	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("config.CacheDir: %w", err)
	}

	return filepath.Join(userCacheDir, "leitor"), nil
}

// parseDuration accepts Go durations plus a "Nd" day suffix. Empty is zero.
func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return 0, nil
	}

	if strings.HasSuffix(s, "d") {
		var days int
		if _, err := fmt.Sscanf(s, "%dd", &days); err == nil && days >= 0 {
			return time.Duration(days) * 24 * time.Hour, nil
		}
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("negative duration %s", s)
	}

	return d, nil
}

// setupConfigDir creates an empty config file if none exists and reports
// whether it did.
func setupConfigDir(configPath string) (bool, error) {
	_, err := os.Stat(configPath)

	// if configFile exists, do nothing
	if !errors.Is(err, os.ErrNotExist) {
		return false, nil
	}

	// if not, create directory. noop if directory exists
	err = os.MkdirAll(filepath.Dir(configPath), 0755)
	if err != nil {
		return false, fmt.Errorf("setupConfigDir: %w", err)
	}

	// then create the file
	f, err := os.Create(configPath)
	if err != nil {
		return false, fmt.Errorf("setupConfigDir: %w", err)
	}

	return true, f.Close()
}
