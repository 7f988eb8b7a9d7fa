// Package config loads navix-cli's TOML configuration with Viper.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	NIPL     NIPLConfig     `toml:"nipl"`
	Nookie   NookieConfig   `toml:"nookie"`
	Browser  BrowserConfig  `toml:"browser"`
	Network  NetworkConfig  `toml:"network"`
	Fetch    FetchConfig    `toml:"fetch"`
	Download DownloadConfig `toml:"download"`
	Logging  LoggingConfig  `toml:"logging"`
}

// NIPLConfig carries the request identity a processor sees: the platform
// string and client version sent in the processor-fetch cookie header.
type NIPLConfig struct {
	Platform string `toml:"platform"`
	Version  string `toml:"version"`
}

// NookieConfig points at the durable badger-backed nookie store.
type NookieConfig struct {
	Dir string `toml:"dir"`
}

type BrowserConfig struct {
	Default string               `toml:"default"`
	Paths   map[string]string    `toml:"paths"`
	Cookies BrowserCookiesConfig `toml:"cookies"`
}

type BrowserCookiesConfig struct {
	Domains []string `toml:"domains"`
	Exclude []string `toml:"exclude"`
}

type NetworkConfig struct {
	Timeout   int    `toml:"timeout"`
	UserAgent string `toml:"user_agent"`
}

// FetchConfig configures the static/JS content fetcher used by `inspect`.
type FetchConfig struct {
	SkipCookieBanners bool   `toml:"skip_cookie_banners"`
	BannerTimeout     int    `toml:"banner_timeout"`
	EnableJavaScript  string `toml:"enable_javascript"`
	JSTimeout         int    `toml:"js_timeout"`
	WaitForSelector   string `toml:"wait_for_selector"`
	MinContentLength  int    `toml:"min_content_length"`
}

type DownloadConfig struct {
	Dir    string `toml:"dir"`
	Resume bool   `toml:"resume"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

func Default() *Config {
	return &Config{
		NIPL: NIPLConfig{
			Platform: "unknown",
			Version:  "3.7",
		},
		Nookie: NookieConfig{
			Dir: "",
		},
		Browser: BrowserConfig{
			Default: "auto",
			Paths:   map[string]string{},
			Cookies: BrowserCookiesConfig{
				Domains: []string{"*"},
				Exclude: []string{},
			},
		},
		Network: NetworkConfig{
			Timeout:   30,
			UserAgent: "",
		},
		Fetch: FetchConfig{
			SkipCookieBanners: true,
			BannerTimeout:     5,
			EnableJavaScript:  "auto",
			JSTimeout:         15,
			WaitForSelector:   "",
			MinContentLength:  100,
		},
		Download: DownloadConfig{
			Dir:    "",
			Resume: false,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

func Load(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return cfg, fmt.Errorf("error finding home directory: %w", err)
			}
			configHome = filepath.Join(home, ".config")
		}

		configDir := filepath.Join(configHome, "navix-cli")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("toml")
		viper.SetConfigName("config")

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return cfg, fmt.Errorf("error creating config directory: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("NAVIX")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if err := viper.Unmarshal(cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.Nookie.Dir == "" {
		cfg.Nookie.Dir = defaultStateSubdir("nookies")
	}
	if cfg.Download.Dir == "" {
		cfg.Download.Dir = "."
	}

	return cfg, nil
}

func defaultStateSubdir(name string) string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return name
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "navix-cli", name)
}

func (c *Config) CreateExampleConfig(configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	exampleContent := `# navix-cli configuration file

[nipl]
# Identity sent to processors on every phase request.
platform = "unknown"
version = "3.7"

[nookie]
# Directory for the durable per-processor key/value store.
# Defaults to $XDG_DATA_HOME/navix-cli/nookies.
dir = ""

[browser]
# Default browser for cookie extraction
default = "auto"  # auto, chrome, firefox, safari, zen

# Specific browser paths (optional, auto-detected if empty)
[browser.paths]
chrome = ""
firefox = ""
safari = ""
zen = ""

# Domain patterns for cookie seeding
[browser.cookies]
domains = ["*"]  # seed cookies for all domains by default
exclude = []     # domains to exclude from cookie seeding

[network]
timeout = 30              # seconds
user_agent = ""           # custom user agent (empty = default rotation)

[fetch]
# Used by the inspect subcommand.
skip_cookie_banners = true
banner_timeout = 5
enable_javascript = "auto"  # auto, always, never
js_timeout = 15
wait_for_selector = ""
min_content_length = 100

[download]
dir = "."       # default download directory
resume = false  # resume partial downloads via HTTP Range by default

[logging]
level = "info"  # debug, info, warn, error
file = ""       # log file path (empty = stderr only)
`

	return os.WriteFile(configPath, []byte(exampleContent), 0644)
}
