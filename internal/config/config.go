// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Fetch   FetchConfig   `mapstructure:"fetch"`
	Proxy   ProxyConfig   `mapstructure:"proxy"`
	Shopify ShopifyConfig `mapstructure:"shopify"`
	Import  ImportConfig  `mapstructure:"import"`
	CORS    CORSConfig    `mapstructure:"cors"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// FetchConfig configures the direct page fetch.
type FetchConfig struct {
	Timeout    time.Duration `mapstructure:"timeout"`
	UserAgents []string      `mapstructure:"user_agents"`
	Accept     string        `mapstructure:"accept"`

	// Bodies shorter than this are checked for script-only challenge shells.
	ChallengeBodyThreshold int `mapstructure:"challenge_body_threshold"`
}

// ProxyConfig configures the third-party scraping proxy used as fallback.
// An empty APIKey disables the fallback path.
type ProxyConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ShopifyConfig holds the Admin API coordinates and the webhook signing secret.
type ShopifyConfig struct {
	ShopDomain  string        `mapstructure:"shop_domain"`
	AccessToken string        `mapstructure:"access_token"`
	APIVersion  string        `mapstructure:"api_version"`
	APISecret   string        `mapstructure:"api_secret"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ImportConfig sets the labels written on imported products.
type ImportConfig struct {
	DefaultVendor string `mapstructure:"default_vendor"`
	ProductType   string `mapstructure:"product_type"`
}

// CORSConfig lists origins allowed to call the JSON endpoints.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DefaultUserAgents is the pool a direct fetch picks from.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// envBindings maps keys to the unprefixed variable names the platform tooling exports.
var envBindings = map[string]string{
	"proxy.api_key":        "SCRAPER_API_KEY",
	"shopify.api_secret":   "SHOPIFY_API_SECRET",
	"shopify.shop_domain":  "SHOPIFY_SHOP_DOMAIN",
	"shopify.access_token": "SHOPIFY_ACCESS_TOKEN",
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("YONOX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, env := range envBindings {
		if err := v.BindEnv(key, "YONOX_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return Config{}, fmt.Errorf("bind env %s: %w", env, err)
		}
	}

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout", "60s")
	v.SetDefault("logging.development", false)
	v.SetDefault("logging.level", "info")
	v.SetDefault("fetch.timeout", "15s")
	v.SetDefault("fetch.user_agents", DefaultUserAgents)
	v.SetDefault("fetch.challenge_body_threshold", 2048)
	v.SetDefault("fetch.accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	v.SetDefault("proxy.base_url", "http://api.scraperapi.com")
	v.SetDefault("proxy.timeout", "30s")
	v.SetDefault("shopify.api_version", "2024-10")
	v.SetDefault("shopify.timeout", "30s")
	v.SetDefault("import.default_vendor", "Importé")
	v.SetDefault("import.product_type", "Importé via YONOX")
	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("server.request_timeout must be > 0")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be > 0")
	}
	if len(c.Fetch.UserAgents) == 0 {
		return fmt.Errorf("fetch.user_agents must not be empty")
	}
	if c.Proxy.Timeout <= 0 {
		return fmt.Errorf("proxy.timeout must be > 0")
	}
	if c.Proxy.APIKey != "" && c.Proxy.BaseURL == "" {
		return fmt.Errorf("proxy.base_url must be set when proxy.api_key is set")
	}
	if c.Shopify.AccessToken != "" && c.Shopify.ShopDomain == "" {
		return fmt.Errorf("shopify.shop_domain must be set when shopify.access_token is set")
	}
	return nil
}

// ProxyEnabled reports whether the fallback fetch path can be attempted.
func (c Config) ProxyEnabled() bool {
	return c.Proxy.APIKey != ""
}
