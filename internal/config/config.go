package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	neturl "net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mx-space/blockpress/internal/blocks"
)

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"

	defaultPort           = 3000
	defaultEnv            = "development"
	defaultSiteName       = "Blog"
	defaultStrapiURL      = "http://localhost:1337"
	defaultStrapiTimeout  = 10
	defaultRedisHost      = "localhost"
	defaultRedisPort      = 6379
	defaultRedisDB        = 0
	defaultCacheTTL       = 60
	defaultStrapiCacheTTL = 30
	defaultImageFormat    = string(blocks.DefaultFormat)
)

// Rich-text body formats.
const (
	RichTextHTML     = "html"
	RichTextMarkdown = "markdown"
)

// AppConfig holds runtime startup configuration loaded from YAML.
type AppConfig struct {
	Port           int                `yaml:"port"`
	Env            string             `yaml:"env"` // "development" | "production"
	Timezone       string             `yaml:"timezone"`
	AllowedOrigins []string           `yaml:"allowed_origins"`
	Paths          RuntimePathsConfig `yaml:"paths"`
	Site           SiteConfig         `yaml:"site"`
	Strapi         StrapiConfig       `yaml:"strapi"`
	Redis          RedisRuntimeConfig `yaml:"redis"`
	Cache          CacheConfig        `yaml:"cache"`
	Render         RenderConfig       `yaml:"render"`
}

type RuntimePathsConfig struct {
	Logs string `yaml:"logs"`
}

type SiteConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type StrapiConfig struct {
	URL            string `yaml:"url"`
	APIToken       string `yaml:"api_token"`
	MediaURL       string `yaml:"media_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type RedisRuntimeConfig struct {
	Enable   bool   `yaml:"enable"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TLS      bool   `yaml:"tls"`
}

type CacheConfig struct {
	Enable           bool   `yaml:"enable"`
	TTLSeconds       int    `yaml:"ttl_seconds"`
	StrapiTTLSeconds int    `yaml:"strapi_ttl_seconds"`
	PurgeToken       string `yaml:"purge_token"`
}

type RenderConfig struct {
	RichText        string `yaml:"rich_text"`
	ImageFormat     string `yaml:"image_format"`
	ShowBlockErrors bool   `yaml:"show_block_errors"`
}

type rawAppConfig struct {
	Port               int             `yaml:"port"`
	Env                string          `yaml:"env"`
	NodeEnv            string          `yaml:"node_env"`
	Timezone           string          `yaml:"timezone"`
	TimeZone           string          `yaml:"time_zone"`
	TZ                 string          `yaml:"tz"`
	AllowedOrigins     []string        `yaml:"allowed_origins"`
	CORSAllowedOrigins []string        `yaml:"cors_allowed_origins"`
	Paths              rawPathsConfig  `yaml:"paths"`
	LogDir             string          `yaml:"log_dir"`
	LogsDir            string          `yaml:"logs_dir"`
	Site               rawSiteConfig   `yaml:"site"`
	SiteName           string          `yaml:"site_name"`
	SiteURL            string          `yaml:"site_url"`
	Strapi             rawStrapiConfig `yaml:"strapi"`
	StrapiURL          string          `yaml:"strapi_url"`
	StrapiToken        string          `yaml:"strapi_token"`
	Redis              rawRedisConfig  `yaml:"redis"`
	RedisURL           string          `yaml:"redis_url"`
	Cache              rawCacheConfig  `yaml:"cache"`
	Render             rawRenderConfig `yaml:"render"`
}

type rawPathsConfig struct {
	Logs string `yaml:"logs"`
}

type rawSiteConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

type rawStrapiConfig struct {
	URL            string `yaml:"url"`
	APIToken       string `yaml:"api_token"`
	Token          string `yaml:"token"`
	MediaURL       string `yaml:"media_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type rawRedisConfig struct {
	Enable   *bool  `yaml:"enable"`
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DB       *int   `yaml:"db"`
	TLS      *bool  `yaml:"tls"`
}

type rawCacheConfig struct {
	Enable           *bool  `yaml:"enable"`
	TTLSeconds       *int   `yaml:"ttl_seconds"`
	StrapiTTLSeconds *int   `yaml:"strapi_ttl_seconds"`
	PurgeToken       string `yaml:"purge_token"`
}

type rawRenderConfig struct {
	RichText        string `yaml:"rich_text"`
	ImageFormat     string `yaml:"image_format"`
	ShowBlockErrors *bool  `yaml:"show_block_errors"`
}

// Load reads the YAML file at configPath. An empty path means DefaultConfigPath, which may
// be absent; an explicit path must exist. Environment overrides are applied last.
func Load(configPath string) (*AppConfig, error) {
	path := strings.TrimSpace(configPath)
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	cfg := defaultAppConfig()
	content, err := os.ReadFile(path)
	switch {
	case err == nil:
		decoder := yaml.NewDecoder(bytes.NewReader(content))
		decoder.KnownFields(true)
		raw := rawAppConfig{}
		if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse config file %q: %w", path, err)
		}
		applyRawAppConfig(&cfg, raw)
	case explicit || !errors.Is(err, os.ErrNotExist):
		return nil, fmt.Errorf("read config file %q: %w", path, err)
	}

	applyEnv(&cfg, os.LookupEnv)
	normalizeAppConfig(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return &cfg, nil
}

func defaultAppConfig() AppConfig {
	return AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Site: SiteConfig{Name: defaultSiteName},
		Strapi: StrapiConfig{
			URL:            defaultStrapiURL,
			TimeoutSeconds: defaultStrapiTimeout,
		},
		Redis: RedisRuntimeConfig{
			Host: defaultRedisHost,
			Port: defaultRedisPort,
			DB:   defaultRedisDB,
		},
		Cache: CacheConfig{
			TTLSeconds:       defaultCacheTTL,
			StrapiTTLSeconds: defaultStrapiCacheTTL,
		},
		Render: RenderConfig{
			RichText:    RichTextHTML,
			ImageFormat: defaultImageFormat,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	cfg.Env = firstSet(cfg.Env, raw.Env, raw.NodeEnv)
	cfg.Timezone = firstSet(cfg.Timezone, raw.Timezone, raw.TimeZone, raw.TZ)
	cfg.Paths.Logs = firstSet(cfg.Paths.Logs, raw.Paths.Logs, raw.LogDir, raw.LogsDir)

	switch {
	case raw.AllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.AllowedOrigins)
	case raw.CORSAllowedOrigins != nil:
		cfg.AllowedOrigins = normalizeOrigins(raw.CORSAllowedOrigins)
	}

	cfg.Site.Name = firstSet(cfg.Site.Name, raw.Site.Name, raw.SiteName)
	cfg.Site.URL = firstSet(cfg.Site.URL, raw.Site.URL, raw.SiteURL)

	cfg.Strapi.URL = firstSet(cfg.Strapi.URL, raw.Strapi.URL, raw.StrapiURL)
	cfg.Strapi.APIToken = firstSet(cfg.Strapi.APIToken, raw.Strapi.APIToken, raw.Strapi.Token, raw.StrapiToken)
	cfg.Strapi.MediaURL = firstSet(cfg.Strapi.MediaURL, raw.Strapi.MediaURL)
	if raw.Strapi.TimeoutSeconds != 0 {
		cfg.Strapi.TimeoutSeconds = raw.Strapi.TimeoutSeconds
	}

	cfg.Redis = applyRawRedisConfig(cfg.Redis, raw)

	if raw.Cache.Enable != nil {
		cfg.Cache.Enable = *raw.Cache.Enable
	}
	if raw.Cache.TTLSeconds != nil {
		cfg.Cache.TTLSeconds = *raw.Cache.TTLSeconds
	}
	if raw.Cache.StrapiTTLSeconds != nil {
		cfg.Cache.StrapiTTLSeconds = *raw.Cache.StrapiTTLSeconds
	}
	cfg.Cache.PurgeToken = firstSet(cfg.Cache.PurgeToken, raw.Cache.PurgeToken)

	cfg.Render.RichText = firstSet(cfg.Render.RichText, raw.Render.RichText)
	cfg.Render.ImageFormat = firstSet(cfg.Render.ImageFormat, raw.Render.ImageFormat)
	if raw.Render.ShowBlockErrors != nil {
		cfg.Render.ShowBlockErrors = *raw.Render.ShowBlockErrors
	}
}

func applyRawRedisConfig(current RedisRuntimeConfig, raw rawAppConfig) RedisRuntimeConfig {
	cfg := current
	if raw.Redis.Enable != nil {
		cfg.Enable = *raw.Redis.Enable
	}
	cfg.URL = firstSet(cfg.URL, raw.Redis.URL, raw.RedisURL)
	cfg.Host = firstSet(cfg.Host, raw.Redis.Host)
	if raw.Redis.Port != 0 {
		cfg.Port = raw.Redis.Port
	}
	cfg.Username = firstSet(cfg.Username, raw.Redis.Username)
	cfg.Password = firstSet(cfg.Password, raw.Redis.Password)
	if raw.Redis.DB != nil {
		cfg.DB = *raw.Redis.DB
	}
	if raw.Redis.TLS != nil {
		cfg.TLS = *raw.Redis.TLS
	}
	return cfg
}

// applyEnv lets deployments override the upstream and port without editing the file.
func applyEnv(cfg *AppConfig, lookup func(string) (string, bool)) {
	if v, ok := lookup("STRAPI_URL"); ok && strings.TrimSpace(v) != "" {
		cfg.Strapi.URL = strings.TrimSpace(v)
	}
	if v, ok := lookup("STRAPI_API_TOKEN"); ok && strings.TrimSpace(v) != "" {
		cfg.Strapi.APIToken = strings.TrimSpace(v)
	}
	if v, ok := lookup("BLOCKPRESS_PURGE_TOKEN"); ok && strings.TrimSpace(v) != "" {
		cfg.Cache.PurgeToken = strings.TrimSpace(v)
	}
	if v, ok := lookup("BLOCKPRESS_PORT"); ok {
		if port, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			cfg.Port = port
		}
	}
}

func (c *AppConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d, expected 1-65535", c.Port)
	}
	if u, err := neturl.Parse(c.Strapi.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid strapi.url %q, expected an absolute URL", c.Strapi.URL)
	}
	if c.Strapi.TimeoutSeconds < 0 {
		return fmt.Errorf("invalid strapi.timeout_seconds %d, expected >= 0", c.Strapi.TimeoutSeconds)
	}
	if c.Redis.Port < 1 || c.Redis.Port > 65535 {
		return fmt.Errorf("invalid redis.port %d, expected 1-65535", c.Redis.Port)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis.db %d, expected >= 0", c.Redis.DB)
	}
	if c.Cache.TTLSeconds < 0 || c.Cache.StrapiTTLSeconds < 0 {
		return fmt.Errorf("invalid cache ttl, expected >= 0")
	}
	if c.Render.RichText != RichTextHTML && c.Render.RichText != RichTextMarkdown {
		return fmt.Errorf("invalid render.rich_text %q, expected %q or %q", c.Render.RichText, RichTextHTML, RichTextMarkdown)
	}
	if !blocks.Format(c.Render.ImageFormat).Valid() {
		return fmt.Errorf("invalid render.image_format %q", c.Render.ImageFormat)
	}
	return nil
}

func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(c.Env, defaultEnv)
}

func (c *AppConfig) LogDir() string {
	if c == nil {
		return ResolveRuntimePath("", "logs")
	}
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

func (c *AppConfig) StrapiTimeout() time.Duration {
	return time.Duration(c.Strapi.TimeoutSeconds) * time.Second
}

// MediaBaseURL prefixes root-relative upload urls. It defaults to the Strapi url.
func (c *AppConfig) MediaBaseURL() string {
	if c.Strapi.MediaURL != "" {
		return c.Strapi.MediaURL
	}
	return c.Strapi.URL
}

// PageCacheTTL is zero when page caching is off.
func (c *AppConfig) PageCacheTTL() time.Duration {
	if !c.Redis.Enable || !c.Cache.Enable {
		return 0
	}
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

// StrapiCacheTTL is zero when the Strapi response cache is off.
func (c *AppConfig) StrapiCacheTTL() time.Duration {
	if !c.Redis.Enable {
		return 0
	}
	return time.Duration(c.Cache.StrapiTTLSeconds) * time.Second
}

func firstSet(current string, candidates ...string) string {
	for _, candidate := range candidates {
		if v := strings.TrimSpace(candidate); v != "" {
			return v
		}
	}
	return current
}
