package config

import (
	"log/slog"
	"net/netip"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName     string
	AppEnv      string
	AppURL      string
	Port        string
	AppTagline  string
	ContentPath string
	DateLocale  string

	// Content API (Prismic-compatible REST API v2)
	PrismicEndpoint    string
	PrismicAccessToken string
	CMSPageSize        int
	CMSTimeout         time.Duration
	CMSMaxRetries      int
	ImageCDN           string // origin of post images, allowed by the CSP img-src

	// Incremental regeneration
	RevalidateInterval time.Duration

	// Snapshot database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Static export
	OutputDir        string
	PublishTarget    string // "local" or "s3"
	BuildConcurrency int

	// Load more endpoint rate limit (per client IP)
	LoadMoreRateLimit  int
	LoadMoreRateWindow time.Duration

	// Reverse proxies whose X-Forwarded-For / X-Real-IP headers are believed
	TrustedProxies []netip.Prefix

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible, only used when PUBLISH_TARGET=s3)
	S3Region    string
	S3Bucket    string
	S3AccessKey string
	S3SecretKey string
	S3Endpoint  string // Optional: for S3-compatible services (MinIO, R2, etc.)
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:     envString("APP_NAME", "spacetraveling"),
		AppEnv:      envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:      envRequired("APP_URL"), // Required: base URL for sitemap and feed links
		Port:        envString("PORT", "8090"),
		AppTagline:  envString("APP_TAGLINE", "Histórias de quem viaja pelo espaço"),
		ContentPath: envString("CONTENT_PATH", "content"),
		DateLocale:  envString("DATE_LOCALE", "pt-BR"),

		// Content API
		PrismicEndpoint:    envRequired("PRISMIC_API_ENDPOINT"),
		PrismicAccessToken: envString("PRISMIC_ACCESS_TOKEN", ""),
		CMSPageSize:        envInt("CMS_PAGE_SIZE", 1),
		CMSTimeout:         envDuration("CMS_TIMEOUT", 10*time.Second),
		CMSMaxRetries:      envInt("CMS_MAX_RETRIES", 0),
		ImageCDN:           envString("IMAGE_CDN", "https://images.prismic.io"),

		RevalidateInterval: envDuration("REVALIDATE_INTERVAL", 30*time.Minute),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/spacetraveling.db?_pragma=journal_mode(WAL)"),

		// Static export
		OutputDir:        envString("OUTPUT_DIR", "public"),
		PublishTarget:    envString("PUBLISH_TARGET", "local"),
		BuildConcurrency: envInt("BUILD_CONCURRENCY", 4),

		LoadMoreRateLimit:  envInt("LOAD_MORE_RATE_LIMIT", 60),
		LoadMoreRateWindow: envDuration("LOAD_MORE_RATE_WINDOW", time.Minute),
		TrustedProxies:     envPrefixes("TRUSTED_PROXIES"),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		S3Region:    envString("S3_REGION", ""),
		S3Bucket:    envString("S3_BUCKET", ""),
		S3AccessKey: envString("S3_ACCESS_KEY", ""),
		S3SecretKey: envString("S3_SECRET_KEY", ""),
		S3Endpoint:  envString("S3_ENDPOINT", ""),
	}

	if cfg.PublishesToS3() {
		validateS3(cfg)
	}

	return cfg
}

// validateS3 ensures the bucket settings are present when static exports are
// published to S3. Local publishing needs none of them.
func validateS3(cfg *Config) {
	missing := []string{}
	if cfg.S3Region == "" {
		missing = append(missing, "S3_REGION")
	}
	if cfg.S3Bucket == "" {
		missing = append(missing, "S3_BUCKET")
	}
	if len(missing) > 0 {
		slog.Error("s3 publish target requires bucket settings", "missing", missing)
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

// envPrefixes reads a comma separated list of IPs or CIDRs. A bare IP is a
// single address prefix. Invalid entries are skipped with a warning.
func envPrefixes(key string) []netip.Prefix {
	var prefixes []netip.Prefix
	for _, v := range strings.Split(os.Getenv(key), ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if addr, err := netip.ParseAddr(v); err == nil {
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
			continue
		}
		prefix, err := netip.ParsePrefix(v)
		if err != nil {
			slog.Warn("config invalid proxy address, skipping", "key", key, "value", v)
			continue
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return prefixes
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) PublishesToS3() bool {
	return c.PublishTarget == "s3"
}

// Sanitized returns a copy of the config with only public/safe fields.
// Tokens and storage credentials are excluded.
// Safe to expose in ctx and templates.
func (c *Config) Sanitized() *Config {
	return &Config{
		AppName:    c.AppName,
		AppEnv:     c.AppEnv,
		AppURL:     c.AppURL,
		Port:       c.Port,
		AppTagline: c.AppTagline,
		DateLocale: c.DateLocale,
		ImageCDN:   c.ImageCDN,
	}
}
