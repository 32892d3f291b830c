package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr string `yaml:"http_addr"`

	DBDriver string `yaml:"db_driver"` // sqlite|postgres
	DBDSN    string `yaml:"db_dsn"`

	BlobBasePath string `yaml:"blob_base_path"`

	AuthHMACSecret  string   `yaml:"auth_hmac_secret"`
	AdminUser       string   `yaml:"admin_user"`
	AdminPassHash   string   `yaml:"admin_pass_hash"` // bcrypt
	EnableGuestAuth bool     `yaml:"enable_guest_auth"`
	CORSOrigins     []string `yaml:"cors_origins"`

	SessionIdleTimeout   time.Duration `yaml:"session_idle_timeout"`
	SessionSweepInterval time.Duration `yaml:"session_sweep_interval"`
	FallbackPolicy       string        `yaml:"fallback_policy"` // first|random|none

	TelegramBotToken string `yaml:"telegram_bot_token"`

	PdfToTextBin   string `yaml:"pdftotext_bin"`
	PdfImagesBin   string `yaml:"pdfimages_bin"`
	EnableOCR      bool   `yaml:"enable_ocr"`
	OCRLang        string `yaml:"ocr_lang"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

func Defaults() Config {
	return Config{
		HTTPAddr:             ":8080",
		DBDriver:             "sqlite",
		BlobBasePath:         "./data",
		AuthHMACSecret:       "supersecret-dev-key",
		AdminUser:            "admin",
		AdminPassHash:        "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji",
		EnableGuestAuth:      true,
		CORSOrigins:          []string{"http://localhost:3000"},
		SessionIdleTimeout:   30 * time.Minute,
		SessionSweepInterval: time.Minute,
		FallbackPolicy:       "random",
		PdfToTextBin:         "pdftotext",
		PdfImagesBin:         "pdfimages",
		OCRLang:              "eng",
		MaxUploadBytes:       32 << 20,
	}
}

// FromEnv returns the defaults overridden by environment variables.
func FromEnv() Config {
	return applyEnv(Defaults())
}

// Load reads the YAML file named by CONFIG_FILE, if any, on top of the
// defaults; environment variables win over both.
func Load() (Config, error) {
	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := parseYAML(data, &cfg); err != nil {
			return Config{}, err
		}
	}
	cfg = applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseYAML(data []byte, cfg *Config) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return fmt.Errorf("parse config: multiple YAML documents are not supported")
		}
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	switch c.DBDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("config: db_driver must be sqlite or postgres, got %q", c.DBDriver)
	}
	switch c.FallbackPolicy {
	case "first", "random", "none":
	default:
		return fmt.Errorf("config: fallback_policy must be first, random or none, got %q", c.FallbackPolicy)
	}
	if c.SessionIdleTimeout <= 0 {
		return fmt.Errorf("config: session_idle_timeout must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: max_upload_bytes must be positive")
	}
	return nil
}

func applyEnv(c Config) Config {
	c.HTTPAddr = envOr("HTTP_ADDR", c.HTTPAddr)
	c.DBDriver = envOr("DB_DRIVER", c.DBDriver)
	c.DBDSN = envOr("DB_DSN", c.DBDSN)
	c.BlobBasePath = envOr("BLOB_BASE_PATH", c.BlobBasePath)
	c.AuthHMACSecret = envOr("AUTH_HMAC_SECRET", c.AuthHMACSecret)
	c.AdminUser = envOr("ADMIN_USER", c.AdminUser)
	c.AdminPassHash = envOr("ADMIN_PASS_HASH", c.AdminPassHash)
	c.EnableGuestAuth = envBool("ENABLE_GUEST_AUTH", c.EnableGuestAuth)
	c.CORSOrigins = csvOr("CORS_ORIGINS", c.CORSOrigins)
	c.SessionIdleTimeout = envDuration("SESSION_IDLE_TIMEOUT", c.SessionIdleTimeout)
	c.SessionSweepInterval = envDuration("SESSION_SWEEP_INTERVAL", c.SessionSweepInterval)
	c.FallbackPolicy = strings.ToLower(envOr("FALLBACK_POLICY", c.FallbackPolicy))
	c.TelegramBotToken = envOr("TELEGRAM_BOT_TOKEN", c.TelegramBotToken)
	c.PdfToTextBin = envOr("PDFTOTEXT_BIN", c.PdfToTextBin)
	c.PdfImagesBin = envOr("PDFIMAGES_BIN", c.PdfImagesBin)
	c.EnableOCR = envBool("ENABLE_OCR", c.EnableOCR)
	c.OCRLang = envOr("OCR_LANG", c.OCRLang)
	c.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	return c
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}
func envBool(k string, def bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "yes", "YES":
		return true
	case "0", "false", "FALSE", "no", "NO":
		return false
	default:
		return def
	}
}
func envDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return d
	}
	return def
}
func envInt64(k string, def int64) int64 {
	if n, err := strconv.ParseInt(os.Getenv(k), 10, 64); err == nil {
		return n
	}
	return def
}
func csvOr(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
