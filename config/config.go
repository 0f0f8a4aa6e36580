package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Upstream   UpstreamConfig   `yaml:"upstream"`
	Booking    BookingConfig    `yaml:"booking"`
	Crypto     CryptoConfig     `yaml:"crypto"`
	Push       PushConfig       `yaml:"push"`
	WorkerPool WorkerPoolConfig `yaml:"worker_pool"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// UpstreamConfig holds the endpoints of the campus portal and the library
// booking subsystem. All of them are institution-specific, so none of them
// has a default.
type UpstreamConfig struct {
	PortalURL         string        `yaml:"portal_url"`
	RedirectURL       string        `yaml:"redirect_url"`
	Referer           string        `yaml:"referer"`
	LibraryLoginURL   string        `yaml:"library_login_url"`
	StudyroomURL      string        `yaml:"studyroom_url"`
	RequestURL        string        `yaml:"request_url"`
	BookingProcessURL string        `yaml:"booking_process_url"`
	UserFindURL       string        `yaml:"user_find_url"`
	TimeoutSeconds    int           `yaml:"timeout_seconds"`
	Timeout           time.Duration `yaml:"-"` // Ignored by YAML parser
}

// BookingConfig holds the scheduling rules of the host's booking window.
type BookingConfig struct {
	LeadDays   int    `yaml:"lead_days"`
	Timezone   string `yaml:"timezone"`
	CloseHour  int    `yaml:"close_hour"`
	CronSecret string `yaml:"cron_secret"`
}

// CryptoConfig holds the hex-encoded AES-256 key that protects stored
// portal passwords.
type CryptoConfig struct {
	Key string `yaml:"key"`
}

// PushConfig holds the VAPID keys for web push notifications.
type PushConfig struct {
	PublicKey  string `yaml:"vapid_public_key"`
	PrivateKey string `yaml:"vapid_private_key"`
	Subject    string `yaml:"subject"`
	TTL        int    `yaml:"ttl"`
}

// WorkerPoolConfig holds the configuration for the notification worker pool.
type WorkerPoolConfig struct {
	Size int `yaml:"size"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Upstream.TimeoutSeconds <= 0 {
		cfg.Upstream.TimeoutSeconds = 30
	}
	cfg.Upstream.Timeout = time.Duration(cfg.Upstream.TimeoutSeconds) * time.Second

	if cfg.Booking.LeadDays <= 0 {
		cfg.Booking.LeadDays = 7
	}
	if cfg.Booking.Timezone == "" {
		cfg.Booking.Timezone = "Asia/Seoul"
	}
	if cfg.Booking.CloseHour <= 0 {
		cfg.Booking.CloseHour = 22
	}

	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Push.TTL <= 0 {
		cfg.Push.TTL = 3600
	}

	if cfg.WorkerPool.Size <= 0 {
		log.Printf("worker_pool.size is not set or invalid; defaulting to 1")
		cfg.WorkerPool.Size = 1
	}

	return &cfg, nil
}
