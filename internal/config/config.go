package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env        string     `yaml:"env" env:"APP_ENV" env-default:"local"`
	HTTPServer HTTPServer `yaml:"http_server"`
	Postgres   Postgres   `yaml:"postgres"`
	Mongo      Mongo      `yaml:"mongo"`
	JWT        JWT        `yaml:"jwt"`
	Cookie     Cookie     `yaml:"cookie"`
	ES         ES         `yaml:"elasticsearch"`
	Minio      Minio      `yaml:"minio"`
	Email      Email      `yaml:"email"`
	Jobs       Jobs       `yaml:"jobs"`
	Admin      Admin      `yaml:"admin"`
	Uploads    Uploads    `yaml:"uploads"`
}

type HTTPServer struct {
	Address     string        `yaml:"address" env:"HTTP_ADDRESS" env-default:"localhost:8081"`
	Timeout     time.Duration `yaml:"timeout" env-default:"15s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
	AllowOrigin string        `yaml:"allow_origin" env:"CORS_ORIGIN" env-default:"http://localhost:3000"`
}

type Postgres struct {
	Host     string `yaml:"host" env:"POSTGRES_HOST" env-default:"localhost"`
	Port     string `yaml:"port" env:"POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"POSTGRES_USER"`
	Password string `yaml:"password" env:"POSTGRES_PASSWORD"`
	DBName   string `yaml:"dbname" env:"POSTGRES_DB"`
	Migrate  bool   `yaml:"migrate" env:"POSTGRES_MIGRATE" env-default:"true"`
}

type Mongo struct {
	URI      string `yaml:"uri" env:"MONGODB_URI" env-default:"mongodb://localhost:27017"`
	Database string `yaml:"database" env:"MONGODB_DATABASE" env-default:"iicpas"`
}

type JWT struct {
	SecretKey string `yaml:"secret_key" env:"JWT_SECRET"`
	ExpiresIn string `yaml:"expires_in" env:"JWT_EXPIRES_IN" env-default:"7d"`
	Issuer    string `yaml:"issuer" env-default:"iicpas"`
}

// TTL parses ExpiresIn. Besides Go durations it accepts a day suffix ("7d").
func (j JWT) TTL() (time.Duration, error) {
	return ParseExpiry(j.ExpiresIn)
}

type Cookie struct {
	Name   string `yaml:"name" env-default:"token"`
	Domain string `yaml:"domain" env:"COOKIE_DOMAIN"`
	Secure bool   `yaml:"secure" env:"COOKIE_SECURE" env-default:"false"`
}

type ES struct {
	Hosts    []string `yaml:"hosts" env:"ELASTIC_HOSTS" env-default:"http://localhost:9200"`
	Index    string   `yaml:"index" env-default:"courses"`
	Password string   `yaml:"password" env:"ELASTIC_PASSWORD"`
}

type Minio struct {
	Endpoint  string                  `yaml:"endpoint" env:"MINIO_ENDPOINT" env-default:"minio:9000"`
	AccessKey string                  `yaml:"access_key" env:"MINIO_ACCESS_KEY"`
	SecretKey string                  `yaml:"secret_key" env:"MINIO_SECRET_KEY"`
	UseSSL    bool                    `yaml:"use_ssl" env:"MINIO_USE_SSL"`
	Buckets   map[string]BucketConfig `yaml:"buckets"`
}

type BucketConfig struct {
	Name       string        `yaml:"name"`
	PresignTTL time.Duration `yaml:"presign_ttl"`
}

const (
	BucketLogos  = "logos"
	BucketProofs = "proofs"
)

// Bucket returns the configured bucket or a default named after the key.
func (m Minio) Bucket(key string) BucketConfig {
	if bc, ok := m.Buckets[key]; ok && bc.Name != "" {
		if bc.PresignTTL == 0 {
			bc.PresignTTL = 15 * time.Minute
		}
		return bc
	}
	return BucketConfig{Name: "iicpas-" + key, PresignTTL: 15 * time.Minute}
}

type Email struct {
	Provider    string `yaml:"provider" env:"EMAIL_PROVIDER" env-default:"console"`
	User        string `yaml:"user" env:"EMAIL_USER"`
	Password    string `yaml:"password" env:"EMAIL_PASS"`
	SMTPHost    string `yaml:"smtp_host" env:"EMAIL_SMTP_HOST" env-default:"smtp.gmail.com"`
	SMTPPort    int    `yaml:"smtp_port" env:"EMAIL_SMTP_PORT" env-default:"587"`
	SendGridKey string `yaml:"sendgrid_key" env:"SENDGRID_API_KEY"`
	FromName    string `yaml:"from_name" env-default:"IICPAS"`
}

type Jobs struct {
	Enabled          bool          `yaml:"enabled" env:"JOBS_ENABLED" env-default:"true"`
	RatingsSchedule  string        `yaml:"ratings_schedule" env-default:"0 3 * * *"`
	IdempotencyEvery string        `yaml:"idempotency_schedule" env-default:"30 * * * *"`
	IdempotencyTTL   time.Duration `yaml:"idempotency_ttl" env-default:"48h"`
}

type Uploads struct {
	MaxLogoBytes  int64 `yaml:"max_logo_bytes" env-default:"2097152"`
	MaxProofBytes int64 `yaml:"max_proof_bytes" env-default:"5242880"`
	// Proof screenshots wider than this are downscaled before encoding.
	ProofMaxWidth int `yaml:"proof_max_width" env-default:"1600"`
}

type Admin struct {
	BootstrapEmail    string `yaml:"bootstrap_email" env:"ADMIN_EMAIL"`
	BootstrapPassword string `yaml:"bootstrap_password" env:"ADMIN_PASSWORD"`
}

func MustLoad() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Can not read .env file: %s", err)
	}

	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("Can not read config from env: %s", err)
		}
	} else {
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			log.Fatalf("Config file not exist: %s", configPath)
		}
		if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
			log.Fatalf("Can not read config file %s", err)
		}
	}

	if origin := os.Getenv("NEXT_PUBLIC_API_URL"); origin != "" && os.Getenv("CORS_ORIGIN") == "" {
		cfg.HTTPServer.AllowOrigin = origin
	}
	if cfg.JWT.SecretKey == "" {
		log.Fatal("JWT_SECRET is not set")
	}
	if _, err := cfg.JWT.TTL(); err != nil {
		log.Fatalf("Invalid JWT_EXPIRES_IN: %s", err)
	}

	return &cfg
}

func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty expiry")
	}
	if strings.HasSuffix(s, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(s, "d"))
		if err != nil || days <= 0 {
			return 0, fmt.Errorf("invalid day expiry %q", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}
	if secs, err := strconv.Atoi(s); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("invalid expiry %q", s)
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid expiry %q", s)
	}
	return d, nil
}
