package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Server Server `yaml:"server"`

	Database Database `yaml:"database"`

	JWT JWT `yaml:"jwt"`

	SMTP SMTP `yaml:"smtp"`

	Assets Assets `yaml:"assets"`

	Reservations Reservations `yaml:"reservations"`

	Log Log `yaml:"log"`
}

type Server struct {
	Address string `yaml:"address"`
	Mode    string `yaml:"mode"`
	// Timezone used for calendar-date comparisons (check-in gating).
	// Empty means the process-local zone.
	Timezone string `yaml:"timezone"`
}

// JWT holds token signing configuration. Access and refresh tokens are
// signed with independent secrets so compromise of one class does not
// forge the other.
type JWT struct {
	AccessSecret     string `yaml:"access_secret"`
	RefreshSecret    string `yaml:"refresh_secret"`
	AccessExpiresIn  int    `yaml:"access_expires_in"`  // hours
	RefreshExpiresIn int    `yaml:"refresh_expires_in"` // hours
}

type Database struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// SMTP may be left empty; dispatch then reports failure instead of
// crashing.
type SMTP struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type Assets struct {
	Dir     string `yaml:"dir"`
	BaseURL string `yaml:"base_url"`
}

type Reservations struct {
	// AllowTerminalDelete permits deleting cancelled/completed
	// reservations. Off by default to keep them for audit.
	AllowTerminalDelete bool `yaml:"allow_terminal_delete"`
	// ReconcileInterval in minutes between sweeps that repair
	// reservations left without a QR payload or an unsent confirmation
	// email. Zero disables the sweep.
	ReconcileInterval int `yaml:"reconcile_interval"`
}

type Log struct {
	Level string `yaml:"level"`
}

func Load() (*Config, error) {
	// A missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	configPath := "configs/development.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}

	f, err := os.Open(configPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return &cfg, nil
}

// applyEnv lets secrets and credentials come from the environment so they
// stay out of checked-in config files.
func (c *Config) applyEnv() {
	if v := os.Getenv("JWT_ACCESS_SECRET"); v != "" {
		c.JWT.AccessSecret = v
	}
	if v := os.Getenv("JWT_REFRESH_SECRET"); v != "" {
		c.JWT.RefreshSecret = v
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		c.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		c.SMTP.Password = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		c.Database.Password = v
	}
}

func (c *Config) applyDefaults() {
	if c.JWT.AccessExpiresIn == 0 {
		c.JWT.AccessExpiresIn = 8
	}
	if c.JWT.RefreshExpiresIn == 0 {
		c.JWT.RefreshExpiresIn = 24 * 7
	}
	if c.Assets.Dir == "" {
		c.Assets.Dir = "images"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Location resolves the configured timezone, falling back to the process
// local zone when unset.
func (s Server) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(s.Timezone)
}
