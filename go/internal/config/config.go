// Package config assembles process configuration from code defaults, an
// optional YAML file and environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/mcdev12/survivor/go/internal/dbconfig"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverMemory    = "memory"
	DriverPostgres  = "postgres"
	DriverFirestore = "firestore"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Database  dbconfig.Config `yaml:"database"`
	Feed      FeedConfig      `yaml:"feed"`
	Identity  IdentityConfig  `yaml:"identity"`
	Mail      MailConfig      `yaml:"mail"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	NATS      NATSConfig      `yaml:"nats"`
	LogLevel  string          `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat string          `yaml:"log_format" env:"LOG_FORMAT"`
}

type ServerConfig struct {
	Port           string        `yaml:"port" env:"PORT"`
	AllowedOrigins []string      `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"SERVER_READ_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"SERVER_WRITE_TIMEOUT"`
}

type StoreConfig struct {
	Driver             string `yaml:"driver" env:"STORE_DRIVER"`
	FirestoreProjectID string `yaml:"firestore_project_id" env:"FIRESTORE_PROJECT_ID"`
}

type FeedConfig struct {
	BaseURL           string `yaml:"base_url" env:"FOOTBALL_DATA_BASE_URL"`
	APIKey            string `yaml:"api_key" env:"FOOTBALL_DATA_API_KEY"`
	Competition       string `yaml:"competition" env:"FOOTBALL_DATA_COMPETITION"`
	RequestsPerMinute int    `yaml:"requests_per_minute" env:"FOOTBALL_DATA_REQUESTS_PER_MINUTE"`
}

type IdentityConfig struct {
	ProjectID string `yaml:"project_id" env:"FIREBASE_PROJECT_ID"`
	APIKey    string `yaml:"api_key" env:"FIREBASE_API_KEY"`
	Disabled  bool   `yaml:"disabled" env:"AUTH_DISABLED"`
}

type MailConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT"`
	Username string `yaml:"username" env:"SMTP_USERNAME"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"EMAIL_FROM"`
}

type ScheduleConfig struct {
	TimeZone    string `yaml:"time_zone" env:"SCHEDULE_TIME_ZONE"`
	RemindersAt string `yaml:"reminders_at" env:"SCHEDULE_REMINDERS_AT"`
	ResultsAt   string `yaml:"results_at" env:"SCHEDULE_RESULTS_AT"`
	FrontEndURL string `yaml:"front_end_url" env:"FRONT_END_WEBSITE_URL"`
}

type NATSConfig struct {
	URL           string `yaml:"url" env:"NATS_URL"`
	StreamName    string `yaml:"stream_name" env:"NATS_STREAM"`
	SubjectPrefix string `yaml:"subject_prefix" env:"NATS_SUBJECT_PREFIX"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"*"},
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   30 * time.Second,
		},
		Store:    StoreConfig{Driver: DriverMemory},
		Database: dbconfig.Defaults(),
		Feed: FeedConfig{
			BaseURL:           "https://api.football-data.org/v4",
			Competition:       "PL",
			RequestsPerMinute: 10,
		},
		Mail: MailConfig{Port: 587, From: "no-reply@survivor.local"},
		Schedule: ScheduleConfig{
			TimeZone:    "America/New_York",
			RemindersAt: "00:01",
			ResultsAt:   "00:00",
			FrontEndURL: "http://localhost:3000",
		},
		NATS: NATSConfig{
			StreamName:    "LEAGUE_EVENTS",
			SubjectPrefix: "league.events",
		},
		LogLevel:  "info",
		LogFormat: "console",
	}
}

// Load builds the configuration. path may be empty.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}
	if err := ParseEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the process cannot start with.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case DriverMemory, DriverPostgres:
	case DriverFirestore:
		if c.Store.FirestoreProjectID == "" {
			errs = append(errs, errors.New("store.firestore_project_id is required for the firestore driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if _, err := time.LoadLocation(c.Schedule.TimeZone); err != nil {
		errs = append(errs, fmt.Errorf("invalid schedule.time_zone: %w", err))
	}
	for name, v := range map[string]string{"reminders_at": c.Schedule.RemindersAt, "results_at": c.Schedule.ResultsAt} {
		if _, _, err := ParseClock(v); err != nil {
			errs = append(errs, fmt.Errorf("invalid schedule.%s: %w", name, err))
		}
	}
	if c.Feed.RequestsPerMinute <= 0 {
		errs = append(errs, errors.New("feed.requests_per_minute must be positive"))
	}
	if !c.Identity.Disabled && c.Identity.ProjectID == "" {
		errs = append(errs, errors.New("identity.project_id is required unless AUTH_DISABLED is set"))
	}
	return errors.Join(errs...)
}

// Location returns the schedule time zone. Validate guarantees it loads.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Schedule.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ParseClock parses a 24h "HH:MM" wall clock time.
func ParseClock(s string) (hour, minute int, err error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	return t.Hour(), t.Minute(), nil
}
