// Package config handles loading and parsing application configuration.
// It supports two sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//
// A .env file in the working directory, when present, is loaded into the
// process environment first, so every env:"..." override below can also
// live there.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-required:"true" validate:"oneof=dev staging prod"`

	HTTPServer `yaml:"http_server"`

	Sources Sources `yaml:"sources"`
	Search  Search  `yaml:"search"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:8082".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-required:"true" validate:"required"`
}

// Sources names where each collection is loaded from at startup.
// The defaults are the endpoints the directory has always used.
type Sources struct {
	// StudentsPath is the local roster: an http(s) URL, a JSON file shaped
	// {"data": [...]}, or a SQLite database (.db, .sqlite, .sqlite3).
	StudentsPath string `yaml:"students_path" env:"STUDENTS_PATH" env-default:"data/data_of_student.txt" validate:"required"`

	// StudentsTable is read when StudentsPath is a SQLite database.
	StudentsTable string `yaml:"students_table" env:"STUDENTS_TABLE" env-default:"students" validate:"required,max=64"`

	HRURL       string `yaml:"hr_url" env:"HR_URL" env-default:"https://server.ltsu.in/api/hr/data/getall" validate:"required,url"`
	SessionsURL string `yaml:"sessions_url" env:"SESSIONS_URL" env-default:"https://server.ltsu.in/api/student/session/all?college_id=1111000&department_id=18&class_id=47" validate:"required,url"`

	// Timeout bounds a single fetch. Loads are never retried.
	Timeout time.Duration `yaml:"timeout" env:"SOURCES_TIMEOUT" env-default:"15s" validate:"gt=0"`
}

// Search tunes the match engine and the live search sessions.
type Search struct {
	MinQueryLength  int `yaml:"min_query_length" env:"SEARCH_MIN_QUERY_LENGTH" env-default:"2" validate:"gte=1"`
	EmployeeLimit   int `yaml:"employee_limit" env:"SEARCH_EMPLOYEE_LIMIT" env-default:"5" validate:"gte=1"`
	SessionLimit    int `yaml:"session_limit" env:"SEARCH_SESSION_LIMIT" env-default:"10" validate:"gte=1"`
	SuggestionLimit int `yaml:"suggestion_limit" env:"SEARCH_SUGGESTION_LIMIT" env-default:"10" validate:"gte=1"`

	// Delay is the minimum latency a live session waits before publishing
	// a result.
	Delay time.Duration `yaml:"delay" env:"SEARCH_DELAY" env-default:"300ms" validate:"gte=0"`

	// LiveMaxOpen caps the open live sessions; LiveIdleTTL closes the ones
	// nobody has submitted to or polled for that long.
	LiveMaxOpen int           `yaml:"live_max_open" env:"SEARCH_LIVE_MAX_OPEN" env-default:"1000" validate:"gte=1"`
	LiveIdleTTL time.Duration `yaml:"live_idle_ttl" env:"SEARCH_LIVE_IDLE_TTL" env-default:"10m" validate:"gt=0"`
}

// MustLoad reads, validates, and returns the application config.
// Any failure is fatal: if this function returns, the config is valid.
func MustLoad() *Config {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")

	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	if configPath == "" {
		log.Fatal("config path is not set: use --config flag or CONFIG_PATH env var")
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}

	return cfg
}

// Load reads the YAML file at path, applies env overrides and defaults,
// and validates the result.
func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	var cfg Config
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: read: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config.Load: validate: %w", err)
	}

	return &cfg, nil
}
