package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath       = "triage.yaml"
	DefaultBackendURL = "http://localhost:8080"
)

// Config is the on-disk configuration shared by the triage client and the
// triaged backend.
type Config struct {
	Client ClientConfig `yaml:"client"`
	Server ServerConfig `yaml:"server"`
}

// ClientConfig configures the terminal client.
type ClientConfig struct {
	BackendURL     string        `yaml:"backend_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	UI             string        `yaml:"ui"` // bubbletea or classic
	LogFile        string        `yaml:"log_file"`
	Debug          bool          `yaml:"debug"`
}

// ServerConfig configures the triaged backend.
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	AllowOrigin  string        `yaml:"allow_origin"`
	Database     string        `yaml:"database"`
	FiltersFile  string        `yaml:"filters_file"`
	FetchLimit   int           `yaml:"fetch_limit"`
	FetchWorkers int           `yaml:"fetch_workers"`
	PollInterval time.Duration `yaml:"poll_interval"`
	LogFile      string        `yaml:"log_file"`
	Debug        bool          `yaml:"debug"`

	Source SourceConfig `yaml:"source"`
	SMTP   SMTPConfig   `yaml:"smtp"`
	LLM    LLMConfig    `yaml:"llm"`
}

// SourceConfig selects where triaged reads mail from.
type SourceConfig struct {
	Kind        string `yaml:"kind"` // gmail, file or none
	Credentials string `yaml:"credentials"`
	Token       string `yaml:"token"`
	Query       string `yaml:"query"`
	File        string `yaml:"file"`
}

// SMTPConfig enables SMTP delivery when Host is set; otherwise replies go
// out through the Gmail source.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

// LLMConfig selects the reply generator.
type LLMConfig struct {
	Provider    string        `yaml:"provider"` // ollama or bedrock
	Endpoint    string        `yaml:"endpoint"`
	Model       string        `yaml:"model"`
	Region      string        `yaml:"region"`
	Timeout     time.Duration `yaml:"timeout"`
	ReplyPrompt string        `yaml:"reply_prompt"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Client: ClientConfig{
			BackendURL:     DefaultBackendURL,
			RequestTimeout: 30 * time.Second,
			UI:             "bubbletea",
			LogFile:        "triage.log",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			AllowOrigin:  "http://localhost:3000",
			Database:     "triage.db",
			FiltersFile:  "filters.json",
			FetchLimit:   10,
			FetchWorkers: 5,
			Source: SourceConfig{
				Kind:        "gmail",
				Credentials: "credentials.json",
				Token:       "token.json",
				Query:       "in:inbox -in:draft",
			},
			SMTP: SMTPConfig{Port: 587},
			LLM: LLMConfig{
				Provider: "ollama",
				Endpoint: "http://localhost:11434/api/generate",
				Model:    "llama3.2",
				Timeout:  60 * time.Second,
			},
		},
	}
}

// Load reads path on top of the defaults, then applies .env and environment
// overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	// .env is optional; variables already in the environment win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.Client.BackendURL, "TRIAGE_BACKEND_URL")
	setString(&cfg.Client.UI, "TRIAGE_UI")
	setString(&cfg.Client.LogFile, "TRIAGE_LOG_FILE")
	setString(&cfg.Server.Addr, "TRIAGE_ADDR")
	setString(&cfg.Server.Database, "TRIAGE_DATABASE")
	setString(&cfg.Server.Source.Kind, "TRIAGE_SOURCE")
	setString(&cfg.Server.Source.File, "TRIAGE_SOURCE_FILE")
	setString(&cfg.Server.SMTP.Host, "TRIAGE_SMTP_HOST")
	setString(&cfg.Server.SMTP.Username, "TRIAGE_SMTP_USERNAME")
	setString(&cfg.Server.SMTP.Password, "TRIAGE_SMTP_PASSWORD")
	setString(&cfg.Server.SMTP.From, "TRIAGE_SMTP_FROM")
	setString(&cfg.Server.LLM.Provider, "TRIAGE_LLM_PROVIDER")
	setString(&cfg.Server.LLM.Endpoint, "TRIAGE_LLM_ENDPOINT")
	setString(&cfg.Server.LLM.Model, "TRIAGE_LLM_MODEL")
	setString(&cfg.Server.LLM.Region, "TRIAGE_LLM_REGION")

	if v := os.Getenv("TRIAGE_REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid TRIAGE_REQUEST_TIMEOUT: %w", err)
		}
		cfg.Client.RequestTimeout = d
	}
	if v := os.Getenv("TRIAGE_FETCH_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TRIAGE_FETCH_LIMIT: %w", err)
		}
		cfg.Server.FetchLimit = n
	}
	if v := os.Getenv("TRIAGE_SMTP_PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid TRIAGE_SMTP_PORT: %w", err)
		}
		cfg.Server.SMTP.Port = n
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		*dst = strings.TrimSpace(v)
	}
}

// Validate checks enumerations and numeric ranges.
func (c *Config) Validate() error {
	switch c.Client.UI {
	case "bubbletea", "classic":
	default:
		return fmt.Errorf("client.ui must be bubbletea or classic, got %q", c.Client.UI)
	}
	if c.Client.RequestTimeout < 0 {
		return fmt.Errorf("client.request_timeout must not be negative")
	}
	switch c.Server.Source.Kind {
	case "gmail", "file", "none":
	default:
		return fmt.Errorf("server.source.kind must be gmail, file or none, got %q", c.Server.Source.Kind)
	}
	if c.Server.Source.Kind == "file" && c.Server.Source.File == "" {
		return fmt.Errorf("server.source.file is required for the file source")
	}
	switch c.Server.LLM.Provider {
	case "ollama", "bedrock":
	default:
		return fmt.Errorf("server.llm.provider must be ollama or bedrock, got %q", c.Server.LLM.Provider)
	}
	if c.Server.FetchLimit <= 0 {
		return fmt.Errorf("server.fetch_limit must be positive")
	}
	if c.Server.FetchWorkers <= 0 {
		c.Server.FetchWorkers = 1
	}
	if c.Server.PollInterval < 0 {
		return fmt.Errorf("server.poll_interval must not be negative")
	}
	return nil
}
