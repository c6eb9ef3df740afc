package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/searchforge/booksearch/internal/contract"
	"github.com/searchforge/booksearch/internal/request"
)

const (
	defaultPort      = 7070
	defaultLogLevel  = "info"
	defaultLogFormat = "console"
)

// Config is the host configuration: plugin-style settings plus the knobs the
// serve command needs.
type Config struct {
	Settings    contract.Settings
	Port        int
	Timeout     time.Duration
	CORSOrigins []string
	LogLevel    string
	LogFormat   string
	LogFile     string
}

// Load layers defaults, an optional YAML settings file, and the environment,
// in that order. An empty settingsPath falls back to BOOKSEARCH_SETTINGS.
func Load(settingsPath string) (Config, error) {
	cfg := Config{
		Settings: contract.Settings{
			APIURL:   request.DefaultAPIURL,
			ProxyURL: request.DefaultProxyURL,
		},
		Port:      defaultPort,
		Timeout:   request.DefaultTimeout,
		LogLevel:  defaultLogLevel,
		LogFormat: defaultLogFormat,
	}

	if settingsPath == "" {
		settingsPath = getEnvStr("BOOKSEARCH_SETTINGS", "")
	}
	if settingsPath != "" {
		fileSettings, err := LoadSettingsFile(settingsPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Settings = merge(cfg.Settings, fileSettings)
	}

	cfg.Settings.APIURL = getEnvStr("BOOKSEARCH_API_URL", cfg.Settings.APIURL)
	cfg.Settings.ProxyURL = getEnvStr("BOOKSEARCH_PROXY_URL", cfg.Settings.ProxyURL)
	cfg.Settings.UseProxy = getEnvBool("BOOKSEARCH_USE_PROXY", cfg.Settings.UseProxy)

	cfg.Port = getEnvInt("PORT", cfg.Port)
	cfg.Timeout = time.Duration(getEnvInt("TIMEOUT_MS", int(cfg.Timeout.Milliseconds()))) * time.Millisecond
	cfg.CORSOrigins = splitList(getEnvStr("CORS_ORIGINS", ""))
	cfg.LogLevel = getEnvStr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvStr("LOG_FORMAT", cfg.LogFormat)
	cfg.LogFile = getEnvStr("LOG_FILE", cfg.LogFile)

	return cfg, nil
}

// LoadSettingsFile reads plugin settings from YAML. JSON files parse too,
// since JSON is a subset of YAML.
func LoadSettingsFile(path string) (contract.Settings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return contract.Settings{}, fmt.Errorf("read settings: %w", err)
	}
	var settings contract.Settings
	if err := yaml.Unmarshal(raw, &settings); err != nil {
		return contract.Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return settings, nil
}

func merge(base, override contract.Settings) contract.Settings {
	if override.APIURL != "" {
		base.APIURL = override.APIURL
	}
	if override.ProxyURL != "" {
		base.ProxyURL = override.ProxyURL
	}
	if override.UseProxy {
		base.UseProxy = true
	}
	if len(override.UnsafeDebugHeaders) > 0 {
		base.UnsafeDebugHeaders = override.UnsafeDebugHeaders
	}
	return base
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvStr(key string, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
