// Package config reads the server settings from the environment.
//
// Values come from FEATURE_MCP_* variables. An optional dotenv file
// (FEATURE_MCP_ENV_FILE, default ".env") is loaded first; variables already
// set in the process environment win over the file.
package config

import (
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Environment variable names.
const (
	EnvFile           = "FEATURE_MCP_ENV_FILE"
	EnvLogLevel       = "FEATURE_MCP_LOG_LEVEL"
	EnvScanWorkers    = "FEATURE_MCP_SCAN_WORKERS"
	EnvMemoBytes      = "FEATURE_MCP_MEMO_BYTES"
	EnvMaxScanResults = "FEATURE_MCP_MAX_SCAN_RESULTS"
	EnvOCRLanguage    = "FEATURE_MCP_OCR_LANG"
	EnvTextLocator    = "FEATURE_MCP_TEXT_LOCATOR"
)

// Text locator backends.
const (
	LocatorEdge = "edge"
	LocatorOCR  = "ocr"
)

// Config holds the server settings.
type Config struct {
	LogLevel       logrus.Level
	ScanWorkers    int   // extractor trees per scan
	MemoBytes      int64 // default memo extractor budget
	MaxScanResults int   // patches returned by one feature_scan call
	OCRLanguage    string
	TextLocator    string // LocatorEdge or LocatorOCR
}

// Load reads the dotenv file, if any, and then the environment.
func Load() (*Config, error) {
	path := getEnv(EnvFile, ".env")
	if _, err := os.Stat(path); err == nil {
		if err := godotenv.Load(path); err != nil {
			return nil, errors.Wrapf(err, "load %s", path)
		}
	}
	return FromEnv()
}

// Default returns the settings used when nothing is configured.
func Default() *Config {
	return &Config{
		LogLevel:       logrus.InfoLevel,
		ScanWorkers:    runtime.NumCPU(),
		MemoBytes:      16 << 20,
		MaxScanResults: 10000,
		OCRLanguage:    "eng",
		TextLocator:    LocatorEdge,
	}
}

// FromEnv builds a Config from the process environment alone.
func FromEnv() (*Config, error) {
	def := Default()
	level, err := logrus.ParseLevel(getEnv(EnvLogLevel, def.LogLevel.String()))
	if err != nil {
		return nil, errors.Wrap(err, EnvLogLevel)
	}

	cfg := &Config{
		LogLevel:       level,
		ScanWorkers:    getEnvAsInt(EnvScanWorkers, def.ScanWorkers),
		MemoBytes:      getEnvAsInt64(EnvMemoBytes, def.MemoBytes),
		MaxScanResults: getEnvAsInt(EnvMaxScanResults, def.MaxScanResults),
		OCRLanguage:    getEnv(EnvOCRLanguage, def.OCRLanguage),
		TextLocator:    strings.ToLower(getEnv(EnvTextLocator, def.TextLocator)),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.ScanWorkers <= 0 {
		return errors.Errorf("%s must be positive, got %d", EnvScanWorkers, c.ScanWorkers)
	}
	if c.MemoBytes <= 0 {
		return errors.Errorf("%s must be positive, got %d", EnvMemoBytes, c.MemoBytes)
	}
	if c.MaxScanResults <= 0 {
		return errors.Errorf("%s must be positive, got %d", EnvMaxScanResults, c.MaxScanResults)
	}
	switch c.TextLocator {
	case LocatorEdge, LocatorOCR:
	default:
		return errors.Errorf("%s: unknown locator %q", EnvTextLocator, c.TextLocator)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
