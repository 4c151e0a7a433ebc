/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package config loads the user configuration: a YAML file in the user scope,
// an optional .env file, IMS_* environment overrides and the Postgres password
// kept in the OS keyring.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
	"gopkg.in/yaml.v3"
)

// config_version: bump when the structure changes in a backward-incompatible way.

type GeneralConfig struct {
	TelemetryOptIn bool `yaml:"telemetry_opt_in"`
}

// CanvasConfig seeds new editor sessions.
type CanvasConfig struct {
	DefaultDevice string `yaml:"default_device"`
	ActiveColor   string `yaml:"active_color"`
	HistoryDepth  int    `yaml:"history_depth"`
}

// PostgresConfig locates the catalog mirror. The password is not stored on
// disk; it lives in the OS keychain.
type PostgresConfig struct {
	// DSN, when set, is used verbatim and the other fields are ignored.
	DSN      string `yaml:"dsn"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int            `yaml:"config_version"`
	General       GeneralConfig  `yaml:"general"`
	Canvas        CanvasConfig   `yaml:"canvas"`
	Postgres      PostgresConfig `yaml:"postgres"`
	Logging       LoggingConfig  `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Canvas:        CanvasConfig{DefaultDevice: "desktop", ActiveColor: "#3b82f6", HistoryDepth: 200},
		Postgres:      PostgresConfig{Host: "localhost", Port: 5432, User: "postgres", Database: "impactstudio", SSLMode: "disable"},
		Logging:       LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigDir      = "IMS_CONFIG_DIR"
	EnvDotEnvFile     = "IMS_ENV_FILE"
	EnvTelemetryOptIn = "IMS_TELEMETRY_OPT_IN"
	EnvDefaultDevice  = "IMS_DEFAULT_DEVICE"
	EnvActiveColor    = "IMS_ACTIVE_COLOR"
	EnvHistoryDepth   = "IMS_HISTORY_DEPTH"
	EnvPGDSN          = "IMS_PG_DSN"
	EnvPGHost         = "IMS_PG_HOST"
	EnvPGPort         = "IMS_PG_PORT"
	EnvPGUser         = "IMS_PG_USER"
	EnvPGDatabase     = "IMS_PG_DATABASE"
	EnvPGPassword     = "IMS_PG_PASSWORD"
	EnvLogLevel       = "IMS_LOG_LEVEL"
	EnvLogFormat      = "IMS_LOG_FORMAT"
	EnvLogSource      = "IMS_LOG_SOURCE"
	EnvLogFile        = "IMS_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService  = "ImpactStudio"
	keyringPassword = "postgres_password"
)

// ConfigPath returns the per-user config file path. IMS_CONFIG_DIR replaces
// the platform config directory.
func ConfigPath() (string, error) {
	base := strings.TrimSpace(os.Getenv(EnvConfigDir))
	if base == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("cannot resolve config directory: %w", err)
		}
		base = filepath.Join(dir, "impactstudio")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// LoadDotEnv loads KEY=VALUE pairs from the file named by IMS_ENV_FILE, or
// ./.env, into the process environment. Variables already set win. A missing
// default file is not an error.
func LoadDotEnv() error {
	p := strings.TrimSpace(os.Getenv(EnvDotEnvFile))
	explicit := p != ""
	if !explicit {
		p = ".env"
	}
	if _, err := os.Stat(p); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("env file: %w", err)
	}
	if err := godotenv.Load(p); err != nil {
		return fmt.Errorf("load %s: %w", p, err)
	}
	return nil
}

// Load reads .env and the user config file (if present), applies defaults and
// merges environment overrides. The Postgres password is read from the
// environment or the keyring and returned separately.
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	if err := LoadDotEnv(); err != nil {
		return cfg, "", err
	}
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return cfg, "", fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	}
	applyEnvOverrides(&cfg)

	pw := os.Getenv(EnvPGPassword)
	if pw == "" {
		pw, _ = keyring.Get(keyringService, keyringPassword)
	}
	return cfg, pw, nil
}

// Save writes the user config YAML and persists the password into the OS
// keyring (if non-empty).
func Save(cfg AppConfig, password string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if password != "" {
		if err := keyring.Set(keyringService, keyringPassword, password); err != nil {
			return fmt.Errorf("store password: %w", err)
		}
	}
	return nil
}

// ForgetPassword removes the stored Postgres password. A missing entry is not an error.
func ForgetPassword() error {
	if err := keyring.Delete(keyringService, keyringPassword); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

// ConnString builds the Postgres connection string, inserting password when the
// config does not carry a verbatim DSN.
func (p PostgresConfig) ConnString(password string) string {
	if strings.TrimSpace(p.DSN) != "" {
		return p.DSN
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", p.Host, p.Port),
		Path:   "/" + p.Database,
	}
	if password != "" {
		u.User = url.UserPassword(p.User, password)
	} else if p.User != "" {
		u.User = url.User(p.User)
	}
	if p.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {p.SSLMode}}.Encode()
	}
	return u.String()
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	// booleans: copy directly from src (file) so user preferences persist
	dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	if s := strings.ToLower(strings.TrimSpace(src.Canvas.DefaultDevice)); s != "" {
		dst.Canvas.DefaultDevice = s
	}
	if s := strings.TrimSpace(src.Canvas.ActiveColor); s != "" {
		dst.Canvas.ActiveColor = s
	}
	if src.Canvas.HistoryDepth > 0 {
		dst.Canvas.HistoryDepth = src.Canvas.HistoryDepth
	}
	// postgres
	if s := strings.TrimSpace(src.Postgres.DSN); s != "" {
		dst.Postgres.DSN = s
	}
	if s := strings.TrimSpace(src.Postgres.Host); s != "" {
		dst.Postgres.Host = s
	}
	if src.Postgres.Port != 0 {
		dst.Postgres.Port = src.Postgres.Port
	}
	if s := strings.TrimSpace(src.Postgres.User); s != "" {
		dst.Postgres.User = s
	}
	if s := strings.TrimSpace(src.Postgres.Database); s != "" {
		dst.Postgres.Database = s
	}
	if s := strings.TrimSpace(src.Postgres.SSLMode); s != "" {
		dst.Postgres.SSLMode = s
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	str := func(key string, dst *string, lower bool) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if lower {
				v = strings.ToLower(v)
			}
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*dst = n
			}
		}
	}
	if v := os.Getenv(EnvTelemetryOptIn); strings.TrimSpace(v) != "" {
		cfg.General.TelemetryOptIn = parseBool(v)
	}
	str(EnvDefaultDevice, &cfg.Canvas.DefaultDevice, true)
	str(EnvActiveColor, &cfg.Canvas.ActiveColor, false)
	num(EnvHistoryDepth, &cfg.Canvas.HistoryDepth)

	str(EnvPGDSN, &cfg.Postgres.DSN, false)
	str(EnvPGHost, &cfg.Postgres.Host, false)
	num(EnvPGPort, &cfg.Postgres.Port)
	str(EnvPGUser, &cfg.Postgres.User, false)
	str(EnvPGDatabase, &cfg.Postgres.Database, false)

	// logging overrides
	str(EnvLogLevel, &cfg.Logging.Level, true)
	str(EnvLogFormat, &cfg.Logging.Format, true)
	if v := os.Getenv(EnvLogSource); strings.TrimSpace(v) != "" {
		cfg.Logging.Source = parseBool(v)
	}
	str(EnvLogFile, &cfg.Logging.File, false)
}

var overrideKeys = map[string]string{
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"canvas.default_device":    EnvDefaultDevice,
	"canvas.active_color":      EnvActiveColor,
	"canvas.history_depth":     EnvHistoryDepth,
	"postgres.dsn":             EnvPGDSN,
	"postgres.host":            EnvPGHost,
	"postgres.port":            EnvPGPort,
	"postgres.user":            EnvPGUser,
	"postgres.database":        EnvPGDatabase,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := overrideKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
