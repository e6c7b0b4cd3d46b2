/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
	"layerdraw/internal/domain"
	applog "layerdraw/internal/log"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type CanvasConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type ExportConfig struct {
	Dir    string `yaml:"dir"`    // empty: <drawing>/exports
	Stem   string `yaml:"stem"`   // filename without extension
	Format string `yaml:"format"` // "svg" | "pdf"
}

type StrokeConfig struct {
	Color string  `yaml:"color"`
	Width float64 `yaml:"width"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Canvas        CanvasConfig  `yaml:"canvas"`
	Export        ExportConfig  `yaml:"export"`
	Stroke        StrokeConfig  `yaml:"stroke"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Canvas:        CanvasConfig{Width: 800, Height: 600},
		Export:        ExportConfig{Dir: "", Stem: "layered-drawing", Format: "svg"},
		Stroke:        StrokeConfig{Color: "#000000", Width: 2},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvConfigFile   = "LDR_CONFIG"
	EnvCanvasWidth  = "LDR_CANVAS_WIDTH"
	EnvCanvasHeight = "LDR_CANVAS_HEIGHT"
	EnvExportDir    = "LDR_EXPORT_DIR"
	EnvExportStem   = "LDR_EXPORT_STEM"
	EnvExportFormat = "LDR_EXPORT_FORMAT"
	EnvStrokeColor  = "LDR_STROKE_COLOR"
	EnvStrokeWidth  = "LDR_STROKE_WIDTH"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "LDR_LOG_LEVEL"
	EnvLogFormat = "LDR_LOG_FORMAT"
	EnvLogSource = "LDR_LOG_SOURCE"
	EnvLogFile   = "LDR_LOG_FILE"
)

// ConfigPath returns the per-user config file path. LDR_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigFile)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "LayerDraw")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "LayerDraw")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "layerdraw")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults and merges environment overrides.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, err
	}
	return LoadFrom(path)
}

// LoadFrom is Load with an explicit file path. A missing file is not an error;
// a file that is not valid YAML is.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML to ConfigPath.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

func SaveTo(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// Validate reports values the drawing core would reject.
func (c AppConfig) Validate() error {
	var errs []error
	if c.Canvas.Width <= 0 || c.Canvas.Height <= 0 {
		errs = append(errs, fmt.Errorf("canvas size must be positive, got %gx%g", c.Canvas.Width, c.Canvas.Height))
	}
	if _, err := domain.ParseHexColor(c.Stroke.Color); err != nil {
		errs = append(errs, fmt.Errorf("stroke.color: %w", err))
	}
	if c.Stroke.Width <= 0 {
		errs = append(errs, fmt.Errorf("stroke.width must be positive, got %g", c.Stroke.Width))
	}
	if _, err := domain.ParseFormat(c.Export.Format); err != nil {
		errs = append(errs, fmt.Errorf("export.format: %w", err))
	}
	return errors.Join(errs...)
}

// LogOptions maps the logging section onto logger options.
func (c AppConfig) LogOptions() applog.Options {
	return applog.Options{
		Level:     c.Logging.Level,
		Format:    c.Logging.Format,
		AddSource: c.Logging.Source,
		File:      c.Logging.File,
	}
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if src.Canvas.Width != 0 {
		dst.Canvas.Width = src.Canvas.Width
	}
	if src.Canvas.Height != 0 {
		dst.Canvas.Height = src.Canvas.Height
	}
	if strings.TrimSpace(src.Export.Dir) != "" {
		dst.Export.Dir = strings.TrimSpace(src.Export.Dir)
	}
	if strings.TrimSpace(src.Export.Stem) != "" {
		dst.Export.Stem = strings.TrimSpace(src.Export.Stem)
	}
	if strings.TrimSpace(src.Export.Format) != "" {
		dst.Export.Format = strings.ToLower(strings.TrimSpace(src.Export.Format))
	}
	if strings.TrimSpace(src.Stroke.Color) != "" {
		dst.Stroke.Color = strings.TrimSpace(src.Stroke.Color)
	}
	if src.Stroke.Width != 0 {
		dst.Stroke.Width = src.Stroke.Width
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

func applyEnvOverrides(cfg *AppConfig) {
	envFloat(EnvCanvasWidth, &cfg.Canvas.Width)
	envFloat(EnvCanvasHeight, &cfg.Canvas.Height)
	if v := strings.TrimSpace(os.Getenv(EnvExportDir)); v != "" {
		cfg.Export.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportStem)); v != "" {
		cfg.Export.Stem = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvExportFormat)); v != "" {
		cfg.Export.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStrokeColor)); v != "" {
		cfg.Stroke.Color = v
	}
	envFloat(EnvStrokeWidth, &cfg.Stroke.Width)
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		lv := strings.ToLower(v)
		cfg.Logging.Source = lv == "1" || lv == "true" || lv == "on" || lv == "yes"
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// envFloat overwrites *dst when key holds a parseable number; junk is ignored.
func envFloat(key string, dst *float64) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

var overrideEnv = map[string]string{
	"canvas.width":   EnvCanvasWidth,
	"canvas.height":  EnvCanvasHeight,
	"export.dir":     EnvExportDir,
	"export.stem":    EnvExportStem,
	"export.format":  EnvExportFormat,
	"stroke.color":   EnvStrokeColor,
	"stroke.width":   EnvStrokeWidth,
	"logging.level":  EnvLogLevel,
	"logging.format": EnvLogFormat,
	"logging.source": EnvLogSource,
	"logging.file":   EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := overrideEnv[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}
