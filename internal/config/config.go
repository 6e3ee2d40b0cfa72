// Copyright 2026 Conductor OSS
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.

// Package config loads CLI configuration from flags, DOCX2MD_* environment
// variables and an optional docx2md.yaml file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/nicholasgasior/docx2md"
	"github.com/nicholasgasior/docx2md/delivery"
)

// Keys shared by flags, environment variables and the config file.
const (
	KeyImageMode   = "image-mode"
	KeyOutputDir   = "output-dir"
	KeyDownloadDir = "download-dir"
	KeyFrontMatter = "front-matter"
	KeyNoPrompt    = "no-prompt"
	KeyLogLevel    = "log-level"
	KeyLogFile     = "log-file"
)

// EnvPrefix prefixes every environment variable, e.g. DOCX2MD_IMAGE_MODE.
const EnvPrefix = "DOCX2MD"

// Config holds all configuration values.
type Config struct {
	ImageMode docx2md.ImageMode
	// OutputDir is where the save prompt suggests writing the archive.
	OutputDir string
	// DownloadDir receives archives when direct save is unavailable.
	DownloadDir string
	FrontMatter bool
	NoPrompt    bool

	LogLevel slog.Level
	LogFile  string
}

// NewViper returns a viper instance with defaults, environment binding and,
// when found, the config file loaded. cfgFile overrides the search path.
func NewViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(KeyImageMode, string(docx2md.ImageSeparate))
	v.SetDefault(KeyOutputDir, ".")
	v.SetDefault(KeyDownloadDir, "")
	v.SetDefault(KeyFrontMatter, false)
	v.SetDefault(KeyNoPrompt, false)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("docx2md")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "docx2md"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	return v, nil
}

// Load reads and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	mode, err := docx2md.ParseImageMode(v.GetString(KeyImageMode))
	if err != nil {
		return Config{}, err
	}
	level, err := parseLogLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		ImageMode:   mode,
		OutputDir:   v.GetString(KeyOutputDir),
		DownloadDir: v.GetString(KeyDownloadDir),
		FrontMatter: v.GetBool(KeyFrontMatter),
		NoPrompt:    v.GetBool(KeyNoPrompt),
		LogLevel:    level,
		LogFile:     v.GetString(KeyLogFile),
	}
	if cfg.DownloadDir == "" {
		cfg.DownloadDir = delivery.DefaultDownloadDir()
	}
	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug, nil
	case "INFO", "":
		return slog.LevelInfo, nil
	case "WARN", "WARNING":
		return slog.LevelWarn, nil
	case "ERROR":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
