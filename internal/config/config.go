package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

type Config struct {
	Language          string `json:"language"`
	ClientSecretsPath string `json:"client_secrets_path"`
	TokenPath         string `json:"token_path"`
	NoBrowser         bool   `json:"no_browser,omitempty"`
	PathFile          string `json:"path_file"`
}

const (
	configDirName = ".mateform"
	configFile    = "config.json"

	defaultLang          = LangEN
	defaultSecretsFile   = "client_secrets.json"
	defaultTokenFile     = "token.json"
	defaultDirPermission = 0700
)

// LoadConfig reads the configuration. path is either a .json file or a home
// directory, in which case ~/.mateform/config.json is used and created with
// defaults when missing.
func LoadConfig(path string) (*Config, error) {
	var configPath string

	if filepath.Ext(path) == ".json" {
		configPath = path
	} else {
		if path == "" {
			return nil, errors.New("home directory is not set")
		}
		configDir := filepath.Join(path, configDirName)
		configPath = filepath.Join(configDir, configFile)

		if err := os.MkdirAll(configDir, defaultDirPermission); err != nil {
			return nil, fmt.Errorf("error creating configuration directory: %w", err)
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return createDefaultConfig(configPath)
	} else if err != nil {
		return nil, fmt.Errorf("error checking configuration file: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading configuration file: %w", err)
	}

	var config Config
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("error decoding configuration JSON: %w", err)
	}
	config.PathFile = configPath

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("loaded configuration is invalid: %w", err)
	}

	return &config, nil
}

func createDefaultConfig(path string) (*Config, error) {
	dir := filepath.Dir(path)
	config := &Config{
		Language:          defaultLang,
		ClientSecretsPath: filepath.Join(dir, defaultSecretsFile),
		TokenPath:         filepath.Join(dir, defaultTokenFile),
		PathFile:          path,
	}

	if err := os.MkdirAll(dir, defaultDirPermission); err != nil {
		return nil, fmt.Errorf("error creating configuration directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding default configuration: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("error saving default configuration: %w", err)
	}

	return config, nil
}

func SaveConfig(config *Config) error {
	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration to save is invalid: %w", err)
	}

	if config.PathFile == "" {
		return errors.New("configuration file path is not defined")
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("error encoding configuration: %w", err)
	}

	if err := os.WriteFile(config.PathFile, data, 0644); err != nil {
		return fmt.Errorf("error saving configuration: %w", err)
	}

	return nil
}

func validateConfig(config *Config) error {
	if config.Language == "" {
		return errors.New("language cannot be empty")
	}
	if !IsSupportedLanguage(config.Language) {
		return fmt.Errorf("unsupported language: %s", config.Language)
	}
	if config.TokenPath == "" {
		return errors.New("token_path cannot be empty")
	}
	return nil
}
