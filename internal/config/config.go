package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/Brownie44l1/solariq/internal/classifier"
)

const (
	DefaultPath = "config.yaml"
	EnvPrefix   = "SOLARIQ_"
)

type Config struct {
	Model      ModelConfig            `koanf:"model"`
	Conditions []classifier.Condition `koanf:"conditions"`
	Notifier   NotifierConfig         `koanf:"notifier"`
	Log        LogConfig              `koanf:"log"`
}

type ModelConfig struct {
	Path           string `koanf:"path"`
	CheckpointPath string `koanf:"checkpoint_path"`
	MetadataPath   string `koanf:"metadata_path"`
	LibraryPath    string `koanf:"library_path"`
	Device         string `koanf:"device"`
}

type NotifierConfig struct {
	TelegramToken   string   `koanf:"telegram_token"`
	TelegramChatIDs []string `koanf:"telegram_chat_ids"`
}

type LogConfig struct {
	File string `koanf:"file"`
}

func Default() *Config {
	return &Config{
		Model: ModelConfig{
			Path:           "./models/vit-base-patch16-224.onnx",
			CheckpointPath: "./models/best_model.onnx",
			MetadataPath:   "./models/model_metadata.json",
			Device:         "auto",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path and
// SOLARIQ_* environment variables (a .env file is read first). Nested keys
// use a double underscore: SOLARIQ_MODEL__DEVICE=cpu. A missing file is an
// error only when path was given explicitly.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", path, err)
		}
	}

	if err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	// Default leaves Conditions nil so a configured list replaces the
	// built-in one instead of being merged into it element by element.
	if len(cfg.Conditions) == 0 {
		cfg.Conditions = classifier.DefaultConditions()
	}

	return cfg, nil
}

// listKeys are the keys whose environment values are comma-separated lists.
var listKeys = map[string]bool{
	"notifier.telegram_chat_ids": true,
}

func envKey(key, value string) (string, any) {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	key = strings.ReplaceAll(key, "__", ".")
	if listKeys[key] {
		return key, strings.Split(value, ",")
	}
	return key, value
}

// ClassifierConfig maps the model section onto classifier.Load input.
func (c *Config) ClassifierConfig() classifier.Config {
	return classifier.Config{
		ModelPath:      c.Model.Path,
		CheckpointPath: c.Model.CheckpointPath,
		MetadataPath:   c.Model.MetadataPath,
		LibraryPath:    c.Model.LibraryPath,
		Device:         c.Model.Device,
		Conditions:     c.Conditions,
	}
}

// TelegramEnabled reports whether alerts can be delivered.
func (c *Config) TelegramEnabled() bool {
	return c.Notifier.TelegramToken != "" && len(c.Notifier.TelegramChatIDs) > 0
}

// OpenLog returns the writer logs go to: the configured file, appended to,
// or stderr.
func (c *Config) OpenLog() (*os.File, error) {
	if c.Log.File == "" {
		return os.Stderr, nil
	}
	return os.OpenFile(c.Log.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
}
