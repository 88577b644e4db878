package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const defaultRemoteURL = "https://raw.githubusercontent.com/svgreve/sutram-tuss-dictionary/main/tuss_exames_comuns.json"

type Config struct {
	Dictionary    DictionaryConfig    `mapstructure:"dictionary"`
	Matching      MatchingConfig      `mapstructure:"matching"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Contributions ContributionsConfig `mapstructure:"contributions"`
	OpenAI        OpenAIConfig        `mapstructure:"openai"`
	Reports       ReportsConfig       `mapstructure:"reports"`
}

type DictionaryConfig struct {
	RemoteURL      string `mapstructure:"remote_url" validate:"omitempty,url"`
	CacheDirectory string `mapstructure:"cache_directory" validate:"required"`
	TTLHours       int    `mapstructure:"ttl_hours" validate:"gte=0"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gt=0"`
}

type MatchingConfig struct {
	FuzzyThreshold float64 `mapstructure:"fuzzy_threshold" validate:"gte=0,lte=100"`
	ShortlistSize  int     `mapstructure:"shortlist_size" validate:"gt=0"`
}

type CacheConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type ContributionsConfig struct {
	LedgerPath string `mapstructure:"ledger_path" validate:"required"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type ReportsConfig struct {
	Directory string `mapstructure:"directory"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/tussnorm")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("dictionary.remote_url", defaultRemoteURL)
	v.SetDefault("dictionary.cache_directory", filepath.Join(".tussnorm", "dictionary"))
	v.SetDefault("dictionary.ttl_hours", 24)
	v.SetDefault("dictionary.timeout_seconds", 15)
	v.SetDefault("matching.fuzzy_threshold", 80)
	v.SetDefault("matching.shortlist_size", 5)
	v.SetDefault("cache.path", filepath.Join(".tussnorm", "mapping_cache.json"))
	v.SetDefault("contributions.ledger_path", filepath.Join(".tussnorm", "contributions.yml"))
	v.SetDefault("openai.model", "gpt-4o-mini")
	v.SetDefault("reports.directory", filepath.Join(".tussnorm", "reports"))

	// Credentials and the dictionary location come from the environment only.
	if err := v.BindEnv("openai.api_key", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_API_KEY environment variable: %w", err)
	}
	if err := v.BindEnv("openai.model", "OPENAI_MODEL"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_MODEL environment variable: %w", err)
	}
	if err := v.BindEnv("dictionary.remote_url", "TUSSNORM_DICT_URL"); err != nil {
		return nil, fmt.Errorf("failed to bind TUSSNORM_DICT_URL environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (loader *ConfigLoader) validate(cfg *Config) error {
	err := loader.validator.Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("failed to validate configuration: %w", err)
	}

	messages := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		messages = append(messages, fieldError.Translate(loader.translator))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
}
