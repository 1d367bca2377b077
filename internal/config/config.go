package config

import (
	"fmt"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Database DatabaseConfig `mapstructure:"database"`
	Outputs  OutputsConfig  `mapstructure:"outputs"`
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Retry    RetryConfig    `mapstructure:"retry"`
}

type InputConfig struct {
	TextFile string `mapstructure:"text_file" validate:"omitempty,file"`
}

type DatabaseConfig struct {
	Driver   string `mapstructure:"driver" validate:"oneof=sqlite3 mysql"`
	Path     string `mapstructure:"path"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type OutputsConfig struct {
	SQLFile     string `mapstructure:"sql_file"`
	ErrorLog    string `mapstructure:"error_log"`
	ResponseLog string `mapstructure:"response_log"`
}

type GeminiConfig struct {
	Project         string  `mapstructure:"project"`
	Location        string  `mapstructure:"location"`
	Endpoint        string  `mapstructure:"endpoint"`
	AccessToken     string  `mapstructure:"access_token"`
	Temperature     float32 `mapstructure:"temperature"`
	TopP            float32 `mapstructure:"top_p"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
}

type RetryConfig struct {
	MaxAttempts  uint `mapstructure:"max_attempts" validate:"min=1"`
	DelaySeconds int  `mapstructure:"delay_seconds" validate:"min=0"`
	PauseEvery   int  `mapstructure:"pause_every" validate:"min=0"`
}

// ModelResource returns the full Vertex AI resource name of the configured
// endpoint, e.g. "projects/123/locations/europe-southwest1/endpoints/456".
// An endpoint that already looks like a full resource name is used as is.
func (cfg GeminiConfig) ModelResource() string {
	if strings.HasPrefix(cfg.Endpoint, "projects/") {
		return cfg.Endpoint
	}
	return fmt.Sprintf("projects/%s/locations/%s/endpoints/%s", cfg.Project, cfg.Location, cfg.Endpoint)
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
		v.AddConfigPath("$HOME/.config/wortschatz")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.path", "MudadibFullGemini.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "local")
	v.SetDefault("database.username", "user")
	v.SetDefault("outputs.sql_file", "translations_inserts.sql")
	v.SetDefault("outputs.error_log", "processing_errors.log")
	v.SetDefault("outputs.response_log", "successful_model_responses.jsonl")
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.95)
	v.SetDefault("gemini.max_output_tokens", 4096)
	v.SetDefault("retry.max_attempts", 5)
	v.SetDefault("retry.delay_seconds", 5)
	v.SetDefault("retry.pause_every", 10)

	// Bind secrets to environment variables only (not from config file)
	if err := v.BindEnv("gemini.access_token", "GOOGLE_ACCESS_TOKEN"); err != nil {
		return nil, fmt.Errorf("failed to bind GOOGLE_ACCESS_TOKEN environment variable: %w", err)
	}
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
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

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}
