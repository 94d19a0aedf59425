package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server ServerConfig
	OpenAI OpenAIConfig
	Output OutputConfig
}

type ServerConfig struct {
	Port     string
	Env      string
	LogLevel string
}

type OpenAIConfig struct {
	APIKey        string
	BaseURL       string
	ResearchModel string
	BlogModel     string
	Timeout       int // seconds
}

type OutputConfig struct {
	Dir string
}

func Load() (*Config, error) {
	// Local development keeps the API key in a .env file
	_ = godotenv.Load()

	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("OPENAI_API_KEY")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	_ = viper.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	_ = viper.BindEnv("openai.research_model", "OPENAI_RESEARCH_MODEL")
	_ = viper.BindEnv("openai.blog_model", "OPENAI_BLOG_MODEL")
	_ = viper.BindEnv("openai.timeout", "OPENAI_TIMEOUT")
	_ = viper.BindEnv("output.dir", "OUTPUT_DIR")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")

	// OpenAI defaults
	viper.SetDefault("openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("openai.research_model", "gpt-4o-2024-08-06")
	viper.SetDefault("openai.blog_model", "gpt-4o-mini")
	viper.SetDefault("openai.timeout", 120)

	// Output defaults
	viper.SetDefault("output.dir", "outputs")

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:     viper.GetString("server.port"),
			Env:      viper.GetString("server.env"),
			LogLevel: viper.GetString("server.log_level"),
		},
		OpenAI: OpenAIConfig{
			APIKey:        viper.GetString("openai.api_key"),
			BaseURL:       viper.GetString("openai.base_url"),
			ResearchModel: viper.GetString("openai.research_model"),
			BlogModel:     viper.GetString("openai.blog_model"),
			Timeout:       viper.GetInt("openai.timeout"),
		},
		Output: OutputConfig{
			Dir: viper.GetString("output.dir"),
		},
	}

	return cfg, nil
}
