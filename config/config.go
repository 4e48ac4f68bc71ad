package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const DefaultPath = "./config/config.yaml"

type Catalog struct {
	CategoriesFile string `mapstructure:"categoriesFile"`
	ProductsFile   string `mapstructure:"productsFile"`
}

// LLM configures the completion backend. Provider is one of googleai, ollama or openai.
type LLM struct {
	Provider  string        `mapstructure:"provider"`
	Host      string        `mapstructure:"host"`
	Port      string        `mapstructure:"port"`
	BaseURL   string        `mapstructure:"baseURL"`
	APIKey    string        `mapstructure:"apiKey"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Extractor Model         `mapstructure:"extractor"`
	Composer  Model         `mapstructure:"composer"`
}

type Model struct {
	Name        string  `mapstructure:"name"`
	Temperature float64 `mapstructure:"temperature"`
}

func (l *LLM) Address() string {
	if l.BaseURL != "" {
		return l.BaseURL
	}

	return fmt.Sprintf("http://%s:%s", l.Host, l.Port)
}

type Server struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

func (s *Server) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type Log struct {
	Level string `mapstructure:"level"`
}

func (l Log) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo
	}

	return level
}

type Config struct {
	Catalog Catalog `mapstructure:"catalog"`
	LLM     LLM     `mapstructure:"llm"`
	Server  Server  `mapstructure:"server"`
	Log     Log     `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog.categoriesFile", "./data/categories.json")
	v.SetDefault("catalog.productsFile", "./data/products.json")

	v.SetDefault("llm.provider", "googleai")
	v.SetDefault("llm.host", "localhost")
	v.SetDefault("llm.port", "11434")
	v.SetDefault("llm.baseURL", "")
	v.SetDefault("llm.apiKey", "")
	v.SetDefault("llm.timeout", "0s")
	v.SetDefault("llm.extractor.name", "gemini-1.5-flash")
	v.SetDefault("llm.extractor.temperature", 0.3)
	v.SetDefault("llm.composer.name", "gemini-1.5-flash")
	v.SetDefault("llm.composer.temperature", 0.3)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)

	v.SetDefault("log.level", "info")
}

// LoadConfig reads the YAML file at path, overlays environment variables
// (llm.apiKey -> LLM_APIKEY) and returns the result. An empty path only uses
// defaults and the environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) validate() error {
	switch c.LLM.Provider {
	case "googleai", "ollama", "openai":
	default:
		return fmt.Errorf("unsupported llm provider %q", c.LLM.Provider)
	}

	if c.Catalog.CategoriesFile == "" || c.Catalog.ProductsFile == "" {
		return fmt.Errorf("catalog categoriesFile and productsFile are required")
	}

	if c.LLM.Extractor.Name == "" || c.LLM.Composer.Name == "" {
		return fmt.Errorf("llm extractor and composer model names are required")
	}

	return nil
}
