package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that decodes from strings such as "10s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.parse(s)
}

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	return d.parse(s)
}

func (d *Duration) parse(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(v)
	return nil
}

// GoogleConfig holds the Vertex AI settings for label reading
type GoogleConfig struct {
	ProjectID       string `json:"project_id" yaml:"project_id"`
	Location        string `json:"location" yaml:"location"`
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	Model           string `json:"model" yaml:"model"`
}

// Config holds all application configuration
type Config struct {
	Server struct {
		Port      string `json:"port" yaml:"port"`
		StaticDir string `json:"static_dir" yaml:"static_dir"`
		Debug     bool   `json:"debug" yaml:"debug"`
	} `json:"server" yaml:"server"`

	Database struct {
		Path string `json:"path" yaml:"path"`
	} `json:"database" yaml:"database"`

	FoodFacts struct {
		BaseURL   string   `json:"base_url" yaml:"base_url"`
		Timeout   Duration `json:"timeout" yaml:"timeout"`
		UserAgent string   `json:"user_agent" yaml:"user_agent"`
	} `json:"foodfacts" yaml:"foodfacts"`

	ML struct {
		Type   string       `json:"type" yaml:"type"` // "none" or "google"
		Google GoogleConfig `json:"google" yaml:"google"`
	} `json:"ml" yaml:"ml"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	var c Config
	c.applyDefaults()
	return &c
}

// LoadConfig loads configuration from a JSON or YAML file, then applies
// environment overrides. An empty path skips the file.
func LoadConfig(configPath string) (*Config, error) {
	var config Config

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		switch strings.ToLower(filepath.Ext(configPath)) {
		case ".yaml", ".yml":
			err = yaml.Unmarshal(data, &config)
		default:
			err = json.Unmarshal(data, &config)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ALLERGENSCAN_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("ALLERGENSCAN_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("ALLERGENSCAN_FOODFACTS_URL"); v != "" {
		c.FoodFacts.BaseURL = v
	}
	if c.ML.Google.ProjectID == "" {
		c.ML.Google.ProjectID = os.Getenv("GOOGLE_PROJECT_ID")
	}
	if c.ML.Google.Location == "" {
		c.ML.Google.Location = os.Getenv("GOOGLE_LOCATION")
	}
	if c.ML.Google.CredentialsFile == "" {
		c.ML.Google.CredentialsFile = os.Getenv("GOOGLE_CREDENTIALS_FILE")
	}
}

// Handle missing values
func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.StaticDir == "" {
		c.Server.StaticDir = "./static"
	}
	if c.Database.Path == "" {
		c.Database.Path = "allergenscan.db"
	}
	if c.FoodFacts.BaseURL == "" {
		c.FoodFacts.BaseURL = "https://world.openfoodfacts.org/api/v0/product"
	}
	if c.FoodFacts.Timeout == 0 {
		c.FoodFacts.Timeout = Duration(10 * time.Second)
	}
	if c.FoodFacts.UserAgent == "" {
		c.FoodFacts.UserAgent = "allergenscan/1.0"
	}
	if c.ML.Type == "" {
		c.ML.Type = "none"
	}
	if c.ML.Google.Location == "" {
		c.ML.Google.Location = "us-central1"
	}
	if c.ML.Google.Model == "" {
		c.ML.Google.Model = "gemini-1.5-flash"
	}
}

// Validate checks the settings that have no sensible default
func (c *Config) Validate() error {
	switch c.ML.Type {
	case "none":
	case "google":
		if c.ML.Google.ProjectID == "" {
			return fmt.Errorf("ml type google requires a project id")
		}
	default:
		return fmt.Errorf("unsupported ml type: %s", c.ML.Type)
	}
	if c.FoodFacts.Timeout < 0 {
		return fmt.Errorf("foodfacts timeout must not be negative")
	}
	return nil
}

// LoadEnvFile loads variables from a .env file in the working directory,
// if one exists. Variables already set are kept.
func LoadEnvFile() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	if err := godotenv.Load(); err != nil {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// GetConfigPath returns the path to the configuration file, or "" when
// none is found
func GetConfigPath() string {
	// First try environment variable
	if path := os.Getenv("ALLERGENSCAN_CONFIG"); path != "" {
		return path
	}

	// Then try config directory and current directory
	candidates := []string{
		filepath.Join("config", "config.yaml"),
		filepath.Join("config", "config.json"),
		"config.yaml",
		"config.json",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
