package config

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// EnvConfigPath names the environment variable holding the config file path.
const EnvConfigPath = "KUBELENS_CONFIG"

type Config struct {
	Logger Logger `yaml:"logger"`
	Scan   Scan   `yaml:"scan"`
	Output Output `yaml:"output"`
}

type Logger struct {
	Level           string `yaml:"level"`
	DisableTime     *bool  `yaml:"disable_time"`
	JSONFormat      *bool  `yaml:"json_format"`
	IncludeLocation *bool  `yaml:"include_location"`
}

type Scan struct {
	Jobs            int      `yaml:"jobs"`
	Frameworks      []string `yaml:"frameworks"`
	FailOn          string   `yaml:"fail_on"`
	DefaultFixValue string   `yaml:"default_fix_value"`
	ImageSeverities []string `yaml:"image_severities"`
	Include         []string `yaml:"include"`
}

type Output struct {
	Format string `yaml:"format"`
	Pretty *bool  `yaml:"pretty"`
}

// ValidateConfigPath checks that path names a regular file.
func ValidateConfigPath(path string) error {
	s, err := os.Stat(path)
	if err != nil {
		return err
	}
	if s.IsDir() {
		return fmt.Errorf("'%s' is a directory, not a file", path)
	}
	return nil
}

// LoadYAML decodes the YAML file at configPath into data.
func LoadYAML(configPath string, data interface{}) error {
	if err := ValidateConfigPath(configPath); err != nil {
		return err
	}

	file, err := os.Open(configPath)
	if err != nil {
		return err
	}
	defer file.Close()

	d := yaml.NewDecoder(file)
	d.SetStrict(true)
	if err := d.Decode(data); err != nil {
		return err
	}

	return nil
}

// NewConfig loads the configuration from configPath, or from the path in
// KUBELENS_CONFIG when configPath is empty. Without either it returns the
// defaults. The result is validated.
func NewConfig(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = os.Getenv(EnvConfigPath)
	}

	cfg := &Config{}
	if configPath != "" {
		if err := LoadYAML(configPath, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config %q: %w", configPath, err)
		}
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	_ = ValidateConfig(cfg)
	return cfg
}
