package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// TargetConfig is one PostgreSQL sink as written in pgload.yaml.
// Passwords are never read from the file.
type TargetConfig struct {
	Name           string `yaml:"name"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Database       string `yaml:"database"`
	Username       string `yaml:"username"`
	Table          string `yaml:"table"`
	SSLMode        string `yaml:"sslmode"`
	Mode           string `yaml:"mode,omitempty"`
	AuthMethod     string `yaml:"auth_method,omitempty"`
	AWSRegion      string `yaml:"aws_region,omitempty"`
	GoogleInstance string `yaml:"google_instance,omitempty"`
	AzureTenantID  string `yaml:"azure_tenant_id,omitempty"`
	AzureClientID  string `yaml:"azure_client_id,omitempty"`
}

type ProjectConfig struct {
	Targets []TargetConfig `yaml:"targets"`
	Skip    []string       `yaml:"skip"`
	Include []string       `yaml:"include"`
	Timeout string         `yaml:"timeout"`
}

const ConfigFileName = "pgload.yaml"

// Load reads pgload.yaml from path. path may name the file itself or the
// directory containing it.
func Load(path string) (*ProjectConfig, error) {
	configPath := path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		configPath = filepath.Join(path, ConfigFileName)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", configPath, err)
	}
	return &cfg, nil
}

// Target returns the target with the given name.
func (c *ProjectConfig) Target(name string) (TargetConfig, bool) {
	for _, t := range c.Targets {
		if t.Name == name {
			return t, true
		}
	}
	return TargetConfig{}, false
}

func (c *ProjectConfig) validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Targets))
	for i, t := range c.Targets {
		if t.Name == "" {
			errs = append(errs, fmt.Errorf("targets[%d]: name is required", i))
			continue
		}
		if seen[t.Name] {
			errs = append(errs, fmt.Errorf("targets[%d]: duplicate target name %q", i, t.Name))
		}
		seen[t.Name] = true
	}
	return errors.Join(errs...)
}
