package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config models aerocode.yml.
type Config struct {
	Production struct {
		Manufacturer string          `yaml:"manufacturer"`
		Stages       []StageTemplate `yaml:"stages"`
	} `yaml:"production"`
	Bootstrap struct {
		Name     string `yaml:"name"`
		Username string `yaml:"username"`
		Secret   string `yaml:"secret"`
	} `yaml:"bootstrap"`
	Session struct {
		Secret string        `yaml:"secret"`
		TTL    time.Duration `yaml:"ttl"`
	} `yaml:"session"`
}

// StageTemplate describes one stage attached to every new aircraft.
type StageTemplate struct {
	Name       string `yaml:"name"`
	OffsetDays int    `yaml:"offset_days"`
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	if len(c.Production.Stages) == 0 {
		return fmt.Errorf("config.production.stages is required")
	}
	seen := map[string]bool{}
	for i, st := range c.Production.Stages {
		name := strings.TrimSpace(st.Name)
		if name == "" {
			return fmt.Errorf("production stage %d has empty name", i+1)
		}
		if seen[strings.ToLower(name)] {
			return fmt.Errorf("production stage %q listed twice", name)
		}
		seen[strings.ToLower(name)] = true
		if st.OffsetDays <= 0 {
			return fmt.Errorf("production stage %q must have positive offset_days", name)
		}
	}
	if c.Bootstrap.Username == "" || c.Bootstrap.Secret == "" {
		return fmt.Errorf("config.bootstrap username and secret are required")
	}
	if c.Session.TTL < 0 {
		return fmt.Errorf("config.session.ttl must not be negative")
	}
	return nil
}

// Path returns the config file path for a workspace.
func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "aerocode.yml")
}

// Load reads aerocode.yml from the workspace, falling back to defaults when
// the file does not exist.
func Load(workspace string) (*Config, error) {
	data, err := os.ReadFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, err
	}
	return FromYAML(data)
}

// LoadEnv loads <workspace>/.env into the process environment without
// overriding variables that are already set.
func LoadEnv(workspace string) error {
	if workspace == "" {
		workspace = "."
	}
	path := filepath.Join(workspace, ".env")
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses config from raw YAML bytes on top of the defaults and
// validates the result.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	var override Config
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	merge(cfg, &override)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Init writes the default aerocode.yml into the workspace. An existing file
// is kept unless force is set.
func Init(workspace string, force bool) (string, error) {
	path := Path(workspace)
	if _, err := os.Stat(path); err == nil && !force {
		return "", fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.WriteFile(path, []byte(defaultTemplate), 0o644); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

// SetEnv sets key in <workspace>/.env, keeping the other entries.
func SetEnv(workspace, key, value string) error {
	if workspace == "" {
		workspace = "."
	}
	path := filepath.Join(workspace, ".env")
	env := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		if env, err = godotenv.Read(path); err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
	}
	env[key] = value
	return godotenv.Write(env, path)
}

func merge(dst, src *Config) {
	if src.Production.Manufacturer != "" {
		dst.Production.Manufacturer = src.Production.Manufacturer
	}
	if len(src.Production.Stages) > 0 {
		dst.Production.Stages = src.Production.Stages
	}
	if src.Bootstrap.Name != "" {
		dst.Bootstrap.Name = src.Bootstrap.Name
	}
	if src.Bootstrap.Username != "" {
		dst.Bootstrap.Username = src.Bootstrap.Username
	}
	if src.Bootstrap.Secret != "" {
		dst.Bootstrap.Secret = src.Bootstrap.Secret
	}
	if src.Session.Secret != "" {
		dst.Session.Secret = src.Session.Secret
	}
	if src.Session.TTL != 0 {
		dst.Session.TTL = src.Session.TTL
	}
}

const defaultTemplate = `production:
  manufacturer: Aerocode
  stages:
    - name: Fuselage Assembly
      offset_days: 7
    - name: Wing Installation
      offset_days: 14
    - name: Landing Gear Assembly
      offset_days: 21
    - name: Engine Installation
      offset_days: 28
    - name: Final Tests
      offset_days: 35

bootstrap:
  name: System Administrator
  username: admin
  secret: "123456"

session:
  ttl: 8h
`
