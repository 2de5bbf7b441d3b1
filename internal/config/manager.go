package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// EnvConfigPath overrides the default config location.
const EnvConfigPath = "AUTOENV_CONFIG"

// Format represents the configuration file format
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// fileManager reads and writes JSON, YAML and TOML configuration files
type fileManager struct {
	configPath string
	format     Format
	mu         sync.Mutex
}

// NewManager creates a config manager; the format follows the file extension
func NewManager(configPath string) (Manager, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}

	return &fileManager{
		configPath: configPath,
		format:     FormatFromPath(configPath),
	}, nil
}

// FormatFromPath maps an extension to a format. Unknown extensions are YAML.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".toml":
		return FormatTOML
	default:
		return FormatYAML
	}
}

// DefaultPath resolves the config file: $AUTOENV_CONFIG, then
// $XDG_CONFIG_HOME/pyenv-autoenv/config.yaml, then ~/.config/pyenv-autoenv/config.yaml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p, nil
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "pyenv-autoenv", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate home directory: %w", err)
	}
	return filepath.Join(home, ".config", "pyenv-autoenv", "config.yaml"), nil
}

func (m *fileManager) Path() string {
	return m.configPath
}

// Load reads the file over the defaults, so unset keys keep their default values
func (m *fileManager) Load() (*Config, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	config := Default()
	data, err := os.ReadFile(m.configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := unmarshal(m.format, data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config as %s: %w", strings.ToUpper(string(m.format)), err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Save saves the configuration file in the appropriate format
func (m *fileManager) Save(config *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := marshal(m.format, config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return m.writeAtomic(data)
}

// CreateDefaultConfig creates a default configuration file
func (m *fileManager) CreateDefaultConfig() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := marshal(m.format, Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// JSON has no comments
	if m.format != FormatJSON {
		header := `# pyenv-autoenv configuration
# Command names, default flags and minimum tool versions checked by 'autoenv doctor'

`
		data = append([]byte(header), data...)
	}
	return m.writeAtomic(data)
}

// writeAtomic writes to a temp file then renames it over the config
func (m *fileManager) writeAtomic(data []byte) error {
	// Ensure directory exists
	dir := filepath.Dir(m.configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpFile := m.configPath + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp config file: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpFile, m.configPath); err != nil {
		// Clean up temp file
		_ = os.Remove(tmpFile)
		return fmt.Errorf("failed to save config file: %w", err)
	}

	return nil
}

func unmarshal(format Format, data []byte, config *Config) error {
	switch format {
	case FormatJSON:
		return json.Unmarshal(data, config)
	case FormatTOML:
		_, err := toml.Decode(string(data), config)
		return err
	default:
		return yaml.Unmarshal(data, config)
	}
}

func marshal(format Format, config *Config) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(config, "", "  ")
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(config); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatYAML:
		return yaml.Marshal(config)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// Validate rejects values the CLI cannot use.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.PyenvCommand) == "" {
		return fmt.Errorf("pyenv_command cannot be empty")
	}
	if strings.TrimSpace(c.PythonBuildCommand) == "" {
		return fmt.Errorf("python_build_command cannot be empty")
	}
	if c.Quiet < 0 {
		return fmt.Errorf("quiet must not be negative, got %d", c.Quiet)
	}
	return nil
}
