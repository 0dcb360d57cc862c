package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"stockmcp/internal/logging"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

const APP_NAME = "stockmcp" // application name used for config and data directories

// Corruption policies for unreadable persisted stock data.
const (
	CorruptionReset  = "reset"  // treat malformed data as an empty collection (logged)
	CorruptionStrict = "strict" // fail the operation with an error
)

// Config holds server configuration for stockmcp.
type Config struct {
	// DataFile is the JSON file holding the persisted stock collection.
	DataFile string `yaml:"data_file"`

	// APIAddr and MCPAddr are the listen addresses of the two access surfaces.
	APIAddr string `yaml:"api_addr"`
	MCPAddr string `yaml:"mcp_addr"`

	// Username and Password guard both surfaces: basic auth on the REST API,
	// bearer token (base64 of user:pass) on the MCP endpoint.
	Username string `yaml:"username"`
	Password string `yaml:"password"`

	// CorruptionPolicy selects how unreadable persisted data is handled:
	// CorruptionReset or CorruptionStrict.
	CorruptionPolicy string `yaml:"corruption_policy"`

	// SeedSampleData populates the well-known sample records when the
	// store is empty at startup.
	SeedSampleData bool `yaml:"seed_sample_data"`

	Version  string `yaml:"version"`   // Track config version
	InitTime int64  `yaml:"init_time"` // Unix timestamp of first setup
}

// ConfigPath returns the standard config file path for the current platform
func ConfigPath() (string, error) {
	configDir := filepath.Join(xdg.ConfigHome, APP_NAME)
	configPath := filepath.Join(configDir, "config.yaml")

	logging.Debug("Determined config path", "path", configPath)
	return configPath, nil
}

// DefaultDataFile returns the default location of the persisted stock collection.
func DefaultDataFile() string {
	return filepath.Join(xdg.DataHome, APP_NAME, "stocks.json")
}

// ExpandPath expands a path that starts with "~/" to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// Load loads the config from the standard location. If no config file
// exists, it returns the defaults so the servers can run unconfigured.
func Load() (*Config, error) {
	configPath, exists := FindConfigFile()
	logging.Debug("Loading config from", "path", configPath)
	if !exists {
		cfg := DefaultConfig()
		cfg.applyEnvOverrides()
		return &cfg, nil
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// LoadFrom loads config from a specific path
func LoadFrom(path string) (*Config, error) {
	logging.Debug("Reading config file", "path", path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg := DefaultConfig()
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindConfigFile returns the path to an existing config file, and whether it exists.
func FindConfigFile() (string, bool) {
	primary, err := ConfigPath()
	if err != nil {
		logging.Error("Failed to get config path", "error", err)
		return "", false
	}

	if _, err := os.Stat(primary); err == nil {
		logging.Debug("Config found at primary path", "path", primary)
		return primary, true
	}

	// Return primary path for new config
	return primary, false
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DataFile:         DefaultDataFile(),
		APIAddr:          ":8000",
		MCPAddr:          ":8001",
		Username:         "admin",
		Password:         "admin",
		CorruptionPolicy: CorruptionReset,
		SeedSampleData:   true,
		Version:          "1.0",
		InitTime:         0, // Will be set during first save
	}
}

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataFile) == "" {
		return fmt.Errorf("data_file cannot be empty")
	}
	switch c.CorruptionPolicy {
	case CorruptionReset, CorruptionStrict:
	default:
		return fmt.Errorf("invalid corruption_policy %q: must be %q or %q",
			c.CorruptionPolicy, CorruptionReset, CorruptionStrict)
	}
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("username and password cannot be empty")
	}
	return nil
}

// applyEnvOverrides lets environment variables win over file values, so
// deployments can configure the servers without a config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("STOCKMCP_DATA_FILE"); v != "" {
		c.DataFile = v
	}
	if v := os.Getenv("STOCKMCP_API_ADDR"); v != "" {
		c.APIAddr = v
	}
	if v := os.Getenv("STOCKMCP_MCP_ADDR"); v != "" {
		c.MCPAddr = v
	}
	if v := os.Getenv("STOCKMCP_USERNAME"); v != "" {
		c.Username = v
	}
	if v := os.Getenv("STOCKMCP_PASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("STOCKMCP_CORRUPTION_POLICY"); v != "" {
		c.CorruptionPolicy = v
	}
	c.DataFile = ExpandPath(c.DataFile)
}

// Save writes the config to the standard location
func (c *Config) Save() error {
	configPath, _ := FindConfigFile()
	return c.SaveTo(configPath)
}

// SaveTo writes the config to a specific path
func (c *Config) SaveTo(path string) error {
	// Set init time if this is the first save
	if c.InitTime == 0 {
		c.InitTime = time.Now().Unix()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// Create file with restrictive permissions (600): it holds credentials
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
