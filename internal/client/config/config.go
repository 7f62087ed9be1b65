package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/adrg/xdg"
)

var (
	cfgFile     = "aichess/config.json"
	historyFile = "aichess/history"
)

type InvalidConfig struct {
	err string
}

func (e *InvalidConfig) Error() string {
	return fmt.Sprintf("config error: %s", e.err)
}

// EngineConfig selects the move proposer used by the ai and hint commands
type EngineConfig struct {
	Path       string `json:"path"` // UCI binary; random legal mover when empty
	Level      int    `json:"level"`
	MoveTimeMS int    `json:"move_time_ms"`
}

func (e EngineConfig) MoveTime() time.Duration {
	return time.Duration(e.MoveTimeMS) * time.Millisecond
}

type Config struct {
	Engine      EngineConfig `json:"engine"`
	Color       bool         `json:"color"`
	HistoryFile string       `json:"history_file,omitempty"`
}

var DefaultConfig = Config{
	Engine: EngineConfig{Level: 10, MoveTimeMS: 1000},
	Color:  true,
}

// InitConfig loads the user config from the XDG config dirs, falling back to defaults
func InitConfig() (*Config, error) {
	absPath, err := xdg.SearchConfigFile(cfgFile)
	if err != nil {
		config := DefaultConfig
		return config.withHistory()
	}
	return Load(absPath)
}

// Load reads a config file over the defaults
func Load(path string) (*Config, error) {
	config := DefaultConfig
	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, &InvalidConfig{fmt.Sprintf("%s: %v", path, err)}
		}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config.withHistory()
}

func (c *Config) withHistory() (*Config, error) {
	if c.HistoryFile == "" {
		path, err := xdg.DataFile(historyFile)
		if err != nil {
			return nil, fmt.Errorf("history path: %w", err)
		}
		c.HistoryFile = path
	}
	return c, nil
}

func (c *Config) Validate() error {
	if c.Engine.Level < 0 || c.Engine.Level > 20 {
		return &InvalidConfig{"engine level must be between 0 and 20"}
	}
	if c.Engine.MoveTimeMS < 0 {
		return &InvalidConfig{"engine move time must not be negative"}
	}
	return nil
}

// Save writes the config to the user's XDG config dir
func (c *Config) Save() error {
	absPath, err := xdg.ConfigFile(cfgFile)
	if err != nil {
		return err
	}
	return c.SaveTo(absPath)
}

func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o664)
}
