// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
)

// ProjectConfigName is the per-repository config file looked up in the
// working directory.
const ProjectConfigName = ".mongolens.toml"

// Connection is a named connection string.
type Connection struct {
	Name string `toml:"name"`
	URI  string `toml:"uri"`
}

// Config represents the application configuration. A project-local file
// is merged over the global one: scalar settings from the project file
// win, connection lists are concatenated (project entries first).
type Config struct {
	DefaultConnection string       `toml:"default_connection"`
	ReadOnly          bool         `toml:"read_only"`
	PageSize          int64        `toml:"page_size"`
	Editor            string       `toml:"editor"`
	Connections       []Connection `toml:"connections"`
}

// Paths holds every file-system location the application reads or writes.
type Paths struct {
	GlobalConfig    string
	ProjectConfig   string
	QueriesDir      string
	AggregationsDir string
}

// DefaultConfig returns a config with default values.
func DefaultConfig() *Config {
	return &Config{
		PageSize: 50,
	}
}

// DefaultPaths resolves the XDG-compliant global locations plus the
// project config in the current working directory.
func DefaultPaths() (Paths, error) {
	global, err := xdg.ConfigFile("mongolens/config.toml")
	if err != nil {
		return Paths{}, err
	}
	confDir := filepath.Dir(global)
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	return Paths{
		GlobalConfig:    global,
		ProjectConfig:   filepath.Join(cwd, ProjectConfigName),
		QueriesDir:      filepath.Join(confDir, "queries"),
		AggregationsDir: filepath.Join(confDir, "aggregations"),
	}, nil
}

// Load reads the global and project config files and merges them. A
// missing file is not an error; a malformed one is.
func Load(paths Paths) (*Config, error) {
	cfg := DefaultConfig()

	global, err := readFile(paths.GlobalConfig)
	if err != nil {
		return nil, fmt.Errorf("global config: %w", err)
	}
	project, err := readFile(paths.ProjectConfig)
	if err != nil {
		return nil, fmt.Errorf("project config: %w", err)
	}

	merge(cfg, global)
	merge(cfg, project)
	return cfg, nil
}

func readFile(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, nil
	}
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge overlays src onto dst; src connections are prepended so the
// nearest file wins name lookups.
func merge(dst *Config, src *Config) {
	if src == nil {
		return
	}
	if src.DefaultConnection != "" {
		dst.DefaultConnection = src.DefaultConnection
	}
	if src.ReadOnly {
		dst.ReadOnly = true
	}
	if src.PageSize > 0 {
		dst.PageSize = src.PageSize
	}
	if src.Editor != "" {
		dst.Editor = src.Editor
	}
	dst.Connections = append(append([]Connection{}, src.Connections...), dst.Connections...)
}

// GetConnection retrieves a connection by name. With an empty name the
// default connection is used, falling back to a sole configured entry.
func (c *Config) GetConnection(name string) (*Connection, error) {
	if name == "" {
		name = c.DefaultConnection
	}
	if name == "" {
		if len(c.Connections) == 1 {
			return &c.Connections[0], nil
		}
		return nil, fmt.Errorf("no connection selected and no default configured")
	}
	for i := range c.Connections {
		if c.Connections[i].Name == name {
			return &c.Connections[i], nil
		}
	}
	return nil, fmt.Errorf("connection not found: %s", name)
}

// AppendConnectionToProjectConfig persists a connection into the
// project-local config file, creating it if needed. Returns the path
// written.
func AppendConnectionToProjectConfig(paths Paths, conn Connection) (string, error) {
	return appendConnection(paths.ProjectConfig, conn)
}

// AppendConnectionToGlobalConfig persists a connection into the global
// config file, creating it if needed. Returns the path written.
func AppendConnectionToGlobalConfig(paths Paths, conn Connection) (string, error) {
	return appendConnection(paths.GlobalConfig, conn)
}

func appendConnection(path string, conn Connection) (string, error) {
	if conn.Name == "" {
		return "", fmt.Errorf("connection name must not be empty")
	}
	if conn.URI == "" {
		return "", fmt.Errorf("connection uri must not be empty")
	}

	existing, err := readFile(path)
	if err != nil {
		return "", err
	}
	if existing == nil {
		existing = &Config{}
	}
	for _, c := range existing.Connections {
		if c.Name == conn.Name {
			return "", fmt.Errorf("connection %q already exists in %s", conn.Name, path)
		}
	}
	existing.Connections = append(existing.Connections, conn)

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", err
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(existing); err != nil {
		return "", err
	}
	return path, nil
}
