package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/wricardo/fox-and-geese/game/engine"
	"github.com/wricardo/fox-and-geese/game/service"
)

var (
	ErrConfigNotFound = service.ErrConfigNotFound
	ErrInvalidConfig  = service.ErrInvalidConfig
)

// StandardName names the built-in opening position
const StandardName = "standard"

// Standard returns the built-in opening: 18 geese across the top arm and
// row 3, fox at the bottom, fox to move
func Standard() *service.GameConfig {
	return &service.GameConfig{
		Name:        StandardName,
		Description: "Standard opening: 18 geese, fox to move",
		Position:    engine.New().ToSnapshot(),
	}
}

// Manager handles starting position loading and caching
type Manager struct {
	configDir     string
	defaultConfig *service.GameConfig
	configs       map[string]*service.GameConfig
	mu            sync.RWMutex
}

// NewManager creates a manager for the positions stored in configDir,
// creating the directory when it is missing
func NewManager(configDir string) (*Manager, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	m := &Manager{
		configDir: configDir,
		configs:   make(map[string]*service.GameConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	return m, nil
}

// LoadConfig loads a starting position by name. A file named standard.json
// overrides the built-in standard position.
func (m *Manager) LoadConfig(name string) (*service.GameConfig, error) {
	name = strings.TrimSuffix(name, ".json")
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrConfigNotFound, name)
	}

	m.mu.RLock()
	if config, exists := m.configs[name]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[name]; exists {
		return config, nil
	}

	data, err := os.ReadFile(m.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			if name == StandardName {
				config := Standard()
				m.configs[name] = config
				return config, nil
			}
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config service.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidConfig, name, err)
	}
	if config.Name == "" {
		config.Name = name
	}

	if _, err := config.NewEngine(); err != nil {
		return nil, fmt.Errorf("config %s: %w", name, err)
	}

	m.configs[name] = &config
	return &config, nil
}

// ListConfigs returns information about all available starting positions.
// The built-in standard position is always listed; invalid files are skipped.
func (m *Manager) ListConfigs() ([]*service.ConfigInfo, error) {
	entries, err := os.ReadDir(m.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory: %w", err)
	}

	names := []string{StandardName}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		if name != StandardName {
			names = append(names, name)
		}
	}
	sort.Strings(names[1:])

	configs := make([]*service.ConfigInfo, 0, len(names))
	for _, name := range names {
		config, err := m.LoadConfig(name)
		if err != nil {
			continue
		}
		info, err := describe(name, config)
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(m.path(name)); statErr != nil {
			info.Filename = ""
		}
		configs = append(configs, info)
	}

	return configs, nil
}

func describe(name string, config *service.GameConfig) (*service.ConfigInfo, error) {
	e, err := config.NewEngine()
	if err != nil {
		return nil, err
	}
	return &service.ConfigInfo{
		Filename:      name + ".json",
		ConfigID:      name,
		Name:          config.Name,
		Description:   config.Description,
		CurrentPlayer: e.CurrentPlayer(),
		KickedCount:   e.KickedCount(),
		GeeseCount:    e.GeeseRemaining(),
	}, nil
}

// GetDefault returns the default starting position
func (m *Manager) GetDefault() *service.GameConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultConfig
}

// SetDefault sets the default starting position by name
func (m *Manager) SetDefault(name string) error {
	config, err := m.LoadConfig(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultConfig = config
	return nil
}

// RefreshCache drops cached positions so the next load rereads the files
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*service.GameConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

func (m *Manager) loadDefaultConfig() error {
	config, err := m.LoadConfig(StandardName)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.defaultConfig = config
	m.mu.Unlock()
	return nil
}

// SaveConfig validates a starting position and writes it to disk
func (m *Manager) SaveConfig(name string, config *service.GameConfig) error {
	name = strings.TrimSuffix(name, ".json")
	if !validName(name) {
		return fmt.Errorf("%w: bad name %q", ErrInvalidConfig, name)
	}
	if config == nil {
		return fmt.Errorf("%w: missing position", ErrInvalidConfig)
	}
	if _, err := config.NewEngine(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(m.path(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	m.mu.Lock()
	m.configs[name] = config
	m.mu.Unlock()

	return nil
}

func (m *Manager) path(name string) string {
	return filepath.Join(m.configDir, name+".json")
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`)
}
