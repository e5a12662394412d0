package conf

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/propbind/propbind/source"
)

func init() {
	sources := &ConfigSource{
		Path:      "/etc/propbind/config.toml",
		DropInDir: "/etc/propbind/config.toml.d/",
	}
	config, err := sources.Read()
	if err != nil {
		slog.Warn("falling back to default configuration", "error", err)
		config = Defaults()
	}
	Configuration = config
}

// defaultConfig is the base layer applied before any file on disk.
//
//go:embed default.toml
var defaultConfig string

// Configuration is the global immutable state.
var Configuration Config

// Config represents the immutable public configuration object.
type Config struct {
	BaseDir          string
	PreferFilesystem bool
	UseCache         bool
	CacheSize        int
	LogLevel         slog.Level
}

// Defaults returns the embedded default configuration.
func Defaults() Config {
	dto, err := parseConfigDTO(defaultConfig)
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded defaults: %v", err))
	}
	var c Config
	c.Update(dto)
	return c
}

// Update applies non-nil values from a configDTO.
func (c *Config) Update(dto configDTO) {
	if dto.BaseDir != nil {
		c.BaseDir = *dto.BaseDir
	}
	if dto.PreferFilesystem != nil {
		c.PreferFilesystem = *dto.PreferFilesystem
	}
	if dto.UseCache != nil {
		c.UseCache = *dto.UseCache
	}
	if dto.CacheSize != nil {
		c.CacheSize = *dto.CacheSize
	}
	if dto.LogLevel != nil {
		var level slog.Level
		if err := level.UnmarshalText([]byte(*dto.LogLevel)); err == nil {
			c.LogLevel = level
		}
	}
}

// SourceConfig returns the properties loader settings.
func (c Config) SourceConfig() source.Config {
	return source.Config{
		BaseDir:          c.BaseDir,
		PreferFilesystem: c.PreferFilesystem,
		UseCache:         c.UseCache,
		CacheSize:        c.CacheSize,
	}
}

// ConfigSource orchestrates loading configuration from multiple sources.
// See the Read method.
type ConfigSource struct {
	Path      string
	DropInDir string
}

// Read loads and returns the complete Config by merging all layers:
// 1. Embedded defaults
// 2. Main configuration file
// 3. Drop-in files
func (cs *ConfigSource) Read() (Config, error) {
	resolved := Config{}

	dto, err := parseConfigDTO(defaultConfig)
	if err != nil {
		slog.Error("failed to parse embedded defaults", "error", err)
		return resolved, fmt.Errorf("failed to parse embedded defaults: %w", err)
	}
	resolved.Update(dto)

	data, err := os.ReadFile(cs.Path)
	if err != nil {
		if !os.IsNotExist(err) {
			return resolved, fmt.Errorf("failed to load %s: %w", cs.Path, err)
		}
	} else {
		mainDTO, err := parseConfigDTO(string(data))
		if err != nil {
			// A present but malformed file is an error, not a silent fallback.
			return resolved, fmt.Errorf("failed to parse %s: %w", cs.Path, err)
		}
		resolved.Update(mainDTO)
	}

	dropInDTOs, err := cs.parseDropInFiles()
	if err != nil {
		slog.Error("failed to load drop-in files", "error", err, "dir", cs.DropInDir)
		return resolved, err
	}
	for _, dropInDTO := range dropInDTOs {
		resolved.Update(dropInDTO)
	}

	return resolved, nil
}

type configDTO struct {
	BaseDir          *string `toml:"base-dir"`
	PreferFilesystem *bool   `toml:"prefer-filesystem"`
	UseCache         *bool   `toml:"use-cache"`
	CacheSize        *int    `toml:"cache-size"`
	LogLevel         *string `toml:"log-level"`
}

// parseConfigDTO parses and validates a TOML string.
func parseConfigDTO(data string) (configDTO, error) {
	var dto configDTO

	if err := toml.Unmarshal([]byte(data), &dto); err != nil {
		return dto, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if dto.CacheSize != nil && *dto.CacheSize < 0 {
		return dto, fmt.Errorf("cache-size must not be negative, got %d", *dto.CacheSize)
	}
	if dto.LogLevel != nil {
		var level slog.Level
		if err := level.UnmarshalText([]byte(*dto.LogLevel)); err != nil {
			return dto, fmt.Errorf("invalid log-level %q: %w", *dto.LogLevel, err)
		}
	}

	return dto, nil
}

// findDropInFiles returns sorted paths to drop-in configuration files,
// or nil when the drop-in directory doesn't exist.
func (cs *ConfigSource) findDropInFiles() ([]string, error) {
	if _, err := os.Stat(cs.DropInDir); os.IsNotExist(err) {
		return nil, nil
	}

	entries, err := os.ReadDir(cs.DropInDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read drop-in directory %s: %w", cs.DropInDir, err)
	}

	var filenames []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".toml") {
			filenames = append(filenames, filepath.Join(cs.DropInDir, entry.Name()))
		}
	}
	sort.Strings(filenames)

	return filenames, nil
}

// parseDropInFiles loads .toml files.
func (cs *ConfigSource) parseDropInFiles() ([]configDTO, error) {
	paths, err := cs.findDropInFiles()
	if err != nil {
		return nil, err
	}

	var dtos []configDTO
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		dto, err := parseConfigDTO(string(data))
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}

		dtos = append(dtos, dto)
	}

	return dtos, nil
}
