package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/popupkit/pkg/batch"
	"github.com/gnana997/popupkit/pkg/merger"
	"github.com/gnana997/popupkit/pkg/util"
	"github.com/gnana997/popupkit/pkg/watch"
)

const (
	defaultConfigPath  = ".popupkit/config.yaml"
	defaultPreviewAddr = "127.0.0.1:8787"
	configVersion      = "1"
)

// ProjectConfig holds the contents of .popupkit/config.yaml.
type ProjectConfig struct {
	Version    string         `yaml:"version"`
	Log        LogConfig      `yaml:"log"`
	Merge      merger.Options `yaml:"merge"`
	Include    []string       `yaml:"include"`
	Exclude    []string       `yaml:"exclude"`
	Workers    int            `yaml:"workers"`
	CacheSize  int            `yaml:"cache_size"`
	MCPLogPath string         `yaml:"mcp_log_path,omitempty"`
	Preview    PreviewConfig  `yaml:"preview"`
	Watch      WatchConfig    `yaml:"watch"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PreviewConfig struct {
	Addr string `yaml:"addr"`
}

type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// defaultProjectConfig is the configuration used when no file exists, and
// the one `popupkit init` writes.
func defaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Version: configVersion,
		Log:     LogConfig{Level: string(util.LevelInfo), Format: string(util.FormatText)},
		Merge:   merger.DefaultOptions(),
		Include: append([]string(nil), batch.DefaultInclude...),
		Exclude: append([]string(nil), batch.DefaultExclude...),
		Preview: PreviewConfig{Addr: defaultPreviewAddr},
		Watch:   WatchConfig{Debounce: watch.DefaultDebounce.String()},
	}
}

// loadProjectConfig reads the project config at path. A missing file yields
// the defaults unless required is set. Unset fields are defaulted.
func loadProjectConfig(path string, required bool) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		return defaultProjectConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *ProjectConfig) applyDefaults() {
	def := defaultProjectConfig()
	if c.Version == "" {
		c.Version = def.Version
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = def.Log.Format
	}
	c.Merge = c.Merge.WithDefaults()
	if len(c.Include) == 0 {
		c.Include = def.Include
	}
	// An explicit empty exclude list is kept.
	if c.Exclude == nil {
		c.Exclude = def.Exclude
	}
	if c.Preview.Addr == "" {
		c.Preview.Addr = def.Preview.Addr
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = def.Watch.Debounce
	}
}

func (c *ProjectConfig) validate() error {
	var errs []error
	if _, err := util.ParseLogLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	if _, err := util.ParseLogFormat(c.Log.Format); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if _, err := c.debounce(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (c *ProjectConfig) debounce() (time.Duration, error) {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid watch debounce %q", c.Watch.Debounce)
	}
	return d, nil
}

// writeProjectConfig writes cfg to path, creating the parent directory. It
// refuses to overwrite an existing file unless force is set.
func writeProjectConfig(path string, cfg *ProjectConfig, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
