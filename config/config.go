// Package config handles garnet.toml runtime configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/chazu/garnet/vm"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "garnet.toml"

// Sort algorithm names accepted in [runtime] sort.
const (
	SortQuick     = "quick"
	SortInsertion = "insertion"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config represents a garnet.toml file.
type Config struct {
	Runtime RuntimeConfig `toml:"runtime"`
	Log     LogConfig     `toml:"log"`
	Store   StoreConfig   `toml:"store"`

	// Dir is the directory containing the garnet.toml file (set at load
	// time), or the working directory for the defaults.
	Dir string `toml:"-"`
}

// RuntimeConfig tunes the interpreter.
type RuntimeConfig struct {
	ExprCacheCapacity int    `toml:"expr-cache-capacity"`
	Sort              string `toml:"sort"`
}

// LogConfig configures commonlog.
type LogConfig struct {
	// Verbosity follows commonlog.VerbosityToMaxLevel: 0 logs notices and
	// above, 1 adds info, 2 adds debug, -4 silences everything.
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// StoreConfig locates the global variable database.
type StoreConfig struct {
	Path string `toml:"path"`
}

// Default returns the configuration used when no garnet.toml is found.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	if wd, err := os.Getwd(); err == nil {
		c.Dir = wd
	}
	return c
}

func (c *Config) applyDefaults() {
	if c.Runtime.ExprCacheCapacity == 0 {
		c.Runtime.ExprCacheCapacity = vm.DefaultExprCacheCapacity
	}
	if c.Runtime.Sort == "" {
		c.Runtime.Sort = SortQuick
	}
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(".garnet", "globals.db")
	}
}

// Validate reports the first setting that cannot be used.
func (c *Config) Validate() error {
	if c.Runtime.ExprCacheCapacity < 0 {
		return fmt.Errorf("%w: runtime.expr-cache-capacity must not be negative, got %d", ErrInvalid, c.Runtime.ExprCacheCapacity)
	}
	switch c.Runtime.Sort {
	case SortQuick, SortInsertion:
	default:
		return fmt.Errorf("%w: runtime.sort must be %q or %q, got %q", ErrInvalid, SortQuick, SortInsertion, c.Runtime.Sort)
	}
	if c.Log.Verbosity < -4 {
		return fmt.Errorf("%w: log.verbosity must be at least -4, got %d", ErrInvalid, c.Log.Verbosity)
	}
	return nil
}

// Load parses the garnet.toml file in dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, FileName))
}

// LoadFile parses a configuration file at an explicit path. Unknown keys
// are an error.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%w: unknown keys in %s: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}

	c.Dir, err = filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", path, err)
	}
	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find a garnet.toml file, then loads
// and returns it. Returns nil if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, nil
		}
		dir = parent
	}
}

// Resolve loads explicit when it is set, otherwise the nearest garnet.toml
// above startDir, otherwise the defaults.
func Resolve(explicit, startDir string) (*Config, error) {
	if explicit != "" {
		return LoadFile(explicit)
	}
	c, err := FindAndLoad(startDir)
	if err != nil || c != nil {
		return c, err
	}
	return Default(), nil
}

// RuntimeOptions converts the [runtime] section into vm options.
func (c *Config) RuntimeOptions() vm.Options {
	return vm.Options{ExprCacheCapacity: c.Runtime.ExprCacheCapacity}
}

// Sorter returns the configured sort algorithm.
func (c *Config) Sorter() func(context.Context, []vm.Value, vm.Less) error {
	if c.Runtime.Sort == SortInsertion {
		return vm.InsertionSort
	}
	return vm.QuickSort
}

// StorePath returns the database path, resolved against Dir when relative.
func (c *Config) StorePath() string {
	if c.Store.Path == ":memory:" || filepath.IsAbs(c.Store.Path) {
		return c.Store.Path
	}
	return filepath.Join(c.Dir, c.Store.Path)
}

// LogPath returns the log file path resolved against Dir, or "" for stderr.
func (c *Config) LogPath() string {
	if c.Log.File == "" || filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(c.Dir, c.Log.File)
}
