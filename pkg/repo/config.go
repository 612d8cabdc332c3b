package repo

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/klauspost/compress/zlib"
)

// Config stores repository-local settings from .wit/config.toml.
type Config struct {
	Core CoreConfig `toml:"core"`
	User UserConfig `toml:"user"`
}

// CoreConfig controls how objects are stored and checked out.
type CoreConfig struct {
	// Compression is the zlib level for new objects, -2 (Huffman only)
	// through 9. -1 selects zlib's default.
	Compression int `toml:"compression"`
	// FileMode honours the executable bit of tree leaves on checkout.
	FileMode bool `toml:"filemode"`
}

// UserConfig identifies the author of new commits and tags.
type UserConfig struct {
	Name  string `toml:"name"`
	Email string `toml:"email"`
}

// DefaultConfig returns the configuration written by Init.
func DefaultConfig() *Config {
	return &Config{
		Core: CoreConfig{
			Compression: zlib.DefaultCompression,
			FileMode:    true,
		},
	}
}

// Identity returns "Name <email>", or "" when no name is configured.
func (c *Config) Identity() string {
	name := strings.TrimSpace(c.User.Name)
	if name == "" {
		return ""
	}
	return fmt.Sprintf("%s <%s>", name, strings.TrimSpace(c.User.Email))
}

func (c *Config) validate() error {
	if c.Core.Compression < zlib.HuffmanOnly || c.Core.Compression > zlib.BestCompression {
		return fmt.Errorf("core.compression %d out of range [%d, %d]", c.Core.Compression, zlib.HuffmanOnly, zlib.BestCompression)
	}
	return nil
}

func (r *Repo) configPath() string {
	return r.Path("config.toml")
}

// ReadConfig reads .wit/config.toml. Missing config returns the defaults;
// keys absent from the file keep their default values.
func (r *Repo) ReadConfig() (*Config, error) {
	cfg := DefaultConfig()
	if _, err := toml.DecodeFile(r.configPath(), cfg); err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// WriteConfig atomically writes .wit/config.toml.
func (r *Repo) WriteConfig(cfg *Config) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("write config: %w", err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("write config: encode: %w", err)
	}

	tmp, err := os.CreateTemp(r.WitDir, ".config-tmp-*")
	if err != nil {
		return fmt.Errorf("write config: tmpfile: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write config: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: close: %w", err)
	}
	if err := os.Rename(tmpName, r.configPath()); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write config: rename: %w", err)
	}
	r.Config = cfg
	return nil
}
