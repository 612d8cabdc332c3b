package repo

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/odvcencio/wit/pkg/object"
)

// Repo represents an opened wit repository. It is the object.Repository
// every object read from or written to it is bound to.
type Repo struct {
	RootDir string  // working directory root
	WitDir  string  // .wit/ directory
	Config  *Config // contents of .wit/config.toml

	logger *zap.Logger
}

var _ object.Repository = (*Repo)(nil)

// WithLogger sets the logger used for debug output and returns r.
func (r *Repo) WithLogger(logger *zap.Logger) *Repo {
	r.logger = logger
	return r
}

func (r *Repo) log() *zap.Logger {
	if r.logger == nil {
		return zap.NewNop()
	}
	return r.logger
}

// Path joins parts onto the .wit directory without touching the filesystem.
func (r *Repo) Path(parts ...string) string {
	return filepath.Join(append([]string{r.WitDir}, parts...)...)
}

// File returns the path of a file under .wit. With create set, missing
// parent directories are created; otherwise the parent directory must
// already exist. The file itself need not exist.
func (r *Repo) File(create bool, parts ...string) (string, error) {
	if len(parts) == 0 {
		return "", fmt.Errorf("repo file: empty path")
	}
	if _, err := r.Dir(create, parts[:len(parts)-1]...); err != nil {
		return "", err
	}
	return r.Path(parts...), nil
}

// Dir returns the path of a directory under .wit. With create set, the
// directory and its parents are created; otherwise it must already exist.
func (r *Repo) Dir(create bool, parts ...string) (string, error) {
	path := r.Path(parts...)

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return "", fmt.Errorf("repo dir %s: not a directory", path)
		}
		return path, nil
	case !os.IsNotExist(err):
		return "", fmt.Errorf("repo dir %s: %w", path, err)
	case !create:
		return "", fmt.Errorf("repo dir %s: %w", path, err)
	}

	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("repo dir %s: mkdir: %w", path, err)
	}
	return path, nil
}

// CompressionLevel returns the zlib level configured in core.compression.
func (r *Repo) CompressionLevel() int {
	if r.Config == nil {
		return DefaultConfig().Core.Compression
	}
	return r.Config.Core.Compression
}

// Read loads an object from this repository.
func (r *Repo) Read(h object.Hash) (object.Object, error) {
	return object.Read(r, h)
}

// Write persists obj, which must be bound to this repository.
func (r *Repo) Write(obj object.Object) (object.Hash, error) {
	h, err := object.Write(obj, true)
	if err != nil {
		return "", err
	}
	r.log().Debug("object written", zap.String("hash", string(h)), zap.String("type", string(obj.Type())))
	return h, nil
}
