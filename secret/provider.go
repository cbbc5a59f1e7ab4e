package secret

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Provider resolves secrets by reference string.
//
// Implementations must be safe for concurrent use and must not log secret values.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, ref string) (string, error)
	Close() error
}

// EnvProvider resolves a reference as an environment variable name.
type EnvProvider struct {
	// Prefix is prepended to every reference, e.g. "HEALTHOPS_SECRET_".
	Prefix string
}

// Name returns "env".
func (p EnvProvider) Name() string { return "env" }

// Resolve returns the value of the environment variable Prefix+ref.
func (p EnvProvider) Resolve(_ context.Context, ref string) (string, error) {
	key := p.Prefix + ref
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", fmt.Errorf("%w: env %s", ErrNotFound, key)
	}
	return value, nil
}

// Close is a no-op.
func (p EnvProvider) Close() error { return nil }

// FileProvider resolves a reference as a file path, the way mounted
// container secrets are read.
type FileProvider struct {
	// Dir anchors relative references. Absolute references ignore it.
	Dir string
}

// Name returns "file".
func (p FileProvider) Name() string { return "file" }

// Resolve returns the file contents with trailing newlines removed.
func (p FileProvider) Resolve(_ context.Context, ref string) (string, error) {
	path := ref
	if !filepath.IsAbs(path) && p.Dir != "" {
		path = filepath.Join(p.Dir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: file %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("secret: read %s: %w", path, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}

// Close is a no-op.
func (p FileProvider) Close() error { return nil }
