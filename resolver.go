package sensitivestring

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strings"
)

// errSourceEmpty marks a source that holds no value, so resolution moves on
// to the next source.
var errSourceEmpty = errors.New("source is empty")

// ExecFunc runs a shell command and returns its output.
type ExecFunc func(ctx context.Context, cmd, input, dir string, envList []string) (string, error)

// Resolver reads a secret from an ordered list of sources. The first source
// holding a non-empty value wins.
type Resolver struct {
	sources []Source
	execute ExecFunc
}

func NewResolver(sources ...Source) *Resolver {
	return &Resolver{
		sources: sources,
		execute: execute,
	}
}

// SetExecutionFunc replaces the shell interpreter used by command sources.
func (r *Resolver) SetExecutionFunc(fn ExecFunc) {
	r.execute = fn
}

// Resolve returns the value of the first source that yields one.
// Sources that are unset or empty are skipped; any other failure stops
// resolution and is returned.
func (r *Resolver) Resolve(ctx context.Context) (SensitiveString, error) {
	if len(r.sources) == 0 {
		return SensitiveString{}, fmt.Errorf("%w: no sources configured", ErrInvalidConfig)
	}

	for _, source := range r.sources {
		if err := source.Validate(); err != nil {
			return SensitiveString{}, err
		}

		secret, err := r.resolveSource(ctx, source)
		if errors.Is(err, errSourceEmpty) {
			continue
		}
		if err != nil {
			return SensitiveString{}, fmt.Errorf("%s source: %w", source.Type, err)
		}
		return secret, nil
	}

	return SensitiveString{}, ErrSourceNotFound
}

func (r *Resolver) resolveSource(ctx context.Context, source Source) (SensitiveString, error) {
	switch source.Type {
	case SourceTypeEnv:
		return r.fromEnvironment(source.Name)
	case SourceTypeFile:
		return r.fromFile(source.Path)
	case SourceTypeKeyring:
		return r.fromKeyring(source.Service, source.Name)
	case SourceTypeCommand:
		return r.fromCommand(ctx, source)
	case SourceTypeAgeFile:
		return r.fromAgeFile(source.Path, source.Identity)
	}
	return SensitiveString{}, fmt.Errorf("%w: unsupported source type: %q", ErrInvalidSource, source.Type)
}

func (r *Resolver) fromEnvironment(name string) (SensitiveString, error) {
	value, ok := os.LookupEnv(name)
	if !ok || value == "" {
		return SensitiveString{}, errSourceEmpty
	}
	return New(value), nil
}

func (r *Resolver) fromFile(path string) (SensitiveString, error) {
	expandedPath, err := expandPath(path)
	if err != nil {
		return SensitiveString{}, fmt.Errorf("failed to expand secret file path %s: %w", path, err)
	}

	if err := checkPermissions(expandedPath); err != nil {
		return SensitiveString{}, err
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		return SensitiveString{}, fmt.Errorf("failed to read secret file %s: %w", expandedPath, err)
	}

	value := strings.TrimRight(string(data), "\r\n")
	if value == "" {
		return SensitiveString{}, errSourceEmpty
	}
	return New(value), nil
}

// checkPermissions rejects secret files readable or writable by any user.
// A missing file is reported as an empty source.
func checkPermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errSourceEmpty
		}
		return fmt.Errorf("failed to stat secret file %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrInvalidSource, path)
	}
	// windows does not report unix permission bits
	if runtime.GOOS == "windows" {
		return nil
	}
	if perm := info.Mode().Perm(); perm&0o007 != 0 {
		return NewSourcePathError(path, fmt.Errorf("mode %s grants access to other users", perm))
	}
	return nil
}

// Load resolves a secret from the sources configured by opts.
func Load(ctx context.Context, opts ...Option) (SensitiveString, error) {
	config := &Config{}
	for _, opt := range opts {
		opt(config)
	}
	if err := config.Validate(); err != nil {
		return SensitiveString{}, err
	}
	return NewResolver(config.Sources...).Resolve(ctx)
}
