package sensitivestring_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/flowexec/sensitivestring"
)

func writeSecretFile(t *testing.T, dir, name, content string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), mode); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	if err := os.Chmod(path, mode); err != nil {
		t.Fatalf("failed to chmod %s: %v", name, err)
	}
	return path
}

func resolveOne(t *testing.T, source sensitivestring.Source) string {
	t.Helper()
	secret, err := sensitivestring.NewResolver(source).Resolve(context.Background())
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	return secret.Reveal()
}

func TestResolver_Env(t *testing.T) {
	t.Setenv("TEST_SECRET_TOKEN", "token-value")

	got := resolveOne(t, sensitivestring.Source{Type: sensitivestring.SourceTypeEnv, Name: "TEST_SECRET_TOKEN"})
	if got != "token-value" {
		t.Errorf("Reveal() = %q, want %q", got, "token-value")
	}
}

func TestResolver_File(t *testing.T) {
	dir := t.TempDir()
	path := writeSecretFile(t, dir, "secret.txt", "file-value\n", 0600)

	got := resolveOne(t, sensitivestring.Source{Type: sensitivestring.SourceTypeFile, Path: path})
	if got != "file-value" {
		t.Errorf("Reveal() = %q, want %q", got, "file-value")
	}
}

func TestResolver_FileFromEnvPath(t *testing.T) {
	dir := t.TempDir()
	writeSecretFile(t, dir, "secret.txt", "env-path-value", 0600)
	t.Setenv("TEST_SECRET_DIR", dir)

	got := resolveOne(t, sensitivestring.Source{Type: sensitivestring.SourceTypeFile, Path: "$TEST_SECRET_DIR/secret.txt"})
	if got != "env-path-value" {
		t.Errorf("Reveal() = %q, want %q", got, "env-path-value")
	}
}

func TestResolver_FileNotSecure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions are not available on windows")
	}
	dir := t.TempDir()
	path := writeSecretFile(t, dir, "secret.txt", "world-readable", 0644)

	_, err := sensitivestring.NewResolver(
		sensitivestring.Source{Type: sensitivestring.SourceTypeFile, Path: path},
	).Resolve(context.Background())
	if !errors.Is(err, sensitivestring.ErrPathNotSecure) {
		t.Fatalf("Resolve() error = %v, want ErrPathNotSecure", err)
	}

	var pathErr *sensitivestring.SourcePathError
	if !errors.As(err, &pathErr) {
		t.Fatalf("Resolve() error = %T, want *SourcePathError", err)
	}
	if pathErr.Path != path {
		t.Errorf("SourcePathError.Path = %q, want %q", pathErr.Path, path)
	}
	if strings.Contains(err.Error(), "world-readable") {
		t.Errorf("error message leaked file content: %v", err)
	}
}

func TestResolver_Order(t *testing.T) {
	dir := t.TempDir()
	path := writeSecretFile(t, dir, "secret.txt", "from-file", 0600)
	empty := writeSecretFile(t, dir, "empty.txt", "", 0600)
	t.Setenv("TEST_SECRET_SET", "from-env")
	t.Setenv("TEST_SECRET_EMPTY", "")

	tests := []struct {
		name    string
		sources []sensitivestring.Source
		want    string
	}{
		{
			name: "first source wins",
			sources: []sensitivestring.Source{
				{Type: sensitivestring.SourceTypeEnv, Name: "TEST_SECRET_SET"},
				{Type: sensitivestring.SourceTypeFile, Path: path},
			},
			want: "from-env",
		},
		{
			name: "unset env skipped",
			sources: []sensitivestring.Source{
				{Type: sensitivestring.SourceTypeEnv, Name: "TEST_SECRET_UNSET"},
				{Type: sensitivestring.SourceTypeFile, Path: path},
			},
			want: "from-file",
		},
		{
			name: "empty env and empty file skipped",
			sources: []sensitivestring.Source{
				{Type: sensitivestring.SourceTypeEnv, Name: "TEST_SECRET_EMPTY"},
				{Type: sensitivestring.SourceTypeFile, Path: empty},
				{Type: sensitivestring.SourceTypeFile, Path: filepath.Join(dir, "missing.txt")},
				{Type: sensitivestring.SourceTypeEnv, Name: "TEST_SECRET_SET"},
			},
			want: "from-env",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret, err := sensitivestring.NewResolver(tt.sources...).Resolve(context.Background())
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got := secret.Reveal(); got != tt.want {
				t.Errorf("Reveal() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResolver_NotFound(t *testing.T) {
	_, err := sensitivestring.NewResolver(
		sensitivestring.Source{Type: sensitivestring.SourceTypeEnv, Name: "TEST_SECRET_UNSET_1"},
		sensitivestring.Source{Type: sensitivestring.SourceTypeFile, Path: filepath.Join(t.TempDir(), "nope")},
	).Resolve(context.Background())
	if !errors.Is(err, sensitivestring.ErrSourceNotFound) {
		t.Errorf("Resolve() error = %v, want ErrSourceNotFound", err)
	}
}

func TestResolver_InvalidSources(t *testing.T) {
	_, err := sensitivestring.NewResolver().Resolve(context.Background())
	if !errors.Is(err, sensitivestring.ErrInvalidConfig) {
		t.Errorf("Resolve() with no sources error = %v, want ErrInvalidConfig", err)
	}

	_, err = sensitivestring.NewResolver(
		sensitivestring.Source{Type: "vault"},
	).Resolve(context.Background())
	if !errors.Is(err, sensitivestring.ErrInvalidSource) {
		t.Errorf("Resolve() with unknown source error = %v, want ErrInvalidSource", err)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_LOAD_SECRET", "loaded")

	secret, err := sensitivestring.Load(context.Background(),
		sensitivestring.WithEnv("TEST_LOAD_SECRET_UNSET"),
		sensitivestring.WithEnv("TEST_LOAD_SECRET"),
	)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := secret.Reveal(); got != "loaded" {
		t.Errorf("Reveal() = %q, want %q", got, "loaded")
	}

	if _, err := sensitivestring.Load(context.Background()); !errors.Is(err, sensitivestring.ErrInvalidConfig) {
		t.Errorf("Load() without options error = %v, want ErrInvalidConfig", err)
	}

	if _, err := sensitivestring.Load(context.Background(), sensitivestring.WithFile("")); !errors.Is(err, sensitivestring.ErrInvalidSource) {
		t.Errorf("Load() with empty file path error = %v, want ErrInvalidSource", err)
	}
}
