package sensitivestring_test

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/flowexec/sensitivestring"
)

func testConfig() sensitivestring.Config {
	return sensitivestring.Config{
		Sources: []sensitivestring.Source{
			{Type: sensitivestring.SourceTypeEnv, Name: "DB_PASSWORD"},
			{Type: sensitivestring.SourceTypeFile, Path: "~/.config/app/db-password"},
			{Type: sensitivestring.SourceTypeKeyring, Service: "app", Name: "db"},
			{
				Type:        sensitivestring.SourceTypeCommand,
				Command:     "op read op://vault/db/password",
				Timeout:     "5s",
				Environment: map[string]string{"OP_ACCOUNT": "acme"},
			},
			{Type: sensitivestring.SourceTypeAgeFile, Path: "db.age", Identity: "~/.age/key.txt"},
		},
	}
}

func TestConfig_SaveLoad(t *testing.T) {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "sources"+ext)

			if err := sensitivestring.SaveConfig(testConfig(), path); err != nil {
				t.Fatalf("SaveConfig() error = %v", err)
			}

			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("os.Stat() error = %v", err)
			}
			if perm := info.Mode().Perm(); perm != 0600 {
				t.Errorf("config file mode = %v, want 0600", perm)
			}

			loaded, err := sensitivestring.LoadConfig(path)
			if err != nil {
				t.Fatalf("LoadConfig() error = %v", err)
			}
			if !reflect.DeepEqual(loaded, testConfig()) {
				t.Errorf("LoadConfig() = %+v, want %+v", loaded, testConfig())
			}
		})
	}
}

func TestConfig_LoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	content := `sources:
  - type: env
    name: API_TOKEN
  - type: command
    command: echo fallback
    timeout: 1s
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := sensitivestring.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if len(cfg.Sources) != 2 {
		t.Fatalf("len(Sources) = %d, want 2", len(cfg.Sources))
	}
	if cfg.Sources[0].Type != sensitivestring.SourceTypeEnv || cfg.Sources[0].Name != "API_TOKEN" {
		t.Errorf("Sources[0] = %+v, want env API_TOKEN", cfg.Sources[0])
	}
	if cfg.Sources[1].Command != "echo fallback" || cfg.Sources[1].Timeout != "1s" {
		t.Errorf("Sources[1] = %+v, want command with 1s timeout", cfg.Sources[1])
	}
}

func TestConfig_LoadInvalid(t *testing.T) {
	dir := t.TempDir()

	if _, err := sensitivestring.LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("LoadConfig() of a missing file should fail")
	}

	invalid := filepath.Join(dir, "invalid.json")
	if err := os.WriteFile(invalid, []byte(`{"sources": [{"type": "env"}]}`), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	_, err := sensitivestring.LoadConfig(invalid)
	if !errors.Is(err, sensitivestring.ErrInvalidConfig) {
		t.Errorf("LoadConfig() error = %v, want ErrInvalidConfig", err)
	}
	if !errors.Is(err, sensitivestring.ErrInvalidSource) {
		t.Errorf("LoadConfig() error = %v, want ErrInvalidSource", err)
	}

	malformed := filepath.Join(dir, "malformed.json")
	if err := os.WriteFile(malformed, []byte(`{"sources": `), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := sensitivestring.LoadConfig(malformed); err == nil {
		t.Error("LoadConfig() of malformed JSON should fail")
	}
}

func TestSource_Validate(t *testing.T) {
	tests := []struct {
		name    string
		source  sensitivestring.Source
		wantErr bool
	}{
		{"env", sensitivestring.Source{Type: sensitivestring.SourceTypeEnv, Name: "X"}, false},
		{"env without name", sensitivestring.Source{Type: sensitivestring.SourceTypeEnv}, true},
		{"file", sensitivestring.Source{Type: sensitivestring.SourceTypeFile, Path: "x"}, false},
		{"file without path", sensitivestring.Source{Type: sensitivestring.SourceTypeFile}, true},
		{"keyring", sensitivestring.Source{Type: sensitivestring.SourceTypeKeyring, Service: "s", Name: "n"}, false},
		{"keyring without name", sensitivestring.Source{Type: sensitivestring.SourceTypeKeyring, Service: "s"}, true},
		{"command", sensitivestring.Source{Type: sensitivestring.SourceTypeCommand, Command: "echo"}, false},
		{"blank command", sensitivestring.Source{Type: sensitivestring.SourceTypeCommand, Command: "  "}, true},
		{"command with bad timeout", sensitivestring.Source{Type: sensitivestring.SourceTypeCommand, Command: "echo", Timeout: "soon"}, true},
		{"age-file", sensitivestring.Source{Type: sensitivestring.SourceTypeAgeFile, Path: "a", Identity: "b"}, false},
		{"age-file without identity", sensitivestring.Source{Type: sensitivestring.SourceTypeAgeFile, Path: "a"}, true},
		{"unknown", sensitivestring.Source{Type: "vault"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.source.Validate()
			if tt.wantErr && !errors.Is(err, sensitivestring.ErrInvalidSource) {
				t.Errorf("Validate() error = %v, want ErrInvalidSource", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v, want nil", err)
			}
		})
	}
}
