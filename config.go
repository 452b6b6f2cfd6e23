package sensitivestring

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type SourceType string

const (
	SourceTypeEnv     SourceType = "env"
	SourceTypeFile    SourceType = "file"
	SourceTypeKeyring SourceType = "keyring"
	SourceTypeCommand SourceType = "command"
	SourceTypeAgeFile SourceType = "age-file"
)

// Source describes one place a secret can be read from.
type Source struct {
	// Type of source
	// Must be one of: "env", "file", "keyring", "command", "age-file"
	Type SourceType `json:"type" yaml:"type"`

	// Name is the environment variable name ("env"), the keyring user
	// ("keyring"), or the key made available to command templates ("command").
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Path to the secret file ("file", "age-file")
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Service is the keyring service name ("keyring")
	Service string `json:"service,omitempty" yaml:"service,omitempty"`

	// Command template executed with a POSIX shell interpreter ("command")
	Command string `json:"command,omitempty" yaml:"command,omitempty"`

	// Identity is the path to an age identity file ("age-file")
	Identity string `json:"identity,omitempty" yaml:"identity,omitempty"`

	// Dir is the working directory for commands
	Dir string `json:"dir,omitempty" yaml:"dir,omitempty"`

	// Timeout for command execution, parsed with time.ParseDuration
	Timeout string `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Environment variables for commands
	Environment map[string]string `json:"environment,omitempty" yaml:"environment,omitempty"`
}

func (s Source) Validate() error {
	switch s.Type {
	case SourceTypeEnv:
		if s.Name == "" {
			return fmt.Errorf("%w: env source requires a variable name", ErrInvalidSource)
		}
	case SourceTypeFile:
		if s.Path == "" {
			return fmt.Errorf("%w: file source requires a path", ErrInvalidSource)
		}
	case SourceTypeKeyring:
		if s.Service == "" || s.Name == "" {
			return fmt.Errorf("%w: keyring source requires a service and a name", ErrInvalidSource)
		}
	case SourceTypeCommand:
		if strings.TrimSpace(s.Command) == "" {
			return fmt.Errorf("%w: command source requires a command", ErrInvalidSource)
		}
		if s.Timeout != "" {
			if _, err := time.ParseDuration(s.Timeout); err != nil {
				return fmt.Errorf("%w: invalid timeout duration: %w", ErrInvalidSource, err)
			}
		}
	case SourceTypeAgeFile:
		if s.Path == "" || s.Identity == "" {
			return fmt.Errorf("%w: age-file source requires a path and an identity", ErrInvalidSource)
		}
	default:
		return fmt.Errorf("%w: unsupported source type: %q", ErrInvalidSource, s.Type)
	}
	return nil
}

// Config lists the sources a secret is resolved from, in order of preference.
type Config struct {
	Sources []Source `json:"sources" yaml:"sources"`
}

func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("%w: at least one source is required", ErrInvalidConfig)
	}
	for i, src := range c.Sources {
		if err := src.Validate(); err != nil {
			return fmt.Errorf("%w: source %d: %w", ErrInvalidConfig, i, err)
		}
	}
	return nil
}

type Option func(*Config)

// WithEnv reads the secret from an environment variable
func WithEnv(name string) Option {
	return func(c *Config) {
		c.Sources = append(c.Sources, Source{Type: SourceTypeEnv, Name: name})
	}
}

// WithFile reads the secret from a file
func WithFile(path string) Option {
	return func(c *Config) {
		c.Sources = append(c.Sources, Source{Type: SourceTypeFile, Path: path})
	}
}

// WithKeyring reads the secret from the system keyring
func WithKeyring(service, name string) Option {
	return func(c *Config) {
		c.Sources = append(c.Sources, Source{Type: SourceTypeKeyring, Service: service, Name: name})
	}
}

// WithCommand reads the secret from the output of a shell command
func WithCommand(command string) Option {
	return func(c *Config) {
		c.Sources = append(c.Sources, Source{Type: SourceTypeCommand, Command: command})
	}
}

// WithAgeFile reads the secret from an age-encrypted file
func WithAgeFile(path, identityPath string) Option {
	return func(c *Config) {
		c.Sources = append(c.Sources, Source{Type: SourceTypeAgeFile, Path: path, Identity: identityPath})
	}
}

// WithSources appends preconfigured sources
func WithSources(sources ...Source) Option {
	return func(c *Config) {
		c.Sources = append(c.Sources, sources...)
	}
}

// LoadConfig reads a source configuration from a JSON or YAML file.
// The format is chosen by the file extension; anything other than .json is parsed as YAML.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if isJSON(path) {
		err = json.Unmarshal(data, &config)
	} else {
		err = yaml.Unmarshal(data, &config)
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	return config, nil
}

// SaveConfig writes the source configuration to a JSON or YAML file
func SaveConfig(config Config, path string) error {
	if err := config.Validate(); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(config, "", "  ")
	} else {
		data, err = yaml.Marshal(config)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write temp config file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		_ = os.Remove(tempFile)
		return fmt.Errorf("failed to move config file: %w", err)
	}

	return nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}
