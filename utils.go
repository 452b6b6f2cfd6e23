package sensitivestring

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// expandPath resolves "~", "$VAR" and relative prefixes into an absolute path.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}

	switch {
	case path == "~" || strings.HasPrefix(path, "~/"):
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("unable to determine home directory: %w", err)
		}
		return filepath.Join(homeDir, path[1:]), nil
	case strings.HasPrefix(path, "$"):
		name, rest, _ := strings.Cut(path[1:], "/")
		value, exists := os.LookupEnv(name)
		if !exists {
			return "", fmt.Errorf("environment variable %s is not set", name)
		}
		return filepath.Clean(filepath.Join(value, rest)), nil
	case filepath.IsAbs(path):
		return filepath.Clean(path), nil
	default:
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("unable to determine working directory: %w", err)
		}
		return filepath.Join(wd, path), nil
	}
}

// expandEnv expands $VAR references in the values of env.
func expandEnv(env map[string]string) map[string]string {
	expanded := make(map[string]string, len(env))
	for k, v := range env {
		if strings.Contains(v, "$") {
			v = os.ExpandEnv(v)
		}
		expanded[k] = v
	}
	return expanded
}
