package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/flowexec/sensitivestring"
)

const (
	outputYAML = "yaml"
	outputJSON = "json"
)

func (a *app) maskCmd() *cobra.Command {
	var (
		fields string
		output string
	)
	cmd := &cobra.Command{
		Use:   "mask [file]",
		Short: "Replace secret fields of a YAML or JSON document with their digests",
		Long: "Read a YAML or JSON document from a file or stdin and print it with the values " +
			"of the named fields, at any depth, replaced by their sha256 digests.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names := splitComma(fields)
			if len(names) == 0 {
				return fmt.Errorf("--field is required")
			}

			path := "-"
			if len(args) == 1 {
				path = args[0]
			}
			data, err := a.readDocument(path)
			if err != nil {
				return err
			}

			if output == "" {
				output = outputYAML
				if strings.EqualFold(filepath.Ext(path), ".json") {
					output = outputJSON
				}
			}

			out, masked, err := maskDocument(data, names, output)
			if err != nil {
				return err
			}
			a.logger.Debug("masked document", "path", path, "fields", masked)
			_, err = a.stdout.Write(out)
			return err
		},
	}
	cmd.Flags().StringVarP(&fields, "field", "f", "", "Comma-separated field names to mask (case-insensitive)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output format: yaml or json (default from file extension)")
	return cmd
}

func (a *app) readDocument(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

// maskDocument decodes a YAML or JSON document, wraps the values of the
// named fields in SensitiveString and encodes it again. It returns the
// encoded document and the number of masked values.
func maskDocument(data []byte, fields []string, output string) ([]byte, int, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, 0, fmt.Errorf("parsing document: %w", err)
	}

	m := &masker{fields: fields}
	doc, err := m.walk(doc, false)
	if err != nil {
		return nil, 0, err
	}

	switch output {
	case outputYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return nil, 0, fmt.Errorf("encoding yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, 0, fmt.Errorf("encoding yaml: %w", err)
		}
		return buf.Bytes(), m.count, nil
	case outputJSON:
		out, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, 0, fmt.Errorf("encoding json: %w", err)
		}
		return append(out, '\n'), m.count, nil
	default:
		return nil, 0, fmt.Errorf("unsupported output format %q", output)
	}
}

type masker struct {
	fields []string
	count  int
}

func (m *masker) matches(key string) bool {
	for _, f := range m.fields {
		if strings.EqualFold(f, key) {
			return true
		}
	}
	return false
}

// walk returns a copy of v with scalars under matching keys wrapped. Once a
// key matches, every scalar below it is wrapped too. Non-string keys are
// converted to strings; two keys with the same string form are an error.
func (m *masker) walk(v any, masked bool) (any, error) {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			w, err := m.walk(child, masked || m.matches(k))
			if err != nil {
				return nil, err
			}
			out[k] = w
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(val))
		for k, child := range val {
			key := fmt.Sprint(k)
			if _, dup := out[key]; dup {
				return nil, fmt.Errorf("duplicate key %q after converting keys to strings", key)
			}
			w, err := m.walk(child, masked || m.matches(key))
			if err != nil {
				return nil, err
			}
			out[key] = w
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, child := range val {
			w, err := m.walk(child, masked)
			if err != nil {
				return nil, err
			}
			out[i] = w
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		if !masked {
			return val, nil
		}
		m.count++
		return sensitivestring.Of(val), nil
	}
}

func splitComma(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
