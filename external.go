package sensitivestring

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jahvon/expression"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// fromCommand renders the source's command template, runs it and wraps its
// trimmed output.
func (r *Resolver) fromCommand(ctx context.Context, source Source) (SensitiveString, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if source.Timeout != "" {
		dur, err := time.ParseDuration(source.Timeout)
		if err != nil {
			return SensitiveString{}, fmt.Errorf("invalid timeout duration: %w", err)
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, dur)
		defer cancel()
	}

	env := expandEnv(source.Environment)
	cmd, err := renderCommand(source.Command, source.Name, env)
	if err != nil {
		return SensitiveString{}, fmt.Errorf("failed to render command: %w", err)
	}

	// stderr never reaches the returned error; it may contain the secret
	output, err := r.execute(ctx, cmd, "", source.Dir, environmentToSlice(env))
	if err != nil {
		return SensitiveString{}, fmt.Errorf("command failed: %w", err)
	}

	value := strings.TrimSpace(output)
	if value == "" {
		return SensitiveString{}, errSourceEmpty
	}
	return New(value), nil
}

func renderCommand(template, name string, env map[string]string) (string, error) {
	if !strings.Contains(template, "{{") {
		return template, nil
	}

	data := map[string]interface{}{
		"env":  env,
		"name": name,
		"key":  name,
	}

	tmpl := expression.NewTemplate(fmt.Sprintf("%s-command-template", name), data)
	if err := tmpl.Parse(template); err != nil {
		return "", fmt.Errorf("parsing command template: %w", err)
	}

	result, err := tmpl.ExecuteToString()
	if err != nil {
		return "", fmt.Errorf("evaluating command template: %w", err)
	}
	return result, nil
}

func environmentToSlice(env map[string]string) []string {
	envSlice := make([]string, 0, len(env))
	for key, value := range env {
		envSlice = append(envSlice, fmt.Sprintf("%s=%s", key, value))
	}
	return envSlice
}

// execute runs cmd with the mvdan.cc/sh interpreter and returns its stdout.
func execute(ctx context.Context, cmd, input, dir string, envList []string) (string, error) {
	parser := syntax.NewParser()
	prog, err := parser.Parse(strings.NewReader(strings.TrimSpace(cmd)), "")
	if err != nil {
		return "", fmt.Errorf("unable to parse command - %w", err)
	}

	envList = append(os.Environ(), envList...)

	stdOutBuffer := &strings.Builder{}
	stdErrBuffer := &strings.Builder{}

	opts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(envList...)),
		interp.StdIO(
			strings.NewReader(input),
			stdOutBuffer,
			stdErrBuffer,
		),
	}
	if dir != "" {
		opts = append(opts, interp.Dir(dir))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return "", fmt.Errorf("unable to create runner - %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return "", fmt.Errorf("command exited with non-zero status %w", exitStatus)
		}
		return "", fmt.Errorf("encountered an error executing command - %w", err)
	}
	return stdOutBuffer.String(), nil
}
