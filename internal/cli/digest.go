package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/flowexec/sensitivestring"
	"github.com/flowexec/sensitivestring/digest"
)

// sourceFlags selects where a command reads its secret from.
type sourceFlags struct {
	config   string
	env      string
	file     string
	keyring  string
	command  string
	ageFile  string
	identity string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.config, "config", "", "JSON or YAML file listing secret sources")
	cmd.Flags().StringVar(&f.env, "env", "", "Read the secret from this environment variable")
	cmd.Flags().StringVar(&f.file, "file", "", "Read the secret from this file")
	cmd.Flags().StringVar(&f.keyring, "keyring", "", "Read the secret from the system keyring (service/name)")
	cmd.Flags().StringVar(&f.command, "command", "", "Read the secret from the output of a shell command")
	cmd.Flags().StringVar(&f.ageFile, "age-file", "", "Read the secret from an age-encrypted file")
	cmd.Flags().StringVar(&f.identity, "identity", "", "age identity file for --age-file")
}

func (f *sourceFlags) options() ([]sensitivestring.Option, error) {
	var opts []sensitivestring.Option

	if f.config != "" {
		cfg, err := sensitivestring.LoadConfig(f.config)
		if err != nil {
			return nil, err
		}
		opts = append(opts, sensitivestring.WithSources(cfg.Sources...))
	}
	if f.env != "" {
		opts = append(opts, sensitivestring.WithEnv(f.env))
	}
	if f.file != "" {
		opts = append(opts, sensitivestring.WithFile(f.file))
	}
	if f.keyring != "" {
		service, name, ok := strings.Cut(f.keyring, "/")
		if !ok {
			return nil, fmt.Errorf("--keyring must have the form service/name")
		}
		opts = append(opts, sensitivestring.WithKeyring(service, name))
	}
	if f.command != "" {
		opts = append(opts, sensitivestring.WithCommand(f.command))
	}
	if f.ageFile != "" {
		if f.identity == "" {
			return nil, fmt.Errorf("--age-file requires --identity")
		}
		opts = append(opts, sensitivestring.WithAgeFile(f.ageFile, f.identity))
	}
	return opts, nil
}

// readSecret resolves the secret from the configured sources, or from the
// terminal or stdin when no source is given.
func (a *app) readSecret(cmd *cobra.Command, flags *sourceFlags) (sensitivestring.SensitiveString, error) {
	opts, err := flags.options()
	if err != nil {
		return sensitivestring.SensitiveString{}, err
	}

	if len(opts) == 0 {
		return a.readInput()
	}

	secret, err := sensitivestring.Load(cmd.Context(), opts...)
	if err != nil {
		return sensitivestring.SensitiveString{}, fmt.Errorf("resolving secret: %w", err)
	}
	a.logger.Debug("resolved secret", "secret", secret, "length", secret.Len())
	return secret, nil
}

func (a *app) readInput() (sensitivestring.SensitiveString, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.stderr, "Secret: ")
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stderr)
		if err != nil {
			return sensitivestring.SensitiveString{}, fmt.Errorf("reading secret from terminal: %w", err)
		}
		return sensitivestring.FromBytes(data), nil
	}

	data, err := io.ReadAll(a.stdin)
	if err != nil {
		return sensitivestring.SensitiveString{}, fmt.Errorf("reading secret from stdin: %w", err)
	}
	a.logger.Debug("read secret from stdin", "bytes", len(data))
	return sensitivestring.New(strings.TrimRight(string(data), "\r\n")), nil
}

func (a *app) digestCmd() *cobra.Command {
	flags := &sourceFlags{}
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Print the digest of a secret",
		Long: "Print the sha256 digest a SensitiveString holding the secret renders as. " +
			"Without a source flag the secret is read from the terminal without echo, or from stdin.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := a.readSecret(cmd, flags)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, secret)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	flags := &sourceFlags{}
	cmd := &cobra.Command{
		Use:   "verify <digest>",
		Short: "Check whether a secret produced a digest",
		Long: "Check whether the secret hashes to the given sha256:<hex> digest, " +
			"for example one found in a log. Exits 1 when it does not.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			want := strings.TrimSpace(args[0])
			if !digest.Valid(want) {
				return fmt.Errorf("%w: %q", digest.ErrInvalidDigest, want)
			}

			secret, err := a.readSecret(cmd, flags)
			if err != nil {
				return err
			}

			if !digest.Match(secret.Reveal(), want) {
				fmt.Fprintln(a.stdout, "mismatch")
				return errMismatch
			}
			fmt.Fprintln(a.stdout, "match")
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}
