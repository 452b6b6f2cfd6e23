package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

const (
	ExitSuccess  = 0
	ExitMismatch = 1
	ExitError    = 2
)

// errMismatch is returned by verify when the secret does not match the digest.
var errMismatch = errors.New("digest does not match")

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger

	verbose bool
}

// NewRootCmd builds the command tree reading from stdin and writing to
// stdout and stderr.
func NewRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}

	rootCmd := &cobra.Command{
		Use:   "sensitivestring",
		Short: "Fingerprint secrets without printing them",
		Long: "sensitivestring computes the sha256 digests that SensitiveString values render as, " +
			"so secrets seen in logs and serialized configs can be identified without exposing them.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if a.verbose {
				level = slog.LevelDebug
			}
			a.logger = slog.New(slog.NewTextHandler(a.stderr, &slog.HandlerOptions{Level: level}))
		},
	}
	rootCmd.SetIn(stdin)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(a.digestCmd())
	rootCmd.AddCommand(a.verifyCmd())
	rootCmd.AddCommand(a.maskCmd())
	rootCmd.AddCommand(a.versionCmd())

	return rootCmd
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print sensitivestring version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "sensitivestring version %s\n", version)
		},
	}
}

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	rootCmd := NewRootCmd(os.Stdin, os.Stdout, os.Stderr)
	rootCmd.SetArgs(args)
	return exitCode(rootCmd.Execute(), os.Stderr)
}

func exitCode(err error, stderr io.Writer) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, errMismatch):
		return ExitMismatch
	default:
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
}
