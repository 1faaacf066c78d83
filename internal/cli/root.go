package cli

import (
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/canon/internal/derive"
)

// ErrStale is returned by --check when a generated file is missing or out
// of date.
var ErrStale = errors.New("generated file is stale")

// RootOptions holds the flags of canongen.
type RootOptions struct {
	Output      string
	ConfigPath  string
	CanonImport string
	Check       bool
	Verbose     bool
	Jobs        int
}

// NewRootCommand creates the canongen command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "canongen [dir...]",
		Short: "Generate canonical forms for //canon:derive types",
		Long: `canongen reads the Go package in each directory (default ".") and writes
a file declaring, for every struct marked //canon:derive, a shadow type with
canon.Handle fields for its canon:"intern" fields, a store, an Intern method
and a Resolve method.

Use it from go generate:

	//go:generate go run github.com/hupe1980/canon/cmd/canongen`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				args = []string{"."}
			}
			return run(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", derive.DefaultOutput, "generated file name, relative to each directory")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default: "+DefaultConfigFile+" in each directory, if present)")
	cmd.Flags().StringVar(&opts.CanonImport, "canon-import", derive.DefaultCanonImport, "import path of the canon runtime package")
	cmd.Flags().BoolVar(&opts.Check, "check", false, "fail if a generated file is missing or stale instead of writing it")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 4, "directories processed concurrently")

	return cmd
}

func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}
