package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/canon/internal/derive"
	"github.com/hupe1980/canon/internal/resource"
)

func run(cmd *cobra.Command, opts *RootOptions, dirs []string) error {
	logger := newLogger(cmd, opts.Verbose)
	ctx := cmd.Context()

	rc := resource.NewController(resource.Config{
		MaxBackgroundWorkers: int64(max(opts.Jobs, 1)),
	})

	// Every directory is reported, so one failure does not cancel the rest.
	errs := make([]error, len(dirs))

	var (
		g          errgroup.Group
		acquireErr error
	)
	for i, dir := range dirs {
		if !rc.TryAcquireBackground() {
			logger.Debug("waiting for a job slot", "dir", dir)
			if err := rc.AcquireBackground(ctx); err != nil {
				acquireErr = err
				break
			}
		}
		g.Go(func() error {
			defer rc.ReleaseBackground()
			errs[i] = generateDir(cmd, opts, dir, logger.With("dir", dir))
			return errs[i]
		})
	}

	if err := g.Wait(); err != nil || acquireErr != nil {
		return errors.Join(append(errs, acquireErr)...)
	}
	return nil
}

func generateDir(cmd *cobra.Command, opts *RootOptions, dir string, logger *slog.Logger) error {
	cfg, err := resolveConfig(opts.ConfigPath, dir)
	if err != nil {
		return err
	}

	// Flags given explicitly override the config file.
	if cmd.Flags().Changed("output") || cfg.Output == "" {
		cfg.Output = opts.Output
	}
	if cmd.Flags().Changed("canon-import") || cfg.CanonImport == "" {
		cfg.CanonImport = opts.CanonImport
	}

	target := filepath.Join(dir, cfg.Output)

	out, err := derive.Generate(dir, cfg.derive())
	if errors.Is(err, derive.ErrNothingToGenerate) {
		logger.Warn("no //canon:derive types, skipping")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", dir, err)
	}

	current, err := os.ReadFile(target)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if bytes.Equal(current, out) {
		logger.Debug("up to date", "file", target)
		return nil
	}

	if opts.Check {
		return fmt.Errorf("%s: %w", target, ErrStale)
	}

	if err := os.WriteFile(target, out, 0o644); err != nil { //nolint:gosec // generated source is world-readable
		return err
	}
	logger.Info("generated", "file", target, "bytes", len(out))

	return nil
}
