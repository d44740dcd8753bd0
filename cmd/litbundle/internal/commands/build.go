package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/wolfeidau/litbundle/internal/bundle"
)

type BuildCmd struct {
	ConfigFlags `embed:""`

	NoSourcemap bool `help:"skip source maps" env:"LITBUNDLE_NO_SOURCEMAP"`
	Development bool `help:"also emit unminified entry points under development/" env:"LITBUNDLE_DEVELOPMENT"`
	Concurrency int  `help:"maximum number of bundles built at once (default: number of CPUs)" env:"LITBUNDLE_CONCURRENCY"`
	Report      bool `help:"print a size report of the emitted files" default:"true" negatable:""`
}

func (b *BuildCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, flush, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer flush()

	cfg, err := b.load(func(c *bundle.Config) {
		if b.NoSourcemap {
			c.SourceMap = false
		}
		if b.Development {
			c.Development = true
		}
		if b.Concurrency > 0 {
			c.Concurrency = b.Concurrency
		}
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	zerolog.Ctx(ctx).Info().
		Str("package", cfg.PackageName).
		Str("package_dir", cfg.PackageDir).
		Str("output_dir", cfg.OutputDir).
		Msg("Building package")

	started := time.Now()

	results, err := bundle.New(cfg, afero.NewOsFs()).Build(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	out := globals.stdout()

	if b.Report {
		if err := bundle.Report(out, results); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}

	files := 0
	for _, res := range results {
		files += len(res.Artifacts)
	}

	color.New(color.FgGreen).Fprintf(out, "Built %d files for %s in %s\n", files, cfg.PackageName, time.Since(started).Round(time.Millisecond))

	return nil
}
