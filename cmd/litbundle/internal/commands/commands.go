package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/wolfeidau/litbundle/internal/bundle"
	"github.com/wolfeidau/litbundle/internal/logger"
	"github.com/wolfeidau/litbundle/internal/telemetry"
)

const serviceName = "litbundle"

type Globals struct {
	Debug     bool
	Telemetry bool
	Version   string
	// Stdout receives command output, os.Stdout when nil
	Stdout io.Writer
}

func (g *Globals) stdout() io.Writer {
	if g.Stdout == nil {
		return os.Stdout
	}
	return g.Stdout
}

// setup configures logging and, when enabled, telemetry. The returned
// function flushes telemetry and must be called before exiting.
func (g *Globals) setup(ctx context.Context) (context.Context, func(), error) {
	log.Logger = logger.Setup(g.Debug)
	ctx = log.Logger.WithContext(ctx)

	if !g.Telemetry {
		return ctx, func() {}, nil
	}

	shutdown, err := telemetry.InitTelemetry(ctx, serviceName, g.Version)
	if err != nil {
		return ctx, nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	return ctx, func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn().Err(err).Msg("Failed to flush telemetry")
		}
	}, nil
}

// ConfigFlags locate and adjust the build configuration.
type ConfigFlags struct {
	Config     string `help:"path to a YAML configuration file" type:"existingfile" env:"LITBUNDLE_CONFIG"`
	PackageDir string `help:"directory of the package to build (default: the config file dir or the working dir)" env:"LITBUNDLE_PACKAGE_DIR"`
	OutputDir  string `help:"output directory, relative to the package dir" env:"LITBUNDLE_OUTPUT_DIR"`
}

func (f ConfigFlags) load(overrides ...bundle.Override) (bundle.Config, error) {
	if f.PackageDir != "" {
		dir, err := filepath.Abs(f.PackageDir)
		if err != nil {
			return bundle.Config{}, fmt.Errorf("failed to resolve package dir: %w", err)
		}
		overrides = append(overrides, func(c *bundle.Config) { c.PackageDir = dir })
	}
	if f.OutputDir != "" {
		overrides = append(overrides, func(c *bundle.Config) { c.OutputDir = f.OutputDir })
	}

	if f.Config != "" {
		return bundle.LoadConfig(f.Config, overrides...)
	}

	cfg := bundle.DefaultConfig()
	for _, o := range overrides {
		o(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return bundle.Config{}, fmt.Errorf("%w: %w", bundle.ErrInvalidConfig, err)
	}

	return cfg.Resolve(".")
}
