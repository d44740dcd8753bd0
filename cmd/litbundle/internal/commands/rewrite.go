package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wolfeidau/litbundle/internal/sourcemap"
)

// RewriteCmd prints the path each source would be recorded under.
type RewriteCmd struct {
	Label   string   `help:"bundle file name used as the root directory" required:""`
	Root    string   `help:"common ancestor directory of all source packages" required:"" type:"path"`
	Map     string   `help:"path of the source map the sources are relative to" required:"" type:"path"`
	Sources []string `arg:"" help:"source paths relative to the source map directory"`
}

func (r *RewriteCmd) Run(ctx context.Context, globals *Globals) error {
	out := globals.stdout()
	for _, src := range r.Sources {
		if _, err := fmt.Fprintln(out, sourcemap.Rewrite(r.Label, src, r.Map, r.Root)); err != nil {
			return err
		}
	}
	return nil
}

// RemapCmd rewrites the sources of an existing source map.
type RemapCmd struct {
	Label   string `help:"bundle file name used as the root directory (default: the map file name without .map)"`
	Root    string `help:"common ancestor directory of all source packages" required:"" type:"path"`
	MapFile string `arg:"" help:"source map to rewrite in place" type:"existingfile"`
}

func (r *RemapCmd) Run(ctx context.Context, globals *Globals) error {
	ctx, flush, err := globals.setup(ctx)
	if err != nil {
		return err
	}
	defer flush()

	label := r.Label
	if label == "" {
		label = defaultLabel(r.MapFile)
	}

	info, err := os.Stat(r.MapFile)
	if err != nil {
		return fmt.Errorf("failed to stat source map: %w", err)
	}

	data, err := os.ReadFile(r.MapFile)
	if err != nil {
		return fmt.Errorf("failed to read source map: %w", err)
	}

	rewritten, sources, err := sourcemap.TransformMap(data, r.MapFile, sourcemap.BundleRelative(label, r.Root))
	if err != nil {
		return fmt.Errorf("failed to rewrite %s: %w", r.MapFile, err)
	}

	if err := os.WriteFile(r.MapFile, rewritten, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write source map: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("file", r.MapFile).Strs("sources", sources).Msg("Rewrote source map")

	return nil
}

// defaultLabel derives the bundle name from the path of its source map.
func defaultLabel(mapFile string) string {
	return strings.TrimSuffix(filepath.Base(mapFile), ".map")
}
