package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/wolfeidau/litbundle/internal/sourcemap"
	"github.com/wolfeidau/litbundle/internal/telemetry"
)

const (
	entryPointsName = "entrypoints"
	developmentDir  = "development"
	sourceMapExt    = ".map"
)

// Build runs the entry point build followed by every bundled variant, the
// variants concurrently. Results are returned in configuration order.
func (p *Pipeline) Build(ctx context.Context) ([]Result, error) {
	if err := p.config.Validate(); err != nil {
		return nil, err
	}

	var results []Result

	if len(p.config.EntryPoints) > 0 {
		res, err := p.BuildEntryPoints(ctx)
		if err != nil {
			return nil, err
		}
		results = append(results, res...)
	}

	variants := make([]Result, len(p.config.Bundled))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.Concurrency)

	for i, v := range p.config.Bundled {
		i, v := i, v
		g.Go(func() error {
			res, err := p.BuildVariant(gctx, v)
			if err != nil {
				return fmt.Errorf("bundle %s: %w", v.FileName(), err)
			}
			variants[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return append(results, variants...), nil
}

// BuildEntryPoints builds every entry point as a split ES module into the
// output dir and loads the resulting metadata. In development mode an
// unminified copy is also written under the development dir.
func (p *Pipeline) BuildEntryPoints(ctx context.Context) ([]Result, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.config.EntryPoints) == 0 {
		return nil, ErrNoEntryPoints
	}

	entryPoints := make([]string, 0, len(p.config.EntryPoints))
	for _, entry := range p.config.EntryPoints {
		entryPoints = append(entryPoints, p.config.EntryPath(entry))
	}

	zerolog.Ctx(ctx).Info().Strs("entrypoints", entryPoints).Msg("Building entry points")

	opts := api.BuildOptions{
		EntryPoints:   entryPoints,
		AbsWorkingDir: p.config.PackageDir,
		Bundle:        true,
		Splitting:     true,
		Outdir:        p.config.OutputDir,
		Format:        api.FormatESModule,
		TreeShaking:   api.TreeShakingTrue,
		Sourcemap:     cond(p.config.SourceMap, api.SourceMapLinked, api.SourceMapNone),
		Metafile:      true,
		LogLevel:      api.LogLevelSilent,
	}
	applyMinify(&opts, ProductionMinify())

	res, metafile, err := p.run(ctx, entryPointsName, opts, nil)
	if err != nil {
		return nil, err
	}

	if err := p.writeFile(p.config.MetafilePath, []byte(metafile)); err != nil {
		return nil, err
	}

	var metadata BuildMetadata
	if err := json.Unmarshal([]byte(metafile), &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metafile: %w", err)
	}
	p.metadata = &metadata

	results := []Result{res}

	if p.config.Development {
		opts.Outdir = filepath.Join(p.config.OutputDir, developmentDir)
		opts.Metafile = false
		applyMinify(&opts, MinifyOptions{Comments: true, Beautify: true})

		dev, _, err := p.run(ctx, filepath.Join(developmentDir, entryPointsName), opts, nil)
		if err != nil {
			return nil, err
		}
		results = append(results, dev)
	}

	return results, nil
}

// BuildVariant bundles a single variant into the output dir. When the variant
// asks for it the sources in its map are rooted under a directory named after
// the bundle.
func (p *Pipeline) BuildVariant(ctx context.Context, v Variant) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	opts := api.BuildOptions{
		EntryPoints:   []string{p.config.EntryPath(v.File)},
		AbsWorkingDir: p.config.PackageDir,
		Bundle:        true,
		Outfile:       filepath.Join(p.config.OutputDir, v.FileName()),
		Format:        v.Format.esbuild(),
		GlobalName:    cond(v.Format == FormatIIFE, v.Name, ""),
		TreeShaking:   api.TreeShakingTrue,
		Sourcemap:     cond(p.config.SourceMap, api.SourceMapLinked, api.SourceMapNone),
		LogLevel:      api.LogLevelSilent,
	}
	applyMinify(&opts, v.Minify)

	var transform sourcemap.PathTransform
	if v.SourcemapPathTransform {
		transform = sourcemap.BundleRelative(v.FileName(), p.config.PackagesRoot)
	}

	res, _, err := p.run(ctx, v.FileName(), opts, transform)
	return res, err
}

// run invokes the bundler, rewrites emitted source maps with transform when
// set and writes every output file.
func (p *Pipeline) run(ctx context.Context, name string, opts api.BuildOptions, transform sourcemap.PathTransform) (Result, string, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "bundle.build", trace.WithAttributes(
		attribute.String("bundle.name", name),
		attribute.String("bundle.format", formatName(opts.Format)),
	))
	defer span.End()

	logger := zerolog.Ctx(ctx).With().Str("bundle", name).Logger()
	metrics := telemetry.GetMetrics()
	attrs := metric.WithAttributes(attribute.String("bundle.name", name))

	started := time.Now()
	result := api.Build(opts)
	elapsed := time.Since(started)

	metrics.BuildsTotal.Add(ctx, 1, attrs)
	metrics.BuildDuration.Record(ctx, float64(elapsed.Milliseconds()), attrs)

	for _, msg := range result.Warnings {
		logger.Warn().Str("warning", messageText(msg)).Msg("Build warning")
	}

	if len(result.Errors) > 0 {
		for _, msg := range result.Errors {
			logger.Error().Str("error", messageText(msg)).Msg("Build error")
		}
		metrics.BuildErrorsTotal.Add(ctx, 1, attrs)
		err := fmt.Errorf("esbuild failed with %d errors: %s", len(result.Errors), messageText(result.Errors[0]))
		span.RecordError(err)
		span.SetStatus(codes.Error, "build failed")
		return Result{}, "", err
	}

	res := Result{Name: name, Duration: elapsed}

	for _, file := range result.OutputFiles {
		contents := file.Contents

		if transform != nil && strings.HasSuffix(file.Path, sourceMapExt) {
			rewritten, sources, err := sourcemap.TransformMap(contents, file.Path, transform)
			if err != nil {
				return Result{}, "", fmt.Errorf("failed to rewrite %s: %w", file.Path, err)
			}

			metrics.SourcesRewritten.Add(ctx, int64(len(sources)), attrs)
			logger.Debug().Str("file", file.Path).Strs("sources", sources).Msg("Rewrote source map")

			contents = rewritten
		}

		if err := p.writeFile(file.Path, contents); err != nil {
			return Result{}, "", err
		}

		metrics.OutputBytesTotal.Add(ctx, int64(len(contents)), attrs)
		logger.Info().Str("file", file.Path).Int("bytes", len(contents)).Msg("Built file")

		res.Artifacts = append(res.Artifacts, Artifact{Path: file.Path, Contents: contents})
	}

	return res, result.Metafile, nil
}

// Chunks returns the ordered list of output files needed by the given entry
// point, the entry point's own output first.
func (p *Pipeline) Chunks(entry string) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.metadata == nil {
		return nil, ErrNotBuilt
	}

	rel, err := filepath.Rel(p.config.PackageDir, p.config.EntryPath(entry))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve entry point %q: %w", entry, err)
	}
	entryPointPath := filepath.ToSlash(rel)

	for outputPath, info := range p.metadata.Outputs {
		if info.EntryPoint == entryPointPath {
			chunks := []string{outputPath}
			visited := map[string]bool{outputPath: true}
			p.addDependencies(info, &chunks, visited)
			return chunks, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, entry)
}

func (p *Pipeline) addDependencies(output OutputInfo, chunks *[]string, visited map[string]bool) {
	for _, imp := range output.Imports {
		if !visited[imp.Path] {
			visited[imp.Path] = true
			*chunks = append(*chunks, imp.Path)

			if chunkInfo, exists := p.metadata.Outputs[imp.Path]; exists {
				p.addDependencies(chunkInfo, chunks, visited)
			}
		}
	}
}

func (p *Pipeline) writeFile(path string, contents []byte) error {
	if err := p.fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	if err := afero.WriteFile(p.fs, path, contents, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func applyMinify(opts *api.BuildOptions, m MinifyOptions) {
	opts.MinifySyntax = m.Compress
	opts.MinifyIdentifiers = m.Mangle
	opts.MinifyWhitespace = !m.Beautify
	opts.LegalComments = cond(m.Comments, api.LegalCommentsInline, api.LegalCommentsNone)
}

func messageText(msg api.Message) string {
	var s string
	if loc := msg.Location; loc != nil {
		s = fmt.Sprintf("%s:%d:%d: ", loc.File, loc.Line, loc.Column)
	}
	return s + msg.Text
}

func formatName(f api.Format) string {
	switch f {
	case api.FormatIIFE:
		return FormatIIFE.String()
	case api.FormatESModule:
		return FormatES.String()
	default:
		return "default"
	}
}

func cond[T any](condition bool, trueVal, falseVal T) T {
	if condition {
		return trueVal
	}
	return falseVal
}
