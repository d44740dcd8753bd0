package bundle

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
)

// MinifyOptions control the minifier for a single build.
type MinifyOptions struct {
	// Compress applies syntax level minification.
	Compress bool `yaml:"compress" json:"compress"`
	// Mangle renames local identifiers.
	Mangle bool `yaml:"mangle" json:"mangle"`
	// Comments keeps legal comments, otherwise they are stripped.
	Comments bool `yaml:"comments" json:"comments"`
	// Beautify keeps whitespace and newlines.
	Beautify bool `yaml:"beautify" json:"beautify"`
}

// Variant describes one bundled artifact built from a single entry module.
type Variant struct {
	// Module identifier of the entry, resolved against the source dir
	File string `yaml:"file" json:"file"`
	// Output file name stem, ".js" is appended
	Output string `yaml:"output" json:"output"`
	Format Format `yaml:"format" json:"format"`
	// Global variable name for iife bundles
	Name   string        `yaml:"name,omitempty" json:"name,omitempty"`
	Minify MinifyOptions `yaml:"minify" json:"minify"`
	// Root the sources in the emitted map under a directory named after the bundle
	SourcemapPathTransform bool `yaml:"sourcemapPathTransform" json:"sourcemapPathTransform"`
}

// FileName returns the name of the emitted bundle.
func (v Variant) FileName() string {
	return v.Output + ".js"
}

type Config struct {
	PackageName string `yaml:"packageName" json:"packageName"`
	// Directory of the package being built
	PackageDir string `yaml:"packageDir" json:"packageDir"`
	// Common ancestor of all source packages, relative to PackageDir, defaults
	// to the parent of PackageDir
	PackagesRoot string `yaml:"packagesRoot,omitempty" json:"packagesRoot,omitempty"`
	// Directory holding entry modules, relative to PackageDir
	SourceDir string `yaml:"sourceDir" json:"sourceDir"`
	// Output directory for built files, relative to PackageDir
	OutputDir      string    `yaml:"outputDir" json:"outputDir"`
	EntryExtension string    `yaml:"entryExtension" json:"entryExtension"`
	EntryPoints    []string  `yaml:"entryPoints" json:"entryPoints"`
	Bundled        []Variant `yaml:"bundled" json:"bundled"`
	// Whether to emit linked source maps
	SourceMap bool `yaml:"sourcemap" json:"sourcemap"`
	// Also emit unminified entry points under OutputDir/development
	Development bool `yaml:"development" json:"development"`
	// Path to the entry point metafile, relative to PackageDir, defaults to
	// meta.json in OutputDir
	MetafilePath string `yaml:"metafile,omitempty" json:"metafile,omitempty"`
	// Maximum number of variants built at once
	Concurrency int `yaml:"concurrency" json:"concurrency"`
}

// ProductionMinify matches the minifier settings used for every published bundle.
func ProductionMinify() MinifyOptions {
	return MinifyOptions{
		Compress: true,
		Mangle:   true,
	}
}

// DefaultConfig returns the production configuration of the lit package
func DefaultConfig() Config {
	minify := ProductionMinify()

	return Config{
		PackageName:    "lit",
		PackageDir:     ".",
		SourceDir:      ".",
		OutputDir:      "dist",
		EntryExtension: ".js",
		EntryPoints:    []string{"decorators", "index"},
		Bundled: []Variant{
			{File: "polyfill-support", Output: "polyfill-support.window.min", Format: FormatIIFE, Minify: minify},
			{File: "index", Output: "lit-core.es.min", Name: "Lit", Format: FormatES, Minify: minify, SourcemapPathTransform: true},
			{File: "index", Output: "lit-core.iife.min", Name: "Lit", Format: FormatIIFE, Minify: minify, SourcemapPathTransform: true},
			{File: "index.all", Output: "lit-all.es.min", Name: "Lit", Format: FormatES, Minify: minify, SourcemapPathTransform: true},
			{File: "index.all", Output: "lit-all.iife.min", Name: "Lit", Format: FormatIIFE, Minify: minify, SourcemapPathTransform: true},
			{File: "decorators", Output: "lit-decorators.es.min", Name: "LitDecorators", Format: FormatES, Minify: minify, SourcemapPathTransform: true},
			{File: "decorators", Output: "lit-decorators.iife.min", Name: "LitDecorators", Format: FormatIIFE, Minify: minify, SourcemapPathTransform: true},
		},
		SourceMap:   true,
		Concurrency: runtime.NumCPU(),
	}
}

// Validate checks the configuration is buildable.
func (c Config) Validate() error {
	if c.PackageDir == "" {
		return errors.New("package dir is required")
	}
	if c.OutputDir == "" {
		return errors.New("output dir is required")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}

	for i, entry := range c.EntryPoints {
		if entry == "" {
			return fmt.Errorf("entry point %d is empty", i)
		}
	}

	outputs := make(map[string]bool, len(c.Bundled))
	for i, v := range c.Bundled {
		if v.File == "" {
			return fmt.Errorf("bundle %d: file is required", i)
		}
		if v.Output == "" {
			return fmt.Errorf("bundle %d: output is required", i)
		}
		if _, err := ParseFormat(string(v.Format)); err != nil {
			return fmt.Errorf("bundle %q: %w", v.Output, err)
		}
		if outputs[v.Output] {
			return fmt.Errorf("bundle %q: duplicate output", v.Output)
		}
		outputs[v.Output] = true
	}

	return nil
}

// Resolve makes every path in the configuration absolute and fills in derived
// defaults. PackageDir is taken relative to base, everything else relative to
// PackageDir.
func (c Config) Resolve(base string) (Config, error) {
	abs := func(p string) (string, error) {
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		return filepath.Abs(p)
	}

	var err error
	if c.PackageDir, err = abs(c.PackageDir); err != nil {
		return c, fmt.Errorf("failed to resolve package dir: %w", err)
	}

	if c.PackagesRoot == "" {
		c.PackagesRoot = filepath.Dir(c.PackageDir)
	} else {
		c.PackagesRoot = under(c.PackageDir, c.PackagesRoot)
	}

	c.SourceDir = under(c.PackageDir, c.SourceDir)
	c.OutputDir = under(c.PackageDir, c.OutputDir)

	if c.MetafilePath == "" {
		c.MetafilePath = filepath.Join(c.OutputDir, "meta.json")
	} else {
		c.MetafilePath = under(c.PackageDir, c.MetafilePath)
	}

	if c.EntryExtension == "" {
		c.EntryExtension = ".js"
	}

	return c, nil
}

// EntryPath returns the on disk path of the entry module identifier.
func (c Config) EntryPath(file string) string {
	return filepath.Join(c.SourceDir, filepath.FromSlash(file)+c.EntryExtension)
}

func under(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, p)
}
