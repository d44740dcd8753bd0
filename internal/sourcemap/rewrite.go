// Package sourcemap rewrites the sources recorded in generated source maps so
// browser developer tools show them under a directory named after the bundle.
package sourcemap

import (
	"path/filepath"
	"strings"
)

// PathTransform maps a source path, relative to the directory of the source
// map, to the path that should be recorded in the map.
type PathTransform func(relativeSourcePath, sourcemapPath string) string

// Rewrite resolves relativeSourcePath against the directory holding
// sourcemapPath, makes the result relative to packagesRootDir and roots it
// under bundleLabel.
//
// Sources outside packagesRootDir keep their ../ segments after the label. A
// source that is packagesRootDir itself maps to the bare label.
func Rewrite(bundleLabel, relativeSourcePath, sourcemapPath, packagesRootDir string) string {
	source := absolute(filepath.Join(filepath.Dir(sourcemapPath), filepath.FromSlash(relativeSourcePath)))
	root := absolute(packagesRootDir)

	rel, err := filepath.Rel(root, source)
	if err != nil {
		// different volumes, nothing to be relative to
		rel = strings.TrimPrefix(filepath.ToSlash(source), "/")
	}

	if rel == "." {
		return bundleLabel
	}

	return bundleLabel + "/" + filepath.ToSlash(rel)
}

// BundleRelative returns a PathTransform rooting every source under bundleLabel.
func BundleRelative(bundleLabel, packagesRootDir string) PathTransform {
	return func(relativeSourcePath, sourcemapPath string) string {
		return Rewrite(bundleLabel, relativeSourcePath, sourcemapPath, packagesRootDir)
	}
}

func absolute(p string) string {
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}
