package bundle

import (
	"errors"
	"sync"
	"time"

	"github.com/spf13/afero"
)

var (
	// ErrNoEntryPoints is returned when an entry point build has nothing to build.
	ErrNoEntryPoints = errors.New("no entry points found")
	// ErrNotBuilt is returned when metadata is requested before the entry points are built.
	ErrNotBuilt = errors.New("entry points not built yet, call BuildEntryPoints() first")
	// ErrEntryNotFound is returned when an entry point is missing from the metafile.
	ErrEntryNotFound = errors.New("entrypoint not found in metadata")
)

type BuildMetadata struct {
	Outputs map[string]OutputInfo `json:"outputs"`
}

type OutputInfo struct {
	EntryPoint string       `json:"entryPoint"`
	Imports    []ImportInfo `json:"imports"`
	Bytes      int          `json:"bytes"`
}

type ImportInfo struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// Artifact is a single file written by a build.
type Artifact struct {
	Path     string
	Contents []byte
}

// Result describes the files emitted by one bundler invocation.
type Result struct {
	// Name is the bundle file name, or "entrypoints" for the entry point build
	Name      string
	Artifacts []Artifact
	Duration  time.Duration
}

// Pipeline builds the entry points and bundles of a package.
type Pipeline struct {
	config   Config
	fs       afero.Fs
	metadata *BuildMetadata
	mu       sync.RWMutex
}

// New creates a new pipeline writing into fs. The config is expected to have
// been resolved so every path in it is absolute.
func New(config Config, fs afero.Fs) *Pipeline {
	return &Pipeline{
		config: config,
		fs:     fs,
	}
}

// Config returns the configuration the pipeline builds.
func (p *Pipeline) Config() Config {
	return p.config
}
