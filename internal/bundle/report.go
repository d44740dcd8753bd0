package bundle

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/andybalholm/brotli"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
)

// Size is the raw and compressed size of an emitted file.
type Size struct {
	Name   string
	Raw    int
	Gzip   int
	Brotli int
}

// Measure compresses contents with gzip and brotli at their highest levels
// and returns the resulting sizes.
func Measure(name string, contents []byte) (Size, error) {
	size := Size{Name: name, Raw: len(contents)}

	var buf bytes.Buffer

	gw, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return Size{}, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	if _, err := gw.Write(contents); err != nil {
		return Size{}, fmt.Errorf("failed to gzip %s: %w", name, err)
	}
	if err := gw.Close(); err != nil {
		return Size{}, fmt.Errorf("failed to gzip %s: %w", name, err)
	}
	size.Gzip = buf.Len()

	buf.Reset()

	bw := brotli.NewWriterLevel(&buf, brotli.BestCompression)
	if _, err := bw.Write(contents); err != nil {
		return Size{}, fmt.Errorf("failed to brotli %s: %w", name, err)
	}
	if err := bw.Close(); err != nil {
		return Size{}, fmt.Errorf("failed to brotli %s: %w", name, err)
	}
	size.Brotli = buf.Len()

	return size, nil
}

// Sizes measures every javascript artifact in results.
func Sizes(results []Result) ([]Size, error) {
	var sizes []Size
	for _, res := range results {
		for _, artifact := range res.Artifacts {
			if !strings.HasSuffix(artifact.Path, ".js") {
				continue
			}

			name := filepath.Base(artifact.Path)
			if strings.HasPrefix(res.Name, developmentDir+"/") {
				name = developmentDir + "/" + name
			}

			size, err := Measure(name, artifact.Contents)
			if err != nil {
				return nil, err
			}
			sizes = append(sizes, size)
		}
	}
	return sizes, nil
}

// Report writes a size table of every javascript artifact in results to w.
func Report(w io.Writer, results []Result) error {
	sizes, err := Sizes(results)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tSIZE\tGZIP\tBROTLI")
	for _, s := range sizes {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			s.Name,
			humanize.Bytes(uint64(s.Raw)),    // #nosec G115 - lengths are never negative
			humanize.Bytes(uint64(s.Gzip)),   // #nosec G115
			humanize.Bytes(uint64(s.Brotli)), // #nosec G115
		)
	}

	return tw.Flush()
}
