package sourcemap

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	gosourcemap "github.com/go-sourcemap/sourcemap"
	"github.com/tidwall/gjson"
)

// ErrInvalidSourceMap is returned for documents that are not v3 source maps.
var ErrInvalidSourceMap = errors.New("invalid source map")

// Sources returns the sources listed in a source map, in map order.
func Sources(data []byte) ([]string, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: malformed json", ErrInvalidSourceMap)
	}

	res := gjson.GetBytes(data, "sources")
	if !res.IsArray() {
		return nil, fmt.Errorf("%w: missing sources", ErrInvalidSourceMap)
	}

	sources := make([]string, 0, len(res.Array()))
	for _, src := range res.Array() {
		sources = append(sources, src.String())
	}

	return sources, nil
}

// TransformMap applies fn to every entry of the map's sources and returns the
// updated document along with the rewritten sources. Fields other than sources
// and sourceRoot are kept as is.
func TransformMap(data []byte, sourcemapPath string, fn PathTransform) ([]byte, []string, error) {
	if _, err := gosourcemap.Parse("", data); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidSourceMap, err)
	}

	sources, err := Sources(data)
	if err != nil {
		return nil, nil, err
	}

	sourceRoot := gjson.GetBytes(data, "sourceRoot").String()

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidSourceMap, err)
	}

	rewritten := make([]string, len(sources))
	for i, src := range sources {
		if sourceRoot != "" {
			src = joinSourceRoot(sourceRoot, src)
		}
		rewritten[i] = fn(src, sourcemapPath)
	}

	raw, err := json.Marshal(rewritten)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode sources: %w", err)
	}

	fields["sources"] = raw
	delete(fields, "sourceRoot")

	out, err := json.Marshal(fields)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode source map: %w", err)
	}

	if _, err := gosourcemap.Parse("", out); err != nil {
		return nil, nil, fmt.Errorf("rewritten source map does not parse: %w", err)
	}

	return out, rewritten, nil
}

// joinSourceRoot prefixes src with root, keeping the scheme of URL roots intact.
func joinSourceRoot(root, src string) string {
	if u, err := url.Parse(root); err == nil && u.Scheme != "" {
		return strings.TrimSuffix(root, "/") + "/" + strings.TrimPrefix(src, "/")
	}
	return path.Join(root, src)
}
