package bundle

import (
	"fmt"

	"github.com/evanw/esbuild/pkg/api"
)

// Format is the module format of an emitted bundle.
type Format string

const (
	// FormatES emits an ES module.
	FormatES Format = "es"
	// FormatIIFE emits an immediately-invoked function, optionally assigning
	// its exports to a global.
	FormatIIFE Format = "iife"
)

// ParseFormat returns the Format for tag, rejecting anything outside the known set.
func ParseFormat(tag string) (Format, error) {
	switch Format(tag) {
	case FormatES, FormatIIFE:
		return Format(tag), nil
	default:
		return "", fmt.Errorf("unknown bundle format %q", tag)
	}
}

func (f Format) String() string {
	return string(f)
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f), nil
}

func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f Format) esbuild() api.Format {
	switch f {
	case FormatIIFE:
		return api.FormatIIFE
	default:
		return api.FormatESModule
	}
}
