package bundle

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMeasure(t *testing.T) {
	contents := []byte(strings.Repeat("export const value = 'lit';\n", 200))

	size, err := Measure("lit.js", contents)
	require.NoError(t, err)

	require.Equal(t, "lit.js", size.Name)
	require.Equal(t, len(contents), size.Raw)
	require.Positive(t, size.Gzip)
	require.Positive(t, size.Brotli)
	require.Less(t, size.Gzip, size.Raw)
	require.Less(t, size.Brotli, size.Raw)
}

func TestReport(t *testing.T) {
	results := []Result{
		{
			Name: entryPointsName,
			Artifacts: []Artifact{
				{Path: "/out/index.js", Contents: []byte("export const a=1;")},
				{Path: "/out/index.js.map", Contents: []byte("{}")},
			},
		},
		{
			Name: "development/" + entryPointsName,
			Artifacts: []Artifact{
				{Path: "/out/development/index.js", Contents: []byte("export const a = 1;\n")},
			},
		},
		{
			Name: "lit-core.iife.min.js",
			Artifacts: []Artifact{
				{Path: "/out/lit-core.iife.min.js", Contents: []byte("var Lit=(()=>{})();")},
			},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Report(&buf, results))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[0], "FILE"))
	require.True(t, strings.HasPrefix(lines[1], "index.js "))
	require.True(t, strings.HasPrefix(lines[2], "development/index.js "))
	require.True(t, strings.HasPrefix(lines[3], "lit-core.iife.min.js "))
	require.NotContains(t, buf.String(), ".map")
}

func TestSizesDevelopmentPrefix(t *testing.T) {
	results := []Result{
		{
			Name:      "development/" + entryPointsName,
			Artifacts: []Artifact{{Path: "/out/development/index.js", Contents: []byte("export const a = 1;")}},
		},
		{
			Name:      "lit-development.es.min.js",
			Artifacts: []Artifact{{Path: "/out/lit-development.es.min.js", Contents: []byte("export const a=1;")}},
		},
	}

	sizes, err := Sizes(results)
	require.NoError(t, err)
	require.Len(t, sizes, 2)
	require.Equal(t, "development/index.js", sizes[0].Name)
	require.Equal(t, "lit-development.es.min.js", sizes[1].Name)
}
