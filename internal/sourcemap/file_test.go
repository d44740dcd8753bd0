package sourcemap

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

const esbuildMap = `{
  "version": 3,
  "sources": ["../src/index.js", "../../reactive-element/reactive-element.js"],
  "sourcesContent": ["export const a = 1;\n", "export const b = 2;\n"],
  "mappings": "AAAO,IAAM,IAAI;ACAV,IAAM,IAAI;",
  "names": []
}`

func TestSources(t *testing.T) {
	sources, err := Sources([]byte(esbuildMap))
	require.NoError(t, err)
	require.Equal(t, []string{"../src/index.js", "../../reactive-element/reactive-element.js"}, sources)

	_, err = Sources([]byte(`{"version":3}`))
	require.ErrorIs(t, err, ErrInvalidSourceMap)

	_, err = Sources([]byte(`{not json`))
	require.ErrorIs(t, err, ErrInvalidSourceMap)
}

func TestTransformMap(t *testing.T) {
	mapPath := "/repo/packages/lit/dist/lit-core.es.min.js.map"

	out, rewritten, err := TransformMap([]byte(esbuildMap), mapPath, BundleRelative("lit-core.es.min.js", "/repo/packages"))
	require.NoError(t, err)

	expected := []string{
		"lit-core.es.min.js/lit/src/index.js",
		"lit-core.es.min.js/reactive-element/reactive-element.js",
	}
	require.Equal(t, expected, rewritten)

	sources, err := Sources(out)
	require.NoError(t, err)
	require.Equal(t, expected, sources)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(out, &doc))
	require.EqualValues(t, 3, doc["version"])
	require.Equal(t, "AAAO,IAAM,IAAI;ACAV,IAAM,IAAI;", doc["mappings"])
	require.Len(t, doc["sourcesContent"], 2)
}

func TestTransformMapCallsOncePerSource(t *testing.T) {
	var seen []string
	fn := func(relativeSourcePath, sourcemapPath string) string {
		require.Equal(t, "/out/bundle.js.map", sourcemapPath)
		seen = append(seen, relativeSourcePath)
		return "x/" + relativeSourcePath
	}

	_, _, err := TransformMap([]byte(esbuildMap), "/out/bundle.js.map", fn)
	require.NoError(t, err)
	require.Equal(t, []string{"../src/index.js", "../../reactive-element/reactive-element.js"}, seen)
}

func TestTransformMapSourceRoot(t *testing.T) {
	doc := `{"version":3,"sourceRoot":"../src","sources":["index.js"],"mappings":"AAAA","names":[]}`

	out, _, err := TransformMap([]byte(doc), "/repo/packages/lit/dist/bundle.js.map", BundleRelative("bundle.js", "/repo/packages"))
	require.NoError(t, err)

	sources, err := Sources(out)
	require.NoError(t, err)
	require.Equal(t, []string{"bundle.js/lit/src/index.js"}, sources)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(out, &fields))
	require.NotContains(t, fields, "sourceRoot")
}

func TestTransformMapURLSourceRoot(t *testing.T) {
	doc := `{"version":3,"sourceRoot":"https://cdn.example.com/lit/","sources":["src/index.js"],"mappings":"AAAA","names":[]}`

	var seen []string
	fn := func(relativeSourcePath, _ string) string {
		seen = append(seen, relativeSourcePath)
		return relativeSourcePath
	}

	_, rewritten, err := TransformMap([]byte(doc), "/out/bundle.js.map", fn)
	require.NoError(t, err)
	require.Equal(t, []string{"https://cdn.example.com/lit/src/index.js"}, seen)
	require.Equal(t, seen, rewritten)
}

func TestTransformMapRejectsInvalid(t *testing.T) {
	noop := func(relativeSourcePath, _ string) string { return relativeSourcePath }

	tests := []struct {
		name string
		doc  string
	}{
		{name: "not json", doc: `sources`},
		{name: "wrong version", doc: `{"version":2,"sources":[],"mappings":""}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := TransformMap([]byte(tt.doc), "/out/bundle.js.map", noop)
			require.ErrorIs(t, err, ErrInvalidSourceMap)
		})
	}
}
