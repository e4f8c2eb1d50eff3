package dataset_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/wtree/pkg/dataset"
)

const jsonDoc = `{
  "id": "root", "name": "Root", "value": 10,
  "children": [
    {"id": "a", "name": "A", "value": 6, "children": [{"id": "a1", "name": "A1", "value": "2.5"}]},
    {"id": "b", "name": "B", "value": 4}
  ]
}`

const yamlDoc = `id: root
name: Root
value: 10
children:
  - id: a
    name: A
    value: 6
    children:
      - {id: a1, name: A1, value: "2.5"}
  - id: b
    name: B
    value: 4
`

const tomlDoc = `id = "root"
name = "Root"
value = 10

[[children]]
id = "a"
name = "A"
value = 6

  [[children.children]]
  id = "a1"
  name = "A1"
  value = "2.5"

[[children]]
id = "b"
name = "B"
value = 4
`

func TestDecode_AllFormatsAgree(t *testing.T) {
	t.Parallel()

	fields := dataset.DefaultFields()

	for format, doc := range map[dataset.Format]string{
		dataset.FormatJSON: jsonDoc,
		dataset.FormatYAML: yamlDoc,
		dataset.FormatTOML: tomlDoc,
	} {
		rec, err := dataset.Decode(strings.NewReader(doc), format)
		require.NoError(t, err, format)

		var keys []string

		var total float64

		fields.Walk(rec, func(r dataset.Record, _ int) {
			keys = append(keys, fields.Key(r))
			total += fields.Value(r)
		})

		assert.Equal(t, []string{"root", "a", "a1", "b"}, keys, format)
		assert.InDelta(t, 22.5, total, 1e-9, format)
		assert.Equal(t, "Root", fields.Label(rec), format)
	}
}

func TestDecode_Errors(t *testing.T) {
	t.Parallel()

	_, err := dataset.Decode(strings.NewReader("{"), dataset.FormatJSON)
	require.ErrorIs(t, err, dataset.ErrDecode)

	_, err = dataset.Decode(strings.NewReader("[1,2]"), dataset.FormatJSON)
	require.ErrorIs(t, err, dataset.ErrNotObject)

	_, err = dataset.Decode(strings.NewReader("{}"), dataset.Format("xml"))
	require.ErrorIs(t, err, dataset.ErrUnknownFormat)
}

func TestLoad_ByExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tree.yml")
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o600))

	rec, err := dataset.Load(path)
	require.NoError(t, err)
	assert.Len(t, dataset.DefaultFields().Children(rec), 2)

	_, err = dataset.Load(filepath.Join(dir, "tree.csv"))
	require.ErrorIs(t, err, dataset.ErrUnknownFormat)

	_, err = dataset.Load(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}

func TestLoadAs_OverridesExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tree.data")
	require.NoError(t, os.WriteFile(path, []byte(tomlDoc), 0o600))

	rec, err := dataset.LoadAs(path, dataset.FormatTOML)
	require.NoError(t, err)
	assert.Equal(t, "root", dataset.DefaultFields().Key(rec))
}

func TestFields_KeyFallsBackToLabel(t *testing.T) {
	t.Parallel()

	f := dataset.DefaultFields()

	assert.Equal(t, "leaf", f.Key(dataset.Record{"name": "leaf"}))
	assert.Equal(t, "7", f.Key(dataset.Record{"id": 7, "name": "leaf"}))
	assert.Empty(t, f.Label(dataset.Record{}))
	assert.Nil(t, f.Children(dataset.Record{"children": "none"}))
}

func TestToFloat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   any
		want float64
		ok   bool
	}{
		{1.5, 1.5, true},
		{int64(3), 3, true},
		{7, 7, true},
		{json.Number("4.25"), 4.25, true},
		{" -2 ", -2, true},
		{"NaN", 0, false},
		{"abc", 0, false},
		{nil, 0, false},
		{true, 0, false},
	}

	for _, tt := range tests {
		got, ok := dataset.ToFloat(tt.in)
		assert.Equal(t, tt.ok, ok, "%v", tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, "%v", tt.in)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	f := dataset.DefaultFields()

	good, err := dataset.Decode(strings.NewReader(jsonDoc), dataset.FormatJSON)
	require.NoError(t, err)

	violations, err := dataset.Validate(good, f)
	require.NoError(t, err)
	assert.Empty(t, violations)

	bad := dataset.Record{
		"id": "root", "value": 1,
		"children": []any{
			dataset.Record{"id": "x"},
			dataset.Record{"id": "y", "value": "lots"},
		},
	}

	violations, err = dataset.Validate(bad, f)
	require.ErrorIs(t, err, dataset.ErrInvalid)
	assert.Len(t, violations, 2)
}

func TestSchema_UsesFieldNames(t *testing.T) {
	t.Parallel()

	f := dataset.Fields{Children: "kids", Value: "size", Label: "title", Key: "path"}

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(dataset.Schema(f)), &doc))

	assert.Equal(t, []any{"size"}, doc["required"])

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "kids")
	assert.Contains(t, props, "title")
}
