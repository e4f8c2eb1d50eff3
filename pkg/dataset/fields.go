package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Fields names the record keys read by the accessors.
type Fields struct {
	Children string `mapstructure:"children"`
	Value    string `mapstructure:"value"`
	Label    string `mapstructure:"label"`
	Key      string `mapstructure:"key"`
}

// DefaultFields reads "children", "value", "name" and "id".
func DefaultFields() Fields {
	return Fields{Children: "children", Value: "value", Label: "name", Key: "id"}
}

// Children returns the child records. Entries that are not objects are skipped.
func (f Fields) Children(r Record) []Record {
	list, ok := r[f.Children].([]any)
	if !ok {
		return nil
	}

	out := make([]Record, 0, len(list))

	for _, e := range list {
		if child, isRec := e.(Record); isRec {
			out = append(out, child)
		}
	}

	return out
}

// Value returns the numeric value, zero when missing or not numeric.
func (f Fields) Value(r Record) float64 {
	v, _ := ToFloat(r[f.Value])

	return v
}

// Label returns the display label, empty when missing.
func (f Fields) Label(r Record) string {
	v, ok := r[f.Label]
	if !ok || v == nil {
		return ""
	}

	return fmt.Sprint(v)
}

// Key returns the identifier, falling back to the label when the key field
// is absent.
func (f Fields) Key(r Record) string {
	v, ok := r[f.Key]
	if !ok || v == nil {
		return f.Label(r)
	}

	return fmt.Sprint(v)
}

// ToFloat coerces decoded numbers and numeric strings.
func ToFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()

		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}

		return f, true
	default:
		return 0, false
	}
}

// Walk visits r and its descendants depth-first, pre-order.
func (f Fields) Walk(r Record, visit func(rec Record, depth int)) {
	var walk func(Record, int)

	walk = func(rec Record, depth int) {
		visit(rec, depth)

		for _, c := range f.Children(rec) {
			walk(c, depth+1)
		}
	}

	walk(r, 0)
}
