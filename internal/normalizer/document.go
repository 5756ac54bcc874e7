package normalizer

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Document is one decoded FullSpecsAll payload. Numbers may arrive as
// json.Number, float64 or numeric strings depending on the decoder.
type Document map[string]any

// Lookup resolves a dotted path such as "BasicInfo.BoatName"
func (d Document) Lookup(path string) (any, bool) {
	var cur any = map[string]any(d)
	for _, key := range strings.Split(path, ".") {
		obj, ok := asObject(cur)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, cur != nil
}

// List returns the array at path, or nil
func (d Document) List(path string) []any {
	v, ok := d.Lookup(path)
	if !ok {
		return nil
	}
	list, _ := v.([]any)
	return list
}

func asObject(v any) (map[string]any, bool) {
	switch t := v.(type) {
	case map[string]any:
		return t, true
	case Document:
		return t, true
	}
	return nil, false
}

func toString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		return s, s != ""
	case json.Number:
		return t.String(), true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case int:
		return strconv.Itoa(t), true
	case int64:
		return strconv.FormatInt(t, 10), true
	}
	return "", false
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

// field reads a key from a nested object such as an engine or section entry
func field(obj map[string]any, keys ...string) (string, bool) {
	for _, k := range keys {
		if s, ok := toString(obj[k]); ok {
			return s, true
		}
	}
	return "", false
}
