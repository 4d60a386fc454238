// Package filestore is the flat-file backend: each collection is a single
// JSON document under the data directory, matching the layout the system has
// always persisted (orders.json, products.json, today_deals.json,
// users.json). Records are kept as loose maps internally so legacy fields
// that the typed model does not know about survive round-trips untouched.
package filestore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
)

func readDoc(path string, v any) error {
	b, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil // absent document means an empty collection
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

func writeDoc(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// asFloat coerces the numeric shapes found in legacy documents: JSON numbers
// and numeric strings. Anything else is not a number.
func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case json.Number:
		f, err := x.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(x, 64)
		return f, err == nil
	}
	return 0, false
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asID(v any) (int64, bool) {
	f, ok := asFloat(v)
	if !ok {
		return 0, false
	}
	return int64(f), true
}
