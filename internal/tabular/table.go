package tabular

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Row maps a column name to an int64, float64, string or nil (missing field)
type Row map[string]any

// Table is the parsed file. Rows serialize with keys in header order.
type Table struct {
	Header []string
	Rows   []Row
}

// MarshalJSON encodes the rows as a JSON array of objects
func (t *Table) MarshalJSON() ([]byte, error) {
	keys := t.columns()

	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range t.Rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, key := range keys {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(&buf, key); err != nil {
				return nil, err
			}
			buf.WriteByte(':')
			if err := writeJSON(&buf, row[key]); err != nil {
				return nil, err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// JSON returns the table as a compact JSON string
func (t *Table) JSON() (string, error) {
	data, err := t.MarshalJSON()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// columns returns header names with duplicates removed, keeping first position
func (t *Table) columns() []string {
	seen := make(map[string]struct{}, len(t.Header))
	keys := make([]string, 0, len(t.Header))
	for _, name := range t.Header {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		keys = append(keys, name)
	}
	return keys
}

func writeJSON(buf *bytes.Buffer, v any) error {
	if f, ok := v.(float64); ok {
		return writeFloat(buf, f)
	}

	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return err
	}
	// Encode terminates every value with a newline
	buf.Truncate(buf.Len() - 1)
	return nil
}

// writeFloat keeps a float cell distinguishable from an integer one: 2.0 stays
// 2.0 rather than 2. Very large and very small magnitudes use exponent form.
func writeFloat(buf *bytes.Buffer, f float64) error {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return fmt.Errorf("unsupported float value: %v", f)
	}

	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		buf.WriteString(strconv.FormatFloat(f, 'e', -1, 64))
		return nil
	}

	s := strconv.FormatFloat(f, 'f', -1, 64)
	buf.WriteString(s)
	if !strings.Contains(s, ".") {
		buf.WriteString(".0")
	}
	return nil
}
