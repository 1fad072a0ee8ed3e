package relay

import (
	"bytes"
	"encoding/json"
	"errors"
)

var errInvalidJSON = errors.New("content is not valid JSON")

// Mode selects how choices[0].message.content is turned into text
type Mode int

const (
	// ModeText returns string content verbatim (prompt relays)
	ModeText Mode = iota
	// ModeJSON pretty-prints content, parsing string content as JSON when possible (CSV relay)
	ModeJSON
)

func (m Mode) String() string {
	if m == ModeJSON {
		return "json"
	}
	return "text"
}

// renderContent converts raw message content according to mode
func renderContent(raw json.RawMessage, mode Mode) string {
	var text string
	isString := json.Unmarshal(raw, &text) == nil

	if mode == ModeText {
		if isString {
			return text
		}
		var compact bytes.Buffer
		if err := json.Compact(&compact, raw); err != nil {
			return string(raw)
		}
		return compact.String()
	}

	if !isString {
		if pretty, err := prettyJSON(raw); err == nil {
			return pretty
		}
		return string(raw)
	}

	pretty, err := prettyJSON([]byte(text))
	if err != nil {
		return text
	}
	return pretty
}

// prettyJSON re-indents data with two spaces, keeping key order and number
// literals. Escaped characters in strings are written out as themselves.
func prettyJSON(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if !json.Valid(data) {
		return "", errInvalidJSON
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, data, "", "  "); err != nil {
		return "", err
	}
	out, err := unescapeStrings(buf.Bytes())
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// unescapeStrings re-encodes every string literal holding a backslash escape.
// data must be valid JSON.
func unescapeStrings(data []byte) ([]byte, error) {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); {
		if data[i] != '"' {
			out = append(out, data[i])
			i++
			continue
		}

		end, escaped := i+1, false
		for end < len(data) && data[end] != '"' {
			if data[end] == '\\' {
				escaped = true
				end++
			}
			end++
		}
		literal := data[i : end+1]
		i = end + 1

		if !escaped {
			out = append(out, literal...)
			continue
		}

		var text string
		if err := json.Unmarshal(literal, &text); err != nil {
			return nil, err
		}
		var enc bytes.Buffer
		encoder := json.NewEncoder(&enc)
		encoder.SetEscapeHTML(false)
		if err := encoder.Encode(text); err != nil {
			return nil, err
		}
		out = append(out, bytes.TrimSuffix(enc.Bytes(), []byte("\n"))...)
	}
	return out, nil
}
