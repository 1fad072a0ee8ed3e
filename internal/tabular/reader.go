package tabular

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"unicode/utf8"
)

var (
	// ErrNotFound is returned when the path does not exist
	ErrNotFound = errors.New("file not found")
	// ErrNotAFile is returned when the path exists but is not a regular file
	ErrNotAFile = errors.New("path is not a file")
	// ErrUnreadable is returned on permission, decoding or parse failures
	ErrUnreadable = errors.New("file unreadable")
)

// PathError records which path failed and why
type PathError struct {
	Path string
	Kind error // one of ErrNotFound, ErrNotAFile, ErrUnreadable
	Err  error // underlying cause, may be nil
}

func (e *PathError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Path)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
}

func (e *PathError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Read loads a delimited file whose first row is the header
func Read(path string) (*Table, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &PathError{Path: path, Kind: ErrNotFound}
		}
		return nil, &PathError{Path: path, Kind: ErrUnreadable, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &PathError{Path: path, Kind: ErrNotAFile}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &PathError{Path: path, Kind: ErrNotFound}
		}
		return nil, &PathError{Path: path, Kind: ErrUnreadable, Err: err}
	}
	if !utf8.Valid(data) {
		return nil, &PathError{Path: path, Kind: ErrUnreadable, Err: errors.New("invalid UTF-8 content")}
	}

	table, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, &PathError{Path: path, Kind: ErrUnreadable, Err: err}
	}
	return table, nil
}

// Parse reads CSV from r. Short rows are padded with nil, extra fields are dropped.
func Parse(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return &Table{Rows: []Row{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	table := &Table{Header: header, Rows: []Row{}}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", len(table.Rows)+2, err)
		}

		row := make(Row, len(header))
		for i, name := range header {
			if i < len(record) {
				row[name] = Coerce(record[i])
			} else {
				row[name] = nil
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}
