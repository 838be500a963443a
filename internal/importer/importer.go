// Package importer parses uploaded transaction files into rows. CSV, JSON
// and OFX/QFX uploads are supported; format is chosen by file extension.
package importer

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkozlov/bucketeer/internal/model"
)

// Format identifies an upload file format.
type Format string

// Supported upload formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatOFX  Format = "ofx"
)

// DetectFormat picks the parser for a file name.
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".ofx", ".qfx":
		return FormatOFX, nil
	default:
		return "", fmt.Errorf("unsupported file format %q: use CSV, JSON, or OFX", filepath.Ext(filename))
	}
}

// Parse reads rows from r using the parser for format. Row indices are
// assigned sequentially from zero.
func Parse(format Format, r io.Reader) ([]model.Row, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(r)
	case FormatJSON:
		return ParseJSON(r)
	case FormatOFX:
		return ParseOFX(r)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}
