// Package source reads sample records from a file or URL and decodes them from JSON or XML.
package source

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"track2geojson/pkg/types"
)

// Format of the input document.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
)

// DetectFormat picks the format from the location's extension, falling back to the first
// non-blank byte of the document.
func DetectFormat(location string, data []byte) Format {
	ext := strings.ToLower(filepath.Ext(location))
	if i := strings.IndexAny(ext, "?#"); i >= 0 {
		ext = ext[:i]
	}
	switch ext {
	case ".json", ".geojson":
		return FormatJSON
	case ".xml":
		return FormatXML
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '<' {
		return FormatXML
	}
	return FormatJSON
}

// Decode parses every record in data. The first bad record aborts decoding with a *types.ParseError.
func Decode(format Format, data []byte) ([]types.Sample, error) {
	switch format {
	case FormatJSON:
		return decodeJSON(data)
	case FormatXML:
		return decodeXML(data)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}
