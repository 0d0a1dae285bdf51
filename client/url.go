package client

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/pakkasys/fluidquery/urlencoder"
)

// Path is a URL path given as one or more segments. In JSON it may be either
// a string or an array of strings.
type Path []string

// UnmarshalJSON accepts a string or an array of strings. Null leaves the
// path empty.
func (p *Path) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*p = nil
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*p = Path{single}
		return nil
	}
	var segments []string
	if err := json.Unmarshal(data, &segments); err != nil {
		return err
	}
	*p = segments
	return nil
}

// URLParts are the inputs of BuildURL.
type URLParts struct {
	Path     Path `json:"path"`               // Path segments.
	Query    any  `json:"query,omitempty"`    // Nested value encoded after "?".
	Fragment any  `json:"fragment,omitempty"` // Nested value encoded after "#".
}

// BuildURL joins the path segments and appends the encoded query and
// fragment. The query and fragment are left out, separator included, when
// they encode to nothing.
func BuildURL(parts URLParts) string {
	return BuildEncodedURL(
		parts.Path,
		urlencoder.Encode(parts.Query),
		urlencoder.Encode(parts.Fragment),
	)
}

// BuildEncodedURL is BuildURL for a query and fragment that are already
// encoded.
func BuildEncodedURL(path []string, query string, fragment string) string {
	var b strings.Builder
	b.WriteString(JoinPath(path...))
	if query != "" {
		b.WriteString("?")
		b.WriteString(query)
	}
	if fragment != "" {
		b.WriteString("#")
		b.WriteString(fragment)
	}
	return b.String()
}

// JoinPath joins segments with "/". Every segment but the first loses its
// leading slashes and every segment but the last loses its trailing slashes,
// so "a/", "/b/", "/c" join to "a/b/c". A single segment is returned as is.
func JoinPath(segments ...string) string {
	if len(segments) == 1 {
		return segments[0]
	}
	last := len(segments) - 1
	trimmed := make([]string, len(segments))
	for i, segment := range segments {
		if i != 0 {
			segment = strings.TrimLeft(segment, "/")
		}
		if i != last {
			segment = strings.TrimRight(segment, "/")
		}
		trimmed[i] = segment
	}
	return strings.Join(trimmed, "/")
}

// ConstructURL returns the full URL for the host and URL parts.
//   - host: The host server, e.g. "http://localhost:8080".
//   - parts: The path, query and fragment.
func ConstructURL(host string, parts URLParts) string {
	return host + BuildURL(parts)
}
