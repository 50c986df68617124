// Package textenc converts diff text between the repository file encoding
// and UTF-8.
package textenc

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
)

// Codec decodes git output and encodes synthesized patches for one encoding.
// The zero value is UTF-8 and passes text through untouched.
type Codec struct {
	name string
	enc  encoding.Encoding
}

// Lookup returns the codec registered under name (WHATWG labels such as
// "latin1", "windows-1252", "shift_jis"). An empty name means UTF-8.
func Lookup(name string) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return Codec{name: "utf-8"}, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return Codec{}, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	return Codec{name: name, enc: enc}, nil
}

// Name returns the label the codec was looked up with.
func (c Codec) Name() string {
	if c.name == "" {
		return "utf-8"
	}
	return c.name
}

// Decode converts text in the codec's encoding to UTF-8.
func (c Codec) Decode(s string) (string, error) {
	if c.enc == nil {
		return s, nil
	}
	out, err := c.enc.NewDecoder().String(s)
	if err != nil {
		return "", fmt.Errorf("decode %s: %w", c.Name(), err)
	}
	return out, nil
}

// Encode converts UTF-8 text to the codec's encoding.
func (c Codec) Encode(s string) (string, error) {
	if c.enc == nil {
		return s, nil
	}
	out, err := c.enc.NewEncoder().String(s)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", c.Name(), err)
	}
	return out, nil
}
