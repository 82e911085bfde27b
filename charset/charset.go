// Package charset converts drained bytes into UTF-8 before they are written.
// The empty name means no conversion at all.
package charset

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var ErrUnknownEncoding = errors.New("unknown encoding")

var encodings = map[string]encoding.Encoding{
	"":             encoding.Nop,
	"utf-8":        unicode.UTF8,
	"utf8":         unicode.UTF8,
	"iso-8859-1":   charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
	"utf-16le":     unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM),
	"utf-16be":     unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM),
	// A BOM, if present, overrides the little-endian default.
	"utf-16": unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
}

func Lookup(name string) (encoding.Encoding, error) {
	enc, ok := encodings[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
	return enc, nil
}

// Decoder returns a function that decodes a complete buffer from the named
// encoding into UTF-8.
func Decoder(name string) (func([]byte) ([]byte, error), error) {
	enc, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	return func(b []byte) ([]byte, error) {
		out, _, err := transform.Bytes(enc.NewDecoder(), b)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		return out, nil
	}, nil
}
