package elog

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// Encoder converts formatted field text into the engine's server encoding.
type Encoder struct {
	name string
	enc  encoding.Encoding
	// raw skips validation entirely (SQL_ASCII stores bytes as given).
	raw bool
}

var serverEncodings = map[string]encoding.Encoding{
	"LATIN1":     charmap.ISO8859_1,
	"LATIN2":     charmap.ISO8859_2,
	"LATIN9":     charmap.ISO8859_15,
	"ISO_8859_5": charmap.ISO8859_5,
	"ISO_8859_7": charmap.ISO8859_7,
	"WIN1250":    charmap.Windows1250,
	"WIN1251":    charmap.Windows1251,
	"WIN1252":    charmap.Windows1252,
	"KOI8R":      charmap.KOI8R,
	"KOI8U":      charmap.KOI8U,
}

// ServerEncodings lists the accepted encoding names.
func ServerEncodings() []string {
	names := []string{"UTF8", "SQL_ASCII"}
	for name := range serverEncodings {
		names = append(names, name)
	}
	sort.Strings(names[2:])
	return names
}

// NewEncoder returns an encoder for the named server encoding. An empty name
// means UTF8.
func NewEncoder(name string) (*Encoder, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	switch upper {
	case "", "UTF8", "UTF-8", "UNICODE":
		return &Encoder{name: "UTF8"}, nil
	case "SQL_ASCII":
		return &Encoder{name: upper, raw: true}, nil
	}
	enc, ok := serverEncodings[upper]
	if !ok {
		return nil, newWithSentinel(ErrUnknownEncoding, fmt.Sprintf("unknown server encoding %q", name)).
			WithContext("supported", strings.Join(ServerEncodings(), ","))
	}
	return &Encoder{name: upper, enc: enc}, nil
}

// Name returns the canonical encoding name.
func (e *Encoder) Name() string {
	return e.name
}

// Encode returns s as the engine should receive it. The engine takes
// NUL-terminated strings, so an embedded NUL is always a format error.
func (e *Encoder) Encode(s string) (string, error) {
	if i := strings.IndexByte(s, 0); i >= 0 {
		return "", newWithSentinel(ErrFormat, "string contains an embedded null byte").
			WithContext("offset", i)
	}
	if e == nil || e.raw {
		return s, nil
	}
	if !utf8.ValidString(s) {
		return "", newWithSentinel(ErrFormat, "string is not valid UTF-8").
			WithContext("encoding", e.name)
	}
	if e.enc == nil {
		return s, nil
	}
	out, err := e.enc.NewEncoder().String(norm.NFC.String(s))
	if err != nil {
		return "", wrapWithSentinel(ErrFormat, err, fmt.Sprintf("string has characters not representable in %s", e.name)).
			WithContext("encoding", e.name)
	}
	return out, nil
}

// Decode converts engine text back to UTF-8.
func (e *Encoder) Decode(s string) (string, error) {
	if e == nil || e.enc == nil {
		return s, nil
	}
	return e.enc.NewDecoder().String(s)
}
