package signature

import (
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

const utf8Name = "UTF-8"

// decoder turns raw signature bytes in some encoding into UTF-8 strings.
type decoder struct {
	dec *encoding.Decoder
}

// resolveEncoding looks name up in the IANA registry. An empty name is UTF-8.
func resolveEncoding(name string) (decoder, error) {
	if name == "" || strings.EqualFold(name, utf8Name) {
		return decoder{}, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return decoder{}, fmt.Errorf("%w: %q", ErrEncoding, name)
	}

	canonical, err := ianaindex.IANA.Name(enc)
	if err == nil && canonical == utf8Name {
		return decoder{}, nil
	}

	return decoder{dec: enc.NewDecoder()}, nil
}

// decode converts raw to UTF-8. UTF-8 input passes through unchanged.
func (d decoder) decode(raw string) (string, error) {
	if d.dec == nil {
		return raw, nil
	}

	out, err := d.dec.String(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	return out, nil
}

// ValidEncoding reports whether name resolves to a known encoding.
func ValidEncoding(name string) bool {
	_, err := resolveEncoding(name)

	return err == nil
}
