// Package textenc classifies and converts the text encodings the engine accepts.
//
// Detection is an ordered fallback chain, not statistical: BOM sniff,
// strict UTF-8, strict CP932 (the legacy code page the source files
// come from), then Latin-1 as a last resort. Latin-1 can decode any
// byte sequence, so the chain never fails outright.
package textenc

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/transform"
)

// Encoding names a supported text encoding.
type Encoding string

const (
	UTF8WithBOM Encoding = "utf-8-sig"
	UTF8        Encoding = "utf-8"
	CP932       Encoding = "cp932"
	Latin1      Encoding = "latin-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Valid reports whether name is a recognized encoding.
func Valid(name string) bool {
	switch Encoding(name) {
	case UTF8WithBOM, UTF8, CP932, Latin1:
		return true
	}
	return false
}

// Detect classifies the encoding of raw bytes.
func Detect(data []byte) Encoding {
	if bytes.HasPrefix(data, utf8BOM) {
		return UTF8WithBOM
	}
	if utf8.Valid(data) {
		return UTF8
	}
	if _, lossy := decodeWith(data, japanese.ShiftJIS); !lossy {
		return CP932
	}
	return Latin1
}

// Decode converts raw bytes to a string under the named encoding.
// Undecodable bytes become replacement characters rather than errors,
// so the pipeline never aborts on bad input bytes. The second return
// reports whether any substitution happened.
func Decode(data []byte, enc Encoding) (string, bool) {
	switch enc {
	case UTF8WithBOM:
		data = bytes.TrimPrefix(data, utf8BOM)
		fallthrough
	case UTF8:
		if utf8.Valid(data) {
			return string(data), false
		}
		return strings.ToValidUTF8(string(data), string(utf8.RuneError)), true
	case CP932:
		return decodeWith(data, japanese.ShiftJIS)
	default:
		// Latin-1 maps every byte to a code point; never lossy.
		s, _ := decodeWith(data, charmap.ISO8859_1)
		return s, false
	}
}

// decodeWith decodes data under enc. The x/text decoders substitute
// U+FFFD for invalid input instead of failing, so lossiness shows up
// as a replacement rune in the output that the input could not have
// encoded itself.
func decodeWith(data []byte, enc encoding.Encoding) (string, bool) {
	out, _, err := transform.Bytes(enc.NewDecoder(), data)
	if err != nil {
		return strings.ToValidUTF8(string(out), string(utf8.RuneError)), true
	}
	return string(out), strings.ContainsRune(string(out), utf8.RuneError)
}

// Encode converts text to bytes under the named encoding. Characters
// the target encoding cannot represent are substituted, not fatal.
// utf-8-sig output carries a leading BOM.
func Encode(text string, enc Encoding) ([]byte, error) {
	switch enc {
	case UTF8WithBOM:
		out := make([]byte, 0, len(utf8BOM)+len(text))
		out = append(out, utf8BOM...)
		return append(out, text...), nil
	case UTF8:
		return []byte(text), nil
	case CP932:
		return encodeWith(text, japanese.ShiftJIS)
	case Latin1:
		return encodeWith(text, charmap.ISO8859_1)
	}
	return nil, fmt.Errorf("unknown encoding %q", enc)
}

func encodeWith(text string, enc encoding.Encoding) ([]byte, error) {
	e := encoding.ReplaceUnsupported(enc.NewEncoder())
	out, _, err := transform.Bytes(e, []byte(text))
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return out, nil
}
