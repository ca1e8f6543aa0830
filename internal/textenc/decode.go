// Package textenc decodes terminal log files whose encoding is unknown.
// Field archives mix UTF-8, UTF-16 registry exports and single-byte
// Windows codepages, so every text read goes through a fallback chain.
package textenc

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names one step of a fallback chain.
type Encoding string

const (
	UTF8     Encoding = "utf-8"
	UTF8Sig  Encoding = "utf-8-sig"
	UTF16    Encoding = "utf-16"
	UTF16LE  Encoding = "utf-16-le"
	UTF16BE  Encoding = "utf-16-be"
	CP1252   Encoding = "cp1252"
	Latin1   Encoding = "latin-1"
	Replaced Encoding = "utf-8-replace"
)

// JournalChain is the fallback order for journal and trace files.
var JournalChain = []Encoding{UTF8, Latin1, CP1252, UTF16}

// RegistryChain is the fallback order for registry exports, which are
// frequently UTF-16 with or without a BOM.
var RegistryChain = []Encoding{UTF8Sig, UTF16, UTF16LE, UTF16BE, CP1252, Latin1, UTF8}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// cp1252 leaves these byte values unassigned; a strict decode rejects them.
var cp1252Holes = [...]byte{0x81, 0x8D, 0x8F, 0x90, 0x9D}

// Decode converts data using a single named encoding. It reports an error
// when the bytes are not valid in that encoding so the caller can try the
// next chain entry.
func (e Encoding) Decode(data []byte) (string, error) {
	switch e {
	case UTF8:
		if !utf8.Valid(data) {
			return "", fmt.Errorf("textenc: invalid utf-8")
		}
		return string(data), nil
	case UTF8Sig:
		trimmed := bytes.TrimPrefix(data, utf8BOM)
		if !utf8.Valid(trimmed) {
			return "", fmt.Errorf("textenc: invalid utf-8")
		}
		return string(trimmed), nil
	case UTF16:
		return decodeUTF16(data, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM))
	case UTF16LE:
		return decodeUTF16(data, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))
	case UTF16BE:
		return decodeUTF16(data, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM))
	case CP1252:
		for _, b := range data {
			for _, hole := range cp1252Holes {
				if b == hole {
					return "", fmt.Errorf("textenc: byte 0x%02X undefined in cp1252", b)
				}
			}
		}
		out, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	case Latin1:
		out, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	default:
		return "", fmt.Errorf("textenc: unknown encoding %q", string(e))
	}
}

func decodeUTF16(data []byte, enc unicode.Encoding) (string, error) {
	if len(data)%2 != 0 {
		return "", fmt.Errorf("textenc: odd byte length for utf-16")
	}
	out, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// DecodeChain tries each encoding in order and returns the first successful
// decode together with the encoding that produced it. When every entry fails
// it forces UTF-8 with replacement characters; text reads never hard-fail.
func DecodeChain(data []byte, chain []Encoding) (string, Encoding) {
	for _, enc := range chain {
		if s, err := enc.Decode(data); err == nil {
			return s, enc
		}
	}
	return ForceUTF8(data), Replaced
}

// ForceUTF8 decodes data as UTF-8, substituting U+FFFD for each invalid byte.
func ForceUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	var sb strings.Builder
	sb.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune(utf8.RuneError)
		} else {
			sb.WriteRune(r)
		}
		data = data[size:]
	}
	return sb.String()
}
