package converter

import (
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// plainText is the content type used when sniffing file encodings
const plainText = "text/plain"

// DecodeText converts raw file bytes to a UTF-8 string.
// Valid UTF-8 is returned unchanged. BOM-marked UTF-16 is converted, other
// bytes are decoded with the sniffed charset, and anything left undecodable
// becomes U+FFFD. It never fails.
func DecodeText(content []byte) string {
	if utf8.Valid(content) {
		return string(content)
	}

	enc, name, _ := charset.DetermineEncoding(content, plainText)
	if name == "utf-8" {
		// the charset table maps utf-8 to a pass-through decoder
		enc = unicode.UTF8
	}
	if out, err := decode(content, enc); err == nil && utf8.ValidString(out) {
		return out
	}

	out, _ := decode(content, unicode.UTF8)
	return out
}

// DetectEncoding returns the charset name DecodeText would use for content
func DetectEncoding(content []byte) string {
	if utf8.Valid(content) {
		return "utf-8"
	}
	_, name, _ := charset.DetermineEncoding(content, plainText)
	return name
}

func decode(content []byte, enc encoding.Encoding) (string, error) {
	out, _, err := transform.Bytes(unicode.BOMOverride(enc.NewDecoder()), content)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
