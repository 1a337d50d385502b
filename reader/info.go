package reader

import (
	"bytes"
	"fmt"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/pdfxref/core"
)

// InfoString returns the text string stored under key in the document info
// dictionary, such as "Title" or "Producer". An absent entry yields "".
func (r *Reader) InfoString(key string) (string, error) {
	info, err := r.GetInfo()
	if err != nil || info == nil {
		return "", err
	}
	obj := info.Get(key)
	if obj == nil {
		return "", nil
	}
	resolved, err := r.Resolve(obj)
	if err != nil {
		return "", err
	}
	s, ok := resolved.(core.String)
	if !ok {
		return "", fmt.Errorf("/Info /%s is %v, not a string", key, resolved.Type())
	}
	return DecodeTextString([]byte(s))
}

// DecodeTextString converts a PDF text string to UTF-8. Strings starting
// with a UTF-16 or UTF-8 byte order mark are decoded accordingly, anything
// else is read as PDFDocEncoding, here approximated by Windows-1252. The
// result is in Unicode normalization form C.
func DecodeTextString(b []byte) (string, error) {
	var (
		out []byte
		err error
	)
	switch {
	case bytes.HasPrefix(b, []byte{0xfe, 0xff}):
		out, err = unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewDecoder().Bytes(b)
	case bytes.HasPrefix(b, []byte{0xff, 0xfe}):
		out, err = unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder().Bytes(b)
	case bytes.HasPrefix(b, []byte{0xef, 0xbb, 0xbf}):
		out, err = unicode.UTF8BOM.NewDecoder().Bytes(b)
	default:
		out, err = charmap.Windows1252.NewDecoder().Bytes(b)
	}
	if err != nil {
		return "", fmt.Errorf("decoding text string: %w", err)
	}
	return norm.NFC.String(string(out)), nil
}
