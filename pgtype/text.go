package pgtype

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
)

// TextDumper encodes Go strings for the text or binary wire format.
//
// The text format cannot represent a NUL byte, so Dump fails with a
// DataError if one is present. The binary format is length-prefixed and has
// no such restriction.
type TextDumper struct {
	ci     *ConnInfo
	format int16
}

func NewTextDumper(ci *ConnInfo, format int16) *TextDumper {
	return &TextDumper{ci: ci, format: format}
}

func (d *TextDumper) Dump(src interface{}) ([]byte, error) {
	s, ok := src.(string)
	if !ok {
		return nil, errors.Errorf("cannot dump %T as text", src)
	}

	if d.format == TextFormatCode && strings.ContainsRune(s, 0) {
		return nil, &DataError{msg: "PostgreSQL text fields cannot contain NUL (0x00) bytes"}
	}

	return d.ci.encodeString(s)
}

// TextLoader decodes text and varchar columns. The result is a string when
// the connection has a usable client encoding and the raw bytes when it does
// not (SQL_ASCII): callers must be prepared for either. This is the
// documented contract for SQL_ASCII databases, not an error.
type TextLoader struct {
	enc  encoding.Encoding
	utf8 bool
	raw  bool
}

func NewTextLoader(ci *ConnInfo) *TextLoader {
	return &TextLoader{enc: ci.encoding, utf8: ci.utf8, raw: ci.encoding == nil}
}

func (l *TextLoader) Load(src []byte) (interface{}, error) {
	if l.raw {
		buf := make([]byte, len(src))
		copy(buf, src)
		return buf, nil
	}

	if l.utf8 {
		return string(src), nil
	}

	b, err := l.enc.NewDecoder().Bytes(src)
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode text")
	}
	return string(b), nil
}

// NameLoader decodes identifier-like columns (name, bpchar). Unlike
// TextLoader it always decodes: a connection without a usable charset or
// data invalid in it is a hard error, never a raw-bytes fallback.
type NameLoader struct {
	enc            encoding.Encoding
	utf8           bool
	clientEncoding string
}

func NewNameLoader(ci *ConnInfo) *NameLoader {
	return &NameLoader{enc: ci.encoding, utf8: ci.utf8, clientEncoding: ci.clientEncoding}
}

func (l *NameLoader) Load(src []byte) (interface{}, error) {
	if l.enc == nil {
		// SQL_ASCII: identifiers are still decoded, strictly as ASCII.
		for _, b := range src {
			if b >= 0x80 {
				return nil, errors.New("cannot decode identifier: non-ASCII byte under SQL_ASCII encoding")
			}
		}
		return string(src), nil
	}

	if l.utf8 {
		if !utf8.Valid(src) {
			return nil, errors.New("cannot decode identifier: invalid UTF-8")
		}
		return string(src), nil
	}

	b, err := l.enc.NewDecoder().Bytes(src)
	if err != nil {
		return nil, errors.Wrap(err, "cannot decode identifier")
	}
	return string(b), nil
}
