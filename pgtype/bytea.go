package pgtype

import (
	"sync"

	"github.com/pkg/errors"
)

// ByteaDumper encodes []byte values. In the text format the bytes are
// escaped into the server's bytea literal form; the binary format is
// length-prefixed raw bytes, so the value passes through unmodified.
type ByteaDumper struct {
	esc    *Escaping
	format int16
}

func NewByteaDumper(ci *ConnInfo, format int16) *ByteaDumper {
	d := &ByteaDumper{format: format}
	if format == TextFormatCode {
		d.esc = NewEscaping(ci)
	}
	return d
}

func (d *ByteaDumper) Dump(src interface{}) ([]byte, error) {
	b, ok := src.([]byte)
	if !ok {
		return nil, errors.Errorf("cannot dump %T as bytea", src)
	}

	if d.format == BinaryFormatCode {
		return b, nil
	}

	return d.esc.EscapeBytea(b), nil
}

// Unescaping rules do not depend on connection state, so a single Escaping
// serves every ByteaTextLoader. Built on first use, exactly once.
var (
	byteaLoaderEscaping     *Escaping
	byteaLoaderEscapingOnce sync.Once
)

func sharedEscaping() *Escaping {
	byteaLoaderEscapingOnce.Do(func() {
		byteaLoaderEscaping = NewEscaping(nil)
	})
	return byteaLoaderEscaping
}

// ByteaTextLoader decodes text-format bytea columns by unescaping the
// literal form.
type ByteaTextLoader struct{}

func (ByteaTextLoader) Load(src []byte) (interface{}, error) {
	return sharedEscaping().UnescapeBytea(src)
}

// ByteaBinaryLoader decodes binary-format bytea columns. The wire bytes are
// the value. It also serves binary-format columns of unknown type.
type ByteaBinaryLoader struct{}

func (ByteaBinaryLoader) Load(src []byte) (interface{}, error) {
	buf := make([]byte, len(src))
	copy(buf, src)
	return buf, nil
}
