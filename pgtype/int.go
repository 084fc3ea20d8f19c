package pgtype

import (
	"encoding/binary"
	"strconv"

	"github.com/jackc/pgio"
	"github.com/pkg/errors"
)

// Integer codecs for int2, int4 and int8. Dumpers are selected by the Go
// type of the value: int16 -> int2, int32 -> int4, int and int64 -> int8.

type Int2Dumper struct{ format int16 }

func NewInt2Dumper(format int16) *Int2Dumper { return &Int2Dumper{format: format} }

func (d *Int2Dumper) Dump(src interface{}) ([]byte, error) {
	n, ok := src.(int16)
	if !ok {
		return nil, errors.Errorf("cannot dump %T as int2", src)
	}

	if d.format == BinaryFormatCode {
		return pgio.AppendInt16(nil, n), nil
	}
	return strconv.AppendInt(nil, int64(n), 10), nil
}

type Int4Dumper struct{ format int16 }

func NewInt4Dumper(format int16) *Int4Dumper { return &Int4Dumper{format: format} }

func (d *Int4Dumper) Dump(src interface{}) ([]byte, error) {
	n, ok := src.(int32)
	if !ok {
		return nil, errors.Errorf("cannot dump %T as int4", src)
	}

	if d.format == BinaryFormatCode {
		return pgio.AppendInt32(nil, n), nil
	}
	return strconv.AppendInt(nil, int64(n), 10), nil
}

type Int8Dumper struct{ format int16 }

func NewInt8Dumper(format int16) *Int8Dumper { return &Int8Dumper{format: format} }

func (d *Int8Dumper) Dump(src interface{}) ([]byte, error) {
	var n int64
	switch v := src.(type) {
	case int64:
		n = v
	case int:
		n = int64(v)
	default:
		return nil, errors.Errorf("cannot dump %T as int8", src)
	}

	if d.format == BinaryFormatCode {
		return pgio.AppendInt64(nil, n), nil
	}
	return strconv.AppendInt(nil, n, 10), nil
}

type IntLoader struct {
	oid    OID
	format int16
}

func NewIntLoader(oid OID, format int16) *IntLoader { return &IntLoader{oid: oid, format: format} }

func (l *IntLoader) Load(src []byte) (interface{}, error) {
	if l.format == TextFormatCode {
		n, err := strconv.ParseInt(string(src), 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, "cannot load integer")
		}
		return l.sized(n)
	}

	switch l.oid {
	case Int2OID:
		if len(src) != 2 {
			return nil, errors.Errorf("invalid length for int2: %d", len(src))
		}
		return int16(binary.BigEndian.Uint16(src)), nil
	case Int4OID:
		if len(src) != 4 {
			return nil, errors.Errorf("invalid length for int4: %d", len(src))
		}
		return int32(binary.BigEndian.Uint32(src)), nil
	case Int8OID:
		if len(src) != 8 {
			return nil, errors.Errorf("invalid length for int8: %d", len(src))
		}
		return int64(binary.BigEndian.Uint64(src)), nil
	}

	return nil, errors.Errorf("IntLoader cannot load oid %d", l.oid)
}

func (l *IntLoader) sized(n int64) (interface{}, error) {
	switch l.oid {
	case Int2OID:
		if n < -32768 || n > 32767 {
			return nil, errors.Errorf("%d is out of range for int2", n)
		}
		return int16(n), nil
	case Int4OID:
		if n < -2147483648 || n > 2147483647 {
			return nil, errors.Errorf("%d is out of range for int4", n)
		}
		return int32(n), nil
	case Int8OID:
		return n, nil
	}

	return nil, errors.Errorf("IntLoader cannot load oid %d", l.oid)
}

func registerIntCodecs(m *Map) {
	m.RegisterDumper(int16(0), TextFormatCode, func(ci *ConnInfo) Dumper { return NewInt2Dumper(TextFormatCode) })
	m.RegisterDumper(int16(0), BinaryFormatCode, func(ci *ConnInfo) Dumper { return NewInt2Dumper(BinaryFormatCode) })
	m.RegisterDumper(int32(0), TextFormatCode, func(ci *ConnInfo) Dumper { return NewInt4Dumper(TextFormatCode) })
	m.RegisterDumper(int32(0), BinaryFormatCode, func(ci *ConnInfo) Dumper { return NewInt4Dumper(BinaryFormatCode) })
	m.RegisterDumper(int64(0), TextFormatCode, func(ci *ConnInfo) Dumper { return NewInt8Dumper(TextFormatCode) })
	m.RegisterDumper(int64(0), BinaryFormatCode, func(ci *ConnInfo) Dumper { return NewInt8Dumper(BinaryFormatCode) })
	m.RegisterDumper(int(0), TextFormatCode, func(ci *ConnInfo) Dumper { return NewInt8Dumper(TextFormatCode) })
	m.RegisterDumper(int(0), BinaryFormatCode, func(ci *ConnInfo) Dumper { return NewInt8Dumper(BinaryFormatCode) })

	for _, oid := range []OID{Int2OID, Int4OID, Int8OID} {
		oid := oid
		m.RegisterLoader(oid, TextFormatCode, func(ci *ConnInfo) Loader { return NewIntLoader(oid, TextFormatCode) })
		m.RegisterLoader(oid, BinaryFormatCode, func(ci *ConnInfo) Loader { return NewIntLoader(oid, BinaryFormatCode) })
	}
}
