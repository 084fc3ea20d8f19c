package pgtype

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// UUID is the native uuid value: 16 raw bytes. ext/gofrs-uuid registers
// codecs for github.com/gofrs/uuid values over the same wire formats.
type UUID [16]byte

func (u UUID) String() string {
	buf := make([]byte, 36)
	hex.Encode(buf[0:8], u[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], u[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], u[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], u[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], u[10:16])
	return string(buf)
}

func parseUUID(src string) (u UUID, err error) {
	switch len(src) {
	case 36:
		src = src[0:8] + src[9:13] + src[14:18] + src[19:23] + src[24:36]
	case 32:
		// dashes already stripped
	default:
		return u, errors.Errorf("cannot parse UUID %q", src)
	}

	buf, err := hex.DecodeString(src)
	if err != nil {
		return u, err
	}

	copy(u[:], buf)
	return u, nil
}

type UUIDDumper struct{ format int16 }

func NewUUIDDumper(format int16) *UUIDDumper { return &UUIDDumper{format: format} }

func (d *UUIDDumper) Dump(src interface{}) ([]byte, error) {
	u, ok := src.(UUID)
	if !ok {
		return nil, errors.Errorf("cannot dump %T as uuid", src)
	}

	if d.format == BinaryFormatCode {
		buf := make([]byte, 16)
		copy(buf, u[:])
		return buf, nil
	}
	return []byte(u.String()), nil
}

type UUIDLoader struct{ format int16 }

func NewUUIDLoader(format int16) *UUIDLoader { return &UUIDLoader{format: format} }

func (l *UUIDLoader) Load(src []byte) (interface{}, error) {
	if l.format == BinaryFormatCode {
		if len(src) != 16 {
			return nil, errors.Errorf("invalid length for uuid: %d", len(src))
		}
		var u UUID
		copy(u[:], src)
		return u, nil
	}

	return parseUUID(string(src))
}

func registerUUIDCodecs(m *Map) {
	m.RegisterDumper(UUID{}, TextFormatCode, func(ci *ConnInfo) Dumper { return NewUUIDDumper(TextFormatCode) })
	m.RegisterDumper(UUID{}, BinaryFormatCode, func(ci *ConnInfo) Dumper { return NewUUIDDumper(BinaryFormatCode) })
	m.RegisterLoader(UUIDOID, TextFormatCode, func(ci *ConnInfo) Loader { return NewUUIDLoader(TextFormatCode) })
	m.RegisterLoader(UUIDOID, BinaryFormatCode, func(ci *ConnInfo) Loader { return NewUUIDLoader(BinaryFormatCode) })
}
