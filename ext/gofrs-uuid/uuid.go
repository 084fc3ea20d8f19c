// Package uuid registers codecs that map PostgreSQL uuid columns to
// github.com/gofrs/uuid values instead of the built-in [16]byte type.
package uuid

import (
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"

	"github.com/jackc/pgcopy/pgtype"
)

// Register replaces the uuid codecs in m with gofrs/uuid ones.
func Register(m *pgtype.Map) {
	for _, format := range []int16{pgtype.TextFormatCode, pgtype.BinaryFormatCode} {
		format := format
		m.RegisterDumper(uuid.UUID{}, format, func(ci *pgtype.ConnInfo) pgtype.Dumper { return Dumper{format: format} })
		m.RegisterLoader(pgtype.UUIDOID, format, func(ci *pgtype.ConnInfo) pgtype.Loader { return Loader{format: format} })
	}
}

type Dumper struct {
	format int16
}

func (d Dumper) Dump(src interface{}) ([]byte, error) {
	u, ok := src.(uuid.UUID)
	if !ok {
		return nil, errors.Errorf("cannot dump %T as uuid", src)
	}

	if d.format == pgtype.BinaryFormatCode {
		return u.Bytes(), nil
	}
	return []byte(u.String()), nil
}

type Loader struct {
	format int16
}

func (l Loader) Load(src []byte) (interface{}, error) {
	if l.format == pgtype.BinaryFormatCode {
		u, err := uuid.FromBytes(src)
		if err != nil {
			return nil, errors.Wrap(err, "cannot load uuid")
		}
		return u, nil
	}

	u, err := uuid.FromString(string(src))
	if err != nil {
		return nil, errors.Wrap(err, "cannot load uuid")
	}
	return u, nil
}
