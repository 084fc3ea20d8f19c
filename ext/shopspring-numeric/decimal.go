// Package numeric registers codecs that map PostgreSQL numeric columns to
// github.com/shopspring/decimal values instead of the built-in apd codecs.
package numeric

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/jackc/pgcopy/pgtype"
)

// Register replaces the numeric codecs in m with shopspring/decimal ones.
// Later registrations win, so calling this on a freshly built Map is all an
// application needs to switch decimal libraries.
func Register(m *pgtype.Map) {
	m.RegisterDumper(decimal.Decimal{}, pgtype.TextFormatCode, func(ci *pgtype.ConnInfo) pgtype.Dumper { return Dumper{} })
	m.RegisterDumper((*decimal.Decimal)(nil), pgtype.TextFormatCode, func(ci *pgtype.ConnInfo) pgtype.Dumper { return Dumper{} })
	m.RegisterLoader(pgtype.NumericOID, pgtype.TextFormatCode, func(ci *pgtype.ConnInfo) pgtype.Loader { return Loader{} })
}

// Dumper renders decimal.Decimal values in the text format numeric
// representation.
type Dumper struct{}

func (Dumper) Dump(src interface{}) ([]byte, error) {
	switch d := src.(type) {
	case decimal.Decimal:
		return []byte(d.String()), nil
	case *decimal.Decimal:
		if d == nil {
			return nil, errors.New("cannot dump nil *decimal.Decimal")
		}
		return []byte(d.String()), nil
	default:
		return nil, errors.Errorf("cannot dump %T as numeric", src)
	}
}

// Loader parses text format numeric data into decimal.Decimal values.
type Loader struct{}

func (Loader) Load(src []byte) (interface{}, error) {
	d, err := decimal.NewFromString(string(src))
	if err != nil {
		return nil, errors.Wrap(err, "cannot load numeric")
	}
	return d, nil
}
