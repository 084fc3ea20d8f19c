package pgtype

import (
	"github.com/cockroachdb/apd"
	"github.com/pkg/errors"
)

// Numeric codec backed by apd.Decimal. Only the text format is implemented;
// a binary-format numeric column therefore loads through the unknown-type
// fallback as raw bytes, and dumping a decimal into a binary COPY is
// rejected at resolution time.

type NumericDumper struct{}

func (NumericDumper) Dump(src interface{}) ([]byte, error) {
	switch v := src.(type) {
	case *apd.Decimal:
		return []byte(v.String()), nil
	case apd.Decimal:
		return []byte(v.String()), nil
	}
	return nil, errors.Errorf("cannot dump %T as numeric", src)
}

type NumericLoader struct{}

func (NumericLoader) Load(src []byte) (interface{}, error) {
	d := &apd.Decimal{}
	if _, _, err := d.SetString(string(src)); err != nil {
		return nil, errors.Wrap(err, "cannot load numeric")
	}
	return d, nil
}

func registerNumericCodecs(m *Map) {
	m.RegisterDumper(&apd.Decimal{}, TextFormatCode, func(ci *ConnInfo) Dumper { return NumericDumper{} })
	m.RegisterDumper(apd.Decimal{}, TextFormatCode, func(ci *ConnInfo) Dumper { return NumericDumper{} })
	m.RegisterLoader(NumericOID, TextFormatCode, func(ci *ConnInfo) Loader { return NumericLoader{} })
}
