package pgtype

import (
	"reflect"

	"github.com/pkg/errors"
)

// PostgreSQL oids for the types this package ships codecs for.
const (
	BoolOID    = 16
	ByteaOID   = 17
	CharOID    = 18
	NameOID    = 19
	Int8OID    = 20
	Int2OID    = 21
	Int4OID    = 23
	TextOID    = 25
	UnknownOID = 705
	BPCharOID  = 1042
	VarcharOID = 1043
	NumericOID = 1700
	UUIDOID    = 2950
)

// OID is a PostgreSQL object identifier. Here it identifies the server-side
// type of a value. UnknownOID marks a column whose type the server did not
// resolve; loader lookup falls back to it.
type OID uint32

// PostgreSQL format codes
const (
	TextFormatCode   int16 = 0
	BinaryFormatCode int16 = 1
)

// Dumper converts a single Go value to its PostgreSQL wire representation.
// A Dumper is constructed for one (type, format) pair and a ConnInfo
// snapshot; it is immutable after construction.
type Dumper interface {
	// Dump returns the wire bytes for src. It must not retain src.
	Dump(src interface{}) ([]byte, error)
}

// Loader converts PostgreSQL wire bytes to a Go value. Like a Dumper, it is
// bound to one (OID, format) pair at construction.
type Loader interface {
	// Load returns the Go value represented by src. It must not retain src.
	// src is never nil; SQL NULL is handled before the Loader is invoked.
	Load(src []byte) (interface{}, error)
}

// DumperFactory constructs a Dumper bound to ci. Resolution via Map is pure;
// any connection state is read here, at construction.
type DumperFactory func(ci *ConnInfo) Dumper

// LoaderFactory constructs a Loader bound to ci.
type LoaderFactory func(ci *ConnInfo) Loader

type dumperKey struct {
	typ    reflect.Type
	format int16
}

type loaderKey struct {
	oid    OID
	format int16
}

// Map is the codec registry. Dumpers are keyed by the Go type of the value
// and the wire format; Loaders by the server type OID and the wire format.
// Registering an entry for a key that is already present replaces the
// earlier entry, so applications can override the built-in codecs.
type Map struct {
	dumpers map[dumperKey]DumperFactory
	loaders map[loaderKey]LoaderFactory
}

// NewMap returns a Map populated with the built-in codecs.
func NewMap() *Map {
	m := &Map{
		dumpers: make(map[dumperKey]DumperFactory, 32),
		loaders: make(map[loaderKey]LoaderFactory, 32),
	}

	registerBuiltins(m)

	return m
}

// RegisterDumper registers f for values with the same concrete type as value
// in the given format.
func (m *Map) RegisterDumper(value interface{}, format int16, f DumperFactory) {
	m.dumpers[dumperKey{typ: reflect.TypeOf(value), format: format}] = f
}

// RegisterLoader registers f for the (oid, format) pair.
func (m *Map) RegisterLoader(oid OID, format int16, f LoaderFactory) {
	m.loaders[loaderKey{oid: oid, format: format}] = f
}

// DumperFor resolves the dumper factory for src in the given format by the
// concrete type of src.
func (m *Map) DumperFor(src interface{}, format int16) (DumperFactory, error) {
	if src == nil {
		return nil, errors.New("cannot resolve dumper for untyped nil")
	}

	f, ok := m.dumpers[dumperKey{typ: reflect.TypeOf(src), format: format}]
	if !ok {
		return nil, errors.Errorf("cannot resolve dumper for %T in %s", src, formatName(format))
	}

	return f, nil
}

// LoaderFor resolves the loader factory for the (oid, format) pair. When no
// exact entry exists it falls back to the entry registered for UnknownOID.
func (m *Map) LoaderFor(oid OID, format int16) (LoaderFactory, error) {
	if f, ok := m.loaders[loaderKey{oid: oid, format: format}]; ok {
		return f, nil
	}

	if f, ok := m.loaders[loaderKey{oid: UnknownOID, format: format}]; ok {
		return f, nil
	}

	return nil, errors.Errorf("cannot resolve loader for oid %d in %s", oid, formatName(format))
}

func formatName(format int16) string {
	switch format {
	case TextFormatCode:
		return "text format"
	case BinaryFormatCode:
		return "binary format"
	default:
		return "invalid format"
	}
}

func registerBuiltins(m *Map) {
	m.RegisterDumper("", TextFormatCode, func(ci *ConnInfo) Dumper { return NewTextDumper(ci, TextFormatCode) })
	m.RegisterDumper("", BinaryFormatCode, func(ci *ConnInfo) Dumper { return NewTextDumper(ci, BinaryFormatCode) })
	m.RegisterDumper([]byte(nil), TextFormatCode, func(ci *ConnInfo) Dumper { return NewByteaDumper(ci, TextFormatCode) })
	m.RegisterDumper([]byte(nil), BinaryFormatCode, func(ci *ConnInfo) Dumper { return NewByteaDumper(ci, BinaryFormatCode) })

	for _, oid := range []OID{TextOID, VarcharOID} {
		oid := oid
		m.RegisterLoader(oid, TextFormatCode, func(ci *ConnInfo) Loader { return NewTextLoader(ci) })
		m.RegisterLoader(oid, BinaryFormatCode, func(ci *ConnInfo) Loader { return NewTextLoader(ci) })
	}
	m.RegisterLoader(UnknownOID, TextFormatCode, func(ci *ConnInfo) Loader { return NewTextLoader(ci) })

	for _, oid := range []OID{NameOID, BPCharOID} {
		oid := oid
		m.RegisterLoader(oid, TextFormatCode, func(ci *ConnInfo) Loader { return NewNameLoader(ci) })
		m.RegisterLoader(oid, BinaryFormatCode, func(ci *ConnInfo) Loader { return NewNameLoader(ci) })
	}

	m.RegisterLoader(ByteaOID, TextFormatCode, func(ci *ConnInfo) Loader { return ByteaTextLoader{} })
	m.RegisterLoader(ByteaOID, BinaryFormatCode, func(ci *ConnInfo) Loader { return ByteaBinaryLoader{} })

	// Binary-format unknown-typed columns are defined to be raw bytes.
	m.RegisterLoader(UnknownOID, BinaryFormatCode, func(ci *ConnInfo) Loader { return ByteaBinaryLoader{} })

	registerIntCodecs(m)
	registerNumericCodecs(m)
	registerUUIDCodecs(m)
}
