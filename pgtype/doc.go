// Package pgtype converts between Go values and the PostgreSQL text and
// binary wire formats.
//
// A Map is the codec registry. Dumpers (Go value -> wire bytes) are resolved
// by the concrete Go type of the value and the wire format; Loaders (wire
// bytes -> Go value) by the server type OID and the wire format, falling
// back to the unknown-type entry. Codec instances snapshot the ConnInfo they
// are constructed with, so they stay valid even if the connection's
// encoding changes afterwards.
package pgtype
