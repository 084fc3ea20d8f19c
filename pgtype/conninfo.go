package pgtype

import (
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// pgEncodingIANA maps PostgreSQL client_encoding names to the IANA charset
// names golang.org/x/text understands. SQL_ASCII is deliberately absent: it
// is not a real character set and is handled as raw-bytes passthrough.
var pgEncodingIANA = map[string]string{
	"UTF8":    "UTF-8",
	"LATIN1":  "ISO-8859-1",
	"LATIN2":  "ISO-8859-2",
	"LATIN3":  "ISO-8859-3",
	"LATIN4":  "ISO-8859-4",
	"LATIN5":  "ISO-8859-9",
	"LATIN6":  "ISO-8859-10",
	"LATIN7":  "ISO-8859-13",
	"LATIN8":  "ISO-8859-14",
	"LATIN9":  "ISO-8859-15",
	"WIN866":  "IBM866",
	"WIN1250": "windows-1250",
	"WIN1251": "windows-1251",
	"WIN1252": "windows-1252",
	"WIN1253": "windows-1253",
	"WIN1254": "windows-1254",
	"WIN1255": "windows-1255",
	"WIN1256": "windows-1256",
	"WIN1257": "windows-1257",
	"WIN1258": "windows-1258",
	"KOI8R":   "KOI8-R",
	"KOI8U":   "KOI8-U",
	"EUC_JP":  "EUC-JP",
	"EUC_KR":  "EUC-KR",
	"SJIS":    "Shift_JIS",
	"GBK":     "GBK",
	"GB18030": "gb18030",
	"BIG5":    "Big5",
}

// ConnInfo is the connection state codecs need to do their work: the client
// text encoding and the server version. It is owned by the connection.
// Codecs snapshot the fields they need when they are constructed and never
// observe later changes; constructing new codec instances is the way to pick
// up a changed ConnInfo.
type ConnInfo struct {
	clientEncoding string
	encoding       encoding.Encoding // nil for SQL_ASCII
	utf8           bool
	serverVersion  string
}

// NewConnInfo returns a ConnInfo for a UTF8 connection with no known server
// version.
func NewConnInfo() *ConnInfo {
	ci := &ConnInfo{}
	if err := ci.SetClientEncoding("UTF8"); err != nil {
		panic(err)
	}
	return ci
}

// SetClientEncoding sets the client text encoding by its PostgreSQL name
// (e.g. "UTF8", "LATIN1", "WIN1252", "SQL_ASCII"). Codecs constructed before
// the call keep the previous encoding.
func (ci *ConnInfo) SetClientEncoding(name string) error {
	normalized := strings.ToUpper(strings.ReplaceAll(name, "-", ""))

	if normalized == "SQL_ASCII" || normalized == "SQLASCII" {
		ci.clientEncoding = "SQL_ASCII"
		ci.encoding = nil
		ci.utf8 = false
		return nil
	}

	ianaName, ok := pgEncodingIANA[normalized]
	if !ok {
		return errors.Errorf("unknown client encoding %q", name)
	}

	enc, err := ianaindex.IANA.Encoding(ianaName)
	if err != nil || enc == nil {
		return errors.Errorf("no charset available for client encoding %q", name)
	}

	ci.clientEncoding = normalized
	ci.encoding = enc
	ci.utf8 = normalized == "UTF8"
	return nil
}

// SetServerVersion records the server version string (e.g. "12.4") reported
// by the server_version parameter status.
func (ci *ConnInfo) SetServerVersion(version string) {
	ci.serverVersion = version
}

// ClientEncoding returns the PostgreSQL name of the active client encoding.
func (ci *ConnInfo) ClientEncoding() string {
	return ci.clientEncoding
}

// ServerVersion returns the recorded server version, or "" if unknown.
func (ci *ConnInfo) ServerVersion() string {
	return ci.serverVersion
}

// encodeString transcodes s from Go's native UTF-8 to the client encoding.
// UTF8 and SQL_ASCII connections pass the bytes through unchanged.
func (ci *ConnInfo) encodeString(s string) ([]byte, error) {
	if ci.utf8 || ci.encoding == nil {
		return []byte(s), nil
	}

	b, err := ci.encoding.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return nil, &DataError{msg: "cannot encode string in client encoding " + ci.clientEncoding + ": " + err.Error()}
	}
	return b, nil
}
