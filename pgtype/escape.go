package pgtype

import (
	"encoding/hex"

	"github.com/Masterminds/semver/v3"
	"github.com/pkg/errors"
)

// hexOutputMinVersion is the first server version whose bytea_output
// defaults to hex. Older servers expect the octal escape form.
var hexOutputMinVersion = semver.MustParse("9.0.0")

// Escaping converts raw bytes to and from the bytea literal quoting
// convention. EscapeBytea and UnescapeBytea are pure once the Escaping is
// constructed; the only state is the output form chosen from the server
// version at construction time.
type Escaping struct {
	useHex bool
}

// NewEscaping returns an Escaping bound to ci. A nil ci, or a ci with no
// recorded server version, yields the connection-less default: hex output.
func NewEscaping(ci *ConnInfo) *Escaping {
	e := &Escaping{useHex: true}

	if ci != nil && ci.serverVersion != "" {
		if v, err := semver.NewVersion(ci.serverVersion); err == nil {
			e.useHex = !v.LessThan(hexOutputMinVersion)
		}
	}

	return e
}

// EscapeBytea escapes src into the server's bytea literal form: "\x" hex for
// 9.0+ servers, octal escapes otherwise.
func (e *Escaping) EscapeBytea(src []byte) []byte {
	if e.useHex {
		dst := make([]byte, 2+hex.EncodedLen(len(src)))
		dst[0] = '\\'
		dst[1] = 'x'
		hex.Encode(dst[2:], src)
		return dst
	}

	dst := make([]byte, 0, len(src)*2)
	for _, b := range src {
		switch {
		case b == '\\':
			dst = append(dst, '\\', '\\')
		case b < 0x20 || b > 0x7e:
			dst = append(dst, '\\', '0'+(b>>6), '0'+((b>>3)&07), '0'+(b&07))
		default:
			dst = append(dst, b)
		}
	}
	return dst
}

// UnescapeBytea is the inverse of EscapeBytea. It accepts both the hex and
// the octal escape forms regardless of which form this Escaping produces,
// since unescaping rules are connection-independent.
func (e *Escaping) UnescapeBytea(src []byte) ([]byte, error) {
	if len(src) >= 2 && src[0] == '\\' && src[1] == 'x' {
		dst := make([]byte, hex.DecodedLen(len(src)-2))
		_, err := hex.Decode(dst, src[2:])
		if err != nil {
			return nil, errors.Wrap(err, "invalid hex bytea")
		}
		return dst, nil
	}

	dst := make([]byte, 0, len(src))
	for i := 0; i < len(src); {
		if src[i] != '\\' {
			dst = append(dst, src[i])
			i++
			continue
		}

		if i+1 < len(src) && src[i+1] == '\\' {
			dst = append(dst, '\\')
			i += 2
			continue
		}

		if i+3 < len(src) && isOctal(src[i+1]) && isOctal(src[i+2]) && isOctal(src[i+3]) {
			dst = append(dst, (src[i+1]-'0')<<6|(src[i+2]-'0')<<3|(src[i+3]-'0'))
			i += 4
			continue
		}

		return nil, errors.Errorf("invalid bytea escape sequence at offset %d", i)
	}
	return dst, nil
}

func isOctal(b byte) bool {
	return b >= '0' && b <= '7'
}
