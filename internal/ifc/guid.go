package ifc

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// guidAlphabet is the 64-character alphabet of IFC's compressed GlobalId.
const guidAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz_$"

// ExpandGUID decodes a 22-character IFC GlobalId into the UUID it encodes.
//
// The first two characters carry the leading byte; each following group of
// four characters carries three bytes.
func ExpandGUID(g string) (uuid.UUID, error) {
	if len(g) != 22 {
		return uuid.Nil, fmt.Errorf("ifc: global id %q: want 22 characters, got %d", g, len(g))
	}
	var b [16]byte
	head, err := decode64(g[0:2])
	if err != nil {
		return uuid.Nil, fmt.Errorf("ifc: global id %q: %w", g, err)
	}
	if head > 0xff {
		return uuid.Nil, fmt.Errorf("ifc: global id %q: leading group out of range", g)
	}
	b[0] = byte(head)
	for k := 0; k < 5; k++ {
		v, err := decode64(g[2+4*k : 6+4*k])
		if err != nil {
			return uuid.Nil, fmt.Errorf("ifc: global id %q: %w", g, err)
		}
		b[1+3*k] = byte(v >> 16)
		b[2+3*k] = byte(v >> 8)
		b[3+3*k] = byte(v)
	}
	return uuid.FromBytes(b[:])
}

// CompressGUID encodes u in IFC's 22-character GlobalId form.
func CompressGUID(u uuid.UUID) string {
	var sb strings.Builder
	sb.Grow(22)
	encode64(&sb, uint32(u[0]), 2)
	for k := 0; k < 5; k++ {
		v := uint32(u[1+3*k])<<16 | uint32(u[2+3*k])<<8 | uint32(u[3+3*k])
		encode64(&sb, v, 4)
	}
	return sb.String()
}

func decode64(s string) (uint32, error) {
	var v uint32
	for i := 0; i < len(s); i++ {
		idx := strings.IndexByte(guidAlphabet, s[i])
		if idx < 0 {
			return 0, fmt.Errorf("invalid character %q", s[i])
		}
		v = v<<6 | uint32(idx)
	}
	return v, nil
}

func encode64(sb *strings.Builder, v uint32, digits int) {
	buf := make([]byte, digits)
	for i := digits - 1; i >= 0; i-- {
		buf[i] = guidAlphabet[v&63]
		v >>= 6
	}
	sb.Write(buf)
}
