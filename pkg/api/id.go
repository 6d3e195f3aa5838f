package api

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"time"
)

// idEncoding avoids i, l, o and u so ids are easy to type as prefixes.
var idEncoding = base32.NewEncoding("0123456789abcdefghjkmnpqrstvwxyz").WithPadding(base32.NoPadding)

// NewID returns a 16 character lesson id: 48 bits of milliseconds since the
// epoch then 32 random bits. Ids sort by creation time.
func NewID() string {
	var buf [10]byte
	var ms [8]byte
	binary.BigEndian.PutUint64(ms[:], uint64(time.Now().UnixMilli()))
	copy(buf[:6], ms[2:])
	_, _ = rand.Read(buf[6:])
	return idEncoding.EncodeToString(buf[:])
}
