package api

import (
	"encoding/hex"
	"sort"

	"github.com/zeebo/blake3"
)

// Hash returns a deterministic BLAKE3 digest of the lesson content.
// It covers Query, Duration, Response and Sources (sorted); the ID and
// timestamps are left out so regenerated identical plans hash the same.
func (l Lesson) Hash() string {
	h := blake3.New()

	h.Write([]byte(l.Query))
	h.Write([]byte{0})

	h.Write([]byte(l.Duration))
	h.Write([]byte{0})

	h.Write([]byte(l.Response))
	h.Write([]byte{0})

	sorted := append([]string(nil), l.Sources...)
	sort.Strings(sorted)
	for _, s := range sorted {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}
