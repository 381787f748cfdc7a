package storage

import (
	"fmt"

	"github.com/zeebo/xxh3"
)

// ContentHash fingerprints a document's canonical JSON for duplicate
// detection on insert.
func ContentHash(canonical []byte) string {
	h := xxh3.Hash128(canonical)
	return fmt.Sprintf("%016x%016x", h.Hi, h.Lo)
}
