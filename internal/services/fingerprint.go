package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Fingerprint derives the cache key for a product context. The pipe delimiter
// keeps the concatenation unambiguous for free text, and the digest is stable:
// the same three inputs always map to the same key, so repeat requests hit the
// same row instead of paying for another generation.
func Fingerprint(title, description, imageURL string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s", title, description, imageURL)))
	return hex.EncodeToString(sum[:])
}
