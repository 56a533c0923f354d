package store

import (
	"crypto/sha256"
	"fmt"
)

// ContentHash is the deterministic digest used to detect unchanged files and
// to key cached parse artifacts.
func ContentHash(content string) string {
	sum := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", sum)
}
