// Package digest hashes PIN candidates for equality lookup in app_pin.
package digest

import (
	"crypto/sha256"
	"fmt"
)

// SHA256Hex returns the lowercase hex SHA-256 digest of input.
func SHA256Hex(input string) string {
	return fmt.Sprintf("%x", sha256.Sum256([]byte(input)))
}
