package crypto

import (
	"crypto/rand"
	"encoding/base64"
	"io"
)

// SecureToken creates a new random token. The default length gives 128 bits
// of entropy, which is the floor for CSRF state tokens.
func SecureToken(options ...int) string {
	length := 16
	if len(options) > 0 {
		length = options[0]
	}
	b := make([]byte, length)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		panic(err.Error()) // rand should never fail
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
