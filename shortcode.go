package relink

import (
	"crypto/rand"

	goerrors "github.com/goliatone/go-errors"
)

const shortCodeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// ShortCodeLength is the length of generated redirect codes. Six base36
// characters give ~2.1 billion combinations, plenty for random
// assignment with collision detection at insert time.
const ShortCodeLength = 6

// NewShortCode returns a random base36 code for a redirect.
func NewShortCode() (string, error) {
	buf := make([]byte, ShortCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate short code")
	}

	for i, b := range buf {
		buf[i] = shortCodeAlphabet[int(b)%len(shortCodeAlphabet)]
	}

	return string(buf), nil
}
