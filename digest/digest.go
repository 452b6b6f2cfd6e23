package digest

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// Prefix identifies the algorithm of a rendered digest.
	Prefix = "sha256:"
	// Size is the length of every rendered digest string.
	Size = len(Prefix) + sha256.Size*2
)

var ErrInvalidDigest = errors.New("invalid digest")

// String hashes s and renders it as "sha256:<lowercase hex>".
func String(s string) string {
	h := sha256.New()
	_, _ = io.WriteString(h, s)
	return encode(h.Sum(nil))
}

// Sum hashes b and renders it as "sha256:<lowercase hex>".
func Sum(b []byte) string {
	h := sha256.New()
	_, _ = h.Write(b)
	return encode(h.Sum(nil))
}

func encode(sum []byte) string {
	var sb strings.Builder
	sb.Grow(Size)
	sb.WriteString(Prefix)
	sb.WriteString(hex.EncodeToString(sum))
	return sb.String()
}

// Decode parses a rendered digest back into the raw hash bytes.
func Decode(d string) ([]byte, error) {
	if !strings.HasPrefix(d, Prefix) {
		return nil, fmt.Errorf("%w: missing %q prefix", ErrInvalidDigest, Prefix)
	}
	if len(d) != Size {
		return nil, fmt.Errorf("%w: expected %d characters, got %d", ErrInvalidDigest, Size, len(d))
	}
	encoded := d[len(Prefix):]
	if strings.ToLower(encoded) != encoded {
		return nil, fmt.Errorf("%w: hex must be lowercase", ErrInvalidDigest)
	}
	sum, err := hex.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDigest, err)
	}
	return sum, nil
}

// Valid reports whether d is a well-formed rendered digest.
func Valid(d string) bool {
	_, err := Decode(d)
	return err == nil
}

// Match reports whether plaintext hashes to the rendered digest d.
// The comparison of hash bytes runs in constant time.
func Match(plaintext, d string) bool {
	want, err := Decode(d)
	if err != nil {
		return false
	}
	got := sha256.Sum256([]byte(plaintext))
	return subtle.ConstantTimeCompare(got[:], want) == 1
}
