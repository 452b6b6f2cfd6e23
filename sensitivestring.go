package sensitivestring

import (
	"crypto/subtle"
	"fmt"
	"io"
	"strings"
	"unique"

	"github.com/flowexec/sensitivestring/digest"
)

// SensitiveString holds a secret value. Every implicit rendering of it, whether
// through fmt, encoding/json, gopkg.in/yaml.v3, encoding/xml or log/slog,
// produces the SHA-256 digest of the value instead of the value itself.
//
// The zero value wraps the empty string. SensitiveString is comparable: == and
// map hashing operate on the plaintext, so two wrappers are equal iff their
// plaintexts are equal.
//
// The plaintext is held behind a unique.Handle. Paths where fmt bypasses the
// methods, such as bad verbs or values in unexported struct fields, print by
// reflection and only ever reach a pointer.
type SensitiveString struct {
	handle unique.Handle[string]
}

// New wraps value.
func New(value string) SensitiveString {
	// the empty string keeps the zero handle so that New("") == SensitiveString{}
	if value == "" {
		return SensitiveString{}
	}
	return SensitiveString{handle: unique.Make(value)}
}

// FromBytes wraps a copy of b.
func FromBytes(b []byte) SensitiveString {
	return New(string(b))
}

// Reveal returns the plaintext. It is the only way to read the secret.
func (s SensitiveString) Reveal() string {
	if s.handle == (unique.Handle[string]{}) {
		return ""
	}
	return s.handle.Value()
}

// Value is an alias of Reveal.
func (s SensitiveString) Value() string {
	return s.Reveal()
}

// Bytes returns a copy of the plaintext bytes.
func (s SensitiveString) Bytes() []byte {
	return []byte(s.Reveal())
}

// Len returns the length of the plaintext in bytes.
func (s SensitiveString) Len() int {
	return len(s.Reveal())
}

// IsEmpty reports whether the plaintext is the empty string.
func (s SensitiveString) IsEmpty() bool {
	return s.handle == (unique.Handle[string]{})
}

func (s SensitiveString) digest() string {
	return digest.String(s.Reveal())
}

// String returns the digest of the value, implementing fmt.Stringer.
func (s SensitiveString) String() string {
	return s.digest()
}

// GoString returns the debug form "SensitiveString(sha256:<hex>)",
// implementing fmt.GoStringer.
func (s SensitiveString) GoString() string {
	return "SensitiveString(" + s.digest() + ")"
}

// Format implements fmt.Formatter. %#v prints GoString; every other verb
// formats the digest string with the caller's flags, width and precision.
func (s SensitiveString) Format(f fmt.State, verb rune) {
	if verb == 'v' && f.Flag('#') {
		_, _ = io.WriteString(f, s.GoString())
		return
	}
	_, _ = fmt.Fprintf(f, fmt.FormatString(f, verb), s.digest())
}

// MarshalText implements encoding.TextMarshaler. It is the one serialization
// hook of the type: encoding/json, encoding/xml, gopkg.in/yaml.v3 and the
// log/slog handlers all render the wrapper as the digest string through it.
//
// The type has no UnmarshalText: a digest cannot be turned back into a
// secret. Decode into a string and wrap it with New.
func (s SensitiveString) MarshalText() ([]byte, error) {
	return []byte(s.digest()), nil
}

// Equal reports whether s and other hold the same plaintext. Content is
// compared in constant time; the lengths are not hidden.
func (s SensitiveString) Equal(other SensitiveString) bool {
	return subtle.ConstantTimeCompare(s.Bytes(), other.Bytes()) == 1
}

// Compare orders wrappers by plaintext bytes, like strings.Compare.
//
// The comparison is not constant time: how long it takes depends on the
// length of the common prefix, which leaks information about the plaintexts.
// Do not use it on attacker-influenced input.
func (s SensitiveString) Compare(other SensitiveString) int {
	return strings.Compare(s.Reveal(), other.Reveal())
}
