package sensitivestring

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"filippo.io/age"
	"filippo.io/age/armor"
)

// maxAgeFileSize bounds the plaintext read from an age-encrypted secret file.
var maxAgeFileSize int64 = 64 * 1024 * 1024

// fromAgeFile decrypts the age-encrypted file at path with the identities
// found in identityPath. Both binary and ASCII-armored files are accepted.
func (r *Resolver) fromAgeFile(path, identityPath string) (SensitiveString, error) {
	expandedPath, err := expandPath(path)
	if err != nil {
		return SensitiveString{}, fmt.Errorf("failed to expand secret file path %s: %w", path, err)
	}

	data, err := os.ReadFile(expandedPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return SensitiveString{}, errSourceEmpty
		}
		return SensitiveString{}, fmt.Errorf("failed to read secret file %s: %w", expandedPath, err)
	}
	if len(data) == 0 {
		return SensitiveString{}, errSourceEmpty
	}

	identities, err := parseIdentityFile(identityPath)
	if err != nil {
		return SensitiveString{}, fmt.Errorf("failed to resolve identities: %w", err)
	}

	var src io.Reader = bytes.NewReader(data)
	if bytes.HasPrefix(bytes.TrimSpace(data), []byte(armor.Header)) {
		src = armor.NewReader(bytes.NewReader(bytes.TrimSpace(data)))
	}

	plain, err := age.Decrypt(src, identities...)
	if err != nil {
		return SensitiveString{}, fmt.Errorf("%w: do you have the right key?: %w", ErrDecryptionFailed, err)
	}

	var buf bytes.Buffer
	n, err := io.Copy(&buf, io.LimitReader(plain, maxAgeFileSize+1))
	if err != nil {
		return SensitiveString{}, fmt.Errorf("%w: %w", ErrDecryptionFailed, err)
	}
	if n > maxAgeFileSize {
		return SensitiveString{}, fmt.Errorf("%w: secret too large, limit is %d bytes", ErrDecryptionFailed, maxAgeFileSize)
	}

	value := strings.TrimRight(buf.String(), "\r\n")
	if value == "" {
		return SensitiveString{}, errSourceEmpty
	}
	return New(value), nil
}
