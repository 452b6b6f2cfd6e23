package sensitivestring

import (
	"errors"
	"fmt"
)

var (
	ErrSourceNotFound   = errors.New("secret not found in any source")
	ErrInvalidSource    = errors.New("invalid secret source")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrDecryptionFailed = errors.New("decryption failed")
	ErrPathNotSecure    = errors.New("path is not secure")
)

// SourcePathError reports a secret file whose permissions allow access by
// other users. It matches ErrPathNotSecure with errors.Is.
type SourcePathError struct {
	Path string
	Err  error
}

func (e *SourcePathError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s (%s): %v", ErrPathNotSecure, e.Path, e.Err)
	}
	return fmt.Sprintf("%v: %v", ErrPathNotSecure, e.Err)
}

func (e *SourcePathError) Unwrap() error {
	return e.Err
}

func (e *SourcePathError) Is(target error) bool {
	return target == ErrPathNotSecure
}

func NewSourcePathError(path string, err error) *SourcePathError {
	return &SourcePathError{
		Path: path,
		Err:  err,
	}
}
