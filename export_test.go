package sensitivestring

// SetMaxAgeFileSize changes the age-file plaintext limit until the returned
// function is called.
func SetMaxAgeFileSize(n int64) (restore func()) {
	prev := maxAgeFileSize
	maxAgeFileSize = n
	return func() { maxAgeFileSize = prev }
}
