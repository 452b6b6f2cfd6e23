// Package digest renders the SHA-256 fingerprints that stand in for secret
// values wherever they would otherwise be printed or serialized.
//
// A rendered digest always has the form "sha256:" followed by 64 lowercase
// hex characters, 71 characters in total, regardless of the input length.
package digest
