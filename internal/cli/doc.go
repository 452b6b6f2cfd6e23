// Package cli implements the sensitivestring command line: computing and
// verifying secret digests and masking fields of YAML and JSON documents.
package cli
