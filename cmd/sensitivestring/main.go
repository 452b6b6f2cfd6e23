// Sensitivestring computes and checks the sha256 digests that
// SensitiveString values render as, and masks secret fields of YAML and
// JSON documents.
//
// Usage:
//
//	sensitivestring digest                          # prompt for a secret, print its digest
//	sensitivestring digest --env DB_PASSWORD        # digest of an environment variable
//	sensitivestring verify sha256:2cf2... --file pw # exit 1 unless the file's secret matches
//	sensitivestring mask -f password config.yaml    # print config.yaml with passwords masked
package main

import (
	"os"

	"github.com/flowexec/sensitivestring/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
