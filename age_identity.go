package sensitivestring

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"filippo.io/age"
)

// parseIdentityFile reads the age identities in the file at path. The file
// may hold several identities, one per line, with "#" comments.
func parseIdentityFile(path string) ([]age.Identity, error) {
	expandedPath, err := expandPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to expand identity file path %s: %w", path, err)
	}

	if err := checkPermissions(expandedPath); err != nil {
		if errors.Is(err, errSourceEmpty) {
			return nil, fmt.Errorf("identity file %s does not exist", expandedPath)
		}
		return nil, err
	}

	keyBytes, err := os.ReadFile(expandedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read identity file %s: %w", expandedPath, err)
	}

	identities, err := age.ParseIdentities(bytes.NewReader(keyBytes))
	if err != nil {
		return nil, fmt.Errorf("invalid identity in file %s: %w", expandedPath, err)
	}
	return identities, nil
}
