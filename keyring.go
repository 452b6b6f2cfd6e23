package sensitivestring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// fromKeyring reads the secret stored for user name under service in the
// system keyring.
func (r *Resolver) fromKeyring(service, name string) (SensitiveString, error) {
	data, err := keyring.Get(service, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return SensitiveString{}, errSourceEmpty
		}
		return SensitiveString{}, fmt.Errorf("failed to get secret from keyring: %w", err)
	}
	if data == "" {
		return SensitiveString{}, errSourceEmpty
	}
	return New(data), nil
}
