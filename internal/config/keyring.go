// internal/config/keyring.go
// Connection passwords never reach a config file: StripPassword pulls
// them out of the URI when a connection is added, SavePassword parks
// them in the system keyring and LookupPassword reinjects them at
// connect time.
package config

import (
	"fmt"

	"github.com/99designs/keyring"
)

const keyringService = "mongolens"

func openRing() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: keyringService,
	})
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return ring, nil
}

// SavePassword stores a connection password under the connection name.
func SavePassword(connectionName, password string) error {
	ring, err := openRing()
	if err != nil {
		return err
	}
	return ring.Set(keyring.Item{
		Key:  connectionName,
		Data: []byte(password),
	})
}

// LookupPassword returns the stored password for a connection. A
// missing entry or an unavailable keyring both report false; the
// connection then proceeds with the URI as persisted.
func LookupPassword(connectionName string) (string, bool) {
	ring, err := openRing()
	if err != nil {
		return "", false
	}
	item, err := ring.Get(connectionName)
	if err != nil {
		return "", false
	}
	return string(item.Data), true
}
