package server

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"os"
)

// APIKeys is the static client credential table for the HTTP transport.
// It maps opaque client names to secret keys, is loaded once at process
// start, and is read-only thereafter, so concurrent requests can consult
// it without locking.
type APIKeys struct {
	keys map[string]string // client name -> secret
}

// LoadAPIKeys reads the key table from a flat JSON file of the form
// {"client-name": "secret", ...}.
func LoadAPIKeys(path string) (*APIKeys, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read API keys file: %w", err)
	}

	return ParseAPIKeys(data)
}

// ParseAPIKeys parses the key table from JSON bytes.
func ParseAPIKeys(data []byte) (*APIKeys, error) {
	keys := make(map[string]string)
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("failed to parse API keys file: %w", err)
	}

	if len(keys) == 0 {
		return nil, fmt.Errorf("API keys file contains no entries")
	}

	for name, secret := range keys {
		if name == "" || secret == "" {
			return nil, fmt.Errorf("API keys file contains an empty client name or secret")
		}
	}

	return &APIKeys{keys: keys}, nil
}

// Authenticate returns the client name for the presented key, or false if
// the key matches no entry. Secrets are compared in constant time.
func (a *APIKeys) Authenticate(presented string) (string, bool) {
	if presented == "" {
		return "", false
	}

	// Compare against every entry so timing does not reveal which client
	// name matched.
	matched := ""
	for name, secret := range a.keys {
		if subtle.ConstantTimeCompare([]byte(secret), []byte(presented)) == 1 {
			matched = name
		}
	}

	return matched, matched != ""
}

// Len returns the number of configured clients.
func (a *APIKeys) Len() int {
	return len(a.keys)
}
