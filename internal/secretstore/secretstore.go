// Package secretstore keeps MCP bearer tokens out of mcp.json by delegating
// to the OS keychain (Keychain, Secret Service, WinCred) via go-keyring, so
// an imported server config can reference a token by name instead of value.
package secretstore

import (
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

// serviceName scopes every keyring entry this binary writes.
const serviceName = "skillscan"

// registryKey tracks which token names exist, since go-keyring has no list
// primitive of its own.
const registryKey = "_skillscan_token_registry"

// Store is a keychain-backed bearer-token store for MCP targets.
type Store struct{}

// New returns a Store. There is no handle to hold: go-keyring talks to the
// OS service directly on every call.
func New() *Store { return &Store{} }

// Set stores token under name, overwriting any existing value.
func (s *Store) Set(name, token string) error {
	if err := keyring.Set(serviceName, name, token); err != nil {
		return fmt.Errorf("store token %q: %w", name, err)
	}
	return s.addToRegistry(name)
}

// Get retrieves the bearer token stored under name.
func (s *Store) Get(name string) (string, error) {
	token, err := keyring.Get(serviceName, name)
	if err != nil {
		return "", fmt.Errorf("retrieve token %q: %w", name, err)
	}
	return token, nil
}

// Delete removes the token stored under name.
func (s *Store) Delete(name string) error {
	if err := keyring.Delete(serviceName, name); err != nil {
		return fmt.Errorf("delete token %q: %w", name, err)
	}
	return s.removeFromRegistry(name)
}

// List returns every token name registered with this store. Token values
// are never returned.
func (s *Store) List() ([]string, error) {
	registry, err := keyring.Get(serviceName, registryKey)
	if err != nil {
		return nil, nil
	}
	return splitRegistry(registry), nil
}

// Available reports whether the OS keychain backend is reachable, so the
// CLI can fall back to env-var bearer tokens on headless/CI hosts.
func (s *Store) Available() bool {
	const probeKey = "_skillscan_probe"
	if err := keyring.Set(serviceName, probeKey, "probe"); err != nil {
		return false
	}
	_, err := keyring.Get(serviceName, probeKey)
	_ = keyring.Delete(serviceName, probeKey)
	return err == nil
}

func (s *Store) addToRegistry(name string) error {
	registry, _ := keyring.Get(serviceName, registryKey)
	for _, existing := range splitRegistry(registry) {
		if existing == name {
			return nil
		}
	}
	if registry != "" {
		registry += "\n"
	}
	registry += name
	return keyring.Set(serviceName, registryKey, registry)
}

func (s *Store) removeFromRegistry(name string) error {
	registry, err := keyring.Get(serviceName, registryKey)
	if err != nil {
		return nil
	}
	var kept []string
	for _, existing := range splitRegistry(registry) {
		if existing != name {
			kept = append(kept, existing)
		}
	}
	return keyring.Set(serviceName, registryKey, strings.Join(kept, "\n"))
}

func splitRegistry(registry string) []string {
	var names []string
	for _, name := range strings.Split(registry, "\n") {
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}
