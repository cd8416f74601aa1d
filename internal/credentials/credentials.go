// Package credentials holds the upstream API keys injected by the proxy.
package credentials

import (
	"sync/atomic"

	"cors-proxy-go/internal/config"
)

// Credentials is an immutable snapshot of the injected API keys.
type Credentials struct {
	BrightDataAPIKey string
	IScrapperKey     string
}

// FromConfig extracts the credential snapshot from a resolved config.
func FromConfig(cfg *config.Config) Credentials {
	return Credentials{
		BrightDataAPIKey: cfg.Credentials.BrightDataAPIKey,
		IScrapperKey:     cfg.Credentials.IScrapperKey,
	}
}

// Store publishes the current Credentials snapshot. Readers never see a
// partially updated value; a reload replaces the whole snapshot.
type Store struct {
	current atomic.Pointer[Credentials]
}

// NewStore returns a Store seeded with c.
func NewStore(c Credentials) *Store {
	s := &Store{}
	s.Swap(c)
	return s
}

// NewStoreFromConfig returns a Store seeded from cfg.
func NewStoreFromConfig(cfg *config.Config) *Store {
	return NewStore(FromConfig(cfg))
}

// Current returns the snapshot in effect at call time.
func (s *Store) Current() Credentials {
	return *s.current.Load()
}

// Swap replaces the published snapshot.
func (s *Store) Swap(c Credentials) {
	s.current.Store(&c)
}
