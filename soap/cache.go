package soap

import (
	"sync"
	"time"
)

// BindingCache holds one prepared client per provider. An entry is rebuilt when
// the provider's url, timeout or root certificate changes.
type BindingCache struct {
	mu      sync.Mutex
	clients map[string]binding
}

type binding struct {
	url      string
	timeout  time.Duration
	rootCert string
	client   *Client
}

func NewBindingCache() *BindingCache {
	return &BindingCache{clients: make(map[string]binding)}
}

// Client returns the cached client for provider, building a new one when none
// exists or the cached one was built with different settings.
func (b *BindingCache) Client(provider, url string, timeout time.Duration, rootCert string) (*Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if e, ok := b.clients[provider]; ok && e.url == url && e.timeout == timeout && e.rootCert == rootCert {
		return e.client, nil
	}
	c, err := NewClient(provider, url, timeout, rootCert)
	if err != nil {
		return nil, err
	}
	b.clients[provider] = binding{url: url, timeout: timeout, rootCert: rootCert, client: c}
	return c, nil
}

// Len returns the number of cached bindings.
func (b *BindingCache) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.clients)
}
