// Package wirelesscar is the Subaru 2.0 binding. The provider is routed but
// exposes no operations yet, so every dispatch reports ErrUnsupported.
package wirelesscar

import "cvgateway/config"

const name = "wirelesscar"

type Adapter struct {
	cfg config.WirelessCarConfig
}

func New(cfg config.WirelessCarConfig) *Adapter {
	return &Adapter{cfg: cfg}
}

func (a *Adapter) Name() string { return name }

// BaseURL returns the configured service address.
func (a *Adapter) BaseURL() string { return a.cfg.BaseURL }
