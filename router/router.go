// Package router selects the provider adapter that owns a (program, version)
// pair. Adapters are built fresh on every Select from the current provider
// settings; only the SOAP binding cache is shared between them.
package router

import (
	"errors"
	"fmt"
	"log"
	"sort"

	"cvgateway/audit"
	"cvgateway/config"
	"cvgateway/provider"
	"cvgateway/provider/aeris"
	"cvgateway/provider/fca"
	"cvgateway/provider/siriusxm"
	"cvgateway/provider/tmna"
	"cvgateway/provider/verizon"
	"cvgateway/provider/vodafone"
	"cvgateway/provider/wirelesscar"
	"cvgateway/soap"
)

// ErrUnsupportedProgram is returned by Resolve for pairs with no adapter. It is
// a permanent client error.
var ErrUnsupportedProgram = errors.New("unsupported program or version")

// ProviderSource supplies the provider settings read on every Select.
type ProviderSource interface {
	ProvidersSnapshot() config.ProvidersConfig
}

// Pair is one routable (program, version) combination.
type Pair struct {
	Program provider.Program
	Version provider.Version
}

type factory func(p config.ProvidersConfig) provider.Adapter

type Router struct {
	src      ProviderSource
	store    audit.Store
	bindings *soap.BindingCache
	logf     provider.LogFunc
	table    map[Pair]factory
}

func New(src ProviderSource, store audit.Store, bindings *soap.BindingCache, logf provider.LogFunc) *Router {
	if logf == nil {
		logf = log.Printf
	}
	if bindings == nil {
		bindings = soap.NewBindingCache()
	}
	r := &Router{src: src, store: store, bindings: bindings, logf: logf}
	r.table = r.buildTable()
	return r
}

func (r *Router) buildTable() map[Pair]factory {
	sxm := func(p config.ProvidersConfig) provider.Adapter {
		return siriusxm.New(p.SiriusXM, r.store, r.bindings, r.logf)
	}
	return map[Pair]factory{
		{provider.Nissan, provider.V1}:   sxm,
		{provider.Nissan, provider.V2}:   sxm,
		{provider.Infiniti, provider.V1}: sxm,
		{provider.Infiniti, provider.V2}: sxm,
		{provider.Toyota, provider.V1}:   sxm,
		{provider.Toyota, provider.V2}: func(p config.ProvidersConfig) provider.Adapter {
			return tmna.New(p.TMNA, r.logf)
		},
		{provider.FCA, provider.V1}: func(p config.ProvidersConfig) provider.Adapter {
			return fca.New(p.FCA, r.store, r.logf)
		},
		{provider.VWCarNet, provider.V1}: func(p config.ProvidersConfig) provider.Adapter {
			return verizon.New(p.Verizon, r.store, r.bindings, r.logf)
		},
		{provider.VWCarNet, provider.V2}: func(p config.ProvidersConfig) provider.Adapter {
			return aeris.New(p.Aeris, r.store, r.logf)
		},
		{provider.Porsche, provider.V1}: func(p config.ProvidersConfig) provider.Adapter {
			return vodafone.New(p.Vodafone, r.store, r.logf)
		},
		{provider.Subaru, provider.V2}: func(p config.ProvidersConfig) provider.Adapter {
			return wirelesscar.New(p.WirelessCar)
		},
	}
}

// Select returns the adapter for program and version, or nil when the pair is
// not routed. Program is case-insensitive and a blank version means 1.0.
func (r *Router) Select(program, version string) provider.Adapter {
	f, ok := r.table[Pair{provider.ParseProgram(program), provider.ParseVersion(version)}]
	if !ok {
		return nil
	}
	return f(r.src.ProvidersSnapshot())
}

// Resolve is Select with an error for unrouted pairs.
func (r *Router) Resolve(program, version string) (provider.Adapter, error) {
	a := r.Select(program, version)
	if a == nil {
		return nil, fmt.Errorf("%w: program %q version %q", ErrUnsupportedProgram, program, provider.ParseVersion(version))
	}
	return a, nil
}

// Pairs lists every routed pair ordered by program then version.
func (r *Router) Pairs() []Pair {
	out := make([]Pair, 0, len(r.table))
	for p := range r.table {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Program != out[j].Program {
			return out[i].Program < out[j].Program
		}
		return out[i].Version < out[j].Version
	})
	return out
}
