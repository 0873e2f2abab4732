package indicator

import (
	"sort"
	"sync"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// SignalRegistry resolves signal providers by strategy name.
type SignalRegistry interface {
	RegisterProvider(provider SignalProvider) error
	GetProvider(name types.StrategyName) (SignalProvider, error)
	ListProviders() []types.StrategyName
	RemoveProvider(name types.StrategyName) error
}

// SignalRegistryV1 is a map guarded by a RWMutex. Providers are stateless, so
// one registry is shared by every concurrent run.
type SignalRegistryV1 struct {
	providers map[types.StrategyName]SignalProvider
	mu        sync.RWMutex
}

// NewSignalRegistry creates an empty registry.
func NewSignalRegistry() SignalRegistry {
	return &SignalRegistryV1{
		providers: make(map[types.StrategyName]SignalProvider),
		mu:        sync.RWMutex{},
	}
}

// NewDefaultSignalRegistry creates a registry holding every built-in provider.
func NewDefaultSignalRegistry() SignalRegistry {
	registry := NewSignalRegistry()

	for _, provider := range []SignalProvider{
		NewEMACross(),
		NewSMACross(),
		NewRSI(),
		NewMACD(),
		NewBollingerBands(),
		NewADX(),
		NewAroon(),
		NewATR(),
		NewCCI(),
		NewDEMA(),
		NewDonchian(),
		NewKeltner(),
		NewMFI(),
		NewMomentum(),
		NewOBV(),
		NewPSAR(),
		NewROC(),
		NewStochastic(),
		NewStochRSI(),
		NewSuperTrend(),
		NewTEMA(),
		NewTRIX(),
		NewUltimateOscillator(),
		NewWilliamsR(),
	} {
		// names are distinct, registration cannot fail
		_ = registry.RegisterProvider(provider)
	}

	return registry
}

// RegisterProvider adds a provider to the registry.
func (r *SignalRegistryV1) RegisterProvider(provider SignalProvider) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := provider.Name()
	if _, exists := r.providers[name]; exists {
		return errors.Newf(errors.ErrCodeIndicatorAlreadyExists, "signal provider %s already registered", name)
	}

	r.providers[name] = provider

	return nil
}

// GetProvider retrieves a provider by name.
func (r *SignalRegistryV1) GetProvider(name types.StrategyName) (SignalProvider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	provider, exists := r.providers[name]
	if !exists {
		return nil, errors.Newf(errors.ErrCodeUnsupportedStrategy, "signal provider %s not found", name)
	}

	return provider, nil
}

// ListProviders returns the registered names in sorted order.
func (r *SignalRegistryV1) ListProviders() []types.StrategyName {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]types.StrategyName, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	return names
}

// RemoveProvider removes a provider from the registry.
func (r *SignalRegistryV1) RemoveProvider(name types.StrategyName) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[name]; !exists {
		return errors.Newf(errors.ErrCodeIndicatorNotFound, "signal provider %s not found", name)
	}

	delete(r.providers, name)

	return nil
}
