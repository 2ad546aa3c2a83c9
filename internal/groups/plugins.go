package groups

import (
	"fmt"
	"sync"

	pkgerrors "github.com/gcommerce/groupcommerce-backend/pkg/errors"
)

const (
	orderPluginPrefix   = "group_commerce_order"
	productPluginPrefix = "group_commerce_product"
)

// PluginRegistry maps order and product bundles to the plugin IDs used when
// building permission names. A bundle with no registered plugin is treated as
// a deployment misconfiguration, never silently defaulted.
type PluginRegistry struct {
	mu       sync.RWMutex
	orders   map[string]string
	products map[string]string
}

// NewPluginRegistry builds an empty registry.
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{
		orders:   make(map[string]string),
		products: make(map[string]string),
	}
}

// DefaultPluginRegistry returns a registry with the stock order and product
// bundles wired.
func DefaultPluginRegistry() *PluginRegistry {
	reg := NewPluginRegistry()
	reg.RegisterOrderBundle("default")
	reg.RegisterProductBundle("default")
	return reg
}

// RegisterOrderBundle registers the plugin for an order bundle. The plugin ID
// follows the "<prefix>:<bundle>" convention.
func (r *PluginRegistry) RegisterOrderBundle(bundle string) string {
	pluginID := fmt.Sprintf("%s:%s", orderPluginPrefix, bundle)
	r.mu.Lock()
	r.orders[bundle] = pluginID
	r.mu.Unlock()
	return pluginID
}

// RegisterProductBundle registers the plugin for a product bundle.
func (r *PluginRegistry) RegisterProductBundle(bundle string) string {
	pluginID := fmt.Sprintf("%s:%s", productPluginPrefix, bundle)
	r.mu.Lock()
	r.products[bundle] = pluginID
	r.mu.Unlock()
	return pluginID
}

// OrderPluginID resolves the plugin ID for an order bundle. Unregistered
// bundles surface an invalid-configuration error so the gap is caught at
// query-build time instead of producing permission names that never match.
func (r *PluginRegistry) OrderPluginID(bundle string) (string, error) {
	r.mu.RLock()
	pluginID, ok := r.orders[bundle]
	r.mu.RUnlock()
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeInvalidConfiguration,
			fmt.Sprintf("no group relation plugin registered for order bundle %q", bundle))
	}
	return pluginID, nil
}

// ProductPluginID resolves the plugin ID for a product bundle, with the same
// unregistered-bundle handling as OrderPluginID.
func (r *PluginRegistry) ProductPluginID(bundle string) (string, error) {
	r.mu.RLock()
	pluginID, ok := r.products[bundle]
	r.mu.RUnlock()
	if !ok {
		return "", pkgerrors.New(pkgerrors.CodeInvalidConfiguration,
			fmt.Sprintf("no group relation plugin registered for product bundle %q", bundle))
	}
	return pluginID, nil
}
