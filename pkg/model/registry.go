package model

import (
	"context"
	"sort"
	"sync"

	"github.com/sbomkit/model-store/pkg/storage"
)

// Factory wraps a bare handle in its concrete model type.
type Factory func(base *Object) TypedModel

var (
	registryMu sync.RWMutex
	registry   = map[string]Factory{}
)

// RegisterType makes a type name resolvable: stored references carrying that
// name will be inflated through the given factory. Concrete model packages
// register their types from init, and later registrations for the same name
// win, so applications can override built in types.
func RegisterType(typeName string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[typeName] = factory
}

// RegisteredTypes returns the currently registered type names.
func RegisteredTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}

func factoryFor(typeName string) (Factory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	factory, found := registry[typeName]
	return factory, found
}

// Inflate turns a stored reference into a live handle bound to store. The
// reference's type name selects the concrete model type; a name nobody
// registered yields the bare handle itself. The target has to exist, a
// dangling reference fails with a not found error.
func Inflate(ctx context.Context, store storage.Store, ref storage.Ref) (TypedModel, error) {
	base, err := NewObject(ctx, store, ref.DocumentURI, ref.ID, ref.Type, false)
	if err != nil {
		return nil, err
	}

	if factory, found := factoryFor(ref.Type); found {
		return factory(base), nil
	}

	return base, nil
}
