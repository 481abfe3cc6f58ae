package backend

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/framegraph/gpucore"
)

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for backend selection (first that opens wins).
	// A real GPU is preferred over the recorder.
	backendPriority = []string{BackendWGPU, BackendRecord}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it is replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get opens the backend registered under name.
func Get(name string) (gpucore.Device, gpucore.SwapchainFactory, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()

	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	dev, swapchains, err := factory()
	if err != nil {
		return nil, nil, fmt.Errorf("backend %q: %w", name, err)
	}
	return dev, swapchains, nil
}

// Default opens the best available backend in priority order (wgpu, then
// record), falling back to any other registered backend. The errors of
// every failed attempt are joined.
func Default() (gpucore.Device, gpucore.SwapchainFactory, error) {
	registryMu.RLock()
	order := make([]string, 0, len(backends))
	for _, name := range backendPriority {
		if _, ok := backends[name]; ok {
			order = append(order, name)
		}
	}
	var rest []string
	for name := range backends {
		if !contains(backendPriority, name) {
			rest = append(rest, name)
		}
	}
	registryMu.RUnlock()

	sort.Strings(rest)
	order = append(order, rest...)

	var errs []error
	for _, name := range order {
		dev, swapchains, err := Get(name)
		if err == nil {
			return dev, swapchains, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, nil, ErrBackendNotAvailable
	}
	return nil, nil, fmt.Errorf("%w: %w", ErrBackendNotAvailable, errors.Join(errs...))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
