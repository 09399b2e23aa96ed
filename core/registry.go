// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"errors"
	"fmt"
)

// Errors returned while creating a backend.
var (
	ErrBackendNotFound = errors.New("backend not registered")
	ErrInvalidContext  = errors.New("invalid graphics context")
)

// Factory creates and initialises a backend for params.
type Factory func(params InitParams) (Renderer, error)

type registration struct {
	backend Backend
	factory Factory
}

// Registry maps backends to their factories in registration order.
// It is filled by the program before the world is started.
type Registry struct {
	entries []registration
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a factory. Registering a backend again replaces
// the factory but keeps its position.
func (r *Registry) Register(backend Backend, factory Factory) {
	for i := range r.entries {
		if r.entries[i].backend == backend {
			r.entries[i].factory = factory
			return
		}
	}
	r.entries = append(r.entries, registration{backend: backend, factory: factory})
}

// Lookup finds the factory of a backend.
func (r *Registry) Lookup(backend Backend) (Factory, bool) {
	for _, e := range r.entries {
		if e.backend == backend {
			return e.factory, true
		}
	}
	return nil, false
}

// Backends lists the registered backends in order.
func (r *Registry) Backends() []Backend {
	backends := make([]Backend, 0, len(r.entries))
	for _, e := range r.entries {
		backends = append(backends, e.backend)
	}
	return backends
}

// Create runs the factory registered for params.Backend.
func (r *Registry) Create(params InitParams) (Renderer, error) {
	factory, ok := r.Lookup(params.Backend)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotFound, params.Backend)
	}
	return factory(params)
}
