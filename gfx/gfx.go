// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfx defines rendering related features that renderers must implement.
package gfx

// Releasable defines any memory-occupying item that can be freed.
type Releasable interface {

	// Release releases memory occupied by the implementing structure.
	// Releasing twice must be harmless.
	Release()
}

// Named describes a resource that is identified by a name within a registry.
type Named interface {

	// Name returns the name the resource is registered with.
	Name() string
}

// Resource describes a named rendering resource that owns GPU memory.
type Resource interface {
	Releasable
	Named
}
