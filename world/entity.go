// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package world

import (
	"github.com/devblok/glbox/core"
	log "github.com/sirupsen/logrus"
)

type slotState uint8

const (
	slotFree slotState = iota
	slotActive
	slotTemporary
)

type entitySlot struct {
	state  slotState
	params core.EntityParams

	batch      core.BatchHandle
	batchDirty bool
}

func newSlot() entitySlot {
	return entitySlot{batch: core.InvalidBatch}
}

func copyParams(params core.EntityParams) core.EntityParams {
	if params.Batch != nil {
		params.Batch = append([]core.BatchParams(nil), params.Batch...)
	}
	return params
}

func (w *RenderWorld) slot(h core.EntityHandle) (*entitySlot, bool) {
	if h == core.InvalidEntity || int64(h) >= int64(len(w.entities)) {
		return nil, false
	}
	return &w.entities[h], true
}

func (w *RenderWorld) freeSlot(i int) {
	slot := &w.entities[i]
	if slot.batch != core.InvalidBatch && w.backend != nil {
		w.backend.DestroyBatch(slot.batch)
	}
	*slot = newSlot()
}

// Capacity is the number of entity slots.
func (w *RenderWorld) Capacity() int {
	return len(w.entities)
}

// ActiveEntities counts the slots in use.
func (w *RenderWorld) ActiveEntities() int {
	var n int
	for i := range w.entities {
		if w.entities[i].state != slotFree {
			n++
		}
	}
	return n
}

// CreateEntity takes the first free slot. It returns InvalidEntity
// when every slot is in use.
func (w *RenderWorld) CreateEntity(params core.EntityParams) core.EntityHandle {
	for i := range w.entities {
		slot := &w.entities[i]
		if slot.state != slotFree {
			continue
		}
		slot.state = slotActive
		slot.params = copyParams(params)
		slot.batchDirty = true
		return core.EntityHandle(i)
	}
	log.WithField("capacity", len(w.entities)).Warn("No free entity slot")
	return core.InvalidEntity
}

// CreateImmediateEntity creates an entity that is drawn by the next
// RenderFrame and freed right after.
func (w *RenderWorld) CreateImmediateEntity(params core.EntityParams) core.EntityHandle {
	h := w.CreateEntity(params)
	if h != core.InvalidEntity {
		w.entities[h].state = slotTemporary
	}
	return h
}

// UpdateEntity replaces the params of a persistent entity. Invalid,
// free and immediate entities are not updated.
func (w *RenderWorld) UpdateEntity(h core.EntityHandle, params core.EntityParams) bool {
	slot, ok := w.slot(h)
	if !ok || slot.state != slotActive {
		return false
	}
	slot.params = copyParams(params)
	slot.batchDirty = true
	return true
}

// DestroyEntity frees the slot of h. Destroying a free slot or an
// out of range handle does nothing.
func (w *RenderWorld) DestroyEntity(h core.EntityHandle) {
	if _, ok := w.slot(h); ok {
		w.freeSlot(int(h))
	}
}

// Entity returns the params of a live entity.
func (w *RenderWorld) Entity(h core.EntityHandle) (core.EntityParams, bool) {
	slot, ok := w.slot(h)
	if !ok || slot.state == slotFree {
		return core.EntityParams{}, false
	}
	return slot.params, true
}
