package ecs

// World owns the entity pool, the component registry and a deferred
// destruction queue flushed once per tick by the cleanup system.
type World struct {
	pool         *EntityPool
	registry     *Registry
	destroyQueue []EntityID
	queued       map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		registry:     NewRegistry(),
		destroyQueue: make([]EntityID, 0, 64),
		queued:       make(map[EntityID]struct{}, 64),
	}
}

func (w *World) Pool() *EntityPool   { return w.pool }
func (w *World) Registry() *Registry { return w.registry }

func (w *World) CreateEntity() EntityID {
	return w.pool.Create()
}

func (w *World) Alive(id EntityID) bool {
	return w.pool.Alive(id)
}

// MarkForDestruction queues an entity for end-of-tick cleanup. Queuing the
// same entity twice is a no-op.
func (w *World) MarkForDestruction(id EntityID) {
	if _, dup := w.queued[id]; dup || !w.pool.Alive(id) {
		return
	}
	w.queued[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
}

// PendingDestruction reports whether id is queued for the next flush.
func (w *World) PendingDestruction(id EntityID) bool {
	_, ok := w.queued[id]
	return ok
}

// FlushDestroyQueue destroys all queued entities in queue order and clears
// their components. Returns how many were destroyed.
func (w *World) FlushDestroyQueue() int {
	n := len(w.destroyQueue)
	for _, id := range w.destroyQueue {
		w.registry.RemoveAll(id)
		w.pool.Destroy(id)
		delete(w.queued, id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}
