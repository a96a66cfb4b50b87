package ecs

// Registry tracks component stores so destroying an entity clears it from
// every store in one call.
type Registry struct {
	stores []Removable
}

func NewRegistry() *Registry {
	return &Registry{
		stores: make([]Removable, 0, 8),
	}
}

func (r *Registry) Register(store Removable) {
	r.stores = append(r.stores, store)
}

func (r *Registry) RemoveAll(id EntityID) {
	for _, s := range r.stores {
		s.Remove(id)
	}
}

func (r *Registry) Len() int { return len(r.stores) }
