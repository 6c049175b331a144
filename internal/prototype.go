package internal

import "sync"

// Prototype is a shared, read-mostly template object. The external loader
// populates it once at startup; after that it is read by every derived View.
// Access is guarded so late loader writes and concurrent request reads are safe.
type Prototype struct {
	mu     sync.RWMutex
	fields map[string]any
}

// NewPrototype creates an empty Prototype.
func NewPrototype() *Prototype {
	return &Prototype{fields: make(map[string]any)}
}

// Set stores a shared default under key.
func (p *Prototype) Set(key string, value any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.fields[key] = value
}

// Get returns the shared default for key.
func (p *Prototype) Get(key string) (any, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.fields[key]
	return v, ok
}

// Len returns the number of shared fields.
func (p *Prototype) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.fields)
}

// Derive creates a View delegating to this prototype. The cost is constant:
// no fields are copied regardless of how many the prototype carries.
func (p *Prototype) Derive() *View {
	return &View{proto: p}
}

// View is a per-context two-tier lookup: reads check the local override map
// first and fall back to the shared prototype; writes always land in the
// local map. Two views derived from the same prototype never observe each
// other's writes.
//
// A View belongs to a single context and is touched by one goroutine at a
// time, so the local map is unguarded.
type View struct {
	proto *Prototype
	local map[string]any
}

// Get returns the local override for key, or the shared default.
func (v *View) Get(key string) (any, bool) {
	if v.local != nil {
		if val, ok := v.local[key]; ok {
			return val, ok
		}
	}
	return v.proto.Get(key)
}

// Has reports whether key resolves locally or through the prototype.
func (v *View) Has(key string) bool {
	_, ok := v.Get(key)
	return ok
}

// Set stores a local override, never mutating the shared prototype.
func (v *View) Set(key string, value any) {
	if v.local == nil {
		v.local = make(map[string]any)
	}
	v.local[key] = value
}

// Delete removes a local override. The shared default, if any, shows
// through again; prototype fields cannot be deleted from a view.
func (v *View) Delete(key string) {
	delete(v.local, key)
}
