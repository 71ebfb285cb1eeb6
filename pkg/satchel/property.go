package satchel

import (
	"sync"

	"github.com/satchel-io/satchel/internal/section"
)

// Property is a typed, self-updating handle bound to one (section, key)
// pair. Reads are served from a local cache kept coherent by the section's
// change notification; writes go through the registry's write-through path.
//
// Callers own the handle's lifetime: Close must run when the property is
// released, or its subscription outlives the caller and accumulates as a
// dead subscriber on the registry.
type Property[T any] struct {
	reg       *Registry
	sectionID string
	key       string

	mu     sync.Mutex
	cached T
	token  string
	closed bool
}

// NewProperty binds a property to (sectionID, key). An existing stored
// value seeds the cache; otherwise def is written through to the section,
// seeding the backing file. The subscription is registered before the
// seeding write so the write reaches the cache through the same
// notification path as every later update.
func NewProperty[T any](r *Registry, sectionID, key string, def T) (*Property[T], error) {
	p := &Property[T]{
		reg:       r,
		sectionID: sectionID,
		key:       key,
		cached:    def,
	}
	p.token = r.Subscribe(sectionID, p.observe)

	v, found, err := TryGet[T](r, sectionID, key)
	if err != nil {
		r.Unsubscribe(sectionID, p.token)
		return nil, err
	}
	if found {
		p.mu.Lock()
		p.cached = v
		p.mu.Unlock()
		return p, nil
	}

	if _, err := Set(r, sectionID, key, def); err != nil {
		r.Unsubscribe(sectionID, p.token)
		return nil, err
	}
	return p, nil
}

// Value returns the cached value without touching disk.
func (p *Property[T]) Value() T {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cached
}

// Set writes through to the registry. The cache is not assigned here: the
// synchronous change notification updates it before Set returns, so local
// and remote updates share one code path.
func (p *Property[T]) Set(v T) error {
	_, err := Set(p.reg, p.sectionID, p.key, v)
	return err
}

// Close revokes the change subscription. Safe to call more than once.
func (p *Property[T]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	token := p.token
	p.mu.Unlock()

	p.reg.Unsubscribe(p.sectionID, token)
}

// observe handles the section's change notification, refreshing the cache
// when the subscribed key changes.
func (p *Property[T]) observe(dataID string, value any) {
	if dataID != p.key {
		return
	}
	cv, err := section.Coerce[T](value)
	if err != nil {
		p.reg.log.Warn("property observed a value of an incompatible type",
			"section", p.sectionID, "key", p.key, "error", err)
		return
	}
	p.mu.Lock()
	p.cached = cv
	p.mu.Unlock()
}
