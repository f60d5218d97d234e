package host

import (
	"fmt"
	"sync"
)

// MenuItem describes a host menu entry.
type MenuItem struct {
	ID       string
	Contexts []string
	Title    string
}

// MenuRegistrar creates host menu entries. Clicks are delivered separately as
// MenuClicked events on the EventSource.
type MenuRegistrar interface {
	Create(item MenuItem) error
}

// Registry is an in-memory MenuRegistrar for hosts without a native menu.
type Registry struct {
	mu    sync.Mutex
	items []MenuItem
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Create records item. IDs must be unique.
func (r *Registry) Create(item MenuItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, it := range r.items {
		if it.ID == item.ID {
			return fmt.Errorf("menu item %q already exists", item.ID)
		}
	}
	r.items = append(r.items, item)
	return nil
}

// Items returns a copy of the registered entries.
func (r *Registry) Items() []MenuItem {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]MenuItem, len(r.items))
	copy(out, r.items)
	return out
}
