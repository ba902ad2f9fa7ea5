// Package directory is the name registry replicas and the front end bind
// themselves in and enumerate peers from.
package directory

import (
	"sync"

	"github.com/dmitrijs2005/auctionrep/internal/common"
)

// Entry is one bound name.
type Entry struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Directory maps names to addresses and remembers the order in which names
// were first bound.
type Directory struct {
	mu    sync.RWMutex
	addrs map[string]string
	order []string
}

func New() *Directory {
	return &Directory{addrs: make(map[string]string)}
}

// Bind binds name to address. Rebinding an existing name keeps its position.
func (d *Directory) Bind(name, address string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.addrs[name]; !ok {
		d.order = append(d.order, name)
	}
	d.addrs[name] = address
}

// Unbind removes name. Unknown names are ignored.
func (d *Directory) Unbind(name string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.addrs[name]; !ok {
		return false
	}
	delete(d.addrs, name)
	for i, n := range d.order {
		if n == name {
			d.order = append(d.order[:i], d.order[i+1:]...)
			break
		}
	}
	return true
}

func (d *Directory) Lookup(name string) (string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	addr, ok := d.addrs[name]
	if !ok {
		return "", common.ErrorNotFound
	}
	return addr, nil
}

// List returns every entry in first-bind order.
func (d *Directory) List() []Entry {
	d.mu.RLock()
	defer d.mu.RUnlock()

	entries := make([]Entry, 0, len(d.order))
	for _, n := range d.order {
		entries = append(entries, Entry{Name: n, Address: d.addrs[n]})
	}
	return entries
}

// Replicas is List without front end entries.
func Replicas(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !common.IsFrontEndName(e.Name) {
			out = append(out, e)
		}
	}
	return out
}
