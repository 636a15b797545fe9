package state

import "strings"

// Namespace is a prefixed view over a Store. All operations delegate to
// the underlying store with the prefix applied, so namespaced values are
// visible to direct store access under their full keys.
type Namespace struct {
	store  *Store
	prefix string
}

// Get returns the value for key within the namespace.
func (n *Namespace) Get(key string) (any, bool) {
	return n.store.Get(n.prefix + key)
}

// Set stores a value under key within the namespace.
func (n *Namespace) Set(key string, value any) {
	n.store.Set(n.prefix+key, value)
}

// Delete removes a namespaced key.
func (n *Namespace) Delete(key string) {
	n.store.Delete(n.prefix + key)
}

// Update applies fn atomically to the namespaced key.
func (n *Namespace) Update(key string, fn func(current any, ok bool) any) any {
	return n.store.Update(n.prefix+key, fn)
}

// Keys returns the namespace's keys with the prefix stripped.
func (n *Namespace) Keys() []string {
	var keys []string
	for _, k := range n.store.Keys() {
		if strings.HasPrefix(k, n.prefix) {
			keys = append(keys, strings.TrimPrefix(k, n.prefix))
		}
	}
	return keys
}
