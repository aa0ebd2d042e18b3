package capability

import (
	"math/bits"
	"strings"
)

// ID names a single capability an entity or shape can opt into.
// IDs are bit positions, so at most 64 capabilities exist per world.
type ID uint8

// MaxID is the largest usable capability ID.
const MaxID ID = 63

// Set is a small bitset of capability IDs.
// The zero Set means "absent" and matches every capability.
type Set uint64

// Any is the absent set.
const Any Set = 0

// Of builds a Set containing the given IDs.
func Of(ids ...ID) Set {
	var s Set
	for _, id := range ids {
		s |= 1 << id
	}
	return s
}

// Has reports whether the set contains id. An absent set contains everything.
func (s Set) Has(id ID) bool {
	return s == Any || s&(1<<id) != 0
}

// With returns a copy of s with id added.
func (s Set) With(id ID) Set { return s | 1<<id }

// Without returns a copy of s with id removed.
// Removing the last member yields the absent set, which matches everything.
func (s Set) Without(id ID) Set { return s &^ (1 << id) }

// Len returns the number of explicit members.
func (s Set) Len() int { return bits.OnesCount64(uint64(s)) }

// IDs returns the explicit members in ascending order.
func (s Set) IDs() []ID {
	out := make([]ID, 0, s.Len())
	for v := uint64(s); v != 0; v &= v - 1 {
		out = append(out, ID(bits.TrailingZeros64(v)))
	}
	return out
}

// Registry maps human-readable capability names to IDs.
type Registry struct {
	byName map[string]ID
	names  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]ID)}
}

// Register returns the ID for name, assigning the next free one on first use.
// ok is false once all 64 IDs are taken.
func (r *Registry) Register(name string) (ID, bool) {
	if id, exists := r.byName[name]; exists {
		return id, true
	}
	if len(r.names) > int(MaxID) {
		return 0, false
	}
	id := ID(len(r.names))
	r.byName[name] = id
	r.names = append(r.names, name)
	return id, true
}

// Lookup returns the ID registered for name.
func (r *Registry) Lookup(name string) (ID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// Name returns the name registered for id, or "" if none.
func (r *Registry) Name(id ID) string {
	if int(id) >= len(r.names) {
		return ""
	}
	return r.names[id]
}

// Format renders a set using registered names.
func (r *Registry) Format(s Set) string {
	if s == Any {
		return "*"
	}
	ids := s.IDs()
	parts := make([]string, len(ids))
	for i, id := range ids {
		if n := r.Name(id); n != "" {
			parts[i] = n
		} else {
			parts[i] = "?"
		}
	}
	return strings.Join(parts, ",")
}

// Includes is the strict membership test: the absent set includes nothing.
// Entities use it to declare which capabilities they actually support.
func (s Set) Includes(id ID) bool {
	return s&(1<<id) != 0
}
