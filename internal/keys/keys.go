// Package keys derives the surrogate keys that join hubs, links and satellites.
//
// A surrogate key is a name-based UUID (version 3) over the X.500 namespace and the
// business key's canonical string, so every process derives the same key for the same
// business key without coordination.
package keys

import "github.com/google/uuid"

// Namespace is fixed for the whole vault. Changing it re-keys every table.
var Namespace = uuid.NameSpaceX500

// Derive maps a business key to its surrogate key.
func Derive(businessKey string) uuid.UUID {
	return uuid.NewMD5(Namespace, []byte(businessKey))
}

// DeriveLink keys the association parent -> child. The order matters: callers must pass
// parents in the fixed role order of the link table (e.g. order then product).
func DeriveLink(parent, child uuid.UUID) uuid.UUID {
	return Derive(parent.String() + "/" + child.String())
}

// Set is an insertion-ordered set of surrogate keys.
type Set struct {
	order []uuid.UUID
	seen  map[uuid.UUID]struct{}
}

func NewSet(keys ...uuid.UUID) *Set {
	s := &Set{seen: make(map[uuid.UUID]struct{}, len(keys))}
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

// Add reports whether k was not already present.
func (s *Set) Add(k uuid.UUID) bool {
	if s.seen == nil {
		s.seen = make(map[uuid.UUID]struct{})
	}
	if _, ok := s.seen[k]; ok {
		return false
	}
	s.seen[k] = struct{}{}
	s.order = append(s.order, k)
	return true
}

func (s *Set) Has(k uuid.UUID) bool {
	_, ok := s.seen[k]
	return ok
}

func (s *Set) Len() int {
	return len(s.order)
}

// Keys returns the members in insertion order.
func (s *Set) Keys() []uuid.UUID {
	out := make([]uuid.UUID, len(s.order))
	copy(out, s.order)
	return out
}

// Strings returns the canonical text form of the members, for binding into queries.
func (s *Set) Strings() []string {
	out := make([]string, len(s.order))
	for i, k := range s.order {
		out[i] = k.String()
	}
	return out
}
