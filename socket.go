package livediff

import "context"

// Socket is a stateful component's private workspace, carried across
// renders inside a session's ComponentState. Assigns holds the inputs the
// caller is handing the component this render (merged in by Update);
// arbitrary component-local state (counters, cached lookups, anything
// that should survive across renders without being part of the assigns
// contract) lives in the key/value bag reached through Get/Put.
type Socket struct {
	Assigns map[string]any

	private map[string]any
}

// newSocket returns an empty socket ready for Mount.
func newSocket() *Socket {
	return &Socket{Assigns: map[string]any{}, private: map[string]any{}}
}

// Put stores component-local state under key, surviving across renders
// until overwritten or the component entry is garbage collected.
func (s *Socket) Put(key string, value any) {
	if s.private == nil {
		s.private = map[string]any{}
	}
	s.private[key] = value
}

// Get retrieves component-local state previously stored with Put.
func (s *Socket) Get(key string) (any, bool) {
	v, ok := s.private[key]
	return v, ok
}

// MergeAssigns overwrites/adds entries from updated into Assigns. Update
// implementations call this (rather than replacing Assigns wholesale) so
// a caller that only changes one field doesn't have to repeat the rest.
func (s *Socket) MergeAssigns(updated map[string]any) {
	if s.Assigns == nil {
		s.Assigns = map[string]any{}
	}
	for k, v := range updated {
		s.Assigns[k] = v
	}
}

// clone returns a deep-enough copy of s so that mutations made against the
// clone during a render cannot be observed through s, keeping a render
// pure with respect to the SessionState a caller already holds.
func (s *Socket) clone() *Socket {
	if s == nil {
		return newSocket()
	}
	out := &Socket{
		Assigns: make(map[string]any, len(s.Assigns)),
		private: make(map[string]any, len(s.private)),
	}
	for k, v := range s.Assigns {
		out.Assigns[k] = v
	}
	for k, v := range s.private {
		out.private[k] = v
	}
	return out
}

// Component is implemented by stateful components tracked by the
// registry (§4.4, §9 "dynamic dispatch over component modules becomes a
// tagged-variant or capability table"). Mount seeds initial component-local
// state; Update merges the assigns a render handed the component; Render
// produces the component's rendered tree, which must be a template-kind
// Node (the only rendered-node kind that carries its own static/dynamic
// pair for the registry to diff against the component's memoized
// fingerprint tree, matching every worked example in §8).
type Component interface {
	Mount(ctx context.Context, s *Socket) error
	Update(ctx context.Context, assigns map[string]any, s *Socket) error
	Render(ctx context.Context, s *Socket) (Node, error)
}

// ComponentFactory constructs a fresh Component instance. Registered
// components are stateless dispatch targets - all state that must survive
// across renders lives in the Socket the registry threads through
// Mount/Update/Render, not in the Component value itself, so a factory is
// free to allocate a new instance on every call.
type ComponentFactory func() Component
