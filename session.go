package livediff

import "context"

// SessionState is the opaque, per-session state persisted in-memory
// server-side between renders (§6): the fingerprint tree shadowing what
// the client already holds, and the component registry's CID-engine
// state. The zero value is a valid "brand new session" state.
type SessionState struct {
	Fingerprints *FingerprintTree
	Components   *ComponentState
}

// NewSessionState returns the initial state for a session that has never
// rendered before.
func NewSessionState() SessionState {
	return SessionState{Components: NewComponentState()}
}

// Stats is read-only bookkeeping attached to a render's result: counts
// useful to a surrounding dashboard, with no effect on the change map or
// session state produced. Not a metrics exporter - just a plain struct,
// since nothing in the pack this module draws on wires up a metrics sink
// that this would plausibly feed (see SPEC_FULL.md, B.4).
type Stats struct {
	FullRenders        int
	IncrementalRenders int
	ComponentsMounted  int
	ComponentsUpdated  int
	ComponentsRendered int
}

// RenderResult bundles everything one Engine.Render call produces.
type RenderResult struct {
	State   SessionState
	Changes ChangeMap
	Stats   Stats
}

// Engine runs renders against sessions. It holds no session-specific
// state itself - Modules is shared across every session's renders, the
// way the teacher's own Registry is shared across every request.
type Engine struct {
	Modules *Registry
}

// Render implements the control flow of §2: given a session's current
// state and a freshly rendered tree, it produces the session's new state
// and the change map to send to the client.
//
// Render is pure with respect to its inputs: on success, neither session
// nor rendered is mutated, and the returned SessionState is independent
// of the one passed in. On error, the zero RenderResult is returned -
// no partial state is ever committed (§5, §7).
func (e Engine) Render(ctx context.Context, session SessionState, rendered Node) (RenderResult, error) {
	if rendered.Kind != KindTemplate {
		return RenderResult{}, &StructuralError{
			Reason: "rendered root must be a template instance",
		}
	}

	components := session.Components.clone()
	stats := &Stats{}
	tracker := newComponentTracker(ctx, e.Modules, components, stats)
	d := &diffCtx{ctx: ctx, comps: tracker, stats: stats}

	cm, tree, err := d.diffTemplate(rendered, session.Fingerprints)
	if err != nil {
		return RenderResult{}, err
	}

	tracker.state.gc(tracker.visited)
	if len(tracker.output) > 0 {
		cm[KeyComponents] = tracker.output
	}

	return RenderResult{
		State: SessionState{
			Fingerprints: tree,
			Components:   tracker.state,
		},
		Changes: cm,
		Stats:   *stats,
	}, nil
}
