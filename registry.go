package livediff

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

// Registry maps a rendered component reference's module tag (§3) to the
// factory that builds the Component implementation for it. It is shared
// across sessions and renders - unlike ComponentState, which is
// per-session - mirroring how the teacher's own Registry centralizes
// routing while per-request state stays local to the request.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]ComponentFactory
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{modules: make(map[string]ComponentFactory)}
}

// Register associates a module tag with the factory that builds its
// Component implementation. Panics on a duplicate tag, matching the
// teacher's registration-time-fail-fast philosophy for prefix collisions:
// a mis-registered module is a programming error to catch at startup, not
// a runtime condition to handle gracefully mid-render.
func (r *Registry) Register(module string, factory ComponentFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.modules[module]; exists {
		panic(fmt.Sprintf("livediff: module %q already registered", module))
	}
	r.modules[module] = factory
}

func (r *Registry) build(module string) (Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, ok := r.modules[module]
	if !ok {
		return nil, false
	}
	return factory(), true
}

// componentEntry is the registry's per-cid record (§3: cid_state).
type componentEntry struct {
	module   string
	externID string
	assigns  map[string]any
	socket   *Socket

	lastFingerprint *FingerprintTree
	dirty           bool
}

func (e *componentEntry) clone() *componentEntry {
	var assigns map[string]any
	if e.assigns != nil {
		assigns = make(map[string]any, len(e.assigns))
		for k, v := range e.assigns {
			assigns[k] = v
		}
	}
	return &componentEntry{
		module:          e.module,
		externID:        e.externID,
		assigns:         assigns,
		socket:          e.socket.clone(),
		lastFingerprint: e.lastFingerprint,
		dirty:           e.dirty,
	}
}

// ComponentState is the session-scoped CID engine state of §3:
// cid_state, cid_to_extern, and next_cid, bundled together. Zero value is
// ready to use as "no components tracked yet."
type ComponentState struct {
	entries     map[int]*componentEntry
	cidToExtern map[int]string
	nextCID     int
}

// NewComponentState returns an empty ComponentState for a brand new
// session.
func NewComponentState() *ComponentState {
	return &ComponentState{
		entries:     make(map[int]*componentEntry),
		cidToExtern: make(map[int]string),
	}
}

// CIDFor returns the cid currently tracking extern id id, if any.
func (cs *ComponentState) CIDFor(id string) (int, bool) {
	if cs == nil {
		return 0, false
	}
	for cid, extern := range cs.cidToExtern {
		if extern == id {
			return cid, true
		}
	}
	return 0, false
}

// clone deep-copies the state so mutations performed while tracking one
// render cannot be observed on the SessionState a caller already holds
// (§5: "a partially completed render must not mutate session state").
func (cs *ComponentState) clone() *ComponentState {
	if cs == nil {
		return NewComponentState()
	}
	out := &ComponentState{
		entries:     make(map[int]*componentEntry, len(cs.entries)),
		cidToExtern: make(map[int]string, len(cs.cidToExtern)),
		nextCID:     cs.nextCID,
	}
	for cid, e := range cs.entries {
		out.entries[cid] = e.clone()
	}
	for cid, extern := range cs.cidToExtern {
		out.cidToExtern[cid] = extern
	}
	return out
}

// componentTracker drives one render's worth of §4.4 operations
// (track/renderComponent/gc) against a cloned ComponentState, accumulating
// the root change map's top-level "components" entries in document order
// as the diff walk encounters each reference.
type componentTracker struct {
	ctx      context.Context
	registry *Registry
	state    *ComponentState
	visited  map[int]bool
	output   ChangeMap // top-level "components" map being assembled
	stats    *Stats
}

func newComponentTracker(ctx context.Context, registry *Registry, state *ComponentState, stats *Stats) *componentTracker {
	return &componentTracker{
		ctx:      ctx,
		registry: registry,
		state:    state,
		visited:  make(map[int]bool),
		output:   newChangeMap(),
		stats:    stats,
	}
}

// track implements §4.4 track(ref) -> cid.
func (t *componentTracker) track(ref *ComponentRef) (int, error) {
	if t.registry == nil {
		return 0, fmt.Errorf("livediff: component reference %q but no registry configured", ref.ID)
	}

	if cid, ok := t.state.CIDFor(ref.ID); ok {
		entry := t.state.entries[cid]
		t.visited[cid] = true

		if entry.module == ref.Module {
			return cid, t.update(cid, entry, ref)
		}
		return cid, t.replace(cid, entry, ref)
	}

	return t.add(ref)
}

// add handles §4.4 step 3: no entry exists for this extern id yet.
func (t *componentTracker) add(ref *ComponentRef) (int, error) {
	comp, ok := t.registry.build(ref.Module)
	if !ok {
		return 0, fmt.Errorf("livediff: module %q not registered", ref.Module)
	}

	cid := t.state.nextCID
	t.state.nextCID++

	socket := newSocket()
	if err := comp.Mount(t.ctx, socket); err != nil {
		return 0, &ComponentError{CID: cid, ExternID: ref.ID, Callback: "mount", Err: err}
	}
	if err := t.runUpdate(comp, cid, ref, socket); err != nil {
		return 0, err
	}

	t.state.entries[cid] = &componentEntry{
		module:   ref.Module,
		externID: ref.ID,
		assigns:  ref.Assigns,
		socket:   socket,
		dirty:    true,
	}
	t.state.cidToExtern[cid] = ref.ID
	t.visited[cid] = true
	t.stats.ComponentsMounted++
	return cid, nil
}

// update handles §4.4 step 1: same extern id, same module.
func (t *componentTracker) update(cid int, entry *componentEntry, ref *ComponentRef) error {
	comp, ok := t.registry.build(ref.Module)
	if !ok {
		return fmt.Errorf("livediff: module %q not registered", ref.Module)
	}

	dirty := !assignsEqual(entry.assigns, ref.Assigns)
	if err := t.runUpdate(comp, cid, ref, entry.socket); err != nil {
		return err
	}
	entry.assigns = ref.Assigns
	if dirty {
		entry.dirty = true
	}
	t.stats.ComponentsUpdated++
	return nil
}

// replace handles §4.4 step 2: same extern id, different module - reuse
// the cid, discard memoization, run mount again (invariant 4, §3).
func (t *componentTracker) replace(cid int, entry *componentEntry, ref *ComponentRef) error {
	comp, ok := t.registry.build(ref.Module)
	if !ok {
		return fmt.Errorf("livediff: module %q not registered", ref.Module)
	}

	socket := newSocket()
	if err := comp.Mount(t.ctx, socket); err != nil {
		return &ComponentError{CID: cid, ExternID: ref.ID, Callback: "mount", Err: err}
	}
	if err := t.runUpdate(comp, cid, ref, socket); err != nil {
		return err
	}

	entry.module = ref.Module
	entry.socket = socket
	entry.assigns = ref.Assigns
	entry.lastFingerprint = nil
	entry.dirty = true
	t.stats.ComponentsMounted++
	return nil
}

func (t *componentTracker) runUpdate(comp Component, cid int, ref *ComponentRef, socket *Socket) error {
	if err := comp.Update(t.ctx, ref.Assigns, socket); err != nil {
		return &ComponentError{CID: cid, ExternID: ref.ID, Callback: "update", Err: err}
	}
	return nil
}

// renderComponent implements §4.4 render_component(cid). Returns nil
// without recording anything when the entry is clean - nothing is added
// under the root change map's "components" key for this cid.
func (t *componentTracker) renderComponent(cid int) error {
	entry, ok := t.state.entries[cid]
	if !ok {
		return &UnknownCIDError{CID: cid}
	}
	if !entry.dirty {
		return nil
	}

	comp, ok := t.registry.build(entry.module)
	if !ok {
		return fmt.Errorf("livediff: module %q not registered", entry.module)
	}

	node, err := comp.Render(t.ctx, entry.socket)
	if err != nil {
		return &ComponentError{CID: cid, ExternID: entry.externID, Callback: "render", Err: err}
	}
	if node.Kind != KindTemplate {
		return &StructuralError{
			Reason: "component render must return a template node",
			Detail: fmt.Sprintf("module %q, cid %d", entry.module, cid),
		}
	}

	d := &diffCtx{ctx: t.ctx, comps: t, stats: t.stats}
	cm, tree, err := d.diffTemplate(node, entry.lastFingerprint)
	if err != nil {
		return err
	}

	entry.lastFingerprint = tree
	entry.dirty = false
	t.output[slotKey(cid)] = cm
	t.stats.ComponentsRendered++
	return nil
}

// gc implements §4.4 gc(cids_referenced_in_render): any entry whose cid
// was not visited this render is dropped; nextCID is never decremented
// (invariant 5, §3).
func (cs *ComponentState) gc(visited map[int]bool) {
	for cid := range cs.entries {
		if !visited[cid] {
			delete(cs.entries, cid)
			delete(cs.cidToExtern, cid)
		}
	}
}

func assignsEqual(a, b map[string]any) bool {
	return reflect.DeepEqual(a, b)
}
