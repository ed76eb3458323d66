package livediff

// Kind discriminates the four rendered-node variants of §3. Node is a
// tagged variant rather than an interface hierarchy: every diff step
// switches on Kind instead of relying on dynamic dispatch.
type Kind int

const (
	// KindAbsent marks a dynamic slot that rendered to nothing.
	KindAbsent Kind = iota
	// KindLeaf is a plain string value (already HTML-escaped upstream).
	KindLeaf
	// KindTemplate is a nested template instance with static/dynamic pairs.
	KindTemplate
	// KindComprehension is a repeated inner static scaffolding over rows.
	KindComprehension
	// KindComponent is a reference to a stateful component by external id.
	KindComponent
)

// Node is a rendered-tree node (§3). Exactly one set of fields is
// meaningful, selected by Kind; callers should construct Node values with
// the Leaf/Template/Comprehension/Component/Absent helpers below rather
// than populating the struct directly, which keeps the invariants in one
// place.
type Node struct {
	Kind Kind

	// Leaf holds the string value when Kind == KindLeaf.
	Leaf string

	// Static and Dynamic describe a template instance (Kind ==
	// KindTemplate): len(Static) == len(Dynamic)+1 (invariant 1, §3).
	// Fingerprint is a stable id of the Static sequence; two instances of
	// the same compiled template share a Fingerprint.
	Static      []string
	Dynamic     []Node
	Fingerprint uint64

	// Rows holds a comprehension's per-row dynamics (Kind ==
	// KindComprehension); Static is the shared inner scaffolding and every
	// row must have len(Static)-1 elements (invariant 2, §3).
	Rows []Row

	// Component describes a component reference (Kind == KindComponent).
	Component *ComponentRef
}

// Row is one row of a comprehension: an ordered sequence of leaf strings
// or nested rendered nodes aligned to the comprehension's inner Static.
type Row []Node

// ComponentRef references a stateful component by its client-stable
// external id, the assigns handed to it this render, and a module tag
// identifying which registered Component implementation backs it.
type ComponentRef struct {
	ID      string
	Module  string
	Assigns map[string]any
}

// Absent returns the Node rendered when a dynamic slot holds nothing.
func Absent() Node { return Node{Kind: KindAbsent} }

// LeafNode returns a Node for a plain string value.
func LeafNode(s string) Node { return Node{Kind: KindLeaf, Leaf: s} }

// TemplateNode returns a Node for a template instance. fingerprint should
// be produced by FingerprintOf(static) unless the caller has its own
// stable per-compiled-template id scheme (§9 design note).
func TemplateNode(static []string, dynamic []Node, fingerprint uint64) Node {
	return Node{
		Kind:        KindTemplate,
		Static:      static,
		Dynamic:     dynamic,
		Fingerprint: fingerprint,
	}
}

// ComprehensionNode returns a Node for a comprehension. An empty rows
// slice is valid (§4.1 edge case: empty dynamics still emit {dynamics: []}).
func ComprehensionNode(static []string, rows []Row) Node {
	return Node{Kind: KindComprehension, Static: static, Rows: rows}
}

// ComponentNode returns a Node referencing a stateful component.
func ComponentNode(id, module string, assigns map[string]any) Node {
	return Node{Kind: KindComponent, Component: &ComponentRef{
		ID:      id,
		Module:  module,
		Assigns: assigns,
	}}
}

// Validate checks the structural invariants of §3 for this node and its
// descendants, returning a *StructuralError identifying the offending
// node on violation. Diffing runs the same length checks as it walks
// (without calling Validate); exposed so callers
// constructing trees by hand can check fixtures ahead of time.
func (n Node) Validate() error {
	switch n.Kind {
	case KindTemplate:
		if len(n.Static) != len(n.Dynamic)+1 {
			return &StructuralError{
				Reason: "template static/dynamic length mismatch",
				Detail: "len(static) must equal len(dynamic)+1",
			}
		}
		for i, d := range n.Dynamic {
			if err := d.Validate(); err != nil {
				return wrapSlotError(err, i)
			}
		}
	case KindComprehension:
		want := len(n.Static) - 1
		for i, row := range n.Rows {
			if len(row) != want {
				return &StructuralError{
					Reason: "comprehension row length mismatch",
					Detail: rowDetail(i, len(row), want),
				}
			}
			for _, el := range row {
				if err := el.Validate(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
