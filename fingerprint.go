package livediff

// FPChildKind discriminates what a fingerprint tree remembers about a
// dynamic slot: nothing, a nested template instance, or a comprehension
// (which carries no per-row memory, only the fact that the slot held one).
type FPChildKind int

const (
	// FPChildNone means the slot held a leaf string or nothing last time.
	FPChildNone FPChildKind = iota
	// FPChildTemplate means the slot held a nested template instance.
	FPChildTemplate
	// FPChildComprehension is the sentinel recording that the slot held a
	// comprehension; comprehensions never get their own child subtree.
	FPChildComprehension
)

// FPChild is what FingerprintTree.Children stores for a dynamic-slot
// index: either nothing, a nested FingerprintTree, or the comprehension
// sentinel.
type FPChild struct {
	Kind FPChildKind
	Tree *FingerprintTree // non-nil only when Kind == FPChildTemplate
}

// FingerprintTree is the server-retained shadow of what a client already
// knows for one template instance (§3/§4.2): its RootFP, and for each
// dynamic slot that held a nested template or comprehension, a record of
// that fact.
//
// A nil *FingerprintTree is the empty fingerprint tree (§3): "the client
// has no prior knowledge" at that position. A render always produces a
// brand new, fully populated tree (structural sharing of unchanged
// sub-trees is an implementation detail, never observable) - existing
// trees are never mutated in place, so a *FingerprintTree handed to a
// caller can be retained and compared against freely.
//
// Equality between a rendered node and a FingerprintTree is judged solely
// by RootFP (§4.2: "equality by fingerprint field only - statics are never
// compared directly").
type FingerprintTree struct {
	RootFP   uint64
	Children map[int]FPChild
}

// childAt returns the child recorded at index i ("lookup child at index",
// §4.2); absent if there is none or fp is the empty tree.
func (fp *FingerprintTree) childAt(i int) FPChild {
	if fp == nil || fp.Children == nil {
		return FPChild{}
	}
	return fp.Children[i]
}

// treeOrNil returns the nested fingerprint tree c records, or nil if c
// held anything else (absent, leaf, comprehension, or a component -
// components keep no fingerprint-tree child, §4.1).
func (c FPChild) treeOrNil() *FingerprintTree {
	if c.Kind != FPChildTemplate {
		return nil
	}
	return c.Tree
}

// isComprehension reports whether the prior render held a comprehension
// at this slot, which is what lets a later render elide the
// comprehension's static scaffolding (§4.1).
func (c FPChild) isComprehension() bool {
	return c.Kind == FPChildComprehension
}

// rootMatches reports whether this tree's root fingerprint matches a
// rendered template's fingerprint. The empty tree never matches ("absent
// treated as mismatch", §4.1 step 1).
func rootMatches(fp *FingerprintTree, fingerprint uint64) bool {
	return fp != nil && fp.RootFP == fingerprint
}

// buildFingerprintTree constructs a FingerprintTree from a template
// instance's own fingerprint and the per-slot children recorded while
// diffing its dynamics ("construct from a rendered instance's walk", §4.2).
// A nil children map collapses to an empty (but still non-nil/"seen")
// tree, distinguishing "this template was rendered with no nested
// children" from "this slot has never been rendered" (the caller-visible
// nil case).
func buildFingerprintTree(fingerprint uint64, children map[int]FPChild) *FingerprintTree {
	return &FingerprintTree{RootFP: fingerprint, Children: children}
}
