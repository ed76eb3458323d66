package livediff

import "context"

// diffCtx carries the per-render dependencies the diff walk needs to reach
// into the component registry without threading them through every call.
type diffCtx struct {
	ctx   context.Context
	comps *componentTracker
	stats *Stats
}

// diffTemplate implements §4.1's template-instance algorithm: compare
// rendered.Fingerprint against prior.RootFP, emit either a full or
// incremental change map, and return the fingerprint subtree that
// replaces prior for next render.
func (d *diffCtx) diffTemplate(n Node, prior *FingerprintTree) (ChangeMap, *FingerprintTree, error) {
	if len(n.Static) != len(n.Dynamic)+1 {
		return nil, nil, &StructuralError{
			Reason: "template static/dynamic length mismatch",
			Detail: dynamicCountDetail(len(n.Dynamic), len(n.Static)-1),
		}
	}

	cm := newChangeMap()
	children := make(map[int]FPChild, len(n.Dynamic))

	if rootMatches(prior, n.Fingerprint) {
		d.stats.IncrementalRenders++
		// Match: no static, diff each slot against the prior child,
		// preserving unchanged sub-fingerprints (§4.1 step 3).
		for i, dyn := range n.Dynamic {
			value, child, err := d.diffSlot(dyn, prior.childAt(i))
			if err != nil {
				return nil, nil, wrapSlotError(err, i)
			}
			cm.setSlot(i, value)
			if child.Kind != FPChildNone {
				children[i] = child
			}
		}
	} else {
		d.stats.FullRenders++
		// Mismatch (including "absent treated as mismatch"): full
		// render, every slot emitted as if the client knew nothing
		// (§4.1 step 2).
		cm[KeyStatic] = n.Static
		for i, dyn := range n.Dynamic {
			value, child, err := d.diffSlot(dyn, FPChild{})
			if err != nil {
				return nil, nil, wrapSlotError(err, i)
			}
			cm.setSlot(i, value)
			if child.Kind != FPChildNone {
				children[i] = child
			}
		}
	}

	return cm, buildFingerprintTree(n.Fingerprint, children), nil
}

// diffSlot implements the per-kind dynamic-slot rules of §4.1. It returns
// the value to store under the slot's key in the parent's change map (nil
// meaning "emit nothing"), and the FPChild the parent's fingerprint tree
// should now record for this slot.
//
// A slot changing kind between renders is handled uniformly: whatever
// FPChild the prior tree recorded is only consulted by the branch that
// understands it (diffTemplate for FPChildTemplate, the comprehension
// branch for FPChildComprehension); any other combination behaves as
// "prior absent", exactly matching the tie-break rule in §4.1.
func (d *diffCtx) diffSlot(n Node, prior FPChild) (any, FPChild, error) {
	switch n.Kind {
	case KindAbsent:
		return nil, FPChild{}, nil

	case KindLeaf:
		return n.Leaf, FPChild{}, nil

	case KindTemplate:
		cm, tree, err := d.diffTemplate(n, prior.treeOrNil())
		if err != nil {
			return nil, FPChild{}, err
		}
		return cm, FPChild{Kind: FPChildTemplate, Tree: tree}, nil

	case KindComprehension:
		cm, err := d.diffComprehension(n, prior.isComprehension())
		if err != nil {
			return nil, FPChild{}, err
		}
		return cm, FPChild{Kind: FPChildComprehension}, nil

	case KindComponent:
		cid, err := d.comps.track(n.Component)
		if err != nil {
			return nil, FPChild{}, err
		}
		if err := d.comps.renderComponent(cid); err != nil {
			return nil, FPChild{}, err
		}
		// No fingerprint-tree child recorded for components: their
		// memoization lives entirely in the registry (§4.1).
		return cid, FPChild{}, nil

	default:
		return nil, FPChild{}, &StructuralError{Reason: "unknown node kind"}
	}
}

// diffComprehension implements the comprehension slot rule of §4.1: every
// row is diffed in isolation from scratch (no per-row fingerprint
// memory), and the inner static is included unless the prior render
// already held a comprehension at this slot.
func (d *diffCtx) diffComprehension(n Node, knownStatic bool) (ChangeMap, error) {
	want := len(n.Static) - 1
	rows := make([][]any, len(n.Rows))
	for ri, row := range n.Rows {
		if len(row) != want {
			return nil, &StructuralError{
				Reason: "comprehension row length mismatch",
				Detail: rowDetail(ri, len(row), want),
			}
		}
		// Row elements are positional, not keyed, so an absent element
		// cannot be omitted the way a template slot can - it is encoded
		// as an explicit null placeholder to keep later elements aligned
		// with the shared inner static.
		encoded := make([]any, len(row))
		for ci, el := range row {
			value, _, err := d.diffSlot(el, FPChild{})
			if err != nil {
				return nil, wrapSlotError(err, ci)
			}
			encoded[ci] = value
		}
		rows[ri] = encoded
	}

	cm := newChangeMap()
	if !knownStatic {
		cm[KeyStatic] = n.Static
	}
	cm[KeyDynamics] = rows
	return cm, nil
}
