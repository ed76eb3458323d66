package main

import (
	"fmt"

	"github.com/pthm/livediff"
)

// fixtureNode is the JSON shape a render fixture uses to describe a
// rendered tree - a plain, serializable stand-in for livediff.Node, which
// is not itself JSON-shaped (its Fingerprint is derived, not authored).
type fixtureNode struct {
	Kind      string         `json:"kind"`
	Leaf      string         `json:"leaf,omitempty"`
	Static    []string       `json:"static,omitempty"`
	Dynamic   []fixtureNode  `json:"dynamic,omitempty"`
	Rows      [][]fixtureNode `json:"rows,omitempty"`
	Component *fixtureRef    `json:"component,omitempty"`
}

type fixtureRef struct {
	ID      string         `json:"id"`
	Module  string         `json:"module"`
	Assigns map[string]any `json:"assigns,omitempty"`
}

// fixture is the top-level shape a `render` invocation reads: the rendered
// tree to diff, and optionally a previously persisted session to diff it
// against.
type fixture struct {
	Session  *sessionFixture `json:"session,omitempty"`
	Rendered fixtureNode     `json:"rendered"`
}

// sessionFixture round-trips a livediff.SessionState through a fixture
// file: Snapshot is only ever produced by a prior `render` invocation's
// own output, fed back in as the "session" field of a later invocation's
// input to continue that session incrementally. It is opaque on purpose -
// nothing but Snapshot/RestoreSessionState interprets its bytes.
type sessionFixture struct {
	Snapshot []byte `json:"snapshot,omitempty"`
}

// toState decodes a fixture's session field into a livediff.SessionState, a
// brand new one if the fixture carried none (the first render of a
// session).
func (f *sessionFixture) toState() (livediff.SessionState, error) {
	if f == nil || len(f.Snapshot) == 0 {
		return livediff.NewSessionState(), nil
	}
	return livediff.RestoreSessionState(f.Snapshot)
}

func (n fixtureNode) toNode() (livediff.Node, error) {
	switch n.Kind {
	case "absent", "":
		return livediff.Absent(), nil
	case "leaf":
		return livediff.LeafNode(n.Leaf), nil
	case "template":
		dyn := make([]livediff.Node, len(n.Dynamic))
		for i, d := range n.Dynamic {
			node, err := d.toNode()
			if err != nil {
				return livediff.Node{}, fmt.Errorf("dynamic[%d]: %w", i, err)
			}
			dyn[i] = node
		}
		return livediff.TemplateNode(n.Static, dyn, livediff.FingerprintOf(n.Static)), nil
	case "comprehension":
		rows := make([]livediff.Row, len(n.Rows))
		for ri, row := range n.Rows {
			converted := make(livediff.Row, len(row))
			for ci, el := range row {
				node, err := el.toNode()
				if err != nil {
					return livediff.Node{}, fmt.Errorf("rows[%d][%d]: %w", ri, ci, err)
				}
				converted[ci] = node
			}
			rows[ri] = converted
		}
		return livediff.ComprehensionNode(n.Static, rows), nil
	case "component":
		if n.Component == nil {
			return livediff.Node{}, fmt.Errorf("component node missing \"component\" field")
		}
		return livediff.ComponentNode(n.Component.ID, n.Component.Module, n.Component.Assigns), nil
	default:
		return livediff.Node{}, fmt.Errorf("unknown fixture node kind %q", n.Kind)
	}
}
