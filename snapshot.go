package livediff

import "github.com/vmihailenco/msgpack/v5"

// fingerprintTreeWire and fpChildWire are the MessagePack-tagged mirrors
// of FingerprintTree/FPChild: msgpack needs exported, tagged struct
// fields, and the public types deliberately expose no tags of their own.
type fingerprintTreeWire struct {
	RootFP   uint64              `msgpack:"root_fp"`
	Children map[int]fpChildWire `msgpack:"children,omitempty"`
}

type fpChildWire struct {
	Kind FPChildKind          `msgpack:"kind"`
	Tree *fingerprintTreeWire `msgpack:"tree,omitempty"`
}

func wireFromTree(t *FingerprintTree) *fingerprintTreeWire {
	if t == nil {
		return nil
	}
	w := &fingerprintTreeWire{RootFP: t.RootFP}
	if len(t.Children) > 0 {
		w.Children = make(map[int]fpChildWire, len(t.Children))
		for i, c := range t.Children {
			w.Children[i] = fpChildWire{Kind: c.Kind, Tree: wireFromTree(c.Tree)}
		}
	}
	return w
}

func treeFromWire(w *fingerprintTreeWire) *FingerprintTree {
	if w == nil {
		return nil
	}
	t := &FingerprintTree{RootFP: w.RootFP}
	if len(w.Children) > 0 {
		t.Children = make(map[int]FPChild, len(w.Children))
		for i, c := range w.Children {
			t.Children[i] = FPChild{Kind: c.Kind, Tree: treeFromWire(c.Tree)}
		}
	}
	return t
}

// componentEntryWire is the serialized form of a componentEntry. Socket is
// deliberately absent: component-local state is process-only (§3's entry
// lifecycle never promises it survives a reconnect), so Restore rebuilds a
// fresh Socket per entry and lets the component's own Mount/Update refill
// it the next time it runs.
type componentEntryWire struct {
	Module          string               `msgpack:"module"`
	ExternID        string               `msgpack:"extern_id"`
	Assigns         map[string]any       `msgpack:"assigns,omitempty"`
	LastFingerprint *fingerprintTreeWire `msgpack:"last_fingerprint,omitempty"`
	Dirty           bool                 `msgpack:"dirty"`
}

// sessionStateWire is the MessagePack wire shape a resume token carries:
// the fingerprint tree plus the registry's CID-engine bookkeeping.
type sessionStateWire struct {
	Fingerprints *fingerprintTreeWire       `msgpack:"fingerprints,omitempty"`
	Entries      map[int]componentEntryWire `msgpack:"entries,omitempty"`
	CIDToExtern  map[int]string             `msgpack:"cid_to_extern,omitempty"`
	NextCID      int                        `msgpack:"next_cid"`
}

// Snapshot serializes the fingerprint tree and component registry metadata
// to MessagePack, the wire format a transport embeds in a resume token to
// hand back to a reconnecting client (§B.4). No component Socket state is
// included - see componentEntryWire.
func (s SessionState) Snapshot() ([]byte, error) {
	w := sessionStateWire{Fingerprints: wireFromTree(s.Fingerprints)}

	if s.Components != nil {
		w.NextCID = s.Components.nextCID
		if len(s.Components.entries) > 0 {
			w.Entries = make(map[int]componentEntryWire, len(s.Components.entries))
			for cid, e := range s.Components.entries {
				w.Entries[cid] = componentEntryWire{
					Module:          e.module,
					ExternID:        e.externID,
					Assigns:         e.assigns,
					LastFingerprint: wireFromTree(e.lastFingerprint),
					Dirty:           e.dirty,
				}
			}
		}
		if len(s.Components.cidToExtern) > 0 {
			w.CIDToExtern = make(map[int]string, len(s.Components.cidToExtern))
			for cid, extern := range s.Components.cidToExtern {
				w.CIDToExtern[cid] = extern
			}
		}
	}

	return msgpack.Marshal(w)
}

// RestoreSessionState reverses Snapshot, producing a SessionState fit to
// pass into Engine.Render. Every restored component entry starts with a
// fresh Socket; Mount is not re-run (the entry already exists and its
// assigns/dirty bit are preserved), only its Socket - both Socket.Assigns
// and the private state bag - is empty until the component's own Update or
// Render next populates it.
func RestoreSessionState(data []byte) (SessionState, error) {
	var w sessionStateWire
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return SessionState{}, err
	}

	components := NewComponentState()
	components.nextCID = w.NextCID
	for cid, e := range w.Entries {
		components.entries[cid] = &componentEntry{
			module:          e.Module,
			externID:        e.ExternID,
			assigns:         e.Assigns,
			socket:          newSocket(),
			lastFingerprint: treeFromWire(e.LastFingerprint),
			dirty:           e.Dirty,
		}
	}
	for cid, extern := range w.CIDToExtern {
		components.cidToExtern[cid] = extern
	}

	return SessionState{
		Fingerprints: treeFromWire(w.Fingerprints),
		Components:   components,
	}, nil
}
