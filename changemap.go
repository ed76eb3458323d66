package livediff

import (
	"encoding/json"
	"strconv"
)

// Reserved keys in a ChangeMap, alongside the stringified integer slot
// indices (§4.3, §6).
const (
	KeyStatic     = "static"
	KeyDynamics   = "dynamics"
	KeyComponents = "components"
)

// ChangeMap is the nested, encodable wire structure of §6: keys are either
// stringified dynamic-slot indices ("0", "1", ...) or one of the reserved
// keys above. It is a plain map so it serializes to the expected JSON
// object shape with default map encoding (its MarshalJSON below only
// delegates to it) - Go requires string map keys for json.Marshal, which
// is exactly what the wire format wants (clients read dynamic-slot indices
// as object keys, same as they'd read "static").
type ChangeMap map[string]any

// slotKey renders a dynamic-slot index as its wire-format string key.
func slotKey(i int) string { return strconv.Itoa(i) }

// setSlot records the change-map value for dynamic slot i. A nil value is
// never stored - "omit keys whose values are empty on an incremental
// render" (§4.3) starts with simply not writing them.
func (cm ChangeMap) setSlot(i int, v any) {
	if v == nil {
		return
	}
	cm[slotKey(i)] = v
}

// newChangeMap allocates an empty ChangeMap.
func newChangeMap() ChangeMap { return make(ChangeMap) }

// MarshalJSON is defined explicitly (even though the default map
// marshaling would already work) to document that §6's wire shape is
// exactly encoding/json's nested-object behavior: no custom framing, no
// integer-keyed JSON (which doesn't exist), just string keys that happen
// to be stringified integers for slots.
func (cm ChangeMap) MarshalJSON() ([]byte, error) {
	type plain map[string]any
	return json.Marshal(plain(cm))
}
