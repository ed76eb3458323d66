package livediff

import "hash/fnv"

// FingerprintOf derives a deterministic fingerprint id for a template's
// static sequence (§9 design note): "a hash of the static sequence
// suffices, with the understanding that collisions produce false matches
// (vanishingly unlikely...)". Two calls with the same static sequence
// (same strings, same order) always produce the same id; this is the
// default Fingerprint source for TemplateNode when a caller has no
// process-local compiled-template id scheme of its own.
//
// A 0x1e byte separator is written between fragments so that e.g.
// static = ["ab", "c"] and static = ["a", "bc"] do not collide.
func FingerprintOf(static []string) uint64 {
	h := fnv.New64a()
	for _, s := range static {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0x1e})
	}
	return h.Sum64()
}
