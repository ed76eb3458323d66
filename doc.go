// Package livediff implements the server-side diff engine for a stateful,
// server-rendered, WebSocket-driven UI framework.
//
// The engine turns a tree of rendered templates into a compact, nested
// change map suitable for transmission to a browser client, which applies
// the map to a previously received full render to reconstruct the current
// DOM-equivalent output.
//
// # Core Concepts
//
// A rendered tree is built from Node values (see Node): template
// instances, comprehensions, component references, and leaf strings. The
// engine never produces HTML and never compiles templates - it consumes an
// already-rendered Node tree handed to it by a caller, and is blind to
// whatever produced that tree.
//
// Each session retains a SessionState across renders: a FingerprintTree
// recording which template/comprehension scaffolding the client already
// holds, and a ComponentState tracking stateful component instances by a
// client-stable external id.
//
//	engine := livediff.Engine{Modules: registry}
//	result, err := engine.Render(ctx, session, rendered)
//	// result.State, result.Changes, result.Stats
//
// Render is pure with respect to its inputs: on success it returns a new
// SessionState (inside RenderResult) and leaves the caller's copy
// untouched; on error the zero RenderResult is returned and no partial
// state is produced.
//
// # Components
//
// A stateful component implements Component: Mount seeds component-local
// state, Update merges caller-supplied assigns, Render produces a Node.
// The Registry dispatches component references (§3's "module" tag) to
// registered factories; ComponentState (carried inside SessionState) holds
// the per-session instances, memoized fingerprint trees, and the
// monotonically increasing cid allocation.
//
// # Resuming a session
//
// SessionState.Snapshot serializes the fingerprint tree and component
// registry metadata (never component Socket state, which is process-only)
// to MessagePack; RestoreSessionState reverses it. A transport embeds the
// result in a resume token so a reconnecting client can pick its session
// back up without a full re-render - see lib/wire for the signed/encrypted
// envelope and adapters/ws for the handshake that uses it.
//
// # What this package does not do
//
// Template compilation, HTML escaping, WebSocket framing and message
// routing, session/process lifecycle, event dispatch, form handling, DOM
// patching, configuration, logging, and CLI plumbing are all external to
// this package by design - see adapters/ws for a transport that calls into
// this package without it ever calling back out.
package livediff
