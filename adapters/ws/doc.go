// Package ws is a WebSocket transport adapter for livediff.Engine: it owns
// the connection lifecycle (handshake auth, read/write loop, ping/pong)
// and calls into the core engine's public API, but never the reverse -
// livediff has no knowledge this package exists.
//
// What this package does not do: decide what triggers a render (event
// dispatch from the DOM is the caller's concern, supplied via the Renderer
// interface), apply a change map to a document, or render HTML.
package ws
