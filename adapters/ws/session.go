package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/pthm/livediff"
	"github.com/pthm/livediff/lib/wire"
)

// Settings bounds how long a Session waits at each stage of its lifecycle,
// mirroring the teacher pack's practice of a single settings struct with
// one timeout per concern rather than scattered constants.
type Settings struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
	ReadTimeout      time.Duration
	PingInterval     time.Duration
}

// DefaultSettings returns conservative defaults suitable for a LAN or
// same-datacenter deployment.
func DefaultSettings() *Settings {
	return &Settings{
		HandshakeTimeout: 5 * time.Second,
		WriteTimeout:     5 * time.Second,
		ReadTimeout:      60 * time.Second,
		PingInterval:     30 * time.Second,
	}
}

// Renderer produces the rendered tree for one Engine.Render call. The
// caller's application owns event dispatch and template evaluation;
// Session only knows how to ask for the next tree and diff it.
type Renderer interface {
	Render(ctx context.Context) (livediff.Node, error)
}

// Session drives one WebSocket connection's worth of renders: on every
// inbound message (treated purely as a render trigger - its payload is
// not interpreted) it asks the Renderer for a fresh tree, diffs it against
// the session's running state, and writes the change map back as a JSON
// text frame.
type Session struct {
	id       ulid.ULID
	ctx      context.Context
	cancel   context.CancelFunc
	conn     *websocket.Conn
	engine   *livediff.Engine
	renderer Renderer
	settings *Settings
	codec    *wire.Codec // nil disables resume-token issuance

	state livediff.SessionState
}

// NewSession wraps an already-upgraded WebSocket connection. The session
// starts from a brand new livediff.SessionState; a caller resuming a prior
// connection should use Resume instead. codec may be nil, in which case
// the session never includes a resume token alongside its change maps.
func NewSession(ctx context.Context, conn *websocket.Conn, engine *livediff.Engine, renderer Renderer, settings *Settings, codec *wire.Codec) *Session {
	return newSession(ctx, conn, engine, renderer, settings, ulid.Make(), livediff.NewSessionState(), codec)
}

// Resume wraps an already-upgraded connection around a session state
// recovered from a resume token, instead of starting fresh, preserving the
// session id the token was issued under.
func Resume(ctx context.Context, conn *websocket.Conn, engine *livediff.Engine, renderer Renderer, settings *Settings, sessionID ulid.ULID, state livediff.SessionState, codec *wire.Codec) *Session {
	return newSession(ctx, conn, engine, renderer, settings, sessionID, state, codec)
}

func newSession(ctx context.Context, conn *websocket.Conn, engine *livediff.Engine, renderer Renderer, settings *Settings, id ulid.ULID, state livediff.SessionState, codec *wire.Codec) *Session {
	if settings == nil {
		settings = DefaultSettings()
	}
	sessionCtx, cancel := context.WithCancel(ctx)
	return &Session{
		id:       id,
		ctx:      sessionCtx,
		cancel:   cancel,
		conn:     conn,
		engine:   engine,
		renderer: renderer,
		settings: settings,
		codec:    codec,
		state:    state,
	}
}

// ID returns the session's transport-assigned identifier.
func (s *Session) ID() string { return s.id.String() }

// Close cancels the session's context and closes the underlying
// connection.
func (s *Session) Close() error {
	s.cancel()
	return s.conn.Close()
}

// Run blocks, servicing inbound render triggers until the connection
// closes or the session's context is canceled. It never returns a non-nil
// error for an ordinary client-initiated close.
func (s *Session) Run() error {
	defer s.cancel()

	stopPing := s.startPing()
	defer stopPing()

	for {
		if err := s.conn.SetReadDeadline(time.Now().Add(s.settings.ReadTimeout)); err != nil {
			return fmt.Errorf("ws: set read deadline: %w", err)
		}

		_, _, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				glog.V(1).Infof("ws: session %s closed normally", s.ID())
				return nil
			}
			return fmt.Errorf("ws: read message: %w", err)
		}

		if err := s.renderOnce(); err != nil {
			return err
		}
	}
}

func (s *Session) renderOnce() error {
	node, err := s.renderer.Render(s.ctx)
	if err != nil {
		return fmt.Errorf("ws: renderer: %w", err)
	}

	result, err := s.engine.Render(s.ctx, s.state, node)
	if err != nil {
		return fmt.Errorf("ws: engine render: %w", err)
	}
	s.state = result.State

	payload, err := s.framePayload(result)
	if err != nil {
		return fmt.Errorf("ws: marshal frame: %w", err)
	}

	if err := s.conn.SetWriteDeadline(time.Now().Add(s.settings.WriteTimeout)); err != nil {
		return fmt.Errorf("ws: set write deadline: %w", err)
	}
	if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("ws: write message: %w", err)
	}

	glog.V(2).Infof("ws: session %s wrote %d bytes (full=%d incremental=%d)",
		s.ID(), len(payload), result.Stats.FullRenders, result.Stats.IncrementalRenders)
	return nil
}

// frame is the wire shape written for one render when the session issues
// resume tokens. Without a codec, a frame is just the bare change map (see
// framePayload) - every existing client and test that never configured
// resume support keeps seeing exactly the shape it always has.
type frame struct {
	Changes livediff.ChangeMap `json:"changes"`
	Resume  string             `json:"resume"`
}

func (s *Session) framePayload(result livediff.RenderResult) ([]byte, error) {
	if s.codec == nil {
		return json.Marshal(result.Changes)
	}

	token, err := s.resumeToken()
	if err != nil {
		return nil, fmt.Errorf("build resume token: %w", err)
	}
	return json.Marshal(frame{Changes: result.Changes, Resume: token})
}

// resumeToken encrypts the session's current state into a self-contained
// token a reconnecting client can hand back to Upgrader.
func (s *Session) resumeToken() (string, error) {
	snapshot, err := s.state.Snapshot()
	if err != nil {
		return "", err
	}
	return s.codec.Encrypt(wire.ResumeToken{
		SessionID: s.ID(),
		IssuedAt:  time.Now().Unix(),
		Snapshot:  snapshot,
	})
}

// startPing launches a goroutine that pings the peer on settings.PingInterval
// to keep intermediate proxies from closing an otherwise idle connection; it
// returns a function that stops the goroutine.
func (s *Session) startPing() func() {
	if s.settings.PingInterval <= 0 {
		return func() {}
	}

	ticker := time.NewTicker(s.settings.PingInterval)
	done := make(chan struct{})

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				deadline := time.Now().Add(s.settings.WriteTimeout)
				if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
					glog.V(1).Infof("ws: session %s ping failed: %v", s.ID(), err)
					return
				}
			}
		}
	}()

	return func() { close(done) }
}
