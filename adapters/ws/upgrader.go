package ws

import (
	"net/http"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
	"github.com/oklog/ulid/v2"

	"github.com/pthm/livediff"
	"github.com/pthm/livediff/lib/wire"
)

// RendererFactory builds the Renderer a newly accepted connection should
// use, given the originating HTTP request (path, query, any context the
// host application attached upstream).
type RendererFactory func(r *http.Request) (Renderer, error)

// resumeHeader is where a reconnecting client hands back the token a prior
// session issued in its frames.
const resumeHeader = "X-Livediff-Resume"

// Upgrader accepts WebSocket connections, optionally verifying a bearer
// JWT handshake, and hands each one off to its own Session.
type Upgrader struct {
	Engine      *livediff.Engine
	Secret      []byte      // nil disables auth - every connection is accepted
	ResumeCodec *wire.Codec // nil disables resume support entirely
	NewRenderer RendererFactory
	Settings    *Settings

	upgrader websocket.Upgrader
}

// NewUpgrader constructs an Upgrader ready to be mounted as an
// http.Handler. secret may be nil to disable handshake authentication
// (appropriate only for local development). resumeCodec may be nil to
// disable resume support - every connection then starts a brand new
// session and no resume token is ever issued.
func NewUpgrader(engine *livediff.Engine, secret []byte, resumeCodec *wire.Codec, newRenderer RendererFactory, settings *Settings) *Upgrader {
	if settings == nil {
		settings = DefaultSettings()
	}
	return &Upgrader{
		Engine:      engine,
		Secret:      secret,
		ResumeCodec: resumeCodec,
		NewRenderer: newRenderer,
		Settings:    settings,
		upgrader: websocket.Upgrader{
			HandshakeTimeout: settings.HandshakeTimeout,
		},
	}
}

func (u *Upgrader) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if u.Secret != nil {
		if _, err := verifyBearerToken(r.Header.Get("Authorization"), u.Secret); err != nil {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	renderer, err := u.NewRenderer(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resumed, resumeID, resumeState, err := u.resumeFromRequest(r)
	if err != nil {
		http.Error(w, "invalid resume token", http.StatusBadRequest)
		return
	}

	conn, err := u.upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("ws: upgrade failed: %v", err)
		return
	}

	var session *Session
	if resumed {
		session = Resume(r.Context(), conn, u.Engine, renderer, u.Settings, resumeID, resumeState, u.ResumeCodec)
		glog.Infof("ws: session %s resumed from %s", session.ID(), r.RemoteAddr)
	} else {
		session = NewSession(r.Context(), conn, u.Engine, renderer, u.Settings, u.ResumeCodec)
		glog.Infof("ws: session %s connected from %s", session.ID(), r.RemoteAddr)
	}

	go func() {
		if err := session.Run(); err != nil {
			glog.Warningf("ws: session %s ended: %v", session.ID(), err)
		}
		_ = session.Close()
	}()
}

// resumeFromRequest decodes the resume header, if present, into the prior
// session's id and restored state. The zero-value, false, nil return means
// "no resume requested" - a missing header or a disabled ResumeCodec is
// not an error, only a malformed or tampered token handed in by a client
// that did try to resume.
func (u *Upgrader) resumeFromRequest(r *http.Request) (bool, ulid.ULID, livediff.SessionState, error) {
	token := r.Header.Get(resumeHeader)
	if token == "" || u.ResumeCodec == nil {
		return false, ulid.ULID{}, livediff.SessionState{}, nil
	}

	rt, err := u.ResumeCodec.Open(token)
	if err != nil {
		return false, ulid.ULID{}, livediff.SessionState{}, err
	}
	state, err := livediff.RestoreSessionState(rt.Snapshot)
	if err != nil {
		return false, ulid.ULID{}, livediff.SessionState{}, err
	}

	id, err := ulid.Parse(rt.SessionID)
	if err != nil {
		id = ulid.Make()
	}
	return true, id, state, nil
}
