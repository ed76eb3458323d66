package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
	"github.com/gorilla/websocket"

	"github.com/pthm/livediff"
	"github.com/pthm/livediff/lib/wire"
)

// counterRenderer renders a one-slot template whose leaf value increments
// on every call, so successive renders are guaranteed to differ.
type counterRenderer struct {
	n int
}

func (r *counterRenderer) Render(ctx context.Context) (livediff.Node, error) {
	r.n++
	static := []string{"<span>", "</span>"}
	return livediff.TemplateNode(static, []livediff.Node{livediff.LeafNode(strconv.Itoa(r.n))}, livediff.FingerprintOf(static)), nil
}

func testSettings() *Settings {
	return &Settings{
		HandshakeTimeout: time.Second,
		WriteTimeout:     time.Second,
		ReadTimeout:      5 * time.Second,
		PingInterval:     0,
	}
}

func newTestServer(t *testing.T, secret []byte) (*httptest.Server, func()) {
	t.Helper()
	engine := &livediff.Engine{Modules: livediff.NewRegistry()}
	upgrader := NewUpgrader(engine, secret, nil, func(r *http.Request) (Renderer, error) {
		return &counterRenderer{}, nil
	}, testSettings())

	srv := httptest.NewServer(upgrader)
	return srv, srv.Close
}

func dialTestServer(t *testing.T, srv *httptest.Server, header http.Header) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	return websocket.DefaultDialer.Dial(wsURL, header)
}

func TestSessionRenderOnEveryTrigger(t *testing.T) {
	srv, closeSrv := newTestServer(t, nil)
	defer closeSrv()

	conn, _, err := dialTestServer(t, srv, nil)
	assert.Equal(t, err, nil)
	defer conn.Close()

	// First trigger: full render.
	assert.Equal(t, conn.WriteMessage(websocket.TextMessage, []byte("trigger")), nil)

	_, payload, err := conn.ReadMessage()
	assert.Equal(t, err, nil)

	var cm map[string]any
	assert.Equal(t, json.Unmarshal(payload, &cm), nil)
	if _, ok := cm[livediff.KeyStatic]; !ok {
		t.Error("first render missing static key")
	}

	// Second trigger: incremental render.
	assert.Equal(t, conn.WriteMessage(websocket.TextMessage, []byte("trigger")), nil)
	_, payload2, err := conn.ReadMessage()
	assert.Equal(t, err, nil)

	var cm2 map[string]any
	assert.Equal(t, json.Unmarshal(payload2, &cm2), nil)
	if _, ok := cm2[livediff.KeyStatic]; ok {
		t.Error("second render included static key, want incremental")
	}
}

func TestUpgraderRejectsMissingAuth(t *testing.T) {
	srv, closeSrv := newTestServer(t, []byte("shared-secret"))
	defer closeSrv()

	_, resp, err := dialTestServer(t, srv, nil)
	if err == nil {
		t.Fatal("Dial without Authorization header succeeded, want rejection")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Errorf("status = %d, want %d", status, http.StatusUnauthorized)
	}
}

func TestUpgraderAcceptsValidAuth(t *testing.T) {
	secret := []byte("shared-secret")
	srv, closeSrv := newTestServer(t, secret)
	defer closeSrv()

	token := signTestToken(t, secret, "sess-1", time.Now().Add(time.Hour))
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, _, err := dialTestServer(t, srv, header)
	assert.Equal(t, err, nil)
	defer conn.Close()
}

func TestResumeRestoresFingerprintStateAcrossConnections(t *testing.T) {
	codec, err := wire.NewCodec([]byte("resume-secret-32-bytes-long!!!!"))
	assert.Equal(t, err, nil)

	engine := &livediff.Engine{Modules: livediff.NewRegistry()}
	upgrader := NewUpgrader(engine, nil, codec, func(r *http.Request) (Renderer, error) {
		return &counterRenderer{}, nil
	}, testSettings())
	srv := httptest.NewServer(upgrader)
	defer srv.Close()

	conn, _, err := dialTestServer(t, srv, nil)
	assert.Equal(t, err, nil)

	assert.Equal(t, conn.WriteMessage(websocket.TextMessage, []byte("trigger")), nil)
	_, payload, err := conn.ReadMessage()
	assert.Equal(t, err, nil)
	conn.Close()

	var f struct {
		Changes map[string]any `json:"changes"`
		Resume  string         `json:"resume"`
	}
	assert.Equal(t, json.Unmarshal(payload, &f), nil)
	if _, ok := f.Changes[livediff.KeyStatic]; !ok {
		t.Fatal("first render frame missing static key")
	}
	if f.Resume == "" {
		t.Fatal("first render frame carried no resume token")
	}

	header := http.Header{}
	header.Set(resumeHeader, f.Resume)
	conn2, _, err := dialTestServer(t, srv, header)
	assert.Equal(t, err, nil)
	defer conn2.Close()

	assert.Equal(t, conn2.WriteMessage(websocket.TextMessage, []byte("trigger")), nil)
	_, payload2, err := conn2.ReadMessage()
	assert.Equal(t, err, nil)

	var f2 struct {
		Changes map[string]any `json:"changes"`
		Resume  string         `json:"resume"`
	}
	assert.Equal(t, json.Unmarshal(payload2, &f2), nil)
	if _, ok := f2.Changes[livediff.KeyStatic]; ok {
		t.Error("render after resume included static key, want incremental (resumed fingerprint tree should have matched)")
	}
}

func TestUpgraderRejectsMalformedResumeToken(t *testing.T) {
	codec, err := wire.NewCodec([]byte("resume-secret-32-bytes-long!!!!"))
	assert.Equal(t, err, nil)

	engine := &livediff.Engine{Modules: livediff.NewRegistry()}
	upgrader := NewUpgrader(engine, nil, codec, func(r *http.Request) (Renderer, error) {
		return &counterRenderer{}, nil
	}, testSettings())
	srv := httptest.NewServer(upgrader)
	defer srv.Close()

	header := http.Header{}
	header.Set(resumeHeader, "not-a-real-token")
	_, resp, err := dialTestServer(t, srv, header)
	if err == nil {
		t.Fatal("Dial with a malformed resume token succeeded, want rejection")
	}
	if resp == nil || resp.StatusCode != http.StatusBadRequest {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Errorf("status = %d, want %d", status, http.StatusBadRequest)
	}
}
