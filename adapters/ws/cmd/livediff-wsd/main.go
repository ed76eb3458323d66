// Command livediff-wsd runs a minimal WebSocket daemon exercising
// adapters/ws: every inbound message on a connection is treated as a
// render trigger, and the response is a change map against a built-in demo
// renderer (a template showing the server's current time). It exists to
// prove the transport adapter end to end, not as a deployment target.
package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/docopt/docopt-go"
	"github.com/golang/glog"

	"github.com/pthm/livediff"
	"github.com/pthm/livediff/adapters/ws"
	"github.com/pthm/livediff/lib/wire"
)

const version = "0.1.0"

type clockRenderer struct{}

func (clockRenderer) Render(ctx context.Context) (livediff.Node, error) {
	static := []string{"<time>", "</time>"}
	return livediff.TemplateNode(static, []livediff.Node{
		livediff.LeafNode(time.Now().UTC().Format(time.RFC3339)),
	}, livediff.FingerprintOf(static)), nil
}

func main() {
	usage := `livediff-wsd: WebSocket daemon for the livediff diff engine.

Usage:
    livediff-wsd serve [--addr=<addr>] [--secret=<secret>] [--resume-secret=<secret>]
    livediff-wsd -h | --help

Options:
    -h --help                  Show this screen.
    --addr=<addr>               Listen address [default: :8080].
    --secret=<secret>           Shared HMAC secret for bearer-token handshake
                                auth. When omitted, every connection is
                                accepted.
    --resume-secret=<secret>    Shared key for encrypting resume tokens.
                                When omitted, sessions never issue or accept
                                a resume token, and a reconnect always starts
                                from scratch.
    `

	opts, err := docopt.ParseArgs(usage, os.Args[1:], version)
	if err != nil {
		panic(err)
	}

	addr, _ := opts.String("--addr")
	secret, _ := opts.String("--secret")
	resumeSecret, _ := opts.String("--resume-secret")

	var secretBytes []byte
	if secret != "" {
		secretBytes = []byte(secret)
	}

	var resumeCodec *wire.Codec
	if resumeSecret != "" {
		resumeCodec, err = wire.NewCodec([]byte(resumeSecret))
		if err != nil {
			glog.Fatalf("livediff-wsd: resume codec: %v", err)
		}
	}

	engine := &livediff.Engine{Modules: livediff.NewRegistry()}
	upgrader := ws.NewUpgrader(engine, secretBytes, resumeCodec, func(r *http.Request) (ws.Renderer, error) {
		return clockRenderer{}, nil
	}, ws.DefaultSettings())

	mux := http.NewServeMux()
	mux.Handle("/ws", upgrader)

	glog.Infof("livediff-wsd listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		glog.Fatalf("livediff-wsd: %v", err)
	}
}
