// jdb-server is the real TCP entrypoint: it listens for exactly one
// debugger client at a time, drives its protocol session to completion,
// and serves a read-only diagnostics endpoint alongside it.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jdb/internal/buildinfo"
	"jdb/pkg/config"
	"jdb/pkg/debugger"
	"jdb/pkg/diagui"
	"jdb/pkg/engine"
	"jdb/pkg/sourcestore"
	"jdb/pkg/transport"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config overlay")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("jdb-server: %v", err)
	}

	logger := log.New(os.Stderr, "jdb-server: ", log.LstdFlags)
	logger.Printf("starting, protocol version %s", buildinfo.String())

	registry := diagui.NewRegistry()
	if cfg.Diagnostics.Enabled {
		go serveDiagnostics(cfg.Diagnostics.Addr, registry, logger)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sources := sourcestore.New()
	for ctx.Err() == nil {
		if err := runOneSession(ctx, cfg, sources, registry, logger); err != nil {
			logger.Printf("session ended: %v", err)
		}
	}
	logger.Println("shutting down")
}

func serveDiagnostics(addr string, registry *diagui.Registry, logger *log.Logger) {
	mux := http.NewServeMux()
	registry.Mount(mux)
	logger.Printf("diagnostics listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		logger.Printf("diagnostics server exited: %v", err)
	}
}

func runOneSession(ctx context.Context, cfg config.Config, sources *sourcestore.Store, registry *diagui.Registry, logger *log.Logger) error {
	tr := transport.NewTCPTransport(cfg.Server.Addr)
	eng := engine.NewRefEngine(cfg.Session.CompressedPointerSize)
	sess := debugger.NewSession(tr, eng, sources, cfg.Session, logger)

	acceptErr := make(chan error, 1)
	go func() { acceptErr <- sess.Accept() }()

	select {
	case <-ctx.Done():
		tr.Close()
		<-acceptErr
		return ctx.Err()
	case err := <-acceptErr:
		if err != nil {
			return err
		}
	}

	id := time.Now().UTC().Format(time.RFC3339Nano)
	registry.Put(id, diagui.SessionSnapshot{Connected: true, Mode: sess.Mode().String(), RemoteID: id})
	defer registry.Remove(id)

	runErr := make(chan error, 1)
	go func() { runErr <- sess.Run() }()

	select {
	case <-ctx.Done():
		sess.Close()
		<-runErr
		return ctx.Err()
	case err := <-runErr:
		sess.Close()
		return err
	}
}
