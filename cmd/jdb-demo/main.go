// jdb-demo walks through a full debugger session in-process, using the
// fake transport instead of a real socket, and optionally watches a
// scripts directory with fsnotify, starting a client-source wait named
// after each new or changed file as it appears.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"

	"jdb/pkg/config"
	"jdb/pkg/dbgproto"
	"jdb/pkg/debugger"
	"jdb/pkg/engine"
	"jdb/pkg/sourcestore"
	"jdb/pkg/transport"
	"jdb/pkg/websocket"
)

func main() {
	scriptsDir := flag.String("scripts", "", "directory to watch for new .js files to feed the client-source loop")
	flag.Parse()

	fmt.Println("jdb debugger session walkthrough")
	fmt.Println("=================================")

	cfg := config.Default().Session
	tr := transport.NewFakeTransport(transport.HeaderSizes{SendHeaderSize: 2, RecvHeaderSize: 6, MaxMessageSize: 125})
	eng := engine.NewRefEngine(cfg.CompressedPointerSize)
	sources := sourcestore.New()
	logger := log.New(os.Stdout, "jdb-demo: ", 0)

	sess := debugger.NewSession(tr, eng, sources, cfg, logger)

	fmt.Println("\n1. Driving the HTTP upgrade handshake...")
	driveHandshake(tr)
	if err := sess.Accept(); err != nil {
		log.Fatalf("accept: %v", err)
	}
	fmt.Println("   handshake complete, CONFIGURATION sent")

	fmt.Println("\n2. Loading a starter program...")
	const program = "func main\n  let x = 1\n  call helper\nend\nfunc helper\n  let y = 2\nend\n"
	if err := sess.LoadSource("main.js", program); err != nil {
		log.Fatalf("load source: %v", err)
	}
	fmt.Println("   parse events streamed")

	if *scriptsDir != "" {
		fmt.Printf("\n3. Watching %s for client-pushed sources...\n", *scriptsDir)
		watchScripts(*scriptsDir, sess)
	}

	fmt.Println("\n4. Resuming past the connect-time breakpoint...")
	feedClientMessage(tr, dbgproto.IngressContinue, nil)

	fmt.Println("\n5. Running to completion...")
	if err := sess.Run(); err != nil {
		log.Printf("   run ended: %v", err)
	} else {
		fmt.Println("   program finished")
	}
	sess.Close()
}

// driveHandshake feeds a minimal well-formed upgrade request into the
// fake transport's inbound side and drains the 101 response, imitating
// what a real client socket would exchange before the protocol proper
// starts.
func driveHandshake(tr *transport.FakeTransport) {
	req := "GET /jerry-debugger HTTP/1.1\r\n" +
		"Host: localhost\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Key: dGhlIHNhbXBsZSBub25jZQ==\r\n" +
		"Sec-WebSocket-Version: 13\r\n\r\n"
	tr.FeedClientFrame([]byte(req))
}

// feedClientMessage wraps an ingress message as a masked client frame,
// the way a real browser-side WebSocket client would send it, and queues
// it on tr's inbound side.
func feedClientMessage(tr *transport.FakeTransport, t dbgproto.Ingress, body []byte) {
	payload := append([]byte{byte(t)}, body...)
	frame, err := websocket.NewBinaryFrame(payload)
	if err != nil {
		log.Fatalf("feedClientMessage: %v", err)
	}
	wire, err := websocket.EncodeMasked(frame, [4]byte{0x12, 0x34, 0x56, 0x78})
	if err != nil {
		log.Fatalf("feedClientMessage: %v", err)
	}
	tr.FeedClientFrame(wire)
}

// watchScripts starts a client-source wait (WaitForClientSource) for each
// readable file created or written under dir, using the file's path as
// the resource name. The file's contents are not sent anywhere: the
// source text handed to the callback is whatever the client delivers in
// CLIENT_SOURCE messages.
func watchScripts(dir string, sess *debugger.Session) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("   fsnotify: %v", err)
		return
	}
	if err := watcher.Add(dir); err != nil {
		log.Printf("   fsnotify: watch %s: %v", dir, err)
		return
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
					continue
				}
				if _, err := os.ReadFile(ev.Name); err != nil {
					continue
				}
				sess.WaitForClientSource(ev.Name, func(resourceName, source string) debugger.ClientSourceStatus {
					fmt.Printf("   client-source: %s (%d bytes)\n", resourceName, len(source))
					return debugger.ClientSourceReceived
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("   fsnotify error: %v", err)
			case <-time.After(5 * time.Minute):
				return
			}
		}
	}()
}
