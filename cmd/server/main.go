// Command server listens for TCP connections speaking Ignite's
// length-prefixed wire protocol and dispatches each request against an
// Ignite instance rooted at a data directory.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ignitedb/ignite/internal/frame"
	"github.com/ignitedb/ignite/internal/protocol"
	"github.com/ignitedb/ignite/pkg/ignite"
	"github.com/ignitedb/ignite/pkg/logger"
	"github.com/ignitedb/ignite/pkg/options"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	port := flag.IntP("port", "p", 9000, "port to listen on")
	dataDir := flag.StringP("db", "d", "./db", "database directory")
	workers := flag.IntP("workers", "w", 8, "number of worker goroutines dispatching connections")
	compactInterval := flag.Duration("compact-interval", 5*time.Hour, "background merge interval, 0 disables")
	quiet := flag.BoolP("quiet", "q", false, "disable development-mode colorized logging")
	flag.Parse()

	log := logger.NewDevelopment("server")
	if *quiet {
		log = logger.New("server")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := ignite.NewInstance(ctx, "server",
		options.WithDataDir(*dataDir),
		options.WithCompactInterval(*compactInterval),
	)
	if err != nil {
		log.Fatalw("failed to open database", "error", err, "dataDir", *dataDir)
	}
	defer db.Close(ctx)

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", *port))
	if err != nil {
		log.Fatalw("failed to listen", "error", err, "port", *port)
	}
	log.Infow("listening", "port", *port, "dataDir", *dataDir, "workers", *workers)

	dispatcher := protocol.New(db)
	conns := make(chan net.Conn)

	for n := 0; n < *workers; n++ {
		go worker(ctx, dispatcher, conns, log)
	}

	go acceptLoop(listener, conns, log)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	listener.Close()
	close(conns)
}

func acceptLoop(listener net.Listener, conns chan<- net.Conn, log *zap.SugaredLogger) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Infow("accept loop stopped", "error", err)
			return
		}
		conns <- conn
	}
}

// worker pulls accepted connections off conns and serves requests on them
// one at a time, bounding the number of concurrently-served connections to
// the configured worker pool size rather than spawning a goroutine per
// connection.
func worker(ctx context.Context, dispatcher *protocol.Dispatcher, conns <-chan net.Conn, log *zap.SugaredLogger) {
	for conn := range conns {
		serve(ctx, dispatcher, conn, log)
	}
}

func serve(ctx context.Context, dispatcher *protocol.Dispatcher, netConn net.Conn, log *zap.SugaredLogger) {
	conn := frame.NewConn(netConn)
	defer conn.Close()

	for {
		for conn.Ready() {
			request, err := conn.Request()
			if err != nil {
				log.Errorw("failed to extract request", "error", err)
				return
			}

			reply := dispatcher.Handle(ctx, string(request))
			if err := conn.Respond([]byte(reply)); err != nil {
				log.Infow("failed to send reply, closing connection", "error", err)
				return
			}
		}

		if _, err := conn.Fill(); err != nil {
			return
		}
	}
}
