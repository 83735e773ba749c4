package httpapi

import (
	"net"

	"github.com/rs/zerolog"

	"github.com/vhs-capture/cxadc-capture-server/internal/capture"
)

// Server accepts connections on a single listener and services each
// with one goroutine, carrying forward the original's pthread_create +
// pthread_detach per-connection model (no keep-alive, HTTP/1.0 only).
type Server struct {
	manager *capture.Manager
	log     zerolog.Logger
}

func New(manager *capture.Manager, log zerolog.Logger) *Server {
	return &Server{manager: manager, log: log}
}

// Serve accepts connections from ln until it returns an error (which
// happens on Close), handling each on its own goroutine.
func (s *Server) Serve(ln net.Listener) error {
	for {
		conn, err := ln.Accept()
		if err != nil {
			return err
		}
		go s.handle(conn)
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()

	req, err := readRequest(conn)
	if err != nil {
		writeBadRequest(conn)
		return
	}
	if req.method != "GET" {
		writeNotAllowed(conn)
		return
	}
	s.route(conn, req)
}
