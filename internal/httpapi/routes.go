package httpapi

import (
	"net"
	"strconv"

	"github.com/vhs-capture/cxadc-capture-server/internal/version"
)

const maxRawSourceID = 256

func (s *Server) route(conn net.Conn, req request) {
	switch req.path {
	case "/":
		writeText(conn, "text/html", "Hello World!\n")
	case "/version":
		writeText(conn, "text/plain", version.String()+"\n")
	case "/start":
		writeJSON(conn, s.manager.Start(req.tokens))
	case "/stop":
		writeJSON(conn, s.manager.Stop())
	case "/stats":
		writeJSON(conn, s.manager.Stats())
	case "/cxadc":
		s.serveRaw(conn, req.tokens)
	case "/linear":
		s.serveLinear(conn)
	default:
		writeNotFound(conn)
	}
}

// serveRaw expects exactly one positional token: an unsigned integer
// below maxRawSourceID, naming the N-th raw source declared in the
// active /start request's order (original's file_cxadc: argc != 1 or
// id >= 256 just drops the connection silently).
func (s *Server) serveRaw(conn net.Conn, tokens []string) {
	if len(tokens) != 1 {
		return
	}
	id, err := strconv.Atoi(tokens[0])
	if err != nil || id < 0 || id >= maxRawSourceID {
		return
	}

	writeStreamHeader(conn)
	if err := s.manager.AttachRaw(id, conn); err != nil {
		s.log.Debug().Err(err).Int("cxadc", id).Msg("raw attach ended")
	}
}

func (s *Server) serveLinear(conn net.Conn) {
	writeStreamHeader(conn)
	if err := s.manager.AttachLinear(conn); err != nil {
		s.log.Debug().Err(err).Msg("linear attach ended")
	}
}
