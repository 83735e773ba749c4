package httpapi

import (
	"net"
	"strconv"
	"strings"

	"github.com/vhs-capture/cxadc-capture-server/internal/captureerr"
)

const maxUnixPathLen = 107

// Listen binds spec, either a decimal TCP port (0 < port <= 65535) or
// unix:<path> with a 1-107 byte path, the two address forms the CLI
// accepts per the original's listener setup.
func Listen(spec string) (net.Listener, error) {
	if path, ok := strings.CutPrefix(spec, "unix:"); ok {
		if len(path) < 1 || len(path) > maxUnixPathLen {
			return nil, captureerr.Wrap("httpapi.Listen", captureerr.ConfigError, net.InvalidAddrError("unix path length out of range"))
		}
		ln, err := net.Listen("unix", path)
		if err != nil {
			return nil, captureerr.Wrap("httpapi.Listen", captureerr.ConfigError, err)
		}
		return ln, nil
	}

	port, err := strconv.Atoi(spec)
	if err != nil || port <= 0 || port > 65535 {
		return nil, captureerr.Wrap("httpapi.Listen", captureerr.ConfigError, net.InvalidAddrError("port out of range"))
	}
	ln, err := net.Listen("tcp", ":"+spec)
	if err != nil {
		return nil, captureerr.Wrap("httpapi.Listen", captureerr.ConfigError, err)
	}
	return ln, nil
}
