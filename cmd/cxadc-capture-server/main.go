// Command cxadc-capture-server serves VHS digitizer raw and linear
// audio captures over a bare HTTP/1.0 surface: `<program> version`
// prints the build version and exits; `<program> <port>` or
// `<program> unix:<path>` binds a listener and serves until killed.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vhs-capture/cxadc-capture-server/internal/capture"
	"github.com/vhs-capture/cxadc-capture-server/internal/clock"
	"github.com/vhs-capture/cxadc-capture-server/internal/httpapi"
	"github.com/vhs-capture/cxadc-capture-server/internal/linearsource"
	"github.com/vhs-capture/cxadc-capture-server/internal/logging"
	"github.com/vhs-capture/cxadc-capture-server/internal/version"
	"github.com/vhs-capture/cxadc-capture-server/x/strx"
)

const usage = "usage: cxadc-capture-server version | <port> | unix:<path>\n"

const clockResolution = 10 * time.Millisecond

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) != 1 {
		fmt.Fprint(os.Stderr, usage)
		return 1
	}

	if args[0] == "version" {
		fmt.Println(version.String())
		return 0
	}

	ln, err := httpapi.Listen(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n%v\n", usage, err)
		return 1
	}
	defer ln.Close()

	if err := linearsource.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "cannot initialize audio subsystem: %v\n", err)
		return 1
	}
	defer linearsource.Terminate()

	signal.Ignore(syscall.SIGPIPE)

	logOpts := logging.Options{
		Filename:   os.Getenv("CXADC_LOG_FILE"),
		MaxSizeStr: strx.Coalesce(os.Getenv("CXADC_LOG_MAX_SIZE"), "100MB"),
	}
	log, closeLog := logging.New(logOpts)
	defer closeLog()

	clk := clock.New(clockResolution)
	defer clk.Stop()

	manager := capture.NewManager(log, clk)
	server := httpapi.New(manager, log)

	log.Info().Str("listen", args[0]).Str("version", version.String()).Msg("listening")

	if err := server.Serve(ln); err != nil {
		log.Error().Err(err).Msg("listener closed")
		return 1
	}
	return 0
}
