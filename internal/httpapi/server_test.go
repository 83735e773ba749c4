package httpapi

import (
	"io"
	"net"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vhs-capture/cxadc-capture-server/internal/capture"
)

func newTestServer() *Server {
	return New(capture.NewManager(zerolog.Nop(), nil), zerolog.Nop())
}

func roundTrip(t *testing.T, s *Server, requestLine string) string {
	t.Helper()
	client, server := net.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.handle(server)
	}()

	_, err := client.Write([]byte(requestLine + "\r\n\r\n"))
	require.NoError(t, err)

	out, err := io.ReadAll(client)
	require.NoError(t, err)
	<-done
	return string(out)
}

func TestHandleRootServesHelloWorld(t *testing.T) {
	out := roundTrip(t, newTestServer(), "GET / HTTP/1.0")
	assert.Contains(t, out, "HTTP/1.0 200 OK")
	assert.Contains(t, out, "Content-Type: text/html")
	assert.Contains(t, out, "Hello World!\n")
}

func TestHandleVersionServesVersionString(t *testing.T) {
	out := roundTrip(t, newTestServer(), "GET /version HTTP/1.0")
	assert.Contains(t, out, "Content-Type: text/plain")
	assert.Contains(t, out, "cxadc-capture-server")
}

func TestHandleStatsWhenIdle(t *testing.T) {
	out := roundTrip(t, newTestServer(), "GET /stats HTTP/1.0")
	assert.Contains(t, out, "Content-Type: text/json")
	assert.Contains(t, out, `"state":"Idle"`)
}

func TestHandleUnknownPathReturns404(t *testing.T) {
	out := roundTrip(t, newTestServer(), "GET /nope HTTP/1.0")
	assert.Contains(t, out, "404 Not Found")
}

func TestHandleNonGetMethodReturns405(t *testing.T) {
	out := roundTrip(t, newTestServer(), "POST / HTTP/1.0")
	assert.Contains(t, out, "405 Method Not Allowed")
}

func TestHandleMalformedRequestReturns400(t *testing.T) {
	out := roundTrip(t, newTestServer(), "garbage")
	assert.Contains(t, out, "400 Bad Request")
}

func TestHandleCxadcBadIndexClosesSilently(t *testing.T) {
	out := roundTrip(t, newTestServer(), "GET /cxadc?9999 HTTP/1.0")
	assert.Empty(t, out)
}
