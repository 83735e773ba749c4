package httpapi

import (
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeTCPPort(t *testing.T) int {
	t.Helper()
	probe, err := net.Listen("tcp", ":0")
	require.NoError(t, err)
	port := probe.Addr().(*net.TCPAddr).Port
	require.NoError(t, probe.Close())
	return port
}

func TestListenTCPPort(t *testing.T) {
	ln, err := Listen(strconv.Itoa(freeTCPPort(t)))
	require.NoError(t, err)
	defer ln.Close()
	assert.Contains(t, ln.Addr().String(), ":")
}

func TestListenRejectsZeroPort(t *testing.T) {
	_, err := Listen("0")
	assert.Error(t, err)
}

func TestListenRejectsOutOfRangePort(t *testing.T) {
	_, err := Listen("70000")
	assert.Error(t, err)
}

func TestListenRejectsNonNumericSpec(t *testing.T) {
	_, err := Listen("notaport")
	assert.Error(t, err)
}

func TestListenUnixSocket(t *testing.T) {
	path := t.TempDir() + "/cxadc.sock"
	ln, err := Listen("unix:" + path)
	require.NoError(t, err)
	defer ln.Close()
	assert.Equal(t, path, ln.Addr().String())
}

func TestListenRejectsOverlongUnixPath(t *testing.T) {
	_, err := Listen("unix:" + strings.Repeat("a", 200))
	assert.Error(t, err)
}
