package httpapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRequestLineSplitsMethodPathQuery(t *testing.T) {
	req, err := parseRequestLine("GET /start?cxadc0&lname=hw%3A1 HTTP/1.0")
	require.NoError(t, err)
	assert.Equal(t, "GET", req.method)
	assert.Equal(t, "/start", req.path)
	assert.Equal(t, []string{"cxadc0", "lname=hw%3A1"}, req.tokens)
}

func TestParseRequestLineNoQuery(t *testing.T) {
	req, err := parseRequestLine("GET / HTTP/1.0")
	require.NoError(t, err)
	assert.Equal(t, "/", req.path)
	assert.Nil(t, req.tokens)
}

func TestParseRequestLineRejectsWrongFieldCount(t *testing.T) {
	_, err := parseRequestLine("GET /")
	assert.ErrorIs(t, err, ErrMalformedRequest)
}

func TestParseRequestLineRejectsMissingProto(t *testing.T) {
	_, err := parseRequestLine("GET /start nope")
	assert.ErrorIs(t, err, ErrMalformedRequest)
}
