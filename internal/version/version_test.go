package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStringIncludesProgramNameAndVersion(t *testing.T) {
	prev := Version
	Version = "1.2.3"
	defer func() { Version = prev }()

	assert.True(t, strings.HasSuffix(String(), "1.2.3"))
	assert.True(t, strings.HasPrefix(String(), "cxadc-capture-server"))
}
