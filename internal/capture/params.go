package capture

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/vhs-capture/cxadc-capture-server/x/mathx"
)

// StartParams is the parsed form of the /start query tokens (spec.md
// §4.4). Tokens are whatever the HTTP layer already split on '&'; each
// is interpreted here exactly as the original's sscanf-style matching
// does: a bare "cxadcN" prefix match, or a "key=value" pair.
type StartParams struct {
	RawDeviceNums  []int // in the order given, duplicates allowed, capped at ring.MaxSources
	LinearName     string
	LinearFormat   string
	LinearRate     int // 0 = unset
	LinearChannels int // 0 = unset
}

const (
	linearRateMin = 22050
	linearRateMax = 384000
	linearChMin   = 1
	linearChMax   = 16
)

// ParseStartParams recognises the keys from spec.md §4.4's table.
// Unrecognised tokens are ignored, matching the original's sscanf loop
// (a token that matches neither pattern is simply skipped).
func ParseStartParams(tokens []string) StartParams {
	var p StartParams
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if n, ok := parseCxadcToken(tok); ok {
			if len(p.RawDeviceNums) < 256 {
				p.RawDeviceNums = append(p.RawDeviceNums, n)
			}
			continue
		}
		key, value, hasEq := strings.Cut(tok, "=")
		if !hasEq {
			continue
		}
		switch key {
		case "lname":
			if decoded, err := url.QueryUnescape(value); err == nil {
				p.LinearName = decoded
			}
		case "lformat":
			p.LinearFormat = value
		case "lrate":
			if v, err := strconv.Atoi(value); err == nil && mathx.Between(v, linearRateMin, linearRateMax) {
				p.LinearRate = v
			}
		case "lchannels":
			if v, err := strconv.Atoi(value); err == nil && mathx.Between(v, linearChMin, linearChMax) {
				p.LinearChannels = v
			}
		}
	}
	return p
}

// parseCxadcToken matches the leading-digit-run sscanf("cxadc%u", ...)
// semantics: "cxadc0", "cxadc12trailing-junk" both match with the
// leading run of digits taken as N; "cxadc" alone or "cxadcfoo" do not.
func parseCxadcToken(tok string) (int, bool) {
	const prefix = "cxadc"
	if !strings.HasPrefix(tok, prefix) {
		return 0, false
	}
	rest := tok[len(prefix):]
	end := 0
	for end < len(rest) && rest[end] >= '0' && rest[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(rest[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
