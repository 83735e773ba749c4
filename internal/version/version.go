// Package version holds the server's build identity, surfaced by both
// the CLI (`<program> version`) and the HTTP `/version` route — a
// supplemented feature giving operational parity to the original's
// CLI-only version report.
package version

// Version is overridable at link time via -ldflags
// "-X github.com/vhs-capture/cxadc-capture-server/internal/version.Version=...".
var Version = "dev"

// String returns the text both surfaces print.
func String() string { return "cxadc-capture-server " + Version }
