// Package buildinfo carries this build's version and the protocol
// compatibility range it supports. The wire format itself never
// negotiates on version — the CONFIGURATION message's version field is a
// fixed byte per spec §6 — this package only governs what gets logged.
package buildinfo

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version is this build's semantic version, normally overridden at link
// time via -ldflags.
var Version = "0.0.0-dev"

// ProtocolVersion is the fixed version byte the CONFIGURATION message
// carries, per spec §6.
const ProtocolVersion = 2

// SupportedRange is the semver constraint this build's protocol
// implementation satisfies; CheckCompatible is how a client build string
// gets validated against it at handshake time for logging purposes only.
const SupportedRange = ">= 0.1.0, < 1.0.0"

// CheckCompatible reports whether clientVersion satisfies SupportedRange.
// A parse failure on either side is reported as incompatible rather than
// panicking, since this only affects a diagnostic log line, never wire
// behavior.
func CheckCompatible(clientVersion string) (bool, error) {
	constraint, err := semver.NewConstraint(SupportedRange)
	if err != nil {
		return false, fmt.Errorf("buildinfo: invalid constraint %q: %w", SupportedRange, err)
	}
	v, err := semver.NewVersion(clientVersion)
	if err != nil {
		return false, fmt.Errorf("buildinfo: invalid client version %q: %w", clientVersion, err)
	}
	return constraint.Check(v), nil
}

// String renders a one-line identification string for startup logs.
func String() string {
	return fmt.Sprintf("jdb %s (protocol v%d)", Version, ProtocolVersion)
}
