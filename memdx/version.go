package memdx

import (
	"strings"

	"golang.org/x/mod/semver"
)

// ParseVersion extracts the server version from the value of a successful
// Version response and returns it in canonical semver form (for example
// "1.6.21" becomes "v1.6.21").
func ParseVersion(resp *Response) (string, error) {
	if resp.OpCode != OpCodeVersion {
		return "", protocolError{"not a version response: " + resp.OpCode.Name()}
	}

	if !resp.IsOk() {
		return "", protocolError{"version request failed with status " + resp.Status.String()}
	}

	vers := strings.TrimSpace(string(resp.Value))
	if !strings.HasPrefix(vers, "v") {
		vers = "v" + vers
	}

	if !semver.IsValid(vers) {
		return "", protocolError{"invalid server version: " + string(resp.Value)}
	}

	return semver.Canonical(vers), nil
}

// VersionAtLeast reports whether the canonical version vers is at or above
// minVers.  Both must be valid semver strings with a leading "v".
func VersionAtLeast(vers string, minVers string) bool {
	return semver.Compare(vers, minVers) >= 0
}
