// Package version centralizes the versioning for the logical components of
// the agent gateway.
//
// Component version strings are folded into cache keys so that stale cached
// entries are invalidated automatically whenever a piece of underlying logic
// changes. For example, if the weather summary format changes and the Tools
// version is bumped from "v1.0" to "v1.1", every key minted under the old
// version stops matching and fresh responses are fetched.
package version

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComponentVersions holds the version strings for the parts of the gateway
// whose output ends up in the response cache. Bump a version here before
// deploying a change to that component.
var ComponentVersions = struct {
	// Tools should be updated whenever the logic or output format of any
	// tool adapter changes (places_tool.go, weather_tool.go, geoip_tool.go).
	Tools string

	// Instructions should be updated whenever the agent instructions or the
	// action-group descriptions sent to the remote agent change.
	Instructions string
}{
	Tools:        "v1.0",
	Instructions: "v1.0",
}

// CacheKey creates a consistent, version-aware key for caching downstream
// responses. The raw key (typically a full request URL) is hashed so keys
// stay fixed-length regardless of query-string size.
//
// Example output: "fetchcache:a1b2c3d4...:tv1.0_iv1.0"
func CacheKey(prefix, raw string) string {
	hasher := sha256.New()
	hasher.Write([]byte(raw))
	digest := hex.EncodeToString(hasher.Sum(nil))

	versionString := fmt.Sprintf("tv%s_iv%s",
		ComponentVersions.Tools,
		ComponentVersions.Instructions,
	)

	return fmt.Sprintf("%s:%s:%s", prefix, digest, versionString)
}
