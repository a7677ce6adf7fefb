// Package fingerprint derives the cache/coalescer key for a weather
// request: a deterministic hash of its client-visible parameters, with
// the credential and appid excluded since they do not affect the
// upstream response.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Params is the set of client-supplied parameters that determine the
// upstream response. Lat/Lon are required; the rest are optional.
type Params struct {
	Lat     float64
	Lon     float64
	Exclude []string
	Units   string
	Lang    string
}

// Of returns a deterministic fingerprint for p. Lat/Lon are rounded to
// 4 decimal places (~11m resolution) so that requests indistinguishable
// to the upstream API share a cache entry; Exclude is lowercased and
// sorted so that parameter order and case do not fragment the cache.
func Of(p Params) string {
	excl := make([]string, len(p.Exclude))
	for i, e := range p.Exclude {
		excl[i] = strings.ToLower(strings.TrimSpace(e))
	}
	sort.Strings(excl)

	canonical := fmt.Sprintf("%.4f|%.4f|%s|%s|%s",
		p.Lat, p.Lon,
		strings.Join(excl, ","),
		strings.ToLower(p.Units),
		strings.ToLower(p.Lang),
	)

	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
