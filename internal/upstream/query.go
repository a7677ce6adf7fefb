package upstream

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/alfreddev/weatherproxy/internal/fingerprint"
)

// buildQuery assembles the upstream query string. Only the selected
// credential's secret is appended by the proxy; every other parameter
// passes through from the client's request.
func buildQuery(secret string, p fingerprint.Params) url.Values {
	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(p.Lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(p.Lon, 'f', -1, 64))
	q.Set("appid", secret)
	if len(p.Exclude) > 0 {
		q.Set("exclude", strings.Join(p.Exclude, ","))
	}
	if p.Units != "" {
		q.Set("units", p.Units)
	}
	if p.Lang != "" {
		q.Set("lang", p.Lang)
	}
	return q
}
