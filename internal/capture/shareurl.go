package capture

import (
	"net/url"
	"strconv"
	"strings"

	"wplacesnap/internal/slippy"
)

// ParseShareURL extracts the lat/lng pair from a wplace share link.
// Both plain links (https://wplace.live/?lat=..&lng=..&zoom=..) and
// wrapper links that carry the share link in a place= parameter are
// accepted. The zoom parameter is ignored; captures always use TileZoom.
func ParseShareURL(raw string) (slippy.Point, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return slippy.Point{}, &InvalidURLError{URL: raw, Reason: err.Error()}
	}

	q := u.Query()
	if q.Get("lat") == "" || q.Get("lng") == "" {
		// Wrapper links embed the real share link after place=.
		if frag, ok := cutPlace(raw); ok {
			inner, err := url.Parse(frag)
			if err != nil {
				return slippy.Point{}, &InvalidURLError{URL: raw, Reason: "unparseable place= link"}
			}
			q = inner.Query()
		}
	}

	latStr, lngStr := q.Get("lat"), q.Get("lng")
	if latStr == "" || lngStr == "" {
		return slippy.Point{}, &InvalidURLError{URL: raw, Reason: "missing lat/lng query parameters"}
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return slippy.Point{}, &InvalidURLError{URL: raw, Reason: "lat is not a number"}
	}
	lng, err := strconv.ParseFloat(lngStr, 64)
	if err != nil {
		return slippy.Point{}, &InvalidURLError{URL: raw, Reason: "lng is not a number"}
	}

	p := slippy.Point{Lat: lat, Lng: lng}
	if !p.Valid() {
		return slippy.Point{}, &InvalidURLError{URL: raw, Reason: "lat/lng out of geographic range"}
	}
	return p, nil
}

func cutPlace(raw string) (string, bool) {
	_, after, found := strings.Cut(raw, "place=")
	if !found {
		return "", false
	}
	if dec, err := url.QueryUnescape(after); err == nil {
		return dec, true
	}
	return after, true
}
