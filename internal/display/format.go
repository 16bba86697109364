// Package display renders station values as plain text for the CLI and API.
package display

import (
	"fmt"
	"strings"

	"github.com/shralptide/tidestations/internal/models"
)

const unknown = "unknown"

// FormatCoordinates renders a point as "42.3601°N, 71.0589°W".
func FormatCoordinates(lat, lon models.OptionalFloat) string {
	latV, latOK := lat.Get()
	lonV, lonOK := lon.Get()
	if !latOK || !lonOK {
		return unknown
	}

	ns := "N"
	if latV < 0 {
		ns = "S"
		latV = -latV
	}
	ew := "E"
	if lonV < 0 {
		ew = "W"
		lonV = -lonV
	}
	return fmt.Sprintf("%.4f°%s, %.4f°%s", latV, ns, lonV, ew)
}

// FormatDistance renders a distance in kilometers.
func FormatDistance(d models.OptionalFloat) string {
	km, ok := d.Get()
	if !ok {
		return unknown
	}
	if km < 1 {
		return fmt.Sprintf("%.0f m", km*1000)
	}
	return fmt.Sprintf("%.1f km", km)
}

// Summary is a one-line description of a station.
func Summary(r models.StationRecord) string {
	var b strings.Builder
	b.WriteString(r.Name())
	if r.State() != "" {
		fmt.Fprintf(&b, ", %s", r.State())
	}
	fmt.Fprintf(&b, " [%s] (%s)", FormatCoordinates(r.Latitude(), r.Longitude()), labelOrUnknown(r.Units()))
	if r.Distance().IsPresent() {
		fmt.Fprintf(&b, " %s away", FormatDistance(r.Distance()))
	}
	return b.String()
}

func labelOrUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}
