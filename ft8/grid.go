package ft8

import (
	"fmt"
	"math"
	"strings"
)

/*
 * Maidenhead grid locator conversion and great-circle distance, used to
 * annotate a decoded standard message's grid square with the range and
 * bearing to the receiver's own location. Ported from ka9q_ubersdr's
 * maidenhead.go, trimmed of its UI-only jitter helper.
 */

// MaidenheadToLatLon converts a Maidenhead locator to latitude and longitude.
// Supports 4, 6, or 8 character precision and returns the center of the
// corresponding grid square.
func MaidenheadToLatLon(locator string) (lat, lon float64, err error) {
	locator = strings.ToUpper(locator)

	if len(locator) != 4 && len(locator) != 6 && len(locator) != 8 {
		return 0, 0, fmt.Errorf("ft8: invalid maidenhead locator length %d (must be 4, 6, or 8)", len(locator))
	}

	if locator[0] < 'A' || locator[0] > 'R' || locator[1] < 'A' || locator[1] > 'R' {
		return 0, 0, fmt.Errorf("ft8: invalid field characters (must be A-R)")
	}
	if locator[2] < '0' || locator[2] > '9' || locator[3] < '0' || locator[3] > '9' {
		return 0, 0, fmt.Errorf("ft8: invalid square characters (must be 0-9)")
	}
	if len(locator) >= 6 {
		if locator[4] < 'A' || locator[4] > 'X' || locator[5] < 'A' || locator[5] > 'X' {
			return 0, 0, fmt.Errorf("ft8: invalid subsquare characters (must be A-X)")
		}
	}
	if len(locator) == 8 {
		if locator[6] < '0' || locator[6] > '9' || locator[7] < '0' || locator[7] > '9' {
			return 0, 0, fmt.Errorf("ft8: invalid extended square characters (must be 0-9)")
		}
	}

	lon = float64(locator[0]-'A') * 20.0
	lat = float64(locator[1]-'A') * 10.0
	lon += float64(locator[2]-'0') * 2.0
	lat += float64(locator[3]-'0') * 1.0

	if len(locator) >= 6 {
		lon += float64(locator[4]-'A') * (2.0 / 24.0)
		lat += float64(locator[5]-'A') * (1.0 / 24.0)
	}
	if len(locator) == 8 {
		lon += float64(locator[6]-'0') * (2.0 / 240.0)
		lat += float64(locator[7]-'0') * (1.0 / 240.0)
	}

	switch len(locator) {
	case 4:
		lon += 1.0
		lat += 0.5
	case 6:
		lon += 2.0 / 48.0
		lat += 1.0 / 48.0
	case 8:
		lon += 2.0 / 480.0
		lat += 1.0 / 480.0
	}

	lon -= 180.0
	lat -= 90.0

	return lat, lon, nil
}

// IsValidMaidenheadLocator reports whether locator parses as a grid square.
func IsValidMaidenheadLocator(locator string) bool {
	_, _, err := MaidenheadToLatLon(locator)
	return err == nil
}

// CalculateDistanceAndBearing computes the great-circle distance (km) and
// initial bearing (degrees, 0-360) between two points using the Haversine
// formula.
func CalculateDistanceAndBearing(lat1, lon1, lat2, lon2 float64) (distanceKm, bearingDeg float64) {
	const earthRadiusKm = 6371.0

	lat1Rad := lat1 * math.Pi / 180.0
	lon1Rad := lon1 * math.Pi / 180.0
	lat2Rad := lat2 * math.Pi / 180.0
	lon2Rad := lon2 * math.Pi / 180.0

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	distanceKm = earthRadiusKm * c

	y := math.Sin(dLon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) - math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dLon)
	bearingDeg = math.Atan2(y, x) * 180.0 / math.Pi
	if bearingDeg < 0 {
		bearingDeg += 360.0
	}

	return distanceKm, bearingDeg
}

// DistanceAndBearingFromLocators computes range and bearing from one
// Maidenhead locator to another.
func DistanceAndBearingFromLocators(from, to string) (distanceKm, bearingDeg float64, err error) {
	lat1, lon1, err := MaidenheadToLatLon(from)
	if err != nil {
		return 0, 0, fmt.Errorf("ft8: origin locator: %w", err)
	}
	lat2, lon2, err := MaidenheadToLatLon(to)
	if err != nil {
		return 0, 0, fmt.Errorf("ft8: destination locator: %w", err)
	}
	distanceKm, bearingDeg = CalculateDistanceAndBearing(lat1, lon1, lat2, lon2)
	return distanceKm, bearingDeg, nil
}
