package geo

import "math"

const (
	// earthRadiusKm is the mean Earth radius used by the haversine formula
	earthRadiusKm = 6371.0
	// averageSpeedKmh is the assumed runner travel speed
	averageSpeedKmh = 20.0
)

// Distance returns the great-circle distance in kilometers between two points.
func Distance(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// ETAMinutes estimates minutes from the runner position to the delivery point,
// ceiling-rounded at 20 km/h. The second result is false when either
// coordinate pair is missing: the ETA is indeterminate, never zero.
func ETAMinutes(runnerLat, runnerLng, deliveryLat, deliveryLng *float64) (int, bool) {
	if runnerLat == nil || runnerLng == nil || deliveryLat == nil || deliveryLng == nil {
		return 0, false
	}

	km := Distance(*runnerLat, *runnerLng, *deliveryLat, *deliveryLng)
	minutes := int(math.Ceil(km / averageSpeedKmh * 60))

	return minutes, true
}
