package mapping

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

const deg = math.Pi / 180

// GalacticToCartesian converts galactic longitude and latitude (degrees) and
// a distance into a position with the galactic centre direction on +X and
// the north galactic pole on +Z.
func GalacticToCartesian(lon, lat, dist float64) r3.Vec {
	phi := lon * deg
	theta := (90 - lat) * deg
	sinTheta := math.Sin(theta)
	return r3.Vec{
		X: dist * math.Cos(phi) * sinTheta,
		Y: dist * math.Sin(phi) * sinTheta,
		Z: dist * math.Cos(theta),
	}
}

// CartesianToGalactic is the inverse of GalacticToCartesian. Longitude is
// returned in [0, 360). The origin maps to (0, 0, 0).
func CartesianToGalactic(p r3.Vec) (lon, lat, dist float64) {
	dist = r3.Norm(p)
	if dist == 0 {
		return 0, 0, 0
	}
	theta := math.Acos(clamp(p.Z/dist, -1, 1))
	lat = 90 - theta/deg
	lon = math.Atan2(p.Y, p.X) / deg
	if lon < 0 {
		lon += 360
	}
	if lon >= 360 {
		lon -= 360
	}
	return lon, lat, dist
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
