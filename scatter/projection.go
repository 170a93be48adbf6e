package scatter

import (
	"math"

	"github.com/tsawler/caption-scatter/embedding"
)

// Default camera for the 3D view, matching the conventional default
// orientation of 3D scatter figures.
const (
	defaultAzimuthDeg   = -60
	defaultElevationDeg = 30
)

// viewPoint is a 3D point projected onto the 2D view plane
type viewPoint struct {
	X float64
	Y float64
}

// projectView maps a 3D point onto the 2D view plane of an orthographic
// camera at the given azimuth and elevation (degrees). The screen-right
// and screen-up basis vectors are derived from the view direction, so
// points are deterministic functions of their coordinates.
func projectView(p embedding.Point3, azimuthDeg, elevationDeg float64) viewPoint {
	az := azimuthDeg * math.Pi / 180
	el := elevationDeg * math.Pi / 180

	sinAz, cosAz := math.Sincos(az)
	sinEl, cosEl := math.Sincos(el)

	// right = (-sin az, cos az, 0), up = (-sin el cos az, -sin el sin az, cos el)
	sx := -p.X*sinAz + p.Y*cosAz
	sy := -p.X*sinEl*cosAz - p.Y*sinEl*sinAz + p.Z*cosEl

	return viewPoint{X: sx, Y: sy}
}
