package sim

// Point is a 2D coordinate on the simulated plane.
type Point struct {
	X, Y float64
}

func (p Point) sub(o Point) Point { return Point{p.X - o.X, p.Y - o.Y} }
func (p Point) dot(o Point) float64 { return p.X*o.X + p.Y*o.Y }

// RegionSeverity is the categorical severity class assigned to a region
// at generation time (distinct from an individual Alert's Severity).
type RegionSeverity string

const (
	RegionSeverityModerate RegionSeverity = "Moderate"
	RegionSeveritySevere   RegionSeverity = "Severe"
	RegionSeverityExtreme  RegionSeverity = "Extreme"
)

// Region is a Voronoi-like cell of the plane, immutable after generation.
type Region struct {
	ID          string
	Center      Point
	Polygon     []Point // 36-vertex closed ring, interior non-empty
	LocalFactor float64 // in [0.7, 1.3]
	Severity    RegionSeverity
}

// Environment is the rectangular plane plus its tiling of regions.
type Environment struct {
	Width   float64
	Height  float64
	Regions []Region
}
