package sim

import (
	"fmt"
	"math"
)

const (
	regionMargin      = 60.0
	polygonVertices   = 36
	minPolygonRadius  = 25.0
	maxRejectAttempts = 200
)

// GenerateEnvironment deterministically builds a rectangular plane of
// width x height tiled by n non-overlapping Voronoi-style regions (spec
// §4.3). The same rng state + inputs always yield byte-identical
// regions.
func GenerateEnvironment(rng *RNG, width, height float64, n int) (*Environment, error) {
	if n <= 0 {
		return nil, configErrorf("regionCount", "must be positive, got %d", n)
	}

	centers := generateCenters(rng, width, height, n)

	planeBound := math.Hypot(width, height)
	regions := make([]Region, n)
	for i, c := range centers {
		poly := generatePolygon(rng, i, centers, width, height, planeBound)
		localFactor := clip(0.7, 1.3, 0.9+(rng.Next()-0.5)*0.6)
		regions[i] = Region{
			ID:          fmt.Sprintf("region-%03d", i),
			Center:      c,
			Polygon:     poly,
			LocalFactor: localFactor,
			Severity:    drawRegionSeverity(rng),
		}
	}

	return &Environment{Width: width, Height: height, Regions: regions}, nil
}

func generateCenters(rng *RNG, width, height float64, n int) []Point {
	minSpacing := math.Max(40, math.Min(width, height)/math.Sqrt(float64(n))) * 0.8

	centers := make([]Point, 0, n)
	for len(centers) < n {
		var candidate Point
		for attempt := 0; ; attempt++ {
			u, v := rng.Next(), rng.Next()
			candidate = Point{
				X: regionMargin + u*(width-2*regionMargin),
				Y: regionMargin + v*(height-2*regionMargin),
			}
			// After the attempt budget is exhausted, relax acceptance and
			// take the candidate regardless of spacing rather than
			// looping forever for dense region counts.
			if attempt >= maxRejectAttempts || farEnough(candidate, centers, minSpacing) {
				break
			}
		}
		centers = append(centers, candidate)
	}
	return centers
}

func farEnough(candidate Point, accepted []Point, minSpacing float64) bool {
	for _, a := range accepted {
		d := math.Hypot(candidate.X-a.X, candidate.Y-a.Y)
		if d <= minSpacing {
			return false
		}
	}
	return true
}

func generatePolygon(rng *RNG, i int, centers []Point, width, height, planeBound float64) []Point {
	poly := make([]Point, polygonVertices)
	for k := 0; k < polygonVertices; k++ {
		theta := 2 * math.Pi * float64(k) / float64(polygonVertices)
		dir := Point{X: math.Cos(theta), Y: math.Sin(theta)}

		r := boundsDistance(centers[i], dir, width, height)
		for j := range centers {
			if j == i {
				continue
			}
			if bd := bisectorDistance(centers[i], centers[j], dir); bd < r {
				r = bd
			}
		}
		r *= 0.78 + 0.18*rng.Next()
		r = clip(minPolygonRadius, planeBound, r)

		poly[k] = Point{X: centers[i].X + r*dir.X, Y: centers[i].Y + r*dir.Y}
	}
	return poly
}

// boundsDistance returns the distance from center to the plane boundary
// along direction dir (a unit vector), via the ray/AABB slab method.
func boundsDistance(center, dir Point, width, height float64) float64 {
	best := math.Inf(1)
	if dir.X > 0 {
		best = math.Min(best, (width-center.X)/dir.X)
	} else if dir.X < 0 {
		best = math.Min(best, (0-center.X)/dir.X)
	}
	if dir.Y > 0 {
		best = math.Min(best, (height-center.Y)/dir.Y)
	} else if dir.Y < 0 {
		best = math.Min(best, (0-center.Y)/dir.Y)
	}
	return best
}

// bisectorDistance is the classical Voronoi radius along dir from a
// toward the perpendicular bisector of segment a-b.
func bisectorDistance(a, b Point, dir Point) float64 {
	diff := b.sub(a)
	proj := diff.dot(dir)
	if proj <= 0 {
		return math.Inf(1)
	}
	diffSqLen := diff.dot(diff)
	return diffSqLen / (2 * proj)
}

func drawRegionSeverity(rng *RNG) RegionSeverity {
	u := rng.Next()
	switch {
	case u < 0.15:
		return RegionSeverityExtreme
	case u < 0.55:
		return RegionSeveritySevere
	default:
		return RegionSeverityModerate
	}
}

func clip(lo, hi, v float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
