package plot

// Point is a position in canvas pixel space
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Polyline is an open, ordered sequence of points
type Polyline []Point

// Canvas is the drawable area handed to a transform for one frame
type Canvas struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Empty reports whether the canvas has no drawable area
func (c Canvas) Empty() bool {
	return c.Width <= 0 || c.Height <= 0
}

// Bounds returns the bounding box of the polyline. ok is false when the
// polyline has no points.
func (p Polyline) Bounds() (min, max Point, ok bool) {
	if len(p) == 0 {
		return Point{}, Point{}, false
	}
	min, max = p[0], p[0]
	for _, pt := range p[1:] {
		min.X = minf(min.X, pt.X)
		min.Y = minf(min.Y, pt.Y)
		max.X = maxf(max.X, pt.X)
		max.Y = maxf(max.Y, pt.Y)
	}
	return min, max, true
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
