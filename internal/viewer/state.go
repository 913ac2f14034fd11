package viewer

import (
	"fmt"
	"math"
)

const (
	MinScale  = 1.0
	MaxScale  = 5.0
	WheelStep = 1.1
)

// Phase is the zoom state of the displayed element.
type Phase string

const (
	PhaseRest   Phase = "rest"
	PhaseZoomed Phase = "zoomed"
)

// Size is a width/height pair in CSS pixels.
type Size struct {
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Point is a pointer position in CSS pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Transform is the zoom/pan applied to the displayed element.
type Transform struct {
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
}

// Identity is the REST transform.
var Identity = Transform{Scale: 1}

// CSS renders t as a CSS transform value.
func (t Transform) CSS() string {
	return fmt.Sprintf("translate(%gpx, %gpx) scale(%g)", t.TranslateX, t.TranslateY, t.Scale)
}

// State is the viewer state exposed to callers.
type State struct {
	Index      int     `json:"index"`
	Scale      float64 `json:"scale"`
	TranslateX float64 `json:"translate_x"`
	TranslateY float64 `json:"translate_y"`
}

// Phase reports REST or ZOOMED.
func (s State) Phase() Phase {
	if s.Scale > MinScale {
		return PhaseZoomed
	}
	return PhaseRest
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
