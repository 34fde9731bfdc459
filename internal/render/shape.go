// Package render draws the pebble: its silhouette, grime and cracks by stage,
// and the engraved text. Output is deterministic for a given variant.
package render

import "math"

// Rand returns a mulberry32 generator yielding values in [0, 1).
func Rand(seed uint32) func() float64 {
	t := seed
	return func() float64 {
		t += 0x6D2B79F5
		r := (t ^ (t >> 15)) * (1 | t)
		r ^= r + (r^(r>>7))*(61|r)
		return float64(r^(r>>14)) / 4294967296
	}
}

// Scale is the pebble's size relative to the fill radius.
const Scale = 0.8

const (
	fill       = 0.40
	steps      = 128
	wobble     = 0.07
	tallFactor = 1.05
)

// Shape is the pebble outline on a W x H surface.
type Shape struct {
	CX, CY  float64
	BaseR   float64
	squashX float64
	squashY float64
	rot     float64
	radii   [steps]float64
	tall    bool
}

// ShapeSeed is the outline seed for a variant.
func ShapeSeed(variant int) uint32 {
	return uint32(12345 + variant*999)
}

// NewShape builds the outline for variant on a w x h surface. Tall surfaces get
// a portrait squash, everything else a landscape one.
func NewShape(w, h float64, variant int) Shape {
	s := Shape{
		CX:    w / 2,
		CY:    h / 2,
		BaseR: math.Min(w, h) * fill * Scale,
	}
	s.tall = h > w*tallFactor
	if s.tall {
		s.squashX, s.squashY, s.rot = 0.92, 1.18, 0.06
	} else {
		s.squashX, s.squashY, s.rot = 1.28, 0.84, 0
	}

	rnd := Rand(ShapeSeed(variant))
	for i := 0; i < steps; i++ {
		a := float64(i) / steps * 2 * math.Pi
		n1 := math.Sin(a*2+rnd()*0.25) * wobble
		n2 := math.Sin(a*5+rnd()*0.25) * (wobble * 0.18)
		s.radii[i] = s.BaseR * (1 + n1 + n2)
	}
	return s
}

// radiusAt interpolates the unsquashed radius at angle a.
func (s Shape) radiusAt(a float64) float64 {
	if a < 0 {
		a += 2 * math.Pi
	}
	f := a / (2 * math.Pi) * steps
	i := int(f) % steps
	frac := f - math.Floor(f)
	return s.radii[i]*(1-frac) + s.radii[(i+1)%steps]*frac
}

// Contains reports whether (x, y) lies inside the pebble.
func (s Shape) Contains(x, y float64) bool {
	dx, dy := x-s.CX, y-s.CY
	if s.rot != 0 {
		sin, cos := math.Sincos(-s.rot)
		dx, dy = dx*cos-dy*sin, dx*sin+dy*cos
	}
	ux, uy := dx/s.squashX, dy/s.squashY
	d := math.Hypot(ux, uy)
	return d <= s.radiusAt(math.Atan2(uy, ux))
}

// Tall reports whether the surface got the portrait squash.
func (s Shape) Tall() bool { return s.tall }
