package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/example/pebble/internal/core/archive"
	"github.com/example/pebble/internal/core/stage"
)

// Grime levels below the terminal stage.
var (
	grimeAlpha  = [...]float64{0, 0.10, 0.18, 0.24}
	speckCounts = [...]int{0, 260, 520, 760}
	smudgeCount = [...]int{0, 10, 16, 22}
	scratches   = [...]int{0, 26, 54, 76}
)

// GrimeAlpha is the flat darkening applied at stage s.
func GrimeAlpha(s stage.Stage) float64 {
	if s.IsTerminal() {
		return 0.30
	}
	if !s.Valid() {
		return 0
	}
	return grimeAlpha[s]
}

// Renderer implements secondary.SnapshotRenderer.
type Renderer struct {
	Width, Height int
}

// NewRenderer creates a Renderer producing w x h images.
func NewRenderer(w, h int) *Renderer {
	return &Renderer{Width: w, Height: h}
}

// Render implements secondary.SnapshotRenderer.
func (r *Renderer) Render(spec archive.SnapshotSpec) ([]byte, error) {
	img := r.Draw(spec)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// Draw paints the pebble for spec.
func (r *Renderer) Draw(spec archive.SnapshotSpec) *image.RGBA {
	c := newCanvas(r.Width, r.Height, NewShape(float64(r.Width), float64(r.Height), spec.Variant))
	c.drawBase(spec.Variant)
	st, _ := stage.Clamp(float64(spec.Stage))
	c.drawGrime(st, spec.Variant)
	c.engrave(spec.DisplayText)
	return c.img
}

type canvas struct {
	img   *image.RGBA
	shape Shape
	w, h  int
}

func newCanvas(w, h int, shape Shape) *canvas {
	return &canvas{img: image.NewRGBA(image.Rect(0, 0, w, h)), shape: shape, w: w, h: h}
}

// blend composites gray level v at alpha a over pixel (x, y), clipped to the pebble.
func (c *canvas) blend(x, y int, v uint8, a float64) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h || a <= 0 {
		return
	}
	if !c.shape.Contains(float64(x)+0.5, float64(y)+0.5) {
		return
	}
	i := c.img.PixOffset(x, y)
	p := c.img.Pix[i : i+4 : i+4]
	for k := 0; k < 3; k++ {
		p[k] = uint8(float64(p[k])*(1-a) + float64(v)*a)
	}
	p[3] = 255
}

func (c *canvas) disc(cx, cy, radius float64, v uint8, a float64) {
	x0, x1 := int(math.Floor(cx-radius)), int(math.Ceil(cx+radius))
	y0, y1 := int(math.Floor(cy-radius)), int(math.Ceil(cy+radius))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			if math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) <= radius {
				c.blend(x, y, v, a)
			}
		}
	}
}

func (c *canvas) line(x1, y1, x2, y2, width float64, v uint8, a float64) {
	n := int(math.Ceil(math.Hypot(x2-x1, y2-y1)))
	if n < 1 {
		n = 1
	}
	r := math.Max(width/2, 0.5)
	for i := 0; i <= n; i++ {
		t := float64(i) / float64(n)
		c.disc(x1+(x2-x1)*t, y1+(y2-y1)*t, r, v, a)
	}
}

func (c *canvas) drawBase(variant int) {
	s := c.shape
	gx, gy := s.CX-s.BaseR*0.25, s.CY-s.BaseR*0.25
	inner, outer := s.BaseR*0.18, s.BaseR*1.2

	for y := 0; y < c.h; y++ {
		for x := 0; x < c.w; x++ {
			if !s.Contains(float64(x)+0.5, float64(y)+0.5) {
				continue
			}
			t := (math.Hypot(float64(x)-gx, float64(y)-gy) - inner) / (outer - inner)
			t = math.Max(0, math.Min(1, t))
			var v float64
			if t < 0.6 {
				v = 252 + (230-252)*t/0.6
			} else {
				v = 230 + (198-230)*(t-0.6)/0.4
			}
			i := c.img.PixOffset(x, y)
			c.img.Pix[i], c.img.Pix[i+1], c.img.Pix[i+2], c.img.Pix[i+3] = uint8(v), uint8(v), uint8(v), 255
		}
	}

	rnd := Rand(uint32(7777 + variant*111))
	for i := 0; i < 760; i++ {
		a := rnd() * 2 * math.Pi
		rr := math.Pow(rnd(), 0.65) * s.BaseR * 0.98
		r := rnd()*1.7 + 0.2
		o := rnd() * 0.06
		c.disc(s.CX+math.Cos(a)*rr, s.CY+math.Sin(a)*rr, r, 0, o)
	}

	// Soft highlight toward the upper left.
	hx, hy := s.CX-s.BaseR*0.22, s.CY-s.BaseR*0.30
	ax, ay := s.BaseR*0.48, s.BaseR*0.26
	sin, cos := math.Sincos(0.2)
	for y := int(hy - ax); y <= int(hy+ax); y++ {
		for x := int(hx - ax); x <= int(hx+ax); x++ {
			dx, dy := float64(x)-hx, float64(y)-hy
			ex, ey := dx*cos-dy*sin, dx*sin+dy*cos
			if (ex*ex)/(ax*ax)+(ey*ey)/(ay*ay) <= 1 {
				c.blend(x, y, 255, 0.18)
			}
		}
	}
}

func (c *canvas) drawGrime(st stage.Stage, variant int) {
	s := c.shape
	flat := GrimeAlpha(st)
	if flat > 0 {
		for y := 0; y < c.h; y++ {
			for x := 0; x < c.w; x++ {
				c.blend(x, y, 0, flat)
			}
		}
	}

	idx := int(st)
	specks, speckMax := 1100, 0.14
	if !st.IsTerminal() {
		specks, speckMax = speckCounts[idx], 0.12
	}
	rnd := Rand(uint32(9000 + idx*100 + variant*17))
	for i := 0; i < specks; i++ {
		x := s.CX + (rnd()-0.5)*s.BaseR*1.85
		y := s.CY + (rnd()-0.5)*s.BaseR*1.55
		r := 0.4 + rnd()*1.2
		o := 0.05 + rnd()*speckMax
		c.disc(x, y, r, 0, o)
	}

	if st.IsTerminal() {
		c.drawCracks(uint32(54000+variant*31), 1.0)
		return
	}

	rnd = Rand(uint32(5000 + idx*100 + variant*13))
	for i := 0; i < scratches[idx]; i++ {
		x1 := s.CX + (rnd()-0.5)*s.BaseR*1.8
		y1 := s.CY + (rnd()-0.5)*s.BaseR*1.5
		c.line(x1, y1, x1+(rnd()-0.5)*56, y1+(rnd()-0.5)*34, 1, 0, 0.18)
	}

	rnd = Rand(uint32(12000 + idx*200 + variant*31))
	for i := 0; i < smudgeCount[idx]; i++ {
		x := s.CX + (rnd()-0.5)*s.BaseR*1.6
		y := s.CY + (rnd()-0.5)*s.BaseR*1.3
		l := 18 + rnd()*42
		a := rnd() * 2 * math.Pi
		c.line(x, y, x+math.Cos(a)*l, y+math.Sin(a)*l*0.35, 1, 0, 0.10)
	}

	if st == stage.Cracking {
		c.drawCracks(uint32(30000+variant*97), 0.55)
	}
}

func (c *canvas) drawCracks(seed uint32, strength float64) {
	s := c.shape
	rnd := Rand(seed)
	count := int(5 + strength*10)

	for i := 0; i < count; i++ {
		x := s.CX + (rnd()-0.5)*s.BaseR*1.2
		y := s.CY + (rnd()-0.5)*s.BaseR*1.0
		ang := rnd() * 2 * math.Pi

		alpha := 0.05 + rnd()*(0.05+strength*0.08)
		w := 0.6 + rnd()*(0.7+strength*0.5)
		segs := 7 + int(rnd()*(6+strength*4))

		for k := 0; k < segs; k++ {
			ang += (rnd() - 0.5) * 0.85
			l := s.BaseR * (0.06 + rnd()*(0.07+strength*0.05))
			nx := x + math.Cos(ang)*l + (rnd()-0.5)*3.2
			ny := y + math.Sin(ang)*l + (rnd()-0.5)*3.2
			c.line(x, y, nx, ny, w, 0, alpha)

			if rnd() < 0.18 {
				w = math.Min(w+0.35, 2.2)
			} else {
				w = math.Max(w-0.18, 0.55)
			}

			if rnd() < 0.14 {
				side := 1.0
				if rnd() < 0.5 {
					side = -1
				}
				bAng := ang + side*(0.7+rnd()*0.6)
				bx := nx + math.Cos(bAng)*s.BaseR*(0.05+rnd()*0.06)
				by := ny + math.Sin(bAng)*s.BaseR*(0.05+rnd()*0.06)
				c.line(nx, ny, bx, by, w*0.7, 0, alpha*0.7)
			}
			x, y = nx, ny
		}
	}
}

// engrave draws text centered on the pebble, wrapped to the pebble's width.
func (c *canvas) engrave(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	lines := Wrap(text, int(c.shape.BaseR*2*0.92), func(s string) int {
		return font.MeasureString(face, s).Ceil()
	})

	lineHeight := int(float64(face.Height) * 1.65)
	top := int(c.shape.CY) - lineHeight*len(lines)/2
	for i, l := range lines {
		width := font.MeasureString(face, l).Ceil()
		x := int(c.shape.CX) - width/2
		y := top + lineHeight*i + lineHeight/2 + face.Ascent/2
		c.text(face, l, x, y-1, color.RGBA{95, 95, 95, 128})
		c.text(face, l, x, y, color.RGBA{255, 255, 255, 191})
	}
}

func (c *canvas) text(face font.Face, s string, x, y int, col color.RGBA) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// Wrap breaks text into lines no wider than max according to measure.
// Words longer than max are split by rune.
func Wrap(text string, max int, measure func(string) int) []string {
	var lines []string
	var cur string
	for _, word := range strings.Fields(text) {
		candidate := word
		if cur != "" {
			candidate = cur + " " + word
		}
		if measure(candidate) <= max {
			cur = candidate
			continue
		}
		if cur != "" {
			lines = append(lines, cur)
			cur = ""
		}
		for measure(word) > max {
			runes := []rune(word)
			if len(runes) < 2 {
				break
			}
			n := len(runes) - 1
			for n > 1 && measure(string(runes[:n])) > max {
				n--
			}
			lines = append(lines, string(runes[:n]))
			word = string(runes[n:])
		}
		cur = word
	}
	if cur != "" {
		lines = append(lines, cur)
	}
	return lines
}
