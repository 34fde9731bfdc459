package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/example/pebble/internal/core/archive"
	"github.com/example/pebble/internal/core/cleaning"
	"github.com/example/pebble/internal/core/stage"
	"github.com/example/pebble/internal/render"
)

// Pixel size of one terminal cell. The gesture and the renderer share this
// space, so brush radius and pebble area mean the same as in the snapshot.
const (
	cellW = 6.0
	cellH = 12.0
)

// surfaceFor is the pixel surface behind a cols x rows block of cells.
func surfaceFor(cols, rows int) cleaning.Surface {
	return cleaning.Surface{Width: float64(cols) * cellW, Height: float64(rows) * cellH}
}

// pointAt is the pixel center of cell (col, row).
func pointAt(col, row int) cleaning.Point {
	return cleaning.Point{X: (float64(col) + 0.5) * cellW, Y: (float64(row) + 0.5) * cellH}
}

type artKey struct {
	cols, rows int
	variant    int
	stage      stage.Stage
}

// art is the pebble sampled down to terminal cells. level is -1 outside the
// pebble, otherwise a gray level in [0, grayLevels).
type art struct {
	key   artKey
	shape render.Shape
	level [][]int
}

// drawArt renders the pebble without text and shades each cell by the pixels
// it covers. Thin cracks survive because the darkest pixel is weighted in.
func drawArt(k artKey) *art {
	w, h := int(float64(k.cols)*cellW), int(float64(k.rows)*cellH)
	img := render.NewRenderer(w, h).Draw(archive.SnapshotSpec{Variant: k.variant, Stage: int(k.stage)})
	shape := render.NewShape(float64(w), float64(h), k.variant)

	a := &art{key: k, shape: shape, level: make([][]int, k.rows)}
	for row := 0; row < k.rows; row++ {
		a.level[row] = make([]int, k.cols)
		for col := 0; col < k.cols; col++ {
			p := pointAt(col, row)
			if !shape.Contains(p.X, p.Y) {
				a.level[row][col] = -1
				continue
			}

			sum, n, darkest := 0.0, 0, 255.0
			for y := int(float64(row) * cellH); y < int(float64(row+1)*cellH); y++ {
				for x := int(float64(col) * cellW); x < int(float64(col+1)*cellW); x++ {
					i := img.PixOffset(x, y)
					if img.Pix[i+3] == 0 {
						continue
					}
					v := float64(img.Pix[i])
					sum += v
					n++
					darkest = math.Min(darkest, v)
				}
			}
			if n == 0 {
				a.level[row][col] = -1
				continue
			}
			lum := (0.6*sum/float64(n) + 0.4*darkest) / 255
			a.level[row][col] = min(grayLevels-1, int(lum*grayLevels))
		}
	}
	return a
}

// textWidth is the widest engraved line, in cells, that fits the pebble.
func (a *art) textWidth() int {
	return max(4, int(a.shape.BaseR*2*0.92/cellW)-2)
}

// view renders the art with text engraved at its center.
func (a *art) view(text string) string {
	var lines []string
	if text = strings.TrimSpace(text); text != "" {
		lines = render.Wrap(text, a.textWidth(), lipgloss.Width)
	}
	top := int(a.shape.CY/cellH) - len(lines)/2

	var b strings.Builder
	for row := 0; row < a.key.rows; row++ {
		if row > 0 {
			b.WriteByte('\n')
		}
		i := row - top
		if i < 0 || i >= len(lines) {
			a.writeCells(&b, row, 0, a.key.cols)
			continue
		}

		line := lines[i]
		width := lipgloss.Width(line)
		start := max(0, int(a.shape.CX/cellW)-width/2)
		end := min(a.key.cols, start+width)
		a.writeCells(&b, row, 0, start)
		bg := a.level[row][min(a.key.cols-1, (start+end)/2)]
		if bg < 0 {
			bg = grayLevels / 2
		}
		b.WriteString(engravedStyles[bg].Render(line))
		a.writeCells(&b, row, end, a.key.cols)
	}
	return b.String()
}

// writeCells emits cells [from, to) of row, batching runs of equal shade.
func (a *art) writeCells(b *strings.Builder, row, from, to int) {
	for col := from; col < to; {
		lvl := a.level[row][col]
		run := col + 1
		for run < to && a.level[row][run] == lvl {
			run++
		}
		if lvl < 0 {
			b.WriteString(strings.Repeat(" ", run-col))
		} else {
			b.WriteString(grayStyles[lvl].Render(strings.Repeat("█", run-col)))
		}
		col = run
	}
}
