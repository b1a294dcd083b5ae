package render

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// Texture colours.
var (
	DieFace  = colornames.Ivory
	DieEdge  = colornames.Silver
	DiePip   = colornames.Black
	DieAce   = colornames.Darkred
	GroundA  = colornames.Darkslategray
	GroundB  = colornames.Slategray
	Fallback = colornames.Lightgray
	Backdrop = colornames.Midnightblue
)

var pipLayout = map[int][][2]float64{
	1: {{0.5, 0.5}},
	2: {{0.25, 0.25}, {0.75, 0.75}},
	3: {{0.25, 0.25}, {0.5, 0.5}, {0.75, 0.75}},
	4: {{0.25, 0.25}, {0.75, 0.25}, {0.25, 0.75}, {0.75, 0.75}},
	5: {{0.25, 0.25}, {0.75, 0.25}, {0.5, 0.5}, {0.25, 0.75}, {0.75, 0.75}},
	6: {{0.25, 0.25}, {0.75, 0.25}, {0.25, 0.5}, {0.75, 0.5}, {0.25, 0.75}, {0.75, 0.75}},
}

// DiceAtlas draws the six die faces into an AtlasColumns x AtlasRows grid of
// cell x cell squares, in the order [CubeMesh] expects.
func DiceAtlas(cell int) *image.RGBA {
	if cell < 8 {
		cell = 8
	}
	img := image.NewRGBA(image.Rect(0, 0, cell*AtlasColumns, cell*AtlasRows))
	for pips := 1; pips <= 6; pips++ {
		x0 := ((pips - 1) % AtlasColumns) * cell
		y0 := ((pips - 1) / AtlasColumns) * cell
		r := image.Rect(x0, y0, x0+cell, y0+cell)
		draw.Draw(img, r, image.NewUniform(DieEdge), image.Point{}, draw.Src)
		border := cell / 16
		draw.Draw(img, r.Inset(border), image.NewUniform(DieFace), image.Point{}, draw.Src)

		pip := color.Color(DiePip)
		if pips == 1 {
			pip = DieAce
		}
		radius := float64(cell) * 0.09
		if pips == 1 {
			radius *= 1.5
		}
		for _, p := range pipLayout[pips] {
			fillCircle(img, float64(x0)+p[0]*float64(cell), float64(y0)+p[1]*float64(cell), radius, pip)
		}
	}
	return img
}

// GroundTexture is a two-tone checker of 2x2 squares.
func GroundTexture(size int) *image.RGBA {
	if size < 2 {
		size = 2
	}
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	half := size / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			c := GroundA
			if (x < half) != (y < half) {
				c = GroundB
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// FallbackTexture is shown on boxes until the real texture has loaded.
func FallbackTexture() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	draw.Draw(img, img.Bounds(), image.NewUniform(Fallback), image.Point{}, draw.Src)
	return img
}

func fillCircle(img *image.RGBA, cx, cy, r float64, c color.Color) {
	for y := int(cy - r); y <= int(cy+r); y++ {
		for x := int(cx - r); x <= int(cx+r); x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, c)
			}
		}
	}
}

// LoadTexture decodes png, jpeg, bmp or webp from path and rescales it to
// power-of-two dimensions so WebGL 1 can mipmap and repeat it.
func LoadTexture(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return PowerOfTwo(src), nil
}

// PowerOfTwo returns img as RGBA, scaled up to the next power of two per axis.
func PowerOfTwo(img image.Image) *image.RGBA {
	b := img.Bounds()
	w, h := nextPow2(b.Dx()), nextPow2(b.Dy())
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if w == b.Dx() && h == b.Dy() {
		draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
		return dst
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// TextureResult is delivered once an asynchronous load finishes.
type TextureResult struct {
	Path  string
	Image *image.RGBA
	Err   error
}

// AsyncLoad decodes path on its own goroutine. The channel receives exactly
// one result and is then closed; a cancelled ctx yields ctx.Err().
func AsyncLoad(ctx context.Context, path string) <-chan TextureResult {
	out := make(chan TextureResult, 1)
	go func() {
		defer close(out)
		type loaded struct {
			img *image.RGBA
			err error
		}
		done := make(chan loaded, 1)
		go func() {
			img, err := LoadTexture(path)
			done <- loaded{img, err}
		}()
		select {
		case <-ctx.Done():
			out <- TextureResult{Path: path, Err: ctx.Err()}
		case l := <-done:
			out <- TextureResult{Path: path, Image: l.img, Err: l.err}
		}
	}()
	return out
}
