package imaging

import (
	"image"
	"math"
)

// CLAHE applies contrast-limited adaptive histogram equalization.
//
// The image is split into a grid x grid set of tiles (fewer when the image
// has fewer pixels than tiles along an axis). Each tile gets its own
// equalization lookup table built from a histogram clipped at
// clipLimit * tileArea / 256 counts per bin, with the clipped excess spread
// evenly across all bins. Pixels are then mapped by bilinear interpolation
// between the four nearest tile tables, which hides tile seams.
//
// Clipping keeps near-uniform regions (paper background) from having their
// noise stretched across the full intensity range.
func CLAHE(src *image.Gray, grid int, clipLimit float64) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))
	if w == 0 || h == 0 {
		return out
	}

	gx, gy := grid, grid
	if gx > w {
		gx = w
	}
	if gy > h {
		gy = h
	}
	if gx < 1 {
		gx = 1
	}
	if gy < 1 {
		gy = 1
	}

	at := func(x, y int) uint8 {
		return src.Pix[(y+b.Min.Y-src.Rect.Min.Y)*src.Stride+(x+b.Min.X-src.Rect.Min.X)]
	}

	// luts[ty][tx] maps an input intensity to its equalized value.
	luts := make([][][256]uint8, gy)
	for ty := 0; ty < gy; ty++ {
		luts[ty] = make([][256]uint8, gx)
		y0, y1 := ty*h/gy, (ty+1)*h/gy
		for tx := 0; tx < gx; tx++ {
			x0, x1 := tx*w/gx, (tx+1)*w/gx

			var hist [256]int
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[at(x, y)]++
				}
			}
			area := (x1 - x0) * (y1 - y0)
			luts[ty][tx] = equalizeClipped(hist, area, clipLimit)
		}
	}

	tileW := float64(w) / float64(gx)
	tileH := float64(h) / float64(gy)

	for y := 0; y < h; y++ {
		ty0, ty1, fy := tileNeighbors(y, tileH, gy)
		for x := 0; x < w; x++ {
			tx0, tx1, fx := tileNeighbors(x, tileW, gx)
			v := at(x, y)

			top := (1-fx)*float64(luts[ty0][tx0][v]) + fx*float64(luts[ty0][tx1][v])
			bottom := (1-fx)*float64(luts[ty1][tx0][v]) + fx*float64(luts[ty1][tx1][v])
			res := (1-fy)*top + fy*bottom

			out.Pix[y*out.Stride+x] = uint8(clamp(int(math.Round(res)), 0, 255))
		}
	}
	return out
}

// equalizeClipped builds an equalization table from a clipped histogram.
func equalizeClipped(hist [256]int, area int, clipLimit float64) [256]uint8 {
	var lut [256]uint8
	if area == 0 {
		return lut
	}

	limit := int(clipLimit * float64(area) / 256)
	if limit < 1 {
		limit = 1
	}

	excess := 0
	for i, c := range hist {
		if c > limit {
			excess += c - limit
			hist[i] = limit
		}
	}

	perBin := excess / 256
	residual := excess % 256
	for i := range hist {
		hist[i] += perBin
	}
	if residual > 0 {
		step := 256 / residual
		if step < 1 {
			step = 1
		}
		for i := 0; i < 256 && residual > 0; i += step {
			hist[i]++
			residual--
		}
	}

	scale := 255.0 / float64(area)
	sum := 0
	for i, c := range hist {
		sum += c
		lut[i] = uint8(clamp(int(math.Round(float64(sum)*scale)), 0, 255))
	}
	return lut
}

// tileNeighbors returns the two tile indices around pixel coordinate p and
// the interpolation weight toward the second one.
func tileNeighbors(p int, tileSize float64, tiles int) (int, int, float64) {
	f := (float64(p)+0.5)/tileSize - 0.5
	t0 := int(math.Floor(f))
	frac := f - float64(t0)
	if t0 < 0 {
		return 0, 0, 0
	}
	if t0 >= tiles-1 {
		return tiles - 1, tiles - 1, 0
	}
	return t0, t0 + 1, frac
}

// clamp constrains val to [lo, hi].
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
