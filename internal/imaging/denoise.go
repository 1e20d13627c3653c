package imaging

import (
	"context"
	"image"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// denoiseBandRows is the number of output rows each worker handles.
const denoiseBandRows = 32

// Weight table resolution: weightSteps entries per unit of mean squared
// patch difference, up to an exponent of weightCutoff. Beyond the cutoff a
// weight is below 1e-13 and is dropped.
const (
	weightSteps  = 4
	weightCutoff = 30.0
)

// DenoiseNLM applies non-local means denoising to a grayscale image.
//
// Every pixel becomes a weighted average of the pixels in a search x search
// window around it. Each neighbour is weighted by how similar its
// patch x patch surroundings are to the pixel's own:
//
//	w = exp(-meanSquaredPatchDiff / h²)
//
// Larger h removes more noise and blurs more detail. Patch distances are
// computed one search offset at a time with an integer summed-area table, so
// the cost is O(pixels * search²) regardless of patch size. Weights come from
// a table quantized to a quarter of a grey level squared, as in OpenCV's
// fastNlMeans. Horizontal bands are processed concurrently; borders
// replicate edge pixels.
func DenoiseNLM(ctx context.Context, src *image.Gray, h float64, patch, search int) (*image.Gray, error) {
	w, ht := src.Bounds().Dx(), src.Bounds().Dy()
	out := image.NewGray(image.Rect(0, 0, w, ht))
	if w == 0 || ht == 0 {
		return out, nil
	}

	pr := patch / 2
	sr := search / 2
	p := newPadded(toGray(src), pr+sr)
	lut := weightTable(h * h)
	patchArea := int64(patch * patch)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for y0 := 0; y0 < ht; y0 += denoiseBandRows {
		y0 := y0
		y1 := y0 + denoiseBandRows
		if y1 > ht {
			y1 = ht
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			denoiseBand(p, out, y0, y1, pr, sr, patchArea, lut)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// weightTable returns exp(-i/weightSteps/h2) for every index below the
// cutoff. Index 0 is always 1.
func weightTable(h2 float64) []float64 {
	if h2 <= 0 {
		return []float64{1}
	}
	lut := make([]float64, int(math.Ceil(weightCutoff*h2*weightSteps))+1)
	for i := range lut {
		lut[i] = math.Exp(-float64(i) / weightSteps / h2)
	}
	return lut
}

// padded is a copy of an image with a border of replicated edge pixels, so
// the inner loops never bounds-check coordinates.
type padded struct {
	pix    []int32
	stride int
	pad    int
	w, h   int
}

func newPadded(img *image.Gray, pad int) *padded {
	w, h := img.Rect.Dx(), img.Rect.Dy()
	p := &padded{
		pix:    make([]int32, (w+2*pad)*(h+2*pad)),
		stride: w + 2*pad,
		pad:    pad,
		w:      w,
		h:      h,
	}
	for y := 0; y < h+2*pad; y++ {
		sy := clamp(y-pad, 0, h-1)
		row := img.Pix[sy*img.Stride:]
		for x := 0; x < p.stride; x++ {
			p.pix[y*p.stride+x] = int32(row[clamp(x-pad, 0, w-1)])
		}
	}
	return p
}

// index returns the offset of image pixel (x, y); x and y may lie up to pad
// pixels outside the image.
func (p *padded) index(x, y int) int {
	return (y+p.pad)*p.stride + x + p.pad
}

// denoiseBand fills output rows [y0, y1).
func denoiseBand(p *padded, out *image.Gray, y0, y1, pr, sr int, patchArea int64, lut []float64) {
	w := p.w
	bh := y1 - y0
	// The summed-area table covers the band plus a patch-radius margin.
	iw := w + 2*pr + 1
	ih := bh + 2*pr + 1
	integral := make([]int64, iw*ih)

	sumW := make([]float64, w*bh)
	sumV := make([]float64, w*bh)
	limit := int64(len(lut))

	for dy := -sr; dy <= sr; dy++ {
		for dx := -sr; dx <= sr; dx++ {
			shift := dy*p.stride + dx
			for iy := 1; iy < ih; iy++ {
				base := p.index(-pr, y0-pr+iy-1)
				var rowSum int64
				for ix := 1; ix < iw; ix++ {
					i := base + ix - 1
					d := int64(p.pix[i] - p.pix[i+shift])
					rowSum += d * d
					integral[iy*iw+ix] = integral[(iy-1)*iw+ix] + rowSum
				}
			}

			for y := 0; y < bh; y++ {
				row := p.index(0, y0+y) + shift
				for x := 0; x < w; x++ {
					// Patch centred at (x, y0+y) spans table cells [x, x+2pr+1) x [y, y+2pr+1).
					x2, y2 := x+2*pr+1, y+2*pr+1
					ssd := integral[y2*iw+x2] - integral[y*iw+x2] - integral[y2*iw+x] + integral[y*iw+x]
					q := ssd * weightSteps / patchArea
					if q >= limit {
						continue
					}
					weight := lut[q]
					i := y*w + x
					sumW[i] += weight
					sumV[i] += weight * float64(p.pix[row+x])
				}
			}
		}
	}

	for y := 0; y < bh; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			v := sumV[i] / sumW[i]
			out.Pix[(y0+y)*out.Stride+x] = uint8(clamp(int(math.Round(v)), 0, 255))
		}
	}
}

// searchWithin narrows search so that pixels*search² stays within budget,
// keeping it odd and at least 3. A budget of 0 leaves search unchanged.
func searchWithin(pixels, search int, budget int64) int {
	if budget <= 0 || pixels <= 0 || int64(pixels)*int64(search)*int64(search) <= budget {
		return search
	}
	s := int(math.Sqrt(float64(budget) / float64(pixels)))
	if s%2 == 0 {
		s--
	}
	if s < 3 {
		s = 3
	}
	if s > search {
		s = search
	}
	return s
}
