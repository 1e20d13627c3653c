package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/histogram"
	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// OtsuThreshold picks the intensity level that maximizes the between-class
// variance of the image histogram. Pixels strictly above the returned level
// belong to the bright class.
func OtsuThreshold(img *image.Gray) uint8 {
	bins := histogram.NewRGBAHistogram(img).R.Bins

	total := 0
	weightedSum := 0.0
	for i, c := range bins {
		total += c
		weightedSum += float64(i * c)
	}
	if total == 0 {
		return 0
	}

	var (
		best       uint8
		bestVar    float64
		bgCount    int
		bgWeighted float64
	)
	for t := 0; t < len(bins) && t < 256; t++ {
		bgCount += bins[t]
		if bgCount == 0 {
			continue
		}
		fgCount := total - bgCount
		if fgCount == 0 {
			break
		}
		bgWeighted += float64(t * bins[t])

		meanBg := bgWeighted / float64(bgCount)
		meanFg := (weightedSum - bgWeighted) / float64(fgCount)
		diff := meanBg - meanFg
		between := float64(bgCount) * float64(fgCount) * diff * diff
		if between > bestVar {
			bestVar = between
			best = uint8(t)
		}
	}
	return best
}

// Binarize thresholds img at its Otsu level: values above the level become
// 255, everything else 0.
func Binarize(img *image.Gray) *image.Gray {
	level := OtsuThreshold(img)
	if level == 255 {
		// Nothing can be above the top level.
		return image.NewGray(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	}
	// segment.Threshold whitens values >= its level.
	return toGray(segment.Threshold(img, level+1))
}

// FixPolarity inverts a binary image whose pixels are mostly black so that
// text ends up dark on a light background.
func FixPolarity(img *image.Gray) *image.Gray {
	black := 0
	for _, v := range img.Pix {
		if v == 0 {
			black++
		}
	}
	if black*2 <= len(img.Pix) {
		return img
	}
	return toGray(imaging.Invert(img))
}
