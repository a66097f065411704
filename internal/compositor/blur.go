package compositor

import (
	"image"
	"image/draw"
)

// boxBlur runs one horizontal and one vertical box pass over img in place,
// using a sliding window so cost is independent of the radius. Neither
// x/image nor anything else in the dependency set ships a blur kernel, so
// this stays hand-rolled.
func boxBlur(img *image.RGBA, radius int) {
	if radius < 1 {
		return
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return
	}

	tmp := image.NewRGBA(bounds)
	blurAxis(img.Pix, tmp.Pix, w, h, img.Stride, radius, true)
	blurAxis(tmp.Pix, img.Pix, w, h, img.Stride, radius, false)
}

// blurAxis averages along one axis. horizontal=true reads rows, otherwise
// columns; src and dst must share dimensions and stride.
func blurAxis(src, dst []uint8, w, h, stride, radius int, horizontal bool) {
	outer, inner := h, w
	if !horizontal {
		outer, inner = w, h
	}

	at := func(o, i int) int {
		if horizontal {
			return o*stride + i*4
		}
		return i*stride + o*4
	}

	for o := 0; o < outer; o++ {
		var sumR, sumG, sumB, sumA int

		// Prime the window around index 0; edges repeat the border pixel
		window := 0
		for i := -radius; i <= radius; i++ {
			idx := at(o, clamp(i, 0, inner-1))
			sumR += int(src[idx])
			sumG += int(src[idx+1])
			sumB += int(src[idx+2])
			sumA += int(src[idx+3])
			window++
		}

		for i := 0; i < inner; i++ {
			idx := at(o, i)
			dst[idx] = uint8(sumR / window)
			dst[idx+1] = uint8(sumG / window)
			dst[idx+2] = uint8(sumB / window)
			dst[idx+3] = uint8(sumA / window)

			// Slide: drop the trailing pixel, add the leading one
			drop := at(o, clamp(i-radius, 0, inner-1))
			add := at(o, clamp(i+radius+1, 0, inner-1))
			sumR += int(src[add]) - int(src[drop])
			sumG += int(src[add+1]) - int(src[drop+1])
			sumB += int(src[add+2]) - int(src[drop+2])
			sumA += int(src[add+3]) - int(src[drop+3])
		}
	}
}

// dim multiplies RGB channels by factor, leaving alpha alone.
func dim(img *image.RGBA, factor float64) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		row := img.Pix[(y-bounds.Min.Y)*img.Stride : (y-bounds.Min.Y)*img.Stride+bounds.Dx()*4]
		for x := 0; x < len(row); x += 4 {
			row[x] = uint8(float64(row[x]) * factor)
			row[x+1] = uint8(float64(row[x+1]) * factor)
			row[x+2] = uint8(float64(row[x+2]) * factor)
		}
	}
}

// MaskRegions blurs the given regions of a panel beyond legibility. Used
// to suppress detected speech bubbles while keeping the artwork intact.
func MaskRegions(img image.Image, regions []image.Rectangle) *image.RGBA {
	bounds := img.Bounds()
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, img, bounds.Min, draw.Src)

	for _, region := range regions {
		region = region.Intersect(bounds)
		if region.Empty() {
			continue
		}
		patch := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
		draw.Draw(patch, patch.Bounds(), out, region.Min, draw.Src)
		for pass := 0; pass < blurPasses; pass++ {
			boxBlur(patch, blurRadius)
		}
		draw.Draw(out, region, patch, image.Point{}, draw.Src)
	}

	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
