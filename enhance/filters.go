package enhance

import (
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
)

// claheGray applies contrast-limited adaptive histogram equalization.
// The image is split into a tiles x tiles grid; each tile gets a clipped,
// equalized mapping and pixels are remapped by bilinear interpolation
// between the four surrounding tile mappings to avoid block seams.
func claheGray(src *image.Gray, clipLimit float64, tiles int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || tiles <= 0 {
		return src
	}
	if tiles > w {
		tiles = w
	}
	if tiles > h {
		tiles = h
	}
	tileW := (w + tiles - 1) / tiles
	tileH := (h + tiles - 1) / tiles

	// Per-tile equalization lookup tables.
	luts := make([][256]uint8, tiles*tiles)
	for ty := 0; ty < tiles; ty++ {
		for tx := 0; tx < tiles; tx++ {
			x0, y0 := tx*tileW, ty*tileH
			x1, y1 := minInt(x0+tileW, w), minInt(y0+tileH, h)
			var hist [256]int
			count := 0
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					hist[src.GrayAt(b.Min.X+x, b.Min.Y+y).Y]++
					count++
				}
			}
			if count == 0 {
				continue
			}
			clip := int(clipLimit * float64(count) / 256.0)
			if clip < 1 {
				clip = 1
			}
			excess := 0
			for i := range hist {
				if hist[i] > clip {
					excess += hist[i] - clip
					hist[i] = clip
				}
			}
			// Redistribute clipped mass evenly across all bins.
			per := excess / 256
			rem := excess % 256
			for i := range hist {
				hist[i] += per
				if i < rem {
					hist[i]++
				}
			}
			cum := 0
			for i := range hist {
				cum += hist[i]
				luts[ty*tiles+tx][i] = uint8(255 * cum / count)
			}
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := src.GrayAt(b.Min.X+x, b.Min.Y+y).Y

			// Position relative to tile centers.
			fx := (float64(x) - float64(tileW)/2) / float64(tileW)
			fy := (float64(y) - float64(tileH)/2) / float64(tileH)
			tx0 := int(math.Floor(fx))
			ty0 := int(math.Floor(fy))
			wx := fx - float64(tx0)
			wy := fy - float64(ty0)
			tx1, ty1 := tx0+1, ty0+1
			tx0 = clampInt(tx0, 0, tiles-1)
			tx1 = clampInt(tx1, 0, tiles-1)
			ty0 = clampInt(ty0, 0, tiles-1)
			ty1 = clampInt(ty1, 0, tiles-1)

			v00 := float64(luts[ty0*tiles+tx0][v])
			v01 := float64(luts[ty0*tiles+tx1][v])
			v10 := float64(luts[ty1*tiles+tx0][v])
			v11 := float64(luts[ty1*tiles+tx1][v])
			top := v00*(1-wx) + v01*wx
			bot := v10*(1-wx) + v11*wx
			dst.Pix[y*dst.Stride+x] = uint8(clampF(top*(1-wy)+bot*wy, 0, 255))
		}
	}
	return dst
}

// bilateralGray smooths flat regions while preserving sharp transitions.
// d is the filter window diameter; sigmaColor and sigmaSpace control the
// range and spatial falloff.
func bilateralGray(src *image.Gray, d int, sigmaColor, sigmaSpace float64) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || d < 3 {
		return src
	}
	radius := d / 2

	spatial := make([]float64, d*d)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			dist := float64(dx*dx + dy*dy)
			spatial[(dy+radius)*d+(dx+radius)] = math.Exp(-dist / (2 * sigmaSpace * sigmaSpace))
		}
	}
	var rng [256]float64
	for i := range rng {
		rng[i] = math.Exp(-float64(i*i) / (2 * sigmaColor * sigmaColor))
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			center := src.GrayAt(b.Min.X+x, b.Min.Y+y).Y
			var sum, norm float64
			for dy := -radius; dy <= radius; dy++ {
				yy := clampInt(y+dy, 0, h-1)
				for dx := -radius; dx <= radius; dx++ {
					xx := clampInt(x+dx, 0, w-1)
					v := src.GrayAt(b.Min.X+xx, b.Min.Y+yy).Y
					diff := int(v) - int(center)
					if diff < 0 {
						diff = -diff
					}
					wgt := spatial[(dy+radius)*d+(dx+radius)] * rng[diff]
					sum += wgt * float64(v)
					norm += wgt
				}
			}
			dst.Pix[y*dst.Stride+x] = uint8(clampF(sum/norm, 0, 255))
		}
	}
	return dst
}

// unsharpGray amplifies high-frequency detail by blending the image with a
// Gaussian blur of itself: out = origWeight*src + blurWeight*blur.
func unsharpGray(src *image.Gray, sigma, origWeight, blurWeight float64) *image.Gray {
	blurred := toGray(imaging.Blur(src, sigma))
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			o := float64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			bl := float64(blurred.GrayAt(x, y).Y)
			dst.Pix[y*dst.Stride+x] = uint8(clampF(origWeight*o+blurWeight*bl, 0, 255))
		}
	}
	return dst
}

// adaptiveThresholdGray binarizes against the local mean of a block x block
// neighborhood minus a constant c. Uses a summed-area table so the cost is
// independent of block size.
func adaptiveThresholdGray(src *image.Gray, block, c int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return src
	}
	if block%2 == 0 {
		block++
	}
	radius := block / 2

	integral := make([]int64, (w+1)*(h+1))
	for y := 0; y < h; y++ {
		var rowSum int64
		for x := 0; x < w; x++ {
			rowSum += int64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			integral[(y+1)*(w+1)+x+1] = integral[y*(w+1)+x+1] + rowSum
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0 := maxInt(x-radius, 0)
			y0 := maxInt(y-radius, 0)
			x1 := minInt(x+radius, w-1)
			y1 := minInt(y+radius, h-1)
			area := int64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[(y1+1)*(w+1)+x1+1] - integral[y0*(w+1)+x1+1] -
				integral[(y1+1)*(w+1)+x0] + integral[y0*(w+1)+x0]
			mean := sum / area
			if int64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y) > mean-int64(c) {
				dst.Pix[y*dst.Stride+x] = 255
			}
		}
	}
	return dst
}

// medianGray applies a size x size median filter.
func medianGray(src *image.Gray, size int) *image.Gray {
	if src == nil {
		return nil
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 || size < 3 {
		return src
	}
	radius := size / 2
	window := make([]uint8, 0, size*size)
	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			window = window[:0]
			for dy := -radius; dy <= radius; dy++ {
				yy := clampInt(y+dy, 0, h-1)
				for dx := -radius; dx <= radius; dx++ {
					xx := clampInt(x+dx, 0, w-1)
					window = append(window, src.GrayAt(b.Min.X+xx, b.Min.Y+yy).Y)
				}
			}
			sort.Slice(window, func(i, j int) bool { return window[i] < window[j] })
			dst.Pix[y*dst.Stride+x] = window[len(window)/2]
		}
	}
	return dst
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
