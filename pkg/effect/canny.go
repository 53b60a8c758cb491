package effect

import "image"

const (
	tan22 = 0.4142135623730950488
	tan67 = 2.4142135623730950488
)

const (
	edgeNone uint8 = iota
	edgeWeak
	edgeStrong
)

// pureCanny runs Sobel gradients, non-maximum suppression and hysteresis on src.
// Thresholds are compared to the L1 gradient magnitude; reversed thresholds are swapped.
func pureCanny(src *image.Gray, threshold1, threshold2 int) *image.Gray {
	low, high := threshold1, threshold2
	if low > high {
		low, high = high, low
	}

	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	at := func(x, y int) int {
		if x < 0 {
			x = 0
		} else if x >= w {
			x = w - 1
		}
		if y < 0 {
			y = 0
		} else if y >= h {
			y = h - 1
		}
		return int(src.Pix[y*src.Stride+x])
	}

	mag := make([]int, w*h)
	gxs := make([]int, w*h)
	gys := make([]int, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)
			i := y*w + x
			gxs[i], gys[i] = gx, gy
			mag[i] = abs(gx) + abs(gy)
		}
	}

	magAt := func(x, y int) int {
		if x < 0 || x >= w || y < 0 || y >= h {
			return 0
		}
		return mag[y*w+x]
	}

	state := make([]uint8, w*h)
	var stack []int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			m := mag[i]
			if m <= low {
				continue
			}

			ax, ay := float64(abs(gxs[i])), float64(abs(gys[i]))
			var prev, next int
			switch {
			case ay <= ax*tan22:
				prev, next = magAt(x-1, y), magAt(x+1, y)
			case ay > ax*tan67:
				prev, next = magAt(x, y-1), magAt(x, y+1)
			case (gxs[i] < 0) == (gys[i] < 0):
				prev, next = magAt(x-1, y-1), magAt(x+1, y+1)
			default:
				prev, next = magAt(x+1, y-1), magAt(x-1, y+1)
			}
			if m <= prev || m < next {
				continue
			}

			if m > high {
				state[i] = edgeStrong
				stack = append(stack, i)
			} else {
				state[i] = edgeWeak
			}
		}
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		dst.Pix[i] = 0xff

		x, y := i%w, i/w
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				j := ny*w + nx
				if state[j] == edgeWeak {
					state[j] = edgeStrong
					stack = append(stack, j)
				}
			}
		}
	}

	return dst
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
