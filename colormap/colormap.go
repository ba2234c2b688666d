// Package colormap renders a scalar prediction map as packed 0xRRGGBB colours
// by nearest-index lookup into a colour table.
package colormap

import (
	"context"
	"fmt"
	"image"
	"math"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Table is an ordered list of packed 0xRRGGBB colours.
type Table []uint32

// Index returns trunc(v*scale) clamped to [0, n-1]. NaN maps to 0.
func Index(v, scale float32, n int) int {
	if n <= 0 {
		return 0
	}
	f := v * scale
	last := n - 1
	switch {
	case math.IsNaN(float64(f)), f <= 0:
		return 0
	case f >= float32(last):
		return last
	}
	return int(f)
}

// Apply writes out[i] = table[Index(pred[i], scale, len(table))] for every i
// in [start, end). It always succeeds: the range is clipped to what both
// pred and out can hold, and an empty table leaves out untouched.
func Apply(start, end int, pred []float32, scale float32, table Table, out []uint32) {
	if len(table) == 0 {
		return
	}
	start, end = clip(start, end, len(pred), len(out))
	for i := start; i < end; i++ {
		out[i] = table[Index(pred[i], scale, len(table))]
	}
}

// Raw writes the scaled prediction itself, truncated toward zero and clamped
// to [0, MaxInt32), instead of a colour. Negative values become 0 since out
// is unsigned.
func Raw(start, end int, pred []float32, scale float32, out []uint32) {
	start, end = clip(start, end, len(pred), len(out))
	for i := start; i < end; i++ {
		out[i] = uint32(Index(pred[i], scale, math.MaxInt32))
	}
}

// ApplyParallel splits the whole prediction map into contiguous chunks and
// maps them concurrently, one chunk per worker.
func ApplyParallel(ctx context.Context, pred []float32, scale float32, table Table, out []uint32, workers int) error {
	return parallel(ctx, min(len(pred), len(out)), workers, func(start, end int) {
		Apply(start, end, pred, scale, table, out)
	})
}

// RawParallel is ApplyParallel for the no-colour-map mode.
func RawParallel(ctx context.Context, pred []float32, scale float32, out []uint32, workers int) error {
	return parallel(ctx, min(len(pred), len(out)), workers, func(start, end int) {
		Raw(start, end, pred, scale, out)
	})
}

func parallel(ctx context.Context, n, workers int, fn func(start, end int)) error {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if n == 0 {
		return nil
	}
	chunk := (n + workers - 1) / workers

	g, ctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunk {
		start, end := start, min(start+chunk, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(start, end)
			return nil
		})
	}
	return g.Wait()
}

func clip(start, end, a, b int) (int, int) {
	end = min(end, a, b)
	start = max(start, 0)
	if start > end {
		start = end
	}
	return start, end
}

// ParseHex parses colours written as "#RRGGBB", "0xRRGGBB" or "RRGGBB".
func ParseHex(colors []string) (Table, error) {
	t := make(Table, 0, len(colors))
	for _, c := range colors {
		s := strings.TrimSpace(c)
		s = strings.TrimPrefix(s, "#")
		s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
		if len(s) != 6 {
			return nil, fmt.Errorf("invalid colour %q", c)
		}
		v, err := strconv.ParseUint(s, 16, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid colour %q: %w", c, err)
		}
		t = append(t, uint32(v))
	}
	return t, nil
}

// ByName returns a built-in table. "plasma_r" is plasma reversed.
func ByName(name string) (Table, error) {
	switch strings.ToLower(name) {
	case "", "plasma":
		return Plasma(), nil
	case "plasma_r":
		t := Plasma()
		for i, j := 0, len(t)-1; i < j; i, j = i+1, j-1 {
			t[i], t[j] = t[j], t[i]
		}
		return t, nil
	case "gray", "grey":
		t := make(Table, 256)
		for i := range t {
			v := uint32(i)
			t[i] = v<<16 | v<<8 | v
		}
		return t, nil
	default:
		return nil, fmt.Errorf("unknown colour map %q", name)
	}
}

// Image wraps packed colours in an opaque w x h image.
func Image(colors []uint32, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	n := min(len(colors), w*h)
	for i := 0; i < n; i++ {
		c := colors[i]
		p := img.Pix[i*4 : i*4+4 : i*4+4]
		p[0] = uint8(c >> 16)
		p[1] = uint8(c >> 8)
		p[2] = uint8(c)
		p[3] = 0xFF
	}
	return img
}

// GrayImage renders raw values as an opaque grayscale image, saturating at
// 255.
func GrayImage(values []uint32, w, h int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	n := min(len(values), w*h)
	for i := 0; i < n; i++ {
		img.Pix[i] = uint8(min(values[i], 0xFF))
	}
	return img
}
