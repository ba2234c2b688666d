package service

import (
	"context"
	"fmt"
	"image"

	"github.com/krau/konadepth/colormap"
	"github.com/krau/konadepth/normalize"
	"github.com/krau/konadepth/session"
)

// Predictor runs the depth pipeline over a single session. Requests share the
// session through a one-slot pool, so at most one inference runs at a time.
type Predictor struct {
	opts      Options
	modelPool chan *Model
}

// New checks that the session's tensors match opts: a float32 RGB input of
// Width x Height and a float32 output of OutputWidth x OutputHeight.
func New(s *session.Session, opts Options) (*Predictor, error) {
	if opts.Width <= 0 || opts.Height <= 0 || opts.OutputWidth <= 0 || opts.OutputHeight <= 0 {
		return nil, fmt.Errorf("%w: non-positive dimensions", ErrInvalidInput)
	}
	inLen := 3 * opts.Width * opts.Height
	outLen := opts.OutputWidth * opts.OutputHeight
	if got := s.InputSize(); got != 4*inLen {
		return nil, fmt.Errorf("model input is %d bytes, want %d for %dx%d RGB float32", got, 4*inLen, opts.Width, opts.Height)
	}
	if got := s.OutputSize(); got != 4*outLen {
		return nil, fmt.Errorf("model output is %d bytes, want %d for %dx%d float32", got, 4*outLen, opts.OutputWidth, opts.OutputHeight)
	}
	if !opts.Raw && len(opts.Table) == 0 {
		opts.Table = colormap.Plasma()
	}

	p := &Predictor{
		opts:      opts,
		modelPool: make(chan *Model, 1),
	}
	p.modelPool <- &Model{
		session: s,
		input:   make([]float32, inLen),
		output:  make([]float32, outLen),
	}
	return p, nil
}

func (p *Predictor) Options() Options {
	return p.opts
}

func (p *Predictor) acquire(ctx context.Context) (*Model, error) {
	select {
	case m := <-p.modelPool:
		if m == nil {
			p.modelPool <- nil
			return nil, ErrClosed
		}
		return m, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (p *Predictor) release(m *Model) {
	p.modelPool <- m
}

// Predict resizes img to the model input, runs inference and colour-maps
// the disparity.
func (p *Predictor) Predict(ctx context.Context, img image.Image) (*DepthResult, error) {
	inputData := normalize.Image(img, p.opts.Width, p.opts.Height)
	return p.run(ctx, func(dst []float32) {
		copy(dst, inputData)
	})
}

// PredictRaw runs on a pixel buffer that is already Width x Height in the
// given layout.
func (p *Predictor) PredictRaw(ctx context.Context, pix []byte, format normalize.Format) (*DepthResult, error) {
	if format == normalize.Unknown {
		format = p.opts.Format
	}
	want := format.Stride() * p.opts.Width * p.opts.Height
	if want == 0 || len(pix) != want {
		return nil, fmt.Errorf("%w: %s buffer is %d bytes, want %d", ErrInvalidInput, format, len(pix), want)
	}
	return p.run(ctx, func(dst []float32) {
		normalize.Buffer(format, pix, dst)
	})
}

func (p *Predictor) run(ctx context.Context, fill func(dst []float32)) (*DepthResult, error) {
	m, err := p.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer p.release(m)

	fill(m.input)
	if err := m.session.Invoke(session.Float32Bytes(m.input), session.Float32Bytes(m.output)); err != nil {
		return nil, err
	}

	depth := make([]float32, len(m.output))
	copy(depth, m.output)

	colors, err := p.Render(ctx, depth)
	if err != nil {
		return nil, err
	}
	return &DepthResult{
		Width:  p.opts.OutputWidth,
		Height: p.opts.OutputHeight,
		Depth:  depth,
		Colors: colors,
		Raw:    p.opts.Raw,
	}, nil
}

// Render maps a disparity buffer onto the colour table, or in raw mode
// writes the scaled values themselves.
func (p *Predictor) Render(ctx context.Context, depth []float32) ([]uint32, error) {
	colors := make([]uint32, len(depth))
	var err error
	if p.opts.Raw {
		err = colormap.RawParallel(ctx, depth, p.opts.ScaleFactor, colors, p.opts.Workers)
	} else {
		err = colormap.ApplyParallel(ctx, depth, p.opts.ScaleFactor, p.opts.Table, colors, p.opts.Workers)
	}
	if err != nil {
		return nil, err
	}
	return colors, nil
}

// Close deletes the session once any in-flight request has finished.
// Later calls fail with ErrClosed.
func (p *Predictor) Close() error {
	m := <-p.modelPool
	defer func() { p.modelPool <- nil }()
	if m == nil {
		return nil
	}
	return m.session.Delete()
}
