package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/krau/konadepth/colormap"
	"github.com/krau/konadepth/config"
	"github.com/krau/konadepth/normalize"
	"github.com/krau/konadepth/session"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrClosed       = errors.New("predictor closed")
)

type Options struct {
	Width        int
	Height       int
	OutputWidth  int
	OutputHeight int
	// Format is the pixel layout expected by PredictRaw.
	Format      normalize.Format
	ScaleFactor float32
	Table       colormap.Table
	// Raw skips the colour table and renders the scaled disparity itself.
	Raw         bool
	Workers     int
}

func OptionsFromConfig(c config.Config) (Options, error) {
	format := normalize.ParseFormat(c.InputFormat)
	if format == normalize.Unknown {
		return Options{}, fmt.Errorf("unknown input format %q", c.InputFormat)
	}

	var (
		table colormap.Table
		raw   bool
		err   error
	)
	switch {
	case strings.EqualFold(strings.TrimSpace(c.ColorMap), "raw"):
		raw = true
	case len(c.Colors) > 0:
		table, err = colormap.ParseHex(c.Colors)
	default:
		table, err = colormap.ByName(c.ColorMap)
	}
	if err != nil {
		return Options{}, err
	}

	o := Options{
		Width:        c.InputWidth,
		Height:       c.InputHeight,
		OutputWidth:  c.OutputWidth,
		OutputHeight: c.OutputHeight,
		Format:       format,
		ScaleFactor:  c.ScaleFactor,
		Table:        table,
		Raw:          raw,
		Workers:      c.ColorWorkers,
	}
	if o.OutputWidth == 0 || o.OutputHeight == 0 {
		o.OutputWidth, o.OutputHeight = o.Width, o.Height
	}
	return o, nil
}

// DepthResult is one disparity map and its colour rendering, both row-major.
type DepthResult struct {
	Width  int       `json:"width"`
	Height int       `json:"height"`
	Depth  []float32 `json:"depth"`
	Colors []uint32  `json:"-"`
	// Raw marks Colors as scaled values rather than packed colours.
	Raw bool `json:"-"`
}

// Model owns the session and the float buffers bound to its tensors.
type Model struct {
	session *session.Session
	input   []float32
	output  []float32
}
