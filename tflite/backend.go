//go:build tflite

// Package tflite is the TensorFlow Lite session backend. It needs cgo and
// libtensorflowlite_c, so it is only built with the tflite build tag.
package tflite

import (
	"errors"
	"fmt"

	"github.com/krau/konadepth/session"
	"github.com/mattn/go-tflite"
	"github.com/mattn/go-tflite/delegates"
	"github.com/mattn/go-tflite/delegates/xnnpack"
)

func init() {
	session.Register("tflite", Backend{})
}

// Backend drives the TensorFlow Lite C API. go-tflite ships no GPU delegate,
// so an accelerator request registers XNNPACK instead.
type Backend struct{}

var _ session.Backend = Backend{}

var (
	errModel       = errors.New("TfLiteModelCreate returned NULL")
	errInterpreter = errors.New("TfLiteInterpreterCreate returned NULL")
)

type model struct{ m *tflite.Model }

func (m *model) Close() error {
	m.m.Delete()
	return nil
}

func (Backend) LoadModel(data []byte) (session.Model, error) {
	m := tflite.NewModel(data)
	if m == nil {
		return nil, errModel
	}
	return &model{m: m}, nil
}

type options struct {
	o        *tflite.InterpreterOptions
	delegate delegates.Delegater
}

func (o *options) Close() error {
	o.o.Delete()
	if o.delegate != nil {
		o.delegate.Delete()
	}
	return nil
}

func (Backend) NewOptions(cfg session.OptionsConfig) (session.Options, error) {
	o := tflite.NewInterpreterOptions()
	if o == nil {
		return nil, errors.New("TfLiteInterpreterOptionsCreate returned NULL")
	}
	o.SetNumThread(cfg.Threads)
	opts := &options{o: o}
	if cfg.Accelerator != nil {
		d := xnnpack.New(xnnpack.DelegateOptions{NumThreads: int32(cfg.Threads)})
		if d == nil {
			o.Delete()
			return nil, errors.New("failed to create XNNPACK delegate")
		}
		o.AddDelegate(d)
		opts.delegate = d
	}
	return opts, nil
}

func (Backend) NewInterpreter(m session.Model, o session.Options) (session.Interpreter, error) {
	mm, ok := m.(*model)
	if !ok {
		return nil, fmt.Errorf("model %T was not loaded by this backend", m)
	}
	oo, ok := o.(*options)
	if !ok {
		return nil, fmt.Errorf("options %T were not created by this backend", o)
	}
	i := tflite.NewInterpreter(mm.m, oo.o)
	if i == nil {
		return nil, errInterpreter
	}
	return &interpreter{i: i}, nil
}

type interpreter struct{ i *tflite.Interpreter }

func (i *interpreter) AllocateTensors() error {
	return status("allocate tensors", i.i.AllocateTensors())
}

func (i *interpreter) InputTensor(index int) session.Tensor {
	if index < 0 || index >= i.i.GetInputTensorCount() {
		return nil
	}
	t := i.i.GetInputTensor(index)
	if t == nil {
		return nil
	}
	return &tensor{t: t}
}

func (i *interpreter) OutputTensor(index int) session.Tensor {
	if index < 0 || index >= i.i.GetOutputTensorCount() {
		return nil
	}
	t := i.i.GetOutputTensor(index)
	if t == nil {
		return nil
	}
	return &tensor{t: t}
}

func (i *interpreter) Invoke() error {
	return status("invoke", i.i.Invoke())
}

func (i *interpreter) Close() error {
	i.i.Delete()
	return nil
}

type tensor struct{ t *tflite.Tensor }

func (t *tensor) ByteSize() int {
	return int(t.t.ByteSize())
}

func (t *tensor) CopyFromBuffer(b []byte) error {
	return status("copy from buffer", t.t.CopyFromBuffer(b))
}

func (t *tensor) CopyToBuffer(b []byte) error {
	return status("copy to buffer", t.t.CopyToBuffer(b))
}

func status(op string, s tflite.Status) error {
	if s == tflite.OK {
		return nil
	}
	return fmt.Errorf("tflite %s: status %d", op, s)
}
