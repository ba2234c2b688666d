// Package sessiontest provides an in-memory session.Backend for tests.
package sessiontest

import (
	"errors"
	"sync"

	"github.com/krau/konadepth/session"
)

var ErrInjected = errors.New("injected failure")

// Backend is a scripted session.Backend. Its interpreter runs Run, or copies
// the input into the output when Run is nil. Every call is recorded in Events.
type Backend struct {
	InputSize  int
	OutputSize int
	Run        func(in, out []byte) error

	FailLoad        bool
	FailOptions     bool
	FailInterpreter bool
	FailAllocate    bool
	NoInput         bool
	NoOutput        bool
	FailInvoke      bool
	FailCopyIn      bool
	FailCopyOut     bool

	mu      sync.Mutex
	events  []string
	options []session.OptionsConfig
}

var _ session.Backend = (*Backend)(nil)

func (b *Backend) record(e string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, e)
}

// Events returns the recorded calls in order.
func (b *Backend) Events() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.events...)
}

// Options returns every OptionsConfig passed to NewOptions.
func (b *Backend) Options() []session.OptionsConfig {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]session.OptionsConfig(nil), b.options...)
}

// Heal clears every injected failure.
func (b *Backend) Heal() {
	b.FailLoad, b.FailOptions, b.FailInterpreter, b.FailAllocate = false, false, false, false
	b.NoInput, b.NoOutput = false, false
	b.FailInvoke, b.FailCopyIn, b.FailCopyOut = false, false, false
}

func (b *Backend) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
	b.options = nil
}

type model struct{ b *Backend }

func (m *model) Close() error {
	m.b.record("close model")
	return nil
}

type options struct{ b *Backend }

func (o *options) Close() error {
	o.b.record("close options")
	return nil
}

func (b *Backend) LoadModel(data []byte) (session.Model, error) {
	b.record("load model")
	if b.FailLoad {
		return nil, ErrInjected
	}
	return &model{b: b}, nil
}

func (b *Backend) NewOptions(cfg session.OptionsConfig) (session.Options, error) {
	b.mu.Lock()
	b.options = append(b.options, cfg)
	b.mu.Unlock()
	if cfg.Accelerator != nil {
		b.record("options gpu")
	} else {
		b.record("options")
	}
	if b.FailOptions {
		return nil, ErrInjected
	}
	return &options{b: b}, nil
}

func (b *Backend) NewInterpreter(m session.Model, o session.Options) (session.Interpreter, error) {
	b.record("interpreter")
	if b.FailInterpreter {
		return nil, ErrInjected
	}
	return &interpreter{
		b:      b,
		input:  &tensor{b: b, name: "input", data: make([]byte, b.InputSize)},
		output: &tensor{b: b, name: "output", data: make([]byte, b.OutputSize)},
	}, nil
}

type interpreter struct {
	b      *Backend
	input  *tensor
	output *tensor
}

func (i *interpreter) AllocateTensors() error {
	i.b.record("allocate")
	if i.b.FailAllocate {
		return ErrInjected
	}
	return nil
}

func (i *interpreter) InputTensor(index int) session.Tensor {
	if index != 0 || i.b.NoInput {
		return nil
	}
	return i.input
}

func (i *interpreter) OutputTensor(index int) session.Tensor {
	if index != 0 || i.b.NoOutput {
		return nil
	}
	return i.output
}

func (i *interpreter) Invoke() error {
	i.b.record("invoke")
	if i.b.FailInvoke {
		return ErrInjected
	}
	if i.b.Run != nil {
		return i.b.Run(i.input.data, i.output.data)
	}
	copy(i.output.data, i.input.data)
	return nil
}

func (i *interpreter) Close() error {
	i.b.record("close interpreter")
	return nil
}

type tensor struct {
	b    *Backend
	name string
	data []byte
}

func (t *tensor) ByteSize() int { return len(t.data) }

func (t *tensor) CopyFromBuffer(p []byte) error {
	t.b.record("copy in")
	if t.b.FailCopyIn {
		return ErrInjected
	}
	copy(t.data, p)
	return nil
}

func (t *tensor) CopyToBuffer(p []byte) error {
	t.b.record("copy out")
	if t.b.FailCopyOut {
		return ErrInjected
	}
	copy(p, t.data)
	return nil
}
