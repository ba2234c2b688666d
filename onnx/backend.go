// Package onnx is the ONNX Runtime session backend.
package onnx

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/krau/konadepth/config"
	"github.com/krau/konadepth/session"
	ort "github.com/yalue/onnxruntime_go"
)

func init() {
	session.Register("onnx", Backend{})
}

// Backend drives onnxruntime_go. Init must have succeeded before use.
type Backend struct {
	// DeviceID selects the CUDA device used when an accelerator is requested.
	DeviceID int
}

var _ session.Backend = Backend{}

// FromConfig returns the backend configured by c.
func FromConfig(c config.Config) Backend {
	return Backend{DeviceID: c.GPUDevice}
}

var errNoIO = errors.New("model declares no inputs or outputs")

type model struct {
	data    []byte
	inputs  []ort.InputOutputInfo
	outputs []ort.InputOutputInfo
}

func (m *model) Close() error {
	m.data = nil
	return nil
}

func (Backend) LoadModel(data []byte) (session.Model, error) {
	inputs, outputs, err := ort.GetInputOutputInfoWithONNXData(data)
	if err != nil {
		return nil, fmt.Errorf("failed to get model input/output info: %w", err)
	}
	if len(inputs) == 0 || len(outputs) == 0 {
		return nil, errNoIO
	}
	return &model{
		data:    append([]byte(nil), data...),
		inputs:  inputs,
		outputs: outputs,
	}, nil
}

type options struct {
	opts *ort.SessionOptions
	cuda *ort.CUDAProviderOptions
}

func (o *options) Close() error {
	var errs []error
	if o.cuda != nil {
		errs = append(errs, o.cuda.Destroy())
		o.cuda = nil
	}
	if o.opts != nil {
		errs = append(errs, o.opts.Destroy())
		o.opts = nil
	}
	return errors.Join(errs...)
}

func (b Backend) NewOptions(cfg session.OptionsConfig) (session.Options, error) {
	opts, err := ort.NewSessionOptions()
	if err != nil {
		return nil, fmt.Errorf("failed to create session options: %w", err)
	}
	o := &options{opts: opts}
	if err := opts.SetIntraOpNumThreads(cfg.Threads); err != nil {
		o.Close()
		return nil, fmt.Errorf("failed to set thread count: %w", err)
	}
	if cfg.Accelerator != nil {
		if err := b.appendCUDA(o, cfg.Accelerator); err != nil {
			o.Close()
			return nil, err
		}
	}
	return o, nil
}

// appendCUDA registers the CUDA execution provider. A min-latency priority
// selects the heuristic convolution search, which skips the exhaustive
// benchmark on the first run. CUDA has no precision-loss switch.
func (b Backend) appendCUDA(o *options, a *session.Accelerator) error {
	cuda, err := ort.NewCUDAProviderOptions()
	if err != nil {
		return fmt.Errorf("failed to create CUDA provider options: %w", err)
	}
	o.cuda = cuda
	settings := map[string]string{"device_id": strconv.Itoa(b.DeviceID)}
	if a.Priority == session.PriorityMinLatency {
		settings["cudnn_conv_algo_search"] = "HEURISTIC"
	}
	if err := cuda.Update(settings); err != nil {
		return fmt.Errorf("failed to configure CUDA provider: %w", err)
	}
	if err := o.opts.AppendExecutionProviderCUDA(cuda); err != nil {
		return fmt.Errorf("failed to append CUDA provider: %w", err)
	}
	slog.Info("CUDA execution provider enabled", slog.Int("device_id", b.DeviceID))
	return nil
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
	in, out := mm.inputs[0], mm.outputs[0]
	s, err := ort.NewDynamicAdvancedSessionWithONNXData(
		mm.data,
		[]string{in.Name},
		[]string{out.Name},
		oo.opts,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ONNX Runtime session: %w", err)
	}
	return &interpreter{session: s, inputInfo: in, outputInfo: out}, nil
}

type interpreter struct {
	session    *ort.DynamicAdvancedSession
	inputInfo  ort.InputOutputInfo
	outputInfo ort.InputOutputInfo
	input      *tensor
	output     *tensor
}

func (i *interpreter) AllocateTensors() error {
	if i.input != nil {
		return nil
	}
	in, err := newTensor(i.inputInfo)
	if err != nil {
		return fmt.Errorf("failed to create input tensor: %w", err)
	}
	out, err := newTensor(i.outputInfo)
	if err != nil {
		in.destroy()
		return fmt.Errorf("failed to create output tensor: %w", err)
	}
	i.input, i.output = in, out
	return nil
}

func (i *interpreter) InputTensor(index int) session.Tensor {
	if index != 0 || i.input == nil {
		return nil
	}
	return i.input
}

func (i *interpreter) OutputTensor(index int) session.Tensor {
	if index != 0 || i.output == nil {
		return nil
	}
	return i.output
}

func (i *interpreter) Invoke() error {
	return i.session.Run([]ort.Value{i.input.value}, []ort.Value{i.output.value})
}

func (i *interpreter) Close() error {
	var errs []error
	if i.input != nil {
		errs = append(errs, i.input.destroy())
		i.input = nil
	}
	if i.output != nil {
		errs = append(errs, i.output.destroy())
		i.output = nil
	}
	if i.session != nil {
		errs = append(errs, i.session.Destroy())
		i.session = nil
	}
	return errors.Join(errs...)
}
