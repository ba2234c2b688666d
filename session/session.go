// Package session manages the lifecycle of a single inference interpreter:
// create it from raw model bytes, invoke it with byte-exact tensor copies,
// and delete it.
//
// A Host holds at most one live Session. A Session is not safe for
// concurrent use; callers serialise Invoke and Delete themselves.
package session

import (
	"errors"
	"sync"
	"unsafe"
)

// DefaultThreads is the worker thread count used when CreateOptions leaves
// Threads unset.
const DefaultThreads = 4

type CreateOptions struct {
	UseGPU  bool
	Threads int
}

type Host struct {
	backend Backend

	mu   sync.Mutex
	live *Session
}

func NewHost(b Backend) *Host {
	return &Host{backend: b}
}

type Session struct {
	host *Host

	model   Model
	options Options
	interp  Interpreter
	input   Tensor
	output  Tensor
}

// Create loads model and builds a ready interpreter. It fails with KindInit
// while another session from this host is live, leaving that session alone.
func (h *Host) Create(model []byte, opts CreateOptions) (*Session, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.live != nil {
		return nil, newError("create", KindInit, ErrAlreadyCreated)
	}
	if len(model) == 0 {
		return nil, newError("create", KindReadModel, ErrEmptyModel)
	}

	s := &Session{host: h}

	m, err := h.backend.LoadModel(model)
	if err != nil || m == nil {
		return nil, newError("create", KindReadModel, orNil(err, "model"))
	}
	s.model = m

	cfg := OptionsConfig{Threads: opts.Threads}
	if cfg.Threads <= 0 {
		cfg.Threads = DefaultThreads
	}
	if opts.UseGPU {
		cfg.Accelerator = &Accelerator{
			Priority:           PriorityMinLatency,
			AllowPrecisionLoss: true,
		}
	}
	o, err := h.backend.NewOptions(cfg)
	if err != nil || o == nil {
		s.release()
		return nil, newError("create", KindOptions, orNil(err, "options"))
	}
	s.options = o

	interp, err := h.backend.NewInterpreter(m, o)
	if err != nil || interp == nil {
		s.release()
		return nil, newError("create", KindInterpreter, orNil(err, "interpreter"))
	}
	s.interp = interp

	if err := interp.AllocateTensors(); err != nil {
		s.release()
		return nil, newError("create", KindTensor, err)
	}
	s.input = interp.InputTensor(0)
	s.output = interp.OutputTensor(0)
	if s.input == nil || s.output == nil {
		s.release()
		return nil, newError("create", KindTensor, ErrNoTensor)
	}

	h.live = s
	return s, nil
}

// Active returns the live session, or nil.
func (h *Host) Active() *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.live
}

// Delete deletes the live session if there is one. It always succeeds.
func (h *Host) Delete() error {
	if s := h.Active(); s != nil {
		return s.Delete()
	}
	return nil
}

// InputSize returns the byte size of the first input tensor, or 0 once deleted.
func (s *Session) InputSize() int {
	if s.input == nil {
		return 0
	}
	return s.input.ByteSize()
}

func (s *Session) OutputSize() int {
	if s.output == nil {
		return 0
	}
	return s.output.ByteSize()
}

// Invoke copies in into the input tensor, runs one forward pass and copies
// the output tensor into out. Both lengths must equal the tensor byte sizes
// exactly; otherwise nothing is copied.
func (s *Session) Invoke(in, out []byte) error {
	if s.interp == nil {
		return newError("invoke", KindInit, ErrClosed)
	}
	if len(in) != s.input.ByteSize() || len(out) != s.output.ByteSize() {
		return newError("invoke", KindInvalidSize, nil)
	}
	if err := s.input.CopyFromBuffer(in); err != nil {
		return newError("invoke", KindCopyBuffer, err)
	}
	if err := s.interp.Invoke(); err != nil {
		return newError("invoke", KindInvoke, err)
	}
	if err := s.output.CopyToBuffer(out); err != nil {
		return newError("invoke", KindCopyBuffer, err)
	}
	return nil
}

// Delete releases the interpreter, options and model, in that order, and
// frees the host for a new session. Calling it again is a no-op.
func (s *Session) Delete() error {
	s.host.mu.Lock()
	defer s.host.mu.Unlock()

	s.release()
	if s.host.live == s {
		s.host.live = nil
	}
	return nil
}

// release ignores close errors: teardown has no failure path.
func (s *Session) release() {
	if s.interp != nil {
		_ = s.interp.Close()
		s.interp = nil
	}
	if s.options != nil {
		_ = s.options.Close()
		s.options = nil
	}
	if s.model != nil {
		_ = s.model.Close()
		s.model = nil
	}
	s.input = nil
	s.output = nil
}

func orNil(err error, what string) error {
	if err != nil {
		return err
	}
	return errors.New(what + " is nil")
}

// Float32Bytes views f as raw bytes in native byte order without copying.
func Float32Bytes(f []float32) []byte {
	if len(f) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(f))), len(f)*4)
}
