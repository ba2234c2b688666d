package session

import (
	"fmt"
	"sort"
	"sync"
)

// Priority is the scheduling hint handed to an accelerator delegate.
type Priority int

const (
	PriorityAuto Priority = iota
	PriorityMinLatency
)

// Accelerator configures an optional execution delegate.
type Accelerator struct {
	Priority           Priority
	AllowPrecisionLoss bool
}

type OptionsConfig struct {
	Threads     int
	Accelerator *Accelerator
}

// Backend is the inference runtime a session drives. Implementations wrap a
// concrete library and are otherwise opaque to this package.
type Backend interface {
	LoadModel(data []byte) (Model, error)
	// NewOptions builds interpreter options. When cfg.Accelerator is set the
	// delegate must be registered on the returned options, which then own it.
	NewOptions(cfg OptionsConfig) (Options, error)
	NewInterpreter(m Model, o Options) (Interpreter, error)
}

type Model interface {
	Close() error
}

type Options interface {
	Close() error
}

type Interpreter interface {
	AllocateTensors() error
	// InputTensor and OutputTensor return nil when index is out of range.
	InputTensor(index int) Tensor
	OutputTensor(index int) Tensor
	Invoke() error
	Close() error
}

type Tensor interface {
	ByteSize() int
	CopyFromBuffer(b []byte) error
	CopyToBuffer(b []byte) error
}

var (
	backendsMu sync.RWMutex
	backends   = make(map[string]Backend)
)

// Register makes a backend available by name. It panics if name is already
// taken or b is nil.
func Register(name string, b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	if b == nil {
		panic("session: Register backend is nil")
	}
	if _, dup := backends[name]; dup {
		panic("session: Register called twice for backend " + name)
	}
	backends[name] = b
}

func Lookup(name string) (Backend, error) {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend %q (registered: %v)", name, backendNames())
	}
	return b, nil
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	backendsMu.RLock()
	defer backendsMu.RUnlock()
	return backendNames()
}

func backendNames() []string {
	names := make([]string, 0, len(backends))
	for n := range backends {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
