package onnx

import (
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/krau/konadepth/config"
	"github.com/krau/konadepth/session"
	ort "github.com/yalue/onnxruntime_go"
)

func TestByteSize(t *testing.T) {
	tests := []struct {
		name  string
		info  ort.InputOutputInfo
		shape ort.Shape
		size  int64
	}{
		{
			name:  "pydnet input",
			info:  ort.InputOutputInfo{Name: "im0", DataType: ort.TensorElementDataTypeFloat, Dimensions: ort.NewShape(1, 384, 640, 3)},
			shape: ort.NewShape(1, 384, 640, 3),
			size:  384 * 640 * 3 * 4,
		},
		{
			name:  "dynamic batch",
			info:  ort.InputOutputInfo{Name: "x", DataType: ort.TensorElementDataTypeUint8, Dimensions: ort.NewShape(-1, 2, 2)},
			shape: ort.NewShape(1, 2, 2),
			size:  4,
		},
		{
			name:  "double",
			info:  ort.InputOutputInfo{Name: "d", DataType: ort.TensorElementDataTypeDouble, Dimensions: ort.NewShape(3)},
			shape: ort.NewShape(3),
			size:  24,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape, size, err := byteSize(tt.info)
			if err != nil {
				t.Fatalf("byteSize() error: %v", err)
			}
			if !slices.Equal(shape, tt.shape) {
				t.Errorf("shape = %v, want %v", shape, tt.shape)
			}
			if size != tt.size {
				t.Errorf("size = %d, want %d", size, tt.size)
			}
		})
	}

	_, _, err := byteSize(ort.InputOutputInfo{Name: "s", DataType: ort.TensorElementDataTypeString, Dimensions: ort.NewShape(1)})
	if err == nil {
		t.Error("byteSize(string) succeeded, want error")
	}
}

func TestFindLibPath(t *testing.T) {
	if got := findLibPath("/custom/libonnxruntime.so", "linux"); got != "/custom/libonnxruntime.so" {
		t.Errorf("override ignored: %q", got)
	}
	if got := findLibPath("", "plan9"); got != "" {
		t.Errorf("findLibPath(plan9) = %q, want empty", got)
	}

	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	if err := os.MkdirAll("onnxlibs", 0755); err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("onnxlibs", "onnxruntime.dll")
	if err := os.WriteFile(want, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if got := findLibPath("", "windows"); got != want {
		t.Errorf("findLibPath(windows) = %q, want %q", got, want)
	}
}

func TestRegistered(t *testing.T) {
	b, err := session.Lookup("onnx")
	if err != nil {
		t.Fatalf("Lookup(onnx) error: %v", err)
	}
	if _, ok := b.(Backend); !ok {
		t.Errorf("registered backend is %T", b)
	}
}

func TestFromConfig(t *testing.T) {
	c := config.Default()
	if b := FromConfig(c); b.DeviceID != 0 {
		t.Errorf("default DeviceID = %d, want 0", b.DeviceID)
	}
	c.GPUDevice = 2
	if b := FromConfig(c); b.DeviceID != 2 {
		t.Errorf("DeviceID = %d, want 2", b.DeviceID)
	}
}
