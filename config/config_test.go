package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
port = "9000"
backend = "tflite"
use_gpu = true
model_url = "gs://models/dsnet.onnx"
input_width = 448
input_height = 640
scale_factor = 10.5
color_map = "plasma_r"
colors = ["#0D0887", "F0F921"]
gpu_device = 1
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if c.Port != "9000" || c.Backend != "tflite" || !c.UseGPU {
		t.Errorf("Load() = %+v", c)
	}
	if c.InputWidth != 448 || c.InputHeight != 640 || c.ScaleFactor != 10.5 {
		t.Errorf("input = %dx%d scale %v", c.InputWidth, c.InputHeight, c.ScaleFactor)
	}
	if c.ModelUrl != "gs://models/dsnet.onnx" || c.ColorMap != "plasma_r" {
		t.Errorf("model/colour = %q %q", c.ModelUrl, c.ColorMap)
	}
	if len(c.Colors) != 2 || c.Colors[0] != "#0D0887" || c.GPUDevice != 1 {
		t.Errorf("colors/device = %v %d", c.Colors, c.GPUDevice)
	}
	if c.Host != "0.0.0.0" || c.NumThreads != 4 || c.ModelDir != "models" {
		t.Errorf("defaults lost: %+v", c)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("Load(missing) succeeded")
	}

	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("port = [1"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load(bad) succeeded")
	}
}

func TestDefault(t *testing.T) {
	c := Default()
	if c.NumThreads != 4 || c.Backend != "onnx" || c.InputFormat != "rgba" {
		t.Errorf("Default() = %+v", c)
	}
}
