package config

import (
	"os"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Token   string `toml:"token" mapstructure:"token"`
	Host    string `toml:"host" mapstructure:"host"`
	Port    string `toml:"port" mapstructure:"port"`
	Libonnx string `toml:"libonnx" mapstructure:"libonnx"`

	Backend    string `toml:"backend" mapstructure:"backend"`
	UseGPU     bool   `toml:"use_gpu" mapstructure:"use_gpu"`
	GPUDevice  int    `toml:"gpu_device" mapstructure:"gpu_device"`
	NumThreads int    `toml:"num_threads" mapstructure:"num_threads"`

	ModelUrl      string `toml:"model_url" mapstructure:"model_url"`
	ModelDir      string `toml:"model_dir" mapstructure:"model_dir"`
	ModelFileName string `toml:"model_file_name" mapstructure:"model_file_name"`

	InputWidth  int    `toml:"input_width" mapstructure:"input_width"`
	InputHeight int    `toml:"input_height" mapstructure:"input_height"`
	InputFormat string `toml:"input_format" mapstructure:"input_format"`
	// OutputWidth and OutputHeight default to the input size when zero.
	OutputWidth  int `toml:"output_width" mapstructure:"output_width"`
	OutputHeight int `toml:"output_height" mapstructure:"output_height"`

	ScaleFactor  float32  `toml:"scale_factor" mapstructure:"scale_factor"`
	// ColorMap names a built-in table, or "raw" to emit the scaled values
	// without a colour map. Colors, when set, replaces the named table.
	ColorMap     string   `toml:"color_map" mapstructure:"color_map"`
	Colors       []string `toml:"colors" mapstructure:"colors"`
	ColorWorkers int      `toml:"color_workers" mapstructure:"color_workers"`
}

// Default mirrors the Pydnet++ v2 setup: 640x384 RGB input and a disparity
// output in [0,1] scaled onto the 256-entry plasma table.
func Default() Config {
	return Config{
		Token:         "",
		Host:          "0.0.0.0",
		Port:          "8000",
		Backend:       "onnx",
		NumThreads:    4,
		ModelDir:      "models",
		ModelFileName: "pydnet.onnx",
		InputWidth:    640,
		InputHeight:   384,
		InputFormat:   "rgba",
		ScaleFactor:   255,
		ColorMap:      "plasma",
		ColorWorkers:  4,
	}
}

var (
	cfg      = Default()
	loadOnce sync.Once
)

// Load reads path over the defaults.
func Load(path string) (Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return c, err
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}

func C() Config {
	loadOnce.Do(func() {
		if _, err := os.Stat("config.toml"); err == nil {
			c, err := Load("config.toml")
			if err != nil {
				panic(err)
			}
			cfg = c
		}
	})
	return cfg
}
