package onnx

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"
)

var elementSizes = map[ort.TensorElementDataType]int64{
	ort.TensorElementDataTypeFloat:    4,
	ort.TensorElementDataTypeUint8:    1,
	ort.TensorElementDataTypeInt8:     1,
	ort.TensorElementDataTypeUint16:   2,
	ort.TensorElementDataTypeInt16:    2,
	ort.TensorElementDataTypeInt32:    4,
	ort.TensorElementDataTypeInt64:    8,
	ort.TensorElementDataTypeBool:     1,
	ort.TensorElementDataTypeFloat16:  2,
	ort.TensorElementDataTypeDouble:   8,
	ort.TensorElementDataTypeUint32:   4,
	ort.TensorElementDataTypeUint64:   8,
	ort.TensorElementDataTypeBFloat16: 2,
}

// staticShape replaces dynamic dimensions with 1 so a fixed buffer can be
// allocated for batch-of-one inference.
func staticShape(dims ort.Shape) ort.Shape {
	s := make(ort.Shape, len(dims))
	for i, d := range dims {
		if d <= 0 {
			d = 1
		}
		s[i] = d
	}
	return s
}

func byteSize(info ort.InputOutputInfo) (ort.Shape, int64, error) {
	size, ok := elementSizes[info.DataType]
	if !ok {
		return nil, 0, fmt.Errorf("%s: unsupported element type %v", info.Name, info.DataType)
	}
	shape := staticShape(info.Dimensions)
	return shape, shape.FlattenedSize() * size, nil
}

// tensor is an untyped byte view over an ONNX Runtime tensor.
type tensor struct {
	value *ort.CustomDataTensor
}

func newTensor(info ort.InputOutputInfo) (*tensor, error) {
	shape, n, err := byteSize(info)
	if err != nil {
		return nil, err
	}
	v, err := ort.NewCustomDataTensor(shape, make([]byte, n), info.DataType)
	if err != nil {
		return nil, err
	}
	return &tensor{value: v}, nil
}

func (t *tensor) ByteSize() int {
	return len(t.value.GetData())
}

func (t *tensor) CopyFromBuffer(b []byte) error {
	data := t.value.GetData()
	if len(b) != len(data) {
		return fmt.Errorf("buffer is %d bytes, tensor is %d", len(b), len(data))
	}
	copy(data, b)
	return nil
}

func (t *tensor) CopyToBuffer(b []byte) error {
	data := t.value.GetData()
	if len(b) != len(data) {
		return fmt.Errorf("buffer is %d bytes, tensor is %d", len(b), len(data))
	}
	copy(b, data)
	return nil
}

func (t *tensor) destroy() error {
	return t.value.Destroy()
}
