package model

import (
	"fmt"
	"math"
	"slices"
	"strings"
)

// Tensor is an array-like numeric feature value stored in row-major order.
type Tensor struct {
	// Shape is the size of each dimension. An empty shape is a 0-dimensional
	// tensor holding exactly one element.
	Shape []int

	// Data holds Numel() elements in row-major order.
	Data []float64
}

// NewTensor creates a tensor and checks that data matches shape.
// Shapes whose element count does not fit in an int are rejected even when
// another dimension is zero.
func NewTensor(shape []int, data []float64) (*Tensor, error) {
	n := 1
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension %d", ErrInvalidTensor, d)
		}
		if d == 0 {
			continue
		}
		if n > math.MaxInt/d {
			return nil, fmt.Errorf("%w: shape %s is too large", ErrInvalidTensor, FormatShape(shape))
		}
		n *= d
	}
	if slices.Contains(shape, 0) {
		n = 0
	}
	if n != len(data) {
		return nil, fmt.Errorf("%w: shape %s needs %d elements, got %d",
			ErrInvalidTensor, FormatShape(shape), n, len(data))
	}
	return &Tensor{Shape: shape, Data: data}, nil
}

// Vector creates a 1-dimensional tensor over data.
func Vector(data ...float64) *Tensor {
	return &Tensor{Shape: []int{len(data)}, Data: data}
}

// Scalar creates a 0-dimensional tensor.
func Scalar(v float64) *Tensor {
	return &Tensor{Shape: []int{}, Data: []float64{v}}
}

// Numel returns the number of elements.
func (t *Tensor) Numel() int {
	return len(t.Data)
}

// IsScalar reports whether the tensor holds exactly one element.
// Such tensors are layer-level values; everything else is per channel.
func (t *Tensor) IsScalar() bool {
	return len(t.Data) == 1
}

// Channels returns the size of the leading dimension, which is the channel
// axis for per-channel statistics. 0-dimensional tensors have one channel
// and empty tensors have none, whatever their leading dimension.
func (t *Tensor) Channels() int {
	if len(t.Data) == 0 {
		return 0
	}
	if len(t.Shape) == 0 {
		return 1
	}
	return t.Shape[0]
}

// Channel returns the elements that belong to channel c.
func (t *Tensor) Channel(c int) []float64 {
	ch := t.Channels()
	if c < 0 || c >= ch || ch == 0 {
		return nil
	}
	stride := len(t.Data) / ch
	return t.Data[c*stride : (c+1)*stride]
}

// ChannelMean returns the mean of the elements of channel c.
// Multi-dimensional per-channel tensors (e.g. [out, in] weights) collapse
// to one number per channel this way.
func (t *Tensor) ChannelMean(c int) (float64, bool) {
	vals := t.Channel(c)
	if len(vals) == 0 {
		return 0, false
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals)), true
}

// Preview renders the first n elements, e.g. "[0.1, 0.2, 0.3, ...] (8)".
func (t *Tensor) Preview(n int) string {
	if t == nil {
		return "-"
	}
	if t.IsScalar() {
		return FormatNumber(t.Data[0])
	}

	var sb strings.Builder
	sb.WriteString("[")
	for i, v := range t.Data {
		if i == n {
			sb.WriteString(", ...")
			break
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(FormatNumber(v))
	}
	sb.WriteString("]")
	if len(t.Data) > n {
		sb.WriteString(fmt.Sprintf(" (%d)", len(t.Data)))
	}
	return sb.String()
}
