package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// ActivationFunc is a scalar function paired with its derivative.
type ActivationFunc struct {
	Name  string
	F     func(x float64) float64
	Prime func(x float64) float64
}

// Tanh is the hyperbolic tangent: f(x) = tanh(x), f'(x) = 1 - tanh(x)².
var Tanh = ActivationFunc{
	Name: "tanh",
	F:    math.Tanh,
	Prime: func(x float64) float64 {
		t := math.Tanh(x)
		return 1 - t*t
	},
}

// Sigmoid is the logistic function: σ(x) = 1 / (1 + exp(-x)), σ'(x) = σ(x)(1 - σ(x)).
var Sigmoid = ActivationFunc{
	Name: "sigmoid",
	F:    sigmoid,
	Prime: func(x float64) float64 {
		s := sigmoid(x)
		return s * (1 - s)
	},
}

// ReLU is the rectified linear unit: f(x) = max(0, x). f'(0) is taken as 0.
var ReLU = ActivationFunc{
	Name: "relu",
	F: func(x float64) float64 {
		return math.Max(0, x)
	},
	Prime: func(x float64) float64 {
		if x > 0 {
			return 1
		}
		return 0
	},
}

// Activation applies an ActivationFunc elementwise.
//
// It has no learnable parameters and preserves the width of its input.
//
// Example:
//
//	tanh := nn.NewTanh()
//	t := tanh.Forward([]float64{-1, 0, 1})  // t.Output in (-1, 1)
type Activation struct {
	fn ActivationFunc
}

// NewActivation creates an activation layer for fn.
//
// Panics if fn.F or fn.Prime is nil.
func NewActivation(fn ActivationFunc) *Activation {
	if fn.F == nil || fn.Prime == nil {
		panic(fmt.Sprintf("NewActivation: %q needs both a function and its derivative", fn.Name))
	}
	return &Activation{fn: fn}
}

// NewTanh creates a tanh activation layer, the default nonlinearity.
func NewTanh() *Activation {
	return NewActivation(Tanh)
}

// NewSigmoid creates a sigmoid activation layer.
func NewSigmoid() *Activation {
	return NewActivation(Sigmoid)
}

// NewReLU creates a ReLU activation layer.
func NewReLU() *Activation {
	return NewActivation(ReLU)
}

// Func returns the activation function pair.
func (a *Activation) Func() ActivationFunc {
	return a.fn
}

// Forward applies f elementwise.
func (a *Activation) Forward(input []float64) Trace {
	output := make([]float64, len(input))
	for i, x := range input {
		output[i] = a.fn.F(x)
	}
	return Trace{Input: input, Output: output}
}

// Backward returns f'(input) ⊙ outputErr. lr is unused.
func (a *Activation) Backward(t Trace, outputErr []float64, _ float64) []float64 {
	if len(outputErr) != len(t.Input) {
		panic(fmt.Sprintf("Activation.Backward: output error has %d elements, trace input has %d",
			len(outputErr), len(t.Input)))
	}

	inputErr := make([]float64, len(t.Input))
	for i, x := range t.Input {
		inputErr[i] = a.fn.Prime(x)
	}
	floats.Mul(inputErr, outputErr)
	return inputErr
}

// String returns the activation name.
func (a *Activation) String() string {
	return a.fn.Name
}

func (a *Activation) outputWidth(in int) (int, error) {
	return in, nil
}

func (a *Activation) inputWidth() int {
	return -1
}
