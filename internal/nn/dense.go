package nn

import (
	"fmt"
	"math/rand"

	"github.com/born-ml/mipnet/internal/optim"
	"gonum.org/v1/gonum/mat"
)

// Dense implements a fully connected layer.
//
// Performs the transformation: y = x·W + b
// where:
//   - x is the input row vector with inputSize elements
//   - W is the weight matrix with shape [inputSize, outputSize]
//   - b is the bias row vector with shape [1, outputSize]
//   - y is the output row vector with outputSize elements
//
// Backward applies plain SGD to W and b immediately, once per sample.
type Dense struct {
	inputSize  int
	outputSize int
	weight     *mat.Dense // [inputSize, outputSize]
	bias       *mat.Dense // [1, outputSize]
}

// NewDense creates a Dense layer with weights and biases drawn uniformly
// from [-0.5, 0.5).
//
// Weights are drawn before biases, both in row-major order. Pass a seeded
// rng for reproducible initialization, or nil to use math/rand's global
// source.
//
// Panics if either size is not positive.
func NewDense(inputSize, outputSize int, rng *rand.Rand) *Dense {
	if inputSize <= 0 || outputSize <= 0 {
		panic(fmt.Sprintf("NewDense: sizes must be positive, got %d→%d", inputSize, outputSize))
	}

	return &Dense{
		inputSize:  inputSize,
		outputSize: outputSize,
		weight:     Uniform(inputSize, outputSize, -0.5, 0.5, rng),
		bias:       Uniform(1, outputSize, -0.5, 0.5, rng),
	}
}

// NewDenseFrom creates a Dense layer from explicit parameters.
//
// weight must be [in, out] and bias [1, out]. A nil bias means zeros.
// Both are copied.
func NewDenseFrom(weight, bias mat.Matrix) (*Dense, error) {
	if weight == nil {
		return nil, configError("weight", "must not be nil")
	}
	in, out := weight.Dims()
	if in == 0 || out == 0 {
		return nil, configError("weight", "empty matrix")
	}

	b := Zeros(1, out)
	if bias != nil {
		if r, c := bias.Dims(); r != 1 || c != out {
			return nil, configError("bias", "shape %dx%d, want 1x%d", r, c, out)
		}
		b.Copy(bias)
	}

	return &Dense{
		inputSize:  in,
		outputSize: out,
		weight:     mat.DenseCopyOf(weight),
		bias:       b,
	}, nil
}

// Forward computes x·W + b.
//
// Panics if len(input) != InputSize().
func (d *Dense) Forward(input []float64) Trace {
	if len(input) != d.inputSize {
		panic(fmt.Sprintf("Dense.Forward: expected input with %d features, got %d", d.inputSize, len(input)))
	}

	x := mat.NewDense(1, d.inputSize, input)

	var y mat.Dense
	y.Mul(x, d.weight)
	y.Add(&y, d.bias)

	return Trace{Input: input, Output: y.RawRowView(0)}
}

// Backward propagates outputErr = dLoss/dy and updates W and b.
//
//	inputErr = outputErr·Wᵗ   (with W before the update)
//	W -= lr · xᵗ·outputErr
//	b -= lr · outputErr
func (d *Dense) Backward(t Trace, outputErr []float64, lr float64) []float64 {
	if len(outputErr) != d.outputSize {
		panic(fmt.Sprintf("Dense.Backward: expected output error with %d elements, got %d", d.outputSize, len(outputErr)))
	}

	e := mat.NewDense(1, d.outputSize, outputErr)

	var inputErr mat.Dense
	inputErr.Mul(e, d.weight.T())

	weightGrad := d.WeightGradient(t, outputErr)

	sgd := optim.NewSGD(optim.Config{LR: lr})
	sgd.Step(d.weight, weightGrad)
	sgd.Step(d.bias, e)

	return inputErr.RawRowView(0)
}

// WeightGradient returns dLoss/dW = xᵗ·outputErr for the pass recorded in t.
//
// The layer is not modified.
func (d *Dense) WeightGradient(t Trace, outputErr []float64) *mat.Dense {
	if len(t.Input) != d.inputSize {
		panic(fmt.Sprintf("Dense.WeightGradient: trace input has %d elements, want %d", len(t.Input), d.inputSize))
	}
	if len(outputErr) != d.outputSize {
		panic(fmt.Sprintf("Dense.WeightGradient: output error has %d elements, want %d", len(outputErr), d.outputSize))
	}

	x := mat.NewDense(1, d.inputSize, t.Input)
	e := mat.NewDense(1, d.outputSize, outputErr)

	var g mat.Dense
	g.Mul(x.T(), e)
	return &g
}

// InputSize returns the number of input features.
func (d *Dense) InputSize() int {
	return d.inputSize
}

// OutputSize returns the number of output features.
func (d *Dense) OutputSize() int {
	return d.outputSize
}

// Weights returns a copy of the weight matrix.
func (d *Dense) Weights() *mat.Dense {
	return mat.DenseCopyOf(d.weight)
}

// Bias returns a copy of the bias row.
func (d *Dense) Bias() *mat.Dense {
	return mat.DenseCopyOf(d.bias)
}

// StateDict returns copies of the parameters keyed "weight" and "bias".
func (d *Dense) StateDict() map[string]*mat.Dense {
	return map[string]*mat.Dense{
		"weight": d.Weights(),
		"bias":   d.Bias(),
	}
}

// LoadStateDict overwrites the parameters from a state dictionary.
func (d *Dense) LoadStateDict(stateDict map[string]*mat.Dense) error {
	weight, ok := stateDict["weight"]
	if !ok || weight == nil {
		return fmt.Errorf("missing weight in state dict")
	}
	if r, c := weight.Dims(); r != d.inputSize || c != d.outputSize {
		return fmt.Errorf("%w: weight shape %dx%d, expected %dx%d",
			ErrShapeMismatch, r, c, d.inputSize, d.outputSize)
	}

	bias, ok := stateDict["bias"]
	if !ok || bias == nil {
		return fmt.Errorf("missing bias in state dict")
	}
	if r, c := bias.Dims(); r != 1 || c != d.outputSize {
		return fmt.Errorf("%w: bias shape %dx%d, expected 1x%d",
			ErrShapeMismatch, r, c, d.outputSize)
	}

	d.weight.Copy(weight)
	d.bias.Copy(bias)
	return nil
}

// String describes the layer, e.g. "dense(3x4)".
func (d *Dense) String() string {
	return fmt.Sprintf("dense(%dx%d)", d.inputSize, d.outputSize)
}

func (d *Dense) outputWidth(in int) (int, error) {
	if in >= 0 && in != d.inputSize {
		return 0, &ShapeMismatchError{Want: in, Got: d.inputSize}
	}
	return d.outputSize, nil
}

func (d *Dense) inputWidth() int {
	return d.inputSize
}
