// Package nn implements a small feed-forward network trained by per-sample
// stochastic gradient descent.
//
// This package provides building blocks for constructing networks:
//   - Layer interface: forward and hand-coded backward pass
//   - Dense: learnable affine transform y = x·W + b
//   - Activation: elementwise nonlinearity (Tanh, Sigmoid, ReLU)
//   - Loss functions: MaximumLikelihood (binary targets, logit space), MSE
//   - Network: ordered layer stack with Predict, Evaluate and Fit
//
// Layers keep no per-call cache. Forward returns a Trace that the caller
// hands back to the matching Backward call.
package nn

// Trace is the record of one forward pass through a layer.
//
// Backward needs the input seen by the matching Forward call. Input and
// Output are owned by the trace and must not be modified by the caller.
type Trace struct {
	Input  []float64
	Output []float64
}

// Layer is a unit mapping an input vector to an output vector that can also
// propagate gradients backward.
//
// The set of layers is closed: Dense and Activation are the only
// implementations.
//
//	net := nn.NewNetwork(nn.MaximumLikelihood{})
//	net.Add(nn.NewDense(10, 16, rng))
//	net.Add(nn.NewTanh())
//	net.Add(nn.NewDense(16, 4, rng))
type Layer interface {
	// Forward computes the layer output for input and returns it together
	// with the input in a Trace.
	//
	// Forward never modifies learnable parameters.
	Forward(input []float64) Trace

	// Backward takes dLoss/dOutput for the pass recorded in t and returns
	// dLoss/dInput. Layers with parameters update them in place with plain
	// gradient descent using step size lr.
	//
	// t must come from this layer's Forward, and parameters must not have
	// changed in between. This is not checked beyond vector lengths.
	Backward(t Trace, outputErr []float64, lr float64) []float64

	// outputWidth returns the width produced for an input of width in.
	// in is -1 when the width is not yet known.
	outputWidth(in int) (int, error)

	// inputWidth returns the required input width, or -1 for
	// width-preserving layers.
	inputWidth() int
}
