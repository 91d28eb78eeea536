// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"math/rand"

	"github.com/born-ml/mipnet/internal/nn"
	"github.com/born-ml/mipnet/internal/parallel"
	"gonum.org/v1/gonum/mat"
)

// Layer is a unit mapping an input vector to an output vector with a
// hand-coded backward pass.
type Layer = nn.Layer

// Trace is the record of one forward pass, handed back to Backward.
type Trace = nn.Trace

// Layers

// Dense represents a fully connected layer.
type Dense = nn.Dense

// NewDense creates a Dense layer with weights and biases drawn from [-0.5, 0.5).
//
// Example:
//
//	layer := nn.NewDense(10, 4, rand.New(rand.NewSource(1)))
func NewDense(inputSize, outputSize int, rng *rand.Rand) *Dense {
	return nn.NewDense(inputSize, outputSize, rng)
}

// NewDenseFrom creates a Dense layer from explicit [in, out] weights and a
// [1, out] bias (nil for zeros).
func NewDenseFrom(weight, bias mat.Matrix) (*Dense, error) {
	return nn.NewDenseFrom(weight, bias)
}

// Activations

// ActivationFunc is a scalar function paired with its derivative.
type ActivationFunc = nn.ActivationFunc

// Activation applies an ActivationFunc elementwise.
type Activation = nn.Activation

// Predefined activation functions.
var (
	Tanh    = nn.Tanh
	Sigmoid = nn.Sigmoid
	ReLU    = nn.ReLU
)

// NewActivation creates an activation layer for fn.
func NewActivation(fn ActivationFunc) *Activation {
	return nn.NewActivation(fn)
}

// NewTanh creates a tanh activation layer.
func NewTanh() *Activation {
	return nn.NewTanh()
}

// NewSigmoid creates a sigmoid activation layer.
func NewSigmoid() *Activation {
	return nn.NewSigmoid()
}

// NewReLU creates a ReLU activation layer.
func NewReLU() *Activation {
	return nn.NewReLU()
}

// Loss Functions

// Loss scores a network output against a target vector.
type Loss = nn.Loss

// MaximumLikelihood is the Bernoulli negative log-likelihood on logits.
type MaximumLikelihood = nn.MaximumLikelihood

// MSE is the summed squared error.
type MSE = nn.MSE

// Network

// Network is an ordered stack of layers trained against one loss.
type Network = nn.Network

// FitConfig holds the training parameters for Network.Fit.
type FitConfig = nn.FitConfig

// EpochReport is the progress signal emitted after each epoch.
type EpochReport = nn.EpochReport

// History records the mean loss of every completed epoch.
type History = nn.History

// ParallelConfig controls how Predict and Evaluate spread samples over goroutines.
type ParallelConfig = parallel.Config

// NewNetwork creates an empty network. A nil loss selects MaximumLikelihood.
func NewNetwork(loss Loss) *Network {
	return nn.NewNetwork(loss)
}

// DefaultParallelConfig returns the worker configuration new networks start with.
func DefaultParallelConfig() ParallelConfig {
	return parallel.DefaultConfig()
}

// Persistence

// ArchitectureKey is the metadata key holding the saved architecture.
const ArchitectureKey = nn.ArchitectureKey

// SaveWeights writes the network's Dense parameters to a SafeTensors file.
func SaveWeights(path string, net *Network, metadata map[string]string) error {
	return nn.SaveWeights(path, net, metadata)
}

// LoadWeights reads a file written by SaveWeights into net.
func LoadWeights(path string, net *Network) (map[string]string, error) {
	return nn.LoadWeights(path, net)
}

// Errors

// Sentinel errors.
var (
	ErrShapeMismatch   = nn.ErrShapeMismatch
	ErrConfiguration   = nn.ErrConfiguration
	ErrNumericOverflow = nn.ErrNumericOverflow
)

// ShapeMismatchError reports adjacent layers whose widths disagree.
type ShapeMismatchError = nn.ShapeMismatchError

// ConfigurationError reports an invalid argument.
type ConfigurationError = nn.ConfigurationError

// NumericOverflowError reports a non-finite loss during training.
type NumericOverflowError = nn.NumericOverflowError
