// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides a feed-forward network trained by per-sample SGD.
//
// # Overview
//
// This package contains:
//   - Layers: Dense (y = x·W + b), Activation (Tanh, Sigmoid, ReLU)
//   - Loss functions: MaximumLikelihood (binary targets on logits), MSE
//   - Network: ordered layer stack with Add, Predict, Evaluate, Fit
//   - Persistence: StateDict, SaveWeights, LoadWeights (SafeTensors)
//
// # Basic Usage
//
//	import (
//	    "math/rand"
//
//	    "github.com/born-ml/mipnet/nn"
//	)
//
//	func main() {
//	    rng := rand.New(rand.NewSource(1))
//
//	    net := nn.NewNetwork(nn.MaximumLikelihood{})
//	    net.MustAdd(
//	        nn.NewDense(8, 16, rng),
//	        nn.NewTanh(),
//	        nn.NewDense(16, 2, rng),
//	    )
//
//	    history, err := net.Fit(rows, []int{8, 9}, nn.FitConfig{
//	        Epochs:       50,
//	        LearningRate: 0.1,
//	        Features:     []int{0, 1, 2, 3, 4, 5, 6, 7},
//	    })
//	}
//
// # Layers
//
// Dense: learnable affine transform, weights and biases drawn from [-0.5, 0.5)
//
//	layer := nn.NewDense(inputSize, outputSize, rng)
//
// Activation: stateless elementwise nonlinearity
//
//	tanh := nn.NewTanh()
//	custom := nn.NewActivation(nn.ActivationFunc{Name: "softsign", F: f, Prime: df})
//
// # Loss Functions
//
// MaximumLikelihood: Bernoulli log-likelihood on raw logits (numerically stable).
// Do not end the network with a squashing activation when using it.
//
// MSE: summed squared error.
//
// # Errors
//
// Add rejects incompatible widths with *ShapeMismatchError. Predict, Evaluate
// and Fit reject bad arguments with *ConfigurationError before touching any
// parameter, and Fit stops with *NumericOverflowError if the loss stops being
// finite. Each unwraps to ErrShapeMismatch, ErrConfiguration or
// ErrNumericOverflow respectively.
package nn
