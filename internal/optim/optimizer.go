// Package optim implements the parameter update rules used by trainable layers.
//
// Layers compute their own gradients by hand and hand them to an update
// rule, one sample at a time:
//
//	sgd := optim.SGD{LR: 0.1}
//	sgd.Step(weights, weightGrad)
//	sgd.Step(bias, biasGrad)
//
// There is no gradient accumulation and no batching: every Step is applied
// immediately.
package optim

import (
	"gonum.org/v1/gonum/mat"
)

// Optimizer updates a parameter matrix in place from its gradient.
type Optimizer interface {
	// Step applies one update: param is modified in place.
	Step(param *mat.Dense, grad mat.Matrix)

	// GetLR returns the current learning rate.
	GetLR() float64
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float64 // Learning rate
}
