// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/born-ml/mipnet/internal/optim"
)

// Optimizer updates a parameter matrix in place from its gradient.
type Optimizer = optim.Optimizer

// Config represents the base configuration for optimizers.
type Config = optim.Config

// SGD represents plain stochastic gradient descent: param -= lr * grad.
type SGD = optim.SGD

// NewSGD creates a new SGD update rule.
//
// Example:
//
//	sgd := optim.NewSGD(optim.Config{LR: 0.1})
//	sgd.Step(weights, grad)
func NewSGD(config Config) SGD {
	return optim.NewSGD(config)
}
