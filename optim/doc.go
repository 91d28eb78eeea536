// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides the parameter update rule used by Dense layers.
//
// Dense layers call it once per sample from their backward pass, so most
// users never touch it directly. It is exported for custom training loops
// over Dense.WeightGradient:
//
//	g := layer.WeightGradient(trace, outputErr)
//	optim.SGD{LR: 0.1}.Step(weights, g)
package optim
