package optim

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// SGD implements plain stochastic gradient descent with a fixed step size.
//
// Update rule:
//
//	param = param - lr * gradient
//
// No momentum, weight decay or clipping is applied.
type SGD struct {
	LR float64 // Learning rate
}

// NewSGD creates a new SGD update rule.
func NewSGD(config Config) SGD {
	return SGD{LR: config.LR}
}

// Step performs param -= lr * grad.
//
// Panics if grad and param do not have the same dimensions.
func (s SGD) Step(param *mat.Dense, grad mat.Matrix) {
	pr, pc := param.Dims()
	gr, gc := grad.Dims()
	if pr != gr || pc != gc {
		panic(fmt.Sprintf("SGD.Step: gradient shape %dx%d does not match parameter shape %dx%d", gr, gc, pr, pc))
	}

	// param + (-lr) * grad
	param.Apply(func(i, j int, v float64) float64 {
		return v - s.LR*grad.At(i, j)
	}, param)
}

// GetLR returns the learning rate.
func (s SGD) GetLR() float64 {
	return s.LR
}

var _ Optimizer = SGD{}
