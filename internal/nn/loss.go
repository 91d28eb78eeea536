package nn

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Loss scores a network output against a target vector.
type Loss interface {
	// Loss returns the scalar loss.
	Loss(target, output []float64) float64

	// Gradient returns dLoss/dOutput.
	Gradient(target, output []float64) []float64
}

// MaximumLikelihood is the negative log-likelihood of binary targets under
// independent Bernoulli outputs, expressed directly on logits:
//
//	loss(y, z) = Σ y·ln(1 + e^(-z)) + (1 - y)·ln(1 + e^z)
//	dloss/dz   = σ(z) - y
//
// The final layer must not apply a squashing activation: the loss absorbs
// the sigmoid. Both terms are evaluated as softplus(x) = max(x, 0) + log1p(e^(-|x|)),
// so the loss stays finite for any finite logit.
type MaximumLikelihood struct{}

// Loss returns Σ y·softplus(-z) + (1 - y)·softplus(z).
func (MaximumLikelihood) Loss(target, output []float64) float64 {
	checkLengths("MaximumLikelihood.Loss", target, output)

	terms := make([]float64, len(output))
	for i, z := range output {
		y := target[i]
		terms[i] = y*softplus(-z) + (1-y)*softplus(z)
	}
	return floats.Sum(terms)
}

// Gradient returns σ(z) - y elementwise.
func (MaximumLikelihood) Gradient(target, output []float64) []float64 {
	checkLengths("MaximumLikelihood.Gradient", target, output)

	grad := make([]float64, len(output))
	for i, z := range output {
		grad[i] = sigmoid(z)
	}
	floats.Sub(grad, target)
	return grad
}

// MSE is the summed squared error Σ (z - y)².
type MSE struct{}

// Loss returns Σ (z - y)².
func (MSE) Loss(target, output []float64) float64 {
	checkLengths("MSE.Loss", target, output)

	diff := floats.SubTo(make([]float64, len(output)), output, target)
	return floats.Dot(diff, diff)
}

// Gradient returns 2(z - y).
func (MSE) Gradient(target, output []float64) []float64 {
	checkLengths("MSE.Gradient", target, output)

	grad := floats.SubTo(make([]float64, len(output)), output, target)
	floats.Scale(2, grad)
	return grad
}

// softplus computes ln(1 + e^x) without overflow.
func softplus(x float64) float64 {
	return math.Max(x, 0) + math.Log1p(math.Exp(-math.Abs(x)))
}

// sigmoid computes 1 / (1 + e^(-x)) without overflow.
func sigmoid(x float64) float64 {
	if x >= 0 {
		return 1 / (1 + math.Exp(-x))
	}
	e := math.Exp(x)
	return e / (1 + e)
}

func checkLengths(op string, target, output []float64) {
	if len(target) != len(output) {
		panic(fmt.Sprintf("%s: target has %d elements, output has %d", op, len(target), len(output)))
	}
}
