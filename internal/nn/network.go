package nn

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/born-ml/mipnet/internal/parallel"
)

// Network is an ordered stack of layers trained against one loss.
//
// Layers run in insertion order on the forward pass and in reverse order on
// the backward pass. Widths are checked as layers are added.
//
// Example:
//
//	rng := rand.New(rand.NewSource(1))
//	net := nn.NewNetwork(nn.MaximumLikelihood{})
//	if err := net.Add(nn.NewDense(8, 16, rng)); err != nil { ... }
//	if err := net.Add(nn.NewTanh()); err != nil { ... }
//	if err := net.Add(nn.NewDense(16, 2, rng)); err != nil { ... }
//
//	history, err := net.Fit(rows, []int{8, 9}, nn.FitConfig{
//	    Epochs:       50,
//	    LearningRate: 0.1,
//	    Features:     []int{0, 1, 2, 3, 4, 5, 6, 7},
//	})
//
// Fit mutates parameters and must not run concurrently with anything else
// on the same network. Predict and Evaluate only read parameters.
type Network struct {
	layers   []Layer
	loss     Loss
	in       int // required input width, -1 until a Dense layer is added
	out      int // current output width, -1 while unknown
	parallel parallel.Config
}

// NewNetwork creates an empty network. A nil loss selects MaximumLikelihood.
func NewNetwork(loss Loss) *Network {
	if loss == nil {
		loss = MaximumLikelihood{}
	}
	return &Network{
		loss:     loss,
		in:       -1,
		out:      -1,
		parallel: parallel.DefaultConfig(),
	}
}

// Add appends a layer.
//
// Returns a *ShapeMismatchError if the layer's input width differs from the
// width produced by the layers before it. The network is unchanged on error.
func (n *Network) Add(layer Layer) error {
	if layer == nil {
		return configError("layer", "must not be nil")
	}

	out, err := layer.outputWidth(n.out)
	if err != nil {
		var sm *ShapeMismatchError
		if errors.As(err, &sm) {
			sm.Layer = len(n.layers)
		}
		return err
	}

	if n.in < 0 {
		n.in = layer.inputWidth()
	}
	n.out = out
	n.layers = append(n.layers, layer)
	return nil
}

// MustAdd is like Add but panics on error. Useful for static architectures.
func (n *Network) MustAdd(layers ...Layer) *Network {
	for _, l := range layers {
		if err := n.Add(l); err != nil {
			panic(err)
		}
	}
	return n
}

// Len returns the number of layers.
func (n *Network) Len() int {
	return len(n.layers)
}

// Layer returns the layer at index.
//
// Panics if index is out of bounds.
func (n *Network) Layer(index int) Layer {
	if index < 0 || index >= len(n.layers) {
		panic("Network.Layer: index out of bounds")
	}
	return n.layers[index]
}

// Loss returns the loss function used by Fit and Evaluate.
func (n *Network) Loss() Loss {
	return n.loss
}

// InputWidth returns the width the first Dense layer expects, or -1 if the
// network has no Dense layer.
func (n *Network) InputWidth() int {
	return n.in
}

// OutputWidth returns the width of the last layer's output, or -1 if it
// depends on the input width.
func (n *Network) OutputWidth() int {
	return n.out
}

// SetParallel replaces the worker configuration used by Predict and Evaluate.
func (n *Network) SetParallel(cfg parallel.Config) {
	n.parallel = cfg
}

// String describes the architecture, e.g. "dense(3x4),tanh,dense(4x1)".
func (n *Network) String() string {
	parts := make([]string, len(n.layers))
	for i, l := range n.layers {
		parts[i] = fmt.Sprint(l)
	}
	return strings.Join(parts, ",")
}

// forward runs input through every layer and returns one trace per layer.
func (n *Network) forward(input []float64) []Trace {
	traces := make([]Trace, len(n.layers))
	x := input
	for i, layer := range n.layers {
		traces[i] = layer.Forward(x)
		x = traces[i].Output
	}
	return traces
}

// output runs input through every layer and returns the final output.
func (n *Network) output(input []float64) []float64 {
	x := input
	for _, layer := range n.layers {
		x = layer.Forward(x).Output
	}
	return x
}

// backward propagates grad through the layers in reverse order, updating
// parameters as it goes.
func (n *Network) backward(traces []Trace, grad []float64, lr float64) {
	for i := len(n.layers) - 1; i >= 0; i-- {
		grad = n.layers[i].Backward(traces[i], grad, lr)
	}
}

// Predict returns the final-layer output for every sample, in order.
//
// Parameters are not modified. Samples are evaluated concurrently when the
// batch is large enough.
func (n *Network) Predict(samples [][]float64) ([][]float64, error) {
	if len(n.layers) == 0 {
		return nil, configError("layers", "network has no layers")
	}
	for i, s := range samples {
		if n.in >= 0 && len(s) != n.in {
			return nil, configError(fmt.Sprintf("samples[%d]", i), "width %d, network expects %d", len(s), n.in)
		}
	}

	outputs := make([][]float64, len(samples))
	parallel.For(len(samples), func(i int) {
		outputs[i] = n.output(samples[i])
	}, n.parallel)

	return outputs, nil
}

// Evaluate returns the mean loss over rows without updating parameters.
//
// targets and features have the same meaning as in Fit.
func (n *Network) Evaluate(rows [][]float64, targets, features []int) (float64, error) {
	inputs, ys, err := n.prepare(rows, targets, features)
	if err != nil {
		return 0, err
	}

	total := parallel.Sum(len(inputs), func(i int) float64 {
		return n.loss.Loss(ys[i], n.output(inputs[i]))
	}, n.parallel)

	return total / float64(len(inputs)), nil
}

// FitConfig holds the training parameters for Fit.
type FitConfig struct {
	Epochs       int     // Number of full passes over the rows (>= 1)
	LearningRate float64 // SGD step size (> 0)

	// Features selects the row columns fed to the network, in order.
	// Nil feeds the whole row, target columns included.
	Features []int

	// OnEpoch, if set, is called after every epoch.
	OnEpoch func(EpochReport)
}

// EpochReport is the progress signal emitted after each epoch.
type EpochReport struct {
	Epoch   int           // 1-based epoch just finished
	Epochs  int           // Total epochs
	Loss    float64       // Mean loss over the epoch's samples
	Elapsed time.Duration // Wall time of the epoch
}

// History records the mean loss of every completed epoch.
type History struct {
	Loss []float64
}

// Final returns the mean loss of the last completed epoch, or NaN if none.
func (h History) Final() float64 {
	if len(h.Loss) == 0 {
		return math.NaN()
	}
	return h.Loss[len(h.Loss)-1]
}

// Fit trains the network with per-sample stochastic gradient descent.
//
// For cfg.Epochs passes over rows in their given order, each row is pushed
// forward, scored against its target columns, and the loss gradient is
// pushed back through the layers in reverse, every layer updating its own
// parameters immediately. There is no shuffling, batching or early stopping.
//
// All arguments are validated before any parameter changes; failures are
// *ConfigurationError. If the loss becomes NaN or infinite, Fit stops and
// returns the history so far with a *NumericOverflowError.
func (n *Network) Fit(rows [][]float64, targets []int, cfg FitConfig) (History, error) {
	if cfg.Epochs < 1 {
		return History{}, configError("epochs", "must be at least 1, got %d", cfg.Epochs)
	}
	if !(cfg.LearningRate > 0) || math.IsInf(cfg.LearningRate, 0) {
		return History{}, configError("learning rate", "must be positive and finite, got %v", cfg.LearningRate)
	}

	inputs, ys, err := n.prepare(rows, targets, cfg.Features)
	if err != nil {
		return History{}, err
	}

	history := History{Loss: make([]float64, 0, cfg.Epochs)}
	for epoch := 1; epoch <= cfg.Epochs; epoch++ {
		start := time.Now()

		var total float64
		for j, x := range inputs {
			traces := n.forward(x)
			out := traces[len(traces)-1].Output

			loss := n.loss.Loss(ys[j], out)
			if math.IsNaN(loss) || math.IsInf(loss, 0) {
				return history, &NumericOverflowError{Epoch: epoch, Sample: j, Value: loss}
			}
			total += loss

			n.backward(traces, n.loss.Gradient(ys[j], out), cfg.LearningRate)
		}

		mean := total / float64(len(inputs))
		history.Loss = append(history.Loss, mean)
		if cfg.OnEpoch != nil {
			cfg.OnEpoch(EpochReport{
				Epoch:   epoch,
				Epochs:  cfg.Epochs,
				Loss:    mean,
				Elapsed: time.Since(start),
			})
		}
	}

	return history, nil
}

// prepare validates a table against the network and splits it into network
// inputs and target vectors.
func (n *Network) prepare(rows [][]float64, targets, features []int) (inputs, ys [][]float64, err error) {
	if len(n.layers) == 0 {
		return nil, nil, configError("layers", "network has no layers")
	}
	if len(rows) == 0 {
		return nil, nil, configError("rows", "no training rows")
	}
	if len(targets) == 0 {
		return nil, nil, configError("targets", "no target columns")
	}
	if features != nil && len(features) == 0 {
		return nil, nil, configError("features", "empty feature selection")
	}

	inputs = make([][]float64, len(rows))
	ys = make([][]float64, len(rows))
	for r, row := range rows {
		field := fmt.Sprintf("rows[%d]", r)

		y := make([]float64, len(targets))
		for i, c := range targets {
			if c < 0 || c >= len(row) {
				return nil, nil, configError(field, "target column %d out of range (width %d)", c, len(row))
			}
			if v := row[c]; v != 0 && v != 1 {
				return nil, nil, configError(field, "target column %d has non-binary value %v", c, v)
			}
			y[i] = row[c]
		}

		x := row
		if features != nil {
			x = make([]float64, len(features))
			for i, c := range features {
				if c < 0 || c >= len(row) {
					return nil, nil, configError(field, "feature column %d out of range (width %d)", c, len(row))
				}
				x[i] = row[c]
			}
		}
		for i, v := range x {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, nil, configError(field, "input %d is %v", i, v)
			}
		}

		if n.in >= 0 && len(x) != n.in {
			return nil, nil, configError(field, "input width %d, network expects %d", len(x), n.in)
		}
		out := n.out
		if out < 0 {
			out = len(x)
		}
		if out != len(targets) {
			return nil, nil, configError("targets", "%d target columns, network produces %d outputs", len(targets), out)
		}

		inputs[r] = x
		ys[r] = y
	}

	return inputs, ys, nil
}
