package nn

import (
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/born-ml/mipnet/internal/parallel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// separableRows is a linearly separable two-class set: columns x0, x1, label
// with label = 1 iff x0 + x1 > 0.
var separableRows = [][]float64{
	{1, 1, 1},
	{2, 0.5, 1},
	{0.5, 2, 1},
	{1.5, -0.5, 1},
	{-1, -1, 0},
	{-2, -0.5, 0},
	{-0.5, -2, 0},
	{-1.5, 0.5, 0},
}

// xorRows is labelled by XOR of its two bits; column 1 is the target.
var xorRows = [][]float64{
	{0, 0},
	{0, 1},
	{1, 1},
	{1, 0},
}

func newTanhNetwork(t *testing.T, seed int64) *Network {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))

	net := NewNetwork(MaximumLikelihood{})
	require.NoError(t, net.Add(NewDense(2, 4, rng)))
	require.NoError(t, net.Add(NewTanh()))
	require.NoError(t, net.Add(NewDense(4, 1, rng)))
	return net
}

func snapshot(net *Network) map[string]*mat.Dense {
	return net.StateDict()
}

func assertSameState(t *testing.T, want, got map[string]*mat.Dense) {
	t.Helper()
	require.Len(t, got, len(want))
	for name, w := range want {
		g, ok := got[name]
		require.True(t, ok, "missing %s", name)
		assert.True(t, mat.Equal(w, g), "%s differs", name)
	}
}

// TestNetwork_Identity tests predict(x) == x for an identity Dense layer.
func TestNetwork_Identity(t *testing.T) {
	d, err := NewDenseFrom(Identity(3), nil)
	require.NoError(t, err)

	net := NewNetwork(nil)
	require.NoError(t, net.Add(d))

	samples := [][]float64{
		{1, -2, 3.5},
		{0, 0, 0},
		{1e6, -1e-6, 42},
	}
	outputs, err := net.Predict(samples)
	require.NoError(t, err)
	require.Len(t, outputs, len(samples))

	for i, s := range samples {
		assert.InDeltaSlice(t, s, outputs[i], 1e-12)
	}
}

// TestNetwork_ShapeMismatch tests that incompatible layers are rejected by Add.
func TestNetwork_ShapeMismatch(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	net := NewNetwork(nil)
	require.NoError(t, net.Add(NewDense(3, 4, rng)))

	err := net.Add(NewDense(5, 2, rng))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	var sm *ShapeMismatchError
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, 1, sm.Layer)
	assert.Equal(t, 4, sm.Want)
	assert.Equal(t, 5, sm.Got)

	// The network is unchanged.
	assert.Equal(t, 1, net.Len())
	assert.Equal(t, 4, net.OutputWidth())

	// Activations preserve the width, so the mismatch is still caught.
	require.NoError(t, net.Add(NewTanh()))
	err = net.Add(NewDense(5, 2, rng))
	require.ErrorAs(t, err, &sm)
	assert.Equal(t, 2, sm.Layer)

	assert.ErrorIs(t, net.Add(nil), ErrConfiguration)
}

// TestNetwork_Widths tests input/output width tracking.
func TestNetwork_Widths(t *testing.T) {
	net := NewNetwork(nil)
	assert.Equal(t, -1, net.InputWidth())
	assert.Equal(t, -1, net.OutputWidth())

	require.NoError(t, net.Add(NewTanh()))
	assert.Equal(t, -1, net.InputWidth())

	net.MustAdd(NewDense(2, 3, nil), NewSigmoid(), NewDense(3, 1, nil))
	assert.Equal(t, 2, net.InputWidth())
	assert.Equal(t, 1, net.OutputWidth())
	assert.Equal(t, 4, net.Len())
	assert.Equal(t, "tanh,dense(2x3),sigmoid,dense(3x1)", net.String())

	assert.Panics(t, func() { net.MustAdd(NewDense(2, 2, nil)) })
	assert.Panics(t, func() { net.Layer(4) })
	assert.IsType(t, &Dense{}, net.Layer(1))
}

// TestNetwork_PredictIsPure tests that Predict leaves parameters untouched.
func TestNetwork_PredictIsPure(t *testing.T) {
	net := newTanhNetwork(t, 3)
	before := snapshot(net)

	first, err := net.Predict([][]float64{{0.3, -0.7}, {1, 1}})
	require.NoError(t, err)
	second, err := net.Predict([][]float64{{0.3, -0.7}, {1, 1}})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assertSameState(t, before, snapshot(net))
}

// TestNetwork_PredictParallel tests that parallel and sequential predictions agree.
func TestNetwork_PredictParallel(t *testing.T) {
	net := newTanhNetwork(t, 5)

	rng := rand.New(rand.NewSource(9))
	samples := make([][]float64, 200)
	for i := range samples {
		samples[i] = []float64{rng.NormFloat64(), rng.NormFloat64()}
	}

	net.SetParallel(parallel.Config{Enabled: false})
	seq, err := net.Predict(samples)
	require.NoError(t, err)

	net.SetParallel(parallel.Config{Enabled: true, NumWorkers: 4, MinChunkSize: 1})
	par, err := net.Predict(samples)
	require.NoError(t, err)

	assert.Equal(t, seq, par)
}

// TestNetwork_PredictErrors tests Predict validation.
func TestNetwork_PredictErrors(t *testing.T) {
	_, err := NewNetwork(nil).Predict([][]float64{{1}})
	assert.ErrorIs(t, err, ErrConfiguration)

	net := newTanhNetwork(t, 1)
	_, err = net.Predict([][]float64{{1, 2}, {1, 2, 3}})

	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "samples[1]", cfgErr.Field)

	out, err := net.Predict(nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

// TestNetwork_Determinism tests that a fixed seed reproduces training exactly.
func TestNetwork_Determinism(t *testing.T) {
	cfg := FitConfig{Epochs: 20, LearningRate: 0.1, Features: []int{0, 1}}

	a := newTanhNetwork(t, 11)
	histA, err := a.Fit(separableRows, []int{2}, cfg)
	require.NoError(t, err)

	b := newTanhNetwork(t, 11)
	histB, err := b.Fit(separableRows, []int{2}, cfg)
	require.NoError(t, err)

	assert.Equal(t, histA.Loss, histB.Loss)
	assertSameState(t, snapshot(a), snapshot(b))

	c := newTanhNetwork(t, 12)
	_, err = c.Fit(separableRows, []int{2}, cfg)
	require.NoError(t, err)
	assert.False(t, mat.Equal(snapshot(a)["0.weight"], snapshot(c)["0.weight"]))
}

// TestNetwork_MonotonicLearning tests that the mean loss falls over 50 epochs.
func TestNetwork_MonotonicLearning(t *testing.T) {
	net := newTanhNetwork(t, 21)

	var reports []EpochReport
	history, err := net.Fit(separableRows, []int{2}, FitConfig{
		Epochs:       50,
		LearningRate: 0.1,
		Features:     []int{0, 1},
		OnEpoch: func(r EpochReport) {
			reports = append(reports, r)
		},
	})
	require.NoError(t, err)

	require.Len(t, history.Loss, 50)
	assert.Less(t, history.Loss[49], history.Loss[0])
	assert.Equal(t, history.Loss[49], history.Final())

	require.Len(t, reports, 50)
	for i, r := range reports {
		assert.Equal(t, i+1, r.Epoch)
		assert.Equal(t, 50, r.Epochs)
		assert.Equal(t, history.Loss[i], r.Loss)
	}
}

// TestNetwork_XOR tests the single-layer end-to-end example: the whole row is
// forwarded and column 1 is the target.
func TestNetwork_XOR(t *testing.T) {
	net := NewNetwork(MaximumLikelihood{})
	require.NoError(t, net.Add(NewDense(2, 1, rand.New(rand.NewSource(4)))))

	_, err := net.Fit(xorRows, []int{1}, FitConfig{Epochs: 200, LearningRate: 0.5})
	require.NoError(t, err)

	heldOut := [][]float64{
		{0.05, 1},
		{0.95, 1},
		{0.05, 0},
		{0.95, 0},
		{0.5, 1},
		{0.5, 0},
	}
	outputs, err := net.Predict(heldOut)
	require.NoError(t, err)

	correct := 0
	for i, s := range heldOut {
		if (outputs[i][0] > 0) == (s[1] == 1) {
			correct++
		}
	}
	assert.GreaterOrEqual(t, float64(correct)/float64(len(heldOut)), 0.75)
}

// TestNetwork_FitConfigErrors tests that invalid input is rejected before training.
func TestNetwork_FitConfigErrors(t *testing.T) {
	good := FitConfig{Epochs: 1, LearningRate: 0.1, Features: []int{0, 1}}

	tests := []struct {
		name    string
		rows    [][]float64
		targets []int
		cfg     FitConfig
		field   string
	}{
		{"zero epochs", separableRows, []int{2}, FitConfig{Epochs: 0, LearningRate: 0.1}, "epochs"},
		{"zero learning rate", separableRows, []int{2}, FitConfig{Epochs: 1}, "learning rate"},
		{"negative learning rate", separableRows, []int{2}, FitConfig{Epochs: 1, LearningRate: -1}, "learning rate"},
		{"NaN learning rate", separableRows, []int{2}, FitConfig{Epochs: 1, LearningRate: math.NaN()}, "learning rate"},
		{"infinite learning rate", separableRows, []int{2}, FitConfig{Epochs: 1, LearningRate: math.Inf(1)}, "learning rate"},
		{"no rows", nil, []int{2}, good, "rows"},
		{"no targets", separableRows, nil, good, "targets"},
		{"empty features", separableRows, []int{2}, FitConfig{Epochs: 1, LearningRate: 0.1, Features: []int{}}, "features"},
		{"target out of range", separableRows, []int{3}, good, "rows[0]"},
		{"non-binary target", separableRows, []int{0}, good, "rows[1]"},
		{"feature out of range", separableRows, []int{2}, FitConfig{Epochs: 1, LearningRate: 0.1, Features: []int{0, 9}}, "rows[0]"},
		{"width mismatch", separableRows, []int{2}, FitConfig{Epochs: 1, LearningRate: 0.1}, "rows[0]"},
		{"too many targets", [][]float64{{1, 1, 1, 0}}, []int{2, 3}, good, "targets"},
		{"NaN feature", [][]float64{{1, 1, 1}, {math.NaN(), 1, 0}}, []int{2}, good, "rows[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := newTanhNetwork(t, 1)
			before := snapshot(net)

			history, err := net.Fit(tt.rows, tt.targets, tt.cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)

			var cfgErr *ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)

			assert.Empty(t, history.Loss)
			assertSameState(t, before, snapshot(net))
		})
	}

	_, err := NewNetwork(nil).Fit(separableRows, []int{2}, good)
	assert.ErrorIs(t, err, ErrConfiguration)
}

// TestNetwork_NumericOverflow tests that divergence stops training with an error.
func TestNetwork_NumericOverflow(t *testing.T) {
	net := NewNetwork(MSE{})
	require.NoError(t, net.Add(NewDense(1, 1, rand.New(rand.NewSource(2)))))

	rows := [][]float64{{1, 1}, {1, 1}, {1, 1}}
	history, err := net.Fit(rows, []int{1}, FitConfig{Epochs: 3, LearningRate: 1e300, Features: []int{0}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNumericOverflow)

	var overflow *NumericOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, 1, overflow.Epoch)
	assert.GreaterOrEqual(t, overflow.Sample, 1)
	assert.Empty(t, history.Loss)
}

// TestNetwork_Evaluate tests that Evaluate reports the mean loss without training.
func TestNetwork_Evaluate(t *testing.T) {
	net := newTanhNetwork(t, 8)
	features := []int{0, 1}

	before, err := net.Evaluate(separableRows, []int{2}, features)
	require.NoError(t, err)

	outputs, err := net.Predict([][]float64{{1, 1}, {-1, -1}})
	require.NoError(t, err)
	manual := (MaximumLikelihood{}.Loss([]float64{1}, outputs[0]) +
		MaximumLikelihood{}.Loss([]float64{0}, outputs[1])) / 2
	got, err := net.Evaluate([][]float64{{1, 1, 1}, {-1, -1, 0}}, []int{2}, features)
	require.NoError(t, err)
	assert.InDelta(t, manual, got, 1e-12)

	_, err = net.Fit(separableRows, []int{2}, FitConfig{Epochs: 100, LearningRate: 0.1, Features: features})
	require.NoError(t, err)

	after, err := net.Evaluate(separableRows, []int{2}, features)
	require.NoError(t, err)
	assert.Less(t, after, before)

	_, err = net.Evaluate(nil, []int{2}, features)
	assert.ErrorIs(t, err, ErrConfiguration)
}

// TestNetwork_StateDict tests that weights transfer between networks.
func TestNetwork_StateDict(t *testing.T) {
	a := newTanhNetwork(t, 1)
	b := newTanhNetwork(t, 2)

	state := a.StateDict()
	assert.Len(t, state, 4)
	assert.Contains(t, state, "0.weight")
	assert.Contains(t, state, "2.bias")

	require.NoError(t, b.LoadStateDict(state))
	assertSameState(t, state, b.StateDict())

	delete(state, "2.bias")
	err := b.LoadStateDict(state)
	assert.Error(t, err)
}

// TestSaveLoadWeights tests the SafeTensors checkpoint round trip.
func TestSaveLoadWeights(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weights.safetensors")

	trained := newTanhNetwork(t, 1)
	_, err := trained.Fit(separableRows, []int{2}, FitConfig{Epochs: 5, LearningRate: 0.1, Features: []int{0, 1}})
	require.NoError(t, err)
	require.NoError(t, SaveWeights(path, trained, map[string]string{"epochs": "5"}))

	restored := newTanhNetwork(t, 99)
	meta, err := LoadWeights(path, restored)
	require.NoError(t, err)
	assert.Equal(t, "5", meta["epochs"])
	assert.Equal(t, "dense(2x4),tanh,dense(4x1)", meta[ArchitectureKey])

	samples := [][]float64{{0.1, 0.2}, {-1, 3}}
	want, err := trained.Predict(samples)
	require.NoError(t, err)
	got, err := restored.Predict(samples)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Same shapes, different activation.
	other := NewNetwork(nil).MustAdd(NewDense(2, 4, nil), NewReLU(), NewDense(4, 1, nil))
	_, err = LoadWeights(path, other)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = LoadWeights(filepath.Join(t.TempDir(), "missing.safetensors"), restored)
	assert.Error(t, err)
}
