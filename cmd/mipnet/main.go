// Package main provides the mipnet CLI: train a network on search-tree node
// features and predict decision-variable logits.
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/mipnet/internal/dataset"
	"github.com/born-ml/mipnet/internal/nn"
	"github.com/born-ml/mipnet/internal/parallel"
)

const version = "v0.1.0"

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("mipnet %s (%d workers)\n", version, parallel.Workers())
		return
	case "train":
		err = train(os.Args[2:])
	case "predict":
		err = predict(os.Args[2:])
	case "-h", "--help", "help":
		usage()
		return
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("%s: %v", os.Args[1], err)
	}
}

func usage() {
	fmt.Println("mipnet - feed-forward network for MIP decision prediction")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  train      Train on a node-feature CSV and save weights")
	fmt.Println("  predict    Print logits for every row of a CSV")
	fmt.Println("  version    Show version")
	fmt.Println("")
	fmt.Println("Run 'mipnet <command> -h' for command flags.")
}

// modelFlags are shared by train and predict; both must agree for weights to load.
type modelFlags struct {
	data           string
	targetPrefix   string
	targetSuffix   string
	hidden         int
	includeTargets bool
	fill           float64
}

func (m *modelFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&m.data, "data", "data/neural_net_inputs.csv", "CSV file with one row per search-tree node")
	fs.StringVar(&m.targetPrefix, "target-prefix", "var ", "Target columns start with this prefix")
	fs.StringVar(&m.targetSuffix, "target-suffix", " value", "Target columns end with this suffix")
	fs.IntVar(&m.hidden, "hidden", 16, "Hidden tanh units (0 = single dense layer)")
	fs.BoolVar(&m.includeTargets, "include-targets", false, "Feed target columns to the network as well")
	fs.Float64Var(&m.fill, "fill", 0, "Replacement for empty/NaN/Inf cells")
}

// problem is a loaded table with its column roles resolved.
type problem struct {
	table    *dataset.Table
	targets  []int
	features []int // nil means the whole row
}

func (m *modelFlags) load() (*problem, error) {
	table, err := dataset.LoadCSV(m.data)
	if err != nil {
		return nil, err
	}

	targets := table.ColumnsMatching(m.targetPrefix, m.targetSuffix)
	if len(targets) == 0 {
		return nil, fmt.Errorf("no columns match %q...%q", m.targetPrefix, m.targetSuffix)
	}

	// Missing labels stay NaN so ValidateTargets rejects them.
	if n := table.ReplaceNonFinite(m.fill, table.Complement(targets)); n > 0 {
		log.Printf("replaced %d non-finite cells with %v", n, m.fill)
	}

	p := &problem{table: table, targets: targets}
	if !m.includeTargets {
		p.features = table.Complement(targets)
		if len(p.features) == 0 {
			return nil, fmt.Errorf("every column is a target; nothing left to learn from")
		}
	}
	return p, nil
}

func (p *problem) inputWidth() int {
	if p.features == nil {
		return p.table.Width()
	}
	return len(p.features)
}

func (p *problem) inputs(rows [][]float64) [][]float64 {
	if p.features == nil {
		return rows
	}
	out := make([][]float64, len(rows))
	for i, row := range rows {
		x := make([]float64, len(p.features))
		for j, c := range p.features {
			x[j] = row[c]
		}
		out[i] = x
	}
	return out
}

// buildNetwork returns dense(in→hidden), tanh, dense(hidden→out), or a
// single dense(in→out) when hidden is 0. The final layer has no squashing
// activation: the maximum-likelihood loss works on logits.
func buildNetwork(in, hidden, out int, rng *rand.Rand) (*nn.Network, error) {
	net := nn.NewNetwork(nn.MaximumLikelihood{})
	if hidden <= 0 {
		return net, net.Add(nn.NewDense(in, out, rng))
	}
	for _, l := range []nn.Layer{nn.NewDense(in, hidden, rng), nn.NewTanh(), nn.NewDense(hidden, out, rng)} {
		if err := net.Add(l); err != nil {
			return nil, err
		}
	}
	return net, nil
}

func train(args []string) error {
	fs := flag.NewFlagSet("train", flag.ExitOnError)
	var m modelFlags
	m.register(fs)
	epochs := fs.Int("epochs", 50, "Number of training epochs")
	lr := fs.Float64("lr", 0.1, "Learning rate")
	seed := fs.Int64("seed", 1, "Seed for weight initialization and the held-out split")
	holdout := fs.Float64("holdout", 0.2, "Fraction of rows held out for evaluation")
	out := fs.String("out", "weights.safetensors", "Where to write the trained weights")
	_ = fs.Parse(args)

	p, err := m.load()
	if err != nil {
		return err
	}
	if err := p.table.ValidateTargets(p.targets); err != nil {
		return err
	}

	rng := rand.New(rand.NewSource(*seed))
	trainSet, heldOut := p.table.Split(*holdout, rng)
	log.Printf("loaded %d rows (%d train, %d held out), %d inputs, %d targets",
		p.table.Len(), trainSet.Len(), heldOut.Len(), p.inputWidth(), len(p.targets))

	net, err := buildNetwork(p.inputWidth(), m.hidden, len(p.targets), rng)
	if err != nil {
		return err
	}
	log.Printf("network: %s", net)

	_, err = net.Fit(trainSet.Rows, p.targets, nn.FitConfig{
		Epochs:       *epochs,
		LearningRate: *lr,
		Features:     p.features,
		OnEpoch: func(r nn.EpochReport) {
			log.Printf("epoch %d/%d   error=%f   (%s)", r.Epoch, r.Epochs, r.Loss, r.Elapsed)
		},
	})
	if err != nil {
		return err
	}

	if heldOut.Len() > 0 {
		loss, err := net.Evaluate(heldOut.Rows, p.targets, p.features)
		if err != nil {
			return err
		}
		acc, err := accuracy(net, p, heldOut.Rows)
		if err != nil {
			return err
		}
		log.Printf("held out: error=%f accuracy=%.2f%%", loss, 100*acc)
	}

	meta := map[string]string{
		"epochs":          strconv.Itoa(*epochs),
		"learning_rate":   strconv.FormatFloat(*lr, 'g', -1, 64),
		"seed":            strconv.FormatInt(*seed, 10),
		"targets":         strings.Join(columnNames(p.table, p.targets), ";"),
		"include_targets": strconv.FormatBool(m.includeTargets),
	}
	if err := nn.SaveWeights(*out, net, meta); err != nil {
		return err
	}
	log.Printf("saved weights to %s", *out)
	return nil
}

// accuracy is the fraction of target cells whose logit sign matches the label.
func accuracy(net *nn.Network, p *problem, rows [][]float64) (float64, error) {
	outputs, err := net.Predict(p.inputs(rows))
	if err != nil {
		return 0, err
	}

	var correct, total int
	for i, row := range rows {
		for j, c := range p.targets {
			if (outputs[i][j] > 0) == (row[c] == 1) {
				correct++
			}
			total++
		}
	}
	return float64(correct) / float64(total), nil
}

func predict(args []string) error {
	fs := flag.NewFlagSet("predict", flag.ExitOnError)
	var m modelFlags
	m.register(fs)
	weights := fs.String("weights", "weights.safetensors", "Weights written by 'mipnet train'")
	_ = fs.Parse(args)

	p, err := m.load()
	if err != nil {
		return err
	}
	if m.includeTargets {
		// Target columns are plain inputs here and may be unlabelled.
		p.table.ReplaceNonFinite(m.fill, p.targets)
	}

	net, err := buildNetwork(p.inputWidth(), m.hidden, len(p.targets), nil)
	if err != nil {
		return err
	}
	if _, err := nn.LoadWeights(*weights, net); err != nil {
		return err
	}

	outputs, err := net.Predict(p.inputs(p.table.Rows))
	if err != nil {
		return err
	}

	header := columnNames(p.table, p.targets)
	for i := range header {
		header[i] += " logit"
	}
	return dataset.WriteCSV(os.Stdout, header, outputs)
}

func columnNames(t *dataset.Table, cols []int) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = t.Columns[c]
	}
	return names
}
