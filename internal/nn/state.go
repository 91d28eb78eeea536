package nn

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// StateDict returns copies of all Dense parameters.
//
// Keys are prefixed with the layer index ("0.weight", "0.bias", "2.weight", ...)
// so that layers do not collide. Activation layers contribute nothing.
func (n *Network) StateDict() map[string]*mat.Dense {
	stateDict := make(map[string]*mat.Dense)
	for i, layer := range n.layers {
		d, ok := layer.(*Dense)
		if !ok {
			continue
		}
		for name, m := range d.StateDict() {
			stateDict[fmt.Sprintf("%d.%s", i, name)] = m
		}
	}
	return stateDict
}

// LoadStateDict loads Dense parameters from a state dictionary produced by
// StateDict on a network with the same architecture. Unknown keys are ignored.
func (n *Network) LoadStateDict(stateDict map[string]*mat.Dense) error {
	for i, layer := range n.layers {
		d, ok := layer.(*Dense)
		if !ok {
			continue
		}

		prefix := fmt.Sprintf("%d.", i)
		layerDict := make(map[string]*mat.Dense)
		for key, m := range stateDict {
			if name, found := strings.CutPrefix(key, prefix); found {
				layerDict[name] = m
			}
		}

		if err := d.LoadStateDict(layerDict); err != nil {
			return fmt.Errorf("failed to load layer %d: %w", i, err)
		}
	}
	return nil
}
