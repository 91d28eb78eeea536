package nn

import (
	"fmt"

	"github.com/born-ml/mipnet/internal/serialization"
)

// ArchitectureKey is the metadata key under which SaveWeights records the
// network architecture.
const ArchitectureKey = "architecture"

// SaveWeights writes the network's Dense parameters to a SafeTensors file.
//
// The architecture string (see Network.String) is stored in the metadata
// alongside any caller-supplied entries.
//
// Example:
//
//	err := nn.SaveWeights("weights.safetensors", net, map[string]string{"epochs": "50"})
func SaveWeights(path string, net *Network, metadata map[string]string) error {
	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	meta[ArchitectureKey] = net.String()

	if err := serialization.WriteSafeTensors(path, net.StateDict(), meta); err != nil {
		return fmt.Errorf("failed to save weights: %w", err)
	}
	return nil
}

// LoadWeights reads a file written by SaveWeights into net and returns the
// stored metadata.
//
// net must be pre-constructed with the same architecture. A recorded
// architecture that differs from net's is a *ConfigurationError.
func LoadWeights(path string, net *Network) (map[string]string, error) {
	stateDict, metadata, err := serialization.ReadSafeTensors(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load weights: %w", err)
	}

	if arch, ok := metadata[ArchitectureKey]; ok && arch != net.String() {
		return nil, configError(ArchitectureKey, "file has %q, network is %q", arch, net.String())
	}

	if err := net.LoadStateDict(stateDict); err != nil {
		return nil, err
	}
	return metadata, nil
}
