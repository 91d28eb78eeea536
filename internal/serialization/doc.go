// Package serialization saves and loads named float64 matrices in the
// SafeTensors format, which is how trained network weights are persisted.
//
//	Format Structure:
//	  [8 bytes: Header Size (uint64 LE)]
//	  [Header: JSON, tensor name -> {dtype, shape, data_offsets}]
//	  [Tensor data: raw little-endian bytes, tensors in alphabetical order]
//
// Only the F64 dtype is written. The reader also accepts F32 files and
// widens them to float64.
//
// Example usage:
//
//	// Save
//	err := serialization.WriteSafeTensors("weights.safetensors", net.StateDict(), map[string]string{
//	    "epochs": "50",
//	})
//
//	// Load
//	stateDict, metadata, err := serialization.ReadSafeTensors("weights.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = net.LoadStateDict(stateDict)
package serialization
