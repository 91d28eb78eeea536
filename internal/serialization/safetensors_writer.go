package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// SafeTensorHeader represents a tensor in the SafeTensors header.
type SafeTensorHeader struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// WriteSafeTensors writes matrices to a SafeTensors file at path.
func WriteSafeTensors(path string, tensors map[string]*mat.Dense, metadata map[string]string) error {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	w := bufio.NewWriter(file)
	if err := Write(w, tensors, metadata); err != nil {
		_ = file.Close() // Best effort close
		return err
	}
	if err := w.Flush(); err != nil {
		_ = file.Close()
		return fmt.Errorf("failed to flush: %w", err)
	}
	return file.Close()
}

// Write encodes matrices in SafeTensors format.
//
// Format:
// [8 bytes: header_size (uint64 LE)]
// [header_size bytes: JSON header]
// [tensor data: raw bytes]
//
// Tensors are written in alphabetical order by name, as F64 with shape [rows, cols].
func Write(w io.Writer, tensors map[string]*mat.Dense, metadata map[string]string) error {
	// Sort tensor names alphabetically (SafeTensors requirement)
	names := make([]string, 0, len(tensors))
	for name, m := range tensors {
		if m == nil {
			return &ValidationError{Tensor: name, Err: ErrInvalidShape, Details: "nil matrix"}
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	if len(metadata) > 0 {
		header["__metadata__"] = metadata
	}

	var offset int64
	for _, name := range names {
		r, c := tensors[name].Dims()
		size := int64(r * c * 8)
		header[name] = SafeTensorHeader{
			DType:       "F64",
			Shape:       []int64{int64(r), int64(c)},
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	// Write header size (8 bytes, little-endian uint64)
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write tensor data in alphabetical order, row-major.
	buf := make([]byte, 8)
	for _, name := range names {
		m := tensors[name]
		r, c := m.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				binary.LittleEndian.PutUint64(buf, math.Float64bits(m.At(i, j)))
				if _, err := w.Write(buf); err != nil {
					return fmt.Errorf("failed to write tensor %s: %w", name, err)
				}
			}
		}
	}

	return nil
}
