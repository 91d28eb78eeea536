package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"gonum.org/v1/gonum/mat"
)

// maxHeaderSize bounds the JSON header to guard against corrupted files.
const maxHeaderSize = 100 * 1024 * 1024

// ReadSafeTensors loads all matrices and the metadata from a SafeTensors file.
func ReadSafeTensors(path string) (map[string]*mat.Dense, map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return Read(bufio.NewReader(file))
}

// Read decodes a SafeTensors stream.
//
// One-dimensional tensors are returned as 1×n row matrices.
func Read(r io.Reader) (map[string]*mat.Dense, map[string]string, error) {
	var headerSize uint64
	if err := binary.Read(r, binary.LittleEndian, &headerSize); err != nil {
		return nil, nil, fmt.Errorf("failed to read header size: %w", err)
	}
	if headerSize > maxHeaderSize {
		return nil, nil, ErrHeaderTooLarge
	}

	headerBytes := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(headerBytes, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidHeader, err)
	}

	var metadata map[string]string
	entries := make(map[string]SafeTensorHeader, len(raw))
	for name, msg := range raw {
		if name == "__metadata__" {
			if err := json.Unmarshal(msg, &metadata); err != nil {
				return nil, nil, fmt.Errorf("%w: metadata: %v", ErrInvalidHeader, err)
			}
			continue
		}
		var h SafeTensorHeader
		if err := json.Unmarshal(msg, &h); err != nil {
			return nil, nil, fmt.Errorf("%w: tensor %q: %v", ErrInvalidHeader, name, err)
		}
		entries[name] = h
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read tensor data: %w", err)
	}

	tensors := make(map[string]*mat.Dense, len(entries))
	for name, h := range entries {
		m, err := decodeTensor(name, h, data)
		if err != nil {
			return nil, nil, err
		}
		tensors[name] = m
	}

	return tensors, metadata, nil
}

// decodeTensor validates one header entry against the data section and decodes it.
func decodeTensor(name string, h SafeTensorHeader, data []byte) (*mat.Dense, error) {
	var rows, cols int64
	switch len(h.Shape) {
	case 1:
		rows, cols = 1, h.Shape[0]
	case 2:
		rows, cols = h.Shape[0], h.Shape[1]
	default:
		return nil, &ValidationError{Tensor: name, Err: ErrInvalidShape, Details: fmt.Sprintf("rank %d", len(h.Shape))}
	}
	if rows <= 0 || cols <= 0 {
		return nil, &ValidationError{Tensor: name, Err: ErrInvalidShape, Details: fmt.Sprintf("shape %v", h.Shape)}
	}

	var elemSize int64
	switch h.DType {
	case "F64":
		elemSize = 8
	case "F32":
		elemSize = 4
	default:
		return nil, &ValidationError{Tensor: name, Err: ErrUnsupportedDType, Details: h.DType}
	}

	start, end := h.DataOffsets[0], h.DataOffsets[1]
	if start < 0 || end < start {
		return nil, &ValidationError{Tensor: name, Err: ErrNegativeOffset}
	}
	if end > int64(len(data)) {
		return nil, &ValidationError{Tensor: name, Err: ErrOutOfBounds,
			Details: fmt.Sprintf("end %d, data size %d", end, len(data))}
	}

	// Compare by division so a huge shape cannot wrap around to the byte count.
	size := end - start
	count := size / elemSize
	if size%elemSize != 0 || rows > count || cols != count/rows || count%rows != 0 {
		return nil, &ValidationError{Tensor: name, Err: ErrOutOfBounds,
			Details: fmt.Sprintf("shape %v does not fit %d bytes of %s", h.Shape, size, h.DType)}
	}

	buf := data[start:end]
	values := make([]float64, count)
	for i := range values {
		if elemSize == 8 {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[i*8:]))
		} else {
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:])))
		}
	}

	return mat.NewDense(int(rows), int(cols), values), nil
}
