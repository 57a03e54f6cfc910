package datastructure

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/kelindar/binary"
	"github.com/klauspost/compress/zstd"
)

func compressData(inData []byte, bbufOut *bytes.Buffer) error {
	inputBuf := bytes.NewBuffer(inData)
	encoder, err := zstd.NewWriter(bbufOut, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	_, err = io.Copy(encoder, inputBuf)
	if err != nil {
		encoder.Close()
		return err
	}
	return encoder.Close()
}

func decompressData(inData []byte, out io.Writer) error {
	in := bytes.NewBuffer(inData)
	d, err := zstd.NewReader(in)
	if err != nil {
		return err
	}
	defer d.Close()

	_, err = io.Copy(out, d)
	return err
}

// SaveToFile persists the graph as one zstd-compressed binary blob.
func (g *RoadGraph) SaveToFile(path string) error {
	encoded, err := binary.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode road graph: %w", err)
	}

	var compressed bytes.Buffer
	if err := compressData(encoded, &compressed); err != nil {
		return fmt.Errorf("compress road graph: %w", err)
	}

	return os.WriteFile(path, compressed.Bytes(), 0644)
}

// LoadRoadGraph reads a graph saved by SaveToFile.
func LoadRoadGraph(path string) (*RoadGraph, error) {
	compressed, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read road graph file: %w", err)
	}

	var decoded bytes.Buffer
	if err := decompressData(compressed, &decoded); err != nil {
		return nil, fmt.Errorf("decompress road graph: %w", err)
	}

	g := NewRoadGraph()
	if err := binary.Unmarshal(decoded.Bytes(), g); err != nil {
		return nil, fmt.Errorf("decode road graph: %w", err)
	}
	if err := g.validate(); err != nil {
		return nil, fmt.Errorf("road graph file corrupted: %w", err)
	}
	return g, nil
}
