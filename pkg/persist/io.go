package persist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Marshal encodes a saved workflow as indented JSON.
func Marshal(s *SavedWorkflow) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes a saved workflow from JSON.
func Unmarshal(data []byte) (*SavedWorkflow, error) {
	return Read(bytes.NewReader(data))
}

// Write encodes a saved workflow as indented JSON to w.
func Write(s *SavedWorkflow, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Read decodes a saved workflow from r.
func Read(r io.Reader) (*SavedWorkflow, error) {
	var s SavedWorkflow
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &s, nil
}

// WriteFile writes a saved workflow to a JSON file.
func WriteFile(s *SavedWorkflow, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(s, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadFile reads a saved workflow from a JSON file.
func ReadFile(path string) (*SavedWorkflow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f)
}
