package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	FullFile            = "bugsjs_with_groundtruth.json"
	InputOnlyFile       = "bugsjs_input_only.json"
	GroundTruthOnlyFile = "bugsjs_groundtruth_only.json"
)

// Paths lists the files written by WriteViews.
type Paths struct {
	Full            string
	InputOnly       string
	GroundTruthOnly string
}

// WriteViews persists all three views under dir, creating it if needed.
func WriteViews(dir string, v Views) (Paths, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Paths{}, fmt.Errorf("creating output dir: %w", err)
	}
	p := Paths{
		Full:            filepath.Join(dir, FullFile),
		InputOnly:       filepath.Join(dir, InputOnlyFile),
		GroundTruthOnly: filepath.Join(dir, GroundTruthOnlyFile),
	}
	if err := writeJSON(p.Full, v.Full); err != nil {
		return Paths{}, err
	}
	if err := writeJSON(p.InputOnly, v.InputOnly); err != nil {
		return Paths{}, err
	}
	if err := writeJSON(p.GroundTruthOnly, v.GroundTruthOnly); err != nil {
		return Paths{}, err
	}
	return p, nil
}

// Load reads a dataset file written by WriteViews.
func Load(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading dataset: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parsing dataset %s: %w", path, err)
	}
	return &ds, nil
}

// Marshal encodes v as indented JSON without HTML escaping.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSON(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
