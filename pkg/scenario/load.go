package scenario

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed presets/*.json
var presetFS embed.FS

// ErrPresetNotFound is returned for an unknown bundled scenario key.
var ErrPresetNotFound = errors.New("preset scenario not found")

// ParseError reports malformed scenario input. It is recoverable at the
// upload boundary: the caller rejects the file and keeps its current screen.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse scenario %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Preset describes a bundled scenario.
type Preset struct {
	Key  string // Display key, e.g. "과학"
	File string // File name inside the bundle
}

// Presets lists the bundled scenarios in display order.
var Presets = []Preset{
	{Key: "과학", File: "science.json"},
	{Key: "사회", File: "social.json"},
	{Key: "수학", File: "math.json"},
}

// Parse decodes a scenario from JSON. Unknown fields are ignored.
func Parse(data []byte) (*Scenario, error) {
	return parse("input", data)
}

// LoadReader reads and parses a scenario, e.g. an uploaded file.
func LoadReader(r io.Reader, source string) (*Scenario, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", source, err)
	}
	return parse(source, data)
}

// Load reads and parses a scenario file from disk.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return parse(filepath.Base(path), data)
}

// LoadPreset loads a bundled scenario by key or file name.
func LoadPreset(key string) (*Scenario, error) {
	for _, p := range Presets {
		if p.Key == key || p.File == key {
			data, err := fs.ReadFile(presetFS, "presets/"+p.File)
			if err != nil {
				return nil, fmt.Errorf("failed to read preset %s: %w", p.File, err)
			}
			return parse(p.File, data)
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, key)
}

// ListDir returns the .json scenario files in dir, sorted by name.
// A missing directory yields an empty list.
func ListDir(dir string) ([]string, error) {
	if dir == "" {
		return []string{}, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func parse(source string, data []byte) (*Scenario, error) {
	var s Scenario
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, &ParseError{Source: source, Err: err}
	}
	return &s, nil
}
