// Package export writes scenarios and run logs to downloadable files.
// There is no import path; exported logs cannot be replayed.
package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/classroom-sim/pkg/runlog"
	"github.com/jwebster45206/classroom-sim/pkg/scenario"
)

// Format is an export file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name. Empty means JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported export format: %q", s)
}

// Ext returns the file extension for the format, without the dot.
func (f Format) Ext() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// Encode serializes v. JSON is indented with two spaces.
func Encode(v any, f Format) ([]byte, error) {
	switch f {
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to encode json: %w", err)
		}
		return data, nil
	}
}

// ScenarioFileName returns "<scenario id>.<ext>". Only the last path element
// of the id is used, and an id with none falls back to "scenario".
func ScenarioFileName(s *scenario.Scenario, f Format) string {
	name := filepath.Base(filepath.Clean(filepath.FromSlash(s.ID)))
	switch name {
	case ".", "..", string(filepath.Separator):
		name = "scenario"
	}
	return name + "." + f.Ext()
}

// SummaryFileName returns "result_<unix millis>.<ext>".
func SummaryFileName(now time.Time, f Format) string {
	return fmt.Sprintf("result_%d.%s", now.UnixMilli(), f.Ext())
}

// WriteScenario writes the scenario to dir and returns the file path.
func WriteScenario(dir string, s *scenario.Scenario, f Format) (string, error) {
	return write(dir, ScenarioFileName(s, f), s, f)
}

// WriteSummary writes the run log to dir and returns the file path.
func WriteSummary(dir string, sum *runlog.Summary, f Format, now time.Time) (string, error) {
	return write(dir, SummaryFileName(now, f), sum, f)
}

func write(dir, name string, v any, f Format) (string, error) {
	data, err := Encode(v, f)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", name, err)
	}
	return path, nil
}
