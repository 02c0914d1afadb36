package pointset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cwbudde/weberfit/internal/weber"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// Format is a point-file encoding
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from the file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported point file extension: %q", filepath.Ext(path))
	}
}

// filePoint is the JSON/YAML record; a missing weight means 1
type filePoint struct {
	X      float64  `json:"x" yaml:"x"`
	Y      float64  `json:"y" yaml:"y"`
	Weight *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// Load reads a point file, choosing the format from its extension
func Load(path string) ([]weber.WeightedPoint, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open point file: %w", err)
	}
	defer f.Close()

	points, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return points, nil
}

// Save writes a point file, choosing the format from its extension
func Save(path string, points []weber.WeightedPoint) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create point file: %w", err)
	}
	return encodeAndClose(f, path, format, points)
}

// encodeAndClose writes points to w and closes it, reporting the first failure
func encodeAndClose(w io.WriteCloser, path string, format Format, points []weber.WeightedPoint) (err error) {
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close %s: %w", path, cerr)
		}
	}()

	if err := Encode(w, format, points); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

// Decode parses points in the given format
func Decode(r io.Reader, format Format) ([]weber.WeightedPoint, error) {
	switch format {
	case FormatCSV:
		return decodeCSV(r)

	case FormatJSON:
		var records []filePoint
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, err
		}
		return fromRecords(records), nil

	case FormatYAML:
		var records []filePoint
		if err := yaml.NewDecoder(r).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return fromRecords(records), nil

	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}
}

// Encode writes points in the given format
func Encode(w io.Writer, format Format, points []weber.WeightedPoint) error {
	switch format {
	case FormatCSV:
		cw := csv.NewWriter(w)
		if err := cw.Write([]string{"x", "y", "weight"}); err != nil {
			return err
		}
		for _, p := range points {
			if err := cw.Write([]string{formatFloat(p.X), formatFloat(p.Y), formatFloat(p.Weight)}); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()

	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(points)

	case FormatYAML:
		enc := yaml.NewEncoder(w)
		if err := enc.Encode(points); err != nil {
			return err
		}
		return enc.Close()

	default:
		return fmt.Errorf("unsupported format: %q", format)
	}
}

// decodeCSV reads rows of x,y[,weight]. A leading non-numeric row is a header.
func decodeCSV(r io.Reader) ([]weber.WeightedPoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.Comment = '#'

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}

	var points []weber.WeightedPoint
	for i, row := range rows {
		if len(row) < 2 || len(row) > 3 {
			return nil, fmt.Errorf("line %d: expected 2 or 3 fields, got %d", i+1, len(row))
		}

		x, err := cast.ToFloat64E(strings.TrimSpace(row[0]))
		if err != nil {
			if i == 0 {
				continue // header
			}
			return nil, fmt.Errorf("line %d: x: %w", i+1, err)
		}
		y, err := cast.ToFloat64E(strings.TrimSpace(row[1]))
		if err != nil {
			return nil, fmt.Errorf("line %d: y: %w", i+1, err)
		}

		weight := 1.0
		if len(row) == 3 {
			weight, err = cast.ToFloat64E(strings.TrimSpace(row[2]))
			if err != nil {
				return nil, fmt.Errorf("line %d: weight: %w", i+1, err)
			}
		}

		points = append(points, weber.WeightedPoint{X: x, Y: y, Weight: weight})
	}
	return points, nil
}

func fromRecords(records []filePoint) []weber.WeightedPoint {
	out := make([]weber.WeightedPoint, len(records))
	for i, r := range records {
		weight := 1.0
		if r.Weight != nil {
			weight = *r.Weight
		}
		out[i] = weber.WeightedPoint{X: r.X, Y: r.Y, Weight: weight}
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
