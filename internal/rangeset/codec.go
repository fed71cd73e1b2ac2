package rangeset

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/preflop/internal/hand"
	"github.com/verte-zerg/preflop/internal/model"
)

// Format is a range set file encoding.
type Format string

// Supported formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFor picks the format from a file extension. Anything but .json is YAML.
func FormatFor(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Decode parses a range set, fills defaults and validates it.
func Decode(data []byte, format Format) (model.RangeSet, error) {
	var set model.RangeSet
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &set)
	default:
		err = yaml.Unmarshal(data, &set)
	}
	if err != nil {
		return model.RangeSet{}, fmt.Errorf("failed to parse range set: %w", err)
	}
	normalize(&set)
	if err := Validate(set); err != nil {
		return model.RangeSet{}, err
	}
	return set, nil
}

// Encode serializes a range set.
func Encode(set model.RangeSet, format Format) ([]byte, error) {
	if format == FormatJSON {
		return json.MarshalIndent(set, "", "  ")
	}
	return yaml.Marshal(set)
}

// Import reads a range set file.
func Import(path string) (model.RangeSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RangeSet{}, fmt.Errorf("failed to read range set: %w", err)
	}
	set, err := Decode(data, FormatFor(path))
	if err != nil {
		return model.RangeSet{}, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Export writes a range set file, creating parent directories.
func Export(path string, set model.RangeSet) error {
	data, err := Encode(set, FormatFor(path))
	if err != nil {
		return fmt.Errorf("failed to encode range set: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write range set: %w", err)
	}
	return nil
}

// normalize canonicalizes hand codes and enables every hand when no list is given.
func normalize(set *model.RangeSet) {
	if set.Meta.Version == 0 {
		set.Meta.Version = 1
	}
	if set.Meta.CreatedAt.IsZero() {
		set.Meta.CreatedAt = set.Meta.UpdatedAt
	}
	for i := range set.Scenarios {
		sc := &set.Scenarios[i]
		if sc.ScenarioType == "" {
			sc.ScenarioType = model.ScenarioOpen
		}
		hands := make(map[model.HandCode]model.HandDecision, len(sc.Hands))
		for code, d := range sc.Hands {
			if grid, ok := hand.ToGrid(code); ok {
				code = grid
			}
			hands[code] = d
		}
		sc.Hands = hands
		if len(sc.EnabledHandCodes) == 0 {
			for code := range sc.Hands {
				sc.EnabledHandCodes = append(sc.EnabledHandCodes, code)
			}
		}
		for j, code := range sc.EnabledHandCodes {
			if grid, ok := hand.ToGrid(code); ok {
				sc.EnabledHandCodes[j] = grid
			}
		}
		hand.SortCanonical(sc.EnabledHandCodes)
	}
}
