// Package knowledge holds the persisted parameter record that drives
// colony-level decisions. Runtime state derived from the board (known
// food, population target) lives in the colony manager, never here, so
// a Knowledge value always serializes clean.
package knowledge

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// ErrInvalid marks a malformed or incomplete knowledge file. All load
// and parse failures wrap it.
var ErrInvalid = errors.New("invalid knowledge")

// Computing weights the board aggregates that feed the population
// target formula.
//
// Fields are declared in alphabetical key order so MarshalIndent output
// is byte-stable, matching saves produced with sorted keys.
type Computing struct {
	BlobSizeFactor   float64 `json:"Blob Size Factor"`
	CoveringFactor   float64 `json:"Covering Factor"`
	GlobalFactor     float64 `json:"Global Factor"`
	KnownFoodsFactor float64 `json:"Known Foods Factor"`
}

// Scouters holds per-agent tunables.
type Scouters struct {
	// Drop is the trail mass a scouter deposits per step. Optional in
	// older files; Parse applies DefaultDrop when absent.
	Drop float64 `json:"Drop"`
	// Min floors the population target. Must be at least 1.
	Min int `json:"Min"`
}

// Knowledge is the persisted colony parameter record.
type Knowledge struct {
	Computing       Computing `json:"Computing"`
	GlobalDecrease  float64   `json:"Global Decrease"`
	RemainingOnFood float64   `json:"Remaining Blob on Food"`
	Scouters        Scouters  `json:"Scouters"`
}

// DefaultDrop is used when a knowledge file predates the Scouters.Drop
// field.
const DefaultDrop = 25.0

// Default returns a Knowledge with the tunings used by the sample
// boards.
func Default() Knowledge {
	return Knowledge{
		Computing: Computing{
			BlobSizeFactor:   0.25,
			CoveringFactor:   1.0,
			GlobalFactor:     1.0,
			KnownFoodsFactor: 10.0,
		},
		GlobalDecrease:  3.0,
		RemainingOnFood: 30.0,
		Scouters: Scouters{
			Drop: DefaultDrop,
			Min:  2,
		},
	}
}

// required lists every field a knowledge file must carry, as
// (object, key) pairs. "" means the top-level record.
var required = []struct {
	section string
	key     string
}{
	{"", "Global Decrease"},
	{"", "Remaining Blob on Food"},
	{"", "Computing"},
	{"", "Scouters"},
	{"Computing", "Blob Size Factor"},
	{"Computing", "Covering Factor"},
	{"Computing", "Known Foods Factor"},
	{"Computing", "Global Factor"},
	{"Scouters", "Min"},
}

// Parse decodes and validates a knowledge payload. Unknown keys
// (including the "food" and "max_scouters" entries written by older
// tooling) are ignored.
func Parse(data []byte) (Knowledge, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return Knowledge{}, fmt.Errorf("%w: decode: %v", ErrInvalid, err)
	}

	sections := map[string]map[string]json.RawMessage{"": raw}
	for _, name := range []string{"Computing", "Scouters"} {
		payload, ok := raw[name]
		if !ok {
			continue
		}
		var sub map[string]json.RawMessage
		if err := json.Unmarshal(payload, &sub); err != nil {
			return Knowledge{}, fmt.Errorf("%w: %q must be an object", ErrInvalid, name)
		}
		sections[name] = sub
	}

	for _, req := range required {
		section, ok := sections[req.section]
		if !ok {
			continue // the missing section is reported by its top-level entry
		}
		if _, ok := section[req.key]; !ok {
			field := req.key
			if req.section != "" {
				field = req.section + "." + req.key
			}
			return Knowledge{}, fmt.Errorf("%w: missing required field %q", ErrInvalid, field)
		}
	}

	var k Knowledge
	if err := json.Unmarshal(data, &k); err != nil {
		return Knowledge{}, fmt.Errorf("%w: decode: %v", ErrInvalid, err)
	}
	if k.Scouters.Min < 1 {
		return Knowledge{}, fmt.Errorf("%w: Scouters.Min must be at least 1, got %d", ErrInvalid, k.Scouters.Min)
	}
	if k.Scouters.Drop == 0 {
		k.Scouters.Drop = DefaultDrop
	}
	return k, nil
}

// Load reads and validates a knowledge file.
func Load(path string) (Knowledge, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Knowledge{}, fmt.Errorf("%w: read %s: %v", ErrInvalid, path, err)
	}
	k, err := Parse(data)
	if err != nil {
		return Knowledge{}, fmt.Errorf("%s: %w", path, err)
	}
	return k, nil
}

// Encode serializes the record with four-space indentation and stable
// key order. Identical Knowledge values always encode to identical
// bytes; this exact form is the round-trip compatibility target.
func (k Knowledge) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(k, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("encode knowledge: %w", err)
	}
	return append(data, '\n'), nil
}

// Save writes the encoded record to path.
func (k Knowledge) Save(path string) error {
	data, err := k.Encode()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("save knowledge: %w", err)
	}
	return nil
}
