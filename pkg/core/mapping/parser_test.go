package mapping

import (
	"errors"
	"testing"
)

func TestParseArrayEquivalentEnvelopes(t *testing.T) {
	// The same payload must parse identically whether the oracle wraps it
	// in a labelled fence, a bare fence, or no fence at all.
	payload := `[{"name": "Widget", "unitCost": 12.5}, {"name": "Gadget", "unitCost": 3}]`
	tests := []struct {
		name string
		raw  string
	}{
		{"bare json", payload},
		{"json fence", "Here is the mapping:\n\n```json\n" + payload + "\n```\n"},
		{"unlabelled fence", "```\n" + payload + "\n```"},
		{"fence with trailing prose", "```json\n" + payload + "\n```\nLet me know if you need changes."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objs, err := ParseArray(tt.raw)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(objs) != 2 {
				t.Fatalf("got %d objects, want 2", len(objs))
			}
			if objs[0]["name"] != "Widget" {
				t.Errorf("first object = %v", objs[0])
			}
			if objs[1]["unitCost"] != float64(3) {
				t.Errorf("second object = %v", objs[1])
			}
		})
	}
}

func TestParseArrayRepairsLenientJSON(t *testing.T) {
	// Unquoted keys and a trailing comma: strict JSON fails, repair succeeds.
	raw := `[{name: "Widget", unitCost: 12.5},]`
	objs, err := ParseArray(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(objs) != 1 || objs[0]["name"] != "Widget" {
		t.Errorf("objs = %v", objs)
	}
}

func TestParseArrayRejectsNonArray(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"top-level object", `{"name": "Widget"}`},
		{"scalar", `42`},
		{"array of scalars", `[1, 2, 3]`},
		{"prose only", "I could not map these rows."},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArray(tt.raw)
			if err == nil {
				t.Fatal("expected error")
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Errorf("error type = %T, want *ParseError", err)
			}
		})
	}
}

func TestParseArrayEmptyArray(t *testing.T) {
	objs, err := ParseArray(`[]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(objs) != 0 {
		t.Errorf("got %d objects, want 0", len(objs))
	}
}

func TestParseArrayPrefersJSONFence(t *testing.T) {
	// A python fence appears first but the json fence carries the payload.
	raw := "```python\nprint('hi')\n```\n\n```json\n[{\"name\": \"Widget\"}]\n```"
	objs, err := ParseArray(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(objs) != 1 || objs[0]["name"] != "Widget" {
		t.Errorf("objs = %v", objs)
	}
}
