package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Coercion is the single canonical decode step from a raw cell value to the
// typed value a field's Kind demands. Both the AI mapping path and the
// fallback heuristic mapper go through these rules, so validation sees one
// shape regardless of how the record was produced.

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// dateFormats are tried in order when coercing a date cell.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"Jan 2, 2006",
	"2 Jan 2006",
}

// Coerce converts a raw value into the typed representation the field's
// Kind demands. Raw values are usually strings (spreadsheet cells) but JSON-decoded
// numbers and arrays from the mapping oracle are handled too.
func Coerce(spec FieldSpec, raw interface{}) (interface{}, error) {
	if raw == nil {
		return nil, fmt.Errorf("%s: no value", spec.Name)
	}
	switch spec.Kind {
	case KindNumber:
		return CoerceNumber(raw)
	case KindDate:
		return CoerceDate(raw)
	case KindStringList:
		return CoerceStringList(raw)
	case KindEnum, KindString:
		return coerceString(raw), nil
	default:
		return nil, fmt.Errorf("%s: unsupported kind %q", spec.Name, spec.Kind)
	}
}

// CoerceNumber extracts a float from messy cell text: currency symbols,
// thousands separators and trailing prose ("4.5 out of 5") are tolerated by
// taking the first numeric substring.
func CoerceNumber(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(v), ",", "")
		match := numberPattern.FindString(s)
		if match == "" {
			return 0, fmt.Errorf("no numeric content in %q", v)
		}
		f, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", match, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("cannot coerce %T to number", raw)
	}
}

// CoerceDate parses a calendar date from the formats spreadsheets commonly
// emit.
func CoerceDate(raw interface{}) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, fmt.Errorf("empty date")
		}
		for _, layout := range dateFormats {
			if t, err := time.Parse(layout, s); err == nil {
				return t, nil
			}
		}
		return time.Time{}, fmt.Errorf("unparseable date %q", v)
	default:
		return time.Time{}, fmt.Errorf("cannot coerce %T to date", raw)
	}
}

// CoerceStringList splits delimited cell text into a trimmed string slice.
// JSON arrays from the oracle are flattened element by element.
func CoerceStringList(raw interface{}) ([]string, error) {
	switch v := raw.(type) {
	case []string:
		return v, nil
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s := strings.TrimSpace(coerceString(item))
			if s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	case string:
		parts := strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ';' || r == '|'
		})
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if s := strings.TrimSpace(p); s != "" {
				out = append(out, s)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot coerce %T to string list", raw)
	}
}

func coerceString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		// JSON numbers that land in string fields keep an integer look
		// when they have no fraction.
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", raw))
	}
}

// Normalize lowercases a column header and strips spaces, underscores and
// hyphens, so "Unit_Cost", "unit-cost" and "Unit Cost" all collapse to one
// key for synonym matching.
func Normalize(header string) string {
	s := strings.ToLower(strings.TrimSpace(header))
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "_", "")
	s = strings.ReplaceAll(s, "-", "")
	return s
}
