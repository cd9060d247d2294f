// Package validate classifies mapped records against their schema. It is
// pure: a record is never mutated, only judged, and every violation is
// collected so a rejection explains itself completely.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"supplysight/pkg/core/schema"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Result is the verdict for one record.
type Result struct {
	OK      bool
	Reasons []string
}

// Check validates a provisional record against its schema definition.
// Violations do not short-circuit: a record missing two required fields is
// rejected with two reasons.
func Check(def *schema.Definition, rec schema.Record) Result {
	var reasons []string

	for _, spec := range def.Fields {
		value, present := rec[spec.Name]

		if !present || value == nil {
			if spec.Required {
				reasons = append(reasons, fmt.Sprintf("%s: required, missing", spec.Name))
			}
			continue
		}

		switch spec.Kind {
		case schema.KindString:
			reasons = append(reasons, checkString(spec, value)...)
		case schema.KindNumber:
			reasons = append(reasons, checkNumber(spec, value)...)
		case schema.KindEnum:
			reasons = append(reasons, checkEnum(spec, value)...)
		case schema.KindDate:
			reasons = append(reasons, checkDate(spec, value)...)
		case schema.KindStringList:
			if _, ok := value.([]string); !ok {
				reasons = append(reasons, fmt.Sprintf("%s: expected string list, got %T", spec.Name, value))
			}
		}
	}

	return Result{OK: len(reasons) == 0, Reasons: reasons}
}

func checkString(spec schema.FieldSpec, value interface{}) []string {
	s, ok := value.(string)
	if !ok {
		return []string{fmt.Sprintf("%s: expected string, got %T", spec.Name, value)}
	}
	if strings.TrimSpace(s) == "" {
		if spec.Required {
			return []string{fmt.Sprintf("%s: required, empty", spec.Name)}
		}
		return nil
	}
	if spec.Email && !emailPattern.MatchString(s) {
		return []string{fmt.Sprintf("%s: %q is not a valid email address", spec.Name, s)}
	}
	return nil
}

func checkNumber(spec schema.FieldSpec, value interface{}) []string {
	f, ok := value.(float64)
	if !ok {
		return []string{fmt.Sprintf("%s: expected number, got %T", spec.Name, value)}
	}
	var reasons []string
	if spec.Min != nil && f < *spec.Min {
		reasons = append(reasons, fmt.Sprintf("%s: %g is below minimum %g", spec.Name, f, *spec.Min))
	}
	if spec.Max != nil && f > *spec.Max {
		reasons = append(reasons, fmt.Sprintf("%s: %g is above maximum %g", spec.Name, f, *spec.Max))
	}
	return reasons
}

func checkEnum(spec schema.FieldSpec, value interface{}) []string {
	s, ok := value.(string)
	if !ok {
		return []string{fmt.Sprintf("%s: expected string, got %T", spec.Name, value)}
	}
	for _, allowed := range spec.Enum {
		if s == allowed {
			return nil
		}
	}
	return []string{fmt.Sprintf("%s: %q is not one of [%s]", spec.Name, s, strings.Join(spec.Enum, ", "))}
}

func checkDate(spec schema.FieldSpec, value interface{}) []string {
	switch v := value.(type) {
	case time.Time:
		if v.IsZero() {
			return []string{fmt.Sprintf("%s: zero date", spec.Name)}
		}
		return nil
	case string:
		if _, err := schema.CoerceDate(v); err != nil {
			return []string{fmt.Sprintf("%s: %q is not a valid date", spec.Name, v)}
		}
		return nil
	default:
		return []string{fmt.Sprintf("%s: expected date, got %T", spec.Name, value)}
	}
}
