package mapping

import (
	"fmt"
	"strings"
	"time"

	"supplysight/pkg/core/extract"
	"supplysight/pkg/core/schema"
)

// Sequence issues synthetic identifiers for one fallback run. Each file's
// run gets its own zero-based sequence so concurrently processed files can
// never collide.
type Sequence struct {
	prefix string
	next   int
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) Next() string {
	id := fmt.Sprintf("%s-%04d", s.prefix, s.next)
	s.next++
	return id
}

// Fallback maps raw rows onto a schema without the oracle: deterministic
// synonym matching per column, documented defaults for anything required
// that cannot be located. It always returns exactly one provisional record
// per input row.
func Fallback(def *schema.Definition, table *extract.RawTable, seq *Sequence) []schema.Record {
	columns := resolveColumns(def, table.Headers)

	records := make([]schema.Record, 0, len(table.Rows))
	for _, row := range table.Rows {
		rec := make(schema.Record, len(def.Fields))
		for _, spec := range def.Fields {
			// A located column's value flows through even when empty:
			// the validator, not the mapper, rejects blank required
			// cells. Defaults cover missing columns and failed
			// coercions only.
			if col, found := columns[spec.Name]; found {
				if v, err := schema.Coerce(spec, row[col]); err == nil {
					rec[spec.Name] = v
					continue
				}
			}
			applyDefault(rec, spec, seq)
		}
		records = append(records, rec)
	}
	return records
}

// resolveColumns decides, once per table, which original header feeds each
// canonical field. Exact synonym matches win over substring matches, and a
// header can only feed one field.
func resolveColumns(def *schema.Definition, headers []string) map[string]string {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = schema.Normalize(h)
	}

	columns := make(map[string]string, len(def.Fields))
	used := make(map[string]bool, len(headers))

	// Pass 1: exact normalized match, first synonym wins.
	for _, spec := range def.Fields {
		for _, syn := range spec.Synonyms {
			want := schema.Normalize(syn)
			for i, h := range headers {
				if normalized[i] == want && !used[h] {
					columns[spec.Name] = h
					used[h] = true
					break
				}
			}
			if _, ok := columns[spec.Name]; ok {
				break
			}
		}
	}

	// Pass 2: substring match for anything still unresolved.
	for _, spec := range def.Fields {
		if _, ok := columns[spec.Name]; ok {
			continue
		}
		for _, syn := range spec.Synonyms {
			want := schema.Normalize(syn)
			for i, h := range headers {
				if !used[h] && strings.Contains(normalized[i], want) {
					columns[spec.Name] = h
					used[h] = true
					break
				}
			}
			if _, ok := columns[spec.Name]; ok {
				break
			}
		}
	}
	return columns
}

func applyDefault(rec schema.Record, spec schema.FieldSpec, seq *Sequence) {
	switch spec.Default {
	case schema.DefaultSentinel:
		rec[spec.Name] = spec.SentinelValue
	case schema.DefaultNumber:
		rec[spec.Name] = spec.NumberValue
	case schema.DefaultCounter:
		rec[spec.Name] = seq.Next()
	case schema.DefaultDateOffset:
		rec[spec.Name] = time.Now().AddDate(0, 0, spec.OffsetDays)
	case schema.DefaultOmit:
		// Optional field, left unset on purpose.
	}
}
