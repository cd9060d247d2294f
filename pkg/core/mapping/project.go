package mapping

import (
	"supplysight/pkg/core/schema"
)

// OwnerField is the record key carrying the owning-user identifier.
const OwnerField = "userId"

// Project turns the oracle's untyped objects into provisional records using
// the same coercion rules as the fallback mapper. No defaults are applied
// here: a field the oracle failed to supply, or supplied with an
// uncoercible value, stays unset and is the validator's problem.
func Project(def *schema.Definition, objs []map[string]interface{}) []schema.Record {
	records := make([]schema.Record, 0, len(objs))
	for _, obj := range objs {
		// Tolerate oracles that echo headers with different casing.
		normalized := make(map[string]interface{}, len(obj))
		for k, v := range obj {
			normalized[schema.Normalize(k)] = v
		}

		rec := make(schema.Record, len(def.Fields))
		for _, spec := range def.Fields {
			raw, ok := obj[spec.Name]
			if !ok {
				raw, ok = normalized[schema.Normalize(spec.Name)]
			}
			if !ok || raw == nil {
				continue
			}
			if v, err := schema.Coerce(spec, raw); err == nil {
				rec[spec.Name] = v
			}
		}
		records = append(records, rec)
	}
	return records
}

// AttachOwner stamps every record with the owning-user identifier. Runs
// after mapping, before validation, on both the AI and fallback paths.
func AttachOwner(records []schema.Record, userID string) {
	for _, rec := range records {
		rec[OwnerField] = userID
	}
}
