package mapping

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"supplysight/pkg/core/extract"
	"supplysight/pkg/core/llm"
	"supplysight/pkg/core/prompt"
	"supplysight/pkg/core/schema"
)

const (
	defaultOracleTimeout = 45 * time.Second
	// maxOracleRows bounds how many raw rows are shipped to the oracle.
	maxOracleRows = 200
	// maxCellLen truncates pathological cell values in the prompt.
	maxCellLen = 160
)

const mapperSystemPrompt = `You are a data normalization assistant for a supply-chain dashboard. You map arbitrarily named spreadsheet columns onto a fixed target schema. You reply with a JSON array only, no prose.`

// Oracle asks an LLM to map raw rows onto a target schema. The reply is
// free text; ParseArray decides whether it is usable.
type Oracle struct {
	provider llm.Provider
	timeout  time.Duration
}

// NewOracle builds an oracle client. A zero timeout selects the default.
// A nil provider is legal and makes every MapRows call fail, which pushes
// callers onto the fallback mapper (offline mode).
func NewOracle(provider llm.Provider, timeout time.Duration) *Oracle {
	if timeout <= 0 {
		timeout = defaultOracleTimeout
	}
	return &Oracle{provider: provider, timeout: timeout}
}

// MapRows sends the schema description plus the raw rows to the oracle and
// parses the reply into untyped objects, one per row. Any transport fault,
// timeout or unparseable reply comes back as an error; the caller treats
// all of them identically.
func (o *Oracle) MapRows(ctx context.Context, def *schema.Definition, table *extract.RawTable) ([]map[string]interface{}, error) {
	if o.provider == nil {
		return nil, fmt.Errorf("no oracle provider configured")
	}

	systemPrompt, userPrompt, err := o.buildPrompt(def, table)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	response, err := o.provider.Generate(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("oracle call failed: %w", err)
	}
	return ParseArray(response)
}

// buildPrompt prefers the prompt library ("mapping.<schemaType>") and falls
// back to a hardcoded prompt when the library is absent.
func (o *Oracle) buildPrompt(def *schema.Definition, table *extract.RawTable) (string, string, error) {
	rowsJSON, err := sampleRowsJSON(table)
	if err != nil {
		return "", "", fmt.Errorf("encode sample rows: %w", err)
	}
	fieldsDesc := describeFields(def)

	if pt, perr := prompt.Get().GetPrompt("mapping." + def.Type); perr == nil {
		pctx := prompt.NewContext().
			Set("SchemaType", def.Type).
			Set("Fields", fieldsDesc).
			Set("Rows", rowsJSON)
		if userPrompt, rerr := prompt.RenderUserPrompt(pt, pctx); rerr == nil {
			return pt.SystemPrompt, userPrompt, nil
		}
	}

	userPrompt := fmt.Sprintf(`Map each input row onto the %q schema.

TARGET FIELDS:
%s

INPUT ROWS (JSON, original column names):
%s

Output a JSON array with exactly one object per input row, in input order.
Use only the canonical field names above as keys. Convert values to the
declared type (numbers as JSON numbers, dates as YYYY-MM-DD strings, lists
as JSON arrays of strings). Omit a key when the row has no usable value for
it. Output the JSON array and nothing else.`, def.Type, fieldsDesc, rowsJSON)

	return mapperSystemPrompt, userPrompt, nil
}

func describeFields(def *schema.Definition) string {
	var b strings.Builder
	for _, f := range def.Fields {
		fmt.Fprintf(&b, "- %s (%s", f.Name, f.Kind)
		if f.Required {
			b.WriteString(", required")
		}
		if len(f.Enum) > 0 {
			fmt.Fprintf(&b, ", one of: %s", strings.Join(f.Enum, " | "))
		}
		b.WriteString(")\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func sampleRowsJSON(table *extract.RawTable) (string, error) {
	rows := table.Rows
	if len(rows) > maxOracleRows {
		rows = rows[:maxOracleRows]
	}

	sample := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		entry := make(map[string]string, len(row))
		for k, v := range row {
			if len(v) > maxCellLen {
				v = v[:maxCellLen]
			}
			entry[k] = v
		}
		sample = append(sample, entry)
	}

	data, err := json.Marshal(sample)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
