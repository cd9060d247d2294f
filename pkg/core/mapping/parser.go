package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	hjson "github.com/hjson/hjson-go/v4"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gtext "github.com/yuin/goldmark/text"
)

// ParseError reports that the oracle's reply could not be turned into a
// JSON array. The raw reply is retained for diagnostics.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("mapping response unparseable: %s", e.Reason)
}

type fence struct {
	info string // language label, e.g. "json"
	body string
}

// ParseArray extracts a JSON array of objects from the oracle's raw text.
// Candidates are tried in order: ```json fences, any other fence, the whole
// reply. Each candidate goes through strict JSON, then json-repair, then
// hjson. A top-level object or scalar is a failure, not an array of one.
func ParseArray(raw string) ([]map[string]interface{}, error) {
	var candidates []string
	fences := fencedBlocks(raw)
	for _, f := range fences {
		if strings.EqualFold(f.info, "json") {
			candidates = append(candidates, f.body)
		}
	}
	for _, f := range fences {
		if !strings.EqualFold(f.info, "json") {
			candidates = append(candidates, f.body)
		}
	}
	candidates = append(candidates, raw)

	var lastErr error
	for _, c := range candidates {
		objs, err := decodeArray(c)
		if err == nil {
			return objs, nil
		}
		lastErr = err
	}
	return nil, &ParseError{Reason: lastErr.Error(), Raw: raw}
}

// fencedBlocks walks the reply as markdown and collects every fenced code
// block with its language label.
func fencedBlocks(raw string) []fence {
	src := []byte(raw)
	doc := goldmark.DefaultParser().Parse(gtext.NewReader(src))

	var out []fence
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fc, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		info := ""
		if fc.Info != nil {
			info = strings.TrimSpace(string(fc.Info.Segment.Value(src)))
			if i := strings.IndexByte(info, ' '); i >= 0 {
				info = info[:i]
			}
		}
		var buf bytes.Buffer
		lines := fc.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			buf.Write(seg.Value(src))
		}
		out = append(out, fence{info: info, body: buf.String()})
		return ast.WalkContinue, nil
	})
	return out
}

// decodeArray parses one candidate string, repairing lenient JSON if
// needed, and insists on an array of objects at the top level.
func decodeArray(candidate string) ([]map[string]interface{}, error) {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return nil, fmt.Errorf("empty candidate")
	}

	var value interface{}
	if err := json.Unmarshal([]byte(candidate), &value); err != nil {
		// Strict JSON failed: try automated repair (unquoted keys,
		// trailing commas, truncated arrays).
		if repaired, rerr := jsonrepair.RepairJSON(candidate); rerr == nil {
			if err2 := json.Unmarshal([]byte(repaired), &value); err2 != nil {
				value = nil
			}
		}
		if value == nil {
			// Last resort: hjson tolerates comments and unquoted strings.
			if herr := hjson.Unmarshal([]byte(candidate), &value); herr != nil {
				return nil, fmt.Errorf("invalid JSON: %v", err)
			}
		}
	}

	arr, ok := value.([]interface{})
	if !ok {
		return nil, fmt.Errorf("top-level JSON is %T, expected array", value)
	}

	objs := make([]map[string]interface{}, 0, len(arr))
	for i, item := range arr {
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("array element %d is %T, expected object", i, item)
		}
		objs = append(objs, obj)
	}
	return objs, nil
}
