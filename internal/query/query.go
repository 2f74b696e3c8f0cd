// Package query runs jq expressions over saved form definitions.
package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
	. "github.com/qureshisamad/Dynamic-Form-Maker/internal/logging"
	"github.com/qureshisamad/Dynamic-Form-Maker/internal/store"
)

// Run evaluates expr against the definitions in their persisted JSON form
// and returns every value the expression emits.
func Run(ctx context.Context, defs []store.Definition, expr string) ([]any, error) {
	parsed, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid jq query: %w", err)
	}

	if defs == nil {
		defs = []store.Definition{}
	}
	data, err := json.Marshal(defs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode forms: %w", err)
	}
	var input any
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, fmt.Errorf("failed to decode forms: %w", err)
	}

	var results []any
	iter := parsed.RunWithContext(ctx, input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, fmt.Errorf("jq error: %w", err)
		}
		results = append(results, v)
	}

	L_debug("query: evaluated", "expr", expr, "results", len(results))
	return results, nil
}

// Format renders results one per line. Raw prints strings without quotes;
// compact prints JSON on a single line.
func Format(results []any, raw, compact bool) (string, error) {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		if s, ok := r.(string); ok && raw {
			lines = append(lines, s)
			continue
		}

		var b []byte
		var err error
		if compact || raw {
			b, err = json.Marshal(r)
		} else {
			b, err = json.MarshalIndent(r, "", "  ")
		}
		if err != nil {
			return "", fmt.Errorf("failed to encode result: %w", err)
		}
		lines = append(lines, string(b))
	}
	return strings.Join(lines, "\n"), nil
}
