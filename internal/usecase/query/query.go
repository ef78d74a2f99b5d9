package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// Select evaluates a JSONPath expression against a JSON document and renders
// the value as a string. Strings, numbers and booleans are printed bare; any
// other value (including an empty list) is rendered as compact JSON.
func Select(doc []byte, expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return "", errors.New("empty jsonpath expression")
	}

	var parsed any
	if err := json.Unmarshal(doc, &parsed); err != nil {
		return "", fmt.Errorf("document is not valid JSON: %w", err)
	}

	val, err := jsonpath.Get(expr, parsed)
	if err != nil {
		return "", fmt.Errorf("query %q: %w", expr, err)
	}
	if val == nil {
		return "", fmt.Errorf("query %q: no value found", expr)
	}

	s, err := render(val)
	if err != nil {
		return "", fmt.Errorf("query %q: cannot render value: %w", expr, err)
	}
	return s, nil
}

func render(v any) (string, error) {
	// jsonpath wildcards return a slice; a single match is unwrapped.
	if arr, ok := v.([]any); ok && len(arr) == 1 {
		return render(arr[0])
	}

	switch t := v.(type) {
	case string:
		return t, nil
	case float64, bool:
		return fmt.Sprint(t), nil
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
