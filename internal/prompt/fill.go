package prompt

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Fill asks for every key in keys that data does not define and returns a
// copy of data with the answers. "true"/"false" answers become booleans
// and whole numbers become ints; everything else stays a string. Empty
// answers are left out so the template sees a miss.
func Fill(ctx context.Context, driver Driver, keys []string, data map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(data)+len(keys))
	for key, value := range data {
		out[key] = value
	}

	var missing []string
	for _, key := range keys {
		if _, ok := out[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return out, nil
	}

	if err := driver.Info(ctx, fmt.Sprintf("%d template value(s) missing", len(missing))); err != nil {
		return nil, err
	}
	for _, key := range missing {
		answer, err := driver.Input(ctx, InputConfig{
			Message: key,
			Help:    "leave empty to render the template without " + key,
		})
		if err != nil {
			return nil, fmt.Errorf("prompt: %s: %w", key, err)
		}
		if value, ok := coerce(answer); ok {
			out[key] = value
		}
	}
	return out, nil
}

// Choose asks for one of options and returns it. A single option is
// returned without asking.
func Choose(ctx context.Context, driver Driver, message string, options []string, def string) (string, error) {
	switch len(options) {
	case 0:
		return "", fmt.Errorf("prompt: %s: no options", message)
	case 1:
		return options[0], nil
	}
	idx, err := driver.Select(ctx, SelectConfig{
		Message:      message,
		Options:      options,
		DefaultIndex: indexOf(options, def),
	})
	if err != nil {
		return "", err
	}
	if idx < 0 || idx >= len(options) {
		return "", fmt.Errorf("prompt: %s: invalid choice", message)
	}
	return options[idx], nil
}

func coerce(answer string) (any, bool) {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return nil, false
	}
	if b, err := strconv.ParseBool(trimmed); err == nil && (trimmed == "true" || trimmed == "false") {
		return b, true
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		return n, true
	}
	return answer, true
}
