// Package envfile reads the KEY=VALUE file that holds storage credentials and
// publish API settings for a release run.
package envfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNotFound is returned when the env file does not exist
var ErrNotFound = errors.New("env file not found")

// Values maps variable names to their raw string values
type Values map[string]string

// Load reads and parses the env file at path
func Load(path string) (Values, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open env file: %w", err)
	}
	defer file.Close()

	return Parse(file)
}

// Parse reads KEY=VALUE lines. Blank lines, lines starting with # and lines
// without = are skipped; only the first = separates key from value.
func Parse(r io.Reader) (Values, error) {
	values := Values{}

	reader := bufio.NewReader(r)
	for {
		raw, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read env file: %w", err)
		}

		line := strings.TrimSpace(raw)
		if line != "" && !strings.HasPrefix(line, "#") {
			if key, value, ok := strings.Cut(line, "="); ok {
				values[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
		}

		if err != nil {
			break // io.EOF
		}
	}

	return values, nil
}

// Get returns the trimmed value for key, or "" if unset
func (v Values) Get(key string) string {
	return strings.TrimSpace(v[key])
}

// GetDefault returns the value for key, or def when the value is empty
func (v Values) GetDefault(key, def string) string {
	if value := v.Get(key); value != "" {
		return value
	}
	return def
}

// Bool interprets key as a flag. 1, true, yes and y are true; any other
// non-empty value is false; an empty value yields def.
func (v Values) Bool(key string, def bool) bool {
	value := strings.ToLower(v.Get(key))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

// Missing returns the keys, in the given order, whose values are empty
func (v Values) Missing(keys ...string) []string {
	var missing []string
	for _, key := range keys {
		if v.Get(key) == "" {
			missing = append(missing, key)
		}
	}
	return missing
}
