package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// envReader reads typed environment variables and remembers every value it
// could not parse, so a typo surfaces at startup instead of a silent default.
type envReader struct {
	errs []error
}

func (r *envReader) lookup(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	return value, value != ""
}

func (r *envReader) fail(key, value string, err error) {
	r.errs = append(r.errs, fmt.Errorf("invalid %s %q: %w", key, value, err))
}

func (r *envReader) String(key, defaultVal string) string {
	if value, ok := r.lookup(key); ok {
		return value
	}
	return defaultVal
}

func (r *envReader) Int(key string, defaultVal int) int {
	value, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		r.fail(key, value, err)
		return defaultVal
	}
	return v
}

func (r *envReader) Float(key string, defaultVal float64) float64 {
	value, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		r.fail(key, value, err)
		return defaultVal
	}
	return v
}

func (r *envReader) Bool(key string, defaultVal bool) bool {
	value, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		r.fail(key, value, err)
		return defaultVal
	}
	return v
}

func (r *envReader) Duration(key string, defaultVal time.Duration) time.Duration {
	value, ok := r.lookup(key)
	if !ok {
		return defaultVal
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		r.fail(key, value, err)
		return defaultVal
	}
	return d
}

func (r *envReader) StringSlice(key string, defaults []string) []string {
	value, ok := r.lookup(key)
	if !ok {
		return defaults
	}
	parts := strings.Split(value, ",")
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			filtered = append(filtered, p)
		}
	}
	if len(filtered) == 0 {
		return defaults
	}
	return filtered
}

// Err joins every parse failure seen so far.
func (r *envReader) Err() error {
	return errors.Join(r.errs...)
}
