package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// reader looks up environment variables and remembers every value it
// could not parse.
type reader struct {
	problems []error
}

func (r *reader) fail(key, msg string) {
	r.problems = append(r.problems, fmt.Errorf("%s %s", key, msg))
}

func (r *reader) err() error {
	if len(r.problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", errInvalid, errors.Join(r.problems...))
}

func (r *reader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func (r *reader) integer(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		r.fail(key, fmt.Sprintf("is not a number: %q", v))
		return def
	}
	return n
}

func (r *reader) duration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		r.fail(key, fmt.Sprintf("is not a duration: %q", v))
		return def
	}
	return d
}

// limit parses "<requests>/<window>", e.g. "10/1m". "0" turns the limit
// off.
func (r *reader) limit(key string, def Limit) Limit {
	v, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	v = strings.TrimSpace(v)
	if v == "0" {
		return Limit{}
	}
	count, window, found := strings.Cut(v, "/")
	n, errN := strconv.Atoi(count)
	d, errD := time.ParseDuration(window)
	if !found || errN != nil || errD != nil || n <= 0 || d <= 0 {
		r.fail(key, fmt.Sprintf("must look like 10/1m, got %q", v))
		return def
	}
	return Limit{Requests: n, Window: d}
}

// list splits a comma-separated variable, dropping empty items.
func (r *reader) list(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
