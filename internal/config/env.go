package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// envReader reads typed values through lookup.  The first missing
// required variable is kept in err; optional values fall back to their
// default when unset or malformed.
type envReader struct {
	lookup lookupFunc
	err    error
}

func osEnv() *envReader { return &envReader{lookup: os.LookupEnv} }

func (e *envReader) get(key string) string {
	v, ok := e.lookup(key)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

func (e *envReader) must(key string) string {
	v := e.get(key)
	if v == "" && e.err == nil {
		e.err = fmt.Errorf("missing required env var: %s", key)
	}
	return v
}

func (e *envReader) str(key, def string) string {
	if v := e.get(key); v != "" {
		return v
	}
	return def
}

func (e *envReader) boolean(key string, def bool) bool {
	switch strings.ToLower(e.get(key)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func (e *envReader) integer(key string, def int) int {
	if n, err := strconv.Atoi(e.get(key)); err == nil {
		return n
	}
	return def
}

func (e *envReader) dur(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(e.get(key)); err == nil {
		return d
	}
	return def
}

// list splits a comma separated value, upper-cases and drops empty items.
func (e *envReader) list(key, def string) map[string]bool {
	m := map[string]bool{}
	for _, p := range strings.Split(e.str(key, def), ",") {
		p = strings.TrimSpace(strings.ToUpper(p))
		if p != "" {
			m[p] = true
		}
	}
	return m
}
