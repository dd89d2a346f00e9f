package pipeline

import (
	"strconv"
	"strings"

	"sable/internal/diag"
)

const cutoffPrefix = "stop-after="

// ParseCutoff parses a debug cutoff directive, "N" or "stop-after=N", for a
// pipeline of count passes. An empty directive means no cutoff and yields 0;
// an explicit N must lie in [1, count].
func ParseCutoff(directive string, count int) (int, error) {
	s := strings.TrimSpace(directive)
	if s == "" {
		return 0, nil
	}
	s = strings.TrimPrefix(s, cutoffPrefix)
	n, err := strconv.Atoi(s)
	if err != nil || s == "" || s[0] == '+' {
		return 0, newConfigError(diag.CfgBadCutoff, directive)
	}
	if n < 1 || n > count {
		return 0, newConfigError(diag.CfgCutoffRange, strconv.Itoa(n), strconv.Itoa(count))
	}
	return n, nil
}

// checkCutoff enforces 1 <= n <= count for a non-zero cutoff.
func checkCutoff(n, count int) error {
	if n == 0 {
		return nil
	}
	if n < 1 || n > count {
		return newConfigError(diag.CfgCutoffRange, strconv.Itoa(n), strconv.Itoa(count))
	}
	return nil
}
