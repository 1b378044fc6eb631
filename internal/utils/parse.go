package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseIntList parses a comma-separated list such as "1990,2014".
// Blank items are skipped.
func ParseIntList(s string) ([]int, error) {
	var out []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid integer %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}

// NormalizeCode upper-cases and trims an ISO-3 or region code
func NormalizeCode(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
