package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// envRef matches ${NAME} and ${NAME:-fallback}. Submatch 2 is non-empty only
// when a fallback clause is present, even if the fallback itself is empty.
var envRef = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars substitutes environment references in s. A variable that is
// set, even to the empty string, wins over its fallback. An unset variable
// without a fallback is an error.
func expandEnvVars(s string) (string, error) {
	matches := envRef.FindAllStringSubmatchIndex(s, -1)
	if matches == nil {
		return s, nil
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		last = m[1]

		name := s[m[2]:m[3]]
		if v, ok := os.LookupEnv(name); ok {
			b.WriteString(v)
			continue
		}
		if m[4] < 0 {
			return "", fmt.Errorf("environment variable %q is not set", name)
		}
		b.WriteString(s[m[6]:m[7]])
	}
	b.WriteString(s[last:])
	return b.String(), nil
}
