package ratelimit

import "strings"

// Match returns the rule for a request, preferring an exact path over the
// longest matching prefix. The health check is never limited.
func Match(path, method string, rules []Rule) (Rule, bool) {
	if path == "/health" {
		return Rule{Method: method, Prefix: path}, true
	}

	var best Rule
	found := false
	for _, r := range rules {
		if r.Method != method {
			continue
		}
		if r.Prefix == path {
			return r, true
		}
		if strings.HasSuffix(r.Prefix, "/") && strings.HasPrefix(path, r.Prefix) &&
			(!found || len(r.Prefix) > len(best.Prefix)) {
			best, found = r, true
		}
	}
	return best, found
}
