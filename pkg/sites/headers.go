package sites

import "strings"

// Headers merges the profile's request headers over defaults, skipping empty keys and values.
func Headers(defaults map[string]string, p Profile) map[string]string {
	out := make(map[string]string, len(defaults)+len(p.Headers))
	for _, src := range []map[string]string{defaults, p.Headers} {
		for k, v := range src {
			key := strings.TrimSpace(k)
			val := strings.TrimSpace(v)
			if key == "" || val == "" {
				continue
			}
			out[key] = val
		}
	}
	return out
}
