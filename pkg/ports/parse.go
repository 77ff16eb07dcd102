// pkg/ports/parse.go
// Port specification parsing

package ports

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ParseSpec parses a port specification and returns a sorted, deduplicated
// port list. Supported forms:
//   - single:  "22"
//   - list:    "22,80,443"
//   - range:   "1:1024" or "1-1024"
//   - mixed:   "22,80,8000:8100"
func ParseSpec(spec string) ([]int, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return nil, fmt.Errorf("empty port spec")
	}

	seen := make(map[int]struct{})
	for _, token := range strings.Split(spec, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, fmt.Errorf("empty token in port spec %q", spec)
		}

		sep := ""
		if strings.Contains(token, ":") {
			sep = ":"
		} else if strings.Contains(token, "-") {
			sep = "-"
		}

		if sep == "" {
			p, err := parsePort(token)
			if err != nil {
				return nil, err
			}
			seen[p] = struct{}{}
			continue
		}

		bounds := strings.SplitN(token, sep, 2)
		start, err := parsePort(bounds[0])
		if err != nil {
			return nil, err
		}
		end, err := parsePort(bounds[1])
		if err != nil {
			return nil, err
		}
		if start > end {
			return nil, fmt.Errorf("range start greater than end in %q", token)
		}
		for p := start; p <= end; p++ {
			seen[p] = struct{}{}
		}
	}

	out := make([]int, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Ints(out)
	return out, nil
}

func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid port %q: %w", s, err)
	}
	if p < 1 || p > 65535 {
		return 0, fmt.Errorf("port %d out of range 1..65535", p)
	}
	return p, nil
}
