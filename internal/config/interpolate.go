package config

import (
	"strings"

	"github.com/specialistvlad/suitegrid/internal/faults"
)

// resolve expands k, following references depth first. chain holds the keys
// currently being expanded; revisiting one of them is a cycle.
func (c *Config) resolve(k key, chain []key) (string, error) {
	if v, ok := c.cache[k]; ok {
		return v, nil
	}

	for _, seen := range chain {
		if seen == k {
			return "", faults.Config(faults.ErrCyclicInterpolation, k.String(), "%s", formatChain(append(chain, k)))
		}
	}
	if len(chain) >= MaxInterpolationDepth {
		return "", faults.Config(faults.ErrInterpolationDepth, k.String(), "more than %d nested references", MaxInterpolationDepth)
	}

	rawValue, ok := c.raw(k.section, k.option)
	if !ok {
		if len(chain) == 0 {
			return "", missing(k)
		}
		referrer := chain[len(chain)-1]
		return "", faults.Config(faults.ErrUnresolvedReference, referrer.String(), "references undefined option '%s'", k)
	}

	if c.literal {
		c.cache[k] = rawValue
		return rawValue, nil
	}

	expanded, err := c.expand(k, rawValue, append(chain, k))
	if err != nil {
		return "", err
	}
	c.cache[k] = expanded
	return expanded, nil
}

// expand substitutes every ${...} reference in value. "$$" is an escaped "$".
func (c *Config) expand(owner key, value string, chain []key) (string, error) {
	if !strings.Contains(value, "$") {
		return value, nil
	}

	var sb strings.Builder
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if ch != '$' || i+1 >= len(value) {
			sb.WriteByte(ch)
			continue
		}
		switch value[i+1] {
		case '$':
			sb.WriteByte('$')
			i++
		case '{':
			end := strings.IndexByte(value[i+2:], '}')
			if end < 0 {
				return "", faults.Config(faults.ErrInvalidValue, owner.String(), "unterminated reference in %q", value)
			}
			ref, err := parseRef(owner, value[i+2:i+2+end])
			if err != nil {
				return "", err
			}
			resolved, err := c.resolve(ref, chain)
			if err != nil {
				return "", err
			}
			sb.WriteString(resolved)
			i += 2 + end
		default:
			sb.WriteByte(ch)
		}
	}
	return sb.String(), nil
}

// parseRef parses "section:option" or "option" (same section as owner).
func parseRef(owner key, body string) (key, error) {
	body = strings.TrimSpace(body)
	section, option, found := strings.Cut(body, ":")
	if !found {
		section, option = owner.section, body
	}
	section, option = strings.TrimSpace(section), strings.TrimSpace(option)
	if section == "" || option == "" || strings.Contains(option, ":") {
		return key{}, faults.Config(faults.ErrInvalidValue, owner.String(), "malformed reference ${%s}", body)
	}
	return key{section, option}, nil
}

func formatChain(chain []key) string {
	parts := make([]string, len(chain))
	for i, k := range chain {
		parts[i] = k.String()
	}
	return strings.Join(parts, " -> ")
}
