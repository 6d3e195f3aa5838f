package config

import "strings"

// SetKey sets key inside [section] of a TOML document, replacing an existing
// assignment or appending one. The section is created when missing.
func SetKey(existing, section, key string, value any) string {
	lines := strings.Split(existing, "\n")
	assignment := key + " = " + tomlValue(value)
	header := "[" + section + "]"

	out := make([]string, 0, len(lines)+3)
	inSection := false
	found := false
	insertAt := -1
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if isSectionHeader(trim) {
			if inSection && !found {
				insertAt = len(out)
			}
			inSection = trim == header
			out = append(out, line)
			continue
		}
		if inSection && !found {
			if k, ok := parseTOMLKey(line); ok && k == key {
				out = append(out, assignment)
				found = true
				continue
			}
		}
		out = append(out, line)
	}
	if found {
		return strings.Join(out, "\n")
	}
	if insertAt < 0 && inSection {
		insertAt = len(out)
	}
	if insertAt >= 0 {
		for insertAt > 0 && strings.TrimSpace(out[insertAt-1]) == "" {
			insertAt--
		}
		out = append(out[:insertAt], append([]string{assignment}, out[insertAt:]...)...)
		return strings.Join(out, "\n")
	}
	if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
		out = append(out, "")
	}
	out = append(out, header, assignment)
	return strings.Join(out, "\n")
}

// DeleteKey removes key from [section]. It reports whether a line was removed.
func DeleteKey(existing, section, key string) (string, bool) {
	lines := strings.Split(existing, "\n")
	header := "[" + section + "]"
	out := make([]string, 0, len(lines))
	inSection := false
	removed := false
	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if isSectionHeader(trim) {
			inSection = trim == header
		} else if inSection {
			if k, ok := parseTOMLKey(line); ok && k == key {
				removed = true
				continue
			}
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n"), removed
}
