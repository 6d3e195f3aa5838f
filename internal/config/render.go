package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// RenderDefaultTOML renders a TOML config with defaults from GetConfigOptions.
func RenderDefaultTOML() string {
	var out []string
	out = append(out, "# lessonplan configuration (TOML)", "")

	top, sections, order := splitSections(GetConfigOptions())
	for _, o := range top {
		appendOption(&out, o.Key, o.Default, o.Comment)
	}
	for _, section := range order {
		out = append(out, "["+section+"]")
		for _, o := range sections[section] {
			appendOption(&out, o.Key, o.Default, o.Comment)
		}
	}
	return strings.Join(out, "\n")
}

// UpdateTOML merges missing defaults into an existing TOML string and
// comments out keys the schema no longer knows.
func UpdateTOML(existing string) (string, bool) {
	lines := strings.Split(existing, "\n")
	opts := GetConfigOptions()

	known := make(map[string]bool, len(opts))
	for _, o := range opts {
		known[o.Key] = true
	}

	seen := make(map[string]bool)
	present := make(map[string]bool)
	section := ""
	out := make([]string, 0, len(lines))
	changed := false

	for _, line := range lines {
		trim := strings.TrimSpace(line)
		if isSectionHeader(trim) {
			section = strings.TrimSpace(trim[1 : len(trim)-1])
			present[section] = true
			out = append(out, line)
			continue
		}
		key, ok := parseTOMLKey(line)
		if !ok {
			out = append(out, line)
			continue
		}
		full := key
		if section != "" {
			full = section + "." + key
		}
		seen[full] = true
		if !known[full] {
			indent := line[:len(line)-len(strings.TrimLeft(line, " \t"))]
			out = append(out, indent+"# OUTDATED: option removed from config schema")
			out = append(out, indent+"# "+strings.TrimLeft(line, " \t"))
			changed = true
			continue
		}
		out = append(out, line)
	}

	// Keys of a table that already exists go into that table; TOML rejects
	// a second header for the same table.
	doc := strings.Join(out, "\n")
	var missing []ConfigOption
	for _, o := range opts {
		if seen[o.Key] {
			continue
		}
		if s, key, ok := strings.Cut(o.Key, "."); ok && present[s] {
			doc = SetKey(doc, s, key, o.Default)
			changed = true
			continue
		}
		missing = append(missing, o)
	}
	if len(missing) == 0 {
		return doc, changed
	}
	out = strings.Split(doc, "\n")

	top, sections, order := splitSections(missing)
	out = append(out, "", "# Added by config update")
	for _, o := range top {
		appendOption(&out, o.Key, o.Default, o.Comment)
	}
	for _, s := range order {
		out = append(out, "["+s+"]")
		for _, o := range sections[s] {
			appendOption(&out, o.Key, o.Default, o.Comment)
		}
	}
	return strings.Join(out, "\n"), true
}

// splitSections separates top-level options from dotted ones, keeping the
// order in which sections first appear.
func splitSections(opts []ConfigOption) ([]ConfigOption, map[string][]ConfigOption, []string) {
	var top []ConfigOption
	sections := make(map[string][]ConfigOption)
	var order []string
	for _, o := range opts {
		section, key, ok := strings.Cut(o.Key, ".")
		if !ok {
			top = append(top, o)
			continue
		}
		if _, seen := sections[section]; !seen {
			order = append(order, section)
		}
		sections[section] = append(sections[section], ConfigOption{Key: key, Default: o.Default, Comment: o.Comment})
	}
	return top, sections, order
}

func parseTOMLKey(line string) (string, bool) {
	trim := strings.TrimSpace(line)
	if trim == "" || strings.HasPrefix(trim, "#") || strings.HasPrefix(trim, ";") {
		return "", false
	}
	idx := strings.Index(line, "=")
	if idx == -1 {
		return "", false
	}
	key := strings.TrimSpace(line[:idx])
	if key == "" || strings.HasPrefix(key, "[") || strings.HasPrefix(key, "\"") || strings.HasPrefix(key, "'") {
		return "", false
	}
	return key, true
}

func isSectionHeader(trim string) bool {
	if trim == "" || strings.HasPrefix(trim, "#") || strings.HasPrefix(trim, ";") {
		return false
	}
	return strings.HasPrefix(trim, "[") && strings.HasSuffix(trim, "]")
}

func appendOption(lines *[]string, key string, value any, comment string) {
	if comment != "" {
		*lines = append(*lines, "# "+comment)
	}
	*lines = append(*lines, key+" = "+tomlValue(value), "")
}

// tomlValue formats the scalar and list types used by the option table.
func tomlValue(value any) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case bool, int, int64:
		return fmt.Sprintf("%v", v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = strconv.Quote(s)
		}
		return "[" + strings.Join(quoted, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + " = " + tomlValue(v[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return strconv.Quote(fmt.Sprint(v))
	}
}
