package cmd

import "strings"

// FormatUsage renders a usage line such as `!role add <member> <roles...>`.
// Optional parameters are bracketed; remainder and repeatable ones get an
// ellipsis.
func FormatUsage(prefix string, u Usage, params []Param) string {
	var b strings.Builder
	b.WriteString(prefix)
	b.WriteString(u.String())
	for _, p := range params {
		b.WriteByte(' ')
		open, end := "<", ">"
		if p.IsOptional() {
			open, end = "[", "]"
		}
		b.WriteString(open)
		b.WriteString(p.Name)
		if p.Remainder || p.Repeatable {
			b.WriteString("...")
		}
		b.WriteString(end)
	}
	return b.String()
}

// UsageLines renders every visible usage of c.
func UsageLines(prefix string, c Command) []string {
	var lines []string
	for _, u := range c.Usages() {
		if u.Hidden {
			continue
		}
		lines = append(lines, FormatUsage(prefix, u, c.Params()))
	}
	return lines
}
