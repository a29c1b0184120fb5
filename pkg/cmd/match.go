package cmd

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Match is a command selected for an input line.
type Match struct {
	Command Command
	Usage   Usage
	// Body is the input after prefix, invoke word and verbs, with leading
	// whitespace removed. Token offsets refer to it.
	Body string
}

type candidate struct {
	command Command
	usage   Usage
}

// MatchCommand finds the most specific usage among commands for input. Input
// must start with prefix. Usages with more verbs are tried first, so
// "role add" wins over a bare "role" sharing the same invoke word; ties keep
// the order of commands.
func MatchCommand(input, prefix string, commands []Command) (Match, bool) {
	if !strings.HasPrefix(input, prefix) {
		return Match{}, false
	}
	text := strings.TrimLeftFunc(input[len(prefix):], isSpace)
	invoker := firstWord(text)
	if invoker == "" {
		return Match{}, false
	}

	fold := cases.Fold()
	key := fold.String(invoker)

	var found []candidate
	for _, c := range commands {
		for _, u := range c.Usages() {
			if fold.String(u.Invoke) == key {
				found = append(found, candidate{command: c, usage: u})
			}
		}
	}
	slices.SortStableFunc(found, func(a, b candidate) int {
		return len(b.usage.Verbs) - len(a.usage.Verbs)
	})

	for _, cand := range found {
		n := len(cand.usage.Verbs)
		segments := splitFields(text, n+2)
		if len(segments) < n+1 {
			continue
		}
		ok := true
		for i, verb := range cand.usage.Verbs {
			if fold.String(segments[i+1]) != fold.String(verb) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		body := ""
		if len(segments) == n+2 {
			body = segments[n+1]
		}
		return Match{Command: cand.command, Usage: cand.usage, Body: body}, true
	}
	return Match{}, false
}

func firstWord(s string) string {
	if i := strings.IndexFunc(s, isSpace); i >= 0 {
		return s[:i]
	}
	return s
}

// splitFields splits s into at most n whitespace separated fields. The last
// field keeps the rest of s verbatim apart from leading whitespace.
func splitFields(s string, n int) []string {
	var out []string
	s = strings.TrimLeftFunc(s, isSpace)
	for s != "" {
		if len(out) == n-1 {
			out = append(out, s)
			break
		}
		word := firstWord(s)
		out = append(out, word)
		s = strings.TrimLeftFunc(s[len(word):], isSpace)
	}
	return out
}
