package argtypes

import (
	"context"
	"math"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/keshon/textcmd/pkg/cmd"
	"golang.org/x/text/cases"
)

// Type tags understood by NewRegistry and RegisterEntities.
const (
	TypeString   = "string"
	TypeInt      = "int"
	TypeFloat    = "float"
	TypeBool     = "bool"
	TypeDuration = "duration"
	TypeURL      = "url"
	TypeUser     = "user"
	TypeMember   = "member"
	TypeRole     = "role"
	TypeChannel  = "channel"
)

func parseString(_ context.Context, raw string, _ cmd.Param, _ any) (any, error) {
	return raw, nil
}

func parseInt(_ context.Context, raw string, p cmd.Param, _ any) (any, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, cmd.Rejectf("%s: %q is not a whole number", p.Name, raw)
	}
	return n, nil
}

func parseFloat(_ context.Context, raw string, p cmd.Param, _ any) (any, error) {
	f, err := strconv.ParseFloat(strings.Replace(raw, ",", ".", 1), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, cmd.Rejectf("%s: %q is not a number", p.Name, raw)
	}
	return f, nil
}

var boolWords = map[string]bool{
	"true": true, "yes": true, "y": true, "on": true, "1": true, "enable": true,
	"false": false, "no": false, "n": false, "off": false, "0": false, "disable": false,
}

func parseBool(_ context.Context, raw string, p cmd.Param, _ any) (any, error) {
	b, ok := boolWords[cases.Fold().String(raw)]
	if !ok {
		return nil, cmd.Rejectf("%s: %q is not yes or no", p.Name, raw)
	}
	return b, nil
}

var longUnit = regexp.MustCompile(`^(\d+)([dw])(.*)$`)

// parseDuration accepts Go durations plus leading day and week counts, e.g.
// "2d", "1w3d" or "1d12h".
func parseDuration(_ context.Context, raw string, p cmd.Param, _ any) (any, error) {
	if raw == "" {
		return nil, cmd.Rejectf("%s: empty duration", p.Name)
	}
	var total time.Duration
	rest := strings.ToLower(raw)
	for {
		m := longUnit.FindStringSubmatch(rest)
		if m == nil {
			break
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, cmd.Rejectf("%s: %q is not a duration", p.Name, raw)
		}
		unit := 24 * time.Hour
		if m[2] == "w" {
			unit *= 7
		}
		total += time.Duration(n) * unit
		rest = m[3]
	}
	if rest != "" {
		d, err := time.ParseDuration(rest)
		if err != nil {
			return nil, cmd.Rejectf("%s: %q is not a duration", p.Name, raw)
		}
		total += d
	}
	return total, nil
}

// parseURL accepts absolute http(s) links, including Discord's <link> form
// that suppresses embeds.
func parseURL(_ context.Context, raw string, p cmd.Param, _ any) (any, error) {
	s := strings.TrimSuffix(strings.TrimPrefix(raw, "<"), ">")
	u, err := url.Parse(s)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, cmd.Rejectf("%s: %q is not a link", p.Name, raw)
	}
	return u, nil
}
