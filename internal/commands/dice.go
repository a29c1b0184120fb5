package commands

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/keshon/textcmd/pkg/cmd"
)

// TypeDice is the parameter type of a dice formula such as `2d6+1d4*2`.
const TypeDice = "dice"

// Limits keep a roll's reply inside one Discord message.
const (
	maxDice          = 100 // across the whole formula
	maxSides         = 1000
	maxTerms         = 20
	maxConstant      = 1_000_000
	maxFormulaLength = 200
)

var (
	diceToken = regexp.MustCompile(`(?i)\d*d\d+|\d+|[+\-*/]`)
	diceRoll  = regexp.MustCompile(`(?i)^(\d*)d(\d+)$`)
)

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrOverflow       = errors.New("result out of range")
)

// Formula is a parsed dice expression. Operators bind the usual way: `*` and
// `/` before `+` and `-`, left to right, integer division.
type Formula struct {
	Source string
	terms  []diceTerm
}

type diceTerm struct {
	op    byte
	text  string
	count int // 0 for a constant
	sides int
	value int
}

func isDiceOp(tok string) bool {
	return len(tok) == 1 && strings.ContainsAny(tok, "+-*/")
}

// ParseFormula checks the syntax and dice limits of s. Whitespace is ignored.
func ParseFormula(s string) (*Formula, error) {
	src := strings.Join(strings.Fields(s), "")
	if src == "" {
		return nil, errors.New("empty formula")
	}
	if len(src) > maxFormulaLength {
		return nil, fmt.Errorf("formula is longer than %d characters", maxFormulaLength)
	}

	f := &Formula{Source: src}
	op := byte('+')
	pending := false
	pos, dice := 0, 0
	for _, loc := range diceToken.FindAllStringIndex(src, -1) {
		if loc[0] != pos {
			return nil, fmt.Errorf("unexpected `%s`", src[pos:loc[0]])
		}
		pos = loc[1]
		tok := src[loc[0]:loc[1]]

		if isDiceOp(tok) {
			switch {
			case pending:
				return nil, fmt.Errorf("operator `%s` follows another operator", tok)
			case len(f.terms) == 0 && (tok == "*" || tok == "/"):
				return nil, errors.New("operator without left operand")
			}
			op, pending = tok[0], true
			continue
		}
		if len(f.terms) > 0 && !pending {
			return nil, fmt.Errorf("missing operator before `%s`", tok)
		}

		t, err := parseDiceTerm(tok)
		if err != nil {
			return nil, err
		}
		if len(f.terms) == maxTerms {
			return nil, fmt.Errorf("too many terms, max %d", maxTerms)
		}
		if dice += t.count; dice > maxDice {
			return nil, fmt.Errorf("too many dice, max %d in total", maxDice)
		}
		t.op = op
		f.terms = append(f.terms, t)
		op, pending = '+', false
	}

	switch {
	case pos != len(src):
		return nil, fmt.Errorf("unexpected `%s`", src[pos:])
	case pending:
		return nil, errors.New("formula ends with an operator")
	}
	return f, nil
}

func parseDiceTerm(tok string) (diceTerm, error) {
	m := diceRoll.FindStringSubmatch(tok)
	if m == nil {
		n, err := strconv.Atoi(tok)
		if err != nil || n > maxConstant {
			return diceTerm{}, fmt.Errorf("number `%s` is too large, max %d", tok, maxConstant)
		}
		return diceTerm{text: tok, value: n}, nil
	}

	count := 1
	if m[1] != "" {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			return diceTerm{}, fmt.Errorf("invalid dice count in `%s`", tok)
		}
		count = n
	}
	sides, err := strconv.Atoi(m[2])
	if err != nil || sides < 2 {
		return diceTerm{}, fmt.Errorf("invalid dice sides in `%s`", tok)
	}
	if count > maxDice || sides > maxSides {
		return diceTerm{}, fmt.Errorf("`%s` is too big, max %d dice of %d sides", tok, maxDice, maxSides)
	}
	return diceTerm{text: tok, count: count, sides: sides}, nil
}

// Roll evaluates f with intn supplying die faces in [0, n). It returns the
// total and a description of every roll.
func (f *Formula) Roll(intn func(n int) int) (int, string, error) {
	type rolled struct {
		op    byte
		value int
		desc  string
	}

	vals := make([]rolled, len(f.terms))
	for i, t := range f.terms {
		vals[i] = rolled{op: t.op, value: t.value, desc: t.text}
		if t.count == 0 {
			continue
		}
		faces := make([]string, t.count)
		sum := 0
		for j := range faces {
			r := intn(t.sides) + 1
			sum += r
			faces[j] = strconv.Itoa(r)
		}
		vals[i].value = sum
		vals[i].desc = fmt.Sprintf("`%s` [%s]", t.text, strings.Join(faces, ", "))
	}

	// * and / first
	var merged []rolled
	for _, v := range vals {
		if v.op != '*' && v.op != '/' {
			merged = append(merged, v)
			continue
		}
		prev := &merged[len(merged)-1]
		if v.op == '/' {
			if v.value == 0 {
				return 0, "", ErrDivisionByZero
			}
			prev.value /= v.value
		} else {
			n, ok := mulChecked(prev.value, v.value)
			if !ok {
				return 0, "", ErrOverflow
			}
			prev.value = n
		}
		prev.desc = fmt.Sprintf("%s %c %s", prev.desc, v.op, v.desc)
	}

	total := 0
	var b strings.Builder
	for i, v := range merged {
		if i > 0 || v.op == '-' {
			fmt.Fprintf(&b, " %c ", v.op)
		}
		b.WriteString(v.desc)
		n := v.value
		if v.op == '-' {
			n = -n
		}
		var ok bool
		if total, ok = addChecked(total, n); !ok {
			return 0, "", ErrOverflow
		}
	}
	return total, strings.TrimSpace(b.String()), nil
}

func addChecked(a, b int) (int, bool) {
	c := a + b
	if (c > a) != (b > 0) {
		return 0, false
	}
	return c, true
}

func mulChecked(a, b int) (int, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt) || (b == -1 && a == math.MinInt) {
		return 0, false
	}
	return c, true
}

func parseDice(_ context.Context, raw string, p cmd.Param, _ any) (any, error) {
	f, err := ParseFormula(raw)
	if err != nil {
		return nil, cmd.Rejectf("%s: %v", p.Name, err)
	}
	return f, nil
}
