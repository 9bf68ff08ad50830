package filter

import (
	"strconv"
	"strings"

	apperrors "github.com/Geeks-Solutions/exmedias/pkg/errors"
)

// Op identifies a comparison operation.
type Op int

const (
	OpEq Op = iota
	OpLt
	OpGt
	OpLte
	OpGte
	OpBetween
)

// Operator tokens accepted on the wire, case-sensitive and exact.
// "<>" is the legacy alias for "between" and carries the same two-bound
// requirement and the same exclusive semantics.
var opTokens = map[string]Op{
	"=":       OpEq,
	"<":       OpLt,
	">":       OpGt,
	"<=":      OpLte,
	">=":      OpGte,
	"between": OpBetween,
	"<>":      OpBetween,
}

// Comparison is a resolved, typed predicate operand set.
// For OpBetween, From and To hold the exclusive bounds; for every other op
// Value holds the single operand.
type Comparison struct {
	Op    Op
	Value any
	From  float64
	To    float64
}

// numericKeys are the fields whose operands must parse as numbers. Range and
// ordered comparisons on these reject unparseable operands up front instead
// of silently coercing.
var numericKeys = map[string]bool{
	KeyNumberOfContents: true,
	KeyNumberOfMedias:   true,
	"height":            true,
	"width":             true,
	"size":              true,
	"duration":          true,
}

// Resolve maps an operator token plus operands into a Comparison. The term's
// inline operation wins over the operator map entry; an absent token defaults
// to equality. between/<> require both bounds; a missing bound rejects the
// whole request before any query executes.
func Resolve(key string, spec OperatorSpec, term Term) (Comparison, error) {
	token := strings.TrimSpace(term.Operation)
	if token == "" {
		token = strings.TrimSpace(spec.Operation)
	}
	if token == "" {
		token = "="
	}

	op, ok := opTokens[token]
	if !ok {
		return Comparison{}, apperrors.UnknownOperator(key, token)
	}

	if op == OpBetween {
		from := firstPresent(spec.From, term.Value)
		to := firstPresent(spec.To, term.Value2)
		if from == nil || to == nil {
			return Comparison{}, apperrors.IncompleteRange(key)
		}

		fromN, ok := toFloat(from)
		if !ok {
			return Comparison{}, apperrors.InvalidOperand(key, from)
		}
		toN, ok := toFloat(to)
		if !ok {
			return Comparison{}, apperrors.InvalidOperand(key, to)
		}

		return Comparison{Op: OpBetween, From: fromN, To: toN}, nil
	}

	value := firstPresent(term.Value, spec.From)
	if numericKeys[key] {
		n, ok := toFloat(value)
		if !ok {
			return Comparison{}, apperrors.InvalidOperand(key, value)
		}
		return Comparison{Op: op, Value: n}, nil
	}

	return Comparison{Op: op, Value: value}, nil
}

func firstPresent(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

// toFloat parses a numeric operand arriving as a Go number or a numeric
// string. It never falls back to zero: unparseable input reports failure.
func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
