package renderer

import (
	"reflect"
	"regexp"
	"strconv"
)

type conditionKind int

const (
	// conditionAlways is the fallback arm: unrecognised input shows the section.
	conditionAlways conditionKind = iota
	conditionLength
	conditionTruthy
)

// Condition is a parsed showIf expression. Only two forms are recognised:
// "path.length OP n" and a bare "path".
type Condition struct {
	kind     conditionKind
	path     string
	operator string
	operand  int
}

var (
	lengthConditionRE = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*)\.length\s*(>=|<=|==|>|<)\s*(-?\d+)\s*$`)
	pathConditionRE   = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*(?:\.[A-Za-z0-9_]+)*)\s*$`)
)

func ParseCondition(expr string) Condition {
	if m := lengthConditionRE.FindStringSubmatch(expr); m != nil {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return Condition{kind: conditionAlways}
		}
		return Condition{kind: conditionLength, path: m[1], operator: m[2], operand: n}
	}
	if m := pathConditionRE.FindStringSubmatch(expr); m != nil {
		return Condition{kind: conditionTruthy, path: m[1]}
	}
	return Condition{kind: conditionAlways}
}

// Evaluate never fails; anything it cannot decide is true.
func (c Condition) Evaluate(data map[string]any) bool {
	switch c.kind {
	case conditionLength:
		length := 0
		if v, ok := ResolvePath(c.path, data); ok {
			if items, isSlice := asSlice(v); isSlice {
				length = len(items)
			}
		}
		switch c.operator {
		case ">":
			return length > c.operand
		case "<":
			return length < c.operand
		case ">=":
			return length >= c.operand
		case "<=":
			return length <= c.operand
		case "==":
			return length == c.operand
		}
		return true
	case conditionTruthy:
		v, ok := ResolvePath(c.path, data)
		if !ok {
			return false
		}
		return truthy(v)
	default:
		return true
	}
}

// EvaluateCondition parses and evaluates a showIf string. An empty string
// always shows the section.
func EvaluateCondition(expr string, data map[string]any) bool {
	if expr == "" {
		return true
	}
	return ParseCondition(expr).Evaluate(data)
}

// truthy follows JavaScript truthiness: empty strings, zero, false and nil
// are false; every collection, even empty, is true.
func truthy(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case bool:
		return value
	case string:
		return value != ""
	case float64:
		return value != 0 && value == value
	case float32:
		return value != 0
	case int:
		return value != 0
	case int64:
		return value != 0
	case int32:
		return value != 0
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		return !rv.IsNil()
	}
	return true
}
