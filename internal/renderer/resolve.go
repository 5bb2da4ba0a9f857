package renderer

import (
	"html"
	"reflect"
	"regexp"
	"strconv"
	"strings"
)

var placeholderRE = regexp.MustCompile(`\{\{\s*([^{}]*?)\s*\}\}`)

// Resolve evaluates a variable expression against data.
//
// "a + b" resolves each operand, coerces missing ones to "", joins them with a
// single space and trims the result. Anything else is a dotted path.
func Resolve(expr string, data map[string]any) (any, bool) {
	if strings.Contains(expr, "+") {
		parts := strings.Split(expr, "+")
		values := make([]string, 0, len(parts))
		for _, part := range parts {
			v, ok := ResolvePath(strings.TrimSpace(part), data)
			if !ok {
				values = append(values, "")
				continue
			}
			values = append(values, Stringify(v))
		}
		return strings.TrimSpace(strings.Join(values, " ")), true
	}
	return ResolvePath(strings.TrimSpace(expr), data)
}

// ResolvePath walks a dotted path through nested maps and slices. Numeric
// segments index into slices. Any missing intermediate yields (nil, false).
func ResolvePath(path string, data map[string]any) (any, bool) {
	if path == "" || data == nil {
		return nil, false
	}
	var current any = data
	for _, segment := range strings.Split(path, ".") {
		next, ok := step(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func step(current any, segment string) (any, bool) {
	switch node := current.(type) {
	case map[string]any:
		v, ok := node[segment]
		return v, ok
	case map[string]string:
		v, ok := node[segment]
		return v, ok
	case nil:
		return nil, false
	}

	rv := reflect.ValueOf(current)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		v := rv.MapIndex(reflect.ValueOf(segment).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	case reflect.Slice, reflect.Array:
		if segment == "length" {
			return rv.Len(), true
		}
		idx, err := strconv.Atoi(segment)
		if err != nil || idx < 0 || idx >= rv.Len() {
			return nil, false
		}
		return rv.Index(idx).Interface(), true
	}
	return nil, false
}

// asSlice returns the elements of v when v is a slice or array.
func asSlice(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

// asMap converts any string-keyed map into map[string]any.
func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[string]string:
		out := make(map[string]any, len(m))
		for k, s := range m {
			out[k] = s
		}
		return out, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

// Stringify renders a scalar the way a template author expects to read it.
func Stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case int32:
		return strconv.FormatInt(int64(value), 10)
	case uint:
		return strconv.FormatUint(uint64(value), 10)
	case uint64:
		return strconv.FormatUint(value, 10)
	}
	return ""
}

// isScalar reports whether Stringify can render v meaningfully.
func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, float64, float32, int, int64, int32, uint, uint64:
		return true
	}
	return false
}

// Substitute replaces every resolvable {{expr}} in text. Unresolved
// placeholders are kept verbatim.
func Substitute(text string, data map[string]any, escape bool) string {
	return placeholderRE.ReplaceAllStringFunc(text, func(match string) string {
		expr := placeholderRE.FindStringSubmatch(match)[1]
		v, ok := Resolve(expr, data)
		if !ok || !isScalar(v) {
			return match
		}
		s := Stringify(v)
		if escape {
			return html.EscapeString(s)
		}
		return s
	})
}
