package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateCondition_Length(t *testing.T) {
	data := map[string]any{
		"dresses": []map[string]any{{"name": "a"}, {"name": "b"}},
		"addons":  []any{},
		"name":    "not a list",
	}

	cases := []struct {
		expr string
		want bool
	}{
		{"dresses.length > 0", true},
		{"dresses.length >= 2", true},
		{"dresses.length == 2", true},
		{"dresses.length < 2", false},
		{"dresses.length <= 1", false},
		{"addons.length > 0", false},
		{"addons.length == 0", true},
		{"missing.length > 0", false},
		{"missing.length == 0", true},
		{"name.length > 0", false},
		{"  dresses.length>1  ", true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EvaluateCondition(tc.expr, data), tc.expr)
	}
}

func TestEvaluateCondition_Truthy(t *testing.T) {
	data := map[string]any{
		"name":     "Amina",
		"empty":    "",
		"zero":     0.0,
		"flag":     false,
		"list":     []any{},
		"customer": map[string]any{"email": "a@b.c"},
	}

	assert.True(t, EvaluateCondition("name", data))
	assert.True(t, EvaluateCondition("customer.email", data))
	assert.True(t, EvaluateCondition("list", data))
	assert.False(t, EvaluateCondition("empty", data))
	assert.False(t, EvaluateCondition("zero", data))
	assert.False(t, EvaluateCondition("flag", data))
	assert.False(t, EvaluateCondition("missing", data))
	assert.False(t, EvaluateCondition("customer.phone", data))
}

func TestEvaluateCondition_FailsOpen(t *testing.T) {
	garbage := []string{
		"",
		"dresses.length > abc",
		"dresses.length != 0",
		"a && b",
		"name === 'x'",
		"1 + 1",
		"(dresses)",
		"process.exit()",
	}
	for _, expr := range garbage {
		assert.True(t, EvaluateCondition(expr, nil), expr)
		assert.True(t, EvaluateCondition(expr, map[string]any{"dresses": []any{}}), expr)
	}
}
