package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_ConcatenationTrims(t *testing.T) {
	v, ok := Resolve("a + b", map[string]any{"a": "", "b": "Jones"})
	require.True(t, ok)
	assert.Equal(t, "Jones", v)

	v, ok = Resolve("a + b", map[string]any{"a": "John", "b": ""})
	require.True(t, ok)
	assert.Equal(t, "John", v)

	v, _ = Resolve("a+b", map[string]any{"a": "John", "b": "Smith"})
	assert.Equal(t, "John Smith", v)
}

func TestResolve_ConcatenationCoercesMissing(t *testing.T) {
	v, ok := Resolve("missing + b", map[string]any{"b": "Jones"})
	require.True(t, ok)
	assert.Equal(t, "Jones", v)
}

func TestResolvePath_Nested(t *testing.T) {
	data := map[string]any{
		"org":     map[string]any{"name": "Maison Lina"},
		"dresses": []map[string]any{{"name": "Caftan"}, {"name": "Takchita"}},
	}

	v, ok := ResolvePath("org.name", data)
	require.True(t, ok)
	assert.Equal(t, "Maison Lina", v)

	v, ok = ResolvePath("dresses.1.name", data)
	require.True(t, ok)
	assert.Equal(t, "Takchita", v)

	v, ok = ResolvePath("dresses.length", data)
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = ResolvePath("org.address.city", data)
	assert.False(t, ok)

	_, ok = ResolvePath("dresses.5.name", data)
	assert.False(t, ok)
}

func TestSubstitute_LeavesUnresolvedPlaceholders(t *testing.T) {
	data := map[string]any{"name": "Amina", "nested": map[string]any{"k": "v"}}

	out := Substitute("Bonjour {{ name }}, {{unknown}} {{nested}}", data, false)
	assert.Equal(t, "Bonjour Amina, {{unknown}} {{nested}}", out)
}

func TestSubstitute_Escape(t *testing.T) {
	data := map[string]any{"v": `<b>"x"</b>`}

	assert.Equal(t, `<b>"x"</b>`, Substitute("{{v}}", data, false))
	assert.Equal(t, "&lt;b&gt;&#34;x&#34;&lt;/b&gt;", Substitute("{{v}}", data, true))
}

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "1250.5", Stringify(1250.5))
	assert.Equal(t, "3", Stringify(3))
	assert.Equal(t, "true", Stringify(true))
}
