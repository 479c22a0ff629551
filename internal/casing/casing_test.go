package casing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyCamelCase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    string
		changed bool
	}{
		{"HTTPServer", "", false},
		{"MyStruct", "", false},
		{"_Private", "", false},
		{"Vec3", "", false},
		{"X1", "", false},
		{"X_1", "X1", true},
		{"my_value", "MyValue", true},
		{"myValue", "MyValue", true},
		{"foo", "Foo", true},
		{"___", "CamelCase", true},
		{"", "CamelCase", true},
		{"Foo__Bar", "FooBar", true},
		{"Foo_Bar", "FooBar", true},
		{"_foo_bar_", "FooBar", true},
		{"a_1", "A1", true},
		{"FOO_BAR", "FooBar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, changed := Classify(tt.name, CamelCase)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifySnakeCase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    string
		changed bool
	}{
		{"my_struct", "", false},
		{"_unused", "", false},
		{"x1", "", false},
		{"'a", "", false},
		{"MyStruct", "my_struct", true},
		{"myStruct", "my_struct", true},
		{"HTTPServer", "httpserver", true},
		{"Foo__Bar", "foo_bar", true},
		{"__Foo", "__foo", true},
		{"'Abc", "'abc", true},
		{"a1B", "a1_b", true},
		{"___", "snake_case", true},
		{"", "snake_case", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, changed := Classify(tt.name, SnakeCase)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyUpperSnakeCase(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		want    string
		changed bool
	}{
		{"MAX_SIZE", "", false},
		{"_X", "", false},
		{"V2", "", false},
		{"maxSize", "MAX_SIZE", true},
		{"max_size", "MAX_SIZE", true},
		{"MaxSize", "MAX_SIZE", true},
		{"__", "UPPER_CASE", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, changed := Classify(tt.name, UpperSnakeCase)
			assert.Equal(t, tt.changed, changed)
			assert.Equal(t, tt.want, got)
		})
	}
}

var corpus = []string{
	"a", "A", "_", "__", "___", "_a", "a_", "foo", "Foo", "FOO", "foo_bar",
	"fooBar", "FooBar", "FOO_BAR", "foo__bar", "__foo__", "HTTPServer",
	"http_server", "x1", "X1", "a_1", "1a", "_1", "a_b_c", "ABC", "aBC",
	"Ab_Cd", "'a", "'Abc", "'static", "σίσυφος", "Σίσυφος", "日本", "foo_日本",
}

func TestSuggestAlwaysMatches(t *testing.T) {
	t.Parallel()

	for _, style := range []Style{CamelCase, SnakeCase, UpperSnakeCase} {
		for _, name := range corpus {
			got := style.Suggest(name)
			assert.NotEmpty(t, got, "%s.Suggest(%q)", style, name)
			assert.True(t, style.Matches(got), "%s.Suggest(%q) = %q does not match", style, name, got)
		}
	}
}

func TestCamelCaseSuggestIdempotent(t *testing.T) {
	t.Parallel()

	for _, name := range corpus {
		once := CamelCase.Suggest(name)
		assert.Equal(t, once, CamelCase.Suggest(once), "name %q", name)
	}
}

func TestClassifyAgreesWithMatches(t *testing.T) {
	t.Parallel()

	for _, style := range []Style{CamelCase, SnakeCase, UpperSnakeCase} {
		for _, name := range corpus {
			_, changed := Classify(name, style)
			assert.Equal(t, !style.Matches(name), changed, "%s %q", style, name)
		}
	}
}

func TestStylePhrase(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "a camel", CamelCase.Phrase())
	assert.Equal(t, "a snake", SnakeCase.Phrase())
	assert.Equal(t, "an upper", UpperSnakeCase.Phrase())
}

func TestToSnakeCasePreservesPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "_'foo_bar", ToSnakeCase("_'FooBar", false))
	assert.Equal(t, "__FOO_BAR", ToSnakeCase("__fooBar", true))
	assert.Equal(t, "__", ToSnakeCase("__", false))
}
