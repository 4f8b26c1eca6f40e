package draft

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRelaxedAccepts(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  any
	}{
		{
			name:  "Strict JSON",
			input: `{"title": "Crash", "owner": null}`,
			want:  map[string]any{"title": "Crash", "owner": nil},
		},
		{
			name:  "Unquoted keys",
			input: `{title: "Crash", $ref: "x", _id: "y", 名前: "z"}`,
			want:  map[string]any{"title": "Crash", "$ref": "x", "_id": "y", "名前": "z"},
		},
		{
			name:  "Trailing commas",
			input: `{"tags": ["a", "b",], "n": 1,}`,
			want:  map[string]any{"tags": []any{"a", "b"}, "n": 1.0},
		},
		{
			name:  "Single quoted strings",
			input: `{'title': 'It\'s "broken"'}`,
			want:  map[string]any{"title": `It's "broken"`},
		},
		{
			name:  "Escapes",
			input: `{"d": "line\nnext\té😀\/"}`,
			want:  map[string]any{"d": "line\nnext\té😀/"},
		},
		{
			name:  "Numbers and literals",
			input: `[0, -1.5, 2e3, true, false, null]`,
			want:  []any{0.0, -1.5, 2000.0, true, false, nil},
		},
		{
			name:  "Whitespace around value",
			input: " \n {} \t",
			want:  map[string]any{},
		},
		{
			name:  "Bare string",
			input: `"just text"`,
			want:  "just text",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseRelaxed(tc.input)
			require.NoError(t, err)
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("ParseRelaxed() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRelaxedRejects(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"Prose", "Sure! Here is the issue you asked for."},
		{"Comment", `{"a": 1 // note
}`},
		{"Block comment", `{/* x */ "a": 1}`},
		{"NaN", `{"a": NaN}`},
		{"Infinity", `{"a": Infinity}`},
		{"Hex number", `{"a": 0x10}`},
		{"Leading zero", `{"a": 01}`},
		{"Leading plus", `{"a": +1}`},
		{"Raw newline in string", "{\"a\": \"x\ny\"}"},
		{"Missing colon", `{"a" 1}`},
		{"Double comma", `{"a": 1,,}`},
		{"Lone comma", `[,]`},
		{"Unterminated object", `{"a": 1`},
		{"Unterminated string", `{"a": "x}`},
		{"Bad escape", `{"a": "\x"}`},
		{"Trailing content", `{"a": 1} and more`},
		{"Key starting with digit", `{1a: "x"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseRelaxed(tc.input)
			assert.Error(t, err)
		})
	}
}
