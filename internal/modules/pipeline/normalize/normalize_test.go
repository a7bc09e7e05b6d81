package normalize

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
)

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```json\n[1,2]\n```":       "[1,2]",
		"```\n{\"a\":1}\n```":       `{"a":1}`,
		"```JSON [\"x\"]```":        `["x"]`,
		"  [1]  ":                   "[1]",
		"no fences here":            "no fences here",
		"```json\n[1]":              "[1]",
		"```ts\r\n{\"b\":2}\r\n```": `{"b":2}`,
	}
	for in, want := range cases {
		assert.Equal(t, want, StripFences(in), "input %q", in)
	}
}

func TestRemoveTrailingCommas(t *testing.T) {
	assert.Equal(t, `{"a":[1,2],"b":{"c":3}}`, RemoveTrailingCommas(`{"a":[1,2,],"b":{"c":3,},}`))
	assert.Equal(t, "[1,\n2\n  ]", RemoveTrailingCommas("[1,\n2,\n  ]"))
	// Commas inside strings are content.
	assert.Equal(t, `["a,]","b\",}"]`, RemoveTrailingCommas(`["a,]","b\",}",]`))
}

func TestExtractRecoversCommonDefects(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Container
		out  string
	}{
		{"plain array", `["a","b"]`, Array, `["a","b"]`},
		{"fenced", "```json\n[\"a\"]\n```", Array, `["a"]`},
		{"chatter around", "Sure! Here are your hooks:\n[\"a\", \"b\"]\nLet me know.", Array, `["a","b"]`},
		{"trailing comma", "[\"a\",\n\"b\",\n]", Array, `["a","b"]`},
		{"object wrapper direct", `{"scenes":[{"scene":1}]}`, Array, `{"scenes":[{"scene":1}]}`},
		{"object with prose", "Result: {\"timeline\": [], \"exportNotes\": [\"x\",],} done", Object, `{"timeline":[],"exportNotes":["x"]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Extract("test", tc.raw, tc.want)
			require.NoError(t, err)
			assert.JSONEq(t, tc.out, string(got))
		})
	}
}

func TestExtractFailsClosed(t *testing.T) {
	for _, raw := range []string{
		"",
		"I cannot help with that.",
		"42",
		`"just a string"`,
		`{"a": }`,
		"[unterminated",
		"] backwards [",
	} {
		got, err := Extract("test", raw, Array)
		require.Error(t, err, "raw %q", raw)
		assert.Nil(t, got)
		assert.True(t, pipeline.IsCode(err, pipeline.CodeMalformedOutput), "raw %q: %v", raw, err)
	}
}

func TestExtractMalformedCarriesExcerpt(t *testing.T) {
	raw := strings.Repeat("nope ", 300)
	_, err := Extract("hooks", raw, Array)
	pe, ok := pipeline.AsError(err)
	require.True(t, ok)
	assert.Equal(t, "hooks", pe.Op)
	assert.LessOrEqual(t, len([]rune(pe.Raw)), 503)
	assert.True(t, strings.HasPrefix(pe.Raw, "nope nope"))
}

func TestExtractRoundTrip(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 300; i++ {
		value := randomContainer(r, 0)
		clean, err := json.Marshal(value)
		require.NoError(t, err)

		want := Array
		if clean[0] == '{' {
			want = Object
		}
		corrupted := injectTrailingCommas(string(clean), r)
		switch r.Intn(3) {
		case 0:
			corrupted = "```json\n" + corrupted + "\n```"
		case 1:
			corrupted = "Here is the JSON you asked for:\n" + corrupted + "\nThanks!"
		}

		got, err := Extract("roundtrip", corrupted, want)
		require.NoError(t, err, "case %d: %s", i, corrupted)

		var expected, actual any
		require.NoError(t, json.Unmarshal(clean, &expected))
		require.NoError(t, json.Unmarshal(got, &actual))
		assert.Equal(t, expected, actual, "case %d: %s", i, corrupted)
	}
}

func TestListShapes(t *testing.T) {
	items, err := List("storyboard", `{"scenes":[{"scene":1},{"scene":2}]}`, SceneListKeys...)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	items, err = List("storyboard", `[{"scene":1}]`, SceneListKeys...)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = List("storyboard", `{"frames":[{"scene":1}]}`, SceneListKeys...)
	assert.True(t, pipeline.IsCode(err, pipeline.CodeMalformedOutput))

	_, err = List("storyboard", `{"scenes":"none"}`, SceneListKeys...)
	assert.True(t, pipeline.IsCode(err, pipeline.CodeMalformedOutput))
}

func TestStringsRejectsMixedArrays(t *testing.T) {
	got, err := Strings("hooks", "```json\n[\"one\", \"two\",]\n```", StringListKeys...)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, got)

	got, err = Strings("hooks", `{"hooks":["x"]}`, StringListKeys...)
	require.NoError(t, err)
	assert.Equal(t, []string{"x"}, got)

	_, err = Strings("hooks", `["one", 2]`, StringListKeys...)
	assert.True(t, pipeline.IsCode(err, pipeline.CodeMalformedOutput))
}

func TestFieldsRequiresObject(t *testing.T) {
	obj, err := Fields("editing", "```\n{\"timeline\": [1,],}\n```")
	require.NoError(t, err)
	assert.JSONEq(t, `[1]`, string(obj["timeline"]))

	_, err = Fields("editing", `[{"timeline":[]}]`)
	assert.True(t, pipeline.IsCode(err, pipeline.CodeMalformedOutput))
}

func TestDecodeItemsSkipsWrongTypes(t *testing.T) {
	type scene struct {
		Scene int `json:"scene"`
	}
	items := []json.RawMessage{
		json.RawMessage(`{"scene":1}`),
		json.RawMessage(`{"scene":"two"}`),
		json.RawMessage(`"text"`),
		json.RawMessage(`{"scene":3}`),
	}
	got := DecodeItems[scene](items)
	assert.Equal(t, []scene{{1}, {3}}, got)
}

var stringPool = []string{"", "hook", "a, ]", "b,}", `quote " inside`, "```", "é ü", "line\nbreak", "[not json"}

func randomContainer(r *rand.Rand, depth int) any {
	if r.Intn(2) == 0 {
		n := r.Intn(4)
		arr := make([]any, 0, n)
		for i := 0; i < n; i++ {
			arr = append(arr, randomValue(r, depth+1))
		}
		return arr
	}
	n := r.Intn(4)
	obj := make(map[string]any, n)
	for i := 0; i < n; i++ {
		obj[stringPool[r.Intn(len(stringPool))]+string(rune('a'+i))] = randomValue(r, depth+1)
	}
	return obj
}

func randomValue(r *rand.Rand, depth int) any {
	if depth < 3 && r.Intn(3) == 0 {
		return randomContainer(r, depth)
	}
	switch r.Intn(5) {
	case 0:
		return stringPool[r.Intn(len(stringPool))]
	case 1:
		return float64(r.Intn(1000)) / 4
	case 2:
		return r.Intn(2) == 0
	case 3:
		return nil
	default:
		return r.Intn(50)
	}
}

// injectTrailingCommas adds a comma before closers of non-empty containers.
func injectTrailingCommas(s string, r *rand.Rand) string {
	var b strings.Builder
	inString, escaped := false, false
	var prev byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			b.WriteByte(c)
			prev = c
			continue
		}
		if c == '"' {
			inString = true
		}
		if (c == ']' || c == '}') && prev != '[' && prev != '{' && r.Intn(10) < 7 {
			b.WriteString(",\n")
		}
		b.WriteByte(c)
		prev = c
	}
	return b.String()
}
