package normalize

import (
	"encoding/json"
	"errors"

	"github.com/yungbote/shortcraft-backend/internal/domain/pipeline"
)

var errShape = errors.New("JSON does not match any accepted shape")

// Accepted wrapper keys per payload family.
var (
	StringListKeys = []string{"hooks", "items"}
	SceneListKeys  = []string{"scenes", "storyboard"}
	ImageListKeys  = []string{"prompts"}
	VideoListKeys  = []string{"prompts", "scenes"}
)

// List accepts a bare array or an object wrapping one under one of keys.
func List(op, raw string, keys ...string) ([]json.RawMessage, error) {
	v, err := Extract(op, raw, Array)
	if err != nil {
		return nil, err
	}
	items, ok := listFrom(v, keys)
	if !ok {
		return nil, pipeline.MalformedOutput(op, raw, errShape)
	}
	return items, nil
}

// Strings is List where every element must be a JSON string.
func Strings(op, raw string, keys ...string) ([]string, error) {
	items, err := List(op, raw, keys...)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(items))
	for _, it := range items {
		var s string
		if len(it) == 0 || it[0] != '"' || json.Unmarshal(it, &s) != nil {
			return nil, pipeline.MalformedOutput(op, raw, errShape)
		}
		out = append(out, s)
	}
	return out, nil
}

// Fields accepts only a JSON object.
func Fields(op, raw string) (map[string]json.RawMessage, error) {
	v, err := Extract(op, raw, Object)
	if err != nil {
		return nil, err
	}
	if v[0] != '{' {
		return nil, pipeline.MalformedOutput(op, raw, errShape)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(v, &obj); err != nil {
		return nil, pipeline.MalformedOutput(op, raw, err)
	}
	return obj, nil
}

// DecodeItems decodes each element into T, skipping elements of the wrong type.
func DecodeItems[T any](items []json.RawMessage) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		var v T
		if err := json.Unmarshal(it, &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

func listFrom(v json.RawMessage, keys []string) ([]json.RawMessage, bool) {
	var arr []json.RawMessage
	if v[0] == '[' {
		if err := json.Unmarshal(v, &arr); err != nil {
			return nil, false
		}
		return arr, true
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(v, &obj); err != nil {
		return nil, false
	}
	for _, k := range keys {
		inner, ok := obj[k]
		if !ok || len(inner) == 0 || inner[0] != '[' {
			continue
		}
		if err := json.Unmarshal(inner, &arr); err != nil {
			return nil, false
		}
		return arr, true
	}
	return nil, false
}
