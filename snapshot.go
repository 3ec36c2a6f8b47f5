package formval

import (
	"strings"

	gojson "github.com/goccy/go-json"
)

// Snapshot returns a frozen, nested deep copy of the current form model.
// Dot paths are expanded back into nested maps, so "profile.age" becomes
// {"profile": {"age": ...}}.
func (f *Form) Snapshot() map[string]any {
	return freezeModel(f.Values())
}

// freezeModel deep-copies a flat model into a nested, caller-owned map.
func freezeModel(flat map[string]any) map[string]any {
	return deepCopy(unflatten(flat))
}

// unflatten expands dot-notation keys into nested maps. Later siblings merge
// into maps created by earlier ones; a scalar conflict keeps the first write.
func unflatten(flat map[string]any) map[string]any {
	out := map[string]any{}
	for path, v := range flat {
		segs := strings.Split(path, ".")
		cur := out
		for i, seg := range segs {
			if i == len(segs)-1 {
				cur[seg] = v
				break
			}
			next, ok := cur[seg].(map[string]any)
			if !ok {
				if _, exists := cur[seg]; exists {
					break
				}
				next = map[string]any{}
				cur[seg] = next
			}
			cur = next
		}
	}
	return out
}

// deepCopy clones the model through a JSON round-trip. Values that do not
// serialize (channels, funcs) survive as their original references; the
// snapshot is best-effort for such exotic values and exact for data.
func deepCopy(m map[string]any) map[string]any {
	raw, err := gojson.Marshal(m)
	if err != nil {
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	var out map[string]any
	if err := gojson.Unmarshal(raw, &out); err != nil {
		out = make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}
