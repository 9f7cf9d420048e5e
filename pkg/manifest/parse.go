package manifest

import (
	"bytes"
	"encoding/json"
)

// document is a parsed manifest: the top-level fields in source order with
// their raw values, plus the extracted project name. Keeping raw values
// lets Remove rewrite the file without disturbing unrelated content.
type document struct {
	fields []field
	name   string
}

type field struct {
	key string
	raw json.RawMessage
}

// entry is one name/spec pair from a dependency group.
type entry struct {
	name string
	spec string
}

// parseDocument validates data as JSON and walks the top-level object in
// token order. A valid document whose root is not an object (an array, a
// bare string) parses to a document with no fields: it declares nothing,
// which is not a parse failure.
func parseDocument(data []byte) (*document, error) {
	var probe any
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, err
	}

	doc := &document{}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return doc, nil
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			break
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
		doc.fields = append(doc.fields, field{key: key, raw: raw})
		if key == "name" {
			var s string
			if json.Unmarshal(raw, &s) == nil {
				doc.name = s
			}
		}
	}
	return doc, nil
}

// group returns the ordered entries of the named dependency group. When the
// key is declared more than once the last declaration wins, matching how a
// plain JSON parse would resolve it. Absent or non-object groups yield nil.
func (d *document) group(key string) []entry {
	var raw json.RawMessage
	for _, f := range d.fields {
		if f.key == key {
			raw = f.raw
		}
	}
	if raw == nil {
		return nil
	}
	return objectEntries(raw)
}

// objectEntries walks a JSON object and returns its key/value pairs in
// declaration order. Non-object input yields nil.
func objectEntries(raw json.RawMessage) []entry {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil
	}

	var entries []entry
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil
		}
		entries = append(entries, entry{name: key, spec: specString(val)})
	}
	return entries
}

// specString coerces a version spec value to its string form. Non-string
// values (numbers, objects) keep their compact JSON text instead of being
// rejected.
func specString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err == nil {
		return buf.String()
	}
	return string(bytes.TrimSpace(raw))
}
