package manifest

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/depsight/depsight/pkg/errors"
)

// Remove deletes name from every dependency group that declares it and
// rewrites the manifest in place, serialized with 2-space indentation and a
// trailing newline. All other fields keep their content and their order.
//
// It fails with NOT_FOUND_MANIFEST when the file is absent, INVALID_MANIFEST
// when it cannot be parsed, and NOT_FOUND_PACKAGE when no group declares
// the name.
func Remove(path, name string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return errors.New(errors.ErrCodeManifestNotFound, "manifest not found: %s", path)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidManifest, err, "read manifest: %s", path)
	}

	doc, err := parseDocument(data)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidManifest, err, "parse manifest: %s", path)
	}

	removed := false
	for i, f := range doc.fields {
		if f.key != "dependencies" && f.key != "devDependencies" {
			continue
		}
		if raw, ok := removeEntry(f.raw, name); ok {
			doc.fields[i].raw = raw
			removed = true
		}
	}
	if !removed {
		return errors.New(errors.ErrCodePackageNotFound, "%s is not declared in %s", name, path)
	}

	out, err := doc.render()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "rewrite manifest: %s", path)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "write manifest: %s", path)
	}
	return nil
}

// removeEntry rebuilds a JSON object without the named key, keeping the
// remaining keys in order. The boolean reports whether the key was present.
func removeEntry(raw json.RawMessage, name string) (json.RawMessage, bool) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return raw, false
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return raw, false
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	removed := false
	first := true
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return raw, false
		}
		key, ok := keyTok.(string)
		if !ok {
			return raw, false
		}
		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return raw, false
		}
		if key == name {
			removed = true
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		keyJSON, err := json.Marshal(key)
		if err != nil {
			return raw, false
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')

	if !removed {
		return raw, false
	}
	return buf.Bytes(), true
}

// render serializes the document with 2-space indentation and a trailing
// newline, keeping field order. Raw values pass through json.Indent, so
// their original escaping survives while layout is normalized.
func (d *document) render() ([]byte, error) {
	var compact bytes.Buffer
	compact.WriteByte('{')
	for i, f := range d.fields {
		if i > 0 {
			compact.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		compact.Write(key)
		compact.WriteByte(':')
		compact.Write(f.raw)
	}
	compact.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}
