package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// CanonicalJSON marshals a value with object keys sorted recursively and
// stable two-space indentation. Golden files are written this way so that
// re-blessing an unchanged baseline produces a byte-identical file.
func CanonicalJSON(value any) ([]byte, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, err
	}

	buf := &bytes.Buffer{}
	if err := writeCanonical(buf, decoded, ""); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeCanonical(buf *bytes.Buffer, value any, indent string) error {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 0 {
			buf.WriteString("{}")
			return nil
		}
		keys := make([]string, 0, len(v))
		for key := range v {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		inner := indent + "  "
		buf.WriteString("{\n")
		for i, key := range keys {
			keyJSON, err := encodeScalar(key)
			if err != nil {
				return err
			}
			buf.WriteString(inner)
			buf.Write(keyJSON)
			buf.WriteString(": ")
			if err := writeCanonical(buf, v[key], inner); err != nil {
				return err
			}
			if i < len(keys)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(indent)
		buf.WriteByte('}')
		return nil
	case []any:
		if len(v) == 0 {
			buf.WriteString("[]")
			return nil
		}
		inner := indent + "  "
		buf.WriteString("[\n")
		for i, item := range v {
			buf.WriteString(inner)
			if err := writeCanonical(buf, item, inner); err != nil {
				return err
			}
			if i < len(v)-1 {
				buf.WriteByte(',')
			}
			buf.WriteByte('\n')
		}
		buf.WriteString(indent)
		buf.WriteByte(']')
		return nil
	default:
		encoded, err := encodeScalar(v)
		if err != nil {
			return err
		}
		buf.Write(encoded)
		return nil
	}
}

func encodeScalar(value any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return nil, fmt.Errorf("encode scalar: %w", err)
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
