package models

import (
	"bytes"
	"encoding/json"
)

// EncodeJSON marshals v without HTML escaping, so text such as "Leaf & Co"
// survives as written. indent is applied per level when non-empty.
func EncodeJSON(v any, indent string) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
