// internal/domain/models/extra.go
package models

import (
	"bytes"
	"encoding/json"
	"reflect"
	"strings"
)

// Extra holds the fields of a backend record that the model does not
// declare. They are sent back unchanged on a full-record update.
type Extra map[string]json.RawMessage

// jsonKeys returns the lower-cased JSON names of t's fields.
func jsonKeys(t reflect.Type) map[string]bool {
	keys := make(map[string]bool, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("json")
		if tag == "-" || !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		if name == "" {
			name = f.Name
		}
		keys[strings.ToLower(name)] = true
	}
	return keys
}

// splitExtra returns the members of the JSON object data whose names are
// not in known. encoding/json matches names case-insensitively, so known
// holds lower-cased names.
func splitExtra(data []byte, known map[string]bool) (Extra, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var extra Extra
	for k, v := range raw {
		if known[strings.ToLower(k)] {
			continue
		}
		if extra == nil {
			extra = Extra{}
		}
		extra[k] = v
	}
	return extra, nil
}

// mergeExtra adds extra to the JSON object base. Declared fields win.
func mergeExtra(base []byte, extra Extra) ([]byte, error) {
	if len(extra) == 0 {
		return base, nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(base, &obj); err != nil {
		return nil, err
	}
	for k, v := range extra {
		if _, ok := obj[k]; !ok {
			obj[k] = v
		}
	}
	return json.Marshal(obj)
}
