package codemeta

import (
	"bytes"
	"encoding/json"
	"maps"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// dataStructFields and functionFields have the same fields as the node types
// but none of their methods, so the codec can use them without recursing.
type (
	dataStructFields DataStruct
	functionFields   Function
)

var (
	dataStructKeys = sync.OnceValue(func() map[string]bool { return jsonKeys(reflect.TypeFor[DataStruct]()) })
	functionKeys   = sync.OnceValue(func() map[string]bool { return jsonKeys(reflect.TypeFor[Function]()) })
)

// MarshalJSON implements custom JSON marshaling for DataStruct.
func (d DataStruct) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(dataStructFields(d))
	if err != nil {
		return nil, err
	}
	return appendExtra(data, d.Extra, dataStructKeys())
}

// UnmarshalJSON implements custom JSON unmarshaling for DataStruct.
func (d *DataStruct) UnmarshalJSON(data []byte) error {
	var fields dataStructFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := unmodeledKeys(data, dataStructKeys())
	if err != nil {
		return err
	}
	*d = DataStruct(fields)
	d.Extra = extra
	return nil
}

func (f Function) MarshalJSON() ([]byte, error) {
	data, err := json.Marshal(functionFields(f))
	if err != nil {
		return nil, err
	}
	return appendExtra(data, f.Extra, functionKeys())
}

func (f *Function) UnmarshalJSON(data []byte) error {
	var fields functionFields
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	extra, err := unmodeledKeys(data, functionKeys())
	if err != nil {
		return err
	}
	*f = Function(fields)
	f.Extra = extra
	return nil
}

// jsonKeys returns the lower-cased JSON names of a struct's fields.
// encoding/json matches object keys case-insensitively, so lookups must too.
func jsonKeys(t reflect.Type) map[string]bool {
	keys := make(map[string]bool, t.NumField())
	for i := range t.NumField() {
		field := t.Field(i)
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		switch name {
		case "-":
			continue
		case "":
			name = field.Name
		}
		keys[strings.ToLower(name)] = true
	}
	return keys
}

// unmodeledKeys returns the members of a JSON object whose keys are not in
// known. Nil when there are none.
func unmodeledKeys(data []byte, known map[string]bool) (map[string]json.RawMessage, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, err
	}
	for key := range members {
		if known[strings.ToLower(key)] {
			delete(members, key)
		}
	}
	if len(members) == 0 {
		return nil, nil
	}
	return members, nil
}

// appendExtra splices extra members into an encoded JSON object, in key
// order. Keys that collide with a modeled field are skipped.
func appendExtra(object []byte, extra map[string]json.RawMessage, known map[string]bool) ([]byte, error) {
	if len(extra) == 0 {
		return object, nil
	}

	var buf bytes.Buffer
	buf.Write(object[:len(object)-1])
	empty := len(bytes.TrimSpace(object)) == 2

	for _, key := range slices.Sorted(maps.Keys(extra)) {
		if known[strings.ToLower(key)] {
			continue
		}
		name, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		if !empty {
			buf.WriteByte(',')
		}
		empty = false
		buf.Write(name)
		buf.WriteByte(':')
		if value := extra[key]; len(value) > 0 {
			buf.Write(value)
		} else {
			buf.WriteString("null")
		}
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func cloneExtra(in map[string]json.RawMessage) map[string]json.RawMessage {
	if in == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(in))
	for key, value := range in {
		out[key] = bytes.Clone(value)
	}
	return out
}
