package schema

import (
	"encoding/json"
)

// Keys owned by the typed structs. Anything else found while decoding is kept
// in Extra and written back on encode.
var (
	fieldKeys      = []string{"name", "type", "required", "unique", "index", "defaultValue", "ref", "arrayType", "connections"}
	collectionKeys = []string{"id", "name", "fields", "position"}
	connectionKeys = []string{"id", "source", "target", "type"}
)

type fieldAlias Field
type collectionAlias Collection
type connectionAlias Connection

func (f Field) MarshalJSON() ([]byte, error) {
	return MarshalWithExtra(fieldAlias(f), f.Extra)
}

func (f *Field) UnmarshalJSON(data []byte) error {
	var alias fieldAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := SplitExtra(data, fieldKeys...)
	if err != nil {
		return err
	}
	*f = Field(alias)
	f.Extra = extra
	return nil
}

func (c Collection) MarshalJSON() ([]byte, error) {
	return MarshalWithExtra(collectionAlias(c), c.Extra)
}

func (c *Collection) UnmarshalJSON(data []byte) error {
	var alias collectionAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := SplitExtra(data, collectionKeys...)
	if err != nil {
		return err
	}
	*c = Collection(alias)
	c.Extra = extra
	return nil
}

func (c Connection) MarshalJSON() ([]byte, error) {
	return MarshalWithExtra(connectionAlias(c), c.Extra)
}

func (c *Connection) UnmarshalJSON(data []byte) error {
	var alias connectionAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	extra, err := SplitExtra(data, connectionKeys...)
	if err != nil {
		return err
	}
	*c = Connection(alias)
	c.Extra = extra
	return nil
}

// MarshalWithExtra encodes v and merges in the extra keys. Typed keys win
// over extras with the same name.
func MarshalWithExtra(v interface{}, extra map[string]json.RawMessage) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	merged := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &merged); err != nil {
		return nil, err
	}
	for key, raw := range extra {
		if _, exists := merged[key]; !exists {
			merged[key] = raw
		}
	}
	return json.Marshal(merged)
}

// SplitExtra returns the keys of the JSON object in data that are not listed
// in known, or nil when there are none.
func SplitExtra(data []byte, known ...string) (map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	for _, key := range known {
		delete(all, key)
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all, nil
}

func cloneExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		out[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
