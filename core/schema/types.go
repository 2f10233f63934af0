package schema

import (
	"encoding/json"

	"github.com/rit3sh-x/mongoschema/core/constants"
)

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Field struct {
	Name         string                     `json:"name"`
	Type         constants.FieldType        `json:"type"`
	Required     bool                       `json:"required"`
	Unique       bool                       `json:"unique,omitempty"`
	Index        bool                       `json:"index,omitempty"`
	DefaultValue interface{}                `json:"defaultValue,omitempty"`
	Ref          string                     `json:"ref,omitempty"`
	ArrayType    constants.FieldType        `json:"arrayType,omitempty"`
	Connections  []string                   `json:"connections,omitempty"`
	Extra        map[string]json.RawMessage `json:"-"`
}

type Collection struct {
	ID       string                     `json:"id"`
	Name     string                     `json:"name"`
	Fields   []Field                    `json:"fields"`
	Position Position                   `json:"position"`
	Extra    map[string]json.RawMessage `json:"-"`
}

// Endpoint addresses one field of one collection. Collections are referenced
// by id so that renaming a collection keeps its connections intact.
type Endpoint struct {
	CollectionID string `json:"collectionId"`
	Field        string `json:"field"`
}

type Connection struct {
	ID     string                     `json:"id"`
	Source Endpoint                   `json:"source"`
	Target Endpoint                   `json:"target"`
	Type   string                     `json:"type"`
	Extra  map[string]json.RawMessage `json:"-"`
}

func IDField() Field {
	return Field{Name: constants.ID_FIELD, Type: constants.OBJECT_ID, Required: true}
}

func TimestampField(name string) Field {
	return Field{Name: name, Type: constants.DATE, Required: true}
}

func (f Field) IsID() bool {
	return f.Name == constants.ID_FIELD
}

func (f Field) IsSystem() bool {
	return constants.IsSystemField(f.Name, f.Type, f.Required)
}

func (f Field) Clone() Field {
	clone := f
	if f.Connections != nil {
		clone.Connections = append([]string(nil), f.Connections...)
	}
	clone.Extra = cloneExtra(f.Extra)
	return clone
}

func (c Collection) Clone() Collection {
	clone := c
	if c.Fields != nil {
		clone.Fields = make([]Field, len(c.Fields))
		for i, f := range c.Fields {
			clone.Fields[i] = f.Clone()
		}
	}
	clone.Extra = cloneExtra(c.Extra)
	return clone
}

func (c Collection) FieldIndex(name string) int {
	for i, f := range c.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

func (c Collection) GetFieldByName(name string) (Field, bool) {
	if i := c.FieldIndex(name); i >= 0 {
		return c.Fields[i], true
	}
	return Field{}, false
}

func (e Endpoint) String() string {
	return e.CollectionID + "." + e.Field
}

func (e Endpoint) Matches(collectionID string, field string) bool {
	return e.CollectionID == collectionID && e.Field == field
}

func (c Connection) Clone() Connection {
	clone := c
	clone.Extra = cloneExtra(c.Extra)
	return clone
}

func (c Connection) Touches(collectionID string, field string) bool {
	return c.Source.Matches(collectionID, field) || c.Target.Matches(collectionID, field)
}

func (c Connection) TouchesCollection(collectionID string) bool {
	return c.Source.CollectionID == collectionID || c.Target.CollectionID == collectionID
}

// Other returns the endpoint opposite to (collectionID, field). When both
// endpoints match, the target is returned.
func (c Connection) Other(collectionID string, field string) Endpoint {
	if c.Target.Matches(collectionID, field) && !c.Source.Matches(collectionID, field) {
		return c.Source
	}
	return c.Target
}

func CloneCollections(collections []Collection) []Collection {
	if collections == nil {
		return nil
	}
	out := make([]Collection, len(collections))
	for i, c := range collections {
		out[i] = c.Clone()
	}
	return out
}

func CloneConnections(connections []Connection) []Connection {
	if connections == nil {
		return nil
	}
	out := make([]Connection, len(connections))
	for i, c := range connections {
		out[i] = c.Clone()
	}
	return out
}
