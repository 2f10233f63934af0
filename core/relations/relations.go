package relations

import (
	"fmt"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/schema"
)

type Decision struct {
	Allowed bool
	Reason  string
}

// Reference is a field that renders as pointing at some collection.
// Connection is nil when the target came from the field's explicit ref.
type Reference struct {
	Collection schema.Collection
	Field      schema.Field
	Connection *schema.Connection
}

type Resolver struct {
	collections []schema.Collection
	connections []schema.Connection
	byID        map[string]int
}

// NewResolver indexes a snapshot of the schema. It does not copy its inputs,
// so callers must not mutate them while the resolver is in use.
func NewResolver(collections []schema.Collection, connections []schema.Connection) *Resolver {
	byID := make(map[string]int, len(collections))
	for i, col := range collections {
		if _, exists := byID[col.ID]; !exists {
			byID[col.ID] = i
		}
	}

	return &Resolver{
		collections: collections,
		connections: connections,
		byID:        byID,
	}
}

// CanConnect decides whether source and target may be joined by a new
// connection, using each field's connections index for the cardinality rule.
func CanConnect(source schema.Field, target schema.Field) Decision {
	if source.Type != constants.OBJECT_ID || target.Type != constants.OBJECT_ID {
		return Decision{Reason: "both fields must be of type objectId"}
	}

	if source.IsID() && target.IsID() {
		return Decision{Reason: "cannot connect two '_id' fields"}
	}

	for _, fld := range []schema.Field{source, target} {
		if !fld.IsID() && len(fld.Connections) > 0 {
			return Decision{Reason: fmt.Sprintf("field '%s' already has a connection", fld.Name)}
		}
	}

	return Decision{Allowed: true}
}

func (r *Resolver) CollectionByID(id string) (schema.Collection, bool) {
	if i, ok := r.byID[id]; ok {
		return r.collections[i], true
	}
	return schema.Collection{}, false
}

func (r *Resolver) CollectionByName(name string) (schema.Collection, bool) {
	for _, col := range r.collections {
		if col.Name == name {
			return col, true
		}
	}
	return schema.Collection{}, false
}

// ResolveReference picks the collection an objectId field points at: the
// explicit ref first, then the other end of the field's first connection.
// Unknown ids resolve to nothing.
func (r *Resolver) ResolveReference(collection schema.Collection, field schema.Field) (schema.Collection, bool) {
	target, _, ok := r.resolve(collection, field)
	return target, ok
}

func (r *Resolver) resolve(collection schema.Collection, field schema.Field) (schema.Collection, *schema.Connection, bool) {
	if field.Type != constants.OBJECT_ID {
		return schema.Collection{}, nil, false
	}

	if field.Ref != "" {
		if target, ok := r.CollectionByID(field.Ref); ok {
			return target, nil, true
		}
	}

	for i := range r.connections {
		conn := &r.connections[i]
		if !conn.Touches(collection.ID, field.Name) {
			continue
		}
		other := conn.Other(collection.ID, field.Name)
		if target, ok := r.CollectionByID(other.CollectionID); ok {
			return target, conn, true
		}
	}

	return schema.Collection{}, nil, false
}

func (r *Resolver) ConnectionsForField(collectionID string, fieldName string) []schema.Connection {
	var result []schema.Connection
	for _, conn := range r.connections {
		if conn.Touches(collectionID, fieldName) {
			result = append(result, conn.Clone())
		}
	}
	return result
}

func (r *Resolver) ConnectionsForCollection(collectionID string) []schema.Connection {
	var result []schema.Connection
	for _, conn := range r.connections {
		if conn.TouchesCollection(collectionID) {
			result = append(result, conn.Clone())
		}
	}
	return result
}

// FieldConnectionsByName is the name-keyed view over ConnectionsForField.
func (r *Resolver) FieldConnectionsByName(collectionName string, fieldName string) []schema.Connection {
	col, ok := r.CollectionByName(collectionName)
	if !ok {
		return nil
	}
	return r.ConnectionsForField(col.ID, fieldName)
}

// ReferencesTo lists, in collection and field order, every non-_id field
// whose reference resolves to the given collection.
func (r *Resolver) ReferencesTo(collectionID string) []Reference {
	var refs []Reference
	for _, col := range r.collections {
		for _, fld := range col.Fields {
			if fld.IsID() {
				continue
			}
			target, conn, ok := r.resolve(col, fld)
			if !ok || target.ID != collectionID {
				continue
			}
			refs = append(refs, Reference{
				Collection: col,
				Field:      fld,
				Connection: conn,
			})
		}
	}
	return refs
}
