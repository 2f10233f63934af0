package model

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/rit3sh-x/mongoschema/core/constants"
	"github.com/rit3sh-x/mongoschema/core/logger"
	"github.com/rit3sh-x/mongoschema/core/relations"
	"github.com/rit3sh-x/mongoschema/core/schema"
	"github.com/rit3sh-x/mongoschema/core/validation"
)

type CollectionOptions struct {
	IncludeTimestamps bool
	IncludeCreatedAt  bool
	IncludeUpdatedAt  bool
}

type ConnectionRequest struct {
	Source schema.Endpoint
	Target schema.Endpoint
}

type Option func(*Model)

func WithLogger(logger *zap.SugaredLogger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

func WithCollectionIDs(next func() string) Option {
	return func(m *Model) {
		m.newCollectionID = next
	}
}

func WithConnectionIDs(next func() string) Option {
	return func(m *Model) {
		m.newConnectionID = next
	}
}

// Model owns the collections and connections of one schema document. Every
// exported method holds the model lock for its whole duration, and values
// handed out are deep copies.
type Model struct {
	mu              sync.RWMutex
	collections     []schema.Collection
	connections     []schema.Connection
	newCollectionID func() string
	newConnectionID func() string
	logger          *zap.SugaredLogger
}

func New(opts ...Option) *Model {
	m := &Model{
		newCollectionID: func() string { return primitive.NewObjectID().Hex() },
		newConnectionID: uuid.NewString,
		logger:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Model) AddCollection(name string, opts CollectionOptions) (schema.Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.checkCollectionName(name, ""); err != nil {
		return schema.Collection{}, err
	}

	fields := []schema.Field{schema.IDField()}
	if opts.IncludeTimestamps && opts.IncludeCreatedAt {
		fields = append(fields, schema.TimestampField(constants.CREATED_AT_FIELD))
	}
	if opts.IncludeTimestamps && opts.IncludeUpdatedAt {
		fields = append(fields, schema.TimestampField(constants.UPDATED_AT_FIELD))
	}

	col := schema.Collection{
		ID:       m.newCollectionID(),
		Name:     name,
		Fields:   fields,
		Position: gridPosition(len(m.collections)),
	}
	m.collections = append(m.collections, col)

	m.logger.Debugw("collection added", "id", col.ID, "name", col.Name)
	return col.Clone(), nil
}

// RemoveCollection deletes the collection together with every connection
// that has it at either end, and clears refs that pointed at it.
func (m *Model) RemoveCollection(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ci := m.indexOf(id)
	if ci < 0 {
		return
	}

	removed := m.removeConnectionsWhere(func(conn schema.Connection) bool {
		return conn.TouchesCollection(id)
	})

	m.collections = append(m.collections[:ci:ci], m.collections[ci+1:]...)

	for c := range m.collections {
		for f := range m.collections[c].Fields {
			if m.collections[c].Fields[f].Ref == id {
				m.collections[c].Fields[f].Ref = ""
			}
		}
	}

	m.logger.Debugw("collection removed", "id", id, "connectionsRemoved", removed)
}

// DuplicateCollection copies a collection under a new id and a " Copy"
// suffixed name. The copy owns no connections.
func (m *Model) DuplicateCollection(id string) (schema.Collection, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ci := m.indexOf(id)
	if ci < 0 {
		return schema.Collection{}, false
	}

	dup := m.collections[ci].Clone()
	dup.ID = m.newCollectionID()

	name := dup.Name + constants.DUPLICATE_SUFFIX
	for m.nameTaken(name, "") {
		name += constants.DUPLICATE_SUFFIX
	}
	dup.Name = name

	for f := range dup.Fields {
		dup.Fields[f].Connections = nil
	}
	dup.Position.X += constants.DUPLICATE_OFFSET
	dup.Position.Y += constants.DUPLICATE_OFFSET

	m.collections = append(m.collections, dup)

	m.logger.Debugw("collection duplicated", "source", id, "id", dup.ID, "name", dup.Name)
	return dup.Clone(), true
}

func (m *Model) UpdateCollection(id string, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ci := m.indexOf(id)
	if ci < 0 {
		return nil
	}

	if err := m.checkCollectionName(name, id); err != nil {
		return err
	}

	m.collections[ci].Name = name
	m.logger.Debugw("collection renamed", "id", id, "name", name)
	return nil
}

func (m *Model) AddField(collectionID string, field schema.Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ci := m.indexOf(collectionID)
	if ci < 0 {
		return nil
	}
	col := &m.collections[ci]

	if err := validation.ValidateField(col.Name, field); err != nil {
		return err
	}
	if err := m.checkRef(col.Name, field); err != nil {
		return err
	}
	if col.FieldIndex(field.Name) >= 0 {
		return duplicateFieldError(col.Name, field.Name)
	}

	added := field.Clone()
	added.Connections = nil
	col.Fields = append(col.Fields, added)

	m.logger.Debugw("field added", "collection", col.Name, "field", added.Name, "type", added.Type)
	return nil
}

// RemoveField deletes the field at index and every connection touching it.
func (m *Model) RemoveField(collectionID string, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ci := m.indexOf(collectionID)
	if ci < 0 || index < 0 || index >= len(m.collections[ci].Fields) {
		return nil
	}

	col := m.collections[ci]
	fld := col.Fields[index]
	if index == 0 || fld.IsID() {
		return validation.NewError(constants.ERR_ID_FIELD,
			"The '_id' field cannot be removed",
			validation.FieldLocation(col.Name, fld.Name))
	}

	removed := m.removeConnectionsWhere(func(conn schema.Connection) bool {
		return conn.Touches(col.ID, fld.Name)
	})

	fields := m.collections[ci].Fields
	m.collections[ci].Fields = append(fields[:index:index], fields[index+1:]...)

	m.logger.Debugw("field removed", "collection", col.Name, "field", fld.Name, "connectionsRemoved", removed)
	return nil
}

// UpdateField replaces the field at index. Renaming a connected field moves
// its connections along with it.
func (m *Model) UpdateField(collectionID string, index int, field schema.Field) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ci := m.indexOf(collectionID)
	if ci < 0 || index < 0 || index >= len(m.collections[ci].Fields) {
		return nil
	}

	col := &m.collections[ci]
	current := col.Fields[index]

	if current.IsID() && (field.Name != current.Name || field.Type != current.Type || field.Required != current.Required) {
		return validation.NewError(constants.ERR_ID_FIELD,
			"The name, type and required flag of '_id' cannot change",
			validation.FieldLocation(col.Name, current.Name))
	}
	if err := validation.ValidateField(col.Name, field); err != nil {
		return err
	}
	if err := m.checkRef(col.Name, field); err != nil {
		return err
	}
	if field.Name != current.Name && col.FieldIndex(field.Name) >= 0 {
		return duplicateFieldError(col.Name, field.Name)
	}
	if len(current.Connections) > 0 && field.Type != constants.OBJECT_ID {
		return validation.NewError(constants.ERR_CONNECTED_FIELD,
			fmt.Sprintf("Field '%s' has connections and must stay objectId; remove them first", current.Name),
			validation.FieldLocation(col.Name, current.Name))
	}

	updated := field.Clone()
	updated.Connections = nil
	if current.Connections != nil {
		updated.Connections = append([]string(nil), current.Connections...)
	}

	if updated.Name != current.Name {
		for i := range m.connections {
			conn := &m.connections[i]
			if conn.Source.Matches(col.ID, current.Name) {
				conn.Source.Field = updated.Name
			}
			if conn.Target.Matches(col.ID, current.Name) {
				conn.Target.Field = updated.Name
			}
		}
	}

	col.Fields[index] = updated
	m.logger.Debugw("field updated", "collection", col.Name, "index", index, "field", updated.Name)
	return nil
}

// ReorderFields moves the field at from to position to. '_id' stays first
// and system fields keep their relative order.
func (m *Model) ReorderFields(collectionID string, from int, to int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	ci := m.indexOf(collectionID)
	if ci < 0 {
		return nil
	}
	col := &m.collections[ci]
	n := len(col.Fields)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return nil
	}

	if from == 0 || to == 0 {
		return validation.NewError(constants.ERR_ID_FIELD,
			"The '_id' field must stay first",
			validation.CollectionLocation(col.Name))
	}

	moved := moveField(col.Fields, from, to)
	if !sameSystemOrder(col.Fields, moved) {
		return validation.NewError(constants.ERR_SYSTEM_FIELD_ORDER,
			fmt.Sprintf("Moving '%s' would change the order of system fields", col.Fields[from].Name),
			validation.FieldLocation(col.Name, col.Fields[from].Name))
	}

	col.Fields = moved
	return nil
}

func (m *Model) AddConnection(req ConnectionRequest) (schema.Connection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sci, sfi, ok := m.locate(req.Source)
	if !ok {
		return schema.Connection{}, &NotFoundError{Kind: "field", Key: req.Source.String()}
	}
	tci, tfi, ok := m.locate(req.Target)
	if !ok {
		return schema.Connection{}, &NotFoundError{Kind: "field", Key: req.Target.String()}
	}

	source := m.collections[sci].Fields[sfi]
	target := m.collections[tci].Fields[tfi]
	location := fmt.Sprintf("%s -> %s",
		validation.FieldLocation(m.collections[sci].Name, source.Name),
		validation.FieldLocation(m.collections[tci].Name, target.Name))

	if req.Source == req.Target {
		return schema.Connection{}, validation.NewError(constants.ERR_CONNECTION_REJECTED,
			"Cannot connect a field to itself", location)
	}
	if decision := relations.CanConnect(source, target); !decision.Allowed {
		return schema.Connection{}, validation.NewError(constants.ERR_CONNECTION_REJECTED,
			fmt.Sprintf("Connection rejected: %s", decision.Reason), location)
	}

	conn := schema.Connection{
		ID:     m.newConnectionID(),
		Source: req.Source,
		Target: req.Target,
		Type:   constants.CONNECTION_TYPE_REFERENCE,
	}
	m.connections = append(m.connections, conn)
	m.attach(conn)

	m.logger.Debugw("connection added", "id", conn.ID, "source", conn.Source.String(), "target", conn.Target.String())
	return conn.Clone(), nil
}

func (m *Model) RemoveConnection(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := m.removeConnectionsWhere(func(conn schema.Connection) bool {
		return conn.ID == id
	})
	if removed > 0 {
		m.logger.Debugw("connection removed", "id", id)
	}
}

// GetFieldConnections returns, in insertion order, the connections touching
// the named field of the named collection.
func (m *Model) GetFieldConnections(collectionName string, fieldName string) []schema.Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return relations.NewResolver(m.collections, m.connections).FieldConnectionsByName(collectionName, fieldName)
}

func (m *Model) Collections() []schema.Collection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return cloneCollections(m.collections)
}

func (m *Model) Connections() []schema.Connection {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return cloneConnections(m.connections)
}

// Snapshot returns collections and connections read under one lock.
func (m *Model) Snapshot() ([]schema.Collection, []schema.Connection) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return cloneCollections(m.collections), cloneConnections(m.connections)
}

func (m *Model) Collection(id string) (schema.Collection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if ci := m.indexOf(id); ci >= 0 {
		return m.collections[ci].Clone(), true
	}
	return schema.Collection{}, false
}

func (m *Model) CollectionByName(name string) (schema.Collection, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, col := range m.collections {
		if col.Name == name {
			return col.Clone(), true
		}
	}
	return schema.Collection{}, false
}

func (m *Model) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.collections)
}

// Load validates and installs a complete schema in one step, rebuilding each
// field's connections index. On error the model is left unchanged.
func (m *Model) Load(collections []schema.Collection, connections []schema.Connection) error {
	cols := schema.CloneCollections(collections)
	conns := schema.CloneConnections(connections)

	if err := validation.ValidateSchema(cols, conns); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.collections = cols
	m.connections = conns
	for c := range m.collections {
		for f := range m.collections[c].Fields {
			m.collections[c].Fields[f].Connections = nil
		}
	}
	for _, conn := range m.connections {
		m.attach(conn)
	}

	m.logger.Debugw("schema loaded", "collections", len(cols), "connections", len(conns))
	return nil
}

func (m *Model) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.collections = nil
	m.connections = nil
	m.logger.Debugw("schema cleared")
}

func (m *Model) indexOf(id string) int {
	for i, col := range m.collections {
		if col.ID == id {
			return i
		}
	}
	return -1
}

func (m *Model) locate(endpoint schema.Endpoint) (int, int, bool) {
	ci := m.indexOf(endpoint.CollectionID)
	if ci < 0 {
		return -1, -1, false
	}
	fi := m.collections[ci].FieldIndex(endpoint.Field)
	if fi < 0 {
		return -1, -1, false
	}
	return ci, fi, true
}

func (m *Model) nameTaken(name string, exceptID string) bool {
	for _, col := range m.collections {
		if col.Name == name && col.ID != exceptID {
			return true
		}
	}
	return false
}

func (m *Model) checkCollectionName(name string, exceptID string) error {
	if err := validation.ValidateCollectionName(name); err != nil {
		return err
	}
	if m.nameTaken(name, exceptID) {
		return validation.NewError(constants.ERR_DUPLICATE_COLLECTION,
			fmt.Sprintf("Collection name '%s' already exists", name),
			validation.CollectionLocation(name))
	}
	return nil
}

// checkRef refuses an objectId ref to a collection id the model does not
// hold, which the importer would reject on the next load.
func (m *Model) checkRef(collection string, field schema.Field) error {
	if field.Type != constants.OBJECT_ID || field.Ref == "" || m.indexOf(field.Ref) >= 0 {
		return nil
	}
	return validation.NewError(constants.ERR_DANGLING_CONNECTION,
		fmt.Sprintf("Field '%s' references non-existent collection '%s'", field.Name, field.Ref),
		validation.FieldLocation(collection, field.Name))
}

func (m *Model) attach(conn schema.Connection) {
	for _, endpoint := range []schema.Endpoint{conn.Source, conn.Target} {
		if ci, fi, ok := m.locate(endpoint); ok {
			fld := &m.collections[ci].Fields[fi]
			fld.Connections = append(fld.Connections, conn.ID)
		}
	}
}

func (m *Model) detach(conn schema.Connection) {
	for _, endpoint := range []schema.Endpoint{conn.Source, conn.Target} {
		if ci, fi, ok := m.locate(endpoint); ok {
			fld := &m.collections[ci].Fields[fi]
			fld.Connections = without(fld.Connections, conn.ID)
		}
	}
}

func (m *Model) removeConnectionsWhere(match func(schema.Connection) bool) int {
	var kept []schema.Connection
	removed := 0
	for _, conn := range m.connections {
		if match(conn) {
			m.detach(conn)
			removed++
			continue
		}
		kept = append(kept, conn)
	}
	if removed > 0 {
		m.connections = kept
	}
	return removed
}

func gridPosition(count int) schema.Position {
	return schema.Position{
		X: float64(constants.GRID_ORIGIN_X + (count%constants.GRID_COLUMNS)*constants.GRID_COLUMN_WIDTH),
		Y: float64(constants.GRID_ORIGIN_Y + (count/constants.GRID_COLUMNS)*constants.GRID_ROW_HEIGHT),
	}
}

func duplicateFieldError(collection string, field string) error {
	return validation.NewError(constants.ERR_DUPLICATE_FIELD,
		fmt.Sprintf("Duplicate field name '%s' in collection '%s'", field, collection),
		validation.FieldLocation(collection, field))
}

func moveField(fields []schema.Field, from int, to int) []schema.Field {
	moved := make([]schema.Field, 0, len(fields))
	moved = append(moved, fields[:from]...)
	moved = append(moved, fields[from+1:]...)

	result := make([]schema.Field, 0, len(fields))
	result = append(result, moved[:to]...)
	result = append(result, fields[from])
	result = append(result, moved[to:]...)
	return result
}

func sameSystemOrder(before []schema.Field, after []schema.Field) bool {
	var a, b []string
	for _, f := range before {
		if f.IsSystem() {
			a = append(a, f.Name)
		}
	}
	for _, f := range after {
		if f.IsSystem() {
			b = append(b, f.Name)
		}
	}
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func without(ids []string, id string) []string {
	var out []string
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}

func cloneCollections(collections []schema.Collection) []schema.Collection {
	out := make([]schema.Collection, 0, len(collections))
	for _, col := range collections {
		out = append(out, col.Clone())
	}
	return out
}

func cloneConnections(connections []schema.Connection) []schema.Connection {
	out := make([]schema.Connection, 0, len(connections))
	for _, conn := range connections {
		out = append(out, conn.Clone())
	}
	return out
}
